package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	apperrors "github.com/openpalette/genstudio/internal/errors"
	"github.com/openpalette/genstudio/internal/testutil"
)

func newIntegrationRepo(db *sql.DB) *JobRepo {
	return NewJobRepo(db, JobRepoConfig{})
}

func TestJobRepoInsertAndGetRoundTrip(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()

		job := testutil.NewJob().
			WithUser("user-1").
			WithConnection("conn-1").
			WithPrompt("a lighthouse in a storm").
			Build()
		require.NoError(t, repo.Insert(ctx, job))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)

		assert.Equal(t, job.ID, got.ID)
		require.NotNil(t, got.UserID)
		assert.Equal(t, "user-1", *got.UserID)
		require.NotNil(t, got.ConnectionID)
		assert.Equal(t, "conn-1", *got.ConnectionID)
		assert.Equal(t, "a lighthouse in a storm", got.Prompt)
		assert.Equal(t, job.Params, got.Params)
		assert.Equal(t, model.JobStatusPending, got.Status)
		assert.Equal(t, job.SortKey, got.SortKey)
	})
}

func TestJobRepoGetByIDNotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)

		_, err := repo.GetByID(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})
}

func TestJobRepoNextPendingOrdering(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()
		base := time.Now().UTC()

		older := testutil.NewJob().EnqueuedAt(base.Add(-2 * time.Minute)).Build()
		newer := testutil.NewJob().EnqueuedAt(base.Add(-1 * time.Minute)).Build()
		retry := testutil.NewJob().
			EnqueuedAt(base).
			WithPriority(model.RetryPriority).
			Build()
		for _, job := range []*model.Job{older, newer, retry} {
			require.NoError(t, repo.Insert(ctx, job))
		}

		// Retry priority preempts fresh admissions despite a later enqueue time.
		next, err := repo.NextPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, retry.ID, next.ID)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		assert.Equal(t, retry.ID, pending[0].ID)
		assert.Equal(t, older.ID, pending[1].ID)
		assert.Equal(t, newer.ID, pending[2].ID)
	})
}

func TestJobRepoNextPendingEmpty(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)

		_, err := repo.NextPending(context.Background())
		require.ErrorIs(t, err, model.ErrNoJobsPending)
	})
}

func TestJobRepoGuardedUpdate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()

		job := testutil.NewJob().Build()
		require.NoError(t, repo.Insert(ctx, job))

		externalID := "ext-1"
		startedAt := time.Now().UTC()
		status := model.JobStatusProcessing
		claimed, err := repo.Update(ctx, job.ID, &model.JobUpdate{
			Status:        &status,
			ExternalJobID: &externalID,
			StartedAt:     &startedAt,
		}, model.JobStatusPending)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusProcessing, claimed.Status)
		require.NotNil(t, claimed.ExternalJobID)
		assert.Equal(t, externalID, *claimed.ExternalJobID)
		// The sort key moved into the processing partition with the record.
		assert.Contains(t, claimed.SortKey, string(model.JobStatusProcessing)+"#")

		// A second claim misses the status guard.
		_, err = repo.Update(ctx, job.ID, &model.JobUpdate{
			Status:        &status,
			ExternalJobID: &externalID,
		}, model.JobStatusPending)
		require.ErrorIs(t, err, core.ErrStaleStatus)

		// A guarded update against a missing row reports not found.
		_, err = repo.Update(ctx, "missing", &model.JobUpdate{Status: &status}, model.JobStatusPending)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

		resolved, err := repo.GetByExternalID(ctx, externalID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, resolved.ID)
	})
}

func TestJobRepoCountActiveForUser(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()

		jobs := []*model.Job{
			testutil.NewJob().WithUser("user-1").Build(),
			testutil.NewJob().WithUser("user-1").WithStatus(model.JobStatusProcessing).Build(),
			testutil.NewJob().WithUser("user-1").WithStatus(model.JobStatusCompleted).Build(),
			testutil.NewJob().WithUser("user-2").Build(),
		}
		for _, job := range jobs {
			require.NoError(t, repo.Insert(ctx, job))
		}

		count, err := repo.CountActiveForUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestJobRepoStatsWithoutCompletionSample(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, testutil.NewJob().Build()))
		require.NoError(t, repo.Insert(ctx, testutil.NewJob().Build()))

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalPending)
		assert.Equal(t, 0, stats.ProcessingCount)
		assert.Equal(t, int64(model.DefaultProcessingTimeMillis), stats.AverageProcessingTimeMillis)
		assert.Equal(t, int64(2*model.DefaultProcessingTimeMillis), stats.EstimatedWaitMillis)
	})
}

func TestJobRepoTimeoutOverdueJobs(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()
		past := time.Now().UTC().Add(-time.Minute)

		overduePending := testutil.NewJob().TimedOutSince(past).Build()
		overdueProcessing := testutil.NewJob().
			WithStatus(model.JobStatusProcessing).
			TimedOutSince(past).
			Build()
		fresh := testutil.NewJob().Build()
		for _, job := range []*model.Job{overduePending, overdueProcessing, fresh} {
			require.NoError(t, repo.Insert(ctx, job))
		}

		swept, err := repo.TimeoutOverdueJobs(ctx, 100)
		require.NoError(t, err)
		require.Len(t, swept, 2)

		byID := map[string]*model.Job{}
		for _, job := range swept {
			assert.Equal(t, model.JobStatusTimeout, job.Status)
			byID[job.ID] = job
		}
		require.Contains(t, byID, overduePending.ID)
		require.Contains(t, byID, overdueProcessing.ID)
		require.NotNil(t, byID[overduePending.ID].ErrorMessage)
		assert.Equal(t, queueTimeoutMessage, *byID[overduePending.ID].ErrorMessage)
		require.NotNil(t, byID[overdueProcessing.ID].ErrorMessage)
		assert.Equal(t, processingTimeoutMessage, *byID[overdueProcessing.ID].ErrorMessage)

		untouched, err := repo.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusPending, untouched.Status)
	})
}

func TestJobRepoDeleteExpiredJobs(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()
		past := time.Now().UTC().Add(-time.Minute)

		expiredTerminal := testutil.NewJob().
			WithStatus(model.JobStatusCompleted).
			ExpiredSince(past).
			Build()
		// An expired pending job is never retention-deleted; only terminal
		// states age out.
		expiredPending := testutil.NewJob().ExpiredSince(past).Build()
		require.NoError(t, repo.Insert(ctx, expiredTerminal))
		require.NoError(t, repo.Insert(ctx, expiredPending))

		deleted, err := repo.DeleteExpiredJobs(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.GetByID(ctx, expiredTerminal.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

		_, err = repo.GetByID(ctx, expiredPending.ID)
		assert.NoError(t, err)
	})
}

func TestJobRepoRecomputePositions(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newIntegrationRepo(db)
		ctx := context.Background()
		base := time.Now().UTC()

		first := testutil.NewJob().
			EnqueuedAt(base).
			WithPriority(model.RetryPriority).
			Build()
		second := testutil.NewJob().EnqueuedAt(base.Add(-time.Minute)).Build()
		third := testutil.NewJob().EnqueuedAt(base).Build()
		for _, job := range []*model.Job{first, second, third} {
			require.NoError(t, repo.Insert(ctx, job))
		}

		updated, err := repo.RecomputePositions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, updated)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		for i, job := range pending {
			assert.Equal(t, i+1, job.QueuePosition)
			assert.Equal(t, int64(i)*model.DefaultProcessingTimeMillis, job.EstimatedWaitMillis)
		}
		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, second.ID, pending[1].ID)
		assert.Equal(t, third.ID, pending[2].ID)
	})
}
