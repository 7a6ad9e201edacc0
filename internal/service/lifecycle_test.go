package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/openpalette/genstudio/internal/errors"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/failure"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/mocks"
	"github.com/openpalette/genstudio/internal/observability/notify"
	"github.com/openpalette/genstudio/internal/service/failurenotifier"
)

// captureGateway records every published payload so tests can assert on the
// realtime message sequence without a live transport.
type captureGateway struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (g *captureGateway) Send(ctx context.Context, connectionID string, payload []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads = append(g.payloads, payload)
	return nil
}

func (g *captureGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payloads)
}

type lifecycleFixture struct {
	jobs     *mocks.MockJobRepository
	gateway  *captureGateway
	notified []notify.GenerationFailurePayload
	svc      *LifecycleService
	now      time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &lifecycleFixture{
		jobs:    mocks.NewMockJobRepository(ctrl),
		gateway: &captureGateway{},
		now:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	connections := mocks.NewMockConnectionRepository(ctrl)

	broadcaster, err := NewBroadcastService(BroadcastServiceOptions{
		Gateway:     f.gateway,
		Connections: connections,
	})
	require.NoError(t, err)

	notifier := failurenotifier.NewService(failurenotifier.Options{
		Sinks: []failurenotifier.SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(ctx context.Context, payload notify.GenerationFailurePayload) error {
				f.notified = append(f.notified, payload)
				return nil
			}),
		}},
	})

	svc, err := NewLifecycleService(LifecycleServiceOptions{
		Jobs:        f.jobs,
		Broadcaster: broadcaster,
		Notifier:    notifier,
		Now:         func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func processingJob() *model.Job {
	connID := "conn-1"
	userID := "user-1"
	extID := "ext-42"
	started := time.Date(2026, 3, 10, 11, 58, 0, 0, time.UTC)
	return &model.Job{
		ID:            "job-1",
		UserID:        &userID,
		ConnectionID:  &connID,
		Status:        model.JobStatusProcessing,
		Priority:      model.DefaultPriority,
		ExternalJobID: &extID,
		StartedAt:     &started,
	}
}

func TestLifecycleClaim(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	var update *model.JobUpdate
	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusPending).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			update = u
			job := processingJob()
			return job, nil
		})

	job, err := f.svc.Claim(ctx, "job-1", "ext-42")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, job.Status)

	require.NotNil(t, update)
	require.NotNil(t, update.Status)
	assert.Equal(t, model.JobStatusProcessing, *update.Status)
	require.NotNil(t, update.ExternalJobID)
	assert.Equal(t, "ext-42", *update.ExternalJobID)
	require.NotNil(t, update.StartedAt)

	assert.Equal(t, 1, f.gateway.count(), "claim broadcasts the processing message")
}

func TestLifecycleClaimConflict(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusPending).
		Return(nil, core.ErrStaleStatus)

	_, err := f.svc.Claim(ctx, "job-1", "ext-42")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestLifecycleProgress(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)

	err := f.svc.Progress(ctx, &model.ProgressEvent{
		ExternalJobID: "ext-42",
		NodeID:        "7",
		ProgressValue: 15,
		ProgressMax:   30,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.count())
}

func TestLifecycleProgressAfterTerminalDropped(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	done := processingJob()
	done.Status = model.JobStatusCompleted
	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(done, nil)

	err := f.svc.Progress(ctx, &model.ProgressEvent{ExternalJobID: "ext-42", NodeID: "7"})
	require.NoError(t, err)
	assert.Zero(t, f.gateway.count(), "late progress for a finished job is dropped")
}

func TestLifecycleComplete(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)

	var update *model.JobUpdate
	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			update = u
			job := processingJob()
			job.Status = model.JobStatusCompleted
			job.ResultRefs = u.ResultRefs
			return job, nil
		})

	job, err := f.svc.Complete(ctx, &model.CompletionEvent{
		ExternalJobID: "ext-42",
		ResultRefs:    []string{"s3://bucket/result-1.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)

	require.NotNil(t, update)
	require.NotNil(t, update.Status)
	assert.Equal(t, model.JobStatusCompleted, *update.Status)
	require.NotNil(t, update.CompletedAt)
	assert.Equal(t, []string{"s3://bucket/result-1.png"}, update.ResultRefs)
	assert.Equal(t, 1, f.gateway.count())
}

func TestLifecycleFailRetries(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)

	var update *model.JobUpdate
	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			update = u
			job := processingJob()
			job.Status = model.JobStatusPending
			job.Priority = *u.Priority
			job.RetryCount = *u.RetryCount
			return job, nil
		})

	job, err := f.svc.Fail(ctx, &model.FailureEvent{
		ExternalJobID: "ext-42",
		ErrorType:     "connection_error",
		ErrorMessage:  "upstream reset",
	})
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, model.RetryPriority, job.Priority)
	assert.Less(t, job.Priority, model.DefaultPriority, "retries must preempt fresh admissions")

	require.NotNil(t, update)
	require.NotNil(t, update.ErrorType)
	assert.Equal(t, string(failure.TypeConnectionFailure), *update.ErrorType)
	require.NotNil(t, update.LastErrorMessage)
	assert.Equal(t, "upstream reset", *update.LastErrorMessage)

	assert.Equal(t, 1, f.gateway.count(), "retry broadcasts a retrying event, not a failure")
	assert.Empty(t, f.notified, "retries do not page")
}

func TestLifecycleFailTerminalWhenNotRetryable(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)

	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			job := processingJob()
			job.Status = model.JobStatusFailed
			job.ErrorType = u.ErrorType
			return job, nil
		})

	job, err := f.svc.Fail(ctx, &model.FailureEvent{
		ExternalJobID: "ext-42",
		ErrorType:     "weird_blowup",
		ErrorMessage:  "unexplained crash",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, 1, f.gateway.count())

	require.Len(t, f.notified, 1)
	assert.Equal(t, "job-1", f.notified[0].JobID)
	assert.Equal(t, string(failure.TypeUnknown), f.notified[0].ErrorType)
}

func TestLifecycleFailInvalidInputNeverPages(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)
	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			job := processingJob()
			job.Status = model.JobStatusFailed
			return job, nil
		})

	job, err := f.svc.Fail(ctx, &model.FailureEvent{
		ExternalJobID: "ext-42",
		ErrorType:     "invalid_prompt_input",
		ErrorMessage:  "prompt rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status, "deterministic input errors go terminal on the first failure")
	assert.Empty(t, f.notified, "user errors are not operational alerts")
}

func TestLifecycleFailTerminalWhenRetriesExhausted(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	exhausted := processingJob()
	exhausted.RetryCount = failure.MaxRetryAttempts
	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(exhausted, nil)

	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			job := processingJob()
			job.Status = model.JobStatusFailed
			job.RetryCount = failure.MaxRetryAttempts
			return job, nil
		})

	job, err := f.svc.Fail(ctx, &model.FailureEvent{
		ExternalJobID: "ext-42",
		ErrorType:     "timeout",
		ErrorMessage:  "worker deadline",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.LessOrEqual(t, job.RetryCount, failure.MaxRetryAttempts)
	require.Len(t, f.notified, 1)
}

func TestLifecycleRetryFailureEscalatesToTerminal(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.jobs.EXPECT().GetByExternalID(ctx, "ext-42").Return(processingJob(), nil)

	// The re-enqueue write fails outright.
	first := f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).
		Return(nil, errors.New("store unreachable"))

	// The escalation then forces terminal failed.
	var terminal *model.JobUpdate
	f.jobs.EXPECT().Update(ctx, "job-1", gomock.Any(), model.JobStatusProcessing).After(first).DoAndReturn(
		func(_ context.Context, _ string, u *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			terminal = u
			job := processingJob()
			job.Status = model.JobStatusFailed
			return job, nil
		})

	job, err := f.svc.Fail(ctx, &model.FailureEvent{
		ExternalJobID: "ext-42",
		ErrorType:     "timeout",
		ErrorMessage:  "worker deadline",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)

	require.NotNil(t, terminal)
	require.NotNil(t, terminal.Status)
	assert.Equal(t, model.JobStatusFailed, *terminal.Status, "a failed re-enqueue must never be retried silently")
}
