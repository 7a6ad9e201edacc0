package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	apperrors "github.com/openpalette/genstudio/internal/errors"
)

// Insert persists a fully populated job record under its sort key.
func (r *JobRepo) Insert(ctx context.Context, job *model.Job) error {
	if job == nil {
		return errors.New("job is required")
	}

	params, err := job.MarshalParams()
	if err != nil {
		return err
	}

	var resultRefs []byte
	if job.ResultRefs != nil {
		resultRefs, err = marshalResultRefs(job.ResultRefs)
		if err != nil {
			return err
		}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO generation_jobs (
			id, user_id, connection_id, prompt, params, priority, status,
			sort_key, queue_position, estimated_wait_ms, external_job_id,
			retry_count, error_type, error_message, last_error_message,
			result_refs, created_at, updated_at, started_at, completed_at,
			timeout_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)`,
		job.ID, job.UserID, job.ConnectionID, job.Prompt, params,
		job.Priority, job.Status, job.SortKey, job.QueuePosition,
		job.EstimatedWaitMillis, job.ExternalJobID, job.RetryCount,
		job.ErrorType, job.ErrorMessage, job.LastErrorMessage, resultRefs,
		job.CreatedAt.UTC(), job.UpdatedAt.UTC(), job.StartedAt,
		job.CompletedAt, job.TimeoutAt.UTC(), job.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, apperrors.MapDBError(err))
	}
	return job, nil
}

// GetByExternalID resolves a worker callback's externalJobId to the job it
// correlates with.
func (r *JobRepo) GetByExternalID(ctx context.Context, externalID string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE external_job_id = $1`, externalID)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("get job by external id %s: %w", externalID, apperrors.MapDBError(err))
	}
	return job, nil
}

// NextPending returns the single lowest-sort-key pending job. It does not
// mutate status; the worker's claim drives the pending -> processing
// transition.
func (r *JobRepo) NextPending(ctx context.Context) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM generation_jobs
		WHERE status = 'pending'
		ORDER BY sort_key ASC
		LIMIT 1`)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoJobsPending
		}
		return nil, fmt.Errorf("next pending job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// Update applies a field-level partial update in a single statement. When the
// update changes status, the sort key is rewritten in the same statement so
// the job moves index partitions atomically with the record. A non-empty
// expectStatus makes the write conditional; core.ErrStaleStatus is returned
// when the guard fails on a live row.
func (r *JobRepo) Update(
	ctx context.Context,
	id string,
	update *model.JobUpdate,
	expectStatus model.JobStatus,
) (*model.Job, error) {
	if update == nil || update.Empty() {
		return r.GetByID(ctx, id)
	}

	now := r.timeProvider.Now().UTC()
	b := &updateBuilder{}
	b.set("updated_at", now)

	if update.Priority != nil {
		b.set("priority", *update.Priority)
	}
	if update.QueuePosition != nil {
		b.set("queue_position", *update.QueuePosition)
	}
	if update.EstimatedWaitMs != nil {
		b.set("estimated_wait_ms", *update.EstimatedWaitMs)
	}
	if update.ExternalJobID != nil {
		b.set("external_job_id", *update.ExternalJobID)
	}
	if update.RetryCount != nil {
		b.set("retry_count", *update.RetryCount)
	}
	if update.ErrorType != nil {
		b.set("error_type", *update.ErrorType)
	}
	if update.ErrorMessage != nil {
		b.set("error_message", *update.ErrorMessage)
	}
	if update.LastErrorMessage != nil {
		b.set("last_error_message", *update.LastErrorMessage)
	}
	if update.ResultRefs != nil {
		refs, err := marshalResultRefs(update.ResultRefs)
		if err != nil {
			return nil, err
		}
		b.set("result_refs", refs)
	}
	if update.StartedAt != nil {
		b.set("started_at", update.StartedAt.UTC())
	}
	if update.CompletedAt != nil {
		b.set("completed_at", update.CompletedAt.UTC())
	}
	if update.ClearConnection {
		b.setExpr("connection_id = NULL")
	}

	if update.Status != nil {
		b.set("status", string(*update.Status))
		enqueuedAt := update.EnqueuedAt
		if enqueuedAt.IsZero() {
			enqueuedAt = now
		}
		if update.Priority != nil {
			// Both components known up front; bind the full key.
			b.set("sort_key", model.JobSortKey(*update.Status, *update.Priority, enqueuedAt))
		} else {
			// Priority is unchanged; rebuild the key from the stored column.
			statusArg := b.arg(string(*update.Status))
			millisArg := b.arg(paddedMillis(enqueuedAt))
			b.setExpr(fmt.Sprintf(
				"sort_key = %s || '#' || lpad(priority::text, 6, '0') || '#' || %s",
				statusArg, millisArg))
		}
	}

	query := `UPDATE generation_jobs SET ` + b.clauses() +
		` WHERE id = ` + b.arg(id)
	if expectStatus != "" {
		query += ` AND status = ` + b.arg(string(expectStatus))
	}
	query += ` RETURNING ` + jobColumns

	row := r.DB.QueryRowContext(ctx, query, b.args...)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) && expectStatus != "" {
			return nil, r.classifyGuardFailure(ctx, id)
		}
		return nil, fmt.Errorf("update job %s: %w", id, apperrors.MapDBError(err))
	}
	return job, nil
}

// classifyGuardFailure distinguishes a missing row from a conditional-status
// miss after a guarded update matched nothing.
func (r *JobRepo) classifyGuardFailure(ctx context.Context, id string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM generation_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("inspect job %s after guard miss: %w", id, err)
	}
	if !exists {
		return apperrors.NotFoundf("job %s not found", id)
	}
	return core.ErrStaleStatus
}

// CountActiveForUser counts the user's jobs in {pending, processing}. This
// backs the one-generation-at-a-time gate; it is a point-in-time check, not
// a lock.
func (r *JobRepo) CountActiveForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM generation_jobs
		WHERE user_id = $1 AND status IN ('pending', 'processing')`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active jobs for user: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// ListPending returns all pending jobs in strict priority order.
func (r *JobRepo) ListPending(ctx context.Context) ([]*model.Job, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM generation_jobs
		WHERE status = 'pending'
		ORDER BY sort_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", apperrors.MapDBError(err))
	}
	return scanJobs(rows)
}

// statsSampleSize bounds the completion sample used for the processing-time
// average.
const statsSampleSize = 50

// Stats summarizes the queue. The average processing time is the mean of
// completedAt - startedAt over the most recent completions inside the last
// hour, falling back to the fixed default when no sample exists.
func (r *JobRepo) Stats(ctx context.Context) (*model.QueueStats, error) {
	cutoff := r.timeProvider.Now().Add(-time.Hour).UTC()

	var (
		stats     model.QueueStats
		avgMillis float64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM generation_jobs WHERE status = 'pending'),
			(SELECT COUNT(*) FROM generation_jobs WHERE status = 'processing'),
			(SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - started_at)) * 1000), 0)
			 FROM (
				SELECT started_at, completed_at
				FROM generation_jobs
				WHERE status = 'completed'
				  AND completed_at > $1
				  AND started_at IS NOT NULL
				ORDER BY completed_at DESC
				LIMIT $2
			 ) recent)`,
		cutoff, statsSampleSize,
	).Scan(&stats.TotalPending, &stats.ProcessingCount, &avgMillis)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", apperrors.MapDBError(err))
	}

	stats.AverageProcessingTimeMillis = int64(avgMillis)
	if stats.AverageProcessingTimeMillis <= 0 {
		stats.AverageProcessingTimeMillis = model.DefaultProcessingTimeMillis
	}
	stats.EstimatedWaitMillis = int64(stats.TotalPending) * stats.AverageProcessingTimeMillis
	return &stats, nil
}

// updateBuilder accumulates SET clauses and positional arguments.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *updateBuilder) set(column string, v any) {
	b.sets = append(b.sets, column+" = "+b.arg(v))
}

func (b *updateBuilder) setExpr(expr string) {
	b.sets = append(b.sets, expr)
}

func (b *updateBuilder) clauses() string {
	return strings.Join(b.sets, ", ")
}
