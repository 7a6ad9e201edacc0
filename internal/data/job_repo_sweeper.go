package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openpalette/genstudio/internal/data/pgxutil"
	"github.com/openpalette/genstudio/internal/domain/model"
)

// Advisory lock namespace for sweeper operations. Two-arg
// pg_try_advisory_xact_lock(major, minor) keeps concurrent sweeper instances
// from running the same pass twice. Major key 700 is reserved for the
// genstudio sweeper.
const (
	advisoryLockSweeperMajor     = 700
	advisoryLockSweeperTimeouts  = 1 // minor key for TimeoutOverdueJobs
	advisoryLockSweeperDelete    = 2 // minor key for DeleteExpiredJobs
	advisoryLockSweeperPositions = 3 // minor key for RecomputePositions
)

const (
	queueTimeoutMessage      = "Generation timed out waiting in queue"
	processingTimeoutMessage = "Generation timed out during processing"
)

func tryAdvisoryLock(ctx context.Context, tx *sql.Tx, minor int) (bool, error) {
	var locked bool
	if err := tx.QueryRowContext(ctx,
		"SELECT pg_try_advisory_xact_lock($1, $2)",
		advisoryLockSweeperMajor, minor).Scan(&locked); err != nil {
		return false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	return locked, nil
}

// TimeoutOverdueJobs forces non-terminal jobs whose timeoutAt has passed into
// the timeout status. Pending and processing partitions are swept separately
// so the persisted error message identifies which phase expired. Processes up
// to batchSize rows per partition per call. Returns the jobs that were timed
// out so their clients can be notified.
func (r *JobRepo) TimeoutOverdueJobs(ctx context.Context, batchSize int) ([]*model.Job, error) {
	var swept []*model.Job
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			locked, err := tryAdvisoryLock(ctx, tx, advisoryLockSweeperTimeouts)
			if err != nil {
				return err
			}
			if !locked {
				return nil
			}

			now := r.timeProvider.Now().UTC()
			for _, phase := range []struct {
				status  model.JobStatus
				message string
			}{
				{model.JobStatusPending, queueTimeoutMessage},
				{model.JobStatusProcessing, processingTimeoutMessage},
			} {
				jobs, sweepErr := r.timeoutPhase(ctx, tx, timeoutPhaseParams{
					status:    phase.status,
					message:   phase.message,
					batchSize: batchSize,
					now:       now,
				})
				if sweepErr != nil {
					return sweepErr
				}
				swept = append(swept, jobs...)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return swept, nil
}

type timeoutPhaseParams struct {
	status    model.JobStatus
	message   string
	batchSize int
	now       time.Time
}

func (r *JobRepo) timeoutPhase(
	ctx context.Context,
	tx *sql.Tx,
	p timeoutPhaseParams,
) ([]*model.Job, error) {
	rows, err := tx.QueryContext(ctx, `
		UPDATE generation_jobs
		SET status = 'timeout',
			sort_key = 'timeout' || '#' || lpad(priority::text, 6, '0') || '#' || $1,
			error_type = 'timeout',
			error_message = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id IN (
			SELECT id FROM generation_jobs
			WHERE status = $4
			  AND timeout_at < $3
			ORDER BY timeout_at
			LIMIT $5
		)
		RETURNING `+jobColumns,
		paddedMillis(p.now), p.message, p.now, p.status, p.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("timeout %s jobs: %w", p.status, err)
	}
	return scanJobs(rows)
}

// DeleteExpiredJobs removes terminal jobs past their retention deadline.
// Processes up to batchSize rows per call to prevent long locks and I/O
// spikes. Returns the number of jobs deleted.
func (r *JobRepo) DeleteExpiredJobs(ctx context.Context, batchSize int) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			locked, err := tryAdvisoryLock(ctx, tx, advisoryLockSweeperDelete)
			if err != nil {
				return err
			}
			if !locked {
				return nil
			}

			now := r.timeProvider.Now().UTC()
			res, err := tx.ExecContext(ctx, `
				DELETE FROM generation_jobs
				WHERE id IN (
					SELECT id FROM generation_jobs
					WHERE status IN ('completed', 'failed', 'timeout')
					  AND expires_at < $1
					ORDER BY expires_at
					LIMIT $2
				)`, now, batchSize)
			if err != nil {
				return fmt.Errorf("delete expired jobs: %w", err)
			}

			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

// RecomputePositions re-walks the pending partition in priority order and
// rewrites each job's queuePosition and estimatedWaitMillis. Runs on the
// sweeper tick rather than per-enqueue to bound write amplification.
func (r *JobRepo) RecomputePositions(ctx context.Context) (int, error) {
	stats, err := r.Stats(ctx)
	if err != nil {
		return 0, err
	}
	avg := stats.AverageProcessingTimeMillis

	var updated int
	err = pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			locked, lockErr := tryAdvisoryLock(ctx, tx, advisoryLockSweeperPositions)
			if lockErr != nil {
				return lockErr
			}
			if !locked {
				return nil
			}

			rows, queryErr := tx.QueryContext(ctx, `
				SELECT id FROM generation_jobs
				WHERE status = 'pending'
				ORDER BY sort_key ASC
				FOR UPDATE`)
			if queryErr != nil {
				return fmt.Errorf("lock pending jobs: %w", queryErr)
			}
			ids, collectErr := collectIDs(rows)
			if collectErr != nil {
				return collectErr
			}

			now := r.timeProvider.Now().UTC()
			for i, id := range ids {
				if _, execErr := tx.ExecContext(ctx, `
					UPDATE generation_jobs
					SET queue_position = $1,
						estimated_wait_ms = $2,
						updated_at = $3
					WHERE id = $4`,
					i+1, int64(i)*avg, now, id); execErr != nil {
					return fmt.Errorf("rewrite position for job %s: %w", id, execErr)
				}
			}
			updated = len(ids)
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
