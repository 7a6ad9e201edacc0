// Package data provides the persistence layer for the genstudio pipeline:
// the PostgreSQL-backed generation job ledger and its maintenance operations.
package data

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openpalette/genstudio/internal/domain/model"
)

// JobRepoConfig holds configuration options for the job repository.
type JobRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for the generation job ledger.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database
// connection and configuration.
func NewJobRepo(db *sql.DB, cfg JobRepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  user_id,
  connection_id,
  prompt,
  params,
  priority,
  status,
  sort_key,
  queue_position,
  estimated_wait_ms,
  external_job_id,
  retry_count,
  error_type,
  error_message,
  last_error_message,
  result_refs,
  created_at,
  updated_at,
  started_at,
  completed_at,
  timeout_at,
  expires_at
`

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		job        model.Job
		paramsRaw  []byte
		resultsRaw []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.ConnectionID,
		&job.Prompt,
		&paramsRaw,
		&job.Priority,
		&job.Status,
		&job.SortKey,
		&job.QueuePosition,
		&job.EstimatedWaitMillis,
		&job.ExternalJobID,
		&job.RetryCount,
		&job.ErrorType,
		&job.ErrorMessage,
		&job.LastErrorMessage,
		&resultsRaw,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.StartedAt,
		&job.CompletedAt,
		&job.TimeoutAt,
		&job.ExpiresAt,
	); err != nil {
		return nil, err
	}

	if len(paramsRaw) > 0 {
		if err := json.Unmarshal(paramsRaw, &job.Params); err != nil {
			return nil, fmt.Errorf("decode generation params: %w", err)
		}
	}
	if len(resultsRaw) > 0 {
		if err := json.Unmarshal(resultsRaw, &job.ResultRefs); err != nil {
			return nil, fmt.Errorf("decode result refs: %w", err)
		}
	}
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*model.Job, error) {
	defer func() {
		_ = rows.Close()
	}()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// paddedMillis renders a timestamp as the zero-padded millisecond component
// used inside sort keys.
func paddedMillis(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixMilli())
}

func marshalResultRefs(refs []string) ([]byte, error) {
	data, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshal result refs: %w", err)
	}
	return data, nil
}
