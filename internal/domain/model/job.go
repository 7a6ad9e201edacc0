// Package model defines the core data types used throughout the genstudio generation pipeline.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current lifecycle state of a generation job.
type JobStatus string

const (
	// JobStatusPending indicates a job is waiting in the queue.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a job has been claimed by a worker.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates a job finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job failed terminally.
	JobStatusFailed JobStatus = "failed"
	// JobStatusTimeout indicates a job exceeded its deadline in the queue or during processing.
	JobStatusTimeout JobStatus = "timeout"
)

const (
	// DefaultPriority is assigned to fresh admissions. Lower values are served first.
	DefaultPriority = 1000
	// RetryPriority is assigned to re-enqueued jobs so retries preempt fresh traffic.
	RetryPriority = 100
	// MaxRetryAttempts bounds how many times a failed job may be re-enqueued.
	MaxRetryAttempts = 3
	// JobTimeoutWindow is the absolute deadline applied at admission.
	JobTimeoutWindow = 30 * time.Minute
	// DefaultProcessingTimeMillis seeds wait estimates when no completion sample exists.
	DefaultProcessingTimeMillis = 120000
)

// Valid returns true if the JobStatus is one of the known lifecycle states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusTimeout:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave this status.
// Failed is treated as terminal here; the retry path re-enqueues before
// the job ever reaches failed, so a persisted failed status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusTimeout
}

// GenerationParams carries the opaque generation parameters supplied at admission.
type GenerationParams struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Steps     int     `json:"steps"`
	CfgScale  float64 `json:"cfgScale"`
	Seed      *int64  `json:"seed,omitempty"`
	BatchSize int     `json:"batchSize,omitempty"`
}

// Units returns the number of generation units the request produces.
func (p GenerationParams) Units() int {
	if p.BatchSize > 1 {
		return p.BatchSize
	}
	return 1
}

// Job represents one generation request and its full lifecycle record.
type Job struct {
	ID                  string           `json:"jobId"                      db:"id"`
	UserID              *string          `json:"userId,omitempty"           db:"user_id"`
	ConnectionID        *string          `json:"connectionId,omitempty"     db:"connection_id"`
	Prompt              string           `json:"prompt"                     db:"prompt"`
	Params              GenerationParams `json:"parameters"                 db:"params"`
	Priority            int              `json:"priority"                   db:"priority"`
	Status              JobStatus        `json:"status"                     db:"status"`
	SortKey             string           `json:"-"                          db:"sort_key"`
	QueuePosition       int              `json:"queuePosition"              db:"queue_position"`
	EstimatedWaitMillis int64            `json:"estimatedWaitMillis"        db:"estimated_wait_ms"`
	ExternalJobID       *string          `json:"externalJobId,omitempty"    db:"external_job_id"`
	RetryCount          int              `json:"retryCount"                 db:"retry_count"`
	ErrorType           *string          `json:"errorType,omitempty"        db:"error_type"`
	ErrorMessage        *string          `json:"errorMessage,omitempty"     db:"error_message"`
	LastErrorMessage    *string          `json:"lastErrorMessage,omitempty" db:"last_error_message"`
	ResultRefs          []string         `json:"resultReference,omitempty"  db:"result_refs"`
	CreatedAt           time.Time        `json:"createdAt"                  db:"created_at"`
	UpdatedAt           time.Time        `json:"updatedAt"                  db:"updated_at"`
	StartedAt           *time.Time       `json:"startedAt,omitempty"        db:"started_at"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty"      db:"completed_at"`
	TimeoutAt           time.Time        `json:"timeoutAt"                  db:"timeout_at"`
	ExpiresAt           time.Time        `json:"-"                          db:"expires_at"`
}

// ErrNoJobsPending is returned when the pending partition is empty.
var ErrNoJobsPending = errors.New("no pending jobs available")

// JobSortKey builds the composite secondary-index key that orders the queue.
// Ascending lexical order over the key yields strict priority order with FIFO
// tie-break within equal priority, and partitions rows by status. The key is
// reconstructible from status, priority and enqueue time alone.
func JobSortKey(status JobStatus, priority int, enqueuedAt time.Time) string {
	return fmt.Sprintf("%s#%06d#%020d", status, priority, enqueuedAt.UnixMilli())
}

// RebuildSortKey refreshes the job's sort key from its current status,
// priority and enqueue time component.
func (j *Job) RebuildSortKey(enqueuedAt time.Time) {
	j.SortKey = JobSortKey(j.Status, j.Priority, enqueuedAt)
}

// SubmitJobRequest is the admission input.
type SubmitJobRequest struct {
	Prompt       string           `json:"prompt"`
	Params       GenerationParams `json:"parameters"`
	ConnectionID *string          `json:"connectionId,omitempty"`
	Priority     int              `json:"priority,omitempty"`
}

const (
	maxPromptLength = 4000
	maxDimension    = 4096
	maxSteps        = 150
	maxBatchSize    = 8
	maxPriority     = 999999
)

// Validate checks the admission input. Validation failures are terminal and
// never retried.
func (r *SubmitJobRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if len(r.Prompt) > maxPromptLength {
		return fmt.Errorf("prompt exceeds %d characters", maxPromptLength)
	}
	if r.Params.Width <= 0 || r.Params.Height <= 0 {
		return errors.New("width and height must be positive")
	}
	if r.Params.Width > maxDimension || r.Params.Height > maxDimension {
		return fmt.Errorf("dimensions must be at most %d", maxDimension)
	}
	if r.Params.Steps <= 0 || r.Params.Steps > maxSteps {
		return fmt.Errorf("steps must be between 1 and %d", maxSteps)
	}
	if r.Params.BatchSize < 0 || r.Params.BatchSize > maxBatchSize {
		return fmt.Errorf("batch size must be between 0 and %d", maxBatchSize)
	}
	if r.Priority < 0 || r.Priority > maxPriority {
		return fmt.Errorf("priority must be between 0 and %d", maxPriority)
	}
	return nil
}

// SubmitJobResponse is returned synchronously from admission.
type SubmitJobResponse struct {
	JobID               string    `json:"jobId"`
	QueuePosition       int       `json:"queuePosition"`
	EstimatedWaitMillis int64     `json:"estimatedWaitMillis"`
	Status              JobStatus `json:"status"`
	Message             string    `json:"message"`
}

// QueueStats summarizes the current queue for wait estimation.
type QueueStats struct {
	TotalPending                int   `json:"totalPending"`
	ProcessingCount             int   `json:"processingCount"`
	AverageProcessingTimeMillis int64 `json:"averageProcessingTimeMillis"`
	EstimatedWaitMillis         int64 `json:"estimatedWaitMillis"`
}

// JobUpdate carries a field-level partial update. Nil fields are left
// untouched. When Status is set, the repository rewrites the sort key in the
// same statement so the job moves partitions atomically with the record.
type JobUpdate struct {
	Status           *JobStatus
	Priority         *int
	QueuePosition    *int
	EstimatedWaitMs  *int64
	ExternalJobID    *string
	RetryCount       *int
	ErrorType        *string
	ErrorMessage     *string
	LastErrorMessage *string
	ResultRefs       []string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ClearConnection  bool
	// EnqueuedAt supplies the enqueue-time component of the rebuilt sort key
	// for status updates. Zero means "now".
	EnqueuedAt time.Time
}

// Empty reports whether the update would change nothing.
func (u *JobUpdate) Empty() bool {
	return u.Status == nil && u.Priority == nil && u.QueuePosition == nil &&
		u.EstimatedWaitMs == nil && u.ExternalJobID == nil && u.RetryCount == nil &&
		u.ErrorType == nil && u.ErrorMessage == nil && u.LastErrorMessage == nil &&
		u.ResultRefs == nil && u.StartedAt == nil && u.CompletedAt == nil &&
		!u.ClearConnection
}

// MarshalParams renders the generation parameters for persistence.
func (j *Job) MarshalParams() ([]byte, error) {
	data, err := json.Marshal(j.Params)
	if err != nil {
		return nil, fmt.Errorf("marshal generation params: %w", err)
	}
	return data, nil
}
