package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/openpalette/genstudio/internal/domain/model"
)

// JobBuilder provides a fluent interface for building Job records for tests.
type JobBuilder struct {
	job *model.Job
}

// NewJob creates a JobBuilder with sensible pending-job defaults.
func NewJob() *JobBuilder {
	now := time.Now().UTC().Truncate(time.Millisecond)
	job := &model.Job{
		ID:     uuid.NewString(),
		Prompt: "a quiet harbor at dawn",
		Params: model.GenerationParams{
			Width:    512,
			Height:   512,
			Steps:    20,
			CfgScale: 7,
		},
		Priority:  model.DefaultPriority,
		Status:    model.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		TimeoutAt: now.Add(model.JobTimeoutWindow),
		ExpiresAt: now.Add(model.JobTimeoutWindow),
	}
	job.RebuildSortKey(now)
	return &JobBuilder{job: job}
}

// WithID sets the job id.
func (b *JobBuilder) WithID(id string) *JobBuilder {
	b.job.ID = id
	return b
}

// WithUser sets the owning user.
func (b *JobBuilder) WithUser(userID string) *JobBuilder {
	b.job.UserID = &userID
	return b
}

// WithConnection sets the realtime connection reference.
func (b *JobBuilder) WithConnection(connectionID string) *JobBuilder {
	b.job.ConnectionID = &connectionID
	return b
}

// WithPrompt sets the prompt.
func (b *JobBuilder) WithPrompt(prompt string) *JobBuilder {
	b.job.Prompt = prompt
	return b
}

// WithPriority sets the priority and refreshes the sort key.
func (b *JobBuilder) WithPriority(priority int) *JobBuilder {
	b.job.Priority = priority
	b.job.RebuildSortKey(b.job.CreatedAt)
	return b
}

// WithStatus sets the lifecycle status and refreshes the sort key.
func (b *JobBuilder) WithStatus(status model.JobStatus) *JobBuilder {
	b.job.Status = status
	b.job.RebuildSortKey(b.job.CreatedAt)
	return b
}

// WithRetryCount sets the retry count.
func (b *JobBuilder) WithRetryCount(count int) *JobBuilder {
	b.job.RetryCount = count
	return b
}

// WithExternalJobID binds the worker-side identifier.
func (b *JobBuilder) WithExternalJobID(externalID string) *JobBuilder {
	b.job.ExternalJobID = &externalID
	return b
}

// EnqueuedAt rewrites all time fields relative to the given enqueue time,
// letting tests control queue ordering.
func (b *JobBuilder) EnqueuedAt(t time.Time) *JobBuilder {
	t = t.UTC().Truncate(time.Millisecond)
	b.job.CreatedAt = t
	b.job.UpdatedAt = t
	b.job.TimeoutAt = t.Add(model.JobTimeoutWindow)
	b.job.ExpiresAt = t.Add(model.JobTimeoutWindow)
	b.job.RebuildSortKey(t)
	return b
}

// TimedOutSince moves the processing deadline into the past so the sweeper
// treats the job as overdue.
func (b *JobBuilder) TimedOutSince(t time.Time) *JobBuilder {
	b.job.TimeoutAt = t.UTC().Truncate(time.Millisecond)
	return b
}

// ExpiredSince moves the retention deadline into the past so the sweeper
// treats the job as expired.
func (b *JobBuilder) ExpiredSince(t time.Time) *JobBuilder {
	b.job.ExpiresAt = t.UTC().Truncate(time.Millisecond)
	return b
}

// Build returns the constructed job.
func (b *JobBuilder) Build() *model.Job {
	clone := *b.job
	return &clone
}
