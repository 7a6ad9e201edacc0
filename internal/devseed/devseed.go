// Package devseed populates a development database with representative
// generation jobs so the queue, worker, and realtime surfaces have data to
// work against.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openpalette/genstudio/internal/data"
	"github.com/openpalette/genstudio/internal/domain/model"
)

// Services bundles the repositories used for seeding.
type Services struct {
	Jobs *data.JobRepo
}

// NewServices builds seed services over an open database connection.
func NewServices(db *sql.DB) Services {
	return Services{
		Jobs: data.NewJobRepo(db, data.JobRepoConfig{}),
	}
}

// Summary reports what was seeded, per lifecycle state.
type Summary struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Total returns the number of seeded jobs.
func (s Summary) Total() int {
	return s.Pending + s.Processing + s.Completed + s.Failed
}

var seedPrompts = []string{
	"a quiet harbor at dawn, oil painting",
	"isometric voxel art of a night market",
	"watercolor fox in a snowy birch forest",
	"retro travel poster for a moon colony",
	"macro photo of dew on a spider web",
}

// SeedJobs inserts a representative spread of generation jobs: a pending
// backlog with one retry, a claimed job mid-processing, a completed job with
// result references, and a terminal failure.
func (s Services) SeedJobs(ctx context.Context) (Summary, error) {
	var summary Summary
	now := time.Now().UTC()
	userID := "dev-user"

	for i := range 3 {
		job := seedJob(seedPrompts[i], now.Add(time.Duration(i-3)*time.Minute))
		job.UserID = &userID
		if i == 0 {
			// A retried job preempts the fresh backlog.
			job.Priority = model.RetryPriority
			job.RetryCount = 1
			errType := "connection_failure"
			job.ErrorType = &errType
			job.RebuildSortKey(job.CreatedAt)
		}
		if err := s.Jobs.Insert(ctx, job); err != nil {
			return summary, fmt.Errorf("seed pending job: %w", err)
		}
		summary.Pending++
	}

	processing := seedJob(seedPrompts[3], now.Add(-10*time.Minute))
	processing.UserID = &userID
	processing.Status = model.JobStatusProcessing
	externalID := "seed-" + uuid.NewString()
	processing.ExternalJobID = &externalID
	startedAt := now.Add(-2 * time.Minute)
	processing.StartedAt = &startedAt
	processing.RebuildSortKey(processing.CreatedAt)
	if err := s.Jobs.Insert(ctx, processing); err != nil {
		return summary, fmt.Errorf("seed processing job: %w", err)
	}
	summary.Processing++

	completed := seedJob(seedPrompts[4], now.Add(-20*time.Minute))
	completed.Status = model.JobStatusCompleted
	completedStart := now.Add(-19 * time.Minute)
	completedEnd := now.Add(-17 * time.Minute)
	completed.StartedAt = &completedStart
	completed.CompletedAt = &completedEnd
	completed.ResultRefs = []string{"results/" + completed.ID + "/0.png"}
	completed.RebuildSortKey(completed.CreatedAt)
	if err := s.Jobs.Insert(ctx, completed); err != nil {
		return summary, fmt.Errorf("seed completed job: %w", err)
	}
	summary.Completed++

	failed := seedJob("prompt that exhausted its retries", now.Add(-30*time.Minute))
	failed.Status = model.JobStatusFailed
	failed.RetryCount = model.MaxRetryAttempts
	failedType := "generation_failure"
	failedMsg := "sampler crashed after 3 attempts"
	failed.ErrorType = &failedType
	failed.ErrorMessage = &failedMsg
	failed.RebuildSortKey(failed.CreatedAt)
	if err := s.Jobs.Insert(ctx, failed); err != nil {
		return summary, fmt.Errorf("seed failed job: %w", err)
	}
	summary.Failed++

	return summary, nil
}

func seedJob(prompt string, enqueuedAt time.Time) *model.Job {
	enqueuedAt = enqueuedAt.UTC()
	job := &model.Job{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Params: model.GenerationParams{
			Width:    512,
			Height:   512,
			Steps:    20,
			CfgScale: 7,
		},
		Priority:  model.DefaultPriority,
		Status:    model.JobStatusPending,
		CreatedAt: enqueuedAt,
		UpdatedAt: enqueuedAt,
		TimeoutAt: enqueuedAt.Add(model.JobTimeoutWindow),
		ExpiresAt: enqueuedAt.Add(model.JobTimeoutWindow),
	}
	job.RebuildSortKey(enqueuedAt)
	return job
}

// Run seeds development data over the given connection.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) (Summary, error) {
	services := NewServices(db)
	summary, err := services.SeedJobs(ctx)
	if err != nil {
		return summary, err
	}
	if logger != nil {
		logger.InfoContext(ctx, "development data seeded",
			"total", summary.Total(),
			"pending", summary.Pending,
			"processing", summary.Processing,
			"completed", summary.Completed,
			"failed", summary.Failed,
		)
	}
	return summary, nil
}
