package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/openpalette/genstudio/internal/errors"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/observability/metrics"
	"github.com/openpalette/genstudio/internal/observability/statsd"
)

// QueueServiceOptions groups dependencies for QueueService.
type QueueServiceOptions struct {
	Repo    core.JobRepository // Required: job repository
	Logger  *slog.Logger       // Optional: structured logger
	Metrics statsd.Sink        // Optional: metrics sink
	Now     func() time.Time   // Optional: clock override for tests
}

// QueueService owns admission-side queue operations: enqueue with position
// and wait estimation, pull-based dequeue for the worker, job inspection and
// queue stats.
type QueueService struct {
	repo    core.JobRepository
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// NewQueueService constructs a new QueueService.
func NewQueueService(opts QueueServiceOptions) (*QueueService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "queue_service")
	}

	return &QueueService{
		repo:    opts.Repo,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// Enqueue validates and persists a new generation job in the pending
// partition, stamping its deadline and estimating its position from current
// queue stats.
func (s *QueueService) Enqueue(ctx context.Context, req *model.SubmitJobRequest, identity model.Identity) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	priority := req.Priority
	if priority <= 0 {
		priority = model.DefaultPriority
	}

	now := s.now().UTC()
	job := &model.Job{
		ID:           uuid.NewString(),
		Prompt:       req.Prompt,
		Params:       req.Params,
		ConnectionID: req.ConnectionID,
		Priority:     priority,
		Status:       model.JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		TimeoutAt:    now.Add(model.JobTimeoutWindow),
		ExpiresAt:    now.Add(model.JobTimeoutWindow),
	}
	if !identity.Anonymous() {
		userID := identity.UserID
		job.UserID = &userID
	}
	job.RebuildSortKey(now)

	// Position and wait are estimates from a snapshot; the periodic position
	// recompute keeps them honest afterwards.
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "queue stats unavailable at enqueue, using defaults", "error", err)
		}
		stats = &model.QueueStats{AverageProcessingTimeMillis: model.DefaultProcessingTimeMillis}
	}
	job.QueuePosition = stats.TotalPending + 1
	job.EstimatedWaitMillis = int64(stats.TotalPending) * stats.AverageProcessingTimeMillis

	if err := s.repo.Insert(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job enqueued",
			"job_id", job.ID,
			"priority", job.Priority,
			"queue_position", job.QueuePosition,
		)
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{Status: string(model.JobStatusPending)})

	return job, nil
}

// GetJob returns one job by id for inspection.
func (s *QueueService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, apperrors.Validation("job id is required")
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// NextPending returns the lowest-sort-key pending job without claiming it.
// Returns model.ErrNoJobsPending when the pending partition is empty.
func (s *QueueService) NextPending(ctx context.Context) (*model.Job, error) {
	job, err := s.repo.NextPending(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoJobsPending) {
			return nil, err
		}
		return nil, fmt.Errorf("dequeue next pending: %w", err)
	}
	return job, nil
}

// Stats returns the current queue snapshot used for wait estimation.
func (s *QueueService) Stats(ctx context.Context) (*model.QueueStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	metrics.EmitQueueDepth(s.metrics, stats.TotalPending, stats.ProcessingCount)
	return stats, nil
}
