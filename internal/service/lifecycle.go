package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/openpalette/genstudio/internal/errors"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/failure"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/observability/metrics"
	"github.com/openpalette/genstudio/internal/observability/notify"
	"github.com/openpalette/genstudio/internal/observability/statsd"
	"github.com/openpalette/genstudio/internal/service/failurenotifier"
	"github.com/openpalette/genstudio/internal/util"
)

// LifecycleServiceOptions groups dependencies for LifecycleService.
type LifecycleServiceOptions struct {
	Jobs        core.JobRepository       // Required: job repository
	Broadcaster *BroadcastService        // Required: realtime delivery
	Notifier    *failurenotifier.Service // Optional: ops notification fan-out
	Logger      *slog.Logger             // Optional: structured logger
	Metrics     statsd.Sink              // Optional: metrics sink
	Now         func() time.Time         // Optional: clock override for tests
}

// LifecycleService drives job state transitions off worker events.
//
// The state machine is pending -> processing -> {completed | failed |
// timeout}. A failed job loops back to pending only through the retry path;
// terminal states are guarded by conditional updates so a late callback can
// never resurrect a finished job. Every transition stamps updatedAt in the
// same write and broadcasts the new state to the job's connection.
type LifecycleService struct {
	jobs        core.JobRepository
	broadcaster *BroadcastService
	notifier    *failurenotifier.Service
	logger      *slog.Logger
	metrics     statsd.Sink
	now         func() time.Time
}

// NewLifecycleService constructs a new LifecycleService.
func NewLifecycleService(opts LifecycleServiceOptions) (*LifecycleService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Broadcaster == nil {
		return nil, errors.New("BroadcastService is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "lifecycle_service")
	}

	return &LifecycleService{
		jobs:        opts.Jobs,
		broadcaster: opts.Broadcaster,
		notifier:    opts.Notifier,
		logger:      logger,
		metrics:     opts.Metrics,
		now:         now,
	}, nil
}

// Claim binds the worker's own identifier to a pending job and moves it to
// processing. A claim against a job that already left pending returns a
// conflict.
func (s *LifecycleService) Claim(ctx context.Context, jobID, externalJobID string) (*model.Job, error) {
	if jobID == "" || externalJobID == "" {
		return nil, apperrors.Validation("job id and externalJobId are required")
	}

	now := s.now().UTC()
	status := model.JobStatusProcessing
	update := &model.JobUpdate{
		Status:        &status,
		ExternalJobID: &externalJobID,
		StartedAt:     &now,
	}

	job, err := s.jobs.Update(ctx, jobID, update, model.JobStatusPending)
	if err != nil {
		if errors.Is(err, core.ErrStaleStatus) {
			return nil, apperrors.Conflict("job is no longer pending")
		}
		return nil, fmt.Errorf("claim job %s: %w", jobID, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job claimed",
			"job_id", job.ID,
			"external_job_id", externalJobID,
		)
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{Status: string(model.JobStatusProcessing)})

	s.broadcaster.NotifyJob(ctx, job, model.RealtimeMessage{
		Type:   model.MessageProcessing,
		JobID:  job.ID,
		Status: model.JobStatusProcessing,
	})
	return job, nil
}

// Progress forwards a worker progress callback to the client. Progress does
// not change status; callbacks for jobs that already reached a terminal
// state are silently dropped.
func (s *LifecycleService) Progress(ctx context.Context, ev *model.ProgressEvent) error {
	if err := ev.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	job, err := s.jobs.GetByExternalID(ctx, ev.ExternalJobID)
	if err != nil {
		return fmt.Errorf("resolve external job %s: %w", ev.ExternalJobID, err)
	}
	if job.Status.Terminal() {
		return nil
	}

	msg := model.RealtimeMessage{
		Type:          model.MessageJobProgress,
		JobID:         job.ID,
		Status:        job.Status,
		NodeID:        ev.NodeID,
		DisplayNodeID: ev.DisplayNodeID,
		StatusLine:    ev.State,
	}
	if ev.ProgressMax > 0 {
		msg.ProgressValue = ev.ProgressValue
		msg.ProgressMax = ev.ProgressMax
		msg.Percentage = ev.Percentage()
	}
	s.broadcaster.NotifyJob(ctx, job, msg)
	return nil
}

// Complete finishes a processing job, attaching its result references and
// emitting the success terminal message.
func (s *LifecycleService) Complete(ctx context.Context, ev *model.CompletionEvent) (*model.Job, error) {
	if err := ev.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.GetByExternalID(ctx, ev.ExternalJobID)
	if err != nil {
		return nil, fmt.Errorf("resolve external job %s: %w", ev.ExternalJobID, err)
	}

	now := s.now().UTC()
	status := model.JobStatusCompleted
	update := &model.JobUpdate{
		Status:      &status,
		CompletedAt: &now,
		ResultRefs:  ev.ResultRefs,
	}

	updated, err := s.jobs.Update(ctx, job.ID, update, model.JobStatusProcessing)
	if err != nil {
		if errors.Is(err, core.ErrStaleStatus) {
			return nil, apperrors.Conflict("job is not processing")
		}
		return nil, fmt.Errorf("complete job %s: %w", job.ID, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job completed", "job_id", updated.ID)
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Status:   string(model.JobStatusCompleted),
		Duration: processingDuration(updated, now),
	})

	s.broadcaster.NotifyJob(ctx, updated, model.RealtimeMessage{
		Type:       model.MessageCompleted,
		JobID:      updated.ID,
		Status:     model.JobStatusCompleted,
		ResultRefs: updated.ResultRefs,
	})
	return updated, nil
}

// Fail handles a worker failure callback: the raw error is classified, and
// the job is either re-enqueued for retry or moved to terminal failed.
func (s *LifecycleService) Fail(ctx context.Context, ev *model.FailureEvent) (*model.Job, error) {
	if err := ev.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.GetByExternalID(ctx, ev.ExternalJobID)
	if err != nil {
		return nil, fmt.Errorf("resolve external job %s: %w", ev.ExternalJobID, err)
	}

	errType := failure.Classify(ev.ErrorType)
	if failure.ShouldRetry(errType, job.RetryCount) {
		return s.retry(ctx, job, errType, ev.ErrorMessage)
	}
	return s.failTerminal(ctx, job.ID, errType, ev.ErrorMessage, job.RetryCount)
}

// retry re-enqueues the job as pending at the retry priority so it preempts
// fresh admissions. The backoff delay is advisory metadata on the retrying
// event; dispatch stays immediate because the worker queue is pull-based.
func (s *LifecycleService) retry(ctx context.Context, job *model.Job, errType failure.Type, errMsg string) (*model.Job, error) {
	attempt := job.RetryCount + 1
	delay := failure.BackoffDelay(attempt)
	now := s.now().UTC()

	status := model.JobStatusPending
	priority := model.RetryPriority
	typeStr := string(errType)
	update := &model.JobUpdate{
		Status:           &status,
		Priority:         &priority,
		RetryCount:       &attempt,
		ErrorType:        &typeStr,
		LastErrorMessage: &errMsg,
		EnqueuedAt:       now,
	}

	updated, err := s.jobs.Update(ctx, job.ID, update, model.JobStatusProcessing)
	if err != nil {
		if errors.Is(err, core.ErrStaleStatus) {
			return nil, apperrors.Conflict("job is not processing")
		}
		// Never retry the retry: a failed re-enqueue escalates straight to
		// terminal failed rather than leaving the job in limbo.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "re-enqueue for retry failed, forcing terminal failure",
				"job_id", job.ID,
				"error", err,
			)
		}
		return s.failTerminal(ctx, job.ID, errType, errMsg, job.RetryCount)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job re-enqueued for retry",
			"job_id", updated.ID,
			"retry_count", attempt,
			"error_type", typeStr,
			"advisory_delay_ms", delay.Milliseconds(),
		)
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Status:     string(model.JobStatusPending),
		ErrorType:  typeStr,
		RetryCount: attempt,
	})

	s.broadcaster.NotifyJob(ctx, updated, model.RealtimeMessage{
		Type:             model.MessageRetrying,
		JobID:            updated.ID,
		Status:           model.JobStatusPending,
		RetryCount:       attempt,
		RetryDelayMillis: delay.Milliseconds(),
		ErrorType:        typeStr,
	})
	return updated, nil
}

func (s *LifecycleService) failTerminal(ctx context.Context, jobID string, errType failure.Type, errMsg string, retryCount int) (*model.Job, error) {
	status := model.JobStatusFailed
	typeStr := string(errType)
	update := &model.JobUpdate{
		Status:       &status,
		ErrorType:    &typeStr,
		ErrorMessage: &errMsg,
	}

	// The guard keeps a late failure callback from overwriting a job that
	// already reached a terminal state through another path.
	updated, err := s.jobs.Update(ctx, jobID, update, model.JobStatusProcessing)
	if err != nil {
		if errors.Is(err, core.ErrStaleStatus) {
			return nil, apperrors.Conflict("job is not processing")
		}
		return nil, fmt.Errorf("fail job %s: %w", jobID, err)
	}

	if s.logger != nil {
		s.logger.WarnContext(ctx, "job failed terminally",
			"job_id", updated.ID,
			"error_type", typeStr,
			"retry_count", retryCount,
		)
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Status:     string(model.JobStatusFailed),
		ErrorType:  typeStr,
		RetryCount: retryCount,
	})

	s.broadcaster.NotifyJob(ctx, updated, model.RealtimeMessage{
		Type:         model.MessageFailed,
		JobID:        updated.ID,
		Status:       model.JobStatusFailed,
		ErrorType:    typeStr,
		ErrorMessage: errMsg,
	})

	if s.notifier != nil {
		payload := notify.GenerationFailurePayload{
			JobID:        updated.ID,
			ErrorType:    typeStr,
			ErrorMessage: errMsg,
			RetryCount:   retryCount,
			OccurredAt:   s.now().UTC(),
		}
		if updated.UserID != nil {
			payload.UserID = *updated.UserID
		}
		if updated.StartedAt != nil {
			payload.Metadata = map[string]string{
				"processing_time": util.FormatProcessingDuration(processingDuration(updated, s.now().UTC())),
			}
		}
		s.notifier.NotifyGenerationFailure(ctx, payload)
	}
	return updated, nil
}

func processingDuration(job *model.Job, completedAt time.Time) time.Duration {
	if job == nil || job.StartedAt == nil {
		return 0
	}
	d := completedAt.Sub(*job.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}
