package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openpalette/genstudio/config"
	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/observability/metrics"
	"github.com/openpalette/genstudio/internal/observability/statsd"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Repo        core.SweeperRepository // Required: sweeper repository
	Config      config.SweeperConfig   // Required: sweeper configuration
	Broadcaster *BroadcastService      // Optional: pushes timeout messages to clients
	Logger      *slog.Logger           // Optional: structured logger
	Metrics     statsd.Sink            // Optional: metrics sink
}

// SweeperService runs the periodic queue maintenance pass.
//
// Each pass forces overdue jobs to timeout (notifying their clients),
// deletes terminal jobs past retention, and recomputes queue positions and
// wait estimates for the pending partition. The repository serializes
// concurrent instances with advisory locks, so the loop itself stays simple.
type SweeperService struct {
	repo        core.SweeperRepository
	config      config.SweeperConfig
	broadcaster *BroadcastService
	logger      *slog.Logger
	metrics     statsd.Sink
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("SweeperRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
		logger.Debug("SweeperService initialized",
			"interval", opts.Config.Interval,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &SweeperService{
		repo:        opts.Repo,
		config:      opts.Config,
		broadcaster: opts.Broadcaster,
		logger:      logger,
		metrics:     opts.Metrics,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *SweeperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting sweeper service", "interval", s.config.Interval)
	}

	// Jitter spreads out instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "sweeper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logSweepError(err, "sweep")
				// Keep running despite errors.
			}
		}
	}
}

func (s *SweeperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// Sweep performs one maintenance pass. Step failures are joined so a broken
// step never blocks the others.
func (s *SweeperService) Sweep(ctx context.Context) error {
	var (
		errs  []error
		sweep metrics.SweepMetric
	)

	timedOut, err := s.sweepTimeouts(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("sweep timeouts: %w", err))
	}
	sweep.TimedOut = timedOut

	deleted, err := s.deleteExpired(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired jobs: %w", err))
	}
	sweep.Deleted = deleted

	positions, err := s.repo.RecomputePositions(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("recompute positions: %w", err))
	} else if positions > 0 && s.logger != nil {
		s.logger.DebugContext(ctx, "recomputed queue positions", "count", positions)
	}
	sweep.Positions = positions

	metrics.EmitSweep(s.metrics, sweep)

	joined := errors.Join(errs...)
	if joined != nil && isContextCancellation(joined) {
		return context.Canceled
	}
	return joined
}

// sweepTimeouts forces overdue jobs into the timeout status in batches and
// pushes the terminal message to each affected client.
func (s *SweeperService) sweepTimeouts(ctx context.Context) (int, error) {
	total := 0
	for {
		jobs, err := s.repo.TimeoutOverdueJobs(ctx, s.config.BatchSize)
		if err != nil {
			return total, err
		}
		if len(jobs) == 0 {
			break
		}
		total += len(jobs)

		for _, job := range jobs {
			s.broadcastTimeout(ctx, job)
		}

		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "timed out overdue jobs", "count", total)
	}
	return total, nil
}

func (s *SweeperService) broadcastTimeout(ctx context.Context, job *model.Job) {
	if s.broadcaster == nil {
		return
	}
	msg := model.RealtimeMessage{
		Type:      model.MessageFailed,
		JobID:     job.ID,
		Status:    model.JobStatusTimeout,
		ErrorType: string(model.JobStatusTimeout),
	}
	if job.ErrorMessage != nil {
		msg.ErrorMessage = *job.ErrorMessage
	}
	s.broadcaster.NotifyJob(ctx, job, msg)
}

// deleteExpired removes terminal jobs past their retention deadline in
// batches until none remain.
func (s *SweeperService) deleteExpired(ctx context.Context) (int64, error) {
	var total int64
	for {
		count, err := s.repo.DeleteExpiredJobs(ctx, s.config.BatchSize)
		if err != nil {
			return total, err
		}
		total += count
		if count == 0 {
			break
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted expired jobs", "count", total)
	}
	return total, nil
}

func (s *SweeperService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
