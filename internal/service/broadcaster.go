package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/observability/statsd"
)

// BroadcastServiceOptions groups dependencies for BroadcastService.
type BroadcastServiceOptions struct {
	Gateway     core.ConnectionGateway    // Required: push transport
	Connections core.ConnectionRepository // Required: live channel registry
	Jobs        core.JobRepository        // Optional: clears stale connection refs on jobs
	Logger      *slog.Logger              // Optional: structured logger
	Metrics     statsd.Sink               // Optional: metrics sink
	Now         func() time.Time          // Optional: clock override for tests
}

// BroadcastService pushes lifecycle messages to the submitting client's live
// channel and owns the connection registry around it.
//
// Delivery is strictly best effort: a job must never fail because its client
// went away. A "gone" transport signal triggers registry cleanup; every other
// transport error is logged and swallowed.
type BroadcastService struct {
	gateway     core.ConnectionGateway
	connections core.ConnectionRepository
	jobs        core.JobRepository
	logger      *slog.Logger
	metrics     statsd.Sink
	now         func() time.Time
}

// NewBroadcastService constructs a new BroadcastService.
func NewBroadcastService(opts BroadcastServiceOptions) (*BroadcastService, error) {
	if opts.Gateway == nil {
		return nil, errors.New("ConnectionGateway is required")
	}
	if opts.Connections == nil {
		return nil, errors.New("ConnectionRepository is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "broadcast_service")
	}

	return &BroadcastService{
		gateway:     opts.Gateway,
		connections: opts.Connections,
		jobs:        opts.Jobs,
		logger:      logger,
		metrics:     opts.Metrics,
		now:         now,
	}, nil
}

// Register creates or refreshes a connection registry record.
func (s *BroadcastService) Register(ctx context.Context, id string, userID *string) error {
	if id == "" {
		return errors.New("connection id is required")
	}
	now := s.now().UTC()
	conn := model.Connection{
		ID:           id,
		UserID:       userID,
		ConnectedAt:  now,
		LastActivity: now,
	}
	if err := s.connections.Save(ctx, conn); err != nil {
		return fmt.Errorf("register connection: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "connection registered", "connection_id", id)
	}
	return nil
}

// Disconnect removes a connection registry record on explicit client
// disconnect. A missing record is not an error.
func (s *BroadcastService) Disconnect(ctx context.Context, id string) error {
	if err := s.connections.Delete(ctx, id); err != nil && !errors.Is(err, core.ErrConnectionNotFound) {
		return fmt.Errorf("disconnect connection: %w", err)
	}
	return nil
}

// Publish pushes one message to the connection's channel. It never returns an
// error: gone connections are cleaned up, other failures are logged.
func (s *BroadcastService) Publish(ctx context.Context, connectionID string, msg model.RealtimeMessage) {
	if connectionID == "" {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "encode realtime message",
				"job_id", msg.JobID,
				"type", msg.Type,
				"error", err,
			)
		}
		return
	}

	err = s.gateway.Send(ctx, connectionID, payload)
	switch {
	case err == nil:
		if s.metrics != nil {
			s.metrics.Count("broadcast.sent", 1, map[string]string{"type": string(msg.Type)})
		}
	case errors.Is(err, core.ErrConnectionGone):
		s.cleanupGone(ctx, connectionID, msg.JobID)
	default:
		if s.logger != nil {
			s.logger.WarnContext(ctx, "broadcast delivery failed",
				"connection_id", connectionID,
				"job_id", msg.JobID,
				"type", msg.Type,
				"error", err,
			)
		}
		if s.metrics != nil {
			s.metrics.Count("broadcast.failed", 1, map[string]string{"type": string(msg.Type)})
		}
	}
}

// NotifyJob publishes a message to the job's associated connection, if any.
func (s *BroadcastService) NotifyJob(ctx context.Context, job *model.Job, msg model.RealtimeMessage) {
	if job == nil || job.ConnectionID == nil || *job.ConnectionID == "" {
		return
	}
	s.Publish(ctx, *job.ConnectionID, msg)
}

// cleanupGone removes the registry record for a dead channel and clears the
// job's connection reference so later transitions skip the broadcast.
func (s *BroadcastService) cleanupGone(ctx context.Context, connectionID, jobID string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "connection gone, cleaning up",
			"connection_id", connectionID,
			"job_id", jobID,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("broadcast.gone", 1, nil)
	}

	if err := s.connections.Delete(ctx, connectionID); err != nil && !errors.Is(err, core.ErrConnectionNotFound) {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "delete gone connection record", "connection_id", connectionID, "error", err)
		}
	}

	if s.jobs == nil || jobID == "" {
		return
	}
	if _, err := s.jobs.Update(ctx, jobID, &model.JobUpdate{ClearConnection: true}, ""); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "clear job connection reference", "job_id", jobID, "error", err)
		}
	}
}
