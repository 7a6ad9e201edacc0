// Package httpx provides HTTP handlers and utilities for the genstudio generation pipeline API.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/service"
)

// GenerationHandlers provides HTTP handlers for client-facing generation operations.
type GenerationHandlers struct {
	Queue       *service.QueueService
	Limiter     *service.RateLimitService
	Broadcaster *service.BroadcastService
	Tiers       TierResolver
	Logger      *slog.Logger
}

// Submit handles admission of a new generation request: rate limit check,
// enqueue, usage recording, and the initial queued realtime message.
func (h *GenerationHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	identity := IdentityFromRequest(r, h.Tiers)
	units := req.Params.Units()

	decision := h.Limiter.Check(ctx, identity, units)
	if !decision.Allowed {
		WriteJSON(w, http.StatusTooManyRequests, decision)
		return
	}

	job, err := h.Queue.Enqueue(ctx, &req, identity)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	// Admission already succeeded; a ledger write failure must not fail the
	// request, it just under-counts.
	if err := h.Limiter.Record(ctx, job.ID, identity, units, decision); err != nil && h.Logger != nil {
		h.Logger.WarnContext(ctx, "recording admitted usage failed",
			"job_id", job.ID,
			"error", err,
		)
	}

	if h.Broadcaster != nil {
		h.Broadcaster.NotifyJob(ctx, job, model.RealtimeMessage{
			Type:                model.MessageQueued,
			JobID:               job.ID,
			Status:              job.Status,
			QueuePosition:       job.QueuePosition,
			EstimatedWaitMillis: job.EstimatedWaitMillis,
		})
	}

	WriteJSON(w, http.StatusAccepted, model.SubmitJobResponse{
		JobID:               job.ID,
		QueuePosition:       job.QueuePosition,
		EstimatedWaitMillis: job.EstimatedWaitMillis,
		Status:              job.Status,
		Message:             "Generation request queued",
	})
}

// GetStatus handles HTTP requests to retrieve the current state of a job.
func (h *GenerationHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	job, err := h.Queue.GetJob(r.Context(), jobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// QueueStats handles HTTP requests for aggregate queue statistics.
func (h *GenerationHandlers) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Queue.Stats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
