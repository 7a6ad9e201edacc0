package httpx

import (
	"errors"
	"net/http"

	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/service"
)

// WorkerHandlers provides HTTP handlers for the generation worker callback surface.
type WorkerHandlers struct {
	Queue     *service.QueueService
	Lifecycle *service.LifecycleService
}

// NextJob handles worker polls for the next pending job. Returns 204 when the
// pending partition is empty. The job is not claimed by this call; the worker
// must follow up with Claim.
func (h *WorkerHandlers) NextJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Queue.NextPending(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrNoJobsPending) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Claim handles the worker binding its own job identifier to a pending job,
// moving it to processing. A 409 means another worker won the claim or the
// job already left pending.
func (h *WorkerHandlers) Claim(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	var req model.ClaimRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
		return
	}

	job, err := h.Lifecycle.Claim(r.Context(), jobID, req.ExternalJobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Progress handles asynchronous progress callbacks. The response only
// acknowledges receipt; delivery to the client channel is best-effort.
func (h *WorkerHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	var ev model.ProgressEvent
	if !DecodeJSON(w, r, &ev) {
		return
	}
	if err := ev.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
		return
	}

	if err := h.Lifecycle.Progress(r.Context(), &ev); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

// Complete handles the worker's success callback.
func (h *WorkerHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	var ev model.CompletionEvent
	if !DecodeJSON(w, r, &ev) {
		return
	}
	if err := ev.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
		return
	}

	job, err := h.Lifecycle.Complete(r.Context(), &ev)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Fail handles the worker's failure callback. Depending on classification the
// job is either re-enqueued for retry or marked failed; the returned record
// reflects the outcome.
func (h *WorkerHandlers) Fail(w http.ResponseWriter, r *http.Request) {
	var ev model.FailureEvent
	if !DecodeJSON(w, r, &ev) {
		return
	}
	if err := ev.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
		return
	}

	job, err := h.Lifecycle.Fail(r.Context(), &ev)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
