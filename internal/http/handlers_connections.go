package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openpalette/genstudio/internal/service"
)

// ConnectionHandlers provides HTTP handlers for the realtime connection registry.
// The channels themselves terminate at the edge; these endpoints only maintain
// the registry records the broadcaster routes against.
type ConnectionHandlers struct {
	Broadcaster *service.BroadcastService
}

// Register handles the edge announcing a new live client channel.
func (h *ConnectionHandlers) Register(w http.ResponseWriter, r *http.Request) {
	connID := r.PathValue("id")
	if connID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("connection id is required")},
		)
		return
	}

	var userID *string
	if uid := strings.TrimSpace(r.Header.Get(HeaderUserID)); uid != "" {
		userID = &uid
	}

	if err := h.Broadcaster.Register(r.Context(), connID, userID); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Disconnect handles the edge reporting a closed channel. Deleting an unknown
// connection is not an error; the record may already be gone.
func (h *ConnectionHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	connID := r.PathValue("id")
	if connID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("connection id is required")},
		)
		return
	}

	if err := h.Broadcaster.Disconnect(r.Context(), connID); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
