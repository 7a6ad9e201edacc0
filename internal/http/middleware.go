package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/openpalette/genstudio/internal/domain/model"
)

// Identity headers injected by the edge proxy after authentication. Requests
// without HeaderUserID are anonymous.
const (
	HeaderUserID   = "X-User-Id"
	HeaderPlanTier = "X-Plan-Tier"
)

// TierResolver maps an edge-supplied plan tier hint to a full plan snapshot.
type TierResolver interface {
	ResolveTier(tier string) model.PlanSnapshot
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromRequest derives the caller identity from the edge-injected
// headers and the client IP. The tier hint is expanded to a full plan
// snapshot when a resolver is available; otherwise the rate limiter resolves
// the plan itself.
func IdentityFromRequest(r *http.Request, tiers TierResolver) model.Identity {
	identity := model.Identity{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		IP:     ClientIP(r),
	}
	if tier := strings.TrimSpace(r.Header.Get(HeaderPlanTier)); tier != "" && tiers != nil {
		identity.Plan = tiers.ResolveTier(tier)
	}
	return identity
}

// ClientIP extracts the originating client IP, preferring the forwarding
// headers set by the edge proxy over the socket address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client; later entries are proxies.
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
