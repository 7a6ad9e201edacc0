package httpx

import (
	"log/slog"
	"net/http"

	"github.com/openpalette/genstudio/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Queue       *service.QueueService
	Limiter     *service.RateLimitService
	Lifecycle   *service.LifecycleService
	Broadcaster *service.BroadcastService
	// Optional: expands the edge plan-tier header into a full plan snapshot.
	Tiers TierResolver
	// Logger for request logging and panic recovery (optional).
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router for the generation API.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	generationHandlers := &GenerationHandlers{
		Queue:       services.Queue,
		Limiter:     services.Limiter,
		Broadcaster: services.Broadcaster,
		Tiers:       services.Tiers,
		Logger:      services.Logger,
	}
	workerHandlers := &WorkerHandlers{
		Queue:     services.Queue,
		Lifecycle: services.Lifecycle,
	}
	connectionHandlers := &ConnectionHandlers{Broadcaster: services.Broadcaster}

	registerGenerationRoutes(mux, generationHandlers)
	registerWorkerRoutes(mux, workerHandlers)
	registerConnectionRoutes(mux, connectionHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	if services.Logger != nil {
		handler = Logging(services.Logger)(handler)
		handler = Recover(services.Logger)(handler)
	}
	return handler
}

func registerGenerationRoutes(mux *http.ServeMux, h *GenerationHandlers) {
	mux.HandleFunc("POST /api/generations", h.Submit)
	mux.HandleFunc("GET /api/generations/{id}", h.GetStatus)
	mux.HandleFunc("GET /api/queue/stats", h.QueueStats)
}

func registerWorkerRoutes(mux *http.ServeMux, h *WorkerHandlers) {
	mux.HandleFunc("GET /api/worker/jobs/next", h.NextJob)
	mux.HandleFunc("POST /api/worker/jobs/{id}/claim", h.Claim)
	mux.HandleFunc("POST /api/worker/events/progress", h.Progress)
	mux.HandleFunc("POST /api/worker/events/complete", h.Complete)
	mux.HandleFunc("POST /api/worker/events/fail", h.Fail)
}

func registerConnectionRoutes(mux *http.ServeMux, h *ConnectionHandlers) {
	mux.HandleFunc("PUT /api/connections/{id}", h.Register)
	mux.HandleFunc("DELETE /api/connections/{id}", h.Disconnect)
}
