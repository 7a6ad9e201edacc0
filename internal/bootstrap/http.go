package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openpalette/genstudio/config"
	httpx "github.com/openpalette/genstudio/internal/http"
)

// HTTPServerConfig contains everything needed to build the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server with the generation API router. The
// caller is responsible for starting and stopping it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	router := httpx.NewRouter(httpx.RouterServices{
		Queue:       cfg.Services.Queue,
		Limiter:     cfg.Services.Limiter,
		Lifecycle:   cfg.Services.Lifecycle,
		Broadcaster: cfg.Services.Broadcaster,
		Tiers:       cfg.Services.Plans,
		Logger:      cfg.Logger,
	})

	return &http.Server{
		Addr:              cfg.Config.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.Config.HTTP.ReadTimeout,
		WriteTimeout:      cfg.Config.HTTP.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ShutdownConfig contains configuration for graceful shutdown.
type ShutdownConfig struct {
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server, waiting up to the
// configured timeout for in-flight requests to drain.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down http server", "timeout", timeout)
	}

	if err := cfg.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
