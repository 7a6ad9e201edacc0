package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/openpalette/genstudio/config"
	"github.com/openpalette/genstudio/internal/adapters/plans"
	redisadapter "github.com/openpalette/genstudio/internal/adapters/redis"
	"github.com/openpalette/genstudio/internal/data"
	"github.com/openpalette/genstudio/internal/observability/notify/slack"
	"github.com/openpalette/genstudio/internal/observability/statsd"
	"github.com/openpalette/genstudio/internal/service"
	"github.com/openpalette/genstudio/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Queue         *service.QueueService
	Limiter       *service.RateLimitService
	Lifecycle     *service.LifecycleService
	Broadcaster   *service.BroadcastService
	Sweeper       *service.SweeperService
	Plans         *plans.StaticResolver
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Jobs        *data.JobRepo
	Usage       *redisadapter.UsageStore
	Credits     *redisadapter.CreditStore
	Connections *redisadapter.ConnectionStore
	Gateway     *redisadapter.PubSubGateway
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig, jobURLPrefix string) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "genstudio",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	failureNotifier := buildFailureNotifier(obsLogger, cfg.Notifications, jobURLPrefix)

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: failureNotifier,
		NotifierConfig:  cfg.Notifications,
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig, jobURLPrefix string) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	var sinks []failurenotifier.SinkRegistration
	if cfg.Slack.Enabled {
		prefix := cfg.Slack.JobURLPrefix
		if prefix == "" {
			prefix = jobURLPrefix
		}
		client, err := slack.NewClient(slack.Config{
			WebhookURL:   cfg.Slack.WebhookURL,
			Channel:      cfg.Slack.Channel,
			Username:     cfg.Slack.Username,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
			JobURLPrefix: prefix,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// buildRepositories builds the storage adapters backing service ports; no
// business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	return &serviceRepositories{
		Jobs:        data.NewJobRepo(db, data.JobRepoConfig{Logger: logger}),
		Usage:       redisadapter.NewUsageStore(redisClient),
		Credits:     redisadapter.NewCreditStore(redisClient),
		Connections: redisadapter.NewConnectionStore(redisClient),
		Gateway:     redisadapter.NewPubSubGateway(redisClient),
	}
}

// NewServices wires the full service graph from configuration and open
// connections.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, appCfg.Observability, appCfg.HTTP.BaseURL+"/api/generations/")
	repos := buildRepositories(deps.DB, deps.RedisClient, logger)

	planResolver, err := plans.NewStaticResolver(appCfg.Pipeline.PlanTable, appCfg.Pipeline.PlanDefaultTier)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build plan resolver: %w", err)
	}

	queue, err := service.NewQueueService(service.QueueServiceOptions{
		Repo:    repos.Jobs,
		Logger:  logger,
		Metrics: observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build queue service: %w", err)
	}

	limiter, err := service.NewRateLimitService(service.RateLimitServiceOptions{
		Usage:   repos.Usage,
		Jobs:    repos.Jobs,
		Plans:   planResolver,
		Credits: repos.Credits,
		Logger:  logger,
		Metrics: observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build rate limit service: %w", err)
	}

	broadcaster, err := service.NewBroadcastService(service.BroadcastServiceOptions{
		Gateway:     repos.Gateway,
		Connections: repos.Connections,
		Jobs:        repos.Jobs,
		Logger:      logger,
		Metrics:     observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build broadcast service: %w", err)
	}

	lifecycle, err := service.NewLifecycleService(service.LifecycleServiceOptions{
		Jobs:        repos.Jobs,
		Broadcaster: broadcaster,
		Notifier:    observability.FailureNotifier,
		Logger:      logger,
		Metrics:     observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build lifecycle service: %w", err)
	}

	sweeper, err := service.NewSweeperService(service.SweeperServiceOptions{
		Repo:        repos.Jobs,
		Config:      appCfg.Sweeper,
		Broadcaster: broadcaster,
		Logger:      logger,
		Metrics:     observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build sweeper service: %w", err)
	}

	return ServiceContainer{
		Queue:         queue,
		Limiter:       limiter,
		Lifecycle:     lifecycle,
		Broadcaster:   broadcaster,
		Sweeper:       sweeper,
		Plans:         planResolver,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and blocks until a
// shutdown signal arrives or one of them fails. The first failure cancels the
// shared context, which drains the rest.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		group.Go(func() error {
			logger.Info("http server listening", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", serveErr)
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Server:  server,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeSweeper] {
		group.Go(func() error {
			logger.InfoContext(groupCtx, "background service started", "service", "sweeper")
			if runErr := cfg.Services.Sweeper.Run(groupCtx); runErr != nil {
				return fmt.Errorf("sweeper failed: %w", runErr)
			}
			return nil
		})
	}

	waitErr := group.Wait()
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) && !errors.Is(waitErr, http.ErrServerClosed) {
		return waitErr
	}
	logger.Info("all services stopped")
	return nil
}
