package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/scheduler"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	var runner *scheduler.Runner
	if enabled[config.ServiceModeCron] {
		runner, err = scheduler.NewRunner(scheduler.RunnerOptions{
			Ingest:    cfg.Services.Ingest,
			Analytics: cfg.Services.Analytics,
			Spec:      cfg.Config.Ingest.CronSpec,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}
		if startErr := runner.Start(ctx); startErr != nil {
			return fmt.Errorf("start scheduler: %w", startErr)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.Info("shutting down services...")
	cancel()

	if runner != nil {
		runner.Stop()
	}
	if shutdownErr := ShutdownHTTPServer(context.Background(), server, logger); shutdownErr != nil {
		return shutdownErr
	}
	if cfg.Services.MetricsSink != nil {
		if closeErr := cfg.Services.MetricsSink.Close(); closeErr != nil {
			logger.Warn("failed to close metrics sink", "error", closeErr)
		}
	}

	return nil
}
