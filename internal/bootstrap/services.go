package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/observability/statsd"
	"github.com/practicejobs/ingest/internal/service"
	"github.com/practicejobs/ingest/internal/sources"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Ingest    *service.IngestService
	Companies *service.CompanyService
	Analytics *service.AnalyticsService
	// MetricsSink is nil when metrics are disabled; nil is a valid no-op sink.
	MetricsSink *statsd.Client
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
	Jobs      *data.JobRepo
	Companies *data.CompanyRepo
	Analytics *data.AnalyticsRepo
	DupLog    *data.DuplicateLogRepo
	Cache     *data.RedisCacheRepo
}

func buildRepositories(db *sql.DB, rdb redis.UniversalClient, cfg config.IngestConfig) *serviceRepositories {
	return &serviceRepositories{
		Jobs:      data.NewJobRepo(db),
		Companies: data.NewCompanyRepo(db),
		Analytics: data.NewAnalyticsRepo(db),
		DupLog: data.NewDuplicateLogRepo(rdb, data.DuplicateLogConfig{
			Cap: cfg.DuplicateLogCap,
			TTL: cfg.DuplicateLogTTL,
		}),
		Cache: data.NewRedisCacheRepo(rdb),
	}
}

func buildMetricsSink(cfg config.MetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  "ingest",
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// NewServices wires repositories, adapters, and services from connected
// dependencies.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, fmt.Errorf("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps.DB, deps.RedisClient, deps.Config.Ingest)
	metricsSink := buildMetricsSink(deps.Config.Metrics, logger)

	httpClient := &http.Client{Timeout: deps.Config.Sources.FetchTimeout}
	adapters, err := sources.Build(&deps.Config.Sources, httpClient, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build source adapters: %w", err)
	}

	companySvc, err := service.NewCompanyService(service.CompanyServiceOptions{
		Repo:   repos.Companies,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("company service: %w", err)
	}

	ingestSvc, err := service.NewIngestService(service.IngestServiceOptions{
		Adapters:  adapters,
		Jobs:      repos.Jobs,
		Companies: companySvc,
		DupLog:    repos.DupLog,
		Config:    deps.Config.Ingest,
		Logger:    logger,
		Metrics:   metricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("ingest service: %w", err)
	}

	analyticsSvc, err := service.NewAnalyticsService(service.AnalyticsServiceOptions{
		Repo:   repos.Analytics,
		DupLog: repos.DupLog,
		Cache:  repos.Cache,
		Config: deps.Config.Ingest,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("analytics service: %w", err)
	}

	return ServiceContainer{
		Ingest:      ingestSvc,
		Companies:   companySvc,
		Analytics:   analyticsSvc,
		MetricsSink: metricsSink,
	}, nil
}
