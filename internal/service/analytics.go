package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/core"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const (
	cacheKeySourceStats = "ingest:analytics:source_stats"
	cacheKeyTrend       = "ingest:analytics:trend"
)

// AnalyticsServiceOptions groups dependencies for AnalyticsService.
type AnalyticsServiceOptions struct {
	Repo   core.AnalyticsRepository    // Required: analytics repository
	DupLog core.DuplicateLogRepository // Optional: duplicate audit log
	Cache  core.CacheRepository        // Optional: aggregate cache
	Config config.IngestConfig         // Required: cache TTL, trend window
	Logger *slog.Logger                // Optional: structured logger
}

// AnalyticsService serves read-only catalog aggregates. Aggregates are
// derived on demand and cached briefly; cache failures fall through to the
// database, never to the caller.
type AnalyticsService struct {
	repo   core.AnalyticsRepository
	dupLog core.DuplicateLogRepository
	cache  core.CacheRepository
	config config.IngestConfig
	logger *slog.Logger
}

// NewAnalyticsService constructs a new AnalyticsService.
func NewAnalyticsService(opts AnalyticsServiceOptions) (*AnalyticsService, error) {
	if opts.Repo == nil {
		return nil, errors.New("AnalyticsRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		repo:   opts.Repo,
		dupLog: opts.DupLog,
		cache:  opts.Cache,
		config: opts.Config,
		logger: logger.With("component", "analytics_service"),
	}, nil
}

// SourceStats returns per-provider catalog aggregates.
func (s *AnalyticsService) SourceStats(ctx context.Context) ([]model.SourceStats, error) {
	var stats []model.SourceStats
	if s.cached(ctx, cacheKeySourceStats, &stats) {
		return stats, nil
	}

	stats, err := s.repo.SourceStats(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeySourceStats, stats)
	return stats, nil
}

// Trend returns daily job-creation volume over the configured window.
func (s *AnalyticsService) Trend(ctx context.Context) ([]model.TrendPoint, error) {
	var points []model.TrendPoint
	if s.cached(ctx, cacheKeyTrend, &points) {
		return points, nil
	}

	points, err := s.repo.Trend(ctx, s.config.TrendDays)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyTrend, points)
	return points, nil
}

// RecentDuplicates returns the newest entries from the duplicate audit log.
func (s *AnalyticsService) RecentDuplicates(ctx context.Context, limit int) ([]model.DuplicateRecord, error) {
	if s.dupLog == nil {
		return nil, nil
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.dupLog.Recent(ctx, limit)
}

// InvalidateCache drops cached aggregates, called after each ingestion run so
// the dashboards reflect fresh counts immediately.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{cacheKeySourceStats, cacheKeyTrend} {
		if _, err := s.cache.Delete(ctx, key); err != nil {
			s.logger.DebugContext(ctx, "cache invalidation failed", "key", key, "err", err)
		}
	}
}

// cached loads a cache entry into dst, reporting whether it was usable.
func (s *AnalyticsService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.DebugContext(ctx, "cache read failed", "key", key, "err", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.DebugContext(ctx, "cache entry corrupt, ignoring", "key", key, "err", err)
		return false
	}
	return true
}

func (s *AnalyticsService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.DebugContext(ctx, "cache marshal failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.config.AnalyticsCacheTTL); err != nil {
		s.logger.DebugContext(ctx, "cache write failed", "key", key, "err", err)
	}
}
