// Package scheduler wires up the cron job that periodically triggers full
// ingestion runs when the service runs in cron mode.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/practicejobs/ingest/internal/service"
)

// RunnerOptions groups dependencies for Runner.
type RunnerOptions struct {
	Ingest    *service.IngestService    // Required: run executor
	Analytics *service.AnalyticsService // Optional: cache invalidation after runs
	Spec      string                    // Required: cron spec, e.g. "0 6 * * *"
	Logger    *slog.Logger              // Optional: structured logger
}

// Runner wraps robfig/cron and triggers ingestion runs on a fixed schedule.
type Runner struct {
	cron      *cron.Cron
	ingest    *service.IngestService
	analytics *service.AnalyticsService
	spec      string
	logger    *slog.Logger
}

// NewRunner constructs a new Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Ingest == nil {
		return nil, errors.New("IngestService is required")
	}
	if opts.Spec == "" {
		return nil, errors.New("cron spec is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cron:      cron.New(),
		ingest:    opts.Ingest,
		analytics: opts.Analytics,
		spec:      opts.Spec,
		logger:    logger.With("component", "scheduler"),
	}, nil
}

// Start registers the run job and starts the scheduler. It also fires one run
// immediately so a fresh deployment has a populated catalog before the first
// tick.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		r.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "scheduler started", "spec", r.spec)

	go r.runOnce(ctx)
	return nil
}

// Stop shuts down the scheduler, waiting for an in-flight run to finish.
func (r *Runner) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info("scheduler stopped")
}

func (r *Runner) runOnce(ctx context.Context) {
	summary, err := r.ingest.Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			r.logger.WarnContext(ctx, "skipping scheduled run, previous run still active")
			return
		}
		r.logger.ErrorContext(ctx, "scheduled run failed", "err", err)
		return
	}

	if r.analytics != nil {
		r.analytics.InvalidateCache(ctx)
	}
	r.logger.InfoContext(ctx, "scheduled run complete",
		"fetched", summary.TotalFetched(),
		"added", summary.TotalAdded(),
		"expired", summary.Expired,
	)
}
