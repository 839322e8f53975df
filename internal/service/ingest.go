package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/core"
	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/dedupe"
	"github.com/practicejobs/ingest/internal/domain/model"
	apperrors "github.com/practicejobs/ingest/internal/errors"
	"github.com/practicejobs/ingest/internal/normalize"
	"github.com/practicejobs/ingest/internal/observability/statsd"
	"github.com/practicejobs/ingest/internal/quality"
	"github.com/practicejobs/ingest/internal/sources"
)

// ErrRunInProgress is returned when a run is requested while one is active.
// Runs never queue: the scheduler retries on its own cadence.
var ErrRunInProgress = apperrors.Conflict("an ingestion run is already in progress")

// IngestServiceOptions groups dependencies for IngestService.
type IngestServiceOptions struct {
	Adapters  []sources.Adapter           // Required: at least one configured adapter
	Jobs      core.JobRepository          // Required: job repository
	Companies *CompanyService             // Required: company resolver
	DupLog    core.DuplicateLogRepository // Optional: duplicate audit log
	Config    config.IngestConfig         // Required: pipeline configuration
	Logger    *slog.Logger                // Optional: structured logger
	Metrics   statsd.Sink                 // Optional: metrics sink (StatsD-compatible)

	TimeProvider data.TimeProvider // Optional: defaults to real time
}

// RunStatus is the externally visible run state: what the service is doing
// now plus the summary of the most recent completed run.
type RunStatus struct {
	State   model.RunState    `json:"state"`
	LastRun *model.RunSummary `json:"last_run,omitempty"`
}

// IngestService drives full ingestion runs: fan out over source adapters,
// push every fetched posting through normalize → dedupe → company → score →
// upsert, then sweep expired listings.
type IngestService struct {
	adapters  []sources.Adapter
	jobs      core.JobRepository
	companies *CompanyService
	dupLog    core.DuplicateLogRepository
	config    config.IngestConfig
	logger    *slog.Logger
	metrics   statsd.Sink
	tp        data.TimeProvider

	mu      sync.Mutex
	state   model.RunState
	lastRun *model.RunSummary
}

// NewIngestService constructs a new IngestService. It fails when no adapter
// is configured: a run with zero sources can only ever do nothing.
func NewIngestService(opts IngestServiceOptions) (*IngestService, error) {
	if len(opts.Adapters) == 0 {
		return nil, errors.New("at least one source adapter is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Companies == nil {
		return nil, errors.New("CompanyService is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &IngestService{
		adapters:  opts.Adapters,
		jobs:      opts.Jobs,
		companies: opts.Companies,
		dupLog:    opts.DupLog,
		config:    opts.Config,
		logger:    logger.With("component", "ingest_service"),
		metrics:   opts.Metrics,
		tp:        tp,
		state:     model.RunStateIdle,
	}, nil
}

// Status reports the current run state and the last completed run summary.
func (s *IngestService) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunStatus{State: s.state, LastRun: s.lastRun}
}

// Run executes one full ingestion run and blocks until it completes. With no
// sourceNames every configured adapter runs; otherwise only the named subset.
// Only one run may be active at a time; a second caller gets ErrRunInProgress.
func (s *IngestService) Run(ctx context.Context, sourceNames ...string) (*model.RunSummary, error) {
	adapters, err := s.selectAdapters(sourceNames)
	if err != nil {
		return nil, err
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	started := s.tp.Now()
	summary := &model.RunSummary{
		State:     model.RunStateRunning,
		Sources:   make(map[string]model.SourceCounts, len(adapters)),
		StartedAt: started,
	}

	s.logger.InfoContext(ctx, "ingestion run starting", "sources", len(adapters))

	// One deduper for the whole run: its seen set is what catches the same
	// listing surfacing from two sources in the same pass, before either row
	// is committed.
	deduper := dedupe.New(dedupe.Options{
		Jobs:         s.jobs,
		DupLog:       s.dupLog,
		Logger:       s.logger,
		TimeProvider: s.tp,
	})

	// One goroutine per adapter; each task owns its counters and they are
	// merged only after the task returns.
	results := make([]model.SourceCounts, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		g.Go(func() error {
			results[i] = s.runSource(gctx, adapter, deduper)
			return nil
		})
	}
	// Source tasks never return errors; total failure is per-source state.
	_ = g.Wait()

	for i, adapter := range adapters {
		summary.Sources[adapter.Name()] = results[i]
	}

	s.setState(model.RunStateCleanup)
	summary.State = model.RunStateCleanup
	s.sweep(ctx, summary)

	summary.State = model.RunStateComplete
	summary.FinishedAt = s.tp.Now()
	if ctx.Err() != nil {
		summary.Error = ctx.Err().Error()
	}

	s.finish(summary)
	s.emitRunMetrics(summary)

	s.logger.InfoContext(ctx, "ingestion run complete",
		"fetched", summary.TotalFetched(),
		"added", summary.TotalAdded(),
		"expired", summary.Expired,
		"active_jobs", summary.ActiveJobs,
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}

// selectAdapters resolves a requested source subset against the configured
// adapters. An empty request means every adapter.
func (s *IngestService) selectAdapters(sourceNames []string) ([]sources.Adapter, error) {
	if len(sourceNames) == 0 {
		return s.adapters, nil
	}

	byName := make(map[string]sources.Adapter, len(s.adapters))
	for _, adapter := range s.adapters {
		byName[adapter.Name()] = adapter
	}

	selected := make([]sources.Adapter, 0, len(sourceNames))
	for _, name := range sourceNames {
		adapter, ok := byName[name]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("unknown source %q", name))
		}
		selected = append(selected, adapter)
	}
	return selected, nil
}

// begin transitions idle → running, rejecting concurrent runs.
func (s *IngestService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == model.RunStateRunning || s.state == model.RunStateCleanup {
		return ErrRunInProgress
	}
	s.state = model.RunStateRunning
	return nil
}

func (s *IngestService) setState(state model.RunState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *IngestService) finish(summary *model.RunSummary) {
	s.mu.Lock()
	s.state = model.RunStateIdle
	s.lastRun = summary
	s.mu.Unlock()
}

// runSource fetches and processes one adapter. Total fetch failure marks this
// source failed and never disturbs the others.
func (s *IngestService) runSource(ctx context.Context, adapter sources.Adapter, deduper *dedupe.Deduper) model.SourceCounts {
	name := adapter.Name()
	counts := model.SourceCounts{State: model.SourceStateFetching}
	logger := s.logger.With("provider", name)

	start := s.tp.Now()
	raws, err := adapter.Fetch(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "source fetch failed", "err", err)
		counts.State = model.SourceStateFailed
		counts.Errors++
		return counts
	}
	counts.Fetched = len(raws)
	counts.State = model.SourceStateProcessing
	logger.InfoContext(ctx, "source fetched", "count", len(raws))

	for i := range raws {
		if ctx.Err() != nil {
			counts.Errors += len(raws) - i
			break
		}
		s.processOne(ctx, deduper, raws[i], &counts, logger)
	}

	// Records skipped by cancellation were counted as errors above; the
	// source must not report done in that case.
	if ctx.Err() != nil {
		counts.State = model.SourceStateFailed
	} else {
		counts.State = model.SourceStateDone
	}
	if s.metrics != nil {
		s.metrics.Timing("source.duration", s.tp.Now().Sub(start), map[string]string{"provider": name})
	}
	return counts
}

// processOne pushes a single raw posting through the pipeline, updating the
// source counters. Per-record failures are counted, never fatal.
func (s *IngestService) processOne(ctx context.Context, deduper *dedupe.Deduper, raw model.RawJob, counts *model.SourceCounts, logger *slog.Logger) {
	candidate, err := normalize.Candidate(raw)
	if err != nil {
		logger.DebugContext(ctx, "skipping invalid posting", "err", err)
		counts.Skipped++
		return
	}

	decision, err := deduper.Decide(ctx, &candidate)
	if err != nil {
		logger.WarnContext(ctx, "dedup decision failed",
			"external_id", raw.ExternalID, "err", err)
		counts.Errors++
		return
	}
	if decision == dedupe.DecisionDuplicate {
		counts.Duplicates++
		return
	}

	params := s.buildUpsertParams(&candidate)

	// Company resolution is best-effort: a resolver failure leaves company_id
	// null rather than dropping the posting.
	company, err := s.companies.Resolve(ctx, candidate.Raw.Employer, decision == dedupe.DecisionInsert)
	if err != nil {
		logger.WarnContext(ctx, "company resolution failed",
			"employer", candidate.Raw.Employer, "err", err)
	} else {
		params.CompanyID = &company.ID
	}

	_, inserted, err := s.jobs.Upsert(ctx, params)
	if err != nil {
		logger.WarnContext(ctx, "job upsert failed",
			"external_id", raw.ExternalID, "err", err)
		counts.Errors++
		return
	}
	if inserted {
		counts.Added++
	} else {
		counts.Updated++
	}
}

// buildUpsertParams assembles the persisted row from a normalized candidate:
// annualized salary bounds, display string, quality score, fingerprint and
// expiry.
func (s *IngestService) buildUpsertParams(c *model.CandidateJob) *model.UpsertJobParams {
	now := s.tp.Now()
	params := &model.UpsertJobParams{
		ExternalID:       c.Raw.ExternalID,
		SourceProvider:   c.Raw.Provider,
		Title:            c.Raw.Title,
		Employer:         c.Raw.Employer,
		Location:         c.Raw.Location,
		City:             c.Location.City,
		State:            c.Location.State,
		Description:      c.Raw.Description,
		Summary:          c.Summary,
		ApplyLink:        c.Raw.ApplyURL,
		Fingerprint:      c.Fingerprint(),
		SalaryRawText:    c.Raw.SalaryText,
		DisplaySalary:    normalize.FormatDisplay(c.Salary),
		ExpiresAt:        now.Add(s.config.JobTTL),
		OriginalPostedAt: c.Raw.PostedAt,
	}

	if c.Salary.Present() {
		params.RawMinSalary = c.Salary.Min
		params.RawMaxSalary = c.Salary.Max
		period := c.Salary.Period
		params.SalaryPeriod = &period
		params.SalaryIsEstimated = c.Salary.Estimated
		if c.Salary.Min != nil {
			annualMin := normalize.Annualize(*c.Salary.Min, period)
			params.NormalizedMinSalary = &annualMin
		}
		if c.Salary.Max != nil {
			annualMax := normalize.Annualize(*c.Salary.Max, period)
			params.NormalizedMaxSalary = &annualMax
		}
	}

	params.QualityScore = quality.Score(quality.Input{
		HasApplyLink:    c.Raw.ApplyURL != "",
		HasSalary:       c.Salary.Present(),
		SalaryEstimated: c.Salary.Estimated,
		DescriptionLen:  len(c.Raw.Description),
		City:            c.Location.City,
		State:           c.Location.State,
		Remote:          c.Location.Remote,
		EmployerDirect:  employerDirect(c.Raw.Provider),
		HasPostedDate:   c.Raw.PostedAt != nil,
	})
	return params
}

// employerDirect reports whether a provider serves postings straight from the
// employer's own board rather than an aggregation index.
func employerDirect(provider string) bool {
	return provider == sources.ProviderGreenhouse || provider == sources.ProviderLever
}

// sweep runs the post-run cleanup: unpublish expired listings and capture the
// active count. Sweep failures are recorded on the summary, not fatal.
func (s *IngestService) sweep(ctx context.Context, summary *model.RunSummary) {
	expired, err := s.jobs.ExpireStale(ctx, s.tp.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "expiry sweep failed", "err", err)
		summary.Error = fmt.Sprintf("expiry sweep: %v", err)
	} else {
		summary.Expired = expired
	}

	active, err := s.jobs.CountPublished(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "active job count failed", "err", err)
	} else {
		summary.ActiveJobs = active
	}
}

func (s *IngestService) emitRunMetrics(summary *model.RunSummary) {
	if s.metrics == nil {
		return
	}

	s.metrics.Count("run.count", 1, nil)
	s.metrics.Timing("run.duration", summary.FinishedAt.Sub(summary.StartedAt), nil)
	s.metrics.Gauge("jobs.active", float64(summary.ActiveJobs), nil)
	s.metrics.Count("jobs.expired", int64(summary.Expired), nil)

	for provider, c := range summary.Sources {
		tags := map[string]string{"provider": provider}
		s.metrics.Count("jobs.fetched", int64(c.Fetched), tags)
		s.metrics.Count("jobs.added", int64(c.Added), tags)
		s.metrics.Count("jobs.updated", int64(c.Updated), tags)
		s.metrics.Count("jobs.duplicates", int64(c.Duplicates), tags)
		s.metrics.Count("jobs.errors", int64(c.Errors), tags)
		if c.State == model.SourceStateFailed {
			s.metrics.Count("source.failures", 1, tags)
		}
	}
}
