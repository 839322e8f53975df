// Package dedupe decides whether an incoming posting is new, an update to a
// known posting, or a cross-source duplicate.
package dedupe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/practicejobs/ingest/internal/core"
	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/domain/model"
)

// Decision classifies one posting against the catalog.
type Decision string

const (
	// DecisionInsert means no existing job matches; persist as a new row.
	DecisionInsert Decision = "insert"
	// DecisionUpdate means the posting's own (provider, external_id) key is
	// already in the catalog; refresh that row in place.
	DecisionUpdate Decision = "update"
	// DecisionDuplicate means another provider already carries this listing;
	// discard it and record it in the audit log.
	DecisionDuplicate Decision = "duplicate"
)

// Deduper resolves posting identity. Decision order is cheapest and most
// certain first: the exact source key always wins over fingerprint reasoning.
type Deduper struct {
	jobs   core.JobRepository
	dupLog core.DuplicateLogRepository
	logger *slog.Logger

	timeProvider data.TimeProvider

	// seen maps fingerprints decided insert in this run to the inserting
	// provider, so the same listing surfacing from a second source within one
	// pass cannot race the database round trip. A same-provider repeat never
	// fuzzy-matches: distinct external ids from one source are distinct
	// postings.
	mu   sync.Mutex
	seen map[string]string
}

// Options holds dependencies for constructing a Deduper.
type Options struct {
	Jobs         core.JobRepository
	DupLog       core.DuplicateLogRepository
	Logger       *slog.Logger
	TimeProvider data.TimeProvider
}

// New creates a Deduper scoped to a single ingestion run. The in-run seen set
// starts empty; build a fresh Deduper per run. One Deduper may be shared by
// the run's concurrent source tasks.
func New(opts Options) *Deduper {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &Deduper{
		jobs:         opts.Jobs,
		dupLog:       opts.DupLog,
		logger:       logger.With("component", "dedupe"),
		timeProvider: tp,
		seen:         make(map[string]string),
	}
}

// Decide classifies a candidate. Duplicates are recorded in the audit log as a
// side effect; an audit write failure never changes the decision.
func (d *Deduper) Decide(ctx context.Context, c *model.CandidateJob) (Decision, error) {
	existing, err := d.jobs.GetByExternalKey(ctx, c.Raw.Provider, c.Raw.ExternalID)
	if err == nil && existing != nil {
		return DecisionUpdate, nil
	}
	if err != nil && !data.IsNotFound(err) {
		return "", err
	}

	fp := c.Fingerprint()

	d.mu.Lock()
	provider, ok := d.seen[fp]
	d.mu.Unlock()
	if ok && provider != c.Raw.Provider {
		d.recordDuplicate(ctx, c, fp, "")
		return DecisionDuplicate, nil
	}

	match, err := d.jobs.FindByFingerprint(ctx, fp, c.Raw.Provider)
	if err != nil {
		return "", err
	}
	if match != nil {
		d.recordDuplicate(ctx, c, fp, match.ID)
		return DecisionDuplicate, nil
	}

	d.mu.Lock()
	if _, ok := d.seen[fp]; !ok {
		d.seen[fp] = c.Raw.Provider
	}
	d.mu.Unlock()
	return DecisionInsert, nil
}

func (d *Deduper) recordDuplicate(ctx context.Context, c *model.CandidateJob, fp, matchedID string) {
	if d.dupLog == nil {
		return
	}
	rec := model.DuplicateRecord{
		Provider:    c.Raw.Provider,
		ExternalID:  c.Raw.ExternalID,
		Title:       c.Raw.Title,
		Employer:    c.Raw.Employer,
		Fingerprint: fp,
		MatchedJob:  matchedID,
		SeenAt:      d.timeProvider.Now(),
	}
	if err := d.dupLog.Record(ctx, rec); err != nil {
		d.logger.WarnContext(ctx, "failed to record duplicate",
			"provider", c.Raw.Provider, "external_id", c.Raw.ExternalID, "err", err)
	}
}
