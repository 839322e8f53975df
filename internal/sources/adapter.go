// Package sources implements the provider adapters that pull raw postings
// into the pipeline. Each adapter speaks one provider's protocol and returns
// provider-shaped postings flattened into RawJob.
package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

// Adapter fetches one provider's postings. Fetch owns its pagination and
// performs requests serially; concurrency across providers belongs to the
// caller, never inside an adapter.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawJob, error)
}

// KeywordFilter matches postings against the catalog's keyword allowlist.
// Providers have no native filter narrow enough for a niche specialty, so the
// broad provider query is narrowed here before anything enters the pipeline.
type KeywordFilter struct {
	keywords []string
}

// NewKeywordFilter builds a filter from pre-lowercased keywords. An empty
// list matches everything.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	return &KeywordFilter{keywords: keywords}
}

// Match reports whether the posting's title or description contains any
// allowlisted keyword.
func (f *KeywordFilter) Match(title, description string) bool {
	if len(f.keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(title + " " + description)
	for _, kw := range f.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// Apply filters a fetched batch in place, returning kept postings and the
// number dropped.
func (f *KeywordFilter) Apply(jobs []model.RawJob) ([]model.RawJob, int) {
	kept := jobs[:0]
	for _, j := range jobs {
		if f.Match(j.Title, j.Description) {
			kept = append(kept, j)
		}
	}
	return kept, len(jobs) - len(kept)
}

// ExternalIDFromURL derives a stable external id for providers that expose no
// id of their own: a hash of the canonical apply URL (scheme, host, path;
// query and fragment stripped, since trackers vary them per fetch).
func ExternalIDFromURL(rawURL string) string {
	canonical := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		u.Host = strings.ToLower(u.Host)
		canonical = u.String()
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}

// sleepBetweenPages pauses between serialized paginated calls, honoring
// context cancellation.
func sleepBetweenPages(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Build constructs every enabled, credentialed adapter from configuration.
// Enabled-but-unconfigured providers are skipped with a warning; an unknown
// provider name is an error.
func Build(cfg *config.SourcesConfig, client *http.Client, logger *slog.Logger) ([]Adapter, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	filter := NewKeywordFilter(cfg.Keywords)

	var adapters []Adapter
	for _, name := range cfg.EnabledNames() {
		switch name {
		case ProviderAdzuna:
			if !cfg.Adzuna.Configured() {
				logger.Warn("source enabled but not configured, skipping", "provider", name)
				continue
			}
			adapters = append(adapters, NewAdzuna(cfg.Adzuna, cfg, client, filter, logger))
		case ProviderJooble:
			if !cfg.Jooble.Configured() {
				logger.Warn("source enabled but not configured, skipping", "provider", name)
				continue
			}
			adapters = append(adapters, NewJooble(cfg.Jooble, cfg, client, filter, logger))
		case ProviderGreenhouse:
			if !cfg.Greenhouse.Configured() {
				logger.Warn("source enabled but not configured, skipping", "provider", name)
				continue
			}
			adapters = append(adapters, NewGreenhouse(cfg.Greenhouse, cfg, client, filter, logger))
		case ProviderLever:
			if !cfg.Lever.Configured() {
				logger.Warn("source enabled but not configured, skipping", "provider", name)
				continue
			}
			adapters = append(adapters, NewLever(cfg.Lever, cfg, client, filter, logger))
		case ProviderJSONFeed:
			if !cfg.JSONFeed.Configured() {
				logger.Warn("source enabled but not configured, skipping", "provider", name)
				continue
			}
			feed, err := NewJSONFeed(cfg.JSONFeed, cfg, client, filter, logger)
			if err != nil {
				return nil, fmt.Errorf("jsonfeed adapter: %w", err)
			}
			adapters = append(adapters, feed)
		default:
			return nil, fmt.Errorf("unknown source provider %q", name)
		}
	}
	return adapters, nil
}

// Provider names as persisted in source_provider.
const (
	ProviderAdzuna     = "adzuna"
	ProviderJooble     = "jooble"
	ProviderGreenhouse = "greenhouse"
	ProviderLever      = "lever"
	ProviderJSONFeed   = "jsonfeed"
)
