package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// Lever fetches postings from per-company Lever feeds, one request per
// configured slug. Like Greenhouse these are employer-direct listings.
type Lever struct {
	cfg     config.LeverConfig
	shared  *config.SourcesConfig
	client  *http.Client
	filter  *KeywordFilter
	logger  *slog.Logger
	baseURL string
}

// NewLever constructs the Lever adapter.
func NewLever(cfg config.LeverConfig, shared *config.SourcesConfig, client *http.Client, filter *KeywordFilter, logger *slog.Logger) *Lever {
	return &Lever{
		cfg:     cfg,
		shared:  shared,
		client:  client,
		filter:  filter,
		logger:  logger.With("provider", ProviderLever),
		baseURL: leverBaseURL,
	}
}

// Name returns the provider identifier.
func (l *Lever) Name() string { return ProviderLever }

type leverPosting struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	HostedURL      string `json:"hostedUrl"`
	ApplyURL       string `json:"applyUrl"`
	CreatedAt      int64  `json:"createdAt"`
	DescriptionRaw string `json:"descriptionPlain"`
	Categories     struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
}

// Fetch polls every configured posting feed. One failing slug is logged and
// skipped; the fetch only fails when every slug fails.
func (l *Lever) Fetch(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob
	failures := 0

	for i, slug := range l.cfg.Slugs {
		if i > 0 {
			if err := sleepBetweenPages(ctx, l.shared.PageDelay); err != nil {
				return jobs, err
			}
		}

		batch, err := l.fetchFeed(ctx, slug)
		if err != nil {
			failures++
			l.logger.Warn("feed fetch failed", "slug", slug, "err", err)
			continue
		}
		jobs = append(jobs, batch...)
	}

	if failures == len(l.cfg.Slugs) {
		return nil, fmt.Errorf("lever: all %d feeds failed", failures)
	}

	kept, dropped := l.filter.Apply(jobs)
	if dropped > 0 {
		l.logger.Debug("keyword filter dropped postings", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

func (l *Lever) fetchFeed(ctx context.Context, slug string) ([]model.RawJob, error) {
	var postings []leverPosting
	reqURL := fmt.Sprintf("%s/%s?mode=json", l.baseURL, slug)
	if err := getJSON(ctx, l.client, reqURL, nil, &postings); err != nil {
		return nil, err
	}

	jobs := make([]model.RawJob, 0, len(postings))
	for _, p := range postings {
		applyURL := p.ApplyURL
		if applyURL == "" {
			applyURL = p.HostedURL
		}
		job := model.RawJob{
			ExternalID:  fmt.Sprintf("%s-%s", slug, p.ID),
			Provider:    ProviderLever,
			Title:       p.Text,
			Employer:    slug,
			Location:    p.Categories.Location,
			Description: p.DescriptionRaw,
			ApplyURL:    applyURL,
		}
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			job.PostedAt = &t
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
