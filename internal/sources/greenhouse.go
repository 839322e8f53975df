package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// Greenhouse fetches postings from per-company Greenhouse job boards. The
// boards API exposes no cross-company search, so each configured slug is one
// feed request. Board postings come from the employer directly, which the
// quality scorer rewards.
type Greenhouse struct {
	cfg     config.GreenhouseConfig
	shared  *config.SourcesConfig
	client  *http.Client
	filter  *KeywordFilter
	logger  *slog.Logger
	baseURL string
}

// NewGreenhouse constructs the Greenhouse adapter.
func NewGreenhouse(cfg config.GreenhouseConfig, shared *config.SourcesConfig, client *http.Client, filter *KeywordFilter, logger *slog.Logger) *Greenhouse {
	return &Greenhouse{
		cfg:     cfg,
		shared:  shared,
		client:  client,
		filter:  filter,
		logger:  logger.With("provider", ProviderGreenhouse),
		baseURL: greenhouseBaseURL,
	}
}

// Name returns the provider identifier.
func (g *Greenhouse) Name() string { return ProviderGreenhouse }

type greenhouseBoard struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
}

// Fetch polls every configured board slug. One failing board is logged and
// skipped; the run only fails when every board fails.
func (g *Greenhouse) Fetch(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob
	failures := 0

	for i, slug := range g.cfg.Slugs {
		if i > 0 {
			if err := sleepBetweenPages(ctx, g.shared.PageDelay); err != nil {
				return jobs, err
			}
		}

		batch, err := g.fetchBoard(ctx, slug)
		if err != nil {
			failures++
			g.logger.Warn("board fetch failed", "slug", slug, "err", err)
			continue
		}
		jobs = append(jobs, batch...)
	}

	if failures == len(g.cfg.Slugs) {
		return nil, fmt.Errorf("greenhouse: all %d boards failed", failures)
	}

	kept, dropped := g.filter.Apply(jobs)
	if dropped > 0 {
		g.logger.Debug("keyword filter dropped postings", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

func (g *Greenhouse) fetchBoard(ctx context.Context, slug string) ([]model.RawJob, error) {
	var board greenhouseBoard
	reqURL := fmt.Sprintf("%s/%s/jobs?content=true", g.baseURL, slug)
	if err := getJSON(ctx, g.client, reqURL, nil, &board); err != nil {
		return nil, err
	}

	jobs := make([]model.RawJob, 0, len(board.Jobs))
	for _, item := range board.Jobs {
		employer := item.Company.Name
		if employer == "" {
			employer = slug
		}
		jobs = append(jobs, model.RawJob{
			ExternalID:  fmt.Sprintf("%s-%d", slug, item.ID),
			Provider:    ProviderGreenhouse,
			Title:       item.Title,
			Employer:    employer,
			Location:    item.Location.Name,
			Description: item.Content,
			ApplyURL:    item.AbsoluteURL,
			PostedAt:    parseISOTime(item.UpdatedAt),
		})
	}
	return jobs, nil
}
