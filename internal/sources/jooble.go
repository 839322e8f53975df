package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const joobleBaseURL = "https://jooble.org/api"

// Jooble fetches postings from the Jooble aggregation API. Unlike the other
// search providers it takes a POST body and keys requests by API key in the
// URL path.
type Jooble struct {
	cfg     config.JoobleConfig
	shared  *config.SourcesConfig
	client  *http.Client
	filter  *KeywordFilter
	logger  *slog.Logger
	baseURL string
}

// NewJooble constructs the Jooble adapter.
func NewJooble(cfg config.JoobleConfig, shared *config.SourcesConfig, client *http.Client, filter *KeywordFilter, logger *slog.Logger) *Jooble {
	return &Jooble{
		cfg:     cfg,
		shared:  shared,
		client:  client,
		filter:  filter,
		logger:  logger.With("provider", ProviderJooble),
		baseURL: joobleBaseURL,
	}
}

// Name returns the provider identifier.
func (j *Jooble) Name() string { return ProviderJooble }

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Page     int    `json:"page"`
}

type joobleResponse struct {
	TotalCount int          `json:"totalCount"`
	Jobs       []joobleItem `json:"jobs"`
}

type joobleItem struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Company  string      `json:"company"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Link     string      `json:"link"`
	Updated  string      `json:"updated"`
}

// Fetch pulls up to MaxPages of results, stopping at the first empty page.
func (j *Jooble) Fetch(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob

	for page := 1; page <= j.cfg.MaxPages; page++ {
		if page > 1 {
			if err := sleepBetweenPages(ctx, j.shared.PageDelay); err != nil {
				return jobs, err
			}
		}

		batch, err := j.fetchPage(ctx, page)
		if err != nil {
			return jobs, fmt.Errorf("jooble page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		jobs = append(jobs, batch...)
	}

	kept, dropped := j.filter.Apply(jobs)
	if dropped > 0 {
		j.logger.Debug("keyword filter dropped postings", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

func (j *Jooble) fetchPage(ctx context.Context, page int) ([]model.RawJob, error) {
	keywords := "nurse practitioner"
	if len(j.shared.Keywords) > 0 {
		keywords = j.shared.Keywords[0]
	}

	payload, err := json.Marshal(joobleRequest{Keywords: keywords, Page: page})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		j.baseURL+"/"+j.cfg.APIKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jooble returned %d: %s", resp.StatusCode, truncateBody(body))
	}

	var apiResp joobleResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	jobs := make([]model.RawJob, 0, len(apiResp.Jobs))
	for _, item := range apiResp.Jobs {
		job := model.RawJob{
			ExternalID:  item.ID.String(),
			Provider:    ProviderJooble,
			Title:       item.Title,
			Employer:    item.Company,
			Location:    item.Location,
			Description: item.Snippet,
			SalaryText:  item.Salary,
			ApplyURL:    item.Link,
			PostedAt:    parseISOTime(item.Updated),
		}
		if job.ExternalID == "" || job.ExternalID == "0" {
			job.ExternalID = ExternalIDFromURL(item.Link)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
