package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
)

// Adzuna fetches postings from the Adzuna public search API, one keyword
// query at a time, pages serialized.
type Adzuna struct {
	cfg     config.AdzunaConfig
	shared  *config.SourcesConfig
	client  *http.Client
	filter  *KeywordFilter
	logger  *slog.Logger
	baseURL string
}

// NewAdzuna constructs the Adzuna adapter.
func NewAdzuna(cfg config.AdzunaConfig, shared *config.SourcesConfig, client *http.Client, filter *KeywordFilter, logger *slog.Logger) *Adzuna {
	return &Adzuna{
		cfg:     cfg,
		shared:  shared,
		client:  client,
		filter:  filter,
		logger:  logger.With("provider", ProviderAdzuna),
		baseURL: adzunaBaseURL,
	}
}

// Name returns the provider identifier.
func (a *Adzuna) Name() string { return ProviderAdzuna }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

// Fetch pulls up to MaxPages of results for the broadest configured keyword
// and narrows with the keyword filter. Pagination stops at the first short or
// empty page.
func (a *Adzuna) Fetch(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob

	for page := 1; page <= a.cfg.MaxPages; page++ {
		if page > 1 {
			if err := sleepBetweenPages(ctx, a.shared.PageDelay); err != nil {
				return jobs, err
			}
		}

		batch, err := a.fetchPage(ctx, page)
		if err != nil {
			return jobs, fmt.Errorf("adzuna page %d: %w", page, err)
		}
		jobs = append(jobs, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}

	kept, dropped := a.filter.Apply(jobs)
	if dropped > 0 {
		a.logger.Debug("keyword filter dropped postings", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

func (a *Adzuna) fetchPage(ctx context.Context, page int) ([]model.RawJob, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.baseURL, a.cfg.Country, page)

	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", a.searchTerm())
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	var apiResp adzunaResponse
	if err := getJSON(ctx, a.client, endpoint+"?"+params.Encode(), nil, &apiResp); err != nil {
		return nil, err
	}

	jobs := make([]model.RawJob, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		job := model.RawJob{
			ExternalID:  r.ID,
			Provider:    ProviderAdzuna,
			Title:       r.Title,
			Employer:    r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			ApplyURL:    r.RedirectURL,
			PostedAt:    parseISOTime(r.Created),
		}
		if job.ExternalID == "" {
			job.ExternalID = ExternalIDFromURL(r.RedirectURL)
		}
		if r.SalaryMin > 0 || r.SalaryMax > 0 {
			job.SalaryText = adzunaSalaryText(r.SalaryMin, r.SalaryMax)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// searchTerm picks the broadest allowlisted keyword as the provider query;
// the rest of the allowlist is enforced by the filter.
func (a *Adzuna) searchTerm() string {
	if len(a.shared.Keywords) > 0 {
		return a.shared.Keywords[0]
	}
	return "nurse practitioner"
}

// adzunaSalaryText renders structured salary bounds back into the text form
// the normalizer parses, keeping one extraction path for all providers.
func adzunaSalaryText(minVal, maxVal float64) string {
	switch {
	case minVal > 0 && maxVal > 0:
		return fmt.Sprintf("$%.0f - $%.0f per year", minVal, maxVal)
	case minVal > 0:
		return fmt.Sprintf("$%.0f per year", minVal)
	default:
		return fmt.Sprintf("$%.0f per year", maxVal)
	}
}

// getJSON performs one GET and decodes the JSON response body.
func getJSON(ctx context.Context, client *http.Client, reqURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "…"
	}
	return string(body)
}

// parseISOTime parses the timestamp formats providers actually emit, or nil.
func parseISOTime(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
