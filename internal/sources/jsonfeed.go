package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/domain/model"
)

// JSONFeed is the generic feed adapter: one URL plus JMESPath expressions
// locating each posting field inside the response document. It onboards small
// niche boards that expose a JSON listing but warrant no dedicated adapter.
type JSONFeed struct {
	cfg    config.JSONFeedConfig
	shared *config.SourcesConfig
	client *http.Client
	filter *KeywordFilter
	logger *slog.Logger

	items       jmespath.JMESPath
	title       jmespath.JMESPath
	employer    jmespath.JMESPath
	location    jmespath.JMESPath
	description jmespath.JMESPath
	applyURL    jmespath.JMESPath
	id          jmespath.JMESPath
}

// NewJSONFeed constructs the feed adapter, compiling every configured
// expression up front so a bad expression fails at startup, not mid-run.
func NewJSONFeed(cfg config.JSONFeedConfig, shared *config.SourcesConfig, client *http.Client, filter *KeywordFilter, logger *slog.Logger) (*JSONFeed, error) {
	f := &JSONFeed{
		cfg:    cfg,
		shared: shared,
		client: client,
		filter: filter,
		logger: logger.With("provider", ProviderJSONFeed),
	}

	for _, c := range []struct {
		expr string
		dst  *jmespath.JMESPath
	}{
		{cfg.ItemsPath, &f.items},
		{cfg.TitlePath, &f.title},
		{cfg.EmployerPath, &f.employer},
		{cfg.LocationPath, &f.location},
		{cfg.DescriptionPath, &f.description},
		{cfg.ApplyURLPath, &f.applyURL},
		{cfg.IDPath, &f.id},
	} {
		compiled, err := jmespath.Compile(c.expr)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", c.expr, err)
		}
		*c.dst = compiled
	}
	return f, nil
}

// Name returns the provider identifier.
func (f *JSONFeed) Name() string { return ProviderJSONFeed }

// Fetch retrieves the feed document once and extracts postings item by item.
// Items missing required fields are skipped, not fatal.
func (f *JSONFeed) Fetch(ctx context.Context) ([]model.RawJob, error) {
	var doc any
	if err := getJSON(ctx, f.client, f.cfg.URL, nil, &doc); err != nil {
		return nil, fmt.Errorf("jsonfeed: %w", err)
	}

	itemsVal, err := f.items.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonfeed items path: %w", err)
	}
	items, ok := itemsVal.([]any)
	if !ok {
		return nil, fmt.Errorf("jsonfeed items path did not select an array")
	}

	jobs := make([]model.RawJob, 0, len(items))
	for i, item := range items {
		job := model.RawJob{
			Provider:    ProviderJSONFeed,
			Title:       f.stringAt(f.title, item),
			Employer:    f.stringAt(f.employer, item),
			Location:    f.stringAt(f.location, item),
			Description: f.stringAt(f.description, item),
			ApplyURL:    f.stringAt(f.applyURL, item),
			ExternalID:  f.stringAt(f.id, item),
		}
		if job.ExternalID == "" && job.ApplyURL != "" {
			job.ExternalID = ExternalIDFromURL(job.ApplyURL)
		}
		if job.Title == "" || job.ApplyURL == "" {
			f.logger.Debug("skipping feed item missing required fields", "index", i)
			continue
		}
		jobs = append(jobs, job)
	}

	kept, dropped := f.filter.Apply(jobs)
	if dropped > 0 {
		f.logger.Debug("keyword filter dropped postings", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

// stringAt evaluates a compiled expression against an item, flattening
// numbers to their JSON text form.
func (f *JSONFeed) stringAt(expr jmespath.JMESPath, item any) string {
	v, err := expr.Search(item)
	if err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
