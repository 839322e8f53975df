package config

import (
	"strings"
	"time"
)

// SourcesConfig groups per-provider source adapter configuration.
//
// Each adapter is enabled only when its credentials (or slugs) are present;
// the lifecycle manager refuses to start a run when no adapter is usable.
type SourcesConfig struct {
	// Enabled is a comma-delimited list of provider names to fetch from.
	// Valid names: adzuna, jooble, greenhouse, lever, jsonfeed.
	Enabled string `env:"SOURCES_ENABLED" envDefault:"adzuna,jooble,greenhouse,lever"`

	// Keywords is the comma-delimited allowlist matched against title and
	// description before a posting enters the pipeline. Providers have no
	// native filter narrow enough for this catalog's niche.
	Keywords []string `env:"SOURCES_KEYWORDS" envSeparator:"," envDefault:"psychiatric nurse practitioner,pmhnp,psychiatric np,psych np"`

	// PageDelay is the pause between serialized paginated calls to one
	// provider. Providers document (or tolerate) roughly one request per
	// second; going faster risks bans.
	PageDelay time.Duration `env:"SOURCES_PAGE_DELAY" envDefault:"1200ms"`

	// FetchTimeout bounds every single outbound provider call.
	FetchTimeout time.Duration `env:"SOURCES_FETCH_TIMEOUT" envDefault:"10s"`

	Adzuna     AdzunaConfig     `envPrefix:"ADZUNA_"`
	Jooble     JoobleConfig     `envPrefix:"JOOBLE_"`
	Greenhouse GreenhouseConfig `envPrefix:"GREENHOUSE_"`
	Lever      LeverConfig      `envPrefix:"LEVER_"`
	JSONFeed   JSONFeedConfig   `envPrefix:"JSONFEED_"`
}

// EnabledNames returns the trimmed provider names from Enabled.
func (s *SourcesConfig) EnabledNames() []string {
	var names []string
	for _, part := range strings.Split(s.Enabled, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Sanitize applies guardrails to source configuration values.
func (s *SourcesConfig) Sanitize() {
	if s.PageDelay < 500*time.Millisecond {
		s.PageDelay = 500 * time.Millisecond
	}
	if s.FetchTimeout < time.Second {
		s.FetchTimeout = time.Second
	}
	if s.FetchTimeout > 30*time.Second {
		s.FetchTimeout = 30 * time.Second
	}
	kept := s.Keywords[:0]
	for _, kw := range s.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			kept = append(kept, kw)
		}
	}
	s.Keywords = kept
}

// AdzunaConfig holds credentials for the Adzuna search API.
type AdzunaConfig struct {
	AppID   string `env:"APP_ID"`
	AppKey  string `env:"APP_KEY"`
	Country string `env:"COUNTRY" envDefault:"us"`
	// MaxPages bounds pagination per search term.
	MaxPages int `env:"MAX_PAGES" envDefault:"3"`
}

// Configured reports whether the adapter has usable credentials.
func (c AdzunaConfig) Configured() bool {
	return c.AppID != "" && c.AppKey != ""
}

// JoobleConfig holds credentials for the Jooble search API.
type JoobleConfig struct {
	APIKey   string `env:"API_KEY"`
	MaxPages int    `env:"MAX_PAGES" envDefault:"3"`
}

// Configured reports whether the adapter has usable credentials.
func (c JoobleConfig) Configured() bool {
	return c.APIKey != ""
}

// GreenhouseConfig lists company board slugs to poll. Greenhouse exposes no
// cross-company search, so each slug is one feed request.
type GreenhouseConfig struct {
	Slugs []string `env:"SLUGS" envSeparator:","`
}

// Configured reports whether any slugs are present.
func (c GreenhouseConfig) Configured() bool {
	return len(c.Slugs) > 0
}

// LeverConfig lists company posting slugs to poll.
type LeverConfig struct {
	Slugs []string `env:"SLUGS" envSeparator:","`
}

// Configured reports whether any slugs are present.
func (c LeverConfig) Configured() bool {
	return len(c.Slugs) > 0
}

// JSONFeedConfig drives the generic JSON feed adapter: one URL plus JMESPath
// expressions locating each RawJob field inside the feed document.
type JSONFeedConfig struct {
	URL string `env:"URL"`
	// ItemsPath selects the array of postings in the response document.
	ItemsPath string `env:"ITEMS_PATH" envDefault:"jobs"`
	// Field paths are evaluated relative to each item.
	TitlePath       string `env:"TITLE_PATH"       envDefault:"title"`
	EmployerPath    string `env:"EMPLOYER_PATH"    envDefault:"company"`
	LocationPath    string `env:"LOCATION_PATH"    envDefault:"location"`
	DescriptionPath string `env:"DESCRIPTION_PATH" envDefault:"description"`
	ApplyURLPath    string `env:"APPLY_URL_PATH"   envDefault:"url"`
	IDPath          string `env:"ID_PATH"          envDefault:"id"`
}

// Configured reports whether the feed URL is present.
func (c JSONFeedConfig) Configured() bool {
	return c.URL != ""
}
