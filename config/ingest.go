package config

import "time"

// IngestConfig contains pipeline and cleanup configuration.
type IngestConfig struct {
	// JobTTL is how long a listing stays published after its latest sighting.
	// The expiry sweep unpublishes jobs whose expires_at has passed.
	JobTTL time.Duration `env:"INGEST_JOB_TTL" envDefault:"720h"` // 30 days

	// DuplicateLogCap bounds the Redis duplicate audit log length.
	DuplicateLogCap int `env:"INGEST_DUPLICATE_LOG_CAP" envDefault:"1000"`

	// DuplicateLogTTL ages out the audit log when no duplicates arrive.
	DuplicateLogTTL time.Duration `env:"INGEST_DUPLICATE_LOG_TTL" envDefault:"336h"` // 14 days

	// CronSpec is the robfig/cron schedule used when the cron service mode is
	// enabled, e.g. "@every 6h".
	CronSpec string `env:"INGEST_CRON_SPEC" envDefault:"@every 6h"`

	// AnalyticsCacheTTL bounds staleness of cached analytics aggregates.
	AnalyticsCacheTTL time.Duration `env:"INGEST_ANALYTICS_CACHE_TTL" envDefault:"5m"`

	// TrendDays is how many days of creation volume the trend endpoint returns.
	TrendDays int `env:"INGEST_TREND_DAYS" envDefault:"30"`
}

// Sanitize applies guardrails to ingest configuration values.
func (c *IngestConfig) Sanitize() {
	if c.JobTTL < 24*time.Hour {
		c.JobTTL = 24 * time.Hour
	}
	if c.DuplicateLogCap < 1 {
		c.DuplicateLogCap = 1
	}
	if c.DuplicateLogCap > 100000 {
		c.DuplicateLogCap = 100000
	}
	if c.DuplicateLogTTL < time.Hour {
		c.DuplicateLogTTL = time.Hour
	}
	if c.CronSpec == "" {
		c.CronSpec = "@every 6h"
	}
	if c.AnalyticsCacheTTL <= 0 {
		c.AnalyticsCacheTTL = 5 * time.Minute
	}
	if c.TrendDays < 1 {
		c.TrendDays = 1
	}
	if c.TrendDays > 365 {
		c.TrendDays = 365
	}
}
