package model

import "time"

// RunState tracks the lifecycle of one ingestion run.
type RunState string

const (
	// RunStateIdle means no run is in progress.
	RunStateIdle RunState = "idle"
	// RunStateRunning means source tasks are fetching and processing.
	RunStateRunning RunState = "running"
	// RunStateCleanup means all sources finished and the expiry sweep is running.
	RunStateCleanup RunState = "cleanup"
	// RunStateComplete means the run finished and a summary is available.
	RunStateComplete RunState = "complete"
)

// SourceState tracks one source's progress within a run. Sources advance
// independently; one source failing never moves another source's state.
type SourceState string

const (
	// SourceStateFetching means the adapter is pulling pages from the provider.
	SourceStateFetching SourceState = "fetching"
	// SourceStateProcessing means fetched postings are moving through the pipeline.
	SourceStateProcessing SourceState = "processing"
	// SourceStateDone means the source finished, possibly with per-record errors.
	SourceStateDone SourceState = "done"
	// SourceStateFailed means the source's fetch failed entirely.
	SourceStateFailed SourceState = "failed"
)

// SourceCounts accumulates per-source pipeline counters for one run.
type SourceCounts struct {
	State      SourceState `json:"state"`
	Fetched    int         `json:"fetched"`
	Added      int         `json:"added"`
	Updated    int         `json:"updated"`
	Duplicates int         `json:"duplicates"`
	Skipped    int         `json:"skipped"`
	Errors     int         `json:"errors"`
}

// RunSummary is the structured result of one full ingestion run, returned to
// the external scheduler that triggered it.
type RunSummary struct {
	State      RunState                `json:"state"`
	Sources    map[string]SourceCounts `json:"sources"`
	Expired    int                     `json:"expired"`
	ActiveJobs int                     `json:"active_jobs"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Error      string                  `json:"error,omitempty"`
}

// TotalFetched sums fetched counters across sources.
func (s *RunSummary) TotalFetched() int {
	total := 0
	for _, c := range s.Sources {
		total += c.Fetched
	}
	return total
}

// TotalAdded sums added counters across sources.
func (s *RunSummary) TotalAdded() int {
	total := 0
	for _, c := range s.Sources {
		total += c.Added
	}
	return total
}

// DuplicateRecord is one entry in the bounded duplicate audit log, retained
// to debug fuzzy-dedup false positives and negatives.
type DuplicateRecord struct {
	Provider    string    `json:"provider"`
	ExternalID  string    `json:"external_id"`
	Title       string    `json:"title"`
	Employer    string    `json:"employer"`
	Fingerprint string    `json:"fingerprint"`
	MatchedJob  string    `json:"matched_job"`
	SeenAt      time.Time `json:"seen_at"`
}

// SourceStats is a read-only per-provider aggregate for analytics.
type SourceStats struct {
	Provider       string `json:"provider"        db:"provider"`
	TotalJobs      int    `json:"total_jobs"      db:"total_jobs"`
	PublishedJobs  int    `json:"published_jobs"  db:"published_jobs"`
	WithSalary     int    `json:"with_salary"     db:"with_salary"`
	AvgScore       int    `json:"avg_score"       db:"avg_score"`
	LatestCreation string `json:"latest_creation" db:"latest_creation"`
}

// TrendPoint is one day of job-creation volume for analytics.
type TrendPoint struct {
	Day   time.Time `json:"day"   db:"day"`
	Added int       `json:"added" db:"added"`
}
