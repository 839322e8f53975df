// Package model defines the core data types shared across the ingestion pipeline.
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxTitleLen is the maximum allowed length for a job title in characters.
	maxTitleLen = 500

	// HoursPerYear is the annualization factor for hourly salaries
	// (40 hours x 52 weeks).
	HoursPerYear = 2080

	// WeeksPerYear and MonthsPerYear annualize weekly and monthly figures.
	WeeksPerYear  = 52
	MonthsPerYear = 12
)

// SalaryPeriod identifies the pay period a raw salary figure was quoted in.
type SalaryPeriod string

const (
	// SalaryPeriodHourly indicates an hourly rate.
	SalaryPeriodHourly SalaryPeriod = "hourly"
	// SalaryPeriodWeekly indicates a weekly rate.
	SalaryPeriodWeekly SalaryPeriod = "weekly"
	// SalaryPeriodMonthly indicates a monthly rate.
	SalaryPeriodMonthly SalaryPeriod = "monthly"
	// SalaryPeriodAnnual indicates an annual figure.
	SalaryPeriodAnnual SalaryPeriod = "annual"
)

// Valid returns true if the SalaryPeriod is one of the known periods.
func (p SalaryPeriod) Valid() bool {
	return p == SalaryPeriodHourly || p == SalaryPeriodWeekly ||
		p == SalaryPeriodMonthly || p == SalaryPeriodAnnual
}

// AnnualFactor returns the multiplier that converts a figure in this period
// to an annual figure.
func (p SalaryPeriod) AnnualFactor() float64 {
	switch p {
	case SalaryPeriodHourly:
		return HoursPerYear
	case SalaryPeriodWeekly:
		return WeeksPerYear
	case SalaryPeriodMonthly:
		return MonthsPerYear
	default:
		return 1
	}
}

// RawJob is a posting in a single provider's shape, produced by a source
// adapter and discarded after normalization.
type RawJob struct {
	ExternalID  string
	Provider    string
	Title       string
	Employer    string
	Location    string
	Description string
	SalaryText  string
	ApplyURL    string
	PostedAt    *time.Time
}

// Validate checks that a RawJob carries the fields the catalog cannot do
// without. Postings failing this check are discarded, not persisted partially.
func (r *RawJob) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Employer) == "" {
		return errors.New("employer is required")
	}
	if strings.TrimSpace(r.ApplyURL) == "" {
		return errors.New("apply url is required")
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return errors.New("external id is required")
	}
	if strings.TrimSpace(r.Provider) == "" {
		return errors.New("provider is required")
	}
	if utf8.RuneCountInString(r.Title) > maxTitleLen {
		return errors.New("title cannot exceed 500 characters")
	}
	return nil
}

// Salary holds a parsed salary figure in its original period.
type Salary struct {
	Min    *float64
	Max    *float64
	Period SalaryPeriod
	// Estimated is true when the period (or the figure itself) was inferred
	// rather than stated explicitly in the posting.
	Estimated bool
}

// Present reports whether at least one bound was parsed.
func (s Salary) Present() bool {
	return s.Min != nil || s.Max != nil
}

// Location holds a normalized posting location.
type Location struct {
	City   string
	State  string
	Remote bool
}

// CandidateJob is a RawJob after text normalization and validation, before
// identity resolution. It lives for a single pipeline pass.
type CandidateJob struct {
	Raw      RawJob
	Salary   Salary
	Location Location
	// Summary is a short plain-text extract of the description for listings.
	Summary string
}

// Fingerprint returns the cross-source identity key used by fuzzy
// deduplication: normalized employer, title and location joined with "|".
func (c *CandidateJob) Fingerprint() string {
	return Fingerprint(c.Raw.Employer, c.Raw.Title, c.Raw.Location)
}

// Fingerprint builds the dedup fingerprint from raw employer, title and
// location strings. Normalization is lossy on purpose: case, punctuation and
// runs of whitespace never distinguish two listings.
func Fingerprint(employer, title, location string) string {
	return normalizeFragment(employer) + "|" + normalizeFragment(title) + "|" + normalizeFragment(location)
}

func normalizeFragment(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Job is the canonical persisted catalog entity.
type Job struct {
	ID                  string        `json:"id"                              db:"id"`
	ExternalID          string        `json:"external_id"                     db:"external_id"`
	SourceProvider      string        `json:"source_provider"                 db:"source_provider"`
	Title               string        `json:"title"                           db:"title"`
	Employer            string        `json:"employer"                        db:"employer"`
	CompanyID           *string       `json:"company_id,omitempty"            db:"company_id"`
	Location            string        `json:"location"                        db:"location"`
	City                string        `json:"city"                            db:"city"`
	State               string        `json:"state"                           db:"state"`
	Description         string        `json:"description"                     db:"description"`
	Summary             string        `json:"summary"                         db:"summary"`
	ApplyLink           string        `json:"apply_link"                      db:"apply_link"`
	Fingerprint         string        `json:"-"                               db:"fingerprint"`
	SalaryRawText       string        `json:"salary_raw_text"                 db:"salary_raw_text"`
	RawMinSalary        *float64      `json:"raw_min_salary,omitempty"        db:"raw_min_salary"`
	RawMaxSalary        *float64      `json:"raw_max_salary,omitempty"        db:"raw_max_salary"`
	NormalizedMinSalary *int          `json:"normalized_min_salary,omitempty" db:"normalized_min_salary"`
	NormalizedMaxSalary *int          `json:"normalized_max_salary,omitempty" db:"normalized_max_salary"`
	SalaryPeriod        *SalaryPeriod `json:"salary_period,omitempty"         db:"salary_period"`
	DisplaySalary       string        `json:"display_salary"                  db:"display_salary"`
	SalaryIsEstimated   bool          `json:"salary_is_estimated"             db:"salary_is_estimated"`
	QualityScore        int           `json:"quality_score"                   db:"quality_score"`
	IsPublished         bool          `json:"is_published"                    db:"is_published"`
	IsFeatured          bool          `json:"is_featured"                     db:"is_featured"`
	CreatedAt           time.Time     `json:"created_at"                      db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"                      db:"updated_at"`
	ExpiresAt           time.Time     `json:"expires_at"                      db:"expires_at"`
	OriginalPostedAt    *time.Time    `json:"original_posted_at,omitempty"    db:"original_posted_at"`
}

// UpsertJobParams carries everything the job repository needs to create or
// update a Job atomically by its (source_provider, external_id) key.
// On conflict the id and created_at of the existing row are preserved.
type UpsertJobParams struct {
	ExternalID          string
	SourceProvider      string
	Title               string
	Employer            string
	CompanyID           *string
	Location            string
	City                string
	State               string
	Description         string
	Summary             string
	ApplyLink           string
	Fingerprint         string
	SalaryRawText       string
	RawMinSalary        *float64
	RawMaxSalary        *float64
	NormalizedMinSalary *int
	NormalizedMaxSalary *int
	SalaryPeriod        *SalaryPeriod
	DisplaySalary       string
	SalaryIsEstimated   bool
	QualityScore        int
	ExpiresAt           time.Time
	OriginalPostedAt    *time.Time
}

// Validate checks upsert parameters before they reach the database.
func (p *UpsertJobParams) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return errors.New("external id is required")
	}
	if strings.TrimSpace(p.SourceProvider) == "" {
		return errors.New("source provider is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if p.QualityScore < 0 || p.QualityScore > 100 {
		return errors.New("quality score must be between 0 and 100")
	}
	if p.NormalizedMinSalary != nil && p.NormalizedMaxSalary != nil &&
		*p.NormalizedMinSalary > *p.NormalizedMaxSalary {
		return errors.New("normalized min salary cannot exceed max salary")
	}
	return nil
}
