// Package core defines the port interfaces between the service layer and the
// data layer. Services depend on these contracts, never on concrete repos.
package core

import (
	"context"
	"time"

	"github.com/practicejobs/ingest/internal/domain/model"
)

// JobRepository defines the interface for catalog job persistence.
//
// Upsert is the atomicity boundary for the whole pipeline: it must
// create-or-update by the (source_provider, external_id) unique key in a
// single statement, so two near-simultaneous sightings of the same posting
// can never produce two rows. The pipeline deliberately holds no
// application-level lock across its decide-then-write gap.
type JobRepository interface {
	// Upsert creates or updates a job by its unique source key. The returned
	// bool is true when a new row was created. On update, id and created_at
	// are preserved and is_published is set back to true.
	Upsert(ctx context.Context, params *model.UpsertJobParams) (*model.Job, bool, error)

	// GetByExternalKey returns the job for (provider, externalID), or a
	// NotFound error.
	GetByExternalKey(ctx context.Context, provider, externalID string) (*model.Job, error)

	// FindByFingerprint returns a published job matching the cross-source
	// fingerprint from any provider other than excludeProvider, or nil when
	// none matches. Same-provider rows are excluded: two postings with
	// distinct identity keys from one source are never fuzzy duplicates.
	FindByFingerprint(ctx context.Context, fingerprint, excludeProvider string) (*model.Job, error)

	// ExpireStale unpublishes every published job whose expires_at has
	// passed, returning the number of rows flipped.
	ExpireStale(ctx context.Context, now time.Time) (int, error)

	// CountPublished returns the current number of published jobs.
	CountPublished(ctx context.Context) (int, error)
}

// CompanyRepository defines the interface for canonical employer persistence.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*model.Company, error)

	// GetByNormalizedName returns the company for a normalized name, or a
	// NotFound error.
	GetByNormalizedName(ctx context.Context, normalizedName string) (*model.Company, error)

	// Create inserts a company with job_count=1 and the raw employer string
	// recorded as its first alias.
	Create(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error)

	// IncrementJobCount adjusts job_count by delta without reading first.
	IncrementJobCount(ctx context.Context, id string, delta int) error

	// RecordAlias appends an alias if the company does not already carry it.
	RecordAlias(ctx context.Context, id, alias string) error

	// Merge absorbs merge_id into keep_id in one transaction: jobs are
	// re-pointed, aliases and job_count folded in, and the merged row
	// deleted. A crash mid-merge must never leave a job referencing a
	// deleted company.
	Merge(ctx context.Context, req model.MergeCompaniesRequest) (*model.Company, error)
}

// DuplicateLogRepository is the bounded, age-expiring audit log for postings
// discarded by cross-source deduplication.
type DuplicateLogRepository interface {
	Record(ctx context.Context, rec model.DuplicateRecord) error
	Recent(ctx context.Context, limit int) ([]model.DuplicateRecord, error)
}

// AnalyticsRepository provides read-only aggregates over the catalog.
type AnalyticsRepository interface {
	SourceStats(ctx context.Context) ([]model.SourceStats, error)
	Trend(ctx context.Context, days int) ([]model.TrendPoint, error)
}

// CacheRepository defines a minimal byte-oriented cache contract.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}
