package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/practicejobs/ingest/internal/errors"

	"github.com/practicejobs/ingest/internal/data/pgxutil"
	"github.com/practicejobs/ingest/internal/domain/model"
)

// jobColumns is the canonical column list selected into model.Job.
const jobColumns = `id, external_id, source_provider, title, employer, company_id,
	location, city, state, description, summary, apply_link, fingerprint,
	salary_raw_text, raw_min_salary, raw_max_salary,
	normalized_min_salary, normalized_max_salary, salary_period,
	display_salary, salary_is_estimated, quality_score,
	is_published, is_featured, created_at, updated_at, expires_at, original_posted_at`

// JobRepo provides database operations for the job catalog.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a new JobRepo instance with the given database connection.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewJobRepoWithTimeProvider creates a JobRepo with a custom TimeProvider (useful for testing).
func NewJobRepoWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *JobRepo {
	return &JobRepo{DB: db, timeProvider: timeProvider}
}

// upsertRow carries the job plus the inserted-vs-updated flag from RETURNING.
type upsertRow struct {
	model.Job
	Inserted bool `db:"inserted"`
}

// upsertJobSQL creates or updates a job by its (source_provider, external_id)
// unique key in a single statement. The conflict branch never touches id or
// created_at and always republishes the row; (xmax = 0) distinguishes a fresh
// insert from an update.
const upsertJobSQL = `
	INSERT INTO jobs (
		id, external_id, source_provider, title, employer, company_id,
		location, city, state, description, summary, apply_link, fingerprint,
		salary_raw_text, raw_min_salary, raw_max_salary,
		normalized_min_salary, normalized_max_salary, salary_period,
		display_salary, salary_is_estimated, quality_score,
		is_published, is_featured, created_at, updated_at, expires_at, original_posted_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16,
		$17, $18, $19,
		$20, $21, $22,
		TRUE, FALSE, $23, $23, $24, $25
	)
	ON CONFLICT (source_provider, external_id) DO UPDATE SET
		title = EXCLUDED.title,
		employer = EXCLUDED.employer,
		company_id = COALESCE(EXCLUDED.company_id, jobs.company_id),
		location = EXCLUDED.location,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		description = EXCLUDED.description,
		summary = EXCLUDED.summary,
		apply_link = EXCLUDED.apply_link,
		fingerprint = EXCLUDED.fingerprint,
		salary_raw_text = EXCLUDED.salary_raw_text,
		raw_min_salary = EXCLUDED.raw_min_salary,
		raw_max_salary = EXCLUDED.raw_max_salary,
		normalized_min_salary = EXCLUDED.normalized_min_salary,
		normalized_max_salary = EXCLUDED.normalized_max_salary,
		salary_period = EXCLUDED.salary_period,
		display_salary = EXCLUDED.display_salary,
		salary_is_estimated = EXCLUDED.salary_is_estimated,
		quality_score = EXCLUDED.quality_score,
		is_published = TRUE,
		updated_at = EXCLUDED.updated_at,
		expires_at = EXCLUDED.expires_at,
		original_posted_at = COALESCE(EXCLUDED.original_posted_at, jobs.original_posted_at)
	RETURNING ` + jobColumns + `, (xmax = 0) AS inserted`

// Upsert creates or updates a job by its unique source key. The returned bool
// is true when a new row was created.
func (r *JobRepo) Upsert(ctx context.Context, params *model.UpsertJobParams) (*model.Job, bool, error) {
	if params == nil {
		return nil, false, errors.New("upsert job params are required")
	}
	if err := params.Validate(); err != nil {
		return nil, false, err
	}

	now := r.timeProvider.Now()

	var out upsertRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, upsertJobSQL,
			uuid.NewString(), params.ExternalID, params.SourceProvider,
			params.Title, params.Employer, params.CompanyID,
			params.Location, params.City, params.State,
			params.Description, params.Summary, params.ApplyLink, params.Fingerprint,
			params.SalaryRawText, params.RawMinSalary, params.RawMaxSalary,
			params.NormalizedMinSalary, params.NormalizedMaxSalary, params.SalaryPeriod,
			params.DisplaySalary, params.SalaryIsEstimated, params.QualityScore,
			now, params.ExpiresAt, params.OriginalPostedAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[upsertRow])
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert job: %w", apperrors.MapDBError(err))
	}

	return &out.Job, out.Inserted, nil
}

// getJobByQuery executes a query expected to return a single job.
func (r *JobRepo) getJobByQuery(ctx context.Context, q string, args ...any) (*model.Job, error) {
	var job model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		job, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", apperrors.MapDBError(err))
	}
	return &job, nil
}

// GetByExternalKey returns the job for (provider, externalID).
func (r *JobRepo) GetByExternalKey(ctx context.Context, provider, externalID string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE source_provider = $1 AND external_id = $2`
	return r.getJobByQuery(ctx, q, provider, externalID)
}

// GetByID returns the job with the given id.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return r.getJobByQuery(ctx, q, id)
}

// FindByFingerprint returns a published job carrying the fingerprint from any
// provider other than excludeProvider, or nil when none matches.
func (r *JobRepo) FindByFingerprint(ctx context.Context, fingerprint, excludeProvider string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs
		WHERE fingerprint = $1 AND source_provider <> $2 AND is_published
		ORDER BY created_at ASC
		LIMIT 1`
	job, err := r.getJobByQuery(ctx, q, fingerprint, excludeProvider)
	if errors.Is(err, ErrJobNotFound) {
		return nil, nil
	}
	return job, err
}

// ExpireStale unpublishes every published job whose expires_at has passed.
// The caller's now is both the cutoff and the new updated_at, so the sweep is
// reproducible against a single clock.
func (r *JobRepo) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET is_published = FALSE, updated_at = $1
		WHERE is_published AND expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("expire stale jobs: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire stale jobs rows affected: %w", err)
	}
	return int(affected), nil
}

// CountPublished returns the current number of published jobs.
func (r *JobRepo) CountPublished(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM jobs WHERE is_published`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published jobs: %w", apperrors.MapDBError(err))
	}
	return count, nil
}
