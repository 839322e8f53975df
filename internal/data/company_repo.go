package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/practicejobs/ingest/internal/errors"

	"github.com/practicejobs/ingest/internal/data/pgxutil"
	"github.com/practicejobs/ingest/internal/domain/model"
)

const companyColumns = `id, name, normalized_name, aliases, job_count, is_verified, created_at`

// CompanyRepo provides database operations for canonical employers.
type CompanyRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCompanyRepo creates a new CompanyRepo instance with the given database connection.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCompanyRepoWithTimeProvider creates a CompanyRepo with a custom TimeProvider.
func NewCompanyRepoWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *CompanyRepo {
	return &CompanyRepo{DB: db, timeProvider: timeProvider}
}

func (r *CompanyRepo) getCompanyByQuery(ctx context.Context, q string, args ...any) (*model.Company, error) {
	var company model.Company
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		company, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Company])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company: %w", apperrors.MapDBError(err))
	}
	return &company, nil
}

// GetByID returns the company with the given id.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.getCompanyByQuery(ctx, q, id)
}

// GetByNormalizedName returns the company with the given normalized name.
func (r *CompanyRepo) GetByNormalizedName(ctx context.Context, normalizedName string) (*model.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies WHERE normalized_name = $1`
	return r.getCompanyByQuery(ctx, q, normalizedName)
}

// Create inserts a company with job_count=1 and the raw employer string as
// its first alias. Creation races on normalized_name resolve through the
// unique index: the loser re-reads the winner's row.
func (r *CompanyRepo) Create(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error) {
	if req == nil {
		return nil, errors.New("create company request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	normalized := model.NormalizeCompanyName(req.Name)
	aliases := []string{req.Name}
	if req.Alias != "" && req.Alias != req.Name {
		aliases = append(aliases, req.Alias)
	}

	var company model.Company
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO companies (id, name, normalized_name, aliases, job_count, is_verified, created_at)
			VALUES ($1, $2, $3, $4, 1, FALSE, $5)
			RETURNING `+companyColumns,
			uuid.NewString(), req.Name, normalized, aliases, r.timeProvider.Now())
		if err != nil {
			return err
		}
		defer rows.Close()
		company, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Company])
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return r.GetByNormalizedName(ctx, normalized)
		}
		return nil, fmt.Errorf("create company: %w", apperrors.MapDBError(err))
	}

	return &company, nil
}

// IncrementJobCount adjusts job_count by delta without reading first.
func (r *CompanyRepo) IncrementJobCount(ctx context.Context, id string, delta int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE companies SET job_count = GREATEST(job_count + $2, 0) WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("increment job count: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment job count rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// RecordAlias appends an alias if the company does not already carry it.
func (r *CompanyRepo) RecordAlias(ctx context.Context, id, alias string) error {
	if alias == "" {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE companies
		SET aliases = array_append(aliases, $2)
		WHERE id = $1 AND NOT ($2 = ANY(aliases))
	`, id, alias)
	if err != nil {
		return fmt.Errorf("record alias: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Merge absorbs merge_id into keep_id in one transaction. Jobs referencing
// the merged company are re-pointed before the row is deleted, so a crash at
// any point leaves either both companies intact or the merge fully applied —
// never a job referencing a deleted company.
func (r *CompanyRepo) Merge(ctx context.Context, req model.MergeCompaniesRequest) (*model.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Company
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var mergeName string
		var mergeAliases []string
		var mergeCount int
		err := tx.QueryRow(ctx,
			`SELECT name, aliases, job_count FROM companies WHERE id = $1 FOR UPDATE`,
			req.MergeID).Scan(&mergeName, &mergeAliases, &mergeCount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCompanyNotFound
			}
			return err
		}

		if _, err = tx.Exec(ctx,
			`UPDATE jobs SET company_id = $1 WHERE company_id = $2`,
			req.KeepID, req.MergeID); err != nil {
			return err
		}

		folded := append([]string{mergeName}, mergeAliases...)
		rows, err := tx.Query(ctx, `
			UPDATE companies
			SET job_count = job_count + $2,
			    aliases = (
			        SELECT array_agg(DISTINCT a)
			        FROM unnest(aliases || $3::text[]) AS a
			    )
			WHERE id = $1
			RETURNING `+companyColumns,
			req.KeepID, mergeCount, folded)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Company])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCompanyNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, req.MergeID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("merge companies: %w", apperrors.MapDBError(err))
	}

	return &out, nil
}
