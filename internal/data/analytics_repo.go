package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/practicejobs/ingest/internal/errors"

	"github.com/practicejobs/ingest/internal/data/pgxutil"
	"github.com/practicejobs/ingest/internal/domain/model"
)

// AnalyticsRepo provides read-only aggregates over the job catalog. Nothing
// here appears on the ingest hot path; every figure is derived on demand.
type AnalyticsRepo struct {
	DB *sql.DB
}

// NewAnalyticsRepo creates a new AnalyticsRepo with the given database connection.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{DB: db}
}

// SourceStats returns per-provider catalog aggregates.
func (r *AnalyticsRepo) SourceStats(ctx context.Context) ([]model.SourceStats, error) {
	var stats []model.SourceStats
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT
				source_provider AS provider,
				count(*)::int AS total_jobs,
				count(*) FILTER (WHERE is_published)::int AS published_jobs,
				count(*) FILTER (WHERE normalized_min_salary IS NOT NULL)::int AS with_salary,
				COALESCE(round(avg(quality_score)), 0)::int AS avg_score,
				COALESCE(to_char(max(created_at), 'YYYY-MM-DD'), '') AS latest_creation
			FROM jobs
			GROUP BY source_provider
			ORDER BY source_provider`)
		if err != nil {
			return err
		}
		stats, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.SourceStats])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("source stats: %w", apperrors.MapDBError(err))
	}
	return stats, nil
}

// Trend returns daily job-creation volume for the last `days` days.
func (r *AnalyticsRepo) Trend(ctx context.Context, days int) ([]model.TrendPoint, error) {
	if days < 1 {
		days = 1
	}
	var points []model.TrendPoint
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT date_trunc('day', created_at) AS day, count(*)::int AS added
			FROM jobs
			WHERE created_at >= now() - make_interval(days => $1)
			GROUP BY 1
			ORDER BY 1`, days)
		if err != nil {
			return err
		}
		points, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.TrendPoint])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("trend: %w", apperrors.MapDBError(err))
	}
	return points, nil
}
