// Package service implements the application services orchestrating the
// ingestion pipeline over the data-layer ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/practicejobs/ingest/internal/core"
	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/domain/model"
	apperrors "github.com/practicejobs/ingest/internal/errors"
)

// CompanyServiceOptions groups dependencies for CompanyService.
type CompanyServiceOptions struct {
	Repo   core.CompanyRepository // Required: company repository
	Logger *slog.Logger           // Optional: structured logger
}

// CompanyService resolves raw employer strings to canonical company records
// and handles operator-driven merges of duplicate companies.
type CompanyService struct {
	repo   core.CompanyRepository
	logger *slog.Logger
}

// NewCompanyService constructs a new CompanyService.
func NewCompanyService(opts CompanyServiceOptions) (*CompanyService, error) {
	if opts.Repo == nil {
		return nil, errors.New("CompanyRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyService{
		repo:   opts.Repo,
		logger: logger.With("component", "company_service"),
	}, nil
}

// Resolve maps a raw employer string to its canonical company, creating the
// company on first sighting. countJob controls whether the company's job
// count is incremented — true only when the caller is about to insert a new
// job, never on updates or duplicates.
//
// Resolution is never fatal to the pipeline: callers treat a failed resolve as
// a nil company id and persist the job anyway.
func (s *CompanyService) Resolve(ctx context.Context, rawEmployer string, countJob bool) (*model.Company, error) {
	normalized := model.NormalizeCompanyName(rawEmployer)
	if normalized == "" {
		return nil, apperrors.Validation("employer name has no resolvable content")
	}

	company, err := s.repo.GetByNormalizedName(ctx, normalized)
	switch {
	case err == nil:
		if countJob {
			if incErr := s.repo.IncrementJobCount(ctx, company.ID, 1); incErr != nil {
				s.logger.WarnContext(ctx, "failed to increment company job count",
					"company_id", company.ID, "err", incErr)
			}
		}
		if aliasErr := s.repo.RecordAlias(ctx, company.ID, rawEmployer); aliasErr != nil {
			s.logger.WarnContext(ctx, "failed to record company alias",
				"company_id", company.ID, "err", aliasErr)
		}
		return company, nil

	case data.IsNotFound(err):
		created, createErr := s.repo.Create(ctx, &model.CreateCompanyRequest{
			Name:  rawEmployer,
			Alias: rawEmployer,
		})
		if createErr != nil {
			return nil, fmt.Errorf("create company: %w", createErr)
		}
		s.logger.InfoContext(ctx, "created company",
			"company_id", created.ID, "normalized_name", created.NormalizedName)
		return created, nil

	default:
		return nil, fmt.Errorf("resolve company: %w", err)
	}
}

// Merge absorbs one company into another, re-pointing jobs and folding
// aliases and job counts. Both ids must exist and differ.
func (s *CompanyService) Merge(ctx context.Context, req model.MergeCompaniesRequest) (*model.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid merge request")
	}

	merged, err := s.repo.Merge(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("merge companies: %w", err)
	}

	s.logger.InfoContext(ctx, "merged companies",
		"keep_id", req.KeepID, "merge_id", req.MergeID, "job_count", merged.JobCount)
	return merged, nil
}

// Get returns a company by id.
func (s *CompanyService) Get(ctx context.Context, id string) (*model.Company, error) {
	return s.repo.GetByID(ctx, id)
}
