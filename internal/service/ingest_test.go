package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/practicejobs/ingest/config"
	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/domain/model"
	apperrors "github.com/practicejobs/ingest/internal/errors"
	"github.com/practicejobs/ingest/internal/mocks"
	"github.com/practicejobs/ingest/internal/sources"
)

// fakeAdapter is a canned source for pipeline tests.
type fakeAdapter struct {
	name    string
	jobs    []model.RawJob
	err     error
	block   chan struct{}
	onFetch func()
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]model.RawJob, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.jobs, f.err
}

var _ sources.Adapter = (*fakeAdapter)(nil)

func rawPosting(provider, externalID, title, employer string) model.RawJob {
	return model.RawJob{
		Provider:    provider,
		ExternalID:  externalID,
		Title:       title,
		Employer:    employer,
		Location:    "Austin, TX",
		Description: "Psychiatric nurse practitioner position with full benefits and support staff.",
		SalaryText:  "$65-$75/hr",
		ApplyURL:    "https://example.com/jobs/" + externalID,
	}
}

type ingestFixture struct {
	jobs      *mocks.MockJobRepository
	companies *mocks.MockCompanyRepository
	dupLog    *mocks.MockDuplicateLogRepository
	tp        *data.FixedTimeProvider
}

func newIngestFixture(t *testing.T) (*ingestFixture, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &ingestFixture{
		jobs:      mocks.NewMockJobRepository(ctrl),
		companies: mocks.NewMockCompanyRepository(ctrl),
		dupLog:    mocks.NewMockDuplicateLogRepository(ctrl),
		tp:        data.NewFixedTimeProvider(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)),
	}, ctrl
}

func (f *ingestFixture) service(t *testing.T, adapters ...sources.Adapter) *IngestService {
	t.Helper()
	companySvc, err := NewCompanyService(CompanyServiceOptions{Repo: f.companies})
	require.NoError(t, err)

	cfg := config.IngestConfig{JobTTL: 720 * time.Hour}
	svc, err := NewIngestService(IngestServiceOptions{
		Adapters:     adapters,
		Jobs:         f.jobs,
		Companies:    companySvc,
		DupLog:       f.dupLog,
		Config:       cfg,
		TimeProvider: f.tp,
	})
	require.NoError(t, err)
	return svc
}

// expectResolve wires the company lookups for one posting resolving to an
// existing company.
func (f *ingestFixture) expectResolve(companyID string, countJob bool) {
	f.companies.EXPECT().
		GetByNormalizedName(gomock.Any(), gomock.Any()).
		Return(&model.Company{ID: companyID}, nil)
	if countJob {
		f.companies.EXPECT().IncrementJobCount(gomock.Any(), companyID, 1).Return(nil)
	}
	f.companies.EXPECT().RecordAlias(gomock.Any(), companyID, gomock.Any()).Return(nil)
}

func TestRunFullPipeline(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	fresh := rawPosting("adzuna", "az-new", "PMHNP - Outpatient", "Lakeside Behavioral")
	seen := rawPosting("adzuna", "az-seen", "PMHNP - Inpatient", "Harbor Psychiatry")
	copied := rawPosting("adzuna", "az-copy", "PMHNP - Telehealth", "Televista")

	adapter := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{fresh, seen, copied}}

	// fresh: no exact key, no fingerprint match → insert.
	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-new").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").Return(nil, nil)
	f.expectResolve("c-lakeside", true)

	// seen: exact key hit → update in place, company job count untouched.
	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-seen").Return(&model.Job{ID: "j-seen"}, nil)
	f.expectResolve("c-harbor", false)

	// copied: another provider already carries the listing → duplicate.
	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-copy").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").
		Return(&model.Job{ID: "j-orig", SourceProvider: "jooble"}, nil)
	f.dupLog.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	f.jobs.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.UpsertJobParams) (*model.Job, bool, error) {
			inserted := p.ExternalID == "az-new"
			return &model.Job{ID: "j-" + p.ExternalID}, inserted, nil
		}).Times(2)

	f.jobs.EXPECT().ExpireStale(gomock.Any(), f.tp.Now()).Return(2, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(41, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.RunStateComplete, summary.State)
	counts := summary.Sources["adzuna"]
	assert.Equal(t, model.SourceStateDone, counts.State)
	assert.Equal(t, 3, counts.Fetched)
	assert.Equal(t, 1, counts.Added)
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, 1, counts.Duplicates)
	assert.Equal(t, 0, counts.Errors)
	assert.Equal(t, 2, summary.Expired)
	assert.Equal(t, 41, summary.ActiveJobs)

	status := svc.Status()
	assert.Equal(t, model.RunStateIdle, status.State)
	assert.Equal(t, summary, status.LastRun)
}

func TestRunBuildsNormalizedUpsertParams(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	posting := rawPosting("greenhouse", "gh-1", "Psychiatric Nurse Practitioner", "MindCare Clinics")
	adapter := &fakeAdapter{name: "greenhouse", jobs: []model.RawJob{posting}}

	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "greenhouse", "gh-1").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "greenhouse").Return(nil, nil)
	f.expectResolve("c-mindcare", true)

	var got *model.UpsertJobParams
	f.jobs.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.UpsertJobParams) (*model.Job, bool, error) {
			got = p
			return &model.Job{ID: "j-1"}, true, nil
		})
	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(1, nil)

	svc := f.service(t, adapter)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)

	// "$65-$75/hr" annualizes to $135,200-$156,000 at 2080 hours/year.
	require.NotNil(t, got.NormalizedMinSalary)
	require.NotNil(t, got.NormalizedMaxSalary)
	assert.Equal(t, 135_200, *got.NormalizedMinSalary)
	assert.Equal(t, 156_000, *got.NormalizedMaxSalary)
	require.NotNil(t, got.SalaryPeriod)
	assert.Equal(t, model.SalaryPeriodHourly, *got.SalaryPeriod)
	assert.False(t, got.SalaryIsEstimated)
	assert.Equal(t, "$65-$75/hr", got.DisplaySalary)

	assert.Equal(t, "Austin", got.City)
	assert.Equal(t, "TX", got.State)
	require.NotNil(t, got.CompanyID)
	assert.Equal(t, "c-mindcare", *got.CompanyID)
	assert.Equal(t, f.tp.Now().Add(720*time.Hour), got.ExpiresAt)
	assert.Greater(t, got.QualityScore, 0)
	assert.LessOrEqual(t, got.QualityScore, 100)
}

func TestRunSourceFailureIsIsolated(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	broken := &fakeAdapter{name: "jooble", err: errors.New("upstream 503")}
	healthy := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{rawPosting("adzuna", "az-1", "PMHNP", "Lakeside Behavioral")}}

	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-1").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").Return(nil, nil)
	f.expectResolve("c-1", true)
	f.jobs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(&model.Job{ID: "j-1"}, true, nil)
	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(1, nil)

	svc := f.service(t, broken, healthy)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.SourceStateFailed, summary.Sources["jooble"].State)
	assert.Equal(t, 1, summary.Sources["jooble"].Errors)
	assert.Equal(t, model.SourceStateDone, summary.Sources["adzuna"].State)
	assert.Equal(t, 1, summary.Sources["adzuna"].Added)
}

func TestRunSameSourceRepeatAddsBothPostings(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	// The same role posted twice on one board under distinct external ids
	// shares a fingerprint but is two distinct postings.
	first := rawPosting("adzuna", "az-1", "PMHNP", "Lakeside Behavioral")
	second := rawPosting("adzuna", "az-2", "PMHNP", "Lakeside Behavioral")
	adapter := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{first, second}}

	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-1").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-2").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").Return(nil, nil).Times(2)
	f.expectResolve("c-lakeside", true)
	f.expectResolve("c-lakeside", true)
	f.jobs.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.UpsertJobParams) (*model.Job, bool, error) {
			return &model.Job{ID: "j-" + p.ExternalID}, true, nil
		}).Times(2)
	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(2, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	counts := summary.Sources["adzuna"]
	assert.Equal(t, 2, counts.Added)
	assert.Equal(t, 0, counts.Duplicates)
}

func TestRunCancelledSourceReportsFailed(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	adapter := &fakeAdapter{
		name:    "adzuna",
		jobs:    []model.RawJob{rawPosting("adzuna", "az-1", "PMHNP", "Lakeside Behavioral")},
		onFetch: cancel,
	}

	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(0, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(ctx)
	require.NoError(t, err)

	counts := summary.Sources["adzuna"]
	assert.Equal(t, model.SourceStateFailed, counts.State)
	assert.Equal(t, 1, counts.Errors)
	assert.NotEmpty(t, summary.Error)
}

func TestRunCompanyResolutionFailureKeepsJob(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	adapter := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{rawPosting("adzuna", "az-1", "PMHNP", "Lakeside Behavioral")}}

	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-1").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").Return(nil, nil)
	f.companies.EXPECT().
		GetByNormalizedName(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	var got *model.UpsertJobParams
	f.jobs.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.UpsertJobParams) (*model.Job, bool, error) {
			got = p
			return &model.Job{ID: "j-1"}, true, nil
		})
	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(1, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sources["adzuna"].Added)
	require.NotNil(t, got)
	assert.Nil(t, got.CompanyID)
}

func TestRunSkipsInvalidPostings(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	invalid := rawPosting("adzuna", "az-bad", "", "Lakeside Behavioral") // no title
	adapter := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{invalid}}

	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(0, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	counts := summary.Sources["adzuna"]
	assert.Equal(t, 1, counts.Fetched)
	assert.Equal(t, 1, counts.Skipped)
	assert.Equal(t, 0, counts.Added)
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	adapter := &fakeAdapter{name: "adzuna", block: release}

	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(0, nil)

	svc := f.service(t, adapter)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()

	// Wait until the first run holds the running state.
	require.Eventually(t, func() bool {
		return svc.Status().State == model.RunStateRunning
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestExpirySweepCountsOnSummary(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	adapter := &fakeAdapter{name: "adzuna"}

	f.jobs.EXPECT().ExpireStale(gomock.Any(), f.tp.Now()).Return(7, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(12, nil)

	svc := f.service(t, adapter)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Expired)
	assert.Equal(t, 12, summary.ActiveJobs)
}

func TestRunSelectsRequestedSources(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	wanted := &fakeAdapter{name: "adzuna", jobs: []model.RawJob{rawPosting("adzuna", "az-1", "PMHNP", "Lakeside Behavioral")}}
	skipped := &fakeAdapter{name: "jooble", err: errors.New("should not be fetched")}

	f.jobs.EXPECT().GetByExternalKey(gomock.Any(), "adzuna", "az-1").Return(nil, data.ErrJobNotFound)
	f.jobs.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any(), "adzuna").Return(nil, nil)
	f.expectResolve("c-1", true)
	f.jobs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(&model.Job{ID: "j-1"}, true, nil)
	f.jobs.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, nil)
	f.jobs.EXPECT().CountPublished(gomock.Any()).Return(1, nil)

	svc := f.service(t, wanted, skipped)
	summary, err := svc.Run(context.Background(), "adzuna")
	require.NoError(t, err)

	assert.Len(t, summary.Sources, 1)
	assert.Equal(t, 1, summary.Sources["adzuna"].Added)
	assert.NotContains(t, summary.Sources, "jooble")
}

func TestRunRejectsUnknownSource(t *testing.T) {
	f, ctrl := newIngestFixture(t)
	defer ctrl.Finish()

	svc := f.service(t, &fakeAdapter{name: "adzuna"})
	_, err := svc.Run(context.Background(), "bogus")
	assert.True(t, apperrors.IsValidation(err))

	// A bad source name must not flip the run state.
	assert.Equal(t, model.RunStateIdle, svc.Status().State)
}

func TestNewIngestServiceRequiresAdapters(t *testing.T) {
	_, err := NewIngestService(IngestServiceOptions{})
	assert.Error(t, err)
}
