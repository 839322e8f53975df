package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/practicejobs/ingest/internal/data"
	"github.com/practicejobs/ingest/internal/domain/model"
	"github.com/practicejobs/ingest/internal/mocks"
)

func candidate(provider, externalID, title, employer, location string) *model.CandidateJob {
	return &model.CandidateJob{
		Raw: model.RawJob{
			Provider:   provider,
			ExternalID: externalID,
			Title:      title,
			Employer:   employer,
			Location:   location,
			ApplyURL:   "https://example.com/apply",
		},
	}
}

func newTestDeduper(jobs *mocks.MockJobRepository, dupLog *mocks.MockDuplicateLogRepository) *Deduper {
	return New(Options{
		Jobs:         jobs,
		DupLog:       dupLog,
		TimeProvider: data.NewFixedTimeProvider(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func TestDecideExactKeyWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	c := candidate("adzuna", "az-1", "PMHNP", "Lakeside Health", "Austin, TX")

	// Even with a fingerprint collision in the catalog, the posting's own
	// source key decides: no fingerprint lookup may happen.
	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-1").
		Return(&model.Job{ID: "job-1"}, nil)

	d := newTestDeduper(jobs, dupLog)
	decision, err := d.Decide(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, DecisionUpdate, decision)
}

func TestDecideInsertWhenNothingMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	c := candidate("adzuna", "az-1", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-1").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), c.Fingerprint(), "adzuna").
		Return(nil, nil)

	d := newTestDeduper(jobs, dupLog)
	decision, err := d.Decide(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, DecisionInsert, decision)
}

func TestDecideCrossSourceDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	c := candidate("jooble", "jb-9", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "jooble", "jb-9").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), c.Fingerprint(), "jooble").
		Return(&model.Job{ID: "job-1", SourceProvider: "adzuna"}, nil)
	dupLog.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec model.DuplicateRecord) error {
			assert.Equal(t, "jooble", rec.Provider)
			assert.Equal(t, "jb-9", rec.ExternalID)
			assert.Equal(t, "job-1", rec.MatchedJob)
			assert.Equal(t, c.Fingerprint(), rec.Fingerprint)
			return nil
		})

	d := newTestDeduper(jobs, dupLog)
	decision, err := d.Decide(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, DecisionDuplicate, decision)
}

func TestDecideInRunSeenSetCatchesRepeats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	first := candidate("adzuna", "az-1", "PMHNP", "Lakeside Health", "Austin, TX")
	// Same listing surfacing again from another source within the same run.
	second := candidate("jooble", "jb-2", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-1").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), first.Fingerprint(), "adzuna").
		Return(nil, nil)
	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "jooble", "jb-2").
		Return(nil, data.ErrJobNotFound)
	// The seen set decides before any fingerprint query for the second posting.
	dupLog.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	d := newTestDeduper(jobs, dupLog)

	decision, err := d.Decide(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, DecisionInsert, decision)

	decision, err = d.Decide(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, DecisionDuplicate, decision)
}

func TestDecideSameSourceRepeatInsertsBoth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	// One board posting the same role twice under distinct ids: these carry
	// distinct verified identity keys and must both land in the catalog.
	first := candidate("adzuna", "az-1", "PMHNP", "Lakeside Health", "Austin, TX")
	second := candidate("adzuna", "az-2", "PMHNP", "Lakeside Health", "Austin, TX")
	require.Equal(t, first.Fingerprint(), second.Fingerprint())

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-1").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), first.Fingerprint(), "adzuna").
		Return(nil, nil)
	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-2").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), second.Fingerprint(), "adzuna").
		Return(nil, nil)

	d := newTestDeduper(jobs, dupLog)

	decision, err := d.Decide(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, DecisionInsert, decision)

	decision, err = d.Decide(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, DecisionInsert, decision)
}

func TestDecideSameProviderNeverFuzzyMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	c := candidate("adzuna", "az-2", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-2").
		Return(nil, data.ErrJobNotFound)
	// The repository contract excludes the candidate's own provider, so a
	// same-source row with this fingerprint comes back as no match.
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), c.Fingerprint(), "adzuna").
		Return(nil, nil)

	d := newTestDeduper(jobs, dupLog)
	decision, err := d.Decide(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, DecisionInsert, decision)
}

func TestDecideAuditFailureDoesNotChangeDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	dupLog := mocks.NewMockDuplicateLogRepository(ctrl)

	c := candidate("jooble", "jb-9", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "jooble", "jb-9").
		Return(nil, data.ErrJobNotFound)
	jobs.EXPECT().
		FindByFingerprint(gomock.Any(), c.Fingerprint(), "jooble").
		Return(&model.Job{ID: "job-1"}, nil)
	dupLog.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		Return(errors.New("redis down"))

	d := newTestDeduper(jobs, dupLog)
	decision, err := d.Decide(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, DecisionDuplicate, decision)
}

func TestDecidePropagatesRepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)

	c := candidate("adzuna", "az-1", "PMHNP", "Lakeside Health", "Austin, TX")

	jobs.EXPECT().
		GetByExternalKey(gomock.Any(), "adzuna", "az-1").
		Return(nil, errors.New("connection refused"))

	d := New(Options{Jobs: jobs})
	_, err := d.Decide(context.Background(), c)
	assert.Error(t, err)
}
