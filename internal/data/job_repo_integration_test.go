package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicejobs/ingest/internal/domain/model"
	"github.com/practicejobs/ingest/internal/testutil"
)

func testUpsertParams(provider, externalID, title string) *model.UpsertJobParams {
	return &model.UpsertJobParams{
		ExternalID:     externalID,
		SourceProvider: provider,
		Title:          title,
		Employer:       "Lakeside Behavioral Health",
		Location:       "Austin, TX",
		City:           "Austin",
		State:          "TX",
		ApplyLink:      "https://example.com/apply/" + externalID,
		Fingerprint:    model.Fingerprint("Lakeside Behavioral Health", title, "Austin, TX"),
		QualityScore:   60,
		ExpiresAt:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestJobRepoUpsertInsertThenUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	repo := NewJobRepoWithTimeProvider(db, NewFixedTimeProvider(t0))

	company, err := NewCompanyRepo(db).Create(ctx, &model.CreateCompanyRequest{Name: "Lakeside Behavioral Health"})
	require.NoError(t, err)

	params := testUpsertParams("adzuna", "az-1", "PMHNP - Outpatient")
	params.CompanyID = &company.ID
	params.OriginalPostedAt = testutil.TimePtr(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))

	created, inserted, err := repo.Upsert(ctx, params)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsPublished)
	assert.True(t, created.CreatedAt.Equal(t0), "created_at: %v", created.CreatedAt)

	// Unpublish the row out of band; a fresh sighting must republish it.
	_, err = db.ExecContext(ctx, `UPDATE jobs SET is_published = FALSE WHERE id = $1`, created.ID)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	later := NewJobRepoWithTimeProvider(db, NewFixedTimeProvider(t1))

	// The second sighting carries no company or posted date; both must
	// survive from the first row.
	update := testUpsertParams("adzuna", "az-1", "PMHNP - Outpatient Clinic")
	update.ExpiresAt = params.ExpiresAt.Add(time.Hour)

	updated, inserted, err := later.Upsert(ctx, update)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(t0), "created_at must be preserved: %v", updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.Equal(t1), "updated_at: %v", updated.UpdatedAt)
	assert.True(t, updated.IsPublished, "conflict branch must republish")
	assert.Equal(t, "PMHNP - Outpatient Clinic", updated.Title)
	require.NotNil(t, updated.CompanyID)
	assert.Equal(t, company.ID, *updated.CompanyID)
	require.NotNil(t, updated.OriginalPostedAt)
	assert.True(t, updated.OriginalPostedAt.Equal(*params.OriginalPostedAt))
	assert.True(t, updated.ExpiresAt.Equal(update.ExpiresAt))
}

func TestJobRepoGetByExternalKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	ctx := context.Background()
	repo := NewJobRepo(db)

	_, _, err := repo.Upsert(ctx, testUpsertParams("adzuna", "az-1", "PMHNP"))
	require.NoError(t, err)

	job, err := repo.GetByExternalKey(ctx, "adzuna", "az-1")
	require.NoError(t, err)
	assert.Equal(t, "az-1", job.ExternalID)

	_, err = repo.GetByExternalKey(ctx, "adzuna", "az-missing")
	assert.True(t, IsNotFound(err))

	_, err = repo.GetByID(ctx, "11111111-1111-1111-1111-111111111111")
	assert.True(t, IsNotFound(err))
}

func TestJobRepoFindByFingerprintExcludesOwnProviderAndUnpublished(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	ctx := context.Background()
	repo := NewJobRepo(db)

	params := testUpsertParams("adzuna", "az-1", "PMHNP")
	created, _, err := repo.Upsert(ctx, params)
	require.NoError(t, err)

	// The provider that owns the row never fuzzy-matches against it.
	match, err := repo.FindByFingerprint(ctx, params.Fingerprint, "adzuna")
	require.NoError(t, err)
	assert.Nil(t, match)

	match, err = repo.FindByFingerprint(ctx, params.Fingerprint, "jooble")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, created.ID, match.ID)

	// Unpublished rows drop out of fuzzy matching.
	_, err = db.ExecContext(ctx, `UPDATE jobs SET is_published = FALSE WHERE id = $1`, created.ID)
	require.NoError(t, err)

	match, err = repo.FindByFingerprint(ctx, params.Fingerprint, "jooble")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestJobRepoExpireStale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	repo := NewJobRepoWithTimeProvider(db, NewFixedTimeProvider(now))

	stale := testUpsertParams("adzuna", "az-stale", "PMHNP")
	stale.ExpiresAt = now.Add(-time.Hour)
	staleJob, _, err := repo.Upsert(ctx, stale)
	require.NoError(t, err)

	fresh := testUpsertParams("adzuna", "az-fresh", "PMHNP - Telehealth")
	fresh.ExpiresAt = now.Add(time.Hour)
	_, _, err = repo.Upsert(ctx, fresh)
	require.NoError(t, err)

	expired, err := repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	swept, err := repo.GetByID(ctx, staleJob.ID)
	require.NoError(t, err)
	assert.False(t, swept.IsPublished)
	// The sweep cutoff is also the stamped updated_at.
	assert.True(t, swept.UpdatedAt.Equal(now), "updated_at: %v", swept.UpdatedAt)

	count, err := repo.CountPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A second sweep at the same instant finds nothing left to flip.
	expired, err = repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestJobRepoUpsertValidation(t *testing.T) {
	repo := NewJobRepo(nil)
	ctx := context.Background()

	_, _, err := repo.Upsert(ctx, nil)
	assert.Error(t, err)

	bad := testUpsertParams("adzuna", "az-1", "PMHNP")
	bad.QualityScore = 101
	_, _, err = repo.Upsert(ctx, bad)
	assert.Error(t, err)
}
