package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicejobs/ingest/internal/domain/model"
)

func validRaw() model.RawJob {
	return model.RawJob{
		ExternalID:  "abc-123",
		Provider:    "adzuna",
		Title:       "Psychiatric Nurse Practitioner",
		Employer:    "Lakeside Behavioral Health",
		Location:    "Austin, TX",
		Description: "Outpatient psychiatric NP role. Full benefits.",
		SalaryText:  "$65-$75/hr",
		ApplyURL:    "https://example.com/jobs/abc-123",
	}
}

func TestCandidate(t *testing.T) {
	c, err := Candidate(validRaw())
	require.NoError(t, err)

	require.True(t, c.Salary.Present())
	assert.Equal(t, 65.0, *c.Salary.Min)
	assert.Equal(t, 75.0, *c.Salary.Max)
	assert.Equal(t, model.SalaryPeriodHourly, c.Salary.Period)
	assert.False(t, c.Salary.Estimated)

	assert.Equal(t, model.Location{City: "Austin", State: "TX"}, c.Location)
	assert.Equal(t, "Outpatient psychiatric NP role. Full benefits.", c.Summary)
}

func TestCandidateSalaryFallsBackToDescription(t *testing.T) {
	raw := validRaw()
	raw.SalaryText = ""
	raw.Description = "Compensation up to $160,000 per year for the right candidate."

	c, err := Candidate(raw)
	require.NoError(t, err)
	require.True(t, c.Salary.Present())
	assert.Equal(t, 160_000.0, *c.Salary.Min)
	assert.Equal(t, model.SalaryPeriodAnnual, c.Salary.Period)
}

func TestCandidateRejectsIncompletePostings(t *testing.T) {
	for _, mutate := range []func(*model.RawJob){
		func(r *model.RawJob) { r.Title = "  " },
		func(r *model.RawJob) { r.Employer = "" },
		func(r *model.RawJob) { r.ApplyURL = "" },
		func(r *model.RawJob) { r.ExternalID = "" },
		func(r *model.RawJob) { r.Title = strings.Repeat("x", 501) },
	} {
		raw := validRaw()
		mutate(&raw)
		_, err := Candidate(raw)
		assert.Error(t, err)
	}
}

func TestCandidateCleansMarkupFromTitle(t *testing.T) {
	raw := validRaw()
	raw.Title = "<b>PMHNP</b> &nbsp; Telehealth\n\nRole"

	c, err := Candidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "PMHNP &nbsp; Telehealth Role", c.Raw.Title)
}

func TestSummarize(t *testing.T) {
	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "A short description.", Summarize("A short description."))
	})

	t.Run("markup is stripped", func(t *testing.T) {
		assert.Equal(t, "First line Second line",
			Summarize("<p>First   line</p><p>Second line</p>"))
	})

	t.Run("long text is cut at a word boundary", func(t *testing.T) {
		long := strings.Repeat("evaluation and medication management ", 20)
		got := Summarize(long)
		assert.LessOrEqual(t, len(got), 281+len("…"))
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.NotContains(t, got, "  ")
	})
}
