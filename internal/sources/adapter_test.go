package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/practicejobs/ingest/internal/domain/model"
)

func TestKeywordFilter(t *testing.T) {
	filter := NewKeywordFilter([]string{"pmhnp", "psychiatric nurse practitioner"})

	assert.True(t, filter.Match("PMHNP - Outpatient", ""))
	assert.True(t, filter.Match("Nurse Practitioner", "seeking a psychiatric nurse practitioner for..."))
	assert.False(t, filter.Match("Registered Nurse - ICU", "critical care position"))

	jobs := []model.RawJob{
		{Title: "PMHNP - Telehealth"},
		{Title: "Family Nurse Practitioner"},
		{Title: "Psych NP", Description: "psychiatric nurse practitioner opening"},
	}
	kept, dropped := filter.Apply(jobs)
	assert.Len(t, kept, 2)
	assert.Equal(t, 1, dropped)
}

func TestKeywordFilterEmptyListMatchesEverything(t *testing.T) {
	filter := NewKeywordFilter(nil)
	assert.True(t, filter.Match("anything", "at all"))
}

func TestExternalIDFromURL(t *testing.T) {
	base := ExternalIDFromURL("https://example.com/jobs/123")

	// Query strings and fragments are tracker noise; they never change identity.
	assert.Equal(t, base, ExternalIDFromURL("https://example.com/jobs/123?utm_source=feed"))
	assert.Equal(t, base, ExternalIDFromURL("https://example.com/jobs/123#apply"))
	assert.Equal(t, base, ExternalIDFromURL("https://EXAMPLE.com/jobs/123"))

	assert.NotEqual(t, base, ExternalIDFromURL("https://example.com/jobs/124"))
	assert.Len(t, base, 32)
}
