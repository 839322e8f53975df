package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicejobs/ingest/config"
)

func newTestJooble(t *testing.T, handler http.HandlerFunc) *Jooble {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	shared := testSourcesConfig()
	j := NewJooble(config.JoobleConfig{APIKey: "secret-key", MaxPages: 3},
		shared, srv.Client(), NewKeywordFilter(shared.Keywords), slog.Default())
	j.baseURL = srv.URL
	return j
}

func TestJoobleFetch(t *testing.T) {
	var gotPath string
	var gotReq joobleRequest
	calls := 0

	j := newTestJooble(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		if gotReq.Page > 1 {
			_ = json.NewEncoder(w).Encode(joobleResponse{})
			return
		}
		_ = json.NewEncoder(w).Encode(joobleResponse{
			TotalCount: 1,
			Jobs: []joobleItem{
				{
					ID:       json.Number("987654"),
					Title:    "PMHNP - Remote",
					Company:  "Televista Health",
					Location: "Remote",
					Snippet:  "Telepsychiatry role.",
					Salary:   "$70 - $80 per hour",
					Link:     "https://jooble.org/away/987654",
				},
				{
					ID:    json.Number("111"),
					Title: "Dental Hygienist",
					Link:  "https://jooble.org/away/111",
				},
			},
		})
	})

	jobs, err := j.Fetch(context.Background())
	require.NoError(t, err)

	// API key travels in the URL path; page 2 came back empty and ended pagination.
	assert.Equal(t, "/secret-key", gotPath)
	assert.Equal(t, 2, calls)

	require.Len(t, jobs, 1)
	assert.Equal(t, "987654", jobs[0].ExternalID)
	assert.Equal(t, "jooble", jobs[0].Provider)
	assert.Equal(t, "$70 - $80 per hour", jobs[0].SalaryText)
	assert.Equal(t, "Televista Health", jobs[0].Employer)
}

func TestJoobleFetchSurfacesProviderErrors(t *testing.T) {
	j := newTestJooble(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	})

	_, err := j.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
