package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicejobs/ingest/config"
)

func newTestLever(t *testing.T, slugs []string, handler http.HandlerFunc) *Lever {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	shared := testSourcesConfig()
	l := NewLever(config.LeverConfig{Slugs: slugs},
		shared, srv.Client(), NewKeywordFilter(shared.Keywords), slog.Default())
	l.baseURL = srv.URL
	return l
}

func TestLeverFetch(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	l := newTestLever(t, []string{"calmpoint"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calmpoint", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("mode"))

		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":               "uuid-1",
				"text":             "PMHNP - Hybrid",
				"hostedUrl":        "https://jobs.lever.co/calmpoint/uuid-1",
				"applyUrl":         "https://jobs.lever.co/calmpoint/uuid-1/apply",
				"createdAt":        created.UnixMilli(),
				"descriptionPlain": "Hybrid psychiatric NP position.",
				"categories":       map[string]any{"location": "Seattle, WA"},
			},
		})
	})

	jobs, err := l.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "calmpoint-uuid-1", job.ExternalID)
	assert.Equal(t, "lever", job.Provider)
	assert.Equal(t, "calmpoint", job.Employer)
	assert.Equal(t, "https://jobs.lever.co/calmpoint/uuid-1/apply", job.ApplyURL)
	require.NotNil(t, job.PostedAt)
	assert.True(t, job.PostedAt.Equal(created))
}

func TestLeverFallsBackToHostedURL(t *testing.T) {
	l := newTestLever(t, []string{"calmpoint"}, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":        "uuid-2",
			"text":      "Psych NP",
			"hostedUrl": "https://jobs.lever.co/calmpoint/uuid-2",
		}})
	})

	jobs, err := l.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://jobs.lever.co/calmpoint/uuid-2", jobs[0].ApplyURL)
}

func TestLeverFailsWhenAllFeedsFail(t *testing.T) {
	l := newTestLever(t, []string{"x"}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := l.Fetch(context.Background())
	assert.Error(t, err)
}
