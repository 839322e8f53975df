package httpx

import (
	"log/slog"
	"net/http"

	"github.com/practicejobs/ingest/internal/service"
)

// IngestHandlers provides HTTP handlers for ingestion run operations.
type IngestHandlers struct {
	Svc       *service.IngestService
	Analytics *service.AnalyticsService
	Logger    *slog.Logger
}

// StartRun executes a full ingestion run and returns its summary. The run is
// synchronous; concurrent requests are rejected with 409 while one is active.
// An optional JSON body {"sources": [...]} restricts the run to a subset.
func (h *IngestHandlers) StartRun(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sources []string `json:"sources"`
	}
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &body) {
			return
		}
	}

	summary, err := h.Svc.Run(r.Context(), body.Sources...)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if h.Analytics != nil {
		h.Analytics.InvalidateCache(r.Context())
	}

	WriteJSON(w, http.StatusOK, summary)
}

// Status reports the current run state and the last completed run summary.
func (h *IngestHandlers) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.Status())
}
