package httpx

import (
	"net/http"

	"github.com/practicejobs/ingest/internal/service"
)

const defaultDuplicatesLimit = 100

// AnalyticsHandlers provides HTTP handlers for read-only catalog aggregates.
type AnalyticsHandlers struct {
	Svc *service.AnalyticsService
}

// SourceStats returns per-provider catalog aggregates.
func (h *AnalyticsHandlers) SourceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.SourceStats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Trend returns daily job-creation volume over the configured window.
func (h *AnalyticsHandlers) Trend(w http.ResponseWriter, r *http.Request) {
	points, err := h.Svc.Trend(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

// RecentDuplicates returns the newest entries from the duplicate audit log.
// Supports a ?limit= query parameter.
func (h *AnalyticsHandlers) RecentDuplicates(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultDuplicatesLimit)

	records, err := h.Svc.RecentDuplicates(r.Context(), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, records)
}
