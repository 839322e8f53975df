package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/practicejobs/ingest/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Ingest    *service.IngestService
	Companies *service.CompanyService
	Analytics *service.AnalyticsService
	// IngestToken guards mutating routes; empty disables the check.
	IngestToken string
	Logger      *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ingestHandlers := &IngestHandlers{Svc: services.Ingest, Analytics: services.Analytics, Logger: logger}
	analyticsHandlers := &AnalyticsHandlers{Svc: services.Analytics}
	companyHandlers := &CompanyHandlers{Svc: services.Companies}

	protected := RequireToken(services.IngestToken)
	registerIngestRoutes(mux, ingestHandlers, protected)
	registerAnalyticsRoutes(mux, analyticsHandlers, protected)
	registerCompanyRoutes(mux, companyHandlers, protected)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func registerIngestRoutes(mux *http.ServeMux, h *IngestHandlers, protected func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/ingest/runs", protected(http.HandlerFunc(h.StartRun)))
	mux.HandleFunc("GET /api/v1/ingest/status", h.Status)
}

func registerAnalyticsRoutes(mux *http.ServeMux, h *AnalyticsHandlers, protected func(http.Handler) http.Handler) {
	mux.Handle("GET /api/v1/analytics/sources", protected(http.HandlerFunc(h.SourceStats)))
	mux.Handle("GET /api/v1/analytics/trend", protected(http.HandlerFunc(h.Trend)))
	mux.Handle("GET /api/v1/analytics/duplicates", protected(http.HandlerFunc(h.RecentDuplicates)))
}

func registerCompanyRoutes(mux *http.ServeMux, h *CompanyHandlers, protected func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/companies/{id}", h.GetByID)
	mux.Handle("POST /api/v1/companies/merge", protected(http.HandlerFunc(h.Merge)))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// parseIntQuery returns the named query parameter as an int, or def when
// missing or malformed.
func parseIntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
