package httpx

import (
	"errors"
	"net/http"

	"github.com/practicejobs/ingest/internal/domain/model"
	"github.com/practicejobs/ingest/internal/service"
)

// CompanyHandlers provides HTTP handlers for company administration.
type CompanyHandlers struct {
	Svc *service.CompanyService
}

// GetByID returns a single company by its identifier.
func (h *CompanyHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("company id is required")},
		)
		return
	}

	company, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, company)
}

// Merge folds one company record into another, repointing jobs and aliases.
func (h *CompanyHandlers) Merge(w http.ResponseWriter, r *http.Request) {
	var req model.MergeCompaniesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	merged, err := h.Svc.Merge(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, merged)
}
