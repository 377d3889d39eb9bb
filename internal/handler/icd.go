package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/handler/dto"
	"github.com/mindlog/mindlog/internal/middleware"
	"github.com/mindlog/mindlog/internal/model"
)

// ConditionLookup searches the classification provider.
type ConditionLookup interface {
	Search(ctx context.Context, query string) ([]model.ConditionMatch, error)
	Categories(ctx context.Context) (json.RawMessage, error)
}

// ConditionHandler serves the /icd routes.
type ConditionHandler struct {
	lookup ConditionLookup
	links  RecordService[*model.ConditionLink]
	logger *slog.Logger
}

// NewConditionHandler creates a new ConditionHandler.
func NewConditionHandler(lookup ConditionLookup, links RecordService[*model.ConditionLink], logger *slog.Logger) *ConditionHandler {
	return &ConditionHandler{lookup: lookup, links: links, logger: logger}
}

// Categories handles GET /icd/categories. The provider payload is passed
// through untouched.
func (h *ConditionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	payload, err := h.lookup.Categories(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Search handles POST /icd/search.
func (h *ConditionHandler) Search(w http.ResponseWriter, r *http.Request) {
	form, err := dto.SearchFormFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	results, err := h.lookup.Search(r.Context(), form.Query)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if results == nil {
		results = []model.ConditionMatch{}
	}

	h.logger.Info("icd_search",
		"results", len(results),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.SearchResponse{
		Status:  dto.StatusSuccess,
		Count:   len(results),
		Results: results,
	})
}

// Link handles POST /icd/links.
func (h *ConditionHandler) Link(w http.ResponseWriter, r *http.Request) {
	link, err := dto.ConditionLinkFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	link, err = h.links.Append(r.Context(), auth.MustPrincipal(r.Context()).UserID, link)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreatedResponse{Status: dto.StatusSuccess, ID: link.ID})
}

// LinkHistory handles POST /icd/links_history.
func (h *ConditionHandler) LinkHistory(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.History(r.Context(), auth.MustPrincipal(r.Context()).UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToConditionLinkHistory(links))
}
