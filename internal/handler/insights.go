package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/handler/dto"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/service"
)

// InsightProvider computes mood aggregates.
type InsightProvider interface {
	Insights(ctx context.Context, p *model.Principal) (*service.Insights, error)
	MoodChart(ctx context.Context, p *model.Principal) (string, error)
}

// InsightHandler serves the aggregate views. The routes are mounted behind
// RequireSelf, so the path username is the principal's.
type InsightHandler struct {
	insights InsightProvider
	logger   *slog.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insights InsightProvider, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, logger: logger}
}

// Insights handles GET /insights/{username}.
func (h *InsightHandler) Insights(w http.ResponseWriter, r *http.Request) {
	result, err := h.insights.Insights(r.Context(), auth.MustPrincipal(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MoodChart handles GET /mood_chart/{username}.
func (h *InsightHandler) MoodChart(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipal(r.Context())

	chart, err := h.insights.MoodChart(r.Context(), p)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ChartResponse{Chart: chart, Username: p.Username})
}
