package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mindlog/mindlog/internal/icd"
	"github.com/mindlog/mindlog/internal/middleware"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository"
	"github.com/mindlog/mindlog/internal/service"
)

type errorBody struct {
	Status string      `json:"status"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{
		Status: "error",
		Error:  errorDetail{Code: code, Message: message},
	})
}

// handleServiceError maps domain errors to HTTP responses. Anything it does
// not recognise is logged and reported as a bare 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrScoreOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "SCORE_OUT_OF_RANGE", err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, model.ErrEmptyActivity),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrEmptyEntry),
		errors.Is(err, model.ErrEmptyEntityID):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, icd.ErrQueryTooShort):
		writeError(w, http.StatusBadRequest, "QUERY_TOO_SHORT", err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already in use")
	case errors.Is(err, service.ErrNoEntries):
		writeError(w, http.StatusNotFound, "NO_ENTRIES", "No mood entries found")
	case errors.Is(err, service.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_DATA", "Need at least 2 entries to generate chart")
	case errors.Is(err, repository.ErrUserNotFound):
		// The account disappeared after authentication.
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
	case errors.Is(err, icd.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_NOT_CONFIGURED", "Classification lookups are not configured")
	case errors.Is(err, icd.ErrUpstream):
		status, code := upstreamStatus(err)
		logger.Warn("upstream_request_failed",
			"kind", icd.KindName(err),
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, status, code, icd.PublicMessage(err))
	default:
		logger.Error("internal_error",
			"error", err.Error(),
			"endpoint", r.Method+" "+r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func upstreamStatus(err error) (int, string) {
	switch {
	case errors.Is(err, icd.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case errors.Is(err, icd.ErrUpstreamAuth):
		return http.StatusBadGateway, "UPSTREAM_AUTH_FAILED"
	case errors.Is(err, icd.ErrUpstreamFormat):
		return http.StatusBadGateway, "UPSTREAM_BAD_RESPONSE"
	case errors.Is(err, icd.ErrUpstreamSearch):
		return http.StatusServiceUnavailable, "UPSTREAM_SEARCH_FAILED"
	default:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	}
}
