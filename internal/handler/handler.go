// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// endpoints is the route listing served at GET /.
var endpoints = map[string]string{
	"register":          "POST /register",
	"login":             "POST /login",
	"log_mood":          "POST /mood",
	"log_activity":      "POST /activity",
	"log_journal":       "POST /journal",
	"mood_history":      "POST /mood_history",
	"activity_history":  "POST /activity_history",
	"journal_history":   "POST /journal_history",
	"get_insights":      "GET /insights/{username}",
	"mood_chart":        "GET /mood_chart/{username}",
	"icd_categories":    "GET /icd/categories",
	"icd_search":        "POST /icd/search",
	"icd_link":          "POST /icd/links",
	"icd_links_history": "POST /icd/links_history",
}

// Handler serves the unauthenticated informational routes.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Info describes the service and its routes.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Mental Health Tracker API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are gone; nothing useful left to send.
		_ = err
	}
}
