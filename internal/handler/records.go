package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/handler/dto"
	"github.com/mindlog/mindlog/internal/model"
)

// RecordService appends and lists one record kind for a user.
type RecordService[T model.Record] interface {
	Append(ctx context.Context, userID string, rec T) (T, error)
	History(ctx context.Context, userID string) ([]T, error)
}

// RecordHandler handles the mood, activity and journal routes. Every call
// is scoped to the authenticated principal.
type RecordHandler struct {
	moods      RecordService[*model.MoodEntry]
	activities RecordService[*model.ActivityEntry]
	journals   RecordService[*model.JournalEntry]
	logger     *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(
	moods RecordService[*model.MoodEntry],
	activities RecordService[*model.ActivityEntry],
	journals RecordService[*model.JournalEntry],
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		moods:      moods,
		activities: activities,
		journals:   journals,
		logger:     logger,
	}
}

// LogMood handles POST /mood.
func (h *RecordHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	entry, err := dto.MoodEntryFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	entry, err = h.moods.Append(r.Context(), auth.MustPrincipal(r.Context()).UserID, entry)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MoodLoggedResponse{
		Status:    dto.StatusSuccess,
		Message:   "Mood logged successfully",
		Score:     entry.Score,
		Timestamp: entry.CreatedAt,
	})
}

// LogActivity handles POST /activity.
func (h *RecordHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	entry, err := dto.ActivityEntryFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if _, err := h.activities.Append(r.Context(), auth.MustPrincipal(r.Context()).UserID, entry); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: dto.StatusSuccess})
}

// LogJournal handles POST /journal.
func (h *RecordHandler) LogJournal(w http.ResponseWriter, r *http.Request) {
	entry, err := dto.JournalEntryFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if _, err := h.journals.Append(r.Context(), auth.MustPrincipal(r.Context()).UserID, entry); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: dto.StatusSuccess})
}

// MoodHistory handles POST /mood_history.
func (h *RecordHandler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.moods.History(r.Context(), auth.MustPrincipal(r.Context()).UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToMoodHistory(entries))
}

// ActivityHistory handles POST /activity_history.
func (h *RecordHandler) ActivityHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activities.History(r.Context(), auth.MustPrincipal(r.Context()).UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToActivityHistory(entries))
}

// JournalHistory handles POST /journal_history.
func (h *RecordHandler) JournalHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.journals.History(r.Context(), auth.MustPrincipal(r.Context()).UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToJournalHistory(entries))
}
