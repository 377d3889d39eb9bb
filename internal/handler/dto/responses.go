package dto

import (
	"time"

	"github.com/mindlog/mindlog/internal/model"
)

// StatusSuccess is the status field of every successful write.
const StatusSuccess = "success"

// StatusResponse is the bare acknowledgement of a write.
type StatusResponse struct {
	Status string `json:"status"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Status   string `json:"status"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// MoodLoggedResponse is returned by POST /mood.
type MoodLoggedResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// CreatedResponse acknowledges a write that produced an addressable record.
type CreatedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// SearchResponse is returned by POST /icd/search.
type SearchResponse struct {
	Status  string                 `json:"status"`
	Count   int                    `json:"count"`
	Results []model.ConditionMatch `json:"results"`
}

// ChartResponse is returned by GET /mood_chart/{username}.
type ChartResponse struct {
	Chart    string `json:"chart"`
	Username string `json:"username"`
}

// MoodHistoryItem is one row of /mood_history.
type MoodHistoryItem struct {
	Score     int       `json:"score"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityHistoryItem is one row of /activity_history.
type ActivityHistoryItem struct {
	Activity  string    `json:"activity"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalHistoryItem is one row of /journal_history.
type JournalHistoryItem struct {
	Entry     string    `json:"entry"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// ConditionLinkItem is one row of /icd/links_history.
type ConditionLinkItem struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entity_id"`
	EntityTitle string    `json:"entity_title"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToMoodHistory(entries []*model.MoodEntry) []MoodHistoryItem {
	items := make([]MoodHistoryItem, len(entries))
	for i, e := range entries {
		items[i] = MoodHistoryItem{Score: e.Score, Notes: e.Notes, CreatedAt: e.CreatedAt}
	}
	return items
}

func ToActivityHistory(entries []*model.ActivityEntry) []ActivityHistoryItem {
	items := make([]ActivityHistoryItem, len(entries))
	for i, e := range entries {
		items[i] = ActivityHistoryItem{Activity: e.Activity, Duration: e.Duration, CreatedAt: e.CreatedAt}
	}
	return items
}

func ToJournalHistory(entries []*model.JournalEntry) []JournalHistoryItem {
	items := make([]JournalHistoryItem, len(entries))
	for i, e := range entries {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = JournalHistoryItem{Entry: e.Entry, Tags: tags, CreatedAt: e.CreatedAt}
	}
	return items
}

func ToConditionLinkHistory(links []*model.ConditionLink) []ConditionLinkItem {
	items := make([]ConditionLinkItem, len(links))
	for i, l := range links {
		items[i] = ConditionLinkItem{
			ID:          l.ID,
			EntityID:    l.EntityID,
			EntityTitle: l.EntityTitle,
			Notes:       l.Notes,
			CreatedAt:   l.CreatedAt,
		}
	}
	return items
}
