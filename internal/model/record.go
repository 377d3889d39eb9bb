package model

import (
	"errors"
	"strings"
	"time"
)

// RecordKind identifies one kind of owned, timestamped record.
type RecordKind string

const (
	KindMood          RecordKind = "mood"
	KindActivity      RecordKind = "activity"
	KindJournal       RecordKind = "journal"
	KindConditionLink RecordKind = "condition_link"
)

// Mood score bounds (inclusive).
const (
	MinMoodScore = 1
	MaxMoodScore = 10
)

// Validation errors for record payloads.
var (
	ErrScoreOutOfRange = errors.New("mood score must be between 1 and 10")
	ErrEmptyActivity   = errors.New("activity is required")
	ErrInvalidDuration = errors.New("duration must be between 0 and 10080 minutes")
	ErrEmptyEntry      = errors.New("journal entry is required")
	ErrEmptyEntityID   = errors.New("entity id is required")
)

// Record is implemented by every entry a user owns. Records are append-only:
// once stamped and stored they are never mutated.
type Record interface {
	Kind() RecordKind
	Owner() string
	Timestamp() time.Time
	Validate() error
	Stamp(id, userID string, at time.Time)
}

// MoodEntry is a single mood score with optional notes.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *MoodEntry) Kind() RecordKind     { return KindMood }
func (m *MoodEntry) Owner() string        { return m.UserID }
func (m *MoodEntry) Timestamp() time.Time { return m.CreatedAt }

// Validate checks the score range.
func (m *MoodEntry) Validate() error {
	if m.Score < MinMoodScore || m.Score > MaxMoodScore {
		return ErrScoreOutOfRange
	}
	return nil
}

// Stamp assigns the server-side identity fields.
func (m *MoodEntry) Stamp(id, userID string, at time.Time) {
	m.ID, m.UserID, m.CreatedAt = id, userID, at
}

// MaxDurationMinutes caps one activity at a week.
const MaxDurationMinutes = 7 * 24 * 60

// ActivityEntry records an activity and its duration in minutes.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Activity  string    `json:"activity"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *ActivityEntry) Kind() RecordKind     { return KindActivity }
func (a *ActivityEntry) Owner() string        { return a.UserID }
func (a *ActivityEntry) Timestamp() time.Time { return a.CreatedAt }

// Validate requires a label and a duration within [0, MaxDurationMinutes].
func (a *ActivityEntry) Validate() error {
	if strings.TrimSpace(a.Activity) == "" {
		return ErrEmptyActivity
	}
	if a.Duration < 0 || a.Duration > MaxDurationMinutes {
		return ErrInvalidDuration
	}
	return nil
}

// Stamp assigns the server-side identity fields.
func (a *ActivityEntry) Stamp(id, userID string, at time.Time) {
	a.ID, a.UserID, a.CreatedAt = id, userID, at
}

// JournalEntry is free text with optional tags.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Entry     string    `json:"entry"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

func (j *JournalEntry) Kind() RecordKind     { return KindJournal }
func (j *JournalEntry) Owner() string        { return j.UserID }
func (j *JournalEntry) Timestamp() time.Time { return j.CreatedAt }

// Validate requires non-blank text.
func (j *JournalEntry) Validate() error {
	if strings.TrimSpace(j.Entry) == "" {
		return ErrEmptyEntry
	}
	return nil
}

// Stamp assigns the server-side identity fields.
func (j *JournalEntry) Stamp(id, userID string, at time.Time) {
	j.ID, j.UserID, j.CreatedAt = id, userID, at
}

// ConditionLink associates a classification entity with a user.
type ConditionLink struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EntityID    string    `json:"entity_id"`
	EntityTitle string    `json:"entity_title"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *ConditionLink) Kind() RecordKind     { return KindConditionLink }
func (c *ConditionLink) Owner() string        { return c.UserID }
func (c *ConditionLink) Timestamp() time.Time { return c.CreatedAt }

// Validate requires the entity id.
func (c *ConditionLink) Validate() error {
	if strings.TrimSpace(c.EntityID) == "" {
		return ErrEmptyEntityID
	}
	return nil
}

// Stamp assigns the server-side identity fields.
func (c *ConditionLink) Stamp(id, userID string, at time.Time) {
	c.ID, c.UserID, c.CreatedAt = id, userID, at
}
