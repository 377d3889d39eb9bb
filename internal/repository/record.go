package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/mindlog/mindlog/internal/model"
)

// Table describes how one record kind maps onto its table. Columns must start
// with id, user_id and end with created_at; Values and Scan follow the same
// order.
type Table[T model.Record] struct {
	Name    string
	Columns []string
	Values  func(T) []any
	Scan    func(pgx.Rows) (T, error)
}

// RecordStore persists one kind of append-only, owner-scoped record.
type RecordStore[T model.Record] struct {
	repo  *Repository
	table Table[T]

	insertSQL string
	recentSQL string
	allSQL    string
}

// NewRecordStore builds a store for table.
func NewRecordStore[T model.Record](repo *Repository, table Table[T]) *RecordStore[T] {
	cols := strings.Join(table.Columns, ", ")
	placeholders := make([]string, len(table.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return &RecordStore[T]{
		repo:  repo,
		table: table,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table.Name, cols, strings.Join(placeholders, ", ")),
		recentSQL: fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
			cols, table.Name),
		allSQL: fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at ASC, id ASC",
			cols, table.Name),
	}
}

// Append inserts a stamped record.
func (s *RecordStore[T]) Append(ctx context.Context, rec T) error {
	if _, err := s.repo.pool.Exec(ctx, s.insertSQL, s.table.Values(rec)...); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table.Name, err)
	}
	return nil
}

// ListRecent returns at most limit records of userID, newest first.
func (s *RecordStore[T]) ListRecent(ctx context.Context, userID string, limit int) ([]T, error) {
	return s.query(ctx, s.recentSQL, userID, limit)
}

// ListAll returns every record of userID, oldest first.
func (s *RecordStore[T]) ListAll(ctx context.Context, userID string) ([]T, error) {
	return s.query(ctx, s.allSQL, userID)
}

func (s *RecordStore[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table.Name, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		rec, err := s.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table.Name, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.table.Name, err)
	}

	return records, nil
}

// MoodTable maps mood entries.
var MoodTable = Table[*model.MoodEntry]{
	Name:    "mood_entries",
	Columns: []string{"id", "user_id", "score", "notes", "created_at"},
	Values: func(m *model.MoodEntry) []any {
		return []any{m.ID, m.UserID, m.Score, m.Notes, m.CreatedAt}
	},
	Scan: func(rows pgx.Rows) (*model.MoodEntry, error) {
		var m model.MoodEntry
		err := rows.Scan(&m.ID, &m.UserID, &m.Score, &m.Notes, &m.CreatedAt)
		return &m, err
	},
}

// ActivityTable maps activity entries.
var ActivityTable = Table[*model.ActivityEntry]{
	Name:    "activity_entries",
	Columns: []string{"id", "user_id", "activity", "duration", "created_at"},
	Values: func(a *model.ActivityEntry) []any {
		return []any{a.ID, a.UserID, a.Activity, a.Duration, a.CreatedAt}
	},
	Scan: func(rows pgx.Rows) (*model.ActivityEntry, error) {
		var a model.ActivityEntry
		err := rows.Scan(&a.ID, &a.UserID, &a.Activity, &a.Duration, &a.CreatedAt)
		return &a, err
	},
}

// JournalTable maps journal entries. Tags live in a text[] column.
var JournalTable = Table[*model.JournalEntry]{
	Name:    "journal_entries",
	Columns: []string{"id", "user_id", "entry", "tags", "created_at"},
	Values: func(j *model.JournalEntry) []any {
		return []any{j.ID, j.UserID, j.Entry, pq.Array(j.Tags), j.CreatedAt}
	},
	Scan: func(rows pgx.Rows) (*model.JournalEntry, error) {
		var j model.JournalEntry
		err := rows.Scan(&j.ID, &j.UserID, &j.Entry, pq.Array(&j.Tags), &j.CreatedAt)
		return &j, err
	},
}

// ConditionLinkTable maps a user's saved classification entities.
var ConditionLinkTable = Table[*model.ConditionLink]{
	Name:    "condition_links",
	Columns: []string{"id", "user_id", "entity_id", "entity_title", "notes", "created_at"},
	Values: func(c *model.ConditionLink) []any {
		return []any{c.ID, c.UserID, c.EntityID, c.EntityTitle, c.Notes, c.CreatedAt}
	},
	Scan: func(rows pgx.Rows) (*model.ConditionLink, error) {
		var c model.ConditionLink
		err := rows.Scan(&c.ID, &c.UserID, &c.EntityID, &c.EntityTitle, &c.Notes, &c.CreatedAt)
		return &c, err
	},
}

// Moods returns the mood entry store.
func (r *Repository) Moods() *RecordStore[*model.MoodEntry] {
	return NewRecordStore(r, MoodTable)
}

// Activities returns the activity entry store.
func (r *Repository) Activities() *RecordStore[*model.ActivityEntry] {
	return NewRecordStore(r, ActivityTable)
}

// Journals returns the journal entry store.
func (r *Repository) Journals() *RecordStore[*model.JournalEntry] {
	return NewRecordStore(r, JournalTable)
}

// ConditionLinks returns the condition link store.
func (r *Repository) ConditionLinks() *RecordStore[*model.ConditionLink] {
	return NewRecordStore(r, ConditionLinkTable)
}
