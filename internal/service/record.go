package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/model"
)

// RecordRepository is the persistence contract for one record kind.
type RecordRepository[T model.Record] interface {
	Append(ctx context.Context, rec T) error
	ListRecent(ctx context.Context, userID string, limit int) ([]T, error)
	ListAll(ctx context.Context, userID string) ([]T, error)
}

// RecordService appends and lists one kind of owned record.
type RecordService[T model.Record] struct {
	repo    RecordRepository[T]
	limit   int
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecordService creates a RecordService whose History returns at most
// limit records.
func NewRecordService[T model.Record](repo RecordRepository[T], limit int, recorder metrics.Recorder, logger *slog.Logger) *RecordService[T] {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService[T]{
		repo:    repo,
		limit:   limit,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Append validates rec, stamps it for userID and stores it. Storage is not
// touched when validation fails.
func (s *RecordService[T]) Append(ctx context.Context, userID string, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}

	rec.Stamp(ulid.Make().String(), userID, s.now().UTC())
	if err := s.repo.Append(ctx, rec); err != nil {
		return zero, err
	}

	s.metrics.IncRecordCreated(string(rec.Kind()))
	s.logger.Info("record_created", "kind", rec.Kind(), "user_id", userID)
	return rec, nil
}

// History returns the newest records of userID, newest first.
func (s *RecordService[T]) History(ctx context.Context, userID string) ([]T, error) {
	return s.repo.ListRecent(ctx, userID, s.limit)
}

// All returns every record of userID, oldest first.
func (s *RecordService[T]) All(ctx context.Context, userID string) ([]T, error) {
	return s.repo.ListAll(ctx, userID)
}
