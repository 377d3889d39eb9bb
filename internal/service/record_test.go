package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository/memory"
)

func TestRecordService_MoodRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewRecords[*model.MoodEntry]()
	rec := metrics.NewInMemory()
	svc := NewRecordService[*model.MoodEntry](store, 10, rec, quietLogger)

	notes := "ok"
	saved, err := svc.Append(ctx, "u1", &model.MoodEntry{Score: 7, Notes: &notes})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, time.UTC, saved.CreatedAt.Location())

	history, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, 7, history[0].Score)
	assert.Equal(t, "ok", *history[0].Notes)
	assert.Equal(t, uint64(1), rec.Snapshot().RecordsCreated["mood"])
}

func TestRecordService_ValidationBeforeStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	moods := memory.NewRecords[*model.MoodEntry]()
	moodSvc := NewRecordService[*model.MoodEntry](moods, 10, nil, quietLogger)
	for _, score := range []int{0, 11, -3} {
		_, err := moodSvc.Append(ctx, "u1", &model.MoodEntry{Score: score})
		assert.ErrorIs(t, err, model.ErrScoreOutOfRange, "score %d", score)
	}
	assert.Zero(t, moods.Appends())

	activities := memory.NewRecords[*model.ActivityEntry]()
	actSvc := NewRecordService[*model.ActivityEntry](activities, 20, nil, quietLogger)
	_, err := actSvc.Append(ctx, "u1", &model.ActivityEntry{Activity: "", Duration: 10})
	assert.ErrorIs(t, err, model.ErrEmptyActivity)
	_, err = actSvc.Append(ctx, "u1", &model.ActivityEntry{Activity: "walk", Duration: -1})
	assert.ErrorIs(t, err, model.ErrInvalidDuration)
	assert.Zero(t, activities.Appends())
}

func TestRecordService_HistoryIsOwnerScopedAndBounded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewRecords[*model.JournalEntry]()
	svc := NewRecordService[*model.JournalEntry](store, 3, nil, quietLogger)

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for i := 0; i < 5; i++ {
		_, err := svc.Append(ctx, "alice", &model.JournalEntry{Entry: "alice entry"})
		require.NoError(t, err)
	}
	_, err := svc.Append(ctx, "bob", &model.JournalEntry{Entry: "bob entry"})
	require.NoError(t, err)

	history, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 3)
	for _, e := range history {
		assert.Equal(t, "alice", e.UserID)
	}
	assert.True(t, history[0].CreatedAt.After(history[1].CreatedAt), "newest first")

	all, err := svc.All(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "bob entry", all[0].Entry)
}
