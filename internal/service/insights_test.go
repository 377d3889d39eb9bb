package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository/memory"
)

func seedMoods(t *testing.T, store *memory.Records[*model.MoodEntry], userID string, scores ...int) {
	t.Helper()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, s := range scores {
		m := &model.MoodEntry{Score: s}
		m.Stamp("m", userID, base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, store.Append(context.Background(), m))
	}
}

var ann = &model.Principal{UserID: "u1", Username: "ann"}

func TestInsights_NoEntries(t *testing.T) {
	t.Parallel()
	svc := NewInsightService(memory.NewRecords[*model.MoodEntry]())

	_, err := svc.Insights(context.Background(), ann)
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestInsights_AverageAndWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scores   []int
		wantAvg  float64
		wantLast []int
	}{
		{"single", []int{7}, 7, []int{7}},
		{"mean", []int{2, 4, 9}, 5, []int{2, 4, 9}},
		{"window of seven", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 5, []int{3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := memory.NewRecords[*model.MoodEntry]()
			seedMoods(t, store, ann.UserID, tt.scores...)
			seedMoods(t, store, "someone-else", 1, 1, 1)

			got, err := NewInsightService(store).Insights(context.Background(), ann)
			require.NoError(t, err)
			assert.Equal(t, "ann", got.Username)
			assert.Equal(t, len(tt.scores), got.EntryCount)
			assert.InDelta(t, tt.wantAvg, got.AverageMood, 1e-9)
			assert.Equal(t, tt.wantLast, got.Last7Days)
		})
	}
}

func TestMoodChart_InsufficientData(t *testing.T) {
	t.Parallel()
	store := memory.NewRecords[*model.MoodEntry]()
	svc := NewInsightService(store)

	_, err := svc.MoodChart(context.Background(), ann)
	assert.ErrorIs(t, err, ErrInsufficientData)

	seedMoods(t, store, ann.UserID, 5)
	_, err = svc.MoodChart(context.Background(), ann)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMoodChart_RendersPNG(t *testing.T) {
	t.Parallel()
	store := memory.NewRecords[*model.MoodEntry]()
	seedMoods(t, store, ann.UserID, 3, 8, 6)

	encoded, err := NewInsightService(store).MoodChart(context.Background(), ann)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG\r\n\x1a\n")), "not a PNG")
}

func TestRenderMoodChart_SameTimestamp(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	entries := []*model.MoodEntry{
		{Score: 4, CreatedAt: at},
		{Score: 6, CreatedAt: at},
	}

	png, err := RenderMoodChart(entries)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
