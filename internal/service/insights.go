package service

import (
	"context"
	"encoding/base64"

	"github.com/mindlog/mindlog/internal/model"
)

// recentWindow is how many of the latest entries make up last_7_days.
const recentWindow = 7

// Insights summarizes a user's mood history.
type Insights struct {
	Username    string  `json:"username"`
	EntryCount  int     `json:"entry_count"`
	AverageMood float64 `json:"average_mood"`
	Last7Days   []int   `json:"last_7_days"`
}

// InsightService computes aggregates over mood entries.
type InsightService struct {
	moods RecordRepository[*model.MoodEntry]
}

func NewInsightService(moods RecordRepository[*model.MoodEntry]) *InsightService {
	return &InsightService{moods: moods}
}

// Insights returns the mean score and the scores of the last seven entries in
// chronological order. A user without entries gets ErrNoEntries.
func (s *InsightService) Insights(ctx context.Context, p *model.Principal) (*Insights, error) {
	entries, err := s.moods.ListAll(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	sum := 0
	scores := make([]int, len(entries))
	for i, e := range entries {
		sum += e.Score
		scores[i] = e.Score
	}

	start := len(scores) - recentWindow
	if start < 0 {
		start = 0
	}

	return &Insights{
		Username:    p.Username,
		EntryCount:  len(entries),
		AverageMood: float64(sum) / float64(len(entries)),
		Last7Days:   scores[start:],
	}, nil
}

// MoodChart renders the full mood history as a base64-encoded PNG. At least
// two entries are required.
func (s *InsightService) MoodChart(ctx context.Context, p *model.Principal) (string, error) {
	entries, err := s.moods.ListAll(ctx, p.UserID)
	if err != nil {
		return "", err
	}
	if len(entries) < 2 {
		return "", ErrInsufficientData
	}

	png, err := RenderMoodChart(entries)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
