package service

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/mindlog/mindlog/internal/model"
)

const (
	chartWidth  = 1000
	chartHeight = 600
)

// RenderMoodChart draws mood score over time as a PNG. entries must be in
// chronological order.
func RenderMoodChart(entries []*model.MoodEntry) ([]byte, error) {
	xs := make([]time.Time, len(entries))
	ys := make([]float64, len(entries))
	for i, e := range entries {
		xs[i] = e.CreatedAt
		ys[i] = float64(e.Score)
	}

	// A zero-width time axis cannot be rendered.
	if len(xs) > 1 && !xs[len(xs)-1].After(xs[0]) {
		for i := range xs {
			xs[i] = xs[0].Add(time.Duration(i) * time.Second)
		}
	}

	graph := chart.Chart{
		Title:  "Mood over time",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Mood score",
			Range: &chart.ContinuousRange{Min: 0, Max: model.MaxMoodScore + 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Mood",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render mood chart: %w", err)
	}
	return buf.Bytes(), nil
}
