package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y1ran/journal-dashboard/internal/modules/history"
)

// fakeHistory is a canned HistorySource for tests.
type fakeHistory struct {
	points []history.Point
}

func (f fakeHistory) Sorted() []history.Point { return f.points }

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

func newTestBuilder(points []history.Point) *SeriesBuilder {
	b := NewSeriesBuilder(fakeHistory{points: points})
	b.now = fixedNow
	return b
}

func dailyPoints(n int, value float64) []history.Point {
	end := fixedNow()
	points := make([]history.Point, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		points = append(points, history.Point{
			Date:      day.Format("2006-01-02"),
			Value:     value + float64(n-1-i),
			Timestamp: day.UnixMilli(),
		})
	}
	return points
}

func TestBuildSampleCounts(t *testing.T) {
	tests := []struct {
		name     string
		rangeKey int
		want     int
	}{
		{"one day hourly", 1, 25},
		{"week six-hourly", 7, 29},
		{"month daily", 30, 31},
		{"quarter daily", 90, 91},
		{"unknown falls back to month", 14, 31},
	}

	builder := newTestBuilder(dailyPoints(120, 1000))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := builder.Build(tt.rangeKey)
			assert.Len(t, samples, tt.want)
		})
	}
}

func TestBuildInterpolatesBetweenDays(t *testing.T) {
	end := fixedNow()
	points := []history.Point{
		{Date: "2026-08-27", Value: 100, Timestamp: end.AddDate(0, 0, -1).UnixMilli()},
		{Date: "2026-08-28", Value: 200, Timestamp: end.UnixMilli()},
	}
	builder := newTestBuilder(points)

	samples := builder.Build(1)
	require.Len(t, samples, 25)

	// The 1-day window starts 24h before now, exactly on the first point.
	assert.InDelta(t, 100, samples[0].Value, 1e-9)
	// Halfway through the window the value is halfway interpolated.
	assert.InDelta(t, 150, samples[12].Value, 1e-9)
	assert.InDelta(t, 200, samples[24].Value, 1e-9)
}

func TestBuildEmptyHistory(t *testing.T) {
	builder := newTestBuilder(nil)
	assert.Nil(t, builder.Build(30))
}

func TestBuildLabels(t *testing.T) {
	builder := newTestBuilder(dailyPoints(40, 500))

	day := builder.Build(1)
	require.NotEmpty(t, day)
	// Hour labels on the 1-day range, month/day elsewhere.
	assert.Regexp(t, `^\d{2}:\d{2}$`, day[0].AxisLabel)

	month := builder.Build(30)
	require.NotEmpty(t, month)
	assert.Regexp(t, `^\d{2}/\d{2}$`, month[0].AxisLabel)
	assert.Regexp(t, `^\d{2}/\d{2} \d{2}:\d{2}$`, month[0].TooltipLabel)
}
