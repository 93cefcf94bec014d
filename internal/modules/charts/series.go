package charts

import (
	"time"

	"github.com/y1ran/journal-dashboard/internal/modules/history"
)

const hourMs = int64(time.Hour / time.Millisecond)

// rangeConfig describes one selectable chart range.
type rangeConfig struct {
	durationHours int64
	stepHours     int64
}

// Selectable ranges, keyed by days. Unknown keys fall back to 30.
var rangeConfigs = map[int]rangeConfig{
	1:  {durationHours: 24, stepHours: 1},
	7:  {durationHours: 7 * 24, stepHours: 6},
	30: {durationHours: 30 * 24, stepHours: 24},
	90: {durationHours: 90 * 24, stepHours: 24},
}

// Sample is an ephemeral, possibly interpolated value at one fixed-cadence
// timestamp. Derived per render, never persisted.
type Sample struct {
	Timestamp    int64   `json:"timestamp"`
	Value        float64 `json:"value"`
	AxisLabel    string  `json:"axis_label"`
	TooltipLabel string  `json:"tooltip_label"`
}

// HistorySource supplies the chronologically sorted raw series.
type HistorySource interface {
	Sorted() []history.Point
}

// SeriesBuilder derives fixed-cadence sample series from the sparse history.
type SeriesBuilder struct {
	source HistorySource
	now    func() time.Time
}

// NewSeriesBuilder creates a new series builder
func NewSeriesBuilder(source HistorySource) *SeriesBuilder {
	return &SeriesBuilder{source: source, now: time.Now}
}

// Build walks the selected lookback window at the range's cadence and
// interpolates the portfolio value at every tick. When the walk produces
// fewer than two samples but at least two raw points exist, the two most
// recent raw points are returned instead so the chart always has a drawable
// line; an empty history yields an empty series.
func (b *SeriesBuilder) Build(rangeKey int) []Sample {
	cfg, ok := rangeConfigs[rangeKey]
	if !ok {
		cfg = rangeConfigs[30]
	}

	sorted := b.source.Sorted()
	if len(sorted) == 0 {
		return nil
	}

	end := b.now().UnixMilli()
	step := cfg.stepHours * hourMs
	if step < hourMs {
		step = hourMs
	}
	minTs := end - cfg.durationHours*hourMs

	var series []Sample
	for ts := minTs; ts <= end; ts += step {
		series = append(series, Sample{
			Timestamp:    ts,
			Value:        history.EstimateValueAt(sorted, ts),
			AxisLabel:    formatAxisLabel(ts, rangeKey),
			TooltipLabel: formatTooltipLabel(ts),
		})
	}

	if len(series) < 2 && len(sorted) >= 2 {
		lastTwo := sorted[len(sorted)-2:]
		series = series[:0]
		for _, entry := range lastTwo {
			series = append(series, Sample{
				Timestamp:    entry.Timestamp,
				Value:        entry.Value,
				AxisLabel:    formatAxisLabel(entry.Timestamp, rangeKey),
				TooltipLabel: formatTooltipLabel(entry.Timestamp),
			})
		}
	}
	return series
}

// formatAxisLabel renders a tick label: time-of-day on the 1-day range,
// month/day otherwise.
func formatAxisLabel(ts int64, rangeKey int) string {
	t := time.UnixMilli(ts)
	if rangeKey == 1 {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// formatTooltipLabel renders the hover label shared by all ranges.
func formatTooltipLabel(ts int64) string {
	return time.UnixMilli(ts).Format("01/02 15:04")
}
