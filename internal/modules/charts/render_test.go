package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

func flatSamples(values ...float64) []Sample {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Sample{Timestamp: int64(i) * 1000, Value: v}
	}
	return samples
}

func TestBuildCurveViewBaseline(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{"empty", nil},
		{"single sample", flatSamples(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildCurveView(tt.samples)
			assert.True(t, view.Empty)
			assert.True(t, strings.HasPrefix(view.Path, "M 0 240"))
			assert.True(t, strings.HasSuffix(view.AreaPath, "Z"))
			assert.Empty(t, view.Points)
		})
	}
}

func TestBuildCurveViewProjection(t *testing.T) {
	view := BuildCurveView(flatSamples(100, 150, 200, 120, 180))

	require.Len(t, view.Points, 5)
	assert.False(t, view.Empty)
	assert.Equal(t, 100.0, view.Min)
	assert.Equal(t, 200.0, view.Max)

	// X spreads evenly across the canvas.
	assert.InDelta(t, 0, view.Points[0].X, 1e-9)
	assert.InDelta(t, Width, view.Points[4].X, 1e-9)

	// Y stays inside the clamped band and higher values sit higher up.
	for _, p := range view.Points {
		assert.GreaterOrEqual(t, p.Y, 6.0)
		assert.LessOrEqual(t, p.Y, Height-2)
	}
	assert.Less(t, view.Points[2].Y, view.Points[0].Y)

	assert.True(t, strings.HasPrefix(view.Path, "M "))
	assert.True(t, strings.HasSuffix(view.AreaPath, "Z"))
	assert.Len(t, view.GridYs, 5)
	assert.LessOrEqual(t, len(view.AxisLabels), 5)
}

func TestBuildCurveViewFlatSeriesStaysVisible(t *testing.T) {
	// A flat series has zero range; the absolute pad floor keeps the line
	// off the frame edges.
	view := BuildCurveView(flatSamples(1000, 1000, 1000))

	for _, p := range view.Points {
		assert.Greater(t, p.Y, 6.0)
		assert.Less(t, p.Y, Height-2)
	}
}

func TestBuildCurveViewIgnoresZeroTicksForScale(t *testing.T) {
	withZeros := BuildCurveView(flatSamples(0, 0, 900, 1000, 950))

	// The reported min is still the raw min, but the projection floor comes
	// from the non-zero values, so real samples are not crushed to the top.
	assert.Equal(t, 0.0, withZeros.Min)
	ySpread := withZeros.Points[3].Y - withZeros.Points[2].Y
	assert.NotZero(t, math.Abs(ySpread))
}

func TestBuildCurveViewOverlay(t *testing.T) {
	// Too short for the smoothing window: no overlay.
	short := BuildCurveView(flatSamples(1, 2, 3, 4, 5))
	assert.Empty(t, short.OverlayPath)

	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	long := BuildCurveView(flatSamples(values...))
	assert.True(t, strings.HasPrefix(long.OverlayPath, "M "))
}

func TestNearestPoint(t *testing.T) {
	view := BuildCurveView(flatSamples(10, 20, 30, 40, 50))

	tests := []struct {
		name   string
		xRatio float64
		want   float64 // expected sample value
	}{
		{"left edge", 0, 10},
		{"middle", 0.5, 30},
		{"right edge", 1, 50},
		{"clamped below", -3, 10},
		{"clamped above", 7, 50},
		{"between ticks snaps to closest", 0.22, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, ok := NearestPoint(view.Points, tt.xRatio)
			require.True(t, ok)
			assert.Equal(t, tt.want, point.Sample.Value)
		})
	}
}

func TestNearestPointEmpty(t *testing.T) {
	_, ok := NearestPoint(nil, 0.5)
	assert.False(t, ok)
}

func TestBuildPieSegments(t *testing.T) {
	totals := map[string]float64{
		portfolio.TypeSpot:   600,
		portfolio.TypeFuture: 300,
		portfolio.TypeStable: 100,
		portfolio.TypeOther:  0,
	}

	segments := BuildPieSegments(totals, 1000)
	require.Len(t, segments, 3)

	circumference := 2 * math.Pi * PieRadius

	// Dash lengths cover the full ring.
	var dashSum float64
	for _, seg := range segments {
		dashSum += seg.Dash
		assert.InDelta(t, circumference, seg.Dash+seg.Gap, 1e-9)
	}
	assert.InDelta(t, circumference, dashSum, 1e-9)

	// Offsets accumulate so slices do not overlap.
	assert.Equal(t, 0.0, segments[0].Offset)
	assert.InDelta(t, -segments[0].Dash, segments[1].Offset, 1e-9)
	assert.InDelta(t, -(segments[0].Dash+segments[1].Dash), segments[2].Offset, 1e-9)

	assert.Equal(t, "現貨倉位", segments[0].Label)
	assert.InDelta(t, 60, segments[0].Percent, 1e-9)
}

func TestBuildPieSegmentsZeroTotal(t *testing.T) {
	segments := BuildPieSegments(map[string]float64{portfolio.TypeSpot: 0}, 0)
	assert.Empty(t, segments)
}

func TestBuildStatCards(t *testing.T) {
	model := portfolio.Model{
		Positions: []portfolio.AggregatedPosition{
			{Symbol: "BTC", Value: 50000},
			{Symbol: "ETH", Value: 20000},
		},
	}

	cards := BuildStatCards(model)
	require.Len(t, cards, 3)
	assert.Equal(t, "2 種", cards[0].Value)
	assert.Equal(t, "2 筆", cards[1].Value)
	assert.Contains(t, cards[2].Value, "BTC")
}

func TestBuildStatCardsEmpty(t *testing.T) {
	cards := BuildStatCards(portfolio.Model{})
	require.Len(t, cards, 3)
	assert.Equal(t, "-", cards[2].Value)
}
