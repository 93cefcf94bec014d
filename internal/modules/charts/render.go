package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"

	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// Virtual canvas the plot projects into. The browser scales it to fit.
const (
	Width  = 320.0
	Height = 240.0
)

// SMA window for the smoothed overlay on the asset curve.
const overlayPeriod = 6

var distributionColors = []string{"#A7C5F9", "#B6E3D5", "#F9D8B4", "#E0C3FC"}

var typeLabels = map[string]string{
	portfolio.TypeSpot:   "現貨倉位",
	portfolio.TypeFuture: "永續合約",
	portfolio.TypeStable: "穩定幣",
	portfolio.TypeOther:  "其他 / 被動收益",
}

// typeOrder fixes slice ordering in the distribution ring.
var typeOrder = []string{
	portfolio.TypeSpot, portfolio.TypeFuture, portfolio.TypeStable, portfolio.TypeOther,
}

// PlotPoint is one sample projected into canvas coordinates.
type PlotPoint struct {
	Sample Sample  `json:"sample"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// CurveView is the fully derived asset-curve rendering: projected points,
// path strings, grid geometry and axis labels.
type CurveView struct {
	Points      []PlotPoint `json:"points"`
	Path        string      `json:"path"`
	AreaPath    string      `json:"area_path"`
	OverlayPath string      `json:"overlay_path,omitempty"`
	GridYs      []float64   `json:"grid_ys"`
	AxisLabels  []string    `json:"axis_labels"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	Empty       bool        `json:"empty"`
}

// BuildCurveView projects a sample series into the virtual canvas. With
// fewer than two samples it returns the flat baseline view; it never panics
// on empty input.
func BuildCurveView(samples []Sample) CurveView {
	if len(samples) < 2 {
		view := CurveView{
			Path:     fmt.Sprintf("M 0 %.0f L %.0f %.0f", Height, Width, Height),
			AreaPath: fmt.Sprintf("M 0 %.0f L %.0f %.0f L 0 %.0f Z", Height, Width, Height, Height),
			Empty:    true,
		}
		if len(samples) == 1 {
			view.Min = samples[0].Value
			view.Max = samples[0].Value
		}
		return view
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	rawMin := floats.Min(values)
	max := floats.Max(values)

	// Zero ticks (history gaps clamped to an empty series edge) would crush
	// the visible range, so the scale floor ignores them when possible.
	effectiveMin := rawMin
	var nonZero []float64
	for _, v := range values {
		if v > 0 {
			nonZero = append(nonZero, v)
		}
	}
	if len(nonZero) > 0 {
		effectiveMin = floats.Min(nonZero)
	}

	// Pad the value range so the line never hugs the frame; a degenerate or
	// near-zero range gets an absolute floor to avoid a visually flat line.
	valueRange := max - effectiveMin
	pad := valueRange * 0.12
	if !finite(pad) || pad < 1 {
		pad = math.Max(effectiveMin*0.08, 8)
	}
	paddedMin := math.Max(0, effectiveMin-pad)
	paddedRange := math.Max(max+pad-paddedMin, 1)

	points := make([]PlotPoint, len(samples))
	for i, s := range samples {
		x := float64(i) / float64(len(samples)-1) * Width
		yBase := Height - (s.Value-paddedMin)/paddedRange*Height
		y := math.Min(Height-2, math.Max(6, yBase+Height*0.02))
		points[i] = PlotPoint{Sample: s, X: x, Y: y}
	}

	path := buildPath(points)
	first, last := points[0], points[len(points)-1]
	areaPath := fmt.Sprintf("%s L %.2f %.0f L %.2f %.0f Z", path, last.X, Height, first.X, Height)

	gridYs := make([]float64, 0, 5)
	for i := 0; i <= 4; i++ {
		gridYs = append(gridYs, float64(i)/4*Height)
	}

	labelCount := len(samples)
	if labelCount > 5 {
		labelCount = 5
	}
	axisLabels := make([]string, 0, labelCount)
	for i := 0; i < labelCount; i++ {
		idx := int(math.Round(float64(i) * float64(len(samples)-1) / math.Max(float64(labelCount-1), 1)))
		if idx > len(samples)-1 {
			idx = len(samples) - 1
		}
		axisLabels = append(axisLabels, samples[idx].AxisLabel)
	}

	return CurveView{
		Points:      points,
		Path:        path,
		AreaPath:    areaPath,
		OverlayPath: buildOverlayPath(points, values, paddedMin, paddedRange),
		GridYs:      gridYs,
		AxisLabels:  axisLabels,
		Min:         rawMin,
		Max:         max,
	}
}

// buildOverlayPath derives the smoothed moving-average overlay, projected
// with the same scale as the main curve. Short series get no overlay.
func buildOverlayPath(points []PlotPoint, values []float64, paddedMin, paddedRange float64) string {
	if len(values) < overlayPeriod*2 {
		return ""
	}
	sma := talib.Sma(values, overlayPeriod)

	var sb strings.Builder
	started := false
	for i, v := range sma {
		if i < overlayPeriod-1 {
			continue // warm-up window has no average yet
		}
		yBase := Height - (v-paddedMin)/paddedRange*Height
		y := math.Min(Height-2, math.Max(6, yBase+Height*0.02))
		if !started {
			fmt.Fprintf(&sb, "M %.2f %.2f", points[i].X, y)
			started = true
		} else {
			fmt.Fprintf(&sb, " L %.2f %.2f", points[i].X, y)
		}
	}
	return sb.String()
}

func buildPath(points []PlotPoint) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&sb, "M %.2f %.2f", p.X, p.Y)
		} else {
			fmt.Fprintf(&sb, " L %.2f %.2f", p.X, p.Y)
		}
	}
	return sb.String()
}

// NearestPoint resolves a pointer hover to the closest projected sample by
// x distance. xRatio is the pointer position within the plot bounding box,
// clamped into [0, 1]. The scan is linear; sample counts stay small.
func NearestPoint(points []PlotPoint, xRatio float64) (PlotPoint, bool) {
	if len(points) == 0 {
		return PlotPoint{}, false
	}
	targetX := math.Min(math.Max(xRatio, 0), 1) * Width

	closest := points[0]
	minDiff := math.Abs(closest.X - targetX)
	for _, p := range points[1:] {
		if diff := math.Abs(p.X - targetX); diff < minDiff {
			minDiff = diff
			closest = p
		}
	}
	return closest, true
}

// PieSegment is one stroke-dasharray slice of the distribution ring.
type PieSegment struct {
	Type    string  `json:"type"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Dash    float64 `json:"dash"`
	Gap     float64 `json:"gap"`
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
}

// PieRadius is the ring radius within the 160x160 distribution viewbox.
const PieRadius = 70.0

// BuildPieSegments turns per-type totals into ring segments. Each slice's
// arc length advances the cumulative dash offset.
func BuildPieSegments(typeTotals map[string]float64, totalValue float64) []PieSegment {
	circumference := 2 * math.Pi * PieRadius

	var segments []PieSegment
	var offset float64
	for _, typ := range typeOrder {
		value := typeTotals[typ]
		if value <= 0 {
			continue
		}
		var percent, dash float64
		if totalValue > 0 {
			percent = value / totalValue * 100
			dash = value / totalValue * circumference
		}
		label := typeLabels[typ]
		if label == "" {
			label = typ
		}
		segments = append(segments, PieSegment{
			Type:    typ,
			Label:   label,
			Value:   value,
			Percent: percent,
			Dash:    dash,
			Gap:     circumference - dash,
			Offset:  -offset,
			Color:   distributionColors[len(segments)%len(distributionColors)],
		})
		offset += dash
	}
	return segments
}

// StatCard is one summary tile next to the distribution ring.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildStatCards derives the holdings summary tiles from the portfolio model.
func BuildStatCards(model portfolio.Model) []StatCard {
	symbols := make(map[string]bool)
	var top *portfolio.AggregatedPosition
	for i := range model.Positions {
		pos := &model.Positions[i]
		if pos.Value <= 0 {
			continue
		}
		symbols[pos.Symbol] = true
		if top == nil || pos.Value > top.Value {
			top = pos
		}
	}

	largest := "-"
	if top != nil {
		largest = fmt.Sprintf("%s · %.2f USDT", top.Symbol, top.Value)
	}
	return []StatCard{
		{Label: "持倉種類", Value: fmt.Sprintf("%d 種", len(symbols))},
		{Label: "倉位數量", Value: fmt.Sprintf("%d 筆", len(model.Positions))},
		{Label: "最大持倉", Value: largest},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
