package records

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Sparkline viewbox for the today-overview cumulative PnL line.
const (
	sparkWidth  = 120.0
	sparkHeight = 40.0
)

// TodayOverview summarizes today's trading activity.
type TodayOverview struct {
	Count     int    `json:"count"`
	WinRate   int    `json:"win_rate"` // percent, rounded
	Sparkline string `json:"sparkline"`
}

// ActivityDay is one dot on the 7-day timeline.
type ActivityDay struct {
	Date  string  `json:"date"`
	State string  `json:"state"` // empty, filled, loss
	Pnl   float64 `json:"pnl"`
	Count int     `json:"count"`
}

// Behavior aggregates trading habits over the whole record list.
type Behavior struct {
	LongPct     int     `json:"long_pct"`
	ShortPct    int     `json:"short_pct"`
	AvgLeverage float64 `json:"avg_leverage"`
	Favorite    string  `json:"favorite"`
}

// RankedTrade is one row of the best/worst lists.
type RankedTrade struct {
	ID     int64   `json:"id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"` // display label
	Pnl    float64 `json:"pnl"`
}

// Insights is the full derived dashboard-insight block.
type Insights struct {
	Today    TodayOverview `json:"today"`
	Timeline []ActivityDay `json:"timeline"`
	Behavior Behavior      `json:"behavior"`
	Best     []RankedTrade `json:"best"`
	Worst    []RankedTrade `json:"worst"`
}

// BuildInsights derives all record analytics for the dashboard in one pass
// over the cached list.
func BuildInsights(list []Record, now time.Time) Insights {
	return Insights{
		Today:    buildTodayOverview(list, now),
		Timeline: buildTimeline(list, now),
		Behavior: buildBehavior(list),
		Best:     rankTrades(list, true),
		Worst:    rankTrades(list, false),
	}
}

func buildTodayOverview(list []Record, now time.Time) TodayOverview {
	today := now.Format("2006-01-02")
	var todays []Record
	for _, r := range list {
		if r.Date == today {
			todays = append(todays, r)
		}
	}

	wins := 0
	for _, r := range todays {
		if r.Result == ResultWin {
			wins++
		}
	}
	winRate := 0
	if len(todays) > 0 {
		winRate = int(math.Round(float64(wins) / float64(len(todays)) * 100))
	}

	// Cumulative PnL through the day, in submission order.
	ordered := append([]Record(nil), todays...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	var points []float64
	var cumulative float64
	for _, r := range ordered {
		cumulative += r.Pnl
		points = append(points, cumulative)
	}
	if len(points) == 0 {
		points = []float64{0, 0, 0, 0, 0}
	}

	return TodayOverview{
		Count:     len(todays),
		WinRate:   winRate,
		Sparkline: buildSparkline(points),
	}
}

// buildSparkline projects cumulative values into an SVG polyline points
// attribute over the sparkline viewbox.
func buildSparkline(points []float64) string {
	min, max := points[0], points[0]
	for _, v := range points {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	valueRange := max - min
	if valueRange == 0 {
		valueRange = 1
	}
	step := sparkWidth
	if len(points) > 1 {
		step = sparkWidth / float64(len(points)-1)
	}

	out := ""
	for i, v := range points {
		if i > 0 {
			out += " "
		}
		x := float64(i) * step
		y := sparkHeight - (v-min)/valueRange*sparkHeight
		out += fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return out
}

func buildTimeline(list []Record, now time.Time) []ActivityDay {
	days := make([]ActivityDay, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		key := now.AddDate(0, 0, -offset).Format("2006-01-02")
		var pnl float64
		count := 0
		for _, r := range list {
			if r.Date == key {
				pnl += r.Pnl
				count++
			}
		}
		state := "empty"
		if count > 0 {
			if pnl >= 0 {
				state = "filled"
			} else {
				state = "loss"
			}
		}
		days = append(days, ActivityDay{Date: key, State: state, Pnl: pnl, Count: count})
	}
	return days
}

func buildBehavior(list []Record) Behavior {
	longCount, shortCount := 0, 0
	var leverages []float64
	symbolCounts := make(map[string]int)
	for _, r := range list {
		switch r.Side {
		case SideLong:
			longCount++
		case SideShort:
			shortCount++
		}
		if lev, ok := r.LeverageValue(); ok {
			leverages = append(leverages, lev)
		}
		if r.Symbol != "" {
			symbolCounts[r.Symbol]++
		}
	}

	total := len(list)
	if total == 0 {
		total = 1
	}

	var avgLeverage float64
	if len(leverages) > 0 {
		avgLeverage = stat.Mean(leverages, nil)
	}

	favorite := "-"
	best := 0
	for symbol, count := range symbolCounts {
		if count > best || (count == best && symbol < favorite) {
			best = count
			favorite = symbol
		}
	}

	return Behavior{
		LongPct:     int(math.Round(float64(longCount) / float64(total) * 100)),
		ShortPct:    int(math.Round(float64(shortCount) / float64(total) * 100)),
		AvgLeverage: avgLeverage,
		Favorite:    favorite,
	}
}

// rankTrades returns the top 3 by signed PnL: strictly positive for the
// best list, strictly negative for the worst.
func rankTrades(list []Record, best bool) []RankedTrade {
	filtered := make([]Record, 0, len(list))
	for _, r := range list {
		if best && r.Pnl > 0 || !best && r.Pnl < 0 {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if best {
			return filtered[i].Pnl > filtered[j].Pnl
		}
		return filtered[i].Pnl < filtered[j].Pnl
	})
	if len(filtered) > 3 {
		filtered = filtered[:3]
	}

	ranked := make([]RankedTrade, 0, len(filtered))
	for _, r := range filtered {
		ranked = append(ranked, RankedTrade{
			ID:     r.ID,
			Symbol: r.Symbol,
			Side:   r.Side.Label(),
			Pnl:    r.Pnl,
		})
	}
	return ranked
}
