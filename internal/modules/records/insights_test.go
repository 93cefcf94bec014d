package records

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeOn(id int64, date string, side Side, result Result, pnl float64) Record {
	traded, _ := time.Parse("2006-01-02", date)
	return Record{
		ID:       id,
		Symbol:   "BTCUSDT",
		Side:     side,
		Result:   result,
		Pnl:      pnl,
		TradedAt: traded,
		Date:     date,
	}
}

func TestBuildTodayOverview(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	list := []Record{
		tradeOn(1, "2026-08-28", SideLong, ResultWin, 50),
		tradeOn(2, "2026-08-28", SideShort, ResultLoss, -20),
		tradeOn(3, "2026-08-28", SideLong, ResultWin, 30),
		tradeOn(4, "2026-08-27", SideLong, ResultWin, 99), // not today
	}

	insights := BuildInsights(list, now)

	assert.Equal(t, 3, insights.Today.Count)
	assert.Equal(t, 67, insights.Today.WinRate)
	// Three cumulative points, one coordinate pair each.
	assert.Len(t, strings.Fields(insights.Today.Sparkline), 3)
}

func TestBuildTodayOverviewEmpty(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	insights := BuildInsights(nil, now)

	assert.Zero(t, insights.Today.Count)
	assert.Zero(t, insights.Today.WinRate)
	// Flat placeholder line so the tile never renders blank.
	assert.Len(t, strings.Fields(insights.Today.Sparkline), 5)
}

func TestBuildTimeline(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	list := []Record{
		tradeOn(1, "2026-08-28", SideLong, ResultWin, 50),
		tradeOn(2, "2026-08-26", SideShort, ResultLoss, -70),
		tradeOn(3, "2026-08-26", SideLong, ResultWin, 30),
	}

	insights := BuildInsights(list, now)
	require.Len(t, insights.Timeline, 7)

	assert.Equal(t, "2026-08-22", insights.Timeline[0].Date)
	assert.Equal(t, "2026-08-28", insights.Timeline[6].Date)

	assert.Equal(t, "empty", insights.Timeline[0].State)
	// Net -40 on the 26th flags the day as a loss day.
	assert.Equal(t, "loss", insights.Timeline[4].State)
	assert.Equal(t, 2, insights.Timeline[4].Count)
	assert.Equal(t, "filled", insights.Timeline[6].State)
}

func TestBuildBehavior(t *testing.T) {
	lev10, lev20 := 10.0, 20.0
	list := []Record{
		{ID: 1, Symbol: "BTCUSDT", Side: SideLong, Leverage: &lev10},
		{ID: 2, Symbol: "BTCUSDT", Side: SideLong, Leverage: &lev20},
		{ID: 3, Symbol: "ETHUSDT", Side: SideShort, Extra: map[string]string{"槓桿": "30"}},
		{ID: 4, Symbol: "SOLUSDT"},
	}

	insights := BuildInsights(list, time.Now())

	assert.Equal(t, 50, insights.Behavior.LongPct)
	assert.Equal(t, 25, insights.Behavior.ShortPct)
	assert.InDelta(t, 20, insights.Behavior.AvgLeverage, 1e-9)
	assert.Equal(t, "BTCUSDT", insights.Behavior.Favorite)
}

func TestBuildBehaviorEmpty(t *testing.T) {
	insights := BuildInsights(nil, time.Now())

	assert.Zero(t, insights.Behavior.LongPct)
	assert.Zero(t, insights.Behavior.AvgLeverage)
	assert.Equal(t, "-", insights.Behavior.Favorite)
}

func TestRankTrades(t *testing.T) {
	list := []Record{
		tradeOn(1, "2026-08-20", SideLong, ResultWin, 100),
		tradeOn(2, "2026-08-21", SideLong, ResultWin, 300),
		tradeOn(3, "2026-08-22", SideShort, ResultWin, 200),
		tradeOn(4, "2026-08-23", SideLong, ResultWin, 50),
		tradeOn(5, "2026-08-24", SideShort, ResultLoss, -80),
		tradeOn(6, "2026-08-25", SideLong, ResultExit, 0), // flat trades rank nowhere
	}

	insights := BuildInsights(list, time.Now())

	require.Len(t, insights.Best, 3)
	assert.Equal(t, int64(2), insights.Best[0].ID)
	assert.Equal(t, int64(3), insights.Best[1].ID)
	assert.Equal(t, int64(1), insights.Best[2].ID)
	assert.Equal(t, "做多", insights.Best[0].Side)

	require.Len(t, insights.Worst, 1)
	assert.Equal(t, int64(5), insights.Worst[0].ID)
}
