package balance

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/events"
	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// fakeChecker returns canned per-exchange check results.
type fakeChecker struct {
	results map[string]*journal.CheckResult
	errs    map[string]error
	calls   []string
}

func (f *fakeChecker) CheckExchange(id string, _ journal.Credentials) (*journal.CheckResult, error) {
	f.calls = append(f.calls, id)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.results[id], nil
}

func newTestService(t *testing.T, checker Checker) (*Service, *Store) {
	t.Helper()
	store := newTestStore(t, newMemStorage())
	service := NewService(store, checker, events.NewManager(zerolog.Nop()), zerolog.Nop())
	return service, store
}

func TestCheckExchangeSuccess(t *testing.T) {
	checker := &fakeChecker{results: map[string]*journal.CheckResult{
		"binance": {
			Status:    "ok",
			Balance:   1200,
			Positions: []portfolio.PositionRaw{{Symbol: "BTC"}},
		},
	}}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))

	service.CheckExchange("binance")

	states := store.States()
	assert.Equal(t, StatusOK, states["binance"].Status)
	assert.InDelta(t, 1200, states["binance"].Snapshot.Balance, 1e-9)
	assert.NotZero(t, states["binance"].Snapshot.UpdatedAt)
}

func TestCheckExchangeComputesDiff(t *testing.T) {
	checker := &fakeChecker{results: map[string]*journal.CheckResult{
		"binance": {Status: "ok", Balance: 1000},
	}}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))

	service.CheckExchange("binance")
	checker.results["binance"].Balance = 1150
	service.CheckExchange("binance")

	snapshot := store.Snapshot()["binance"]
	assert.InDelta(t, 150, snapshot.Diff24h, 1e-9)
}

func TestCheckExchangeFailureKeepsLastKnown(t *testing.T) {
	checker := &fakeChecker{
		results: map[string]*journal.CheckResult{
			"binance": {
				Status:    "ok",
				Balance:   900,
				Positions: []portfolio.PositionRaw{{Symbol: "ETH"}},
			},
		},
		errs: map[string]error{},
	}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))

	service.CheckExchange("binance")
	checker.errs["binance"] = fmt.Errorf("timeout")
	service.CheckExchange("binance")

	states := store.States()
	assert.Equal(t, StatusError, states["binance"].Status)
	snapshot := states["binance"].Snapshot
	assert.InDelta(t, 900, snapshot.Balance, 1e-9)
	require.Len(t, snapshot.Positions, 1)
	assert.Equal(t, "ETH", snapshot.Positions[0].Symbol)
	assert.Zero(t, snapshot.Diff24h)
}

func TestCheckExchangeZeroBalanceFallsBack(t *testing.T) {
	checker := &fakeChecker{results: map[string]*journal.CheckResult{
		"binance": {Status: "ok", Balance: 800},
	}}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))

	service.CheckExchange("binance")
	checker.results["binance"].Balance = 0
	service.CheckExchange("binance")

	snapshot := store.Snapshot()["binance"]
	assert.InDelta(t, 800, snapshot.Balance, 1e-9)
	assert.Zero(t, snapshot.Diff24h)
}

func TestCheckExchangeWithoutCredentialsIsNoop(t *testing.T) {
	checker := &fakeChecker{}
	service, store := newTestService(t, checker)

	service.CheckExchange("binance")

	assert.Empty(t, checker.calls)
	assert.Empty(t, store.Snapshot())
}

func TestCheckAllVisitsEveryExchangeAndPublishes(t *testing.T) {
	checker := &fakeChecker{results: map[string]*journal.CheckResult{
		"binance": {Status: "ok", Balance: 100},
		"okx":     {Status: "warning", Balance: 200},
	}}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))
	require.NoError(t, store.SaveCredentials("okx", testCreds()))

	var published []float64
	store.OnBalanceUpdate(func(total float64, _ map[string]portfolio.ExchangeSnapshot) {
		published = append(published, total)
	})

	service.CheckAll()

	assert.ElementsMatch(t, []string{"binance", "okx"}, checker.calls)
	assert.Equal(t, StatusWarning, store.States()["okx"].Status)
	// One replay on subscribe, one publish after the cycle.
	require.Len(t, published, 2)
	assert.InDelta(t, 300, published[1], 1e-9)
}

func TestCheckAllIsolatesFailures(t *testing.T) {
	checker := &fakeChecker{
		results: map[string]*journal.CheckResult{
			"okx": {Status: "ok", Balance: 500},
		},
		errs: map[string]error{"binance": fmt.Errorf("boom")},
	}
	service, store := newTestService(t, checker)
	require.NoError(t, store.SaveCredentials("binance", testCreds()))
	require.NoError(t, store.SaveCredentials("okx", testCreds()))

	service.CheckAll()

	states := store.States()
	assert.Equal(t, StatusError, states["binance"].Status)
	assert.Equal(t, StatusOK, states["okx"].Status)
	assert.InDelta(t, 500, store.Total(), 1e-9)
}
