package portfolio

import (
	"math"
	"sort"
	"strings"
)

// Values below this are treated as upstream noise, not real holdings.
const noiseEpsilon = 1e-7

// Position type buckets used by the distribution ring.
const (
	TypeSpot   = "spot"
	TypeFuture = "future"
	TypeStable = "stable"
	TypeOther  = "other"
)

var stableTokens = map[string]bool{
	"USDT": true, "USDC": true, "BUSD": true, "TUSD": true, "DAI": true,
	"FDUSD": true, "USD": true, "UST": true, "USTC": true,
}

// NormalizeType classifies a raw position type string into one of the four
// type buckets. Unrecognized types fall back to the stable-token symbol list,
// then to spot.
func NormalizeType(rawType, symbol string) string {
	t := strings.ToLower(rawType)
	switch {
	case strings.Contains(t, "spot") || strings.Contains(t, "現貨"):
		return TypeSpot
	case strings.Contains(t, "swap") || strings.Contains(t, "future") || strings.Contains(t, "永續"):
		return TypeFuture
	case strings.Contains(t, "stable"):
		return TypeStable
	case strings.Contains(t, "earn") || strings.Contains(t, "staking") || strings.Contains(t, "defi"):
		return TypeOther
	}
	if stableTokens[strings.ToUpper(symbol)] {
		return TypeStable
	}
	return TypeSpot
}

// BuildModel folds a per-exchange snapshot map into the normalized portfolio
// model. It is a pure function of its input and rebuilds from scratch every
// time, so it can never serve a stale partial aggregate.
//
// Percentages are derived in a second pass: they depend on the grand total,
// which is only known once every exchange has been folded in.
func BuildModel(snapshot map[string]ExchangeSnapshot) Model {
	aggregated := make(map[string]*AggregatedPosition)
	typeTotals := map[string]float64{
		TypeSpot: 0, TypeFuture: 0, TypeStable: 0, TypeOther: 0,
	}
	var order []string
	var totalValue, totalDiff24h float64

	for id, entry := range snapshot {
		totalDiff24h += entry.Diff24h

		for _, pos := range entry.Positions {
			exchangeID := strings.ToLower(pos.ExchangeID)
			if exchangeID == "" {
				exchangeID = strings.ToLower(id)
			}
			rawSymbol := strings.TrimSpace(pos.RawSymbol())
			if rawSymbol == "" {
				continue
			}
			symbol := strings.ToUpper(rawSymbol)
			// Guards against self-referential wallet rows some exchanges emit.
			if exchangeID != "" && strings.ToLower(symbol) == exchangeID {
				continue
			}
			quantity := pos.RawQuantity()
			price := pos.RawPrice()
			if !isFinite(quantity) || !isFinite(price) {
				continue
			}
			if quantity <= noiseEpsilon || price <= 0 {
				continue
			}
			value := quantity * price
			if value <= noiseEpsilon {
				continue
			}

			rawType := pos.Type
			if rawType == "" {
				rawType = entry.Type
			}
			posType := NormalizeType(rawType, symbol)

			totalValue += value
			typeTotals[posType] += value

			agg, ok := aggregated[symbol]
			if !ok {
				agg = &AggregatedPosition{Symbol: symbol, Type: posType}
				aggregated[symbol] = agg
				order = append(order, symbol)
			}
			agg.Quantity += quantity
			agg.Value += value
			if agg.Type == "" {
				agg.Type = posType
			}
			if agg.Quantity > 0 {
				agg.Price = agg.Value / agg.Quantity
			} else {
				agg.Price = price
			}
		}
	}

	// Deterministic output order: by value descending, symbol as tiebreak.
	sort.Slice(order, func(i, j int) bool {
		a, b := aggregated[order[i]], aggregated[order[j]]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Symbol < b.Symbol
	})

	positions := make([]AggregatedPosition, 0, len(order))
	for _, symbol := range order {
		agg := *aggregated[symbol]
		if totalValue > 0 {
			agg.Percent = agg.Value / totalValue * 100
		}
		if agg.Value > noiseEpsilon {
			positions = append(positions, agg)
		}
	}

	return Model{
		Positions:     positions,
		TypeTotals:    typeTotals,
		TotalValue:    totalValue,
		Diff24h:       totalDiff24h,
		PositionCount: len(order),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
