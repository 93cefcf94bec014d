package portfolio

import "encoding/json"

// PositionRaw is a single position row as reported by an exchange check.
// Upstream payloads are not uniform: some exchanges report quantity as
// "amount" or "free", and price as "lastPriceUSDT". The accessors resolve
// the first populated variant.
type PositionRaw struct {
	Symbol       string   `json:"symbol,omitempty"`
	Asset        string   `json:"asset,omitempty"`
	ExchangeID   string   `json:"exchangeId,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	Free         *float64 `json:"free,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	LastPriceUSD *float64 `json:"lastPriceUSDT,omitempty"`
	Type         string   `json:"type,omitempty"`
}

// RawSymbol returns the symbol field, falling back to the asset field.
func (p PositionRaw) RawSymbol() string {
	if p.Symbol != "" {
		return p.Symbol
	}
	return p.Asset
}

// RawQuantity resolves quantity -> amount -> free, defaulting to 0.
func (p PositionRaw) RawQuantity() float64 {
	for _, v := range []*float64{p.Quantity, p.Amount, p.Free} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// RawPrice resolves lastPriceUSDT -> price, defaulting to 0.
func (p PositionRaw) RawPrice() float64 {
	for _, v := range []*float64{p.LastPriceUSD, p.Price} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// ExchangeSnapshot is a point-in-time balance/positions payload for one
// exchange. It is replaced wholesale on each poll cycle, never mutated.
type ExchangeSnapshot struct {
	Balance   float64       `json:"balance"`
	Positions []PositionRaw `json:"positions"`
	UpdatedAt int64         `json:"updatedAt"` // epoch ms
	Diff24h   float64       `json:"diff24h"`
	Type      string        `json:"type,omitempty"` // exchange-level position type hint
}

// AggregatedPosition is a symbol-level rollup of quantity and value across
// all connected exchanges.
type AggregatedPosition struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`   // volume-weighted average
	Percent  float64 `json:"percent"` // of total portfolio value
}

// Model is the normalized portfolio derived from one snapshot map.
type Model struct {
	Positions     []AggregatedPosition `json:"positions"`
	TypeTotals    map[string]float64   `json:"type_totals"`
	TotalValue    float64              `json:"total_value"`
	Diff24h       float64              `json:"diff_24h"`
	PositionCount int                  `json:"position_count"`
}

// MarshalJSON keeps an empty positions list instead of null for consumers.
func (m Model) MarshalJSON() ([]byte, error) {
	type alias Model
	a := alias(m)
	if a.Positions == nil {
		a.Positions = []AggregatedPosition{}
	}
	return json.Marshal(a)
}
