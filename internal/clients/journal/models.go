package journal

import "github.com/y1ran/journal-dashboard/internal/modules/portfolio"

// Credentials are the API keys for one exchange connection.
type Credentials struct {
	APIKey     string `json:"apiKey"`
	SecretKey  string `json:"secretKey"`
	Passphrase string `json:"passphrase"`
}

// CheckResult is the response of a per-exchange balance check.
// Status is "ok", "warning", or anything else for an error state.
type CheckResult struct {
	Status    string                  `json:"status"`
	Balance   float64                 `json:"balance"`
	Positions []portfolio.PositionRaw `json:"positions"`
}

// BalanceSummary is the aggregate balance view reported by the backend.
type BalanceSummary struct {
	Total     float64            `json:"total"`
	Exchanges map[string]float64 `json:"exchanges"`
}

// RecordPayload is the trade record wire shape shared by all /records
// endpoints. Nullable numeric fields are pointers so absent and zero are
// distinguishable on the wire.
type RecordPayload struct {
	ID          int64             `json:"id,omitempty"`
	Symbol      string            `json:"symbol"`
	Side        *string           `json:"side"`
	Result      *string           `json:"result"`
	Leverage    *float64          `json:"leverage"`
	MarginUSDT  *float64          `json:"margin_usdt"`
	PnlUSDT     *float64          `json:"pnl_usdt"`
	PnlPct      *float64          `json:"pnl_pct"`
	Summary     *string           `json:"summary"`
	Tags        []string          `json:"tags"`
	TradedAt    *string           `json:"traded_at"` // ISO-8601
	ImageURL    *string           `json:"image_url"`
	ExtraFields map[string]string `json:"extra_fields"`
}
