package balance

import (
	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// Status is the settled state of the last check for one exchange.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// ParseStatus maps a wire status string onto a Status. Anything that is not
// explicitly ok or warning indicates an error.
func ParseStatus(raw string) Status {
	switch raw {
	case "ok":
		return StatusOK
	case "warning":
		return StatusWarning
	default:
		return StatusError
	}
}

// Meta is static display metadata for a known exchange.
type Meta struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Exchanges the dashboard knows how to connect to.
var KnownExchanges = map[string]Meta{
	"binance": {Name: "Binance", Logo: "/assets/img/binance.png"},
	"bybit":   {Name: "Bybit", Logo: "/assets/img/bybit.png"},
	"bitget":  {Name: "Bitget", Logo: "/assets/img/bitget.png"},
	"okx":     {Name: "OKX", Logo: "/assets/img/okx.png"},
	"bingx":   {Name: "BingX", Logo: "/assets/img/bingx.png"},
	"mexc":    {Name: "MEXC", Logo: "/assets/img/mexc.png"},
	"gate":    {Name: "Gate.io", Logo: "/assets/img/gate.png"},
}

// MetaFor returns display metadata for an exchange id, synthesizing a
// minimal entry for ids outside the known set.
func MetaFor(id string) Meta {
	if meta, ok := KnownExchanges[id]; ok {
		return meta
	}
	return Meta{Name: id}
}

// ExchangeState is the full per-exchange view handed to subscribers and the
// exchange-cards endpoint: metadata, check status, and the live snapshot.
type ExchangeState struct {
	ID       string                     `json:"id"`
	Meta     Meta                       `json:"meta"`
	Status   Status                     `json:"status"`
	Snapshot portfolio.ExchangeSnapshot `json:"snapshot"`
}
