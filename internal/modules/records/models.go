package records

import (
	"strconv"
	"time"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
)

// Side is the direction of a trade.
type Side string

// Result is how a trade ended (or that it is still open).
type Result string

const (
	SideLong  Side = "long"
	SideShort Side = "short"

	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultExit Result = "exit"
	ResultOpen Result = "open"
)

var sideLabels = map[Side]string{
	SideLong:  "做多",
	SideShort: "做空",
}

var resultLabels = map[Result]string{
	ResultWin:  "止盈",
	ResultLoss: "止損",
	ResultExit: "提前出場",
	ResultOpen: "持倉中",
}

// ParseSide accepts either the internal key or the display label. Upstream
// data historically stored both, so the reverse lookup keeps old rows
// readable; unknown values pass through unchanged.
func ParseSide(value string) Side {
	if value == "" {
		return ""
	}
	if _, ok := sideLabels[Side(value)]; ok {
		return Side(value)
	}
	for side, label := range sideLabels {
		if label == value {
			return side
		}
	}
	return Side(value)
}

// ParseResult accepts either the internal key or the display label.
func ParseResult(value string) Result {
	if value == "" {
		return ""
	}
	if _, ok := resultLabels[Result(value)]; ok {
		return Result(value)
	}
	for result, label := range resultLabels {
		if label == value {
			return result
		}
	}
	return Result(value)
}

// Label returns the display string for a side; the raw value when unknown.
func (s Side) Label() string {
	if label, ok := sideLabels[s]; ok {
		return label
	}
	if s == "" {
		return "-"
	}
	return string(s)
}

// Label returns the display string for a result; the raw value when unknown.
func (r Result) Label() string {
	if label, ok := resultLabels[r]; ok {
		return label
	}
	return string(r)
}

// Record is a normalized trade-journal entry. Display labels never appear
// here; they are derived via Label() at the presentation edge.
type Record struct {
	ID         int64             `json:"id"`
	Symbol     string            `json:"symbol"`
	Side       Side              `json:"side"`
	Result     Result            `json:"result"`
	Pnl        float64           `json:"pnl"`
	PnlPct     *float64          `json:"pnl_pct"`
	MarginUSDT *float64          `json:"margin_usdt"`
	Leverage   *float64          `json:"leverage"`
	Summary    string            `json:"summary"`
	Tags       []string          `json:"tags"`
	Image      string            `json:"image"`
	Extra      map[string]string `json:"extra"`
	TradedAt   time.Time         `json:"traded_at"`
	Date       string            `json:"date"` // YYYY-MM-DD, derived from TradedAt
}

// FromPayload normalizes a wire record into the internal shape, whichever
// variant of side/result labelling the API returned.
func FromPayload(p journal.RecordPayload) Record {
	r := Record{
		ID:         p.ID,
		Symbol:     p.Symbol,
		Side:       ParseSide(deref(p.Side)),
		Result:     ParseResult(deref(p.Result)),
		PnlPct:     p.PnlPct,
		MarginUSDT: p.MarginUSDT,
		Leverage:   p.Leverage,
		Summary:    deref(p.Summary),
		Tags:       p.Tags,
		Image:      deref(p.ImageURL),
		Extra:      p.ExtraFields,
	}
	if p.PnlUSDT != nil {
		r.Pnl = *p.PnlUSDT
	}
	if p.TradedAt != nil {
		if t, err := parseTimestamp(*p.TradedAt); err == nil {
			r.TradedAt = t
			r.Date = t.Format("2006-01-02")
		}
	}
	if r.Extra == nil {
		r.Extra = map[string]string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// ToPayload builds the wire shape for create/update calls. Empty optional
// fields are sent as null; tags fall back to the extra-field labels.
func (r Record) ToPayload() journal.RecordPayload {
	p := journal.RecordPayload{
		Symbol:      r.Symbol,
		Side:        optString(string(r.Side)),
		Result:      optString(string(r.Result)),
		Leverage:    r.Leverage,
		MarginUSDT:  r.MarginUSDT,
		PnlUSDT:     optFloat(r.Pnl),
		PnlPct:      r.PnlPct,
		Summary:     optString(r.Summary),
		Tags:        r.Tags,
		ImageURL:    optString(r.Image),
		ExtraFields: nil,
	}
	if len(r.Extra) > 0 {
		p.ExtraFields = r.Extra
	}
	if len(p.Tags) == 0 && len(r.Extra) > 0 {
		for tag := range r.Extra {
			p.Tags = append(p.Tags, tag)
		}
	}
	if !r.TradedAt.IsZero() {
		iso := r.TradedAt.UTC().Format(time.RFC3339)
		p.TradedAt = &iso
	}
	return p
}

// LeverageValue resolves the leverage multiplier: the numeric field first,
// then the legacy extra-field spellings.
func (r Record) LeverageValue() (float64, bool) {
	if r.Leverage != nil {
		return *r.Leverage, true
	}
	for _, key := range []string{"槓桿", "槓桿倍數", "倍數"} {
		if raw, ok := r.Extra[key]; ok && raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func parseTimestamp(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(v float64) *float64 {
	return &v
}
