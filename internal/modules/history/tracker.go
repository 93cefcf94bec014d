package history

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Limit is the maximum number of daily points kept; the oldest entry is
// evicted first on overflow.
const Limit = 120

// The KV key the history series persists under.
const storageKey = "assetHistory"

// Point is one persisted daily total-portfolio-value sample.
type Point struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"` // epoch ms
}

// Change compares the two most recent entries.
type Change struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
	Previous float64 `json:"previous"`
}

// Storage is the narrow persistence surface the tracker needs.
type Storage interface {
	GetJSON(key string, dest interface{}) (bool, error)
	SetJSON(key string, v interface{}) error
}

// Tracker maintains the capped daily series of total portfolio value.
// Entries are stored in insertion order; any computation that depends on
// chronology goes through Sorted first.
type Tracker struct {
	mu      sync.Mutex
	entries []Point
	storage Storage
	now     func() time.Time
	log     zerolog.Logger
}

// NewTracker creates a tracker, loading any persisted series. Malformed
// persisted entries are dropped rather than propagated.
func NewTracker(storage Storage, log zerolog.Logger) (*Tracker, error) {
	t := &Tracker{
		storage: storage,
		now:     time.Now,
		log:     log.With().Str("component", "history").Logger(),
	}

	var stored []Point
	if _, err := storage.GetJSON(storageKey, &stored); err != nil {
		return nil, fmt.Errorf("failed to load asset history: %w", err)
	}
	for _, entry := range stored {
		if entry.Date == "" {
			continue
		}
		if entry.Timestamp == 0 {
			if parsed, err := time.Parse("2006-01-02", entry.Date); err == nil {
				entry.Timestamp = parsed.UnixMilli()
			}
		}
		t.entries = append(t.entries, entry)
	}

	return t, nil
}

// Update records the given total under today's date. Repeated calls within
// the same calendar day overwrite value and timestamp in place; a new day
// appends and evicts the oldest entry past the cap. The series is persisted
// after every mutation.
func (t *Tracker) Update(total float64) error {
	t.mu.Lock()
	now := t.now()
	today := now.Format("2006-01-02")
	ts := now.UnixMilli()

	updated := false
	for i := range t.entries {
		if t.entries[i].Date == today {
			t.entries[i].Value = total
			t.entries[i].Timestamp = ts
			updated = true
			break
		}
	}
	if !updated {
		t.entries = append(t.entries, Point{Date: today, Value: total, Timestamp: ts})
		for len(t.entries) > Limit {
			t.entries = t.entries[1:]
		}
	}
	snapshot := append([]Point(nil), t.entries...)
	t.mu.Unlock()

	if err := t.storage.SetJSON(storageKey, snapshot); err != nil {
		return fmt.Errorf("failed to persist asset history: %w", err)
	}
	return nil
}

// Len returns the number of stored points.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a copy of the series in storage order.
func (t *Tracker) Entries() []Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Point(nil), t.entries...)
}

// ComputeChange compares the last two entries in storage order. With fewer
// than two entries it returns zero deltas and the single existing value (or
// 0) as previous.
func (t *Tracker) ComputeChange() Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) < 2 {
		var previous float64
		if len(t.entries) == 1 {
			previous = t.entries[0].Value
		}
		return Change{Previous: previous}
	}

	last := t.entries[len(t.entries)-1].Value
	prev := t.entries[len(t.entries)-2].Value
	change := Change{Absolute: last - prev, Previous: prev}
	if prev != 0 {
		change.Percent = change.Absolute / prev * 100
	}
	return change
}

// Sorted returns the series re-sorted by timestamp, dropping entries whose
// timestamp is not a finite usable value. Callers must never assume raw
// storage order is chronological.
func (t *Tracker) Sorted() []Point {
	entries := t.Entries()
	sorted := entries[:0]
	for _, entry := range entries {
		if entry.Timestamp != 0 && !math.IsNaN(float64(entry.Timestamp)) {
			sorted = append(sorted, entry)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// EstimateValueAt interpolates the portfolio value at an arbitrary timestamp
// over a chronologically sorted series. Timestamps before the first point
// clamp to the earliest value, after the last point to the latest; a
// timestamp landing exactly on a point returns that point's value with no
// interpolation drift.
func EstimateValueAt(sorted []Point, ts int64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	prev := sorted[0]
	next := sorted[len(sorted)-1]
	for _, entry := range sorted {
		if entry.Timestamp <= ts {
			prev = entry
		}
		if entry.Timestamp >= ts {
			next = entry
			break
		}
	}
	if next.Timestamp == prev.Timestamp {
		return prev.Value
	}
	span := next.Timestamp - prev.Timestamp
	if span <= 0 {
		return prev.Value
	}
	ratio := float64(ts-prev.Timestamp) / float64(span)
	return prev.Value + (next.Value-prev.Value)*ratio
}
