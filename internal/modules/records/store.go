package records

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/events"
)

// The KV key the user-defined tag list persists under.
const tagsKey = "customRecordTags"

// DefaultTags are the built-in extra-field labels offered on the record form.
var DefaultTags = []string{"槓桿", "收益率", "手續費", "倉位大小", "風險比"}

// APIClient is the records collaborator surface.
type APIClient interface {
	ListRecords() ([]journal.RecordPayload, error)
	CreateRecord(payload journal.RecordPayload) (*journal.RecordPayload, error)
	UpdateRecord(id int64, payload journal.RecordPayload) (*journal.RecordPayload, error)
	DeleteRecord(id int64) error
}

// Storage is the narrow persistence surface for custom tags.
type Storage interface {
	GetJSON(key string, dest interface{}) (bool, error)
	SetJSON(key string, v interface{}) error
}

// Store caches the trade-record list. The server response is authoritative:
// every mutation round-trips through the API and the cache is reconciled
// with what came back, never updated optimistically. The cached list is
// kept sorted by traded_at descending after every mutation.
type Store struct {
	mu         sync.Mutex
	records    []Record
	customTags []string

	client  APIClient
	storage Storage
	events  *events.Manager
	log     zerolog.Logger
}

// NewStore creates a record store, loading persisted custom tags.
func NewStore(client APIClient, storage Storage, eventManager *events.Manager, log zerolog.Logger) (*Store, error) {
	s := &Store{
		client:  client,
		storage: storage,
		events:  eventManager,
		log:     log.With().Str("component", "records").Logger(),
	}
	if _, err := storage.GetJSON(tagsKey, &s.customTags); err != nil {
		return nil, fmt.Errorf("failed to load custom tags: %w", err)
	}
	return s, nil
}

// Refresh replaces the cache with the full server list. On failure the
// cache is reset to empty so the UI never shows stale rows labelled fresh.
func (s *Store) Refresh() error {
	list, err := s.client.ListRecords()
	if err != nil {
		s.mu.Lock()
		s.records = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to refresh records: %w", err)
	}

	normalized := make([]Record, 0, len(list))
	for _, payload := range list {
		normalized = append(normalized, FromPayload(payload))
	}

	s.mu.Lock()
	s.records = normalized
	s.sortLocked()
	s.mu.Unlock()
	return nil
}

// List returns a copy of the cached records.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Get returns one cached record by id.
func (s *Store) Get(id int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Create submits a new record and reconciles the cache with the server copy.
func (s *Store) Create(record Record) (Record, error) {
	if record.Symbol == "" || record.TradedAt.IsZero() {
		return Record{}, fmt.Errorf("symbol and traded_at are required")
	}

	created, err := s.client.CreateRecord(record.ToPayload())
	if err != nil {
		return Record{}, fmt.Errorf("failed to create record: %w", err)
	}

	normalized := FromPayload(*created)
	s.upsert(normalized)
	s.events.Emit(events.RecordCreated, "records", map[string]interface{}{
		"id": normalized.ID, "symbol": normalized.Symbol,
	})
	return normalized, nil
}

// Update submits changes for a record and reconciles with the server copy.
func (s *Store) Update(id int64, record Record) (Record, error) {
	updated, err := s.client.UpdateRecord(id, record.ToPayload())
	if err != nil {
		return Record{}, fmt.Errorf("failed to update record: %w", err)
	}

	normalized := FromPayload(*updated)
	if normalized.ID == 0 {
		normalized.ID = id
	}
	s.upsert(normalized)
	s.events.Emit(events.RecordUpdated, "records", map[string]interface{}{"id": id})
	return normalized, nil
}

// Delete removes a record on the server, then from the cache.
func (s *Store) Delete(id int64) error {
	if err := s.client.DeleteRecord(id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	s.mu.Lock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.mu.Unlock()

	s.events.Emit(events.RecordDeleted, "records", map[string]interface{}{"id": id})
	return nil
}

// Reorder applies an explicit id order to the cache, as produced by a
// finished card drag. Ids absent from the order sink to the end; the next
// regular mutation restores traded_at ordering.
func (s *Store) Reorder(ids []int64) {
	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	s.mu.Lock()
	sort.SliceStable(s.records, func(i, j int) bool {
		pi, iok := index[s.records[i].ID]
		pj, jok := index[s.records[j].ID]
		if iok != jok {
			return iok
		}
		return pi < pj
	})
	s.mu.Unlock()

	s.events.Emit(events.RecordsReordered, "records", map[string]interface{}{
		"count": len(ids),
	})
}

// Tags returns the default tags followed by the user-defined ones.
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(append([]string(nil), DefaultTags...), s.customTags...)
}

// AddTag registers a user-defined tag. Duplicates of either the default or
// custom set are rejected.
func (s *Store) AddTag(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range append(append([]string(nil), DefaultTags...), s.customTags...) {
		if existing == name {
			return fmt.Errorf("tag %q already exists", name)
		}
	}
	s.customTags = append(s.customTags, name)
	if err := s.storage.SetJSON(tagsKey, s.customTags); err != nil {
		return fmt.Errorf("failed to persist custom tags: %w", err)
	}
	return nil
}

// RemoveTag drops a user-defined tag; default tags cannot be removed.
func (s *Store) RemoveTag(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.customTags[:0]
	for _, tag := range s.customTags {
		if tag != name {
			kept = append(kept, tag)
		}
	}
	s.customTags = kept
	if err := s.storage.SetJSON(tagsKey, s.customTags); err != nil {
		return fmt.Errorf("failed to persist custom tags: %w", err)
	}
	return nil
}

func (s *Store) upsert(record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.records {
		if s.records[i].ID == record.ID {
			s.records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append([]Record{record}, s.records...)
	}
	s.sortLocked()
}

// sortLocked restores the standing traded_at-descending invariant.
func (s *Store) sortLocked() {
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].TradedAt.After(s.records[j].TradedAt)
	})
}
