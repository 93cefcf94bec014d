package balance

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// Storage is the narrow persistence surface the store needs for its
// per-exchange connection config.
type Storage interface {
	GetJSON(key string, dest interface{}) (bool, error)
	SetJSON(key string, v interface{}) error
}

// The KV key holding per-exchange API credentials.
const credentialsKey = "exchangeKeys"

// BalanceHandler receives the portfolio total and a copy of the snapshot map
// after every completed poll cycle.
type BalanceHandler func(total float64, snapshot map[string]portfolio.ExchangeSnapshot)

// ExchangeHandler receives the per-exchange states after every change.
type ExchangeHandler func(states map[string]ExchangeState)

// Store owns the per-exchange connection config and the live balance
// snapshots. It is the single writer for both; all access is serialized
// behind its mutex so poll cycles and HTTP reads cannot interleave.
type Store struct {
	mu          sync.Mutex
	credentials map[string]journal.Credentials
	snapshots   map[string]portfolio.ExchangeSnapshot
	statuses    map[string]Status

	balanceHandlers  []BalanceHandler
	exchangeHandlers []ExchangeHandler

	storage Storage
	log     zerolog.Logger
}

// NewStore creates a balance store, loading any persisted connection config.
func NewStore(storage Storage, log zerolog.Logger) (*Store, error) {
	s := &Store{
		credentials: make(map[string]journal.Credentials),
		snapshots:   make(map[string]portfolio.ExchangeSnapshot),
		statuses:    make(map[string]Status),
		storage:     storage,
		log:         log.With().Str("component", "balance_store").Logger(),
	}

	if _, err := storage.GetJSON(credentialsKey, &s.credentials); err != nil {
		return nil, fmt.Errorf("failed to load exchange credentials: %w", err)
	}
	for id := range s.credentials {
		s.statuses[id] = StatusUnknown
	}

	return s, nil
}

// OnBalanceUpdate subscribes to poll-cycle completions. The latest known
// total and snapshot are replayed synchronously before this returns.
func (s *Store) OnBalanceUpdate(handler BalanceHandler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	s.balanceHandlers = append(s.balanceHandlers, handler)
	total := s.totalLocked()
	snapshot := s.cloneSnapshotsLocked()
	s.mu.Unlock()

	handler(total, snapshot)
}

// OnExchangeUpdate subscribes to per-exchange state changes. The latest
// known states are replayed synchronously before this returns.
func (s *Store) OnExchangeUpdate(handler ExchangeHandler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	s.exchangeHandlers = append(s.exchangeHandlers, handler)
	states := s.statesLocked()
	s.mu.Unlock()

	handler(states)
}

// ConnectedIDs returns the configured exchange ids in stable order.
func (s *Store) ConnectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.credentials))
	for id := range s.credentials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Credentials returns the connection config for one exchange.
func (s *Store) Credentials(id string) (journal.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.credentials[id]
	return creds, ok
}

// SaveCredentials stores the connection config for an exchange and persists
// the full credential map.
func (s *Store) SaveCredentials(id string, creds journal.Credentials) error {
	if creds.APIKey == "" || creds.SecretKey == "" {
		return fmt.Errorf("api key and secret are required")
	}

	s.mu.Lock()
	s.credentials[id] = creds
	if _, ok := s.statuses[id]; !ok {
		s.statuses[id] = StatusUnknown
	}
	err := s.storage.SetJSON(credentialsKey, s.credentials)
	states := s.statesLocked()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to persist exchange credentials: %w", err)
	}
	s.notifyExchanges(states)
	return nil
}

// RemoveExchange drops an exchange connection and its snapshot.
func (s *Store) RemoveExchange(id string) error {
	s.mu.Lock()
	delete(s.credentials, id)
	delete(s.snapshots, id)
	delete(s.statuses, id)
	err := s.storage.SetJSON(credentialsKey, s.credentials)
	states := s.statesLocked()
	total := s.totalLocked()
	snapshot := s.cloneSnapshotsLocked()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to persist exchange credentials: %w", err)
	}
	s.notifyExchanges(states)
	s.notifyBalances(total, snapshot)
	return nil
}

// Snapshot returns a copy of the live snapshot map.
func (s *Store) Snapshot() map[string]portfolio.ExchangeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneSnapshotsLocked()
}

// States returns the per-exchange state views.
func (s *Store) States() map[string]ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statesLocked()
}

// Total returns the sum of all live exchange balances.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// setSnapshot replaces one exchange's snapshot wholesale.
func (s *Store) setSnapshot(id string, snap portfolio.ExchangeSnapshot, status Status) {
	s.mu.Lock()
	s.snapshots[id] = snap
	s.statuses[id] = status
	s.mu.Unlock()
}

// lastBalance returns the last-known balance for an exchange, 0 when none.
func (s *Store) lastBalance(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[id].Balance
}

// lastPositions returns the last-known positions for an exchange.
func (s *Store) lastPositions(id string) []portfolio.PositionRaw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[id].Positions
}

// publish recomputes the total and fans out to all subscribers.
func (s *Store) publish() {
	s.mu.Lock()
	total := s.totalLocked()
	snapshot := s.cloneSnapshotsLocked()
	states := s.statesLocked()
	s.mu.Unlock()

	s.notifyBalances(total, snapshot)
	s.notifyExchanges(states)
}

func (s *Store) notifyBalances(total float64, snapshot map[string]portfolio.ExchangeSnapshot) {
	s.mu.Lock()
	handlers := append([]BalanceHandler(nil), s.balanceHandlers...)
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(total, snapshot)
	}
}

func (s *Store) notifyExchanges(states map[string]ExchangeState) {
	s.mu.Lock()
	handlers := append([]ExchangeHandler(nil), s.exchangeHandlers...)
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(states)
	}
}

func (s *Store) totalLocked() float64 {
	var sum float64
	for _, snap := range s.snapshots {
		sum += snap.Balance
	}
	return sum
}

func (s *Store) cloneSnapshotsLocked() map[string]portfolio.ExchangeSnapshot {
	clone := make(map[string]portfolio.ExchangeSnapshot, len(s.snapshots))
	for id, snap := range s.snapshots {
		positions := append([]portfolio.PositionRaw(nil), snap.Positions...)
		snap.Positions = positions
		clone[id] = snap
	}
	return clone
}

func (s *Store) statesLocked() map[string]ExchangeState {
	states := make(map[string]ExchangeState, len(s.credentials))
	for id := range s.credentials {
		status, ok := s.statuses[id]
		if !ok {
			status = StatusUnknown
		}
		states[id] = ExchangeState{
			ID:       id,
			Meta:     MetaFor(id),
			Status:   status,
			Snapshot: s.snapshots[id],
		}
	}
	return states
}
