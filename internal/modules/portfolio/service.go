package portfolio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/modules/history"
)

// Service rebuilds the portfolio model on every balance notification and
// folds the new total into the asset history. The model is replaced
// wholesale; nothing is incrementally mutated, so a reader can never see a
// half-updated aggregate.
type Service struct {
	mu        sync.Mutex
	model     Model
	updatedAt time.Time

	tracker *history.Tracker
	log     zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(tracker *history.Tracker, log zerolog.Logger) *Service {
	return &Service{
		tracker: tracker,
		log:     log.With().Str("service", "portfolio").Logger(),
	}
}

// HandleBalanceUpdate is the balance-store subscription target: it rebuilds
// the model from the snapshot map and records today's total.
func (s *Service) HandleBalanceUpdate(_ float64, snapshot map[string]ExchangeSnapshot) {
	model := BuildModel(snapshot)

	s.mu.Lock()
	s.model = model
	s.updatedAt = time.Now()
	s.mu.Unlock()

	if err := s.tracker.Update(model.TotalValue); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist asset history")
	}
}

// Model returns the latest portfolio model.
func (s *Service) Model() Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Change returns the day-over-day change from the history tracker.
func (s *Service) Change() history.Change {
	return s.tracker.ComputeChange()
}

// UpdatedAt returns when the model was last rebuilt.
func (s *Service) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
