package balance

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/events"
	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
)

// Checker is the balance-check collaborator surface.
type Checker interface {
	CheckExchange(exchangeID string, creds journal.Credentials) (*journal.CheckResult, error)
}

// Service drives the balance check cycle against the journal backend.
type Service struct {
	store   *Store
	checker Checker
	events  *events.Manager
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new balance service
func NewService(store *Store, checker Checker, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		checker: checker,
		events:  eventManager,
		now:     time.Now,
		log:     log.With().Str("service", "balance").Logger(),
	}
}

// CheckExchange polls one exchange and replaces its snapshot wholesale.
// A failed check is isolated: the exchange keeps its last-known balance and
// positions, its status flips to error, and the cycle moves on.
func (s *Service) CheckExchange(id string) {
	creds, ok := s.store.Credentials(id)
	if !ok {
		return
	}
	prevBalance := s.store.lastBalance(id)

	result, err := s.checker.CheckExchange(id, creds)
	if err != nil {
		s.log.Error().Err(err).Str("exchange", id).Msg("Exchange check failed")
		s.events.Emit(events.ExchangeCheckFailed, "balance", map[string]interface{}{
			"exchange": id,
			"error":    err.Error(),
		})
		s.store.setSnapshot(id, portfolio.ExchangeSnapshot{
			Balance:   prevBalance,
			Positions: s.store.lastPositions(id),
			UpdatedAt: s.now().UnixMilli(),
			Diff24h:   0,
		}, StatusError)
		return
	}

	newBalance := result.Balance
	if newBalance == 0 {
		// A zero balance on an otherwise successful check is more likely a
		// partial upstream response than a drained account.
		newBalance = prevBalance
	}
	positions := result.Positions
	if positions == nil {
		positions = s.store.lastPositions(id)
	}

	s.store.setSnapshot(id, portfolio.ExchangeSnapshot{
		Balance:   newBalance,
		Positions: positions,
		UpdatedAt: s.now().UnixMilli(),
		Diff24h:   newBalance - prevBalance,
	}, ParseStatus(result.Status))
}

// CheckAll walks every connected exchange in sequence, then publishes the
// recomputed total. Sequential checks mean every status has settled before
// subscribers see the new total; a snapshot map never contains an
// interleaved half-cycle.
func (s *Service) CheckAll() {
	ids := s.store.ConnectedIDs()
	s.events.Emit(events.BalancePollStart, "balance", map[string]interface{}{
		"exchanges": len(ids),
	})

	for _, id := range ids {
		s.CheckExchange(id)
	}
	s.store.publish()

	s.events.Emit(events.BalancePollComplete, "balance", map[string]interface{}{
		"exchanges": len(ids),
		"total":     s.store.Total(),
	})
}

// CheckAndPublish checks a single exchange and then publishes, used after a
// connection is first saved.
func (s *Service) CheckAndPublish(id string) {
	s.CheckExchange(id)
	s.store.publish()
}
