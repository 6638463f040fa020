// Package session drives consecutive deals for one table: deal
// numbering, dealer rotation, vulnerability cycling, the pause between
// tricks, and persistence of completed deals. The engine stays pure;
// everything clock- or storage-shaped lives here.
package session

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/cardtable/bridge/internal/deck"
	"github.com/cardtable/bridge/internal/game"
	"github.com/cardtable/bridge/internal/history"
)

var (
	// ErrDealInProgress rejects starting a deal while one is running.
	ErrDealInProgress = errors.New("deal in progress")

	// ErrNoDeal rejects bids and plays before the first deal starts.
	ErrNoDeal = errors.New("no deal in progress")
)

const defaultTrickPause = 2 * time.Second

// Session serializes all access to one table's deal. Event subscribers
// are invoked synchronously in submission order, so a client always
// observes events in the order the engine produced them.
type Session struct {
	id     string
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand
	bus    game.EventBus
	store  history.Store

	trickPause time.Duration

	mu         sync.Mutex
	dealNumber int
	deal       *game.Deal
	pauseTimer *quartz.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithClock substitutes the clock, for tests.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithStore sets the deal history store.
func WithStore(store history.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithTrickPause sets how long a completed trick stays on the table.
func WithTrickPause(d time.Duration) Option {
	return func(s *Session) { s.trickPause = d }
}

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a session for the given table ID. The RNG seeds every
// shuffle, so a seeded session replays identically.
func New(id string, rng *rand.Rand, opts ...Option) *Session {
	s := &Session{
		id:         id,
		rng:        rng,
		clock:      quartz.NewReal(),
		bus:        game.NewEventBus(),
		store:      history.NewMemoryStore(),
		trickPause: defaultTrickPause,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("session").With("id", id)
	return s
}

// ID returns the session's table ID.
func (s *Session) ID() string { return s.id }

// Close stops the pause timer and drops the current deal. Further
// submissions are rejected with ErrNoDeal.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPauseTimer()
	s.deal = nil
}

// Subscribe registers an event subscriber.
func (s *Session) Subscribe(sub game.EventSubscriber) {
	s.bus.Subscribe(sub)
}

// Unsubscribe removes an event subscriber.
func (s *Session) Unsubscribe(sub game.EventSubscriber) {
	s.bus.Unsubscribe(sub)
}

// DealNumber returns the current deal number, 0 before the first deal.
func (s *Session) DealNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealNumber
}

// Deal returns the current deal, or nil before the first StartDeal.
// Callers must treat it as read-only.
func (s *Session) Deal() *game.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deal
}

// Totals returns the running partnership totals across completed
// deals.
func (s *Session) Totals() (ns, ew int, err error) {
	return s.store.GameTotals(s.id)
}

// StartDeal begins the next deal. The dealer rotates clockwise from
// North and the vulnerability follows the four-deal cycle. Returns the
// new deal number.
func (s *Session) StartDeal(opts ...game.DealOption) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deal != nil {
		switch s.deal.Phase() {
		case game.PhaseComplete, game.PhasePassedOut:
		default:
			return 0, ErrDealInProgress
		}
	}
	s.stopPauseTimer()

	s.dealNumber++
	dealer := game.Seat(s.dealNumber % game.NumSeats)
	vul := game.VulnerabilityForDeal(s.dealNumber)
	s.deal = game.NewDeal(s.rng, dealer, vul, opts...)

	s.logger.Info("Deal started",
		"deal", s.dealNumber, "dealer", dealer, "vulnerability", vul)

	s.bus.Publish(game.DealStartedEvent{
		DealNumber:    s.dealNumber,
		Dealer:        dealer,
		Vulnerability: vul,
	})
	for _, ev := range s.deal.HandDealtEvents() {
		s.bus.Publish(ev)
	}

	return s.dealNumber, nil
}

// SubmitBid applies one bid and broadcasts the resulting events.
func (s *Session) SubmitBid(seat game.Seat, bid game.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deal == nil {
		return ErrNoDeal
	}

	events, err := s.deal.SubmitBid(seat, bid)
	if err != nil {
		return err
	}

	s.logger.Debug("Bid accepted", "seat", seat, "bid", bid)
	s.dispatch(events)
	return nil
}

// SubmitPlay applies one card play and broadcasts the resulting
// events. After a completed trick the session holds the trick on the
// table for the configured pause, then clears it and announces the new
// leader.
func (s *Session) SubmitPlay(actor game.Seat, card deck.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deal == nil {
		return ErrNoDeal
	}

	events, err := s.deal.SubmitPlay(actor, card)
	if err != nil {
		return err
	}

	s.logger.Debug("Card played", "actor", actor, "card", card)
	s.dispatch(events)

	if s.deal.Phase() == game.PhaseTrickDone {
		s.pauseTimer = s.clock.AfterFunc(s.trickPause, s.clearTrick)
	}
	return nil
}

// clearTrick runs when the trick pause elapses.
func (s *Session) clearTrick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deal == nil || s.deal.Phase() != game.PhaseTrickDone {
		return
	}

	leader, err := s.deal.AdvanceAfterTrick()
	if err != nil {
		s.logger.Error("Failed to clear trick", "error", err)
		return
	}
	s.bus.Publish(game.TrickClearedEvent{Leader: leader})
}

// dispatch publishes engine events and persists the deal when one of
// them is the score.
func (s *Session) dispatch(events []game.Event) {
	for _, ev := range events {
		s.bus.Publish(ev)
		if scored, ok := ev.(game.DealScoredEvent); ok {
			s.persistDeal(scored)
		}
	}
}

// persistDeal records a finished deal. A storage failure is logged and
// swallowed; play continues without history.
func (s *Session) persistDeal(scored game.DealScoredEvent) {
	record := &history.DealRecord{
		ID:            uuid.NewString(),
		GameID:        s.id,
		DealNumber:    s.dealNumber,
		Dealer:        s.deal.Dealer().String(),
		Vulnerability: s.deal.Vulnerability().String(),
		PassedOut:     scored.PassedOut,
		ContractMade:  scored.Result.ContractMade,
		TricksTaken:   scored.Result.TricksTaken,
		CreatedAt:     s.clock.Now().UTC(),
	}

	for _, entry := range s.deal.Auction().Entries() {
		record.Auction = append(record.Auction, fmt.Sprintf("%s: %s", entry.Seat, entry.Bid))
	}

	if contract, ok := s.deal.Contract(); ok {
		record.Contract = contract.String()
		record.Declarer = contract.Declarer.String()

		declarerTotal := scored.Result.Declarer.Total
		defenderTotal := scored.Result.Defender.Total
		if scored.Result.DeclarerSide == game.NorthSouth {
			record.ScoreNS = declarerTotal
			record.ScoreEW = defenderTotal
		} else {
			record.ScoreEW = declarerTotal
			record.ScoreNS = defenderTotal
		}
	}

	if err := s.store.SaveDeal(record); err != nil {
		s.logger.Error("Failed to save deal record", "error", err, "deal", s.dealNumber)
		return
	}
	s.logger.Info("Deal recorded",
		"deal", s.dealNumber, "contract", record.Contract,
		"ns", record.ScoreNS, "ew", record.ScoreEW)
}

func (s *Session) stopPauseTimer() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
}
