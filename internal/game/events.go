package game

import "github.com/cardtable/bridge/internal/deck"

// EventType represents a deal event type with type safety
type EventType string

// EventType constants for deal domain events
const (
	EventTypeDealStarted    EventType = "deal_started"
	EventTypeHandDealt      EventType = "hand_dealt"
	EventTypeBidMade        EventType = "bid_made"
	EventTypeAuctionSettled EventType = "auction_settled"
	EventTypePassedOut      EventType = "passed_out"
	EventTypeCardPlayed     EventType = "card_played"
	EventTypeDummyRevealed  EventType = "dummy_revealed"
	EventTypeTrickCompleted EventType = "trick_completed"
	EventTypeTrickCleared   EventType = "trick_cleared"
	EventTypeDealScored     EventType = "deal_scored"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents anything that happens during a deal. Every accepted
// transition produces a deterministic sequence of events for the
// session layer to broadcast.
type Event interface {
	EventType() EventType
}

// DealStartedEvent announces a fresh deal. Published by the session
// layer, which owns deal numbering.
type DealStartedEvent struct {
	DealNumber    int
	Dealer        Seat
	Vulnerability Vulnerability
}

func (e DealStartedEvent) EventType() EventType { return EventTypeDealStarted }

// HandDealtEvent carries one seat's hand at the start of a deal.
// Private: the session layer sends it only to that seat.
type HandDealtEvent struct {
	Seat Seat
	Hand deck.Hand
}

func (e HandDealtEvent) EventType() EventType { return EventTypeHandDealt }

// BidMadeEvent is produced for every accepted bid.
type BidMadeEvent struct {
	Seat Seat
	Bid  Bid
}

func (e BidMadeEvent) EventType() EventType { return EventTypeBidMade }

// AuctionSettledEvent is produced when the auction ends in a contract.
type AuctionSettledEvent struct {
	Contract Contract
	Leader   Seat // opening leader, left of declarer
}

func (e AuctionSettledEvent) EventType() EventType { return EventTypeAuctionSettled }

// PassedOutEvent is produced when all four players pass on the opening
// round. The deal is abandoned; redealing is the session's business.
type PassedOutEvent struct{}

func (e PassedOutEvent) EventType() EventType { return EventTypePassedOut }

// CardPlayedEvent is produced for every accepted play.
type CardPlayedEvent struct {
	Seat Seat
	Card deck.Card
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }

// DummyRevealedEvent is broadcast once per deal, after the opening
// lead.
type DummyRevealedEvent struct {
	Dummy Seat
	Hand  deck.Hand
}

func (e DummyRevealedEvent) EventType() EventType { return EventTypeDummyRevealed }

// TrickCompletedEvent is produced on the fourth card of a trick.
type TrickCompletedEvent struct {
	Winner    Seat
	TricksWon [NumSeats]int
}

func (e TrickCompletedEvent) EventType() EventType { return EventTypeTrickCompleted }

// TrickClearedEvent is produced when a completed trick leaves the table
// and its winner takes the lead.
type TrickClearedEvent struct {
	Leader Seat
}

func (e TrickClearedEvent) EventType() EventType { return EventTypeTrickCleared }

// DealScoredEvent carries the score for a finished deal, including an
// all-zero breakdown for a passed-out deal.
type DealScoredEvent struct {
	Result    ScoreResult
	PassedOut bool
}

func (e DealScoredEvent) EventType() EventType { return EventTypeDealScored }

// EventSubscriber can subscribe to deal events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
