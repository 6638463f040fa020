package game

import (
	rand "math/rand/v2"

	"github.com/cardtable/bridge/internal/deck"
)

// Phase is the deal lifecycle phase.
type Phase int

const (
	// PhaseBidding runs the auction.
	PhaseBidding Phase = iota
	// PhasePlaying awaits a card from the seat on turn.
	PhasePlaying
	// PhaseTrickDone holds a completed trick on the table until the
	// session clears it with AdvanceAfterTrick. The pause is external
	// so tests can drive it deterministically.
	PhaseTrickDone
	// PhaseComplete means all 13 tricks are played and the deal scored.
	PhaseComplete
	// PhasePassedOut means the auction ended with four passes.
	PhasePassedOut
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBidding:
		return "bidding"
	case PhasePlaying:
		return "playing"
	case PhaseTrickDone:
		return "trick done"
	case PhaseComplete:
		return "complete"
	case PhasePassedOut:
		return "passed out"
	default:
		return "unknown"
	}
}

// Deal owns the authoritative state of one bridge deal. All mutating
// operations are synchronous, atomic, and reject illegal input with a
// typed error, leaving the state unchanged. The caller serializes
// access; a Deal is not safe for concurrent mutation.
type Deal struct {
	dealer Seat
	vul    Vulnerability

	hands   [NumSeats]deck.Hand
	auction *Auction

	contract *Contract
	trump    deck.Suit
	hasTrump bool

	trick         Trick
	turn          Seat
	leader        Seat
	lastWinner    Seat
	tricksWon     [NumSeats]int
	dummyRevealed bool

	phase Phase
}

// DealOption configures a Deal during creation.
type DealOption func(*dealConfig)

type dealConfig struct {
	hands    *[NumSeats]deck.Hand
	haveDeal bool
}

// WithHands fixes the dealt hands instead of shuffling, for
// deterministic tests and replays.
func WithHands(hands [NumSeats]deck.Hand) DealOption {
	return func(c *dealConfig) {
		copied := hands
		for i := range copied {
			copied[i] = hands[i].Copy()
		}
		c.hands = &copied
		c.haveDeal = true
	}
}

// NewDeal shuffles, deals 13 cards to each seat, and opens the auction
// with the dealer to bid. The RNG is required unless WithHands fixes
// the deal.
func NewDeal(rng *rand.Rand, dealer Seat, vul Vulnerability, opts ...DealOption) *Deal {
	cfg := &dealConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &Deal{
		dealer:  dealer,
		vul:     vul,
		auction: NewAuction(dealer),
		phase:   PhaseBidding,
	}

	if cfg.haveDeal {
		d.hands = *cfg.hands
	} else {
		if rng == nil {
			panic("rng is required when hands are not fixed")
		}
		d.hands = deck.New(rng).Deal()
	}

	return d
}

// Dealer returns the seat that dealt and opened the bidding.
func (d *Deal) Dealer() Seat { return d.dealer }

// Vulnerability returns the deal's vulnerability.
func (d *Deal) Vulnerability() Vulnerability { return d.vul }

// Phase returns the deal's lifecycle phase.
func (d *Deal) Phase() Phase { return d.phase }

// Auction returns the auction for read access.
func (d *Deal) Auction() *Auction { return d.auction }

// Contract returns the settled contract, or false during bidding or
// after a pass-out.
func (d *Deal) Contract() (Contract, bool) {
	if d.contract == nil {
		return Contract{}, false
	}
	return *d.contract, true
}

// Hand returns a copy of the seat's current hand.
func (d *Deal) Hand(seat Seat) deck.Hand {
	return d.hands[seat].Copy()
}

// Turn returns the seat due to act in the current phase. While a
// completed trick is on the table this is the winner, who leads next.
func (d *Deal) Turn() Seat {
	switch d.phase {
	case PhaseBidding:
		return d.auction.Turn()
	case PhaseTrickDone:
		return d.lastWinner
	default:
		return d.turn
	}
}

// Leader returns the seat that led (or will lead) the current trick.
func (d *Deal) Leader() Seat { return d.leader }

// CurrentTrick returns the plays on the table.
func (d *Deal) CurrentTrick() []Play { return d.trick.Plays() }

// TricksWon returns the per-seat trick tally.
func (d *Deal) TricksWon() [NumSeats]int { return d.tricksWon }

// DummyRevealed reports whether the opening lead has exposed dummy.
func (d *Deal) DummyRevealed() bool { return d.dummyRevealed }

// HandDealtEvents returns one private HandDealt event per seat.
func (d *Deal) HandDealtEvents() []Event {
	events := make([]Event, 0, NumSeats)
	for seat := West; seat <= South; seat++ {
		events = append(events, HandDealtEvent{Seat: seat, Hand: d.hands[seat].Copy()})
	}
	return events
}

// SubmitBid applies one bid from the given seat. On acceptance it
// returns the events to broadcast: the bid itself, then the auction
// outcome if this bid ended it.
func (d *Deal) SubmitBid(seat Seat, bid Bid) ([]Event, error) {
	if d.phase != PhaseBidding {
		return nil, invalidStateError("bid", d.phase)
	}

	if err := d.auction.Submit(seat, bid); err != nil {
		return nil, err
	}

	events := []Event{BidMadeEvent{Seat: seat, Bid: bid}}

	switch d.auction.State() {
	case AuctionSettled:
		contract, _ := d.auction.Contract()
		d.contract = &contract
		d.trump, d.hasTrump = contract.TrumpSuit()
		d.leader = contract.Declarer.Next()
		d.turn = d.leader
		d.phase = PhasePlaying
		events = append(events, AuctionSettledEvent{Contract: contract, Leader: d.leader})

	case AuctionPassedOut:
		d.phase = PhasePassedOut
		events = append(events,
			PassedOutEvent{},
			DealScoredEvent{Result: PassedOutResult(), PassedOut: true},
		)
	}

	return events, nil
}

// SubmitPlay applies one card play. actor is the submitting seat; when
// it is dummy's turn only the declarer's submission is authoritative.
// The card is always played from the hand of the seat on turn.
func (d *Deal) SubmitPlay(actor Seat, card deck.Card) ([]Event, error) {
	switch d.phase {
	case PhasePlaying:
	case PhaseTrickDone:
		return nil, invalidStateError("play before trick cleared", d.phase)
	default:
		return nil, invalidStateError("play", d.phase)
	}

	turn := d.turn
	if turn == d.contract.Dummy() {
		if actor != d.contract.Declarer {
			return nil, outOfTurnError(actor, turn)
		}
	} else if actor != turn {
		return nil, outOfTurnError(actor, turn)
	}

	hand := d.hands[turn]
	if !hand.Contains(card) {
		return nil, illegalPlayError("card not in hand")
	}
	if lead, ok := d.trick.LeadSuit(); ok && card.Suit != lead && hand.HasSuit(lead) {
		return nil, illegalPlayError("must follow suit")
	}

	d.hands[turn], _ = hand.Remove(card)
	d.trick.add(turn, card)

	events := []Event{CardPlayedEvent{Seat: turn, Card: card}}

	if !d.dummyRevealed {
		d.dummyRevealed = true
		dummy := d.contract.Dummy()
		events = append(events, DummyRevealedEvent{Dummy: dummy, Hand: d.hands[dummy].Copy()})
	}

	if !d.trick.IsComplete() {
		d.turn = turn.Next()
		return events, nil
	}

	winner := d.trick.Winner(d.trump, d.hasTrump)
	d.tricksWon[winner]++
	d.lastWinner = winner
	events = append(events, TrickCompletedEvent{Winner: winner, TricksWon: d.tricksWon})

	if d.totalTricks() == deck.HandSize {
		d.phase = PhaseComplete
		result := Score(*d.contract, d.declarerTricks(), d.vul)
		events = append(events, DealScoredEvent{Result: result})
	} else {
		d.phase = PhaseTrickDone
	}

	return events, nil
}

// AdvanceAfterTrick clears a completed trick from the table and hands
// the lead to its winner. It is a distinct operation so the display
// pause between tricks stays outside the engine.
func (d *Deal) AdvanceAfterTrick() (Seat, error) {
	if d.phase != PhaseTrickDone {
		return 0, invalidStateError("advance", d.phase)
	}
	d.trick.clear()
	d.leader = d.lastWinner
	d.turn = d.lastWinner
	d.phase = PhasePlaying
	return d.leader, nil
}

// Result returns the score for a complete deal, or false while the
// deal is still in progress.
func (d *Deal) Result() (ScoreResult, bool) {
	switch d.phase {
	case PhaseComplete:
		return Score(*d.contract, d.declarerTricks(), d.vul), true
	case PhasePassedOut:
		return PassedOutResult(), true
	default:
		return ScoreResult{}, false
	}
}

func (d *Deal) totalTricks() int {
	total := 0
	for _, n := range d.tricksWon {
		total += n
	}
	return total
}

func (d *Deal) declarerTricks() int {
	declarer := d.contract.Declarer
	return d.tricksWon[declarer] + d.tricksWon[declarer.Partner()]
}
