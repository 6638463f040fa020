package game

import "fmt"

// AuctionState is the bidding state machine's phase.
type AuctionState int

const (
	AuctionBidding AuctionState = iota
	AuctionSettled
	AuctionPassedOut
)

// String returns the auction state name.
func (s AuctionState) String() string {
	switch s {
	case AuctionBidding:
		return "bidding"
	case AuctionSettled:
		return "settled"
	case AuctionPassedOut:
		return "passed out"
	default:
		return "unknown"
	}
}

// AuctionEntry is one accepted bid, in turn order from the dealer.
type AuctionEntry struct {
	Seat Seat
	Bid  Bid
}

// Auction enforces bidding legality and turn rotation. Replaying the
// accepted entries through Submit always reproduces the auction.
type Auction struct {
	dealer  Seat
	entries []AuctionEntry
	turn    Seat
	state   AuctionState
}

// NewAuction starts an auction with the dealer to bid first.
func NewAuction(dealer Seat) *Auction {
	return &Auction{dealer: dealer, turn: dealer, state: AuctionBidding}
}

// Dealer returns the seat that opened the auction.
func (a *Auction) Dealer() Seat { return a.dealer }

// Turn returns the seat due to bid.
func (a *Auction) Turn() Seat { return a.turn }

// State returns the auction's state.
func (a *Auction) State() AuctionState { return a.state }

// Entries returns the accepted bids in order.
func (a *Auction) Entries() []AuctionEntry {
	out := make([]AuctionEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// lastCall returns the most recent call and its index, or ok=false if
// no call has been made.
func (a *Auction) lastCall() (AuctionEntry, int, bool) {
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].Bid.IsCall() {
			return a.entries[i], i, true
		}
	}
	return AuctionEntry{}, -1, false
}

// Submit applies one bid from the seat whose turn it is. An illegal or
// out-of-turn bid is rejected with a typed error and the auction is
// unchanged. After an accepted bid the turn advances clockwise and the
// termination rules run.
func (a *Auction) Submit(seat Seat, bid Bid) error {
	if a.state != AuctionBidding {
		return fmt.Errorf("%w: auction already %s", ErrInvalidDealState, a.state)
	}
	if seat != a.turn {
		return outOfTurnError(seat, a.turn)
	}

	switch bid.Type {
	case BidPass:
		// Always legal.

	case BidCall:
		if bid.Level < 1 || bid.Level > 7 {
			return illegalBidError(bid, "level must be 1-7")
		}
		if bid.Strain < Clubs || bid.Strain > NoTrump {
			return illegalBidError(bid, "unknown strain")
		}
		if last, _, ok := a.lastCall(); ok && !bid.outranks(last.Bid) {
			return illegalBidError(bid, "insufficient bid")
		}

	case BidDouble:
		last, idx, ok := a.lastCall()
		if !ok {
			return illegalBidError(bid, "nothing to double")
		}
		for _, e := range a.entries[idx+1:] {
			if e.Bid.Type == BidDouble || e.Bid.Type == BidRedouble {
				return illegalBidError(bid, "call already doubled")
			}
		}
		if last.Seat.Partnership() == seat.Partnership() {
			return illegalBidError(bid, "cannot double partner's call")
		}

	case BidRedouble:
		last, idx, ok := a.lastCall()
		if !ok {
			return illegalBidError(bid, "nothing to redouble")
		}
		doubled := false
		for _, e := range a.entries[idx+1:] {
			switch e.Bid.Type {
			case BidDouble:
				doubled = true
			case BidRedouble:
				return illegalBidError(bid, "call already redoubled")
			}
		}
		if !doubled {
			return illegalBidError(bid, "call is not doubled")
		}
		if last.Seat.Partnership() != seat.Partnership() {
			return illegalBidError(bid, "only the doubled side may redouble")
		}

	default:
		return illegalBidError(bid, "unknown bid type")
	}

	a.entries = append(a.entries, AuctionEntry{Seat: seat, Bid: bid})
	a.checkTermination()
	if a.state == AuctionBidding {
		a.turn = a.turn.Next()
	}
	return nil
}

// checkTermination applies the two ending rules: four opening passes
// abandon the deal; otherwise three passes after a call settle it.
func (a *Auction) checkTermination() {
	n := len(a.entries)
	if n == NumSeats && a.allPasses(0) {
		a.state = AuctionPassedOut
		return
	}
	if _, _, ok := a.lastCall(); ok && n >= 4 && a.allPasses(n-3) {
		a.state = AuctionSettled
	}
}

// allPasses reports whether every entry from index i on is a pass.
func (a *Auction) allPasses(i int) bool {
	for ; i < len(a.entries); i++ {
		if a.entries[i].Bid.Type != BidPass {
			return false
		}
	}
	return true
}

// Contract derives the final contract from a settled auction.
func (a *Auction) Contract() (Contract, bool) {
	if a.state != AuctionSettled {
		return Contract{}, false
	}
	return resolveContract(a.entries), true
}
