package game

import (
	"fmt"

	"github.com/cardtable/bridge/internal/deck"
)

// Contract is the outcome of a settled auction, immutable for the deal.
type Contract struct {
	Level     int
	Strain    Strain
	Declarer  Seat
	Doubled   bool
	Redoubled bool
}

// Dummy returns the declarer's partner.
func (c Contract) Dummy() Seat {
	return c.Declarer.Partner()
}

// TricksNeeded returns the trick target for the declaring side.
func (c Contract) TricksNeeded() int {
	return c.Level + 6
}

// TrumpSuit returns the trump suit, or false for a no-trump contract.
func (c Contract) TrumpSuit() (deck.Suit, bool) {
	return c.Strain.TrumpSuit()
}

// String renders the contract, e.g. "4♠X by South".
func (c Contract) String() string {
	suffix := ""
	if c.Redoubled {
		suffix = "XX"
	} else if c.Doubled {
		suffix = "X"
	}
	return fmt.Sprintf("%d%s%s by %s", c.Level, c.Strain, suffix, c.Declarer)
}

// resolveContract derives the contract from a completed auction. Level
// and strain come from the last call. The declarer is the first member
// of the winning partnership to have named that strain at any level.
// A double after the final call sets Doubled; a redouble supersedes it.
func resolveContract(entries []AuctionEntry) Contract {
	var last AuctionEntry
	lastIdx := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Bid.IsCall() {
			last = entries[i]
			lastIdx = i
			break
		}
	}

	c := Contract{
		Level:    last.Bid.Level,
		Strain:   last.Bid.Strain,
		Declarer: last.Seat,
	}

	side := last.Seat.Partnership()
	for _, e := range entries {
		if e.Bid.IsCall() && e.Bid.Strain == c.Strain && e.Seat.Partnership() == side {
			c.Declarer = e.Seat
			break
		}
	}

	for _, e := range entries[lastIdx+1:] {
		switch e.Bid.Type {
		case BidDouble:
			c.Doubled = true
		case BidRedouble:
			c.Doubled = false
			c.Redoubled = true
		}
	}

	return c
}
