package game

import (
	"fmt"

	"github.com/cardtable/bridge/internal/deck"
)

// Strain is the denomination named in a call. The numeric order is the
// ranking used to compare calls at the same level:
// clubs < diamonds < hearts < spades < no trump.
type Strain int

const (
	Clubs Strain = iota
	Diamonds
	Hearts
	Spades
	NoTrump
)

// String returns the strain symbol ("♣".."♠", "NT").
func (s Strain) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	case NoTrump:
		return "NT"
	default:
		return "?"
	}
}

// Name returns the wire name of the strain.
func (s Strain) Name() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	case NoTrump:
		return "NT"
	default:
		return "unknown"
	}
}

// ParseStrain parses a wire strain name.
func ParseStrain(name string) (Strain, error) {
	switch name {
	case "clubs":
		return Clubs, nil
	case "diamonds":
		return Diamonds, nil
	case "hearts":
		return Hearts, nil
	case "spades":
		return Spades, nil
	case "NT":
		return NoTrump, nil
	default:
		return 0, fmt.Errorf("invalid strain: %q", name)
	}
}

// TrumpSuit returns the trump suit the strain implies, or false for
// no trump.
func (s Strain) TrumpSuit() (deck.Suit, bool) {
	switch s {
	case Clubs:
		return deck.Clubs, true
	case Diamonds:
		return deck.Diamonds, true
	case Hearts:
		return deck.Hearts, true
	case Spades:
		return deck.Spades, true
	default:
		return 0, false
	}
}

// BidType distinguishes a call from the three special bids.
type BidType int

const (
	BidPass BidType = iota
	BidCall
	BidDouble
	BidRedouble
)

// Bid is one entry in the auction: either a call of level 1-7 in a
// strain, or pass, double or redouble.
type Bid struct {
	Type   BidType
	Level  int    // 1..7 for calls, 0 otherwise
	Strain Strain // meaningful only for calls
}

// Pass returns a pass.
func Pass() Bid { return Bid{Type: BidPass} }

// Call returns a call of the given level and strain.
func Call(level int, strain Strain) Bid {
	return Bid{Type: BidCall, Level: level, Strain: strain}
}

// Double returns a double.
func Double() Bid { return Bid{Type: BidDouble} }

// Redouble returns a redouble.
func Redouble() Bid { return Bid{Type: BidRedouble} }

// IsCall reports whether the bid names a level and strain.
func (b Bid) IsCall() bool { return b.Type == BidCall }

// String renders the bid the way it appears in a bidding box.
func (b Bid) String() string {
	switch b.Type {
	case BidPass:
		return "Pass"
	case BidDouble:
		return "X"
	case BidRedouble:
		return "XX"
	case BidCall:
		return fmt.Sprintf("%d%s", b.Level, b.Strain)
	default:
		return "?"
	}
}

// outranks reports whether call b strictly outranks call prev:
// higher level, or same level and higher strain.
func (b Bid) outranks(prev Bid) bool {
	if b.Level != prev.Level {
		return b.Level > prev.Level
	}
	return b.Strain > prev.Strain
}
