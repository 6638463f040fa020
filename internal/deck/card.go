package deck

import "fmt"

// Suit represents a card suit. The numeric order matches the 1-52 wire
// encoding used by existing clients: spades, hearts, diamonds, clubs.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the symbol for a suit.
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the lowercase suit name used on the wire.
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "unknown"
	}
}

// ParseSuit parses a lowercase suit name.
func ParseSuit(name string) (Suit, error) {
	switch name {
	case "spades":
		return Spades, nil
	case "hearts":
		return Hearts, nil
	case "diamonds":
		return Diamonds, nil
	case "clubs":
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit: %q", name)
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank, 0 (Two) through 12 (Ace).
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return fmt.Sprintf("%d", int(r)+2)
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. Immutable value.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Number returns the 1-52 wire encoding of the card:
// suit*13 + rank + 1 over suit order spades, hearts, diamonds, clubs.
// Existing clients depend on this mapping exactly.
func (c Card) Number() int {
	return int(c.Suit)*13 + int(c.Rank) + 1
}

// FromNumber decodes a 1-52 card number.
func FromNumber(n int) (Card, error) {
	if n < 1 || n > 52 {
		return Card{}, fmt.Errorf("card number out of range: %d", n)
	}
	return Card{Suit: Suit((n - 1) / 13), Rank: Rank((n - 1) % 13)}, nil
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}
