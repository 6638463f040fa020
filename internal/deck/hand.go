package deck

import (
	"sort"
	"strings"
)

// Hand is the set of cards held by one seat. A fresh deal gives each
// seat exactly 13 cards; a hand shrinks by one card per play and never
// contains a duplicate suit+rank.
type Hand []Card

// Contains reports whether the hand holds the card.
func (h Hand) Contains(c Card) bool {
	for _, card := range h {
		if card == c {
			return true
		}
	}
	return false
}

// HasSuit reports whether the hand holds at least one card of the suit.
func (h Hand) HasSuit(s Suit) bool {
	for _, card := range h {
		if card.Suit == s {
			return true
		}
	}
	return false
}

// Remove returns a copy of the hand without the card. The second return
// is false if the card was not present.
func (h Hand) Remove(c Card) (Hand, bool) {
	for i, card := range h {
		if card == c {
			out := make(Hand, 0, len(h)-1)
			out = append(out, h[:i]...)
			out = append(out, h[i+1:]...)
			return out, true
		}
	}
	return h, false
}

// Copy returns an independent copy of the hand.
func (h Hand) Copy() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// Numbers returns the 1-52 wire encoding of every card, in hand order.
func (h Hand) Numbers() []int {
	out := make([]int, len(h))
	for i, c := range h {
		out[i] = c.Number()
	}
	return out
}

// displayOrder alternates colors for on-screen fans: spades, hearts,
// clubs, diamonds.
var displayOrder = map[Suit]int{
	Spades:   0,
	Hearts:   1,
	Clubs:    2,
	Diamonds: 3,
}

// Sort orders the hand for display, suits in alternating colors and
// higher ranks first within each suit.
func (h Hand) Sort() {
	sort.Slice(h, func(i, j int) bool {
		if h[i].Suit != h[j].Suit {
			return displayOrder[h[i].Suit] < displayOrder[h[j].Suit]
		}
		return h[i].Rank > h[j].Rank
	})
}

// HighCardPoints returns the Milton Work point count for the hand:
// ace 4, king 3, queen 2, jack 1. A derived read for display only.
func (h Hand) HighCardPoints() int {
	total := 0
	for _, c := range h {
		switch c.Rank {
		case Ace:
			total += 4
		case King:
			total += 3
		case Queen:
			total += 2
		case Jack:
			total += 1
		}
	}
	return total
}

// String renders the hand as space-separated cards.
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
