package deck

import rand "math/rand/v2"

// NumSeats is the number of hands a deal produces.
const NumSeats = 4

// HandSize is the number of cards dealt to each seat.
const HandSize = 13

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card
	rng   *rand.Rand
}

// New creates a new shuffled deck with an explicit RNG. The RNG is
// required so deals are reproducible under a fixed seed.
func New(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(suit, rank)
			i++
		}
	}

	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal distributes the full deck round-robin starting at seat 0,
// giving each of the four seats exactly 13 cards.
func (d *Deck) Deal() [NumSeats]Hand {
	var hands [NumSeats]Hand
	for i := range hands {
		hands[i] = make(Hand, 0, HandSize)
	}
	for i, c := range d.cards {
		hands[i%NumSeats] = append(hands[i%NumSeats], c)
	}
	return hands
}

// Cards returns the deck in its current order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards[:])
	return out
}
