package game

import "github.com/cardtable/bridge/internal/deck"

// Play is one card played to a trick by a seat.
type Play struct {
	Seat Seat
	Card deck.Card
}

// Trick is the ordered sequence of plays to one trick. The first play
// defines the lead suit.
type Trick struct {
	plays []Play
}

// Len returns the number of cards played so far.
func (t *Trick) Len() int { return len(t.plays) }

// IsComplete reports whether all four seats have played.
func (t *Trick) IsComplete() bool { return len(t.plays) == NumSeats }

// Plays returns the plays in order.
func (t *Trick) Plays() []Play {
	out := make([]Play, len(t.plays))
	copy(out, t.plays)
	return out
}

// LeadSuit returns the suit of the first card, or false for an empty
// trick.
func (t *Trick) LeadSuit() (deck.Suit, bool) {
	if len(t.plays) == 0 {
		return 0, false
	}
	return t.plays[0].Card.Suit, true
}

// add appends a play. The caller has already validated legality.
func (t *Trick) add(seat Seat, card deck.Card) {
	t.plays = append(t.plays, Play{Seat: seat, Card: card})
}

// clear resets the trick for the next lead.
func (t *Trick) clear() {
	t.plays = t.plays[:0]
}

// Winner determines the winning seat of a complete trick: the highest
// trump if any trump was played, otherwise the highest card of the lead
// suit. Ranks are unique within a suit, so there are no ties.
func (t *Trick) Winner(trump deck.Suit, hasTrump bool) Seat {
	winning := t.plays[0]
	for _, p := range t.plays[1:] {
		if beats(p.Card, winning.Card, t.plays[0].Card.Suit, trump, hasTrump) {
			winning = p
		}
	}
	return winning.Seat
}

// beats reports whether card a beats the current winning card b given
// the lead suit and optional trump suit.
func beats(a, b deck.Card, lead deck.Suit, trump deck.Suit, hasTrump bool) bool {
	if hasTrump {
		aTrump := a.Suit == trump
		bTrump := b.Suit == trump
		if aTrump != bTrump {
			return aTrump
		}
		if aTrump && bTrump {
			return a.Rank > b.Rank
		}
	}
	if a.Suit != lead {
		return false
	}
	if b.Suit != lead {
		return true
	}
	return a.Rank > b.Rank
}
