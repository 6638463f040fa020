package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/bridge/internal/deck"
	"github.com/cardtable/bridge/internal/randutil"
)

func fullSuit(s deck.Suit) deck.Hand {
	h := make(deck.Hand, 0, deck.HandSize)
	for r := deck.Two; r <= deck.Ace; r++ {
		h = append(h, deck.Card{Suit: s, Rank: r})
	}
	return h
}

// oneSuitHands gives every seat a complete suit so the play order is
// fully determined: clubs to West, spades to North, hearts to East,
// diamonds to South.
func oneSuitHands() [NumSeats]deck.Hand {
	return [NumSeats]deck.Hand{
		West:  fullSuit(deck.Clubs),
		North: fullSuit(deck.Spades),
		East:  fullSuit(deck.Hearts),
		South: fullSuit(deck.Diamonds),
	}
}

func TestNewDealShufflesFourHands(t *testing.T) {
	d := NewDeal(randutil.New(7), North, Vulnerability{})

	seen := make(map[int]bool)
	for seat := West; seat <= South; seat++ {
		hand := d.Hand(seat)
		require.Len(t, hand, deck.HandSize)
		for _, c := range hand {
			seen[c.Number()] = true
		}
	}
	assert.Len(t, seen, 52)

	assert.Equal(t, PhaseBidding, d.Phase())
	assert.Equal(t, North, d.Turn())
}

func TestHandDealtEventsArePerSeat(t *testing.T) {
	d := NewDeal(nil, West, Vulnerability{}, WithHands(oneSuitHands()))

	events := d.HandDealtEvents()
	require.Len(t, events, NumSeats)
	for i, ev := range events {
		dealt, ok := ev.(HandDealtEvent)
		require.True(t, ok)
		assert.Equal(t, Seat(i), dealt.Seat)
		assert.Len(t, dealt.Hand, deck.HandSize)
	}
}

func TestDealRejectsPlayDuringBidding(t *testing.T) {
	d := NewDeal(nil, North, Vulnerability{}, WithHands(oneSuitHands()))

	_, err := d.SubmitPlay(North, card(deck.Spades, deck.Ace))
	assert.ErrorIs(t, err, ErrInvalidDealState)
}

func TestDealPassedOut(t *testing.T) {
	d := NewDeal(nil, North, Vulnerability{}, WithHands(oneSuitHands()))

	for _, seat := range []Seat{North, East, South} {
		events, err := d.SubmitBid(seat, Pass())
		require.NoError(t, err)
		require.Len(t, events, 1)
	}

	events, err := d.SubmitBid(West, Pass())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.IsType(t, BidMadeEvent{}, events[0])
	assert.IsType(t, PassedOutEvent{}, events[1])

	scored, ok := events[2].(DealScoredEvent)
	require.True(t, ok)
	assert.True(t, scored.PassedOut)
	assert.Zero(t, scored.Result.Declarer.Total)

	assert.Equal(t, PhasePassedOut, d.Phase())
	_, err = d.SubmitBid(North, Call(1, Clubs))
	assert.ErrorIs(t, err, ErrInvalidDealState)
}

func TestDealAuctionSettlesIntoPlay(t *testing.T) {
	d := NewDeal(nil, North, Vulnerability{}, WithHands(oneSuitHands()))

	_, err := d.SubmitBid(North, Call(4, Spades))
	require.NoError(t, err)
	for _, seat := range []Seat{East, South} {
		_, err = d.SubmitBid(seat, Pass())
		require.NoError(t, err)
	}

	events, err := d.SubmitBid(West, Pass())
	require.NoError(t, err)
	require.Len(t, events, 2)

	settled, ok := events[1].(AuctionSettledEvent)
	require.True(t, ok)
	assert.Equal(t, North, settled.Contract.Declarer)
	assert.Equal(t, East, settled.Leader, "opening lead is left of declarer")

	assert.Equal(t, PhasePlaying, d.Phase())
	assert.Equal(t, East, d.Turn())

	contract, ok := d.Contract()
	require.True(t, ok)
	assert.Equal(t, "4♠ by North", contract.String())
}

func TestDealDummyAuthority(t *testing.T) {
	d := dealInPlay(t)

	// Opening lead by East.
	events, err := d.SubmitPlay(East, card(deck.Hearts, deck.Two))
	require.NoError(t, err)
	require.Len(t, events, 2)
	revealed, ok := events[1].(DummyRevealedEvent)
	require.True(t, ok)
	assert.Equal(t, South, revealed.Dummy)
	assert.Len(t, revealed.Hand, deck.HandSize)

	// South is dummy; only declarer North plays South's cards.
	_, err = d.SubmitPlay(South, card(deck.Diamonds, deck.Two))
	assert.ErrorIs(t, err, ErrOutOfTurn)
	_, err = d.SubmitPlay(West, card(deck.Diamonds, deck.Two))
	assert.ErrorIs(t, err, ErrOutOfTurn)

	events, err = d.SubmitPlay(North, card(deck.Diamonds, deck.Two))
	require.NoError(t, err)
	played := events[0].(CardPlayedEvent)
	assert.Equal(t, South, played.Seat, "the card is attributed to dummy's seat")
}

func TestDealRejectsCardNotHeld(t *testing.T) {
	d := dealInPlay(t)

	_, err := d.SubmitPlay(East, card(deck.Clubs, deck.Two))
	assert.ErrorIs(t, err, ErrIllegalPlay)
}

func TestDealMustFollowSuit(t *testing.T) {
	hands := oneSuitHands()
	// Swap one card so East can revoke: East holds a club, West the
	// matching heart.
	hands[East], _ = hands[East].Remove(card(deck.Hearts, deck.Two))
	hands[East] = append(hands[East], card(deck.Clubs, deck.Two))
	hands[West], _ = hands[West].Remove(card(deck.Clubs, deck.Two))
	hands[West] = append(hands[West], card(deck.Hearts, deck.Two))

	d := NewDeal(nil, North, Vulnerability{}, WithHands(hands))
	settleFourSpades(t, d)

	// East leads a heart; South and West must follow their own suits.
	_, err := d.SubmitPlay(East, card(deck.Hearts, deck.Three))
	require.NoError(t, err)
	_, err = d.SubmitPlay(North, card(deck.Diamonds, deck.Two)) // dummy discard, no hearts held
	require.NoError(t, err)

	// West holds the two of hearts and must play it.
	_, err = d.SubmitPlay(West, card(deck.Clubs, deck.Three))
	assert.ErrorIs(t, err, ErrIllegalPlay)
	_, err = d.SubmitPlay(West, card(deck.Hearts, deck.Two))
	require.NoError(t, err)
}

func TestDealFullPlaythrough(t *testing.T) {
	d := NewDeal(nil, North, Vulnerability{}, WithHands(oneSuitHands()))
	settleFourSpades(t, d)

	contract, _ := d.Contract()
	dummy := contract.Dummy()

	for trick := 1; trick <= deck.HandSize; trick++ {
		seat := d.Leader()
		var events []Event
		for i := 0; i < NumSeats; i++ {
			actor := seat
			if seat == dummy {
				actor = contract.Declarer
			}
			playCard := d.Hand(seat)[0]

			var err error
			events, err = d.SubmitPlay(actor, playCard)
			require.NoError(t, err, "trick %d seat %s", trick, seat)
			seat = seat.Next()
		}

		last := events[len(events)-1]
		if trick < deck.HandSize {
			completed, ok := last.(TrickCompletedEvent)
			require.True(t, ok)
			assert.Equal(t, North, completed.Winner, "trump holder wins every trick")

			require.Equal(t, PhaseTrickDone, d.Phase())
			_, err := d.SubmitPlay(North, card(deck.Spades, deck.Ace))
			assert.ErrorIs(t, err, ErrInvalidDealState, "no plays until the trick is cleared")

			leader, err := d.AdvanceAfterTrick()
			require.NoError(t, err)
			assert.Equal(t, North, leader)
			assert.Equal(t, PhasePlaying, d.Phase())
		} else {
			scored, ok := last.(DealScoredEvent)
			require.True(t, ok)
			assert.False(t, scored.PassedOut)
			assert.True(t, scored.Result.ContractMade)
			assert.Equal(t, 13, scored.Result.TricksTaken)
			// 4 spades plus three: 120 + 90 + 300.
			assert.Equal(t, 510, scored.Result.Declarer.Total)
		}
	}

	assert.Equal(t, PhaseComplete, d.Phase())
	assert.Equal(t, [NumSeats]int{North: 13}, d.TricksWon())

	result, ok := d.Result()
	require.True(t, ok)
	assert.Equal(t, 510, result.Declarer.Total)

	_, err := d.AdvanceAfterTrick()
	assert.ErrorIs(t, err, ErrInvalidDealState)
}

func TestDealTurnIsWinnerWhileTrickOnTable(t *testing.T) {
	d := dealInPlay(t)
	contract, _ := d.Contract()

	seat := d.Leader()
	for i := 0; i < NumSeats; i++ {
		actor := seat
		if seat == contract.Dummy() {
			actor = contract.Declarer
		}
		_, err := d.SubmitPlay(actor, d.Hand(seat)[0])
		require.NoError(t, err)
		seat = seat.Next()
	}

	require.Equal(t, PhaseTrickDone, d.Phase())
	assert.Equal(t, North, d.Turn(), "the winner is due to lead the next trick")

	leader, err := d.AdvanceAfterTrick()
	require.NoError(t, err)
	assert.Equal(t, leader, d.Turn())
}

// dealInPlay returns a one-suit deal settled in 4♠ by North with East
// on lead.
func dealInPlay(t *testing.T) *Deal {
	t.Helper()
	d := NewDeal(nil, North, Vulnerability{}, WithHands(oneSuitHands()))
	settleFourSpades(t, d)
	return d
}

func settleFourSpades(t *testing.T, d *Deal) {
	t.Helper()
	_, err := d.SubmitBid(North, Call(4, Spades))
	require.NoError(t, err)
	for _, seat := range []Seat{East, South, West} {
		_, err = d.SubmitBid(seat, Pass())
		require.NoError(t, err)
	}
	require.Equal(t, PhasePlaying, d.Phase())
}
