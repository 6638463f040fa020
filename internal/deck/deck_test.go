package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/bridge/internal/randutil"
)

func TestDealPartitionsDeck(t *testing.T) {
	t.Parallel()
	d := New(randutil.New(42))
	hands := d.Deal()

	seen := make(map[Card]int)
	for seat, hand := range hands {
		require.Len(t, hand, HandSize, "seat %d", seat)
		for _, c := range hand {
			seen[c]++
		}
	}

	require.Len(t, seen, 52, "hands must cover the full deck")
	for c, n := range seen {
		assert.Equal(t, 1, n, "card %s dealt %d times", c, n)
	}
}

func TestShuffleDeterministicUnderSeed(t *testing.T) {
	t.Parallel()
	a := New(randutil.New(7)).Cards()
	b := New(randutil.New(7)).Cards()
	c := New(randutil.New(8)).Cards()

	assert.Equal(t, a, b, "same seed must produce the same order")
	assert.NotEqual(t, a, c, "different seeds should differ")
}

func TestCardNumberEncoding(t *testing.T) {
	t.Parallel()
	cases := []struct {
		card Card
		n    int
	}{
		{Card{Spades, Two}, 1},
		{Card{Spades, Ace}, 13},
		{Card{Hearts, Two}, 14},
		{Card{Hearts, Ace}, 26},
		{Card{Diamonds, Two}, 27},
		{Card{Clubs, Two}, 40},
		{Card{Clubs, Ace}, 52},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.n, tc.card.Number(), "encoding %s", tc.card)
		decoded, err := FromNumber(tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.card, decoded, "decoding %d", tc.n)
	}

	for n := 1; n <= 52; n++ {
		c, err := FromNumber(n)
		require.NoError(t, err)
		assert.Equal(t, n, c.Number())
	}

	_, err := FromNumber(0)
	assert.Error(t, err)
	_, err = FromNumber(53)
	assert.Error(t, err)
}

func TestHighCardPoints(t *testing.T) {
	t.Parallel()
	h := Hand{
		{Spades, Ace},
		{Spades, King},
		{Hearts, Queen},
		{Clubs, Jack},
		{Diamonds, Nine},
	}
	assert.Equal(t, 10, h.HighCardPoints())
	assert.Equal(t, 0, Hand{{Clubs, Two}, {Clubs, Ten}}.HighCardPoints())
}

func TestHandRemove(t *testing.T) {
	t.Parallel()
	h := Hand{{Spades, Ace}, {Hearts, Two}, {Clubs, King}}

	out, ok := h.Remove(Card{Hearts, Two})
	require.True(t, ok)
	assert.Len(t, out, 2)
	assert.False(t, out.Contains(Card{Hearts, Two}))
	assert.Len(t, h, 3, "remove must not mutate the receiver")

	_, ok = h.Remove(Card{Diamonds, Five})
	assert.False(t, ok)
}

func TestHandSortDisplayOrder(t *testing.T) {
	t.Parallel()
	h := Hand{
		{Diamonds, Ace},
		{Spades, Two},
		{Clubs, King},
		{Hearts, Ten},
		{Spades, Queen},
	}
	h.Sort()

	want := Hand{
		{Spades, Queen},
		{Spades, Two},
		{Hearts, Ten},
		{Clubs, King},
		{Diamonds, Ace},
	}
	assert.Equal(t, want, h)
}
