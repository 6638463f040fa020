package server

import (
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/bridge/internal/game"
	"github.com/cardtable/bridge/internal/randutil"
	"github.com/cardtable/bridge/internal/session"
)

// fakeSender records deliveries instead of writing to sockets.
type fakeSender struct {
	mu         sync.Mutex
	broadcasts []*Message
	private    map[string][]*Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{private: make(map[string][]*Message)}
}

func (f *fakeSender) BroadcastToGame(gameCode string, msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeSender) SendToPlayer(playerID string, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.private[playerID] = append(f.private[playerID], msg)
	return nil
}

func (f *fakeSender) broadcastTypes() []MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]MessageType, len(f.broadcasts))
	for i, m := range f.broadcasts {
		out[i] = m.Type
	}
	return out
}

func newTestRoom(t *testing.T) (*Room, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	sess := session.New("TESTGM", randutil.New(11), session.WithTrickPause(0))
	return NewRoom("TESTGM", sess, sender, log.Default(), quartz.NewReal()), sender
}

func seatFour(t *testing.T, room *Room) {
	t.Helper()
	require.NoError(t, room.Join("p1", "Ana"))
	require.NoError(t, room.Join("p2", "Ben"))
	require.NoError(t, room.Join("p3", "Col"))
	require.NoError(t, room.Join("p4", "Dee"))
	require.NoError(t, room.ClaimSeat("p1", game.West))
	require.NoError(t, room.ClaimSeat("p2", game.North))
	require.NoError(t, room.ClaimSeat("p3", game.East))
	require.NoError(t, room.ClaimSeat("p4", game.South))
}

func TestRoomLobbyFlow(t *testing.T) {
	room, _ := newTestRoom(t)

	require.NoError(t, room.Join("p1", "Ana"))
	require.NoError(t, room.Join("p2", "Ben"))

	// First player in is the host.
	assert.ErrorIs(t, room.Start("p2"), ErrNotHost)

	require.NoError(t, room.ClaimSeat("p1", game.North))
	assert.ErrorIs(t, room.ClaimSeat("p2", game.North), ErrSeatTaken)
	require.NoError(t, room.ClaimSeat("p2", game.South))

	// Seat change frees the old seat.
	require.NoError(t, room.ClaimSeat("p1", game.West))
	require.NoError(t, room.Join("p3", "Col"))
	require.NoError(t, room.ClaimSeat("p3", game.North))

	assert.ErrorIs(t, room.Start("p1"), ErrSeatsUnclaimed)

	require.NoError(t, room.Join("p4", "Dee"))
	require.NoError(t, room.ClaimSeat("p4", game.East))

	assert.ErrorIs(t, room.Join("p5", "Eve"), ErrRoomFull)

	require.NoError(t, room.Start("p1"))
	assert.Equal(t, RoomActive, room.Status())

	assert.ErrorIs(t, room.Join("p5", "Eve"), ErrAlreadyStarted)
	assert.ErrorIs(t, room.ClaimSeat("p1", game.South), ErrAlreadyStarted)
	assert.ErrorIs(t, room.Start("p1"), ErrAlreadyStarted)
}

func TestRoomStartDealsPrivateHands(t *testing.T) {
	room, sender := newTestRoom(t)
	seatFour(t, room)
	require.NoError(t, room.Start("p1"))

	types := sender.broadcastTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, MessageTypeDealStarted, types[0])

	// Hands go to each seated player privately, never broadcast.
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		msgs := sender.private[id]
		require.Len(t, msgs, 1, "player %s", id)
		assert.Equal(t, MessageTypeHandDealt, msgs[0].Type)
	}
	for _, bt := range types {
		assert.NotEqual(t, MessageTypeHandDealt, bt)
	}
}

func TestRoomSubmitBidRequiresSeatAndTurn(t *testing.T) {
	room, sender := newTestRoom(t)
	seatFour(t, room)
	require.NoError(t, room.Start("p1"))

	assert.ErrorIs(t, room.SubmitBid("ghost", game.Pass()), ErrUnknownPlayer)

	// Deal one is dealt by North (p2); West cannot open the bidding.
	assert.ErrorIs(t, room.SubmitBid("p1", game.Pass()), game.ErrOutOfTurn)

	require.NoError(t, room.SubmitBid("p2", game.Call(1, game.NoTrump)))
	last := sender.broadcasts[len(sender.broadcasts)-1]
	assert.Equal(t, MessageTypeBidMade, last.Type)
}

func TestRoomAuctionBroadcasts(t *testing.T) {
	room, sender := newTestRoom(t)
	seatFour(t, room)
	require.NoError(t, room.Start("p1"))

	require.NoError(t, room.SubmitBid("p2", game.Call(2, game.Hearts)))
	require.NoError(t, room.SubmitBid("p3", game.Pass()))
	require.NoError(t, room.SubmitBid("p4", game.Pass()))
	require.NoError(t, room.SubmitBid("p1", game.Pass()))

	types := sender.broadcastTypes()
	assert.Equal(t, MessageTypeAuctionSettled, types[len(types)-1])
}

func TestRoomNextDealAfterPassOut(t *testing.T) {
	room, sender := newTestRoom(t)
	seatFour(t, room)
	require.NoError(t, room.Start("p1"))

	// Deal one: North deals and everyone passes.
	for _, id := range []string{"p2", "p3", "p4", "p1"} {
		require.NoError(t, room.SubmitBid(id, game.Pass()))
	}

	types := sender.broadcastTypes()
	assert.Equal(t, MessageTypeDealScored, types[len(types)-1])
	assert.Equal(t, MessageTypePassedOut, types[len(types)-2])

	assert.ErrorIs(t, room.StartNextDeal("ghost"), ErrUnknownPlayer)
	require.NoError(t, room.StartNextDeal("p3"))

	types = sender.broadcastTypes()
	assert.Equal(t, MessageTypeDealStarted, types[len(types)-1])
}
