package server

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/bridge/internal/history"
	"github.com/cardtable/bridge/internal/randutil"
)

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Game.IdleTimeoutMinutes = 2
	srv := NewServer(cfg, log.New(io.Discard), history.NewMemoryStore(), randutil.New(7), opts...)
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })
	return srv
}

func TestServerSweepsIdleRooms(t *testing.T) {
	mClock := quartz.NewMock(t)
	srv := newTestServer(t, WithClock(mClock))
	ctx := context.Background()

	room := srv.CreateRoom()
	require.NoError(t, room.Join("p1", "Ana"))

	// One minute idle is within the two-minute timeout.
	mClock.Advance(idleSweepInterval).MustWait(ctx)
	_, ok := srv.Room(room.Code)
	require.True(t, ok)

	// Activity resets the idle clock.
	require.NoError(t, room.Join("p2", "Ben"))
	mClock.Advance(idleSweepInterval).MustWait(ctx)
	_, ok = srv.Room(room.Code)
	require.True(t, ok)

	// Two full minutes without activity and the room is swept.
	mClock.Advance(idleSweepInterval).MustWait(ctx)
	_, ok = srv.Room(room.Code)
	assert.False(t, ok)
}

func TestServerRemovesEmptyRooms(t *testing.T) {
	srv := newTestServer(t)

	room := srv.CreateRoom()
	require.NoError(t, room.Join("p1", "Ana"))
	require.NoError(t, room.Join("p2", "Ben"))

	srv.releasePlayer("p1", room.Code)
	_, ok := srv.Room(room.Code)
	require.True(t, ok, "room stays while players remain")

	srv.releasePlayer("p2", room.Code)
	_, ok = srv.Room(room.Code)
	assert.False(t, ok, "last player out deletes the room")

	// A second release of the same game is a no-op.
	srv.releasePlayer("p2", room.Code)
}

func TestServerRemoveRoomUnknownCode(t *testing.T) {
	srv := newTestServer(t)
	srv.removeRoom("NOSUCH", "idle")
}
