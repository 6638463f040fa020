package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)

	r := record("game-1", 1, 420, 0)
	require.NoError(t, s.SaveDeal(r))

	got, err := s.GetDeal(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.GameID, got.GameID)
	assert.Equal(t, r.DealNumber, got.DealNumber)
	assert.Equal(t, r.Dealer, got.Dealer)
	assert.Equal(t, r.Vulnerability, got.Vulnerability)
	assert.Equal(t, r.Contract, got.Contract)
	assert.Equal(t, r.Declarer, got.Declarer)
	assert.Equal(t, r.PassedOut, got.PassedOut)
	assert.Equal(t, r.ContractMade, got.ContractMade)
	assert.Equal(t, r.TricksTaken, got.TricksTaken)
	assert.Equal(t, r.Auction, got.Auction)
	assert.Equal(t, r.ScoreNS, got.ScoreNS)
	assert.Equal(t, r.ScoreEW, got.ScoreEW)
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Second)

	_, err = s.GetDeal("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorePassedOutRecord(t *testing.T) {
	s := newTestSQLiteStore(t)

	r := record("game-1", 1, 0, 0)
	r.Contract = ""
	r.Declarer = ""
	r.PassedOut = true
	r.ContractMade = false
	r.TricksTaken = 0
	r.Auction = []string{"North: Pass", "East: Pass", "South: Pass", "West: Pass"}
	require.NoError(t, s.SaveDeal(r))

	got, err := s.GetDeal(r.ID)
	require.NoError(t, err)
	assert.True(t, got.PassedOut)
	assert.Empty(t, got.Contract)
	assert.Equal(t, r.Auction, got.Auction)
	assert.Zero(t, got.ScoreNS)
	assert.Zero(t, got.ScoreEW)
}

func TestSQLiteStoreGameDealsOrdered(t *testing.T) {
	s := newTestSQLiteStore(t)

	require.NoError(t, s.SaveDeal(record("game-1", 2, 0, 50)))
	require.NoError(t, s.SaveDeal(record("game-1", 1, 420, 0)))
	require.NoError(t, s.SaveDeal(record("game-2", 1, 600, 0)))

	deals, err := s.GetGameDeals("game-1")
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, 1, deals[0].DealNumber)
	assert.Equal(t, 2, deals[1].DealNumber)

	deals, err = s.GetGameDeals("unknown")
	require.NoError(t, err)
	assert.Empty(t, deals)
}

func TestSQLiteStoreGameTotals(t *testing.T) {
	s := newTestSQLiteStore(t)

	require.NoError(t, s.SaveDeal(record("game-1", 1, 420, 0)))
	require.NoError(t, s.SaveDeal(record("game-1", 2, 0, 500)))
	require.NoError(t, s.SaveDeal(record("game-1", 3, 600, 0)))

	ns, ew, err := s.GameTotals("game-1")
	require.NoError(t, err)
	assert.Equal(t, 1020, ns)
	assert.Equal(t, 500, ew)

	// A game with no deals sums to zero rather than erroring.
	ns, ew, err = s.GameTotals("unknown")
	require.NoError(t, err)
	assert.Zero(t, ns)
	assert.Zero(t, ew)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	r := record("game-1", 1, 420, 0)
	require.NoError(t, s.SaveDeal(r))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetDeal(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 420, got.ScoreNS)
}
