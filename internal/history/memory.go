package history

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of deal history storage
type MemoryStore struct {
	deals map[string]*DealRecord
	games map[string][]*DealRecord
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deals: make(map[string]*DealRecord),
		games: make(map[string][]*DealRecord),
	}
}

// SaveDeal persists one completed deal
func (s *MemoryStore) SaveDeal(r *DealRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *r
	s.deals[r.ID] = &copied
	s.games[r.GameID] = append(s.games[r.GameID], &copied)
	return nil
}

// GetDeal retrieves a deal record by ID
func (s *MemoryStore) GetDeal(id string) (*DealRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.deals[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

// GetGameDeals retrieves all deals for a game in deal order
func (s *MemoryStore) GetGameDeals(gameID string) ([]*DealRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.games[gameID]
	out := make([]*DealRecord, len(records))
	for i, r := range records {
		copied := *r
		out[i] = &copied
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DealNumber < out[j].DealNumber })
	return out, nil
}

// GameTotals sums the partnership scores across a game's deals
func (s *MemoryStore) GameTotals(gameID string) (ns, ew int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.games[gameID] {
		ns += r.ScoreNS
		ew += r.ScoreEW
	}
	return ns, ew, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error { return nil }
