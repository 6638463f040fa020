package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DealRecord is the persisted outcome of one completed deal. Scores are
// stored per partnership so match totals can be summed directly.
type DealRecord struct {
	ID            string    `json:"id"`
	GameID        string    `json:"gameId"`
	DealNumber    int       `json:"dealNumber"`
	Dealer        string    `json:"dealer"`
	Vulnerability string    `json:"vulnerability"`
	Contract      string    `json:"contract,omitempty"`
	Declarer      string    `json:"declarer,omitempty"`
	PassedOut     bool      `json:"passedOut"`
	ContractMade  bool      `json:"contractMade"`
	TricksTaken   int       `json:"tricksTaken"`
	Auction       []string  `json:"auction"`
	ScoreNS       int       `json:"scoreNS"`
	ScoreEW       int       `json:"scoreEW"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store defines the interface for deal history storage
type Store interface {
	// SaveDeal persists one completed deal
	SaveDeal(r *DealRecord) error

	// GetDeal retrieves a deal record by ID
	GetDeal(id string) (*DealRecord, error)

	// GetGameDeals retrieves all deals for a game in deal order
	GetGameDeals(gameID string) ([]*DealRecord, error)

	// GameTotals sums the partnership scores across a game's deals
	GameTotals(gameID string) (ns, ew int, err error)

	// Close releases the store's resources
	Close() error
}
