package history

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists deal history in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// initializes the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := initTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			deal_number INTEGER NOT NULL,
			dealer TEXT NOT NULL,
			vulnerability TEXT NOT NULL,
			contract TEXT,
			declarer TEXT,
			passed_out INTEGER NOT NULL DEFAULT 0,
			contract_made INTEGER NOT NULL DEFAULT 0,
			tricks_taken INTEGER NOT NULL DEFAULT 0,
			auction TEXT,
			score_ns INTEGER NOT NULL DEFAULT 0,
			score_ew INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating deals table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_deals_game ON deals (game_id, deal_number)`)
	if err != nil {
		return fmt.Errorf("error creating deals index: %w", err)
	}

	return nil
}

// SaveDeal persists one completed deal
func (s *SQLiteStore) SaveDeal(r *DealRecord) error {
	auction, err := json.Marshal(r.Auction)
	if err != nil {
		return fmt.Errorf("error encoding auction: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO deals (
			id, game_id, deal_number, dealer, vulnerability, contract,
			declarer, passed_out, contract_made, tricks_taken, auction,
			score_ns, score_ew, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameID, r.DealNumber, r.Dealer, r.Vulnerability, r.Contract,
		r.Declarer, r.PassedOut, r.ContractMade, r.TricksTaken, string(auction),
		r.ScoreNS, r.ScoreEW, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving deal: %w", err)
	}
	return nil
}

// GetDeal retrieves a deal record by ID
func (s *SQLiteStore) GetDeal(id string) (*DealRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, game_id, deal_number, dealer, vulnerability, contract,
			declarer, passed_out, contract_made, tricks_taken, auction,
			score_ns, score_ew, created_at
		FROM deals WHERE id = ?`, id)

	r, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// GetGameDeals retrieves all deals for a game in deal order
func (s *SQLiteStore) GetGameDeals(gameID string) ([]*DealRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, game_id, deal_number, dealer, vulnerability, contract,
			declarer, passed_out, contract_made, tricks_taken, auction,
			score_ns, score_ew, created_at
		FROM deals WHERE game_id = ? ORDER BY deal_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("error querying deals: %w", err)
	}
	defer rows.Close()

	var records []*DealRecord
	for rows.Next() {
		r, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GameTotals sums the partnership scores across a game's deals
func (s *SQLiteStore) GameTotals(gameID string) (ns, ew int, err error) {
	row := s.db.QueryRow(`
		SELECT COALESCE(SUM(score_ns), 0), COALESCE(SUM(score_ew), 0)
		FROM deals WHERE game_id = ?`, gameID)
	if err := row.Scan(&ns, &ew); err != nil {
		return 0, 0, fmt.Errorf("error summing scores: %w", err)
	}
	return ns, ew, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*DealRecord, error) {
	var r DealRecord
	var auction string
	err := row.Scan(
		&r.ID, &r.GameID, &r.DealNumber, &r.Dealer, &r.Vulnerability,
		&r.Contract, &r.Declarer, &r.PassedOut, &r.ContractMade,
		&r.TricksTaken, &auction, &r.ScoreNS, &r.ScoreEW, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if auction != "" {
		if err := json.Unmarshal([]byte(auction), &r.Auction); err != nil {
			return nil, fmt.Errorf("error decoding auction: %w", err)
		}
	}
	return &r, nil
}
