package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardtable/bridge/internal/deck"
	"github.com/cardtable/bridge/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateGameData struct {
	PlayerName string `json:"playerName"`
}

type JoinGameData struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
}

type ClaimSeatData struct {
	Seat string `json:"seat"` // "West", "North", "East", "South"
}

type SubmitBidData struct {
	Bid WireBid `json:"bid"`
}

type SubmitPlayData struct {
	Card int `json:"card"` // 1..52
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameCreatedData struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

type GameJoinedData struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

// LobbyPlayer is one player's lobby entry.
type LobbyPlayer struct {
	Name string `json:"name"`
	Seat string `json:"seat,omitempty"`
	Host bool   `json:"host,omitempty"`
}

type LobbyStateData struct {
	GameCode string        `json:"gameCode"`
	Status   string        `json:"status"`
	Players  []LobbyPlayer `json:"players"`
}

type SeatClaimedData struct {
	Player string `json:"player"`
	Seat   string `json:"seat"`
}

type DealStartedData struct {
	DealNumber    int    `json:"dealNumber"`
	Dealer        string `json:"dealer"`
	Vulnerability string `json:"vulnerability"`
}

// HandDealtData is sent privately to one seat.
type HandDealtData struct {
	Seat  string `json:"seat"`
	Cards []int  `json:"cards"`
	HCP   int    `json:"hcp"`
}

type BidMadeData struct {
	Seat string  `json:"seat"`
	Bid  WireBid `json:"bid"`
}

type AuctionSettledData struct {
	Contract WireContract `json:"contract"`
	Leader   string       `json:"leader"`
}

type CardPlayedData struct {
	Seat string `json:"seat"`
	Card int    `json:"card"`
}

type DummyRevealedData struct {
	Dummy string `json:"dummy"`
	Cards []int  `json:"cards"`
}

type TrickCompletedData struct {
	Winner    string         `json:"winner"`
	TricksWon map[string]int `json:"tricksWon"`
}

type TrickClearedData struct {
	Leader string `json:"leader"`
}

type DealScoredData struct {
	PassedOut    bool           `json:"passedOut"`
	Contract     string         `json:"contract,omitempty"`
	ContractMade bool           `json:"contractMade"`
	TricksTaken  int            `json:"tricksTaken"`
	TricksNeeded int            `json:"tricksNeeded"`
	Declarer     WireBreakdown  `json:"declarer"`
	Defender     WireBreakdown  `json:"defender"`
	Totals       map[string]int `json:"totals"` // running match totals by partnership
}

// Wire representations

// WireBid is the JSON form of a bid.
type WireBid struct {
	Type   string `json:"type"` // "pass", "call", "double", "redouble"
	Level  int    `json:"level,omitempty"`
	Strain string `json:"strain,omitempty"`
}

// ToBid converts the wire form to an engine bid.
func (w WireBid) ToBid() (game.Bid, error) {
	switch w.Type {
	case "pass":
		return game.Pass(), nil
	case "double":
		return game.Double(), nil
	case "redouble":
		return game.Redouble(), nil
	case "call":
		strain, err := game.ParseStrain(w.Strain)
		if err != nil {
			return game.Bid{}, err
		}
		return game.Call(w.Level, strain), nil
	default:
		return game.Bid{}, fmt.Errorf("invalid bid type: %q", w.Type)
	}
}

// WireBidFrom converts an engine bid to the wire form.
func WireBidFrom(b game.Bid) WireBid {
	switch b.Type {
	case game.BidCall:
		return WireBid{Type: "call", Level: b.Level, Strain: b.Strain.Name()}
	case game.BidDouble:
		return WireBid{Type: "double"}
	case game.BidRedouble:
		return WireBid{Type: "redouble"}
	default:
		return WireBid{Type: "pass"}
	}
}

// WireContract is the JSON form of a contract.
type WireContract struct {
	Level     int    `json:"level"`
	Strain    string `json:"strain"`
	Declarer  string `json:"declarer"`
	Dummy     string `json:"dummy"`
	Doubled   bool   `json:"doubled,omitempty"`
	Redoubled bool   `json:"redoubled,omitempty"`
	Display   string `json:"display"`
}

// WireContractFrom converts an engine contract to the wire form.
func WireContractFrom(c game.Contract) WireContract {
	return WireContract{
		Level:     c.Level,
		Strain:    c.Strain.Name(),
		Declarer:  c.Declarer.String(),
		Dummy:     c.Dummy().String(),
		Doubled:   c.Doubled,
		Redoubled: c.Redoubled,
		Display:   c.String(),
	}
}

// WireBreakdown is the JSON form of one side's score breakdown.
type WireBreakdown struct {
	ContractPoints    int `json:"contractPoints,omitempty"`
	OvertrickPoints   int `json:"overtrickPoints,omitempty"`
	SlamBonus         int `json:"slamBonus,omitempty"`
	DoubleBonus       int `json:"doubleBonus,omitempty"`
	GameBonus         int `json:"gameBonus,omitempty"`
	UndertrickPenalty int `json:"undertrickPenalty,omitempty"`
	Total             int `json:"total"`
}

// WireBreakdownFrom converts a score breakdown to the wire form.
func WireBreakdownFrom(b game.ScoreBreakdown) WireBreakdown {
	return WireBreakdown{
		ContractPoints:    b.ContractPoints,
		OvertrickPoints:   b.OvertrickPoints,
		SlamBonus:         b.SlamBonus,
		DoubleBonus:       b.DoubleBonus,
		GameBonus:         b.GameBonus,
		UndertrickPenalty: b.UndertrickPenalty,
		Total:             b.Total,
	}
}

// cardNumbers converts a hand to sorted wire card numbers, in the
// display order the table UI expects.
func cardNumbers(h deck.Hand) []int {
	sorted := h.Copy()
	sorted.Sort()
	return sorted.Numbers()
}
