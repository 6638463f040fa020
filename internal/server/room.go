package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardtable/bridge/internal/deck"
	"github.com/cardtable/bridge/internal/game"
	"github.com/cardtable/bridge/internal/session"
)

// Room lifecycle errors.
var (
	ErrRoomFull       = errors.New("game is full")
	ErrSeatTaken      = errors.New("seat already claimed")
	ErrNotHost        = errors.New("only the host can start the game")
	ErrSeatsUnclaimed = errors.New("all four seats must be claimed")
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotStarted     = errors.New("game not started")
	ErrNotSeated      = errors.New("player has no seat")
	ErrUnknownPlayer  = errors.New("unknown player")
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
)

// Player is one participant in a room.
type Player struct {
	ID   string
	Name string
	Seat *game.Seat
	Host bool
}

// messageSender delivers messages to clients. The Server implements it;
// tests substitute a fake.
type messageSender interface {
	BroadcastToGame(gameCode string, msg *Message)
	SendToPlayer(playerID string, msg *Message) error
}

// Room is one table's lobby and, once started, its live game. It
// subscribes to the session's events and translates them into client
// messages, keeping dealt hands private to their seats.
type Room struct {
	Code string

	logger  *log.Logger
	sender  messageSender
	session *session.Session
	clock   quartz.Clock

	mu         sync.RWMutex
	status     RoomStatus
	players    map[string]*Player
	seats      map[game.Seat]string // seat -> playerID
	hostID     string
	lastActive time.Time

	// Projection maintained from deal events, so translating an event
	// never calls back into the session.
	contract         string
	totalNS, totalEW int
}

// NewRoom creates a room around a session. The first player to join
// becomes the host.
func NewRoom(code string, sess *session.Session, sender messageSender, logger *log.Logger, clock quartz.Clock) *Room {
	r := &Room{
		Code:       code,
		logger:     logger.WithPrefix("room").With("game", code),
		sender:     sender,
		session:    sess,
		clock:      clock,
		status:     RoomWaiting,
		players:    make(map[string]*Player),
		seats:      make(map[game.Seat]string),
		lastActive: clock.Now(),
	}
	sess.Subscribe(r)
	return r
}

// Close detaches the room from its session and stops the session's
// timers. Called when the server removes the room.
func (r *Room) Close() {
	r.session.Unsubscribe(r)
	r.session.Close()
}

// touch records player activity for the idle sweep.
func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = r.clock.Now()
	r.mu.Unlock()
}

// LastActive returns the time of the last player action.
func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// Empty reports whether no players remain in the room.
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players) == 0
}

// Status returns the room lifecycle state.
func (r *Room) Status() RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Join adds a player to the room. Rooms hold exactly four players.
func (r *Room) Join(playerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RoomWaiting {
		return ErrAlreadyStarted
	}
	if len(r.players) >= game.NumSeats {
		return ErrRoomFull
	}

	p := &Player{ID: playerID, Name: name}
	if len(r.players) == 0 {
		p.Host = true
		r.hostID = playerID
	}
	r.players[playerID] = p
	r.lastActive = r.clock.Now()

	r.logger.Info("Player joined", "player", name, "count", len(r.players))
	return nil
}

// Leave removes a player and frees their seat. An active game keeps
// the seat assignment so the player can reconnect under the same ID.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok || r.status != RoomWaiting {
		return
	}
	if p.Seat != nil {
		delete(r.seats, *p.Seat)
	}
	delete(r.players, playerID)
	r.lastActive = r.clock.Now()
	r.logger.Info("Player left", "player", p.Name)
}

// ClaimSeat assigns a seat to a player. A player may move to a
// different free seat while the room is waiting.
func (r *Room) ClaimSeat(playerID string, seat game.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RoomWaiting {
		return ErrAlreadyStarted
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if holder, taken := r.seats[seat]; taken && holder != playerID {
		return ErrSeatTaken
	}

	if p.Seat != nil {
		delete(r.seats, *p.Seat)
	}
	claimed := seat
	p.Seat = &claimed
	r.seats[seat] = playerID
	r.lastActive = r.clock.Now()

	r.logger.Info("Seat claimed", "player", p.Name, "seat", seat)
	return nil
}

// Start begins play. Only the host may start, and every seat must be
// claimed.
func (r *Room) Start(playerID string) error {
	r.mu.Lock()
	if r.status != RoomWaiting {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	if playerID != r.hostID {
		r.mu.Unlock()
		return ErrNotHost
	}
	if len(r.seats) != game.NumSeats {
		r.mu.Unlock()
		return ErrSeatsUnclaimed
	}
	r.status = RoomActive
	r.lastActive = r.clock.Now()
	r.mu.Unlock()

	r.logger.Info("Game started")
	_, err := r.session.StartDeal()
	return err
}

// StartNextDeal begins the following deal once the current one is
// scored. Any seated player may request it.
func (r *Room) StartNextDeal(playerID string) error {
	if _, err := r.playerSeat(playerID); err != nil {
		return err
	}
	if r.Status() != RoomActive {
		return ErrNotStarted
	}
	r.touch()
	_, err := r.session.StartDeal()
	return err
}

// SubmitBid applies a bid from the player's seat.
func (r *Room) SubmitBid(playerID string, bid game.Bid) error {
	seat, err := r.playerSeat(playerID)
	if err != nil {
		return err
	}
	if r.Status() != RoomActive {
		return ErrNotStarted
	}
	r.touch()
	return r.session.SubmitBid(seat, bid)
}

// SubmitPlay applies a card play from the player's seat. When the
// player is the declarer, the engine routes the play to whichever of
// declarer's two hands is on turn.
func (r *Room) SubmitPlay(playerID string, card deck.Card) error {
	seat, err := r.playerSeat(playerID)
	if err != nil {
		return err
	}
	if r.Status() != RoomActive {
		return ErrNotStarted
	}
	r.touch()
	return r.session.SubmitPlay(seat, card)
}

// playerSeat resolves a player's seat without holding the lock across
// engine calls.
func (r *Room) playerSeat(playerID string) (game.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	if !ok {
		return 0, ErrUnknownPlayer
	}
	if p.Seat == nil {
		return 0, ErrNotSeated
	}
	return *p.Seat, nil
}

// seatPlayerID returns the player occupying a seat.
func (r *Room) seatPlayerID(seat game.Seat) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.seats[seat]
	return id, ok
}

// LobbyState builds the lobby snapshot sent to clients.
func (r *Room) LobbyState() LobbyStateData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := LobbyStateData{
		GameCode: r.Code,
		Status:   string(r.status),
		Players:  make([]LobbyPlayer, 0, len(r.players)),
	}
	for _, p := range r.players {
		lp := LobbyPlayer{Name: p.Name, Host: p.Host}
		if p.Seat != nil {
			lp.Seat = p.Seat.String()
		}
		data.Players = append(data.Players, lp)
	}
	return data
}

// BroadcastLobbyState sends the current lobby snapshot to the room.
func (r *Room) BroadcastLobbyState() {
	msg, err := NewMessage(MessageTypeLobbyState, r.LobbyState())
	if err != nil {
		r.logger.Error("Failed to create lobby state message", "error", err)
		return
	}
	r.sender.BroadcastToGame(r.Code, msg)
}

// OnEvent implements the game.EventSubscriber interface
func (r *Room) OnEvent(event game.Event) {
	r.logger.Debug("Processing deal event", "type", event.EventType())

	switch e := event.(type) {
	case game.DealStartedEvent:
		r.mu.Lock()
		r.contract = ""
		r.mu.Unlock()
		r.broadcast(MessageTypeDealStarted, DealStartedData{
			DealNumber:    e.DealNumber,
			Dealer:        e.Dealer.String(),
			Vulnerability: e.Vulnerability.String(),
		})

	case game.HandDealtEvent:
		r.sendToSeat(e.Seat, MessageTypeHandDealt, HandDealtData{
			Seat:  e.Seat.String(),
			Cards: cardNumbers(e.Hand),
			HCP:   e.Hand.HighCardPoints(),
		})

	case game.BidMadeEvent:
		r.broadcast(MessageTypeBidMade, BidMadeData{
			Seat: e.Seat.String(),
			Bid:  WireBidFrom(e.Bid),
		})

	case game.AuctionSettledEvent:
		r.mu.Lock()
		r.contract = e.Contract.String()
		r.mu.Unlock()
		r.broadcast(MessageTypeAuctionSettled, AuctionSettledData{
			Contract: WireContractFrom(e.Contract),
			Leader:   e.Leader.String(),
		})

	case game.PassedOutEvent:
		r.broadcast(MessageTypePassedOut, struct{}{})

	case game.CardPlayedEvent:
		r.broadcast(MessageTypeCardPlayed, CardPlayedData{
			Seat: e.Seat.String(),
			Card: e.Card.Number(),
		})

	case game.DummyRevealedEvent:
		r.broadcast(MessageTypeDummyRevealed, DummyRevealedData{
			Dummy: e.Dummy.String(),
			Cards: cardNumbers(e.Hand),
		})

	case game.TrickCompletedEvent:
		tricks := make(map[string]int, game.NumSeats)
		for seat, n := range e.TricksWon {
			tricks[game.Seat(seat).String()] = n
		}
		r.broadcast(MessageTypeTrickCompleted, TrickCompletedData{
			Winner:    e.Winner.String(),
			TricksWon: tricks,
		})

	case game.TrickClearedEvent:
		r.broadcast(MessageTypeTrickCleared, TrickClearedData{
			Leader: e.Leader.String(),
		})

	case game.DealScoredEvent:
		r.broadcast(MessageTypeDealScored, r.dealScoredData(e))
	}
}

func (r *Room) dealScoredData(e game.DealScoredEvent) DealScoredData {
	r.mu.Lock()
	if e.Result.DeclarerSide == game.NorthSouth {
		r.totalNS += e.Result.Declarer.Total
		r.totalEW += e.Result.Defender.Total
	} else {
		r.totalEW += e.Result.Declarer.Total
		r.totalNS += e.Result.Defender.Total
	}
	data := DealScoredData{
		PassedOut:    e.PassedOut,
		Contract:     r.contract,
		ContractMade: e.Result.ContractMade,
		TricksTaken:  e.Result.TricksTaken,
		TricksNeeded: e.Result.TricksNeeded,
		Declarer:     WireBreakdownFrom(e.Result.Declarer),
		Defender:     WireBreakdownFrom(e.Result.Defender),
		Totals: map[string]int{
			game.NorthSouth.String(): r.totalNS,
			game.EastWest.String():   r.totalEW,
		},
	}
	r.mu.Unlock()
	return data
}

func (r *Room) broadcast(t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		r.logger.Error("Failed to create message", "error", err, "type", t)
		return
	}
	r.sender.BroadcastToGame(r.Code, msg)
}

func (r *Room) sendToSeat(seat game.Seat, t MessageType, data interface{}) {
	playerID, ok := r.seatPlayerID(seat)
	if !ok {
		r.logger.Warn("No player for seat", "seat", seat)
		return
	}
	msg, err := NewMessage(t, data)
	if err != nil {
		r.logger.Error("Failed to create message", "error", err, "type", t)
		return
	}
	if err := r.sender.SendToPlayer(playerID, msg); err != nil {
		r.logger.Error("Failed to send message", "error", err, "seat", seat)
	}
}
