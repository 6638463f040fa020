package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cardtable/bridge/internal/deck"
	"github.com/cardtable/bridge/internal/game"
	"github.com/cardtable/bridge/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	gameCode  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		server: server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel already closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetGame associates this connection with a game
func (c *Connection) SetGame(gameCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameCode = gameCode
}

// GetGame returns the associated game code
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameCode
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeClaimSeat:
		var data ClaimSeatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse claim seat data")
			return
		}
		c.handleClaimSeat(data)

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypeNextDeal:
		c.handleNextDeal()

	case MessageTypeSubmitBid:
		var data SubmitBidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bid data")
			return
		}
		c.handleSubmitBid(data)

	case MessageTypeSubmitPlay:
		var data SubmitPlayData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.handleSubmitPlay(data)

	default:
		c.sendError("unknown_message", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name is required")
		return
	}
	if c.GetGame() != "" {
		c.sendError("already_in_game", "Leave the current game first")
		return
	}

	room := c.server.CreateRoom()
	playerID := uuid.NewString()
	if err := room.Join(playerID, data.PlayerName); err != nil {
		c.sendGameError(err)
		return
	}

	c.SetPlayer(playerID)
	c.SetGame(room.Code)
	c.server.registerPlayer(playerID, c)

	c.reply(MessageTypeGameCreated, GameCreatedData{GameCode: room.Code, PlayerID: playerID})
	room.BroadcastLobbyState()
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name is required")
		return
	}
	if c.GetGame() != "" {
		c.sendError("already_in_game", "Leave the current game first")
		return
	}

	code := strings.ToUpper(data.GameCode)
	room, ok := c.server.Room(code)
	if !ok {
		c.sendError("game_not_found", "No game with code "+code)
		return
	}

	playerID := uuid.NewString()
	if err := room.Join(playerID, data.PlayerName); err != nil {
		c.sendGameError(err)
		return
	}

	c.SetPlayer(playerID)
	c.SetGame(code)
	c.server.registerPlayer(playerID, c)

	c.reply(MessageTypeGameJoined, GameJoinedData{GameCode: code, PlayerID: playerID})
	room.BroadcastLobbyState()
}

func (c *Connection) handleClaimSeat(data ClaimSeatData) {
	room, ok := c.currentRoom()
	if !ok {
		return
	}

	seat, err := game.ParseSeat(data.Seat)
	if err != nil {
		c.sendError("invalid_seat", err.Error())
		return
	}

	if err := room.ClaimSeat(c.GetPlayer(), seat); err != nil {
		c.sendGameError(err)
		return
	}
	room.BroadcastLobbyState()
}

func (c *Connection) handleStartGame() {
	room, ok := c.currentRoom()
	if !ok {
		return
	}
	if err := room.Start(c.GetPlayer()); err != nil {
		c.sendGameError(err)
		return
	}
	room.BroadcastLobbyState()
}

func (c *Connection) handleNextDeal() {
	room, ok := c.currentRoom()
	if !ok {
		return
	}
	if err := room.StartNextDeal(c.GetPlayer()); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handleSubmitBid(data SubmitBidData) {
	room, ok := c.currentRoom()
	if !ok {
		return
	}

	bid, err := data.Bid.ToBid()
	if err != nil {
		c.sendError("invalid_bid", err.Error())
		return
	}

	if err := room.SubmitBid(c.GetPlayer(), bid); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handleSubmitPlay(data SubmitPlayData) {
	room, ok := c.currentRoom()
	if !ok {
		return
	}

	card, err := deck.FromNumber(data.Card)
	if err != nil {
		c.sendError("invalid_card", err.Error())
		return
	}

	if err := room.SubmitPlay(c.GetPlayer(), card); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) currentRoom() (*Room, bool) {
	code := c.GetGame()
	if code == "" {
		c.sendError("not_in_game", "Join a game first")
		return nil, false
	}
	room, ok := c.server.Room(code)
	if !ok {
		c.sendError("game_not_found", "Game no longer exists")
		return nil, false
	}
	return room, true
}

// sendGameError maps engine and room errors to wire error codes.
func (c *Connection) sendGameError(err error) {
	code := "internal_error"
	switch {
	case errors.Is(err, game.ErrOutOfTurn):
		code = "out_of_turn"
	case errors.Is(err, game.ErrIllegalBid):
		code = "illegal_bid"
	case errors.Is(err, game.ErrIllegalPlay):
		code = "illegal_play"
	case errors.Is(err, game.ErrInvalidDealState):
		code = "invalid_state"
	case errors.Is(err, ErrRoomFull):
		code = "game_full"
	case errors.Is(err, ErrSeatTaken):
		code = "seat_taken"
	case errors.Is(err, ErrNotHost):
		code = "not_host"
	case errors.Is(err, ErrSeatsUnclaimed):
		code = "seats_unclaimed"
	case errors.Is(err, ErrAlreadyStarted):
		code = "already_started"
	case errors.Is(err, ErrNotStarted):
		code = "not_started"
	case errors.Is(err, ErrNotSeated):
		code = "not_seated"
	case errors.Is(err, ErrUnknownPlayer):
		code = "unknown_player"
	case errors.Is(err, session.ErrDealInProgress):
		code = "deal_in_progress"
	case errors.Is(err, session.ErrNoDeal):
		code = "no_deal"
	}
	c.sendError(code, err.Error())
}

func (c *Connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) reply(t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "error", err, "type", t)
		return
	}
	_ = c.SendMessage(msg)
}
