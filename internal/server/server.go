package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/cardtable/bridge/internal/history"
	"github.com/cardtable/bridge/internal/randutil"
	"github.com/cardtable/bridge/internal/session"
)

const gameCodeLength = 6
const gameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// idleSweepInterval is how often the server checks for idle games.
const idleSweepInterval = time.Minute

// Server accepts WebSocket clients and routes them into game rooms.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	logger      *log.Logger
	store       history.Store
	clock       quartz.Clock
	trickPause  time.Duration
	idleTimeout time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	mu          sync.RWMutex
	connections map[*Connection]bool
	players     map[string]*Connection // playerID -> connection
	rooms       map[string]*Room       // game code -> room

	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc

	corsOrigins []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClock substitutes the clock, for tests.
func WithClock(clock quartz.Clock) ServerOption {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server from configuration. The store holds deal
// history for every room; the RNG seeds game codes and shuffles.
func NewServer(cfg *ServerConfig, logger *log.Logger, store history.Store, rng *rand.Rand, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: cfg.GetServerAddress(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin filtering happens in the CORS layer
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		store:       store,
		clock:       quartz.NewReal(),
		trickPause:  time.Duration(cfg.Game.TrickPauseMillis) * time.Millisecond,
		idleTimeout: time.Duration(cfg.Game.IdleTimeoutMinutes) * time.Minute,
		rng:         rng,
		connections: make(map[*Connection]bool),
		players:     make(map[string]*Connection),
		rooms:       make(map[string]*Room),
		ctx:         ctx,
		cancel:      cancel,
		corsOrigins: cfg.Server.AllowedOrigins,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.idleTimeout > 0 {
		s.clock.TickerFunc(s.ctx, idleSweepInterval, func() error {
			s.sweepIdleRooms()
			return nil
		}, "idle-sweep")
	}
	return s
}

// Start runs the HTTP server until Stop is called or the listener
// fails.
func (s *Server) Start() error {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/games/{code}/deals", s.handleGameDeals).Methods("GET")
	r.HandleFunc("/api/games/{code}/totals", s.handleGameTotals).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down and closes every client connection.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)

	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	client.Start()

	go func() {
		<-client.ctx.Done()
		s.dropConnection(client)
	}()
}

func (s *Server) dropConnection(client *Connection) {
	s.mu.Lock()
	if _, ok := s.connections[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.connections, client)
	playerID := client.GetPlayer()
	gameCode := client.GetGame()
	if playerID != "" {
		delete(s.players, playerID)
	}
	total := len(s.connections)
	s.mu.Unlock()

	if playerID != "" && gameCode != "" {
		s.releasePlayer(playerID, gameCode)
	}
	_ = client.Close()
	s.logger.Info("Client disconnected", "total", total)
}

// releasePlayer removes a departed player from their room and deletes
// the room once its last player is gone.
func (s *Server) releasePlayer(playerID, gameCode string) {
	room, ok := s.Room(gameCode)
	if !ok {
		return
	}
	room.Leave(playerID)
	if room.Empty() {
		s.removeRoom(gameCode, "empty")
		return
	}
	room.BroadcastLobbyState()
}

// removeRoom deletes a room and tears down its session.
func (s *Server) removeRoom(code, reason string) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	if ok {
		delete(s.rooms, code)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	room.Close()
	s.logger.Info("Game removed", "game", code, "reason", reason)
}

// sweepIdleRooms removes rooms with no player activity for the idle
// timeout. Runs on the sweep ticker.
func (s *Server) sweepIdleRooms() {
	now := s.clock.Now()

	s.mu.RLock()
	var idle []string
	for code, room := range s.rooms {
		if now.Sub(room.LastActive()) >= s.idleTimeout {
			idle = append(idle, code)
		}
	}
	s.mu.RUnlock()

	for _, code := range idle {
		s.removeRoom(code, "idle")
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleGameDeals serves a game's deal history.
func (s *Server) handleGameDeals(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	if _, ok := s.Room(code); !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	deals, err := s.store.GetGameDeals(code)
	if err != nil {
		s.logger.Error("Failed to load deal history", "error", err, "game", code)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(deals)
}

// handleGameTotals serves a game's running partnership totals.
func (s *Server) handleGameTotals(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	if _, ok := s.Room(code); !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	ns, ew, err := s.store.GameTotals(code)
	if err != nil {
		s.logger.Error("Failed to load totals", "error", err, "game", code)
		http.Error(w, "failed to load totals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"NS": ns, "EW": ew})
}

// CreateRoom creates a room with a fresh game code and its own seeded
// session.
func (s *Server) CreateRoom() *Room {
	s.rngMu.Lock()
	code := s.newGameCode()
	seed := s.rng.Int64()
	s.rngMu.Unlock()

	sess := session.New(code, randutil.New(seed),
		session.WithStore(s.store),
		session.WithTrickPause(s.trickPause),
		session.WithClock(s.clock),
		session.WithLogger(s.logger))
	room := NewRoom(code, sess, s, s.logger, s.clock)

	s.mu.Lock()
	s.rooms[code] = room
	s.mu.Unlock()

	s.logger.Info("Game created", "game", code)
	return room
}

// newGameCode generates an unused room code. Caller holds rngMu.
func (s *Server) newGameCode() string {
	for {
		b := make([]byte, gameCodeLength)
		for i := range b {
			b[i] = gameCodeAlphabet[s.rng.IntN(len(gameCodeAlphabet))]
		}
		code := string(b)

		s.mu.RLock()
		_, exists := s.rooms[code]
		s.mu.RUnlock()
		if !exists {
			return code
		}
	}
}

// Room looks up a room by game code.
func (s *Server) Room(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

// registerPlayer binds a player ID to its connection for private
// messages.
func (s *Server) registerPlayer(playerID string, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[playerID] = conn
}

// BroadcastToGame sends a message to every connection in a game.
func (s *Server) BroadcastToGame(gameCode string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetGame() == gameCode {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message", "error", err, "player", conn.GetPlayer())
			} else {
				count++
			}
		}
	}

	s.logger.Debug("Broadcast message", "game", gameCode, "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	conn, ok := s.players[playerID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("player %s not connected", playerID)
	}
	return conn.SendMessage(msg)
}
