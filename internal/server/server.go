// Package server exposes Red Tens rooms over websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/randutil"
	"github.com/lox/redtens/internal/room"
)

// Server accepts websocket clients and routes their intents to rooms.
type Server struct {
	config   Config
	clock    quartz.Clock
	rng      *rand.Rand
	logger   *log.Logger
	upgrader websocket.Upgrader
	rooms    *room.Registry

	mu          sync.RWMutex
	connections map[string]*Connection
	httpServer  *http.Server
}

// ServerOption configures optional server settings
type ServerOption func(*Server)

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) ServerOption {
	return func(s *Server) {
		s.config = *cfg
	}
}

// WithClock sets the clock driving turn deadlines.
func WithClock(clock quartz.Clock) ServerOption {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithRand sets the source every deal is drawn from.
func WithRand(rng *rand.Rand) ServerOption {
	return func(s *Server) {
		s.rng = rng
	}
}

// NewServer creates a new websocket server.
func NewServer(logger *log.Logger, opts ...ServerOption) *Server {
	s := &Server{
		config:      *DefaultConfig(),
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
		connections: make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = randutil.New(randutil.Seed(s.config.Game.Seed))
	}

	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	s.rooms = room.NewRegistry(s, logger,
		room.WithClock(s.clock),
		room.WithRand(s.rng),
		room.WithChatHistory(s.config.Game.ChatHistory),
		room.WithChatMaxLength(s.config.Game.ChatMaxLength),
	)
	return s
}

// Rooms returns the registry backing this server.
func (s *Server) Rooms() *room.Registry {
	return s.rooms
}

// Handler returns the HTTP routes served by this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	return mux
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{Handler: s.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting websocket server", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Shutdown stops the listener, drops every client and stops every room.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	for _, c := range conns {
		_ = c.Close() // Ignore close errors during shutdown
	}
	s.rooms.Close()
	s.logger.Info("Server stopped", "clients", len(conns))
	return err
}

// Send implements room.Notifier. Delivery never blocks; a client that
// cannot keep up is disconnected by its Connection.
func (s *Server) Send(playerID string, typ protocol.MessageType, payload any) {
	s.mu.RLock()
	conn := s.connections[playerID]
	s.mu.RUnlock()
	if conn == nil {
		return
	}

	msg, err := protocol.NewMessage(typ, payload)
	if err != nil {
		s.logger.Error("Failed to encode message", "type", typ, "error", err)
		return
	}
	if err := conn.SendMessage(msg); err != nil {
		s.logger.Debug("Dropped message", "player", playerID, "type", typ, "error", err)
	}
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c.playerID] = c
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "player", c.playerID, "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	if s.connections[c.playerID] == c {
		delete(s.connections, c.playerID)
	}
	total := len(s.connections)
	s.mu.Unlock()

	s.rooms.LeaveAll(c.playerID)
	s.logger.Info("Client disconnected", "player", c.playerID, "total", total)
}

// ConnectedPlayers returns the IDs of every connected client.
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]string, 0, len(s.connections))
	for id := range s.connections {
		players = append(players, id)
	}
	slices.Sort(players)
	return players
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.config.Server.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
			return true
		}
	}
	return false
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(ws, uuid.NewString(), s, s.logger)
	s.register(client)
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister(client)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.rooms.Summaries()); err != nil {
		s.logger.Error("Failed to encode room list", "error", err)
	}
}
