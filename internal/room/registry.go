package room

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/randutil"
	"github.com/lox/redtens/internal/roomcode"
)

// Registry owns every live room, keyed by code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	rngMu sync.Mutex
	rng   *rand.Rand

	clock    quartz.Clock
	codes    *roomcode.Generator
	notifier Notifier
	logger   *log.Logger
	settings Settings
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the wall clock, typically with quartz.NewMock in tests.
func WithClock(clock quartz.Clock) Option {
	return func(g *Registry) {
		g.clock = clock
	}
}

// WithRand sets the source every room's deck shuffles derive from.
func WithRand(rng *rand.Rand) Option {
	return func(g *Registry) {
		g.rng = rng
	}
}

// WithChatHistory caps the chat entries kept per room.
func WithChatHistory(n int) Option {
	return func(g *Registry) {
		if n > 0 {
			g.settings.ChatHistory = n
		}
	}
}

// WithChatMaxLength caps a single chat line, in runes.
func WithChatMaxLength(n int) Option {
	return func(g *Registry) {
		if n > 0 {
			g.settings.ChatMaxLength = n
		}
	}
}

// WithCodeGenerator sets how codes are minted for rooms created without one.
func WithCodeGenerator(gen *roomcode.Generator) Option {
	return func(g *Registry) {
		g.codes = gen
	}
}

// NewRegistry creates an empty registry delivering events through notifier.
func NewRegistry(notifier Notifier, logger *log.Logger, opts ...Option) *Registry {
	g := &Registry{
		rooms:    make(map[string]*Room),
		clock:    quartz.NewReal(),
		notifier: notifier,
		logger:   logger,
		settings: Settings{
			ChatHistory:   DefaultChatHistory,
			ChatMaxLength: DefaultChatMaxLength,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = randutil.New(randutil.Seed(nil))
	}
	if g.codes == nil {
		g.codes = roomcode.NewGenerator(nil)
	}
	return g
}

// Create opens a room with id as host in seat 0. An empty code asks the
// registry to mint one. It returns the room's code.
func (g *Registry) Create(code, id, name string) (string, error) {
	code = strings.TrimSpace(code)

	g.mu.Lock()
	defer g.mu.Unlock()

	if code == "" {
		for {
			code = g.codes.Generate()
			if _, taken := g.rooms[code]; !taken {
				break
			}
		}
	} else if _, taken := g.rooms[code]; taken {
		return "", fmt.Errorf("%w: %s", ErrRoomExists, code)
	}

	g.rngMu.Lock()
	rng := randutil.Child(g.rng)
	g.rngMu.Unlock()

	host := &Player{ID: id, Name: name, Seat: intPtr(0)}
	r := newRoom(code, host, g.clock, rng, g.notifier, g.logger, g.settings)
	g.rooms[code] = r
	g.logger.Info("Room created", "code", code, "host", id)

	r.mu.Lock()
	r.emitState()
	r.mu.Unlock()
	return code, nil
}

// Join adds id to an existing room as a spectator.
func (g *Registry) Join(code, id, name string) (*Room, error) {
	r, err := g.Get(code)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.join(id, name); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the live room for code.
func (g *Registry) Get(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Leave removes id from the room, deleting the room once nobody is left.
func (g *Registry) Leave(code, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	return g.leaveLocked(r, id)
}

// LeaveAll removes id from every room it belongs to, as on disconnect.
func (g *Registry) LeaveAll(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.rooms {
		if err := g.leaveLocked(r, id); err != nil && !IsStructural(err) {
			g.logger.Warn("Failed to remove player", "code", r.code, "player", id, "error", err)
		}
	}
}

func (g *Registry) leaveLocked(r *Room, id string) error {
	r.mu.Lock()
	empty, err := r.leave(id)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if empty {
		delete(g.rooms, r.code)
		g.logger.Info("Room closed", "code", r.code)
	}
	return nil
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Summaries lists every live room ordered by code.
func (g *Registry) Summaries() []protocol.RoomSummary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]protocol.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	slices.SortFunc(out, func(a, b protocol.RoomSummary) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

// Close stops every room's turn clock and forgets all rooms.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for code, r := range g.rooms {
		r.mu.Lock()
		r.resetRound()
		r.closed = true
		r.mu.Unlock()
		delete(g.rooms, code)
	}
}
