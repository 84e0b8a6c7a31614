// Package room runs Red Tens tables: membership, seating, dealing, the turn
// clock, the give-way sequence and round scoring.
//
// Every exported Room method and every timer expiry takes the room mutex and
// runs to completion, so a room behaves as a single writer. Notifications are
// delivered through a Notifier while the lock is held; implementations must
// not block and must not call back into the room.
package room

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/rules"
)

const (
	// Seats at every table. A round needs all of them filled.
	Seats = protocol.Seats

	// TurnDuration is the time a player has to act before the server acts
	// for them.
	TurnDuration = protocol.TurnDurationMs * time.Millisecond

	DefaultChatHistory   = 80
	DefaultChatMaxLength = 200
)

// Notifier delivers a payload to one connected player.
type Notifier interface {
	Send(playerID string, typ protocol.MessageType, payload any)
}

// Player is a room member. Seat is nil while spectating.
type Player struct {
	ID    string
	Name  string
	Seat  *int
	Ready bool
}

func (p *Player) seated() bool { return p.Seat != nil }

// Room is one table. All fields are guarded by mu.
type Room struct {
	mu     sync.Mutex
	code   string
	hostID string
	closed bool

	players []*Player

	// round-scoped
	started         bool
	hands           map[string][]deck.Card
	turnSeat        int
	turnLive        bool
	turnEndsAt      time.Time
	lastPlayed      []deck.Card
	lastPattern     *rules.Pattern
	lastPlayerID    string
	passes          int
	mustLeadID      string
	finished        map[string]bool
	redTeam         map[string]bool
	firstOutTeam    string
	firstFinisherID string
	wind            *windState

	// carried between rounds
	nextStartSeat *int
	scores        map[string]float64
	teamScores    map[string]float64
	chat          []protocol.ChatEntry

	timer    *quartz.Timer
	timerGen uint64

	clock    quartz.Clock
	rng      *rand.Rand
	notifier Notifier
	logger   *log.Logger
	settings Settings
}

// Settings tune per-room limits.
type Settings struct {
	ChatHistory   int
	ChatMaxLength int
}

func newRoom(code string, host *Player, clock quartz.Clock, rng *rand.Rand, notifier Notifier, logger *log.Logger, settings Settings) *Room {
	r := &Room{
		code:       code,
		hostID:     host.ID,
		players:    []*Player{host},
		scores:     map[string]float64{host.ID: 0},
		teamScores: map[string]float64{protocol.TeamRed: 0, protocol.TeamBlack: 0},
		clock:      clock,
		rng:        rng,
		notifier:   notifier,
		logger:     logger.WithPrefix("room").With("code", code),
		settings:   settings,
	}
	r.resetRound()
	return r
}

// Code returns the room's code.
func (r *Room) Code() string { return r.code }

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerAtSeat(seat int) *Player {
	for _, p := range r.players {
		if p.Seat != nil && *p.Seat == seat {
			return p
		}
	}
	return nil
}

func (r *Room) seatedPlayers() []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.seated() {
			out = append(out, p)
		}
	}
	return out
}

// member resolves id to a player of an open room.
func (r *Room) member(id string) (*Player, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}
	p := r.player(id)
	if p == nil {
		return nil, ErrNotMember
	}
	return p, nil
}

// resetRound clears everything scoped to a single round and cancels the
// turn clock. Scores, chat and the next starting seat survive.
func (r *Room) resetRound() {
	r.stopTimer()
	r.started = false
	r.hands = make(map[string][]deck.Card)
	r.turnLive = false
	r.turnSeat = 0
	r.turnEndsAt = time.Time{}
	r.clearTrick()
	r.mustLeadID = ""
	r.finished = make(map[string]bool)
	r.redTeam = make(map[string]bool)
	r.firstOutTeam = ""
	r.firstFinisherID = ""
	r.wind = nil
}

func (r *Room) clearTrick() {
	r.lastPlayed = nil
	r.lastPattern = nil
	r.lastPlayerID = ""
	r.passes = 0
}

func intPtr(v int) *int { return &v }
