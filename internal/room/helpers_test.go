package room

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/randutil"
	"github.com/lox/redtens/internal/rules"
)

type sent struct {
	to      string
	typ     protocol.MessageType
	payload any
}

// recorder is a Notifier that keeps everything it is handed.
type recorder struct {
	mu   sync.Mutex
	msgs []sent
}

func (rec *recorder) Send(playerID string, typ protocol.MessageType, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.msgs = append(rec.msgs, sent{to: playerID, typ: typ, payload: payload})
}

func (rec *recorder) to(id string, typ protocol.MessageType) []any {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []any
	for _, m := range rec.msgs {
		if m.to == id && m.typ == typ {
			out = append(out, m.payload)
		}
	}
	return out
}

func (rec *recorder) last(id string, typ protocol.MessageType) (any, bool) {
	all := rec.to(id, typ)
	if len(all) == 0 {
		return nil, false
	}
	return all[len(all)-1], true
}

func (rec *recorder) reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.msgs = nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type harness struct {
	t     *testing.T
	reg   *Registry
	clock *quartz.Mock
	rec   *recorder
	room  *Room
	ids   []string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := &recorder{}
	opts = append([]Option{WithClock(clock), WithRand(randutil.New(42))}, opts...)
	reg := NewRegistry(rec, testLogger(), opts...)
	t.Cleanup(reg.Close)
	return &harness{t: t, reg: reg, clock: clock, rec: rec}
}

func playerID(seat int) string { return fmt.Sprintf("p%d", seat) }

// fullTable creates room TABLE with p0 hosting and p1..p6 seated in order.
func (h *harness) fullTable() *Room {
	h.t.Helper()
	_, err := h.reg.Create("TABLE", playerID(0), "P0")
	require.NoError(h.t, err)
	h.ids = []string{playerID(0)}

	for seat := 1; seat < Seats; seat++ {
		id := playerID(seat)
		r, err := h.reg.Join("TABLE", id, fmt.Sprintf("P%d", seat))
		require.NoError(h.t, err)
		require.NoError(h.t, r.TakeSeat(id, seat))
		h.ids = append(h.ids, id)
	}
	r, err := h.reg.Get("TABLE")
	require.NoError(h.t, err)
	h.room = r
	return r
}

// rig starts a round with chosen hands, one string per seat, seat 0 to
// lead. Hands are sorted as a real deal would leave them.
func (h *harness) rig(hands ...string) {
	h.t.Helper()
	require.Len(h.t, hands, Seats)
	r := h.room

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetRound()
	r.started = true
	for seat, cards := range hands {
		id := playerID(seat)
		r.hands[id] = deck.MustParseCards(cards)
		rules.SortHand(r.hands[id])
		if countRedTens(r.hands[id]) > 0 {
			r.redTeam[id] = true
		}
	}
	r.mustLeadID = playerID(0)
	r.setTurn(0)
}

func (h *harness) expire() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(TurnDuration).MustWait(ctx)
}

func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(d).MustWait(ctx)
}

func (h *harness) play(seat int, cards string) error {
	return h.room.Play(playerID(seat), protocol.ActionPlay, deck.MustParseCards(cards))
}

func (h *harness) pass(seat int) error {
	return h.room.Play(playerID(seat), protocol.ActionPass, nil)
}

// state reads room internals under the lock.
func (h *harness) state(fn func(r *Room)) {
	h.room.mu.Lock()
	defer h.room.mu.Unlock()
	fn(h.room)
}

func (h *harness) turnSeat() int {
	var seat int
	h.state(func(r *Room) {
		require.True(h.t, r.turnLive, "no live turn")
		seat = r.turnSeat
	})
	return seat
}
