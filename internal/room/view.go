package room

import (
	"maps"

	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
)

func (r *Room) send(id string, typ protocol.MessageType, payload any) {
	r.notifier.Send(id, typ, payload)
}

func (r *Room) broadcast(typ protocol.MessageType, payload any) {
	for _, p := range r.players {
		r.notifier.Send(p.ID, typ, payload)
	}
}

func (r *Room) emitState() {
	r.broadcast(protocol.TypeRoomState, r.view())
}

func (r *Room) emitTurn() {
	r.broadcast(protocol.TypeTurnUpdate, protocol.TurnUpdate{
		TurnSeat:     r.turnSeatView(),
		TurnEndsAt:   r.turnEndsAtView(),
		ServerNow:    r.clock.Now().UnixMilli(),
		TurnDuration: protocol.TurnDurationMs,
	})
}

func (r *Room) emitWind() {
	r.broadcast(protocol.TypeWindState, r.windView())
}

func (r *Room) emitHand(id string) {
	hand := make([]deck.Card, len(r.hands[id]))
	copy(hand, r.hands[id])
	r.send(id, protocol.TypeYourHand, protocol.YourHand{Code: r.code, Hand: hand})
}

func (r *Room) turnSeatView() *int {
	if !r.turnLive {
		return nil
	}
	return intPtr(r.turnSeat)
}

func (r *Room) turnEndsAtView() *int64 {
	if !r.turnLive {
		return nil
	}
	ms := r.turnEndsAt.UnixMilli()
	return &ms
}

// view builds the sanitized snapshot every member may see.
func (r *Room) view() protocol.RoomState {
	players := make([]protocol.PlayerView, 0, len(r.players))
	for _, p := range r.players {
		pv := protocol.PlayerView{ID: p.ID, Name: p.Name, Ready: p.Ready}
		if p.Seat != nil {
			pv.Seat = intPtr(*p.Seat)
		}
		players = append(players, pv)
	}

	chat := r.chat
	if n := r.settings.ChatHistory; len(chat) > n {
		chat = chat[len(chat)-n:]
	}

	return protocol.RoomState{
		Code:       r.code,
		HostID:     r.hostID,
		Started:    r.started,
		Players:    players,
		TurnSeat:   r.turnSeatView(),
		TurnEndsAt: r.turnEndsAtView(),
		Scores:     maps.Clone(r.scores),
		TeamScores: maps.Clone(r.teamScores),
		ChatLog:    append([]protocol.ChatEntry(nil), chat...),
		WindState:  r.windView(),
	}
}

func (r *Room) windView() *protocol.WindView {
	w := r.wind
	if w == nil {
		return nil
	}
	v := &protocol.WindView{
		FinisherID: w.finisherID,
		SkipSeat:   w.skipSeat,
		QueueSeats: append([]int{}, w.queue...),
		BaseCards:  append([]deck.Card(nil), w.baseCards...),
	}
	if seat, ok := w.currentSeat(); ok {
		v.CurrentSeat = intPtr(seat)
	}
	return v
}

// Snapshot returns the sanitized room view.
func (r *Room) Snapshot() protocol.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view()
}

// Summary returns the admin listing entry for the room.
func (r *Room) Summary() protocol.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomSummary{
		Code:    r.code,
		Members: len(r.players),
		Seated:  len(r.seatedPlayers()),
		Started: r.started,
	}
}
