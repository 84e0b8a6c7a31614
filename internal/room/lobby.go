package room

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/lox/redtens/internal/protocol"
)

// join adds id as a spectator. Joining twice is harmless.
func (r *Room) join(id, name string) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if r.player(id) == nil {
		r.players = append(r.players, &Player{ID: id, Name: name})
		if _, ok := r.scores[id]; !ok {
			r.scores[id] = 0
		}
		r.logger.Info("Player joined", "player", id, "name", name)
	}
	r.emitState()
	if r.started {
		r.emitTurn()
		r.emitWind()
	}
	return nil
}

// TakeSeat moves id into seat. Taking an occupied seat, or any seat while a
// round is running, is silently ignored.
func (r *Room) TakeSeat(id string, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.member(id)
	if err != nil {
		return err
	}
	if r.started || seat < 0 || seat >= Seats || r.playerAtSeat(seat) != nil {
		return nil
	}
	p.Seat = intPtr(seat)
	p.Ready = false
	r.emitState()
	return nil
}

// SetReady toggles a seated, non-host member's ready flag.
func (r *Room) SetReady(id string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.member(id)
	if err != nil {
		return err
	}
	if r.started {
		return nil
	}
	if p.ID == r.hostID {
		return ErrHostReady
	}
	if !p.seated() {
		return ErrNotSeated
	}
	p.Ready = ready
	r.emitState()
	return nil
}

// Chat appends a line to the room log and relays it.
func (r *Room) Chat(id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.member(id)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit := r.settings.ChatMaxLength; utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}

	entry := protocol.ChatEntry{ID: p.ID, Name: p.Name, Text: text, TS: r.clock.Now().UnixMilli()}
	r.chat = append(r.chat, entry)
	if n := r.settings.ChatHistory; len(r.chat) > n {
		r.chat = append([]protocol.ChatEntry(nil), r.chat[len(r.chat)-n:]...)
	}
	r.broadcast(protocol.TypeChatMessage, entry)
	return nil
}

// VoiceStatus relays a speaking indicator.
func (r *Room) VoiceStatus(id string, speaking bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.member(id); err != nil {
		return err
	}
	r.broadcast(protocol.TypeVoiceStatus, protocol.VoiceStatusEvent{ID: id, Speaking: speaking})
	return nil
}

// VoiceChunk relays an opaque audio chunk to the room.
func (r *Room) VoiceChunk(id string, chunk json.RawMessage, mimeType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.member(id); err != nil {
		return err
	}
	if len(chunk) == 0 {
		return nil
	}
	r.broadcast(protocol.TypeVoiceChunk, protocol.VoiceChunkEvent{From: id, Chunk: chunk, MimeType: mimeType})
	return nil
}

// leave removes id and reports whether the room is now empty. A dealt
// player walking out ends the round unscored.
func (r *Room) leave(id string) (empty bool, err error) {
	p, err := r.member(id)
	if err != nil {
		return false, err
	}

	for i, q := range r.players {
		if q == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.logger.Info("Player left", "player", id)

	if len(r.players) == 0 {
		r.resetRound()
		r.closed = true
		return true, nil
	}

	if r.hostID == id {
		r.hostID = r.players[0].ID
		r.logger.Info("Host reassigned", "host", r.hostID)
	}

	if _, dealt := r.hands[id]; dealt && r.started {
		r.abortRound(p.Name + " left the table; round abandoned.")
		return false, nil
	}
	r.emitState()
	return false, nil
}
