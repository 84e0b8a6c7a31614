package room

import (
	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/rules"
)

// windState tracks a give-way: the seats after a finisher are asked in
// turn whether to beat the finisher's last play.
type windState struct {
	finisherID   string
	finisherSeat int
	base         rules.Pattern
	baseCards    []deck.Card
	skipSeat     int
	queue        []int
	index        int
}

func (w *windState) currentSeat() (int, bool) {
	if w.index >= len(w.queue) {
		return 0, false
	}
	return w.queue[w.index], true
}

// windSeats lists, clockwise from the finisher, every seat whose occupant
// still holds cards.
func (r *Room) windSeats(finisher *Player) []int {
	var seats []int
	for step := 1; step < Seats; step++ {
		seat := (*finisher.Seat + step) % Seats
		p := r.playerAtSeat(seat)
		if p == nil || p.ID == finisher.ID || !r.isActive(p.ID) {
			continue
		}
		seats = append(seats, seat)
	}
	return seats
}

// startWind opens a give-way after finisher emptied their hand on the
// standing combination. It reports whether the give-way took over the turn.
func (r *Room) startWind(finisher *Player) bool {
	if !r.started {
		return false
	}
	if r.wind != nil {
		return true
	}
	if r.lastPattern == nil || len(r.lastPlayed) == 0 || finisher.Seat == nil {
		return false
	}
	seats := r.windSeats(finisher)
	if len(seats) == 0 {
		return false
	}

	r.passes = 0
	r.mustLeadID = ""
	r.wind = &windState{
		finisherID:   finisher.ID,
		finisherSeat: *finisher.Seat,
		base:         *r.lastPattern,
		baseCards:    append([]deck.Card(nil), r.lastPlayed...),
		skipSeat:     seats[0],
		queue:        seats[1:],
	}
	r.logger.Info("Give-way started", "finisher", finisher.ID, "skip_seat", seats[0], "queue", seats[1:])

	seat, ok := r.wind.currentSeat()
	if !ok {
		r.finishWind()
		return true
	}
	r.setTurn(seat)
	r.emitWind()
	return true
}

// windGive moves the decision to the next queued seat, ending the give-way
// when the queue is exhausted.
func (r *Room) windGive() {
	r.wind.index++
	seat, ok := r.wind.currentSeat()
	if !ok {
		r.finishWind()
		return
	}
	r.setTurn(seat)
	r.emitWind()
}

// finishWind ends a give-way nobody contested: the trick is cleared and the
// skipped seat leads.
func (r *Room) finishWind() {
	skip := r.wind.skipSeat
	r.wind = nil
	r.clearTrick()
	r.mustLeadID = ""
	if lead := r.playerAtSeat(skip); lead != nil {
		r.mustLeadID = lead.ID
	}
	r.logger.Debug("Give-way ended without a stop", "lead_seat", skip)
	r.setTurn(skip)
	r.emitWind()
}

// Wind records id's give-way decision. Stopping requires cards that beat
// the finisher's last play.
func (r *Room) Wind(id, choice string, cards []deck.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.member(id)
	if err != nil {
		return err
	}
	if !r.started || r.wind == nil {
		return ErrNoWind
	}
	seat, ok := r.wind.currentSeat()
	if !ok || p.Seat == nil || *p.Seat != seat {
		return ErrNotWindTurn
	}

	switch choice {
	case protocol.WindGive:
		r.windGive()
	case protocol.WindStop:
		base := r.wind.base
		pattern, err := r.checkPlay(p.ID, cards, &base)
		if err != nil {
			return err
		}
		r.logger.Info("Give-way stopped", "player", p.ID)
		r.wind = nil
		r.emitWind()
		r.applyPlay(p, cards, pattern)
	default:
		return ErrUnknownWindChoice
	}

	r.emitState()
	return nil
}
