package room

import (
	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/rules"
)

// setTurn hands the floor to seat and restarts the countdown.
func (r *Room) setTurn(seat int) {
	r.turnSeat = seat
	r.turnLive = true
	r.turnEndsAt = r.clock.Now().Add(TurnDuration)
	r.armTimer()
	r.emitTurn()
}

// armTimer replaces any pending deadline with a fresh one. The generation
// counter lets a callback that lost the race with Stop recognise itself as
// stale.
func (r *Room) armTimer() {
	r.stopTimer()
	r.timerGen++
	gen := r.timerGen
	r.timer = r.clock.AfterFunc(TurnDuration, func() {
		r.onTurnExpired(gen)
	}, "room", "turn")
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

func (r *Room) onTurnExpired(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.timerGen || r.closed || !r.started || !r.turnLive {
		return
	}
	r.timer = nil

	if r.wind != nil {
		switch seat, ok := r.wind.currentSeat(); {
		case !ok:
			r.finishWind()
		case seat == r.turnSeat:
			r.logger.Debug("Wind decision timed out", "seat", seat)
			r.windGive()
		default:
			r.setTurn(seat)
		}
		r.emitState()
		return
	}

	p := r.playerAtSeat(r.turnSeat)
	if p == nil {
		r.advanceTurn()
		r.emitState()
		return
	}

	r.logger.Debug("Turn timed out", "player", p.ID, "seat", r.turnSeat)
	if p.ID == r.mustLeadID || r.lastPattern == nil {
		r.autoLead(p)
	} else {
		r.pass(p, true)
	}
	r.emitState()
}

// nextSeat finds the next seated, unfinished player clockwise from seat.
// It returns from when nobody else qualifies.
func (r *Room) nextSeat(from int) int {
	for i := 1; i <= Seats; i++ {
		seat := (from + i) % Seats
		p := r.playerAtSeat(seat)
		if p == nil || r.finished[p.ID] {
			continue
		}
		return seat
	}
	return from
}

// advanceTurn moves the floor clockwise. Arriving back at whoever laid the
// standing combination closes the trick and makes them lead.
func (r *Room) advanceTurn() {
	if r.wind != nil {
		return
	}
	next := r.nextSeat(r.turnSeat)
	if r.lastPattern != nil {
		if last := r.player(r.lastPlayerID); last != nil && last.Seat != nil && *last.Seat == next {
			r.clearTrick()
			r.mustLeadID = last.ID
		}
	}
	r.setTurn(next)
}

// activeCount is the number of dealt players still holding cards.
func (r *Room) activeCount() int {
	n := 0
	for id, hand := range r.hands {
		if !r.finished[id] && len(hand) > 0 {
			n++
		}
	}
	return n
}

func (r *Room) isActive(id string) bool {
	return !r.finished[id] && len(r.hands[id]) > 0
}

// Play lays cards or passes on behalf of id.
func (r *Room) Play(id, action string, cards []deck.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.member(id)
	if err != nil {
		return err
	}
	if !r.started {
		return ErrGameNotStarted
	}
	if r.wind != nil {
		return ErrWindActive
	}
	if !r.turnLive || p.Seat == nil || *p.Seat != r.turnSeat {
		return ErrNotYourTurn
	}

	switch action {
	case protocol.ActionPass:
		if p.ID == r.mustLeadID {
			return ErrMustLead
		}
		if r.lastPattern == nil {
			return ErrNothingToPass
		}
		r.pass(p, false)
	case protocol.ActionPlay:
		pattern, err := r.checkPlay(p.ID, cards, r.lastPattern)
		if err != nil {
			return err
		}
		r.applyPlay(p, cards, pattern)
	default:
		return protocol.ErrInvalidPayload
	}

	r.emitState()
	return nil
}

// checkPlay validates cards from id's hand against the combination they
// must beat.
func (r *Room) checkPlay(id string, cards []deck.Card, against *rules.Pattern) (rules.Pattern, error) {
	if !deck.Contains(r.hands[id], cards) {
		return rules.Pattern{}, ErrCardsNotHeld
	}
	pattern, ok := rules.Classify(cards)
	if !ok {
		return rules.Pattern{}, ErrInvalidPattern
	}
	if !rules.CanBeat(against, pattern) {
		return rules.Pattern{}, ErrCannotBeat
	}
	return pattern, nil
}

// pass records a pass by p, explicit or forced by the clock, and closes the
// trick once every other active player has declined.
func (r *Room) pass(p *Player, timeout bool) {
	r.passes++
	r.broadcast(protocol.TypeActionPlayed, protocol.ActionPlayed{
		PlayerID: p.ID,
		Action:   protocol.ActionPass,
		Timeout:  timeout,
	})

	leadActive := r.lastPlayerID != "" && r.isActive(r.lastPlayerID)
	active := r.activeCount()
	needed := active
	if leadActive && active > 1 {
		needed = active - 1
	}
	if r.passes < needed {
		r.advanceTurn()
		return
	}

	lastSeat := r.turnSeat
	if last := r.player(r.lastPlayerID); last != nil && last.Seat != nil {
		lastSeat = *last.Seat
	}
	r.clearTrick()

	leadSeat := lastSeat
	if !leadActive {
		leadSeat = r.nextSeat(lastSeat)
	}
	r.mustLeadID = ""
	if lead := r.playerAtSeat(leadSeat); lead != nil && !r.finished[lead.ID] {
		r.mustLeadID = lead.ID
	}
	r.logger.Debug("Trick closed", "lead_seat", leadSeat)
	r.setTurn(leadSeat)
}

// autoLead opens a trick for p with their lowest single.
func (r *Room) autoLead(p *Player) {
	card, ok := rules.LowestSingle(r.hands[p.ID])
	if !ok {
		r.advanceTurn()
		return
	}
	cards := []deck.Card{card}
	pattern, _ := rules.Classify(cards)
	r.logger.Debug("Auto-leading lowest single", "player", p.ID, "card", card)
	r.applyPlay(p, cards, pattern)
}

// applyPlay commits a validated play: it becomes the standing combination
// and the round moves on to a finish, a give-way or the next seat.
func (r *Room) applyPlay(p *Player, cards []deck.Card, pattern rules.Pattern) {
	played := append([]deck.Card(nil), cards...)
	r.hands[p.ID] = deck.Remove(r.hands[p.ID], played)
	r.lastPlayed = played
	r.lastPattern = &pattern
	r.lastPlayerID = p.ID
	r.passes = 0
	r.mustLeadID = ""

	r.broadcast(protocol.TypePlayMade, protocol.PlayMade{PlayerID: p.ID, Cards: played})
	r.emitHand(p.ID)

	if len(r.hands[p.ID]) == 0 {
		if out := r.registerFinish(p.ID); out != nil {
			r.concludeRound(out)
			return
		}
		if r.startWind(p) {
			return
		}
	}
	if r.started {
		r.advanceTurn()
	}
}
