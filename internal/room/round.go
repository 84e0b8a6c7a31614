package room

import (
	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/rules"
)

func (r *Room) hostAction(id string) error {
	if _, err := r.member(id); err != nil {
		return err
	}
	if id != r.hostID {
		return ErrNotHost
	}
	return nil
}

// Start deals a round once the table is full and everyone but the host has
// readied up.
func (r *Room) Start(id string) error {
	return r.begin(id, true)
}

// Restart deals a fresh round without waiting for ready flags.
func (r *Room) Restart(id string) error {
	return r.begin(id, false)
}

func (r *Room) begin(id string, requireReady bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.hostAction(id); err != nil {
		return err
	}
	if r.started {
		return ErrGameInProgress
	}
	if err := r.beginRound(requireReady); err != nil {
		return err
	}
	r.emitState()
	return nil
}

func (r *Room) beginRound(requireReady bool) error {
	seated := r.seatedPlayers()
	if len(seated) != Seats {
		return ErrTableNotFull
	}
	if requireReady {
		for _, p := range seated {
			if p.ID != r.hostID && !p.Ready {
				return ErrNotAllReady
			}
		}
	}

	r.resetRound()
	r.started = true
	for _, p := range r.players {
		p.Ready = false
	}

	ids := make([]string, len(seated))
	for i, p := range seated {
		ids[i] = p.ID
	}
	d := deck.NewDeck(r.rng)
	d.Shuffle()
	r.hands = d.Deal(ids)
	r.openRound(seated)
	return nil
}

// openRound sorts the dealt hands, splits the camps and gives the first
// turn, unless someone was dealt every red ten.
func (r *Room) openRound(seated []*Player) {
	var tripleHolder *Player
	for _, p := range seated {
		hand := r.hands[p.ID]
		rules.SortHand(hand)
		reds := countRedTens(hand)
		if reds > 0 {
			r.redTeam[p.ID] = true
		}
		if reds == 3 {
			tripleHolder = p
		}
	}
	r.logger.Info("Round dealt", "players", len(seated), "red_team", len(r.redTeam))

	if tripleHolder != nil {
		r.instantWin(tripleHolder)
		return
	}

	startSeat := -1
	if r.nextStartSeat != nil && r.playerAtSeat(*r.nextStartSeat) != nil {
		startSeat = *r.nextStartSeat
	}
	if startSeat < 0 {
		startSeat = *seated[r.rng.IntN(len(seated))].Seat
	}
	r.nextStartSeat = nil
	if lead := r.playerAtSeat(startSeat); lead != nil {
		r.mustLeadID = lead.ID
	}

	r.setTurn(startSeat)
	r.emitWind()
	r.broadcast(protocol.TypeGameStart, protocol.GameStart{Code: r.code})
	for _, p := range seated {
		r.emitHand(p.ID)
	}
}

// instantWin ends a freshly dealt round when holder has every red ten.
func (r *Room) instantWin(holder *Player) {
	var tens []deck.Card
	for _, c := range r.hands[holder.ID] {
		if c.IsRedTen() {
			tens = append(tens, c)
		}
	}
	r.firstOutTeam = protocol.TeamRed
	r.firstFinisherID = holder.ID
	r.nextStartSeat = intPtr(*holder.Seat)

	_, black := r.teams()
	r.logger.Info("Triple red ten dealt", "player", holder.ID)
	r.broadcast(protocol.TypePlayMade, protocol.PlayMade{PlayerID: holder.ID, Cards: tens})
	r.concludeRound(&outcome{
		result:    protocol.TeamRed,
		message:   "A player was dealt all three red tens: the red camp wins!",
		remaining: len(black),
	})
}

func countRedTens(hand []deck.Card) int {
	n := 0
	for _, c := range hand {
		if c.IsRedTen() {
			n++
		}
	}
	return n
}

// End aborts the round in progress without scoring it.
func (r *Room) End(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.hostAction(id); err != nil {
		return err
	}
	r.abortRound("")
	return nil
}

// abortRound stops play and tells everyone the round is over.
func (r *Room) abortRound(reason string) {
	wasStarted := r.started
	r.resetRound()
	if wasStarted {
		r.logger.Info("Round aborted", "reason", reason)
		r.emitTurn()
	}
	r.emitWind()
	r.emitState()
	r.broadcast(protocol.TypeGameEnded, protocol.GameEnded{Code: r.code, Reason: reason})
}

// ResetScores zeroes every member's and camp's cumulative score.
func (r *Room) ResetScores(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.hostAction(id); err != nil {
		return err
	}
	if r.started {
		return ErrGameInProgress
	}
	r.scores = make(map[string]float64, len(r.players))
	for _, p := range r.players {
		r.scores[p.ID] = 0
	}
	r.teamScores = map[string]float64{protocol.TeamRed: 0, protocol.TeamBlack: 0}
	r.emitState()
	r.send(id, protocol.TypeError, protocol.Notice{Message: "Scores reset."})
	return nil
}
