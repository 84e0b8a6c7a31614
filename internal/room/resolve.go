package room

import (
	"maps"

	"github.com/lox/redtens/internal/protocol"
)

// outcome is a decided round.
type outcome struct {
	result    string // TeamRed, TeamBlack or Draw
	message   string
	remaining int // opposing members still holding cards when decided
}

func (r *Room) teamOf(id string) string {
	if r.redTeam[id] {
		return protocol.TeamRed
	}
	return protocol.TeamBlack
}

// teams splits the dealt players into camps.
func (r *Room) teams() (red, black []string) {
	for _, p := range r.players {
		if _, dealt := r.hands[p.ID]; !dealt {
			continue
		}
		if r.redTeam[p.ID] {
			red = append(red, p.ID)
		} else {
			black = append(black, p.ID)
		}
	}
	return red, black
}

func (r *Room) unfinished(ids []string) int {
	n := 0
	for _, id := range ids {
		if !r.finished[id] {
			n++
		}
	}
	return n
}

// registerFinish marks id as out of cards and returns the round's outcome
// if that decides it.
func (r *Room) registerFinish(id string) *outcome {
	r.finished[id] = true
	if r.firstOutTeam == "" {
		r.firstOutTeam = r.teamOf(id)
		r.firstFinisherID = id
		if p := r.player(id); p != nil && p.Seat != nil {
			r.nextStartSeat = intPtr(*p.Seat)
		}
	}
	r.logger.Info("Player finished", "player", id, "team", r.teamOf(id))

	red, black := r.teams()
	redLeft, blackLeft := r.unfinished(red), r.unfinished(black)

	switch {
	case redLeft == 0 && blackLeft == 0:
		return &outcome{result: protocol.Draw, message: "Both camps are out of cards: draw."}
	case redLeft == 0:
		if r.firstOutTeam == protocol.TeamRed {
			return &outcome{result: protocol.TeamRed, message: "The red camp is out of cards and wins!", remaining: blackLeft}
		}
		return &outcome{result: protocol.Draw, message: "The red camp is out but black went out first: draw.", remaining: blackLeft}
	case blackLeft == 0:
		if r.firstOutTeam == protocol.TeamBlack {
			return &outcome{result: protocol.TeamBlack, message: "The black camp is out of cards and wins!", remaining: redLeft}
		}
		return &outcome{result: protocol.Draw, message: "The black camp is out but red went out first: draw.", remaining: redLeft}
	}
	return nil
}

// award moves points from the losing camp to the winners. Each loser pays
// the number of opponents still holding cards; winners split the pot.
func (r *Room) award(out *outcome) {
	if out.result == protocol.Draw || out.remaining <= 0 {
		return
	}
	red, black := r.teams()
	winners, losers := red, black
	if out.result == protocol.TeamBlack {
		winners, losers = black, red
	}
	if len(winners) == 0 || len(losers) == 0 {
		return
	}

	loss := float64(out.remaining)
	for _, id := range losers {
		r.scores[id] -= loss
	}
	total := loss * float64(len(losers))
	gain := total / float64(len(winners))
	for _, id := range winners {
		r.scores[id] += gain
	}
	r.teamScores[out.result] += total
}

// concludeRound scores a decided round and returns the table to the lobby.
func (r *Room) concludeRound(out *outcome) {
	r.award(out)
	r.logger.Info("Round concluded", "result", out.result, "remaining", out.remaining)
	r.broadcast(protocol.TypeError, protocol.Notice{Message: out.message})
	r.broadcast(protocol.TypeRoundResult, protocol.RoundResult{
		Result:             out.result,
		Message:            out.message,
		RemainingOpponents: out.remaining,
		Scores:             maps.Clone(r.scores),
		TeamScores:         maps.Clone(r.teamScores),
	})
	r.resetRound()
	r.emitTurn()
	r.emitWind()
}
