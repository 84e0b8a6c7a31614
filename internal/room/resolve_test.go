package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/redtens/internal/deck"
	"github.com/lox/redtens/internal/protocol"
)

func sum(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func TestLoneRedFinishesFirstAndWins(t *testing.T) {
	h := newHarness(t)
	h.fullTable()
	h.rig("10H", "4C 5C", "4D 5D", "4S 5S", "6C 7C", "6D 7D", "6S 7S")

	require.NoError(t, h.play(0, "10H"))

	h.state(func(r *Room) {
		assert.False(t, r.started)
		assert.False(t, r.turnLive)
		assert.Nil(t, r.timer)
		assert.Empty(t, r.hands)
		assert.Equal(t, 36.0, r.scores[playerID(0)])
		for seat := 1; seat < Seats; seat++ {
			assert.Equal(t, -6.0, r.scores[playerID(seat)])
		}
		assert.Zero(t, sum(r.scores))
		assert.Equal(t, 36.0, r.teamScores[protocol.TeamRed])
		require.NotNil(t, r.nextStartSeat)
		assert.Equal(t, 0, *r.nextStartSeat)
	})

	ev, ok := h.rec.last(playerID(3), protocol.TypeRoundResult)
	require.True(t, ok)
	res := ev.(protocol.RoundResult)
	assert.Equal(t, protocol.TeamRed, res.Result)
	assert.Equal(t, 6, res.RemainingOpponents)
	assert.Equal(t, -6.0, res.Scores[playerID(3)])
}

func TestLateCampFinishingIsADraw(t *testing.T) {
	h := newHarness(t)
	h.fullTable()
	h.rig("10H 3C", "10D 4C", "4D 5D", "4S 5S", "6C 7C", "6D 7D", "6S 7S")

	h.state(func(r *Room) {
		assert.Nil(t, r.registerFinish(playerID(2)))
		assert.Equal(t, protocol.TeamBlack, r.firstOutTeam)
		assert.Nil(t, r.registerFinish(playerID(0)))

		out := r.registerFinish(playerID(1))
		require.NotNil(t, out)
		assert.Equal(t, protocol.Draw, out.result)
		assert.Equal(t, 4, out.remaining)

		r.award(out)
		assert.Zero(t, r.scores[playerID(0)])
		assert.Zero(t, r.teamScores[protocol.TeamRed])
	})
}

func TestBlackCampWins(t *testing.T) {
	h := newHarness(t)
	h.fullTable()
	h.rig("10H 3C", "10D 4C", "4D 5D", "4S 5S", "6C 7C", "6D 7D", "6S 7S")

	h.state(func(r *Room) {
		for seat := 2; seat < Seats-1; seat++ {
			assert.Nil(t, r.registerFinish(playerID(seat)))
		}
		out := r.registerFinish(playerID(6))
		require.NotNil(t, out)
		assert.Equal(t, protocol.TeamBlack, out.result)
		assert.Equal(t, 2, out.remaining)

		r.award(out)
		assert.Equal(t, -2.0, r.scores[playerID(0)])
		assert.Equal(t, 0.8, r.scores[playerID(2)])
		assert.InDelta(t, 0, sum(r.scores), 1e-9)
		assert.Equal(t, 4.0, r.teamScores[protocol.TeamBlack])
	})
}

func TestAwardSplitsPotEvenly(t *testing.T) {
	h := newHarness(t)
	h.fullTable()
	h.rig("10H 3C", "10D 4C", "4D 5D", "4S 5S", "6C 7C", "6D 7D", "6S 7S")

	h.state(func(r *Room) {
		r.award(&outcome{result: protocol.TeamRed, remaining: 3})
		assert.Equal(t, 7.5, r.scores[playerID(0)])
		assert.Equal(t, 7.5, r.scores[playerID(1)])
		assert.Equal(t, -3.0, r.scores[playerID(4)])
		assert.Zero(t, sum(r.scores))
		assert.Equal(t, 15.0, r.teamScores[protocol.TeamRed])
	})
}

func TestTripleRedTenEndsRoundImmediately(t *testing.T) {
	h := newHarness(t)
	r := h.fullTable()

	r.mu.Lock()
	r.resetRound()
	r.started = true
	hands := []string{"3C 4C", "3D 4D", "3S 4S", "10H 10H 10D 5C", "6C 7C", "6D 7D", "6S 7S"}
	for seat, cards := range hands {
		r.hands[playerID(seat)] = deck.MustParseCards(cards)
	}
	r.openRound(r.seatedPlayers())
	r.mu.Unlock()

	h.state(func(r *Room) {
		assert.False(t, r.started)
		assert.False(t, r.turnLive)
		assert.Equal(t, 36.0, r.scores[playerID(3)])
		assert.Equal(t, -6.0, r.scores[playerID(0)])
		require.NotNil(t, r.nextStartSeat)
		assert.Equal(t, 3, *r.nextStartSeat)
	})

	made, ok := h.rec.last(playerID(0), protocol.TypePlayMade)
	require.True(t, ok)
	assert.Equal(t, playerID(3), made.(protocol.PlayMade).PlayerID)
	assert.Len(t, made.(protocol.PlayMade).Cards, 3)
	for _, c := range made.(protocol.PlayMade).Cards {
		assert.True(t, c.IsRedTen())
	}

	res, ok := h.rec.last(playerID(0), protocol.TypeRoundResult)
	require.True(t, ok)
	assert.Equal(t, protocol.TeamRed, res.(protocol.RoundResult).Result)
	assert.Equal(t, 6, res.(protocol.RoundResult).RemainingOpponents)

	assert.Empty(t, h.rec.to(playerID(0), protocol.TypeYourHand))
	assert.Empty(t, h.rec.to(playerID(0), protocol.TypeGameStart))
}

func TestNextRoundStartsWithFirstFinisher(t *testing.T) {
	h := newHarness(t)
	r := h.fullTable()
	h.rig("10H", "4C 5C", "4D 5D", "4S 5S", "6C 7C", "6D 7D", "6S 7S")
	require.NoError(t, h.play(0, "10H"))

	h.state(func(r *Room) {
		require.NotNil(t, r.nextStartSeat)
		assert.Equal(t, 0, *r.nextStartSeat)
	})

	// a triple red ten deal ends the round on the spot, so deal until play
	// actually begins
	for range 20 {
		h.state(func(r *Room) { r.nextStartSeat = intPtr(4) })
		require.NoError(t, r.Restart(playerID(0)))
		started := false
		h.state(func(r *Room) { started = r.started })
		if started {
			break
		}
	}

	h.state(func(r *Room) {
		require.True(t, r.started)
		assert.Equal(t, playerID(4), r.mustLeadID)
		assert.Nil(t, r.nextStartSeat)
	})
	assert.Equal(t, 4, h.turnSeat())
}
