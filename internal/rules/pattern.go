// Package rules classifies card combinations and decides which combinations
// beat which.
package rules

import (
	"cmp"
	"slices"

	"github.com/lox/redtens/internal/deck"
)

// PatternType is the kind of combination a play forms.
type PatternType int

const (
	Invalid PatternType = iota
	Single
	Pair
	Straight
	Bomb
	// RedTenBomb is two red tens played together. Nothing beats it.
	RedTenBomb
)

// String returns the wire name of the pattern type
func (t PatternType) String() string {
	switch t {
	case Single:
		return "SINGLE"
	case Pair:
		return "PAIR"
	case Straight:
		return "STRAIGHT"
	case Bomb:
		return "BOMB"
	case RedTenBomb:
		return "RT_BOMB2"
	default:
		return "INVALID"
	}
}

// MarshalText lets pattern types appear by name in JSON and logs.
func (t PatternType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Pattern is a classified play. Key is the position of the play in the
// type-specific rank order; larger keys win within the same type and length.
type Pattern struct {
	Type   PatternType `json:"type"`
	Length int         `json:"length"`
	Key    int         `json:"key"`
}

// redTenValue places a lone red ten above Two in single order.
const redTenValue = int(deck.Two) + 1

// SingleValue is the strength of a card played alone: 3..A, 2, then red ten.
func SingleValue(c deck.Card) int {
	if c.IsRedTen() {
		return redTenValue
	}
	return int(c.Rank)
}

// Classify reports the combination formed by cards, or ok=false when the
// cards form no legal combination. Tens of either colour group together as
// rank ten except when two red tens are played as a pair.
func Classify(cards []deck.Card) (Pattern, bool) {
	n := len(cards)
	switch {
	case n == 0:
		return Pattern{}, false

	case n == 1:
		return Pattern{Type: Single, Length: 1, Key: SingleValue(cards[0])}, true

	case n == 2:
		if cards[0].Rank != cards[1].Rank {
			return Pattern{}, false
		}
		if cards[0].IsRedTen() && cards[1].IsRedTen() {
			return Pattern{Type: RedTenBomb, Length: 2, Key: redTenValue}, true
		}
		return Pattern{Type: Pair, Length: 2, Key: int(cards[0].Rank)}, true
	}

	if allSameRank(cards) {
		return Pattern{Type: Bomb, Length: n, Key: int(cards[0].Rank)}, true
	}

	if top, ok := straightTop(cards); ok {
		return Pattern{Type: Straight, Length: n, Key: int(top)}, true
	}

	return Pattern{}, false
}

// CanBeat reports whether curr may be played over prev. A nil prev means
// nothing is standing and any valid combination leads.
func CanBeat(prev *Pattern, curr Pattern) bool {
	if curr.Type == Invalid {
		return false
	}
	if prev == nil {
		return true
	}
	if prev.Type == RedTenBomb {
		return false
	}
	if curr.Type == RedTenBomb {
		return true
	}

	if prev.Type == Bomb {
		if curr.Type != Bomb {
			return false
		}
		if curr.Length != prev.Length {
			return curr.Length > prev.Length
		}
		return curr.Key > prev.Key
	}

	// Any bomb escalates over a non-bomb.
	if curr.Type == Bomb {
		return true
	}

	if curr.Type != prev.Type || curr.Length != prev.Length {
		return false
	}
	return curr.Key > prev.Key
}

// Compare orders cards by single strength, then suit precedence.
func Compare(a, b deck.Card) int {
	if c := cmp.Compare(SingleValue(a), SingleValue(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Suit.Precedence(), b.Suit.Precedence())
}

// SortHand sorts a hand in place from weakest to strongest.
func SortHand(hand []deck.Card) {
	slices.SortFunc(hand, Compare)
}

// LowestSingle returns the weakest card in hand by single order, breaking
// ties by suit precedence (C < S < D < H).
func LowestSingle(hand []deck.Card) (deck.Card, bool) {
	if len(hand) == 0 {
		return deck.Card{}, false
	}
	return slices.MinFunc(hand, Compare), true
}

func allSameRank(cards []deck.Card) bool {
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			return false
		}
	}
	return true
}

// straightTop returns the highest rank of a run of 3+ strictly consecutive,
// distinct ranks within 3..A.
func straightTop(cards []deck.Card) (deck.Rank, bool) {
	if len(cards) < 3 {
		return 0, false
	}
	ranks := make([]deck.Rank, len(cards))
	for i, c := range cards {
		if c.Rank == deck.Two {
			return 0, false
		}
		ranks[i] = c.Rank
	}
	slices.Sort(ranks)
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return 0, false
		}
	}
	return ranks[len(ranks)-1], true
}
