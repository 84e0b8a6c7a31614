package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Spades
	Clubs
)

// Suits lists every suit in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Spades, Clubs}

// String returns the single-letter code used on the wire ("H", "D", "S", "C")
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Spades:
		return "S"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Precedence orders suits for tie-breaking between equal ranks: C < S < D < H.
func (s Suit) Precedence() int {
	switch s {
	case Clubs:
		return 0
	case Spades:
		return 1
	case Diamonds:
		return 2
	case Hearts:
		return 3
	default:
		return -1
	}
}

// ParseSuit parses a suit letter, case-insensitively.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(s) {
	case "H":
		return Hearts, nil
	case "D":
		return Diamonds, nil
	case "S":
		return Spades, nil
	case "C":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// Rank represents a card rank. Values follow the game's natural order,
// so Two sits above Ace.
type Rank int

const (
	Three Rank = iota + 3
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Two
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace, Two}

// String returns the rank label used on the wire
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three, Four, Five, Six, Seven, Eight, Nine, Ten:
		return fmt.Sprintf("%d", int(r))
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// ParseRank parses a rank label. "10" and "T" both denote Ten.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the compact form of a card (e.g. "10H", "QS")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRedTen reports whether the card is the ten of hearts or diamonds.
func (c Card) IsRedTen() bool {
	return c.Rank == Ten && c.Suit.IsRed()
}

// IsBlackTen reports whether the card is the ten of spades or clubs.
func (c Card) IsBlackTen() bool {
	return c.Rank == Ten && !c.Suit.IsRed()
}

type wireCard struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON encodes the card as {"suit":"H","rank":"10"}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Suit: c.Suit.String(), Rank: c.Rank.String()})
}

// UnmarshalJSON decodes the {"suit","rank"} wire form, rejecting unknown values.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	suit, err := ParseSuit(w.Suit)
	if err != nil {
		return err
	}
	rank, err := ParseRank(w.Rank)
	if err != nil {
		return err
	}
	*c = Card{Suit: suit, Rank: rank}
	return nil
}

// ParseCard parses the compact form: a rank label followed by a suit letter.
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, err := ParseRank(s[:len(s)-1])
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	suit, err := ParseSuit(s[len(s)-1:])
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	return NewCard(suit, rank), nil
}

// ParseCards parses whitespace or comma separated cards, e.g. "10H 10D 3C".
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Contains reports whether every card in want can be drawn from have,
// counting duplicates (the playing set holds two copies of most cards).
func Contains(have, want []Card) bool {
	counts := make(map[Card]int, len(have))
	for _, c := range have {
		counts[c]++
	}
	for _, c := range want {
		if counts[c] == 0 {
			return false
		}
		counts[c]--
	}
	return true
}

// Remove returns hand with one copy of each card in played taken out.
// Cards not present are ignored.
func Remove(hand, played []Card) []Card {
	counts := make(map[Card]int, len(played))
	for _, c := range played {
		counts[c]++
	}
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if counts[c] > 0 {
			counts[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}
