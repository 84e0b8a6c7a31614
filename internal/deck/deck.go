package deck

import (
	rand "math/rand/v2"
)

const (
	// StandardSize is the number of cards in one jokerless deck.
	StandardSize = 52
	// PlayingSetSize is two standard decks less one red ten.
	PlayingSetSize = 2*StandardSize - 1
)

// Standard returns one ordered 52-card deck without jokers.
func Standard() []Card {
	cards := make([]Card, 0, StandardSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Deck is the 103-card playing set for one round.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds two standard decks and removes one uniformly chosen red ten.
// The result is not shuffled.
func NewDeck(rng *rand.Rand) *Deck {
	cards := append(Standard(), Standard()...)

	var redTens []int
	for i, c := range cards {
		if c.IsRedTen() {
			redTens = append(redTens, i)
		}
	}
	drop := redTens[rng.IntN(len(redTens))]
	cards = append(cards[:drop], cards[drop+1:]...)

	return &Deck{cards: cards, rng: rng}
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealN deals n cards from the top of the deck
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// Cards returns a copy of the cards still in the deck.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Deal splits the whole deck across players. Everyone receives
// len/len(players) cards; the remainder goes one card each to a random
// subset, chosen by shuffling the deal order independently of seating.
// An empty player list yields an empty allocation.
func (d *Deck) Deal(players []string) map[string][]Card {
	hands := make(map[string][]Card, len(players))
	if len(players) == 0 {
		return hands
	}

	order := make([]string, len(players))
	copy(order, players)
	d.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	base := len(d.cards) / len(order)
	extras := len(d.cards) % len(order)
	for i, id := range order {
		take := base
		if i < extras {
			take++
		}
		hands[id] = d.DealN(take)
	}
	return hands
}
