// game/deck.go
package game

import (
	"math/rand"
)

// NewDeck returns the 40 Bisca cards uniformly shuffled. math/rand's
// global source is seeded from the OS, so deck order is not predictable
// across runs.
func NewDeck() []Card {
	deck := make([]Card, 0, 40)
	id := 0
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{ID: id, Rank: r, Suit: s})
			id++
		}
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
