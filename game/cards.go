// game/cards.go
package game

// Card is an immutable value. Rank carries two independent meanings: a point
// value for scoring and a comparison rank for trick strength. They are not
// proportional (a 7 scores 10 points but outranks the King).
type Card struct {
	ID   int    `json:"id"`
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var Suits = []string{"♠", "♥", "♦", "♣"}

// Ranks in deck-building order. 10 ranks x 4 suits = 40 cards.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "J", "Q", "K"}

// Point values. The full deck totals 120 points.
var cardPoints = map[string]int{
	"A": 11,
	"7": 10,
	"K": 4,
	"J": 3,
	"Q": 2,
	"2": 0, "3": 0, "4": 0, "5": 0, "6": 0,
}

// Comparison strength, used only to resolve tricks.
var cardRanks = map[string]int{
	"A": 8,
	"7": 7,
	"K": 6,
	"J": 5,
	"Q": 4,
	"6": 3, "5": 2, "4": 1, "3": 0, "2": -1,
}

func Points(c Card) int {
	return cardPoints[c.Rank]
}

func Rank(c Card) int {
	return cardRanks[c.Rank]
}

// SpoilsPoints sums the point value of won cards.
func SpoilsPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += cardPoints[c.Rank]
	}
	return total
}

// Beats reports whether the lead card wins the trick against the follow card.
// lead must be the card that was actually played first, regardless of which
// player played it. trump is nil once the trump card has been dealt out.
func Beats(lead, follow Card, trump *Card) bool {
	// Same suit: higher rank wins.
	if lead.Suit == follow.Suit {
		return cardRanks[lead.Rank] > cardRanks[follow.Rank]
	}

	if trump != nil && lead.Suit == trump.Suit && follow.Suit != trump.Suit {
		return true
	}
	if trump != nil && follow.Suit == trump.Suit && lead.Suit != trump.Suit {
		return false
	}

	// Different suits, neither trump: the follow card cannot contest.
	return true
}
