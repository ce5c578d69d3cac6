package game

import "testing"

func TestNewDeck_Composition(t *testing.T) {
	deck := NewDeck()

	if len(deck) != 40 {
		t.Fatalf("Expected 40 cards, got %d", len(deck))
	}

	seen := make(map[int]bool)
	total := 0
	for _, c := range deck {
		if seen[c.ID] {
			t.Errorf("Duplicate card ID %d", c.ID)
		}
		seen[c.ID] = true
		total += Points(c)
	}

	if total != 120 {
		t.Errorf("Expected deck to total 120 points, got %d", total)
	}
}

func TestPoints(t *testing.T) {
	cases := map[string]int{
		"A": 11, "7": 10, "K": 4, "J": 3, "Q": 2,
		"2": 0, "3": 0, "4": 0, "5": 0, "6": 0,
	}
	for rank, want := range cases {
		if got := Points(Card{Rank: rank, Suit: "♠"}); got != want {
			t.Errorf("Points(%s) = %d, want %d", rank, got, want)
		}
	}
}

func TestRank_Ordering(t *testing.T) {
	// Strongest to weakest. Not the same order as point values.
	order := []string{"A", "7", "K", "J", "Q", "6", "5", "4", "3", "2"}
	for i := 1; i < len(order); i++ {
		hi := Card{Rank: order[i-1], Suit: "♠"}
		lo := Card{Rank: order[i], Suit: "♠"}
		if Rank(hi) <= Rank(lo) {
			t.Errorf("Expected %s to outrank %s", order[i-1], order[i])
		}
	}
}

func TestBeats(t *testing.T) {
	trumpDiamonds := &Card{Rank: "5", Suit: "♦"}

	tests := []struct {
		name   string
		lead   Card
		follow Card
		trump  *Card
		want   bool
	}{
		{
			name:   "same suit, higher follow wins",
			lead:   Card{Rank: "7", Suit: "♠"},
			follow: Card{Rank: "A", Suit: "♠"},
			trump:  trumpDiamonds,
			want:   false,
		},
		{
			name:   "same suit, higher lead wins",
			lead:   Card{Rank: "A", Suit: "♠"},
			follow: Card{Rank: "7", Suit: "♠"},
			trump:  trumpDiamonds,
			want:   true,
		},
		{
			name:   "trump follow beats off-suit lead",
			lead:   Card{Rank: "Q", Suit: "♣"},
			follow: Card{Rank: "2", Suit: "♦"},
			trump:  trumpDiamonds,
			want:   false,
		},
		{
			name:   "trump lead beats off-suit follow",
			lead:   Card{Rank: "2", Suit: "♦"},
			follow: Card{Rank: "A", Suit: "♣"},
			trump:  trumpDiamonds,
			want:   true,
		},
		{
			name:   "different suits, neither trump, lead wins",
			lead:   Card{Rank: "2", Suit: "♠"},
			follow: Card{Rank: "A", Suit: "♥"},
			trump:  trumpDiamonds,
			want:   true,
		},
		{
			name:   "trump dealt out, off-suit follow cannot contest",
			lead:   Card{Rank: "3", Suit: "♠"},
			follow: Card{Rank: "A", Suit: "♦"},
			trump:  nil,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Beats(tt.lead, tt.follow, tt.trump); got != tt.want {
				t.Errorf("Beats(%v, %v) = %v, want %v", tt.lead, tt.follow, got, tt.want)
			}
		})
	}
}
