package game

import (
	"errors"
	"testing"
)

func card(id int, rank, suit string) Card {
	return Card{ID: id, Rank: rank, Suit: suit}
}

// riggedGame builds an in-progress two-player game with fixed hands, deck,
// and trump, bypassing the shuffle. Player 1 is on turn.
func riggedGame(typ string, p1Hand, p2Hand, deck []Card, trump *Card) *Game {
	g := newGame(1, User{ID: 1, Name: "alice"}, Options{Variant: 3, Type: typ, Stake: 10})
	if err := g.Join(User{ID: 2, Name: "bob"}); err != nil {
		panic(err)
	}
	g.started = true
	g.status = StatusInProgress
	g.player1Hand = p1Hand
	g.player2Hand = p2Hand
	g.deck = deck
	g.trump = trump
	g.currentPlayer = 1
	return g
}

func TestGame_JoinRules(t *testing.T) {
	g := newGame(1, User{ID: 1, Name: "alice"}, Options{Variant: 9, Type: TypeStandalone})

	if err := g.Join(User{ID: 1, Name: "alice"}); !errors.Is(err, ErrCannotJoinOwnGame) {
		t.Errorf("Expected ErrCannotJoinOwnGame, got %v", err)
	}
	if err := g.Join(User{ID: 2, Name: "bob"}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := g.Join(User{ID: 3, Name: "carol"}); !errors.Is(err, ErrGameFull) {
		t.Errorf("Expected ErrGameFull, got %v", err)
	}
}

func TestGame_Deal(t *testing.T) {
	g := newGame(1, User{ID: 1, Name: "alice"}, Options{Variant: 9, Type: TypeStandalone})
	g.Join(User{ID: 2, Name: "bob"})

	if !g.Deal() {
		t.Fatal("Deal should succeed with two players")
	}
	if g.Status() != StatusInProgress {
		t.Errorf("Expected status %s, got %s", StatusInProgress, g.Status())
	}
	if len(g.player1Hand) != 9 || len(g.player2Hand) != 9 {
		t.Errorf("Expected 9-card hands, got %d and %d", len(g.player1Hand), len(g.player2Hand))
	}
	if len(g.deck) != 21 {
		t.Errorf("Expected 21 cards left in deck, got %d", len(g.deck))
	}
	if g.trump == nil {
		t.Error("Expected a trump card to be revealed")
	}
	if g.CurrentPlayer() != 1 {
		t.Errorf("Expected creator to lead, got player %d", g.CurrentPlayer())
	}

	// A second deal must be a no-op.
	if g.Deal() {
		t.Error("Second Deal should return false")
	}
}

func TestGame_PlayCardValidation(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠"), card(2, "2", "♥")},
		[]Card{card(3, "K", "♠"), card(4, "3", "♥")},
		nil, nil)

	if _, err := g.PlayCard(9, 1); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Expected ErrNotParticipant, got %v", err)
	}
	if _, err := g.PlayCard(2, 3); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.PlayCard(1, 99); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("Expected ErrCardNotInHand, got %v", err)
	}

	waiting := newGame(2, User{ID: 1}, Options{Variant: 3, Type: TypeStandalone})
	if _, err := waiting.PlayCard(1, 1); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Expected ErrNotInProgress before dealing, got %v", err)
	}
}

func TestGame_TrickHigherSameSuitWins(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "7", "♠"), card(2, "2", "♥")},
		[]Card{card(3, "A", "♠"), card(4, "3", "♥")},
		nil, nil)

	ready, err := g.PlayCard(1, 1)
	if err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if ready {
		t.Fatal("First card should not complete the trick")
	}
	if g.CurrentPlayer() != 2 {
		t.Fatalf("Turn should pass to player 2, got %d", g.CurrentPlayer())
	}

	ready, err = g.PlayCard(2, 3)
	if err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if !ready {
		t.Fatal("Second card should complete the trick")
	}

	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}
	// The ace outranks the seven within the same suit, no matter who led.
	if out.TrickWinner != 2 {
		t.Errorf("Expected player 2 to win the trick, got %d", out.TrickWinner)
	}
	p1, p2 := g.Points()
	if p1 != 0 || p2 != 21 {
		t.Errorf("Expected spoils 0/21, got %d/%d", p1, p2)
	}
	if g.CurrentPlayer() != 2 {
		t.Errorf("Trick winner should lead next, got %d", g.CurrentPlayer())
	}
}

func TestGame_TrickLeaderRelativeTrump(t *testing.T) {
	trump := card(40, "5", "♦")
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♣"), card(2, "2", "♥")},
		[]Card{card(3, "Q", "♦"), card(4, "3", "♥")},
		nil, &trump)
	g.currentPlayer = 2

	// Player 2 leads a low trump; player 1 follows with an off-suit ace.
	if _, err := g.PlayCard(2, 3); err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	ready, err := g.PlayCard(1, 1)
	if err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if !ready {
		t.Fatal("Trick should be ready")
	}

	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}
	if out.TrickWinner != 2 {
		t.Errorf("Trump should beat the off-suit ace; expected player 2, got %d", out.TrickWinner)
	}
	p1, p2 := g.Points()
	if p1 != 0 || p2 != 13 {
		t.Errorf("Expected spoils 0/13, got %d/%d", p1, p2)
	}
}

func TestGame_NoPlayWhileTrickPending(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠"), card(2, "2", "♥")},
		[]Card{card(3, "K", "♠"), card(4, "3", "♥")},
		nil, nil)

	g.PlayCard(1, 1)
	ready, err := g.PlayCard(2, 3)
	if err != nil || !ready {
		t.Fatalf("Setup failed: ready=%v err=%v", ready, err)
	}

	// The follower must not be able to swap their card during the
	// resolution delay, and the leader cannot sneak a card in either.
	if _, err := g.PlayCard(2, 4); !errors.Is(err, ErrTrickPending) {
		t.Fatalf("Expected ErrTrickPending for the follower, got %v", err)
	}
	if _, err := g.PlayCard(1, 2); !errors.Is(err, ErrTrickPending) {
		t.Fatalf("Expected ErrTrickPending for the leader, got %v", err)
	}

	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}
	if out.TrickWinner != 1 {
		t.Errorf("Expected the original cards to decide the trick, winner %d", out.TrickWinner)
	}
	// Both originally played cards reach the winner's spoils intact.
	p1, _ := g.Points()
	if p1 != 15 {
		t.Errorf("Expected 15 points from A+K, got %d", p1)
	}
	if len(g.player2Hand) != 1 || g.player2Hand[0].ID != 4 {
		t.Errorf("Follower's remaining hand should be untouched: %v", g.player2Hand)
	}
}

func TestGame_TrickRedistribution(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠"), card(2, "2", "♥")},
		[]Card{card(3, "K", "♠"), card(4, "3", "♥")},
		[]Card{card(5, "4", "♣"), card(6, "5", "♣"), card(7, "6", "♣")},
		nil)

	g.PlayCard(1, 1)
	g.PlayCard(2, 3)
	if _, err := g.ResolveTrick(); err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}

	// Player 1 won and draws first.
	if len(g.player1Hand) != 2 || g.player1Hand[1].ID != 5 {
		t.Errorf("Winner should draw the top deck card, hand: %v", g.player1Hand)
	}
	if len(g.player2Hand) != 2 || g.player2Hand[1].ID != 6 {
		t.Errorf("Loser should draw the second deck card, hand: %v", g.player2Hand)
	}
	if len(g.deck) != 1 {
		t.Errorf("Expected 1 deck card left, got %d", len(g.deck))
	}
}

func TestGame_LastDeckCardAndTrump(t *testing.T) {
	trump := card(40, "2", "♦")
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠"), card(2, "2", "♥")},
		[]Card{card(3, "K", "♠"), card(4, "3", "♥")},
		[]Card{card(5, "4", "♣")},
		&trump)

	g.PlayCard(1, 1)
	g.PlayCard(2, 3)
	if _, err := g.ResolveTrick(); err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}

	// Winner takes the last deck card, loser takes the trump.
	if g.player1Hand[1].ID != 5 {
		t.Errorf("Winner should take the last deck card, hand: %v", g.player1Hand)
	}
	if g.player2Hand[1].ID != 40 {
		t.Errorf("Loser should take the trump card, hand: %v", g.player2Hand)
	}
	if g.trump != nil {
		t.Error("Trump should be dealt out")
	}
	if len(g.deck) != 0 {
		t.Errorf("Deck should be empty, got %d cards", len(g.deck))
	}
}

func TestGame_EndAndWinner(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠")},
		[]Card{card(2, "K", "♠")},
		nil, nil)

	g.PlayCard(1, 1)
	g.PlayCard(2, 2)
	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}

	if !out.GameOver {
		t.Fatal("Game should be over after the last trick")
	}
	winner, drawn := g.Winner()
	if winner != 1 || drawn {
		t.Errorf("Expected player 1 to win, got winner=%d drawn=%v", winner, drawn)
	}
	if g.Status() != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, g.Status())
	}

	// No play is possible on an ended game.
	if _, err := g.PlayCard(1, 1); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Expected ErrNotInProgress, got %v", err)
	}
}

func TestGame_Draw(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "2", "♠")},
		[]Card{card(2, "3", "♠")},
		nil, nil)
	// Pre-seed equal spoils; the final trick is worth nothing.
	g.player1Spoils = []Card{card(10, "A", "♥"), card(11, "A", "♦"), card(12, "A", "♣"), card(13, "7", "♥"), card(14, "7", "♦"), card(15, "K", "♥"), card(16, "J", "♥")}
	g.player2Spoils = []Card{card(20, "A", "♠"), card(21, "7", "♠"), card(22, "7", "♣"), card(23, "K", "♠"), card(24, "K", "♦"), card(25, "K", "♣"), card(26, "Q", "♠"), card(27, "Q", "♦"), card(28, "Q", "♣"), card(29, "Q", "♥"), card(30, "J", "♠"), card(31, "J", "♦"), card(32, "J", "♣")}

	p1, p2 := g.Points()
	if p1 != p2 {
		t.Fatalf("Setup broken: spoils must be equal, got %d/%d", p1, p2)
	}

	g.PlayCard(1, 1)
	g.PlayCard(2, 2)
	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}
	if !out.GameOver {
		t.Fatal("Game should be over")
	}
	winner, drawn := g.Winner()
	if winner != 0 || !drawn {
		t.Errorf("Expected a draw, got winner=%d drawn=%v", winner, drawn)
	}
}

func TestMarksFor(t *testing.T) {
	cases := []struct {
		points int
		marks  int
	}{
		{120, 4},
		{119, 2},
		{91, 2},
		{90, 1},
		{61, 1},
		{60, 0},
	}
	for _, c := range cases {
		if got := marksFor(c.points); got != c.marks {
			t.Errorf("marksFor(%d) = %d, want %d", c.points, got, c.marks)
		}
	}
}

func TestGame_MatchMarksAndNextGame(t *testing.T) {
	g := riggedGame(TypeMatch,
		[]Card{card(1, "A", "♠")},
		[]Card{card(2, "K", "♠")},
		nil, nil)
	// Player 1's final total lands in the plain-win band.
	g.player1Spoils = []Card{card(10, "A", "♥"), card(11, "A", "♦"), card(12, "A", "♣"), card(13, "7", "♥"), card(14, "7", "♦")}

	g.PlayCard(1, 1)
	g.PlayCard(2, 2)
	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}

	if !out.GameOver || out.MatchOver {
		t.Fatalf("Expected game over without match over, got %+v", out)
	}
	if p1, p2 := g.Marks(); p1 != 1 || p2 != 0 {
		t.Errorf("Expected marks 1/0, got %d/%d", p1, p2)
	}
	// The session stays alive between match games.
	if g.Status() != StatusInProgress {
		t.Errorf("Match session should stay %s, got %s", StatusInProgress, g.Status())
	}
	if _, _, needsNext := g.MatchState(); !needsNext {
		t.Error("Expected the match to need a next game")
	}

	if err := g.PrepareNextGame(); err != nil {
		t.Fatalf("PrepareNextGame failed: %v", err)
	}
	if g.GameNumber() != 2 {
		t.Errorf("Expected game number 2, got %d", g.GameNumber())
	}
	if len(g.player1Hand) != 3 || len(g.player2Hand) != 3 {
		t.Errorf("Expected fresh 3-card hands, got %d and %d", len(g.player1Hand), len(g.player2Hand))
	}
	if g.trump == nil {
		t.Error("Expected a fresh trump")
	}
	if g.CurrentPlayer() != 1 {
		t.Errorf("Previous winner should lead, got %d", g.CurrentPlayer())
	}
	if p1, p2 := g.Points(); p1 != 0 || p2 != 0 {
		t.Errorf("Spoils should reset, got %d/%d", p1, p2)
	}
	if p1, p2 := g.Marks(); p1 != 1 || p2 != 0 {
		t.Errorf("Marks must survive the reset, got %d/%d", p1, p2)
	}

	// A second call without a finished game must fail.
	if err := g.PrepareNextGame(); !errors.Is(err, ErrNoNextGame) {
		t.Errorf("Expected ErrNoNextGame, got %v", err)
	}
}

func TestGame_MatchWinAtTarget(t *testing.T) {
	g := riggedGame(TypeMatch,
		[]Card{card(1, "A", "♠")},
		[]Card{card(2, "K", "♠")},
		nil, nil)
	g.player1Marks = 3
	g.player1Spoils = []Card{card(10, "A", "♥"), card(11, "A", "♦"), card(12, "A", "♣"), card(13, "7", "♥"), card(14, "7", "♦")}

	g.PlayCard(1, 1)
	g.PlayCard(2, 2)
	out, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick failed: %v", err)
	}

	if !out.MatchOver {
		t.Fatal("Fourth mark should end the match")
	}
	matchWinner, over, needsNext := g.MatchState()
	if matchWinner != 1 || !over || needsNext {
		t.Errorf("Expected match won by 1, got winner=%d over=%v needsNext=%v", matchWinner, over, needsNext)
	}
	if g.Status() != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, g.Status())
	}
	if err := g.PrepareNextGame(); !errors.Is(err, ErrNoNextGame) {
		t.Errorf("Expected ErrNoNextGame after the match ends, got %v", err)
	}
}

func TestGame_ResignSweepsEverything(t *testing.T) {
	trump := card(40, "2", "♦")
	g := riggedGame(TypeMatch,
		[]Card{card(1, "A", "♠"), card(2, "A", "♥")},
		[]Card{card(3, "K", "♠"), card(4, "K", "♥")},
		[]Card{card(5, "7", "♣"), card(6, "7", "♦")},
		&trump)
	g.player1Spoils = []Card{card(10, "Q", "♠")}

	if err := g.Resign(1); err != nil {
		t.Fatalf("Resign failed: %v", err)
	}

	winner, drawn := g.Winner()
	if winner != 2 || drawn {
		t.Errorf("Expected player 2 to win by resignation, got winner=%d drawn=%v", winner, drawn)
	}
	resigned, timedOut := g.ForfeitFlags()
	if !resigned || timedOut {
		t.Errorf("Expected resigned flag only, got resigned=%v timedOut=%v", resigned, timedOut)
	}

	// Both hands, the deck, and the trump all go to the opponent.
	if len(g.player2Spoils) != 7 {
		t.Errorf("Expected 7 swept cards, got %d", len(g.player2Spoils))
	}
	_, p2 := g.Points()
	if p2 != 2*11+2*4+2*10+0 {
		t.Errorf("Unexpected swept points: %d", p2)
	}

	if p1, p2 := g.Marks(); p1 != 0 || p2 != MatchTarget {
		t.Errorf("Forfeit should concede %d marks, got %d/%d", MatchTarget, p1, p2)
	}
	matchWinner, over, _ := g.MatchState()
	if matchWinner != 2 || !over {
		t.Errorf("Forfeit should concede the match, got winner=%d over=%v", matchWinner, over)
	}
	if g.Status() != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, g.Status())
	}
}

func TestGame_TimeoutForfeit(t *testing.T) {
	g := riggedGame(TypeStandalone,
		[]Card{card(1, "A", "♠")},
		[]Card{card(2, "K", "♠")},
		nil, nil)
	g.currentPlayer = 2

	loser, err := g.TimeoutForfeit()
	if err != nil {
		t.Fatalf("TimeoutForfeit failed: %v", err)
	}
	if loser != 2 {
		t.Errorf("Expected the player on turn to forfeit, got %d", loser)
	}
	winner, _ := g.Winner()
	if winner != 1 {
		t.Errorf("Expected player 1 to win, got %d", winner)
	}
	resigned, timedOut := g.ForfeitFlags()
	if resigned || !timedOut {
		t.Errorf("Expected timeout flag only, got resigned=%v timedOut=%v", resigned, timedOut)
	}

	// A stale timer firing after the game ended must be a no-op.
	if _, err := g.TimeoutForfeit(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Expected ErrNotInProgress, got %v", err)
	}
}

func TestGame_SettlementGuardsFireOnce(t *testing.T) {
	g := riggedGame(TypeStandalone, nil, nil, nil, nil)

	guards := []func() bool{
		g.MarkFeesDeducted,
		g.MarkStakesDeducted,
		g.MarkPayoutAwarded,
		g.MarkRefundIssued,
	}
	for i, mark := range guards {
		if !mark() {
			t.Errorf("Guard %d: first call should return true", i)
		}
		if mark() {
			t.Errorf("Guard %d: second call should return false", i)
		}
	}
}

// TestGame_FullGameToNaturalEnd plays an entire 9-card game from a known
// deck order to the last trick: every deck card and the trump get drawn,
// all 40 cards end up in the spoils, and the 120 points split between the
// two players.
func TestGame_FullGameToNaturalEnd(t *testing.T) {
	cards := make([]Card, 0, 40)
	id := 0
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{ID: id, Rank: r, Suit: s})
			id++
		}
	}

	trump := cards[39]
	g := riggedGame(TypeStandalone,
		append([]Card(nil), cards[:9]...),
		append([]Card(nil), cards[9:18]...),
		append([]Card(nil), cards[18:39]...),
		&trump)
	g.Variant = 9

	tricks := 0
	for !g.Complete() {
		if tricks > 20 {
			t.Fatal("Game did not finish within 20 tricks")
		}
		cur := g.CurrentPlayer()
		hand := g.player1Hand
		if cur == 2 {
			hand = g.player2Hand
		}
		if len(hand) == 0 {
			t.Fatalf("Player %d has no cards on turn after %d tricks", cur, tricks)
		}
		ready, err := g.PlayCard(cur, hand[0].ID)
		if err != nil {
			t.Fatalf("PlayCard failed on trick %d: %v", tricks+1, err)
		}
		if !ready {
			continue
		}
		out, err := g.ResolveTrick()
		if err != nil {
			t.Fatalf("ResolveTrick failed on trick %d: %v", tricks+1, err)
		}
		tricks++
		if out.TrickWinner != 1 && out.TrickWinner != 2 {
			t.Fatalf("Trick %d won by unknown player %d", tricks, out.TrickWinner)
		}
	}

	if tricks != 20 {
		t.Errorf("Expected 20 tricks in a full game, got %d", tricks)
	}
	if g.moves != 20 {
		t.Errorf("Expected 20 recorded moves, got %d", g.moves)
	}
	if len(g.deck) != 0 {
		t.Errorf("Deck should be exhausted, %d cards remain", len(g.deck))
	}
	if g.trump != nil {
		t.Error("Trump card should have been drawn into a hand")
	}
	if len(g.player1Hand) != 0 || len(g.player2Hand) != 0 {
		t.Errorf("Hands should be empty, got %d and %d", len(g.player1Hand), len(g.player2Hand))
	}
	if total := len(g.player1Spoils) + len(g.player2Spoils); total != 40 {
		t.Errorf("Spoils should hold all 40 cards, got %d", total)
	}

	p1, p2 := g.Points()
	if p1+p2 != 120 {
		t.Errorf("Points should total 120, got %d + %d", p1, p2)
	}
	winner, drawn := g.Winner()
	switch {
	case p1 > p2 && (winner != 1 || drawn):
		t.Errorf("Player 1 has %d points but winner is %d (drawn %v)", p1, winner, drawn)
	case p2 > p1 && (winner != 2 || drawn):
		t.Errorf("Player 2 has %d points but winner is %d (drawn %v)", p2, winner, drawn)
	case p1 == p2 && (!drawn || winner != 0):
		t.Errorf("Equal points should be a draw, got winner %d drawn %v", winner, drawn)
	}
	if g.Status() != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, g.Status())
	}
}
