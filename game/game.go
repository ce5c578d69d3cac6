// game/game.go
package game

import (
	"sync"
	"time"
)

// Status is the lifecycle of one game session.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusEnded      Status = "ended"
)

const (
	TypeStandalone = "standalone"
	TypeMatch      = "match"
)

// MatchTarget is the mark count that ends a match.
const MatchTarget = 4

// User identifies a participant.
type User struct {
	ID   int64
	Name string
}

// Options controls game creation.
type Options struct {
	Variant int    // hand size, 3 or 9
	Type    string // standalone or match
	Stake   int64  // coins, match only
}

// TrickOutcome reports what a trick resolution decided.
type TrickOutcome struct {
	TrickWinner int64
	GameOver    bool
	MatchOver   bool
}

// Game is the central mutable aggregate for one session. All mutation goes
// through methods holding g.mu, so two simultaneous player actions on the
// same game serialize; different games never share a lock.
type Game struct {
	mu sync.Mutex

	ID          int64
	Creator     int64
	CreatorName string
	Player1     int64
	Player1Name string
	Variant     int
	Type        string
	Stake       int64
	IsMatch     bool

	player2     int64
	player2Name string

	status Status
	deck   []Card
	trump  *Card

	player1Hand   []Card
	player2Hand   []Card
	player1Played *Card
	player2Played *Card
	player1Spoils []Card
	player2Spoils []Card

	currentPlayer int64
	trickLeader   int64

	started  bool
	complete bool
	winner   int64 // 0 until decided, stays 0 on a draw
	drawn    bool
	resigned bool
	timedOut bool
	moves    int

	createdAt time.Time
	beganAt   time.Time
	endedAt   *time.Time

	// match-scoped state, survives per-game resets
	currentGameNumber int
	player1Marks      int
	player2Marks      int
	matchWinner       int64
	matchOver         bool
	needsNextGame     bool
	durableMatchID    int64
	matchBeganAt      time.Time

	// settlement guards, each set exactly once
	feesDeducted   bool
	stakesDeducted bool
	payoutAwarded  bool
	refundIssued   bool

	// move timer bookkeeping, written by the timer path
	timeRemaining int
	moveStartedAt time.Time
}

func newGame(id int64, user User, opts Options) *Game {
	return &Game{
		ID:                id,
		Creator:           user.ID,
		CreatorName:       user.Name,
		Player1:           user.ID,
		Player1Name:       user.Name,
		Variant:           opts.Variant,
		Type:              opts.Type,
		Stake:             opts.Stake,
		IsMatch:           opts.Type == TypeMatch,
		status:            StatusWaiting,
		deck:              NewDeck(),
		currentPlayer:     user.ID,
		currentGameNumber: 1,
		createdAt:         time.Now(),
	}
}

// Join seats the second player. The creator cannot join their own game.
func (g *Game) Join(user User) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if g.player2 != 0 {
		return ErrGameFull
	}
	if user.ID == g.Player1 {
		return ErrCannotJoinOwnGame
	}
	g.player2 = user.ID
	g.player2Name = user.Name
	return nil
}

// Deal hands out the opening cards and reveals the trump. Idempotent: a
// second call is a no-op and returns false.
func (g *Game) Deal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started || g.player2 == 0 {
		return false
	}
	g.dealLocked()
	g.started = true
	g.status = StatusInProgress
	g.beganAt = time.Now()
	if g.IsMatch && g.matchBeganAt.IsZero() {
		g.matchBeganAt = g.beganAt
	}
	return true
}

func (g *Game) dealLocked() {
	g.player1Hand = append(g.player1Hand, g.deck[:g.Variant]...)
	g.deck = g.deck[g.Variant:]
	g.player2Hand = append(g.player2Hand, g.deck[:g.Variant]...)
	g.deck = g.deck[g.Variant:]

	trump := g.deck[len(g.deck)-1]
	g.deck = g.deck[:len(g.deck)-1]
	g.trump = &trump
}

// PlayCard validates and applies one move. It returns true when both cards of
// the trick are on the table and the caller should schedule resolution.
func (g *Game) PlayCard(playerID int64, cardID int) (trickReady bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress || g.complete {
		return false, ErrNotInProgress
	}
	isP1 := playerID == g.Player1
	isP2 := playerID == g.player2
	if !isP1 && !isP2 {
		return false, ErrNotParticipant
	}
	// Both cards on the table: nothing is playable until the trick resolves.
	// Without this, the follower (still the current player) could replace
	// their card during the resolution delay.
	if g.player1Played != nil && g.player2Played != nil {
		return false, ErrTrickPending
	}
	if g.currentPlayer != playerID {
		return false, ErrNotYourTurn
	}

	hand := g.player1Hand
	if isP2 {
		hand = g.player2Hand
	}
	idx := -1
	for i, c := range hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrCardNotInHand
	}

	card := hand[idx]
	hand = append(hand[:idx], hand[idx+1:]...)
	if isP1 {
		g.player1Hand = hand
		g.player1Played = &card
	} else {
		g.player2Hand = hand
		g.player2Played = &card
	}

	// First card of the trick fixes the leader; the trick comparator depends
	// on which card hit the table first, not on player numbering.
	if g.player1Played == nil || g.player2Played == nil {
		g.trickLeader = playerID
		g.currentPlayer = g.otherLocked(playerID)
		return false, nil
	}
	return true, nil
}

// ResolveTrick awards the trick, redistributes cards, and detects game end.
// Callers delay this ~1.5s after the second card for presentation; that delay
// carries no game meaning.
func (g *Game) ResolveTrick() (TrickOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress || g.complete {
		return TrickOutcome{}, ErrNotInProgress
	}
	if g.player1Played == nil || g.player2Played == nil {
		return TrickOutcome{}, ErrTrickNotReady
	}

	lead, follow := *g.player1Played, *g.player2Played
	leaderIsP1 := g.trickLeader == g.Player1
	if !leaderIsP1 {
		lead, follow = follow, lead
	}

	leaderWins := Beats(lead, follow, g.trump)
	p1Wins := leaderIsP1 == leaderWins

	g.moves++

	if p1Wins {
		g.player1Spoils = append(g.player1Spoils, *g.player1Played, *g.player2Played)
		g.currentPlayer = g.Player1
	} else {
		g.player2Spoils = append(g.player2Spoils, *g.player1Played, *g.player2Played)
		g.currentPlayer = g.player2
	}
	g.player1Played = nil
	g.player2Played = nil

	g.redistributeLocked(p1Wins)

	out := TrickOutcome{TrickWinner: g.currentPlayer}
	g.checkGameEndLocked()
	out.GameOver = g.complete
	out.MatchOver = g.matchOver
	return out, nil
}

// redistributeLocked draws one card each, trick winner first. When exactly
// one deck card remains, the winner takes it and the loser takes the trump,
// after which both deck and trump are empty.
func (g *Game) redistributeLocked(p1Wins bool) {
	if len(g.deck) == 0 {
		return
	}
	if len(g.deck) == 1 {
		last := g.deck[0]
		g.deck = nil
		if p1Wins {
			g.player1Hand = append(g.player1Hand, last)
			g.player2Hand = append(g.player2Hand, *g.trump)
		} else {
			g.player2Hand = append(g.player2Hand, last)
			g.player1Hand = append(g.player1Hand, *g.trump)
		}
		g.trump = nil
		return
	}
	if p1Wins {
		g.player1Hand = append(g.player1Hand, g.deck[0])
		g.player2Hand = append(g.player2Hand, g.deck[1])
	} else {
		g.player2Hand = append(g.player2Hand, g.deck[0])
		g.player1Hand = append(g.player1Hand, g.deck[1])
	}
	g.deck = g.deck[2:]
}

func (g *Game) checkGameEndLocked() {
	if len(g.player1Hand) != 0 || len(g.player2Hand) != 0 || len(g.deck) != 0 {
		return
	}

	p1 := SpoilsPoints(g.player1Spoils)
	p2 := SpoilsPoints(g.player2Spoils)

	switch {
	case p1 > p2:
		g.winner = g.Player1
	case p2 > p1:
		g.winner = g.player2
	default:
		g.drawn = true
	}

	if g.IsMatch {
		if !g.drawn {
			winnerPoints := p1
			if g.winner == g.player2 {
				winnerPoints = p2
			}
			g.awardMarksLocked(g.winner, marksFor(winnerPoints))
		}
		g.complete = true
		if !g.matchOver {
			g.needsNextGame = true
		}
	} else {
		g.complete = true
		g.status = StatusEnded
	}

	now := time.Now()
	g.endedAt = &now
}

// marksFor maps a winner's points to match marks: 120 is a bandeira (4),
// 91+ a capote (2), 61+ a plain win (1).
func marksFor(points int) int {
	switch {
	case points >= 120:
		return 4
	case points >= 91:
		return 2
	case points >= 61:
		return 1
	default:
		return 0
	}
}

func (g *Game) awardMarksLocked(winnerID int64, marks int) {
	if winnerID == g.Player1 {
		g.player1Marks += marks
	} else {
		g.player2Marks += marks
	}
	if g.player1Marks >= MatchTarget || g.player2Marks >= MatchTarget {
		if g.player1Marks > g.player2Marks {
			g.matchWinner = g.Player1
		} else {
			g.matchWinner = g.player2
		}
		g.matchOver = true
		g.status = StatusEnded
	}
}

// Resign ends the game immediately in the opponent's favor.
func (g *Game) Resign(playerID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if playerID != g.Player1 && playerID != g.player2 {
		return ErrNotParticipant
	}
	if g.status != StatusInProgress || g.complete {
		return ErrNotInProgress
	}
	g.forfeitLocked(playerID, false)
	return nil
}

// TimeoutForfeit forfeits the player whose move clock expired. It returns
// the forfeiting player, or an error when the game already concluded through
// another path (a stale timer firing is a no-op).
func (g *Game) TimeoutForfeit() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusInProgress || g.complete {
		return 0, ErrNotInProgress
	}
	loser := g.currentPlayer
	g.forfeitLocked(loser, true)
	return loser, nil
}

// forfeitLocked implements the shared resignation/timeout ending: every
// remaining card (both hands, deck, trump) goes to the opponent's spoils, and
// in a match the opponent takes 4 marks and the whole match.
func (g *Game) forfeitLocked(loser int64, timeout bool) {
	opponent := g.otherLocked(loser)

	sweep := make([]Card, 0, len(g.player1Hand)+len(g.player2Hand)+len(g.deck)+1)
	sweep = append(sweep, g.player1Hand...)
	sweep = append(sweep, g.player2Hand...)
	sweep = append(sweep, g.deck...)
	if g.trump != nil {
		sweep = append(sweep, *g.trump)
	}
	if opponent == g.Player1 {
		g.player1Spoils = append(g.player1Spoils, sweep...)
	} else {
		g.player2Spoils = append(g.player2Spoils, sweep...)
	}
	g.player1Hand = nil
	g.player2Hand = nil
	g.deck = nil
	g.trump = nil

	g.winner = opponent
	g.resigned = !timeout
	g.timedOut = timeout
	g.complete = true
	g.needsNextGame = false
	g.status = StatusEnded
	now := time.Now()
	g.endedAt = &now

	if g.IsMatch {
		// Forfeit concedes the entire match regardless of the mark tally.
		if opponent == g.Player1 {
			g.player1Marks += MatchTarget
		} else {
			g.player2Marks += MatchTarget
		}
		g.matchWinner = opponent
		g.matchOver = true
	}
}

func (g *Game) otherLocked(playerID int64) int64 {
	if playerID == g.Player1 {
		return g.player2
	}
	return g.Player1
}

// --- read accessors ---

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) Player2() (int64, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player2, g.player2Name
}

func (g *Game) CurrentPlayer() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentPlayer
}

// Participants returns both player ids; the second is 0 until someone joins.
func (g *Game) Participants() (int64, int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Player1, g.player2
}

func (g *Game) IsParticipant(playerID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return playerID == g.Player1 || playerID == g.player2
}

func (g *Game) Complete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.complete
}

// Winner returns the winning player id and whether the game was a draw.
func (g *Game) Winner() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.drawn
}

// Points returns both players' current spoils totals.
func (g *Game) Points() (p1, p2 int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return SpoilsPoints(g.player1Spoils), SpoilsPoints(g.player2Spoils)
}

func (g *Game) Marks() (p1, p2 int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player1Marks, g.player2Marks
}

func (g *Game) MatchState() (winner int64, over bool, needsNext bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.matchWinner, g.matchOver, g.needsNextGame
}

func (g *Game) ForfeitFlags() (resigned, timedOut bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resigned, g.timedOut
}

func (g *Game) CreatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createdAt
}

func (g *Game) DurableMatchID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.durableMatchID
}

func (g *Game) SetDurableMatchID(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.durableMatchID = id
}

// SetTimeRemaining records the countdown for state pushes.
func (g *Game) SetTimeRemaining(seconds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeRemaining = seconds
	if seconds > 0 {
		g.moveStartedAt = time.Now()
	}
}

// --- settlement guards ---
// Each marker flips its flag under the game lock and reports whether this
// call was the first; the caller performs the side effect only on true.

func (g *Game) MarkFeesDeducted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.feesDeducted {
		return false
	}
	g.feesDeducted = true
	return true
}

func (g *Game) MarkStakesDeducted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stakesDeducted {
		return false
	}
	g.stakesDeducted = true
	return true
}

func (g *Game) MarkPayoutAwarded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.payoutAwarded {
		return false
	}
	g.payoutAwarded = true
	return true
}

func (g *Game) MarkRefundIssued() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundIssued {
		return false
	}
	g.refundIssued = true
	return true
}
