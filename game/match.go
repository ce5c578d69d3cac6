// game/match.go
package game

import (
	"time"

	"github.com/bisca-online/gameserver/models"
)

// PrepareNextGame resets per-game state for the next game of a match: fresh
// shuffled deck, new hands and trump, spoils cleared. Mark counters and the
// game number are match-scoped and survive. The previous game's winner leads;
// after a draw, player1 does.
func (g *Game) PrepareNextGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsMatch || g.matchOver || !g.needsNextGame {
		return ErrNoNextGame
	}
	g.needsNextGame = false

	previousWinner := g.winner

	g.currentGameNumber++
	g.winner = 0
	g.drawn = false
	g.complete = false
	g.endedAt = nil
	g.moves = 0

	g.deck = NewDeck()
	g.player1Hand = nil
	g.player2Hand = nil
	g.player1Played = nil
	g.player2Played = nil
	g.player1Spoils = nil
	g.player2Spoils = nil
	g.trump = nil

	g.dealLocked()

	if previousWinner != 0 {
		g.currentPlayer = previousWinner
	} else {
		g.currentPlayer = g.Player1
	}
	g.beganAt = time.Now()
	return nil
}

// GameNumber returns the 1-based index of the current game within a match.
func (g *Game) GameNumber() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentGameNumber
}

// Snapshot captures the durable record of the current (finished) game.
func (g *Game) Snapshot() models.GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return models.GameSnapshot{
		Variant:       g.Variant,
		Type:          g.Type,
		Player1:       g.Player1,
		Player2:       g.player2,
		Player1Points: SpoilsPoints(g.player1Spoils),
		Player2Points: SpoilsPoints(g.player2Spoils),
		Winner:        g.winner,
		BeganAt:       g.beganAt,
		EndedAt:       g.endedAt,
		Moves:         g.moves,
		MatchID:       g.durableMatchID,
		Resigned:      g.resigned,
		Timeout:       g.timedOut,
	}
}

// MatchSnapshot captures the durable match projection. DurableID is zero
// until the persistence collaborator assigns one.
func (g *Game) MatchSnapshot() models.MatchSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	games := g.currentGameNumber
	if !g.complete {
		games--
	}
	var endedAt *time.Time
	if g.matchOver {
		endedAt = g.endedAt
	}
	return models.MatchSnapshot{
		DurableID:    g.durableMatchID,
		Variant:      g.Variant,
		Player1:      g.Player1,
		Player2:      g.player2,
		Player1Marks: g.player1Marks,
		Player2Marks: g.player2Marks,
		MatchWinner:  g.matchWinner,
		MatchOver:    g.matchOver,
		Stake:        g.Stake,
		GamesPlayed:  games,
		BeganAt:      g.matchBeganAt,
		EndedAt:      endedAt,
	}
}
