// models/models.go
package models

import (
	"time"
)

// GameSnapshot is the durable record of one finished game, handed to the
// persistence collaborator once the game has ended.
type GameSnapshot struct {
	Variant       int        `json:"variant"`
	Type          string     `json:"type"`
	Player1       int64      `json:"player1"`
	Player2       int64      `json:"player2"`
	Player1Points int        `json:"player1_points"`
	Player2Points int        `json:"player2_points"`
	Winner        int64      `json:"winner"` // 0 on a draw
	BeganAt       time.Time  `json:"began_at"`
	EndedAt       *time.Time `json:"ended_at"`
	Moves         int        `json:"moves"`
	MatchID       int64      `json:"match_id"` // durable match id, 0 when standalone
	Resigned      bool       `json:"resigned"`
	Timeout       bool       `json:"timeout"`
}

// MatchSnapshot is the durable projection of a best-of-four-marks match.
// DurableID is zero on first save; subsequent saves update the same row.
type MatchSnapshot struct {
	DurableID    int64      `json:"durable_id"`
	Variant      int        `json:"variant"`
	Player1      int64      `json:"player1"`
	Player2      int64      `json:"player2"`
	Player1Marks int        `json:"player1_marks"`
	Player2Marks int        `json:"player2_marks"`
	MatchWinner  int64      `json:"match_winner"` // 0 until decided
	MatchOver    bool       `json:"match_over"`
	Stake        int64      `json:"stake"`
	GamesPlayed  int        `json:"games_played"`
	BeganAt      time.Time  `json:"began_at"`
	EndedAt      *time.Time `json:"ended_at"`
}

// TransactionRecord is what the ledger collaborator returns for a completed
// debit or credit.
type TransactionRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      int       `json:"type"`
	Coins     int64     `json:"coins"` // negative for debits
	RefKind   string    `json:"ref_kind"`
	RefID     int64     `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerStats aggregates a user's game history for the admin RPC.
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
}
