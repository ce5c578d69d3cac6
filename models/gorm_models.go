// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormPlayer holds the authoritative coin balance the ledger debits and
// credits against.
type GormPlayer struct {
	gorm.Model
	UserID       int64  `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	CoinsBalance int64  `gorm:"default:10"`
}

// GormGame is one finished game.
type GormGame struct {
	gorm.Model
	Variant       int    `gorm:"not null"`
	Type          string `gorm:"not null"`
	Player1       int64  `gorm:"index;not null"`
	Player2       int64  `gorm:"index;not null"`
	Player1Points int
	Player2Points int
	Winner        int64 `gorm:"default:0"`
	BeganAt       time.Time
	EndedAt       *time.Time
	Moves         int
	MatchID       int64 `gorm:"index;default:0"`
	Resigned      bool  `gorm:"default:false"`
	Timeout       bool  `gorm:"default:false"`
}

// GormMatch aggregates the games of one match; updated as games conclude.
type GormMatch struct {
	gorm.Model
	Variant      int   `gorm:"not null"`
	Player1      int64 `gorm:"index;not null"`
	Player2      int64 `gorm:"index;not null"`
	Player1Marks int
	Player2Marks int
	MatchWinner  int64 `gorm:"default:0"`
	MatchOver    bool  `gorm:"default:false"`
	Stake        int64
	GamesPlayed  int
	BeganAt      time.Time
	EndedAt      *time.Time
}

// GormCoinTransaction is one ledger movement. Coins is negative for debits.
type GormCoinTransaction struct {
	gorm.Model
	UserID  int64  `gorm:"index;not null"`
	Type    int    `gorm:"not null"`
	Coins   int64  `gorm:"not null"`
	RefKind string `gorm:"index"`
	RefID   int64  `gorm:"index"`
}
