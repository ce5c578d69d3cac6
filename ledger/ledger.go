// ledger/ledger.go
package ledger

import (
	"context"
	"errors"

	"github.com/bisca-online/gameserver/models"
)

// Transaction type ids, matching the upstream ledger seed data.
const (
	TypeBonus        = 1 // credit
	TypeCoinPurchase = 2 // credit
	TypeGameFee      = 3 // debit
	TypeMatchStake   = 4 // debit
	TypeGamePayout   = 5 // credit
	TypeMatchPayout  = 6 // credit
)

// Reference kinds tag what a transaction settles.
const (
	RefGame  = "game"
	RefMatch = "match"
)

var (
	ErrInsufficientBalance = errors.New("insufficient coins")
	ErrInvalidAmount       = errors.New("invalid coin amount")
	ErrUnknownUser         = errors.New("unknown user")
)

// Ledger is the idempotent debit/credit collaborator. Amount is always
// positive; Debit subtracts it, Credit adds it. Both reject a non-positive
// amount, and Debit rejects an insufficient balance. Implementations must be
// safe under concurrent invocation from many game sessions.
type Ledger interface {
	Debit(ctx context.Context, userID, coins int64, txType int, refKind string, refID int64) (*models.TransactionRecord, error)
	Credit(ctx context.Context, userID, coins int64, txType int, refKind string, refID int64) (*models.TransactionRecord, error)
}
