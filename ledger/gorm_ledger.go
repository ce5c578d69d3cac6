// ledger/gorm_ledger.go
package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/bisca-online/gameserver/models"
)

// GormLedger applies debits and credits against players.coins_balance in a
// single transaction per call: balance check, balance update, and the
// coin_transactions row all commit or roll back together.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Debit(ctx context.Context, userID, coins int64, txType int, refKind string, refID int64) (*models.TransactionRecord, error) {
	if coins <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, userID, -coins, txType, refKind, refID)
}

func (l *GormLedger) Credit(ctx context.Context, userID, coins int64, txType int, refKind string, refID int64) (*models.TransactionRecord, error) {
	if coins <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, userID, coins, txType, refKind, refID)
}

func (l *GormLedger) apply(ctx context.Context, userID, delta int64, txType int, refKind string, refID int64) (*models.TransactionRecord, error) {
	var row models.GormCoinTransaction
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var player models.GormPlayer
		if err := tx.Where("user_id = ?", userID).First(&player).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnknownUser
			}
			return err
		}

		if delta < 0 && player.CoinsBalance+delta < 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Model(&player).
			Update("coins_balance", gorm.Expr("coins_balance + ?", delta)).Error; err != nil {
			return err
		}

		row = models.GormCoinTransaction{
			UserID:  userID,
			Type:    txType,
			Coins:   delta,
			RefKind: refKind,
			RefID:   refID,
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	return &models.TransactionRecord{
		ID:        int64(row.ID),
		UserID:    userID,
		Type:      txType,
		Coins:     delta,
		RefKind:   refKind,
		RefID:     refID,
		CreatedAt: row.CreatedAt,
	}, nil
}
