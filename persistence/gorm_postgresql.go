// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bisca-online/gameserver/models"
)

// GormPostgreSQL is the GORM-backed Store.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormPlayer{},
		&models.GormGame{},
		&models.GormMatch{},
		&models.GormCoinTransaction{},
	)
}

// DB exposes the underlying handle for the ledger and stats layers that
// share this connection.
func (p *GormPostgreSQL) DB() *gorm.DB {
	return p.db
}

func (p *GormPostgreSQL) SaveGame(ctx context.Context, snap models.GameSnapshot) (int64, error) {
	row := models.GormGame{
		Variant:       snap.Variant,
		Type:          snap.Type,
		Player1:       snap.Player1,
		Player2:       snap.Player2,
		Player1Points: snap.Player1Points,
		Player2Points: snap.Player2Points,
		Winner:        snap.Winner,
		BeganAt:       snap.BeganAt,
		EndedAt:       snap.EndedAt,
		Moves:         snap.Moves,
		MatchID:       snap.MatchID,
		Resigned:      snap.Resigned,
		Timeout:       snap.Timeout,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return int64(row.ID), nil
}

func (p *GormPostgreSQL) SaveMatch(ctx context.Context, snap models.MatchSnapshot) (int64, error) {
	if snap.DurableID == 0 {
		row := models.GormMatch{
			Variant:      snap.Variant,
			Player1:      snap.Player1,
			Player2:      snap.Player2,
			Player1Marks: snap.Player1Marks,
			Player2Marks: snap.Player2Marks,
			MatchWinner:  snap.MatchWinner,
			MatchOver:    snap.MatchOver,
			Stake:        snap.Stake,
			GamesPlayed:  snap.GamesPlayed,
			BeganAt:      snap.BeganAt,
			EndedAt:      snap.EndedAt,
		}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return 0, err
		}
		return int64(row.ID), nil
	}

	updates := map[string]interface{}{
		"player1_marks": snap.Player1Marks,
		"player2_marks": snap.Player2Marks,
		"match_winner":  snap.MatchWinner,
		"match_over":    snap.MatchOver,
		"games_played":  snap.GamesPlayed,
		"ended_at":      snap.EndedAt,
	}
	err := p.db.WithContext(ctx).
		Model(&models.GormMatch{}).
		Where("id = ?", snap.DurableID).
		Updates(updates).Error
	if err != nil {
		return 0, err
	}
	return snap.DurableID, nil
}

func (p *GormPostgreSQL) GetPlayerStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := p.db.WithContext(ctx).Raw(`
        SELECT
            COUNT(*) AS total_games,
            SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END) AS wins,
            SUM(CASE WHEN winner != 0 AND winner != ? THEN 1 ELSE 0 END) AS losses,
            SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END) AS draws
        FROM games
        WHERE (player1 = ? OR player2 = ?) AND deleted_at IS NULL`,
		userID, userID, userID, userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
