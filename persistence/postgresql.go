// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/bisca-online/gameserver/models"
)

// PostgreSQL is the raw database/sql Store, selectable over the GORM one via
// the database.postgres.driver config key.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgreSQL{db: db}
	if err := p.createTables(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgreSQL) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
            id BIGSERIAL PRIMARY KEY,
            variant INT NOT NULL,
            type TEXT NOT NULL,
            player1 BIGINT NOT NULL,
            player2 BIGINT NOT NULL,
            player1_points INT NOT NULL DEFAULT 0,
            player2_points INT NOT NULL DEFAULT 0,
            winner BIGINT NOT NULL DEFAULT 0,
            began_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ,
            moves INT NOT NULL DEFAULT 0,
            match_id BIGINT NOT NULL DEFAULT 0,
            resigned BOOLEAN NOT NULL DEFAULT FALSE,
            timeout BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS matches (
            id BIGSERIAL PRIMARY KEY,
            variant INT NOT NULL,
            player1 BIGINT NOT NULL,
            player2 BIGINT NOT NULL,
            player1_marks INT NOT NULL DEFAULT 0,
            player2_marks INT NOT NULL DEFAULT 0,
            match_winner BIGINT NOT NULL DEFAULT 0,
            match_over BOOLEAN NOT NULL DEFAULT FALSE,
            stake BIGINT NOT NULL DEFAULT 0,
            games_played INT NOT NULL DEFAULT 0,
            began_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_games_players ON games (player1, player2)`,
		`CREATE INDEX IF NOT EXISTS idx_games_match ON games (match_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgreSQL) SaveGame(ctx context.Context, snap models.GameSnapshot) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
        INSERT INTO games
            (variant, type, player1, player2, player1_points, player2_points,
             winner, began_at, ended_at, moves, match_id, resigned, timeout)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`,
		snap.Variant, snap.Type, snap.Player1, snap.Player2,
		snap.Player1Points, snap.Player2Points, snap.Winner,
		snap.BeganAt, snap.EndedAt, snap.Moves, snap.MatchID,
		snap.Resigned, snap.Timeout,
	).Scan(&id)
	return id, err
}

func (p *PostgreSQL) SaveMatch(ctx context.Context, snap models.MatchSnapshot) (int64, error) {
	if snap.DurableID == 0 {
		var id int64
		err := p.db.QueryRowContext(ctx, `
            INSERT INTO matches
                (variant, player1, player2, player1_marks, player2_marks,
                 match_winner, match_over, stake, games_played, began_at, ended_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
            RETURNING id`,
			snap.Variant, snap.Player1, snap.Player2,
			snap.Player1Marks, snap.Player2Marks, snap.MatchWinner,
			snap.MatchOver, snap.Stake, snap.GamesPlayed,
			snap.BeganAt, snap.EndedAt,
		).Scan(&id)
		return id, err
	}

	res, err := p.db.ExecContext(ctx, `
        UPDATE matches
        SET player1_marks=$1, player2_marks=$2, match_winner=$3,
            match_over=$4, games_played=$5, ended_at=$6
        WHERE id=$7`,
		snap.Player1Marks, snap.Player2Marks, snap.MatchWinner,
		snap.MatchOver, snap.GamesPlayed, snap.EndedAt, snap.DurableID,
	)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrRecordNotFound
	}
	return snap.DurableID, nil
}

func (p *PostgreSQL) GetPlayerStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := p.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN winner = $1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN winner != 0 AND winner != $1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END), 0)
        FROM games
        WHERE (player1 = $1 OR player2 = $1) AND deleted_at IS NULL`,
		userID,
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.Draws)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
