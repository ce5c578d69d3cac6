package main

import (
	"github.com/bisca-online/gameserver/config"
	"github.com/bisca-online/gameserver/ledger"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/monitor"
	"github.com/bisca-online/gameserver/persistence"
	"github.com/bisca-online/gameserver/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database. The GORM connection is always opened because the
	// coin ledger runs on it; the raw driver only swaps the game/match store.
	pg := cfg.Database.Postgres
	gdb, err := persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	var store persistence.Store = gdb
	if pg.Driver == "pq" {
		store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database (pq): %v", err)
		}
	}

	led := ledger.NewGormLedger(gdb.DB())
	mon := monitor.NewMonitor("bisca")

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store, led, mon)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
