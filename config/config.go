package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Coins    CoinsConfig    `mapstructure:"coins"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Driver   string `mapstructure:"driver"` // "gorm" (default) or "pq"
}

// GameConfig carries the table-rule timing and quota knobs.
type GameConfig struct {
	MoveTimeout     time.Duration `mapstructure:"move_timeout"`
	WarningAt       time.Duration `mapstructure:"warning_at"`
	TrickDelay      time.Duration `mapstructure:"trick_delay"`
	MaxPendingGames int           `mapstructure:"max_pending_games"`
	WaitingTTL      time.Duration `mapstructure:"waiting_ttl"`
}

// CoinsConfig mirrors the ledger amounts. Stake bounds apply to matches only.
type CoinsConfig struct {
	EntryFee        int64 `mapstructure:"entry_fee"`
	MinStake        int64 `mapstructure:"min_stake"`
	MaxStake        int64 `mapstructure:"max_stake"`
	DrawRefund      int64 `mapstructure:"draw_refund"`
	MatchCommission int64 `mapstructure:"match_commission"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("database.postgres.driver", "gorm")
	viper.SetDefault("game.move_timeout", "20s")
	viper.SetDefault("game.warning_at", "5s")
	viper.SetDefault("game.trick_delay", "1500ms")
	viper.SetDefault("game.max_pending_games", 3)
	viper.SetDefault("game.waiting_ttl", "30m")
	viper.SetDefault("coins.entry_fee", 2)
	viper.SetDefault("coins.min_stake", 3)
	viper.SetDefault("coins.max_stake", 100)
	viper.SetDefault("coins.draw_refund", 1)
	viper.SetDefault("coins.match_commission", 1)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
