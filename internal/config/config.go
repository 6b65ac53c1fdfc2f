package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/treasurehunt.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// MinTotalPlayers is the minimum number of active players across all
	// teams before a game may start. The per-team rule (every team needs
	// at least one active player) is enforced unconditionally.
	MinTotalPlayers int `env:"MIN_TOTAL_PLAYERS" envDefault:"2"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@treasurehunt.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"changeme"`

	SeedDemo bool `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
