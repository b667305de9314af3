package cli

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the environment configuration shared by every command.
// Command-line flags take precedence over it.
type Config struct {
	DB       string     `env:"TABLECORE_DB"`
	PageSize int        `env:"TABLECORE_PAGE_SIZE" envDefault:"10"`
	LogLevel slog.Level `env:"TABLECORE_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("parse env: TABLECORE_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	return cfg, nil
}
