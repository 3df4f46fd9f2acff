package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const envPrefix = "lp"

// Config is read from LP_* environment variables, optionally seeded from a .env file.
type Config struct {
	ServerPort string `split_words:"true" default:"8080"`
	LogLevel   string `split_words:"true" default:"info"`

	HistoryURL string `split_words:"true" default:"https://mobalytics.gg/api/lol/graphql/v1/query"`
	CutoffURL  string `split_words:"true" default:"https://b2c-api-cdn.deeplol.gg/common/tier-boundary"`

	// BatchSize bounds how many history pages are in flight at once.
	BatchSize int `split_words:"true" default:"4"`
	// PageLimit caps the number of pages fetched; 0 fetches everything.
	PageLimit int `split_words:"true" default:"0"`

	RequestsPerSecond float64       `split_words:"true" default:"8"`
	CutoffCacheTTL    time.Duration `split_words:"true" default:"1h"`

	// Timezone used when stamping games, e.g. "Europe/Stockholm".
	Timezone string `default:"Local"`
	ApexBase int    `split_words:"true" default:"2800"`
}

func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("LP_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.PageLimit < 0 {
		return nil, fmt.Errorf("LP_PAGE_LIMIT must not be negative, got %d", cfg.PageLimit)
	}
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("LP_REQUESTS_PER_SECOND must be positive, got %v", cfg.RequestsPerSecond)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Log(logger zerolog.Logger) {
	logger.Info().
		Str("server_port", c.ServerPort).
		Str("log_level", c.LogLevel).
		Int("batch_size", c.BatchSize).
		Int("page_limit", c.PageLimit).
		Float64("requests_per_second", c.RequestsPerSecond).
		Dur("cutoff_cache_ttl", c.CutoffCacheTTL).
		Str("timezone", c.Timezone).
		Msg("configuration loaded")
}

var Module = fx.Provide(Load)
