package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/common"
)

type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	DatabasePath       string        `env:"DB_PATH"`
	PosterBaseURL      string        `env:"POSTER_BASE_URL"`
	TrendingLimit      int           `env:"TRENDING_LIMIT"`
	MetricsCollection  string        `env:"METRICS_COLLECTION"`
	SavedCollection    string        `env:"SAVED_COLLECTION"`
	// IncrementAttempts bounds the optimistic retries of one trending increment.
	IncrementAttempts int    `env:"INCREMENT_ATTEMPTS"`
	LogLevel          string `env:"LOG_LEVEL"`
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "movieshelf.db"
	c.PosterBaseURL = "https://image.tmdb.org/t/p/w500"
	c.TrendingLimit = 5
	c.MetricsCollection = common.CollectionMetrics
	c.SavedCollection = common.CollectionSavedMovies
	c.IncrementAttempts = 3
	c.LogLevel = "warn"
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
