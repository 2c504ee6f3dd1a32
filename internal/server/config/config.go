// Package config loads the RemoteStore server settings.
//
// Sources, later ones winning: built-in defaults, an optional JSON file
// (-c / -config), MOVIESHELF_* environment variables, command-line flags.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	EndpointAddrGRPC string `env:"GRPC_ADDR"`
	MetricsAddr      string `env:"METRICS_ADDR"`
	// DatabaseDSN selects Postgres; empty keeps everything in memory.
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	SecretKey               string        `env:"SECRET_KEY"`
	SessionValidityDuration time.Duration `env:"SESSION_TTL"`
	RateLimit               float64       `env:"RATE_LIMIT"`
	RateBurst               int           `env:"RATE_BURST"`
	MinPasswordLength       int           `env:"MIN_PASSWORD_LENGTH"`
	LogLevel                string        `env:"LOG_LEVEL"`
}

// LoadDefaults fills c with development defaults. SecretKey must be
// overridden outside of local runs.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 24 * time.Hour
	c.RateLimit = 20
	c.RateBurst = 40
	c.MinPasswordLength = 8
	c.LogLevel = "info"
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
