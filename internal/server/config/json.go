package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/movieshelf/internal/flagx"
	"github.com/dmitrijs2005/movieshelf/internal/timex"
)

// JsonConfig mirrors Config for file loading; durations accept "24h" or
// integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	MetricsAddr             string         `json:"metrics_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	RateLimit               float64        `json:"rate_limit"`
	RateBurst               int            `json:"rate_burst"`
	MinPasswordLength       int            `json:"min_password_length"`
	LogLevel                string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config. Keys missing from the
// file leave the current values alone.
func parseJson(config *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.RateLimit > 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateBurst > 0 {
		config.RateBurst = c.RateBurst
	}
	if c.MinPasswordLength > 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
