package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/movieshelf/internal/flagx"
	"github.com/dmitrijs2005/movieshelf/internal/timex"
)

type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	DatabasePath       string         `json:"database_path"`
	PosterBaseURL      string         `json:"poster_base_url"`
	TrendingLimit      int            `json:"trending_limit"`
	MetricsCollection  string         `json:"metrics_collection"`
	SavedCollection    string         `json:"saved_collection"`
	IncrementAttempts  int            `json:"increment_attempts"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config; absent keys are ignored.
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

	setString(&config.ServerEndpointAddr, c.ServerEndpointAddr)
	setString(&config.DatabasePath, c.DatabasePath)
	setString(&config.PosterBaseURL, c.PosterBaseURL)
	setString(&config.MetricsCollection, c.MetricsCollection)
	setString(&config.SavedCollection, c.SavedCollection)
	setString(&config.LogLevel, c.LogLevel)
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.TrendingLimit > 0 {
		config.TrendingLimit = c.TrendingLimit
	}
	if c.IncrementAttempts > 0 {
		config.IncrementAttempts = c.IncrementAttempts
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
