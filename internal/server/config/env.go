package config

import "github.com/caarlos0/env/v11"

const envPrefix = "MOVIESHELF_"

// parseEnv overlays MOVIESHELF_* variables; unset variables change nothing.
func parseEnv(config *Config) error {
	return env.ParseWithOptions(config, env.Options{Prefix: envPrefix})
}
