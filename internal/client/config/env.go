package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "MEMODIARY_"

// parseEnv overlays cfg with the MEMODIARY_* variables that are set.
// Unset variables leave the current value alone.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
