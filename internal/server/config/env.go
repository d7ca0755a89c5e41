package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MEMODIARY_"}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
