package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// dotenvFile is loaded, when present, before the environment is read.
var dotenvFile = ".env"

// parseEnv overlays LOOKBOARD_* variables onto config. Unset variables leave
// the current value alone.
func parseEnv(config *Config) error {
	// a missing .env is the normal case outside development
	_ = godotenv.Load(dotenvFile)

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
