// internal/config/loader.go
//
// Config loading.
// Sources, lowest to highest: env-default tags, the YAML file named by
// --config or CONFIG_PATH, then the process environment. Without a file
// only the environment and defaults apply.

package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the variable consulted when no --config flag is given.
const PathEnv = "CONFIG_PATH"

// Load builds and validates the Config. path is the --config flag value.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}

	cfg := new(Config)
	switch {
	case path == "":
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config: env: %w", err)
		}
	default:
		// ReadConfig applies env overrides on top of the file
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
