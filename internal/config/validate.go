package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/basfurolhi/unscramble/internal/game"
)

// Validate checks the loaded values. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be > 0 (got %s)", c.Server.SessionTTL)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %s)", c.Auth.TokenTTL)
	}
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required")
	}
	if c.Bot.InitDataMaxAge < 0 {
		return fmt.Errorf("bot.init_data_max_age must be >= 0 (got %s)", c.Bot.InitDataMaxAge)
	}
	if c.Game.RoundUnits <= 0 {
		return fmt.Errorf("game.round_units must be > 0 (got %d)", c.Game.RoundUnits)
	}
	if c.Game.RoundUnit <= 0 {
		return fmt.Errorf("game.round_unit must be > 0 (got %s)", c.Game.RoundUnit)
	}
	if c.Game.AdvanceDelay < 0 {
		return fmt.Errorf("game.advance_delay must be >= 0 (got %s)", c.Game.AdvanceDelay)
	}
	if c.Game.FallbackName == "" {
		return fmt.Errorf("game.fallback_name is required")
	}

	if _, err := game.ParseTable(c.Game.DifficultyTiers); err != nil {
		return fmt.Errorf("game.difficulty_tiers: %w", err)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console (got %q)", c.Log.Format)
	}
	return nil
}
