package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfurolhi/unscramble/internal/game"
)

// noConfigFile leaves ENV + defaults as the only source.
func noConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv(PathEnv, "")
}

func TestLoad_Defaults(t *testing.T) {
	noConfigFile(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 20, cfg.Game.RoundUnits)
	assert.Equal(t, time.Second, cfg.Game.RoundUnit)
	assert.Equal(t, 1200*time.Millisecond, cfg.Game.AdvanceDelay)
	assert.Equal(t, "BasFurolhi", cfg.Bot.GameShortName)
	assert.Equal(t, game.DefaultTable, cfg.Difficulty())
	assert.Equal(t, game.DefaultPlayerName, cfg.Game.FallbackName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	noConfigFile(t)
	t.Setenv("ROUND_UNITS", "30")
	t.Setenv("DIFFICULTY_TIERS", "0:4,3:inf")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Game.RoundUnits)
	assert.Equal(t, game.Table{{Threshold: 0, MaxLength: 4}, {Threshold: 3, MaxLength: game.Unbounded}}, cfg.Difficulty())

	gc := cfg.GameSettings("aisha")
	assert.Equal(t, 30, gc.RoundUnits)
	assert.Equal(t, "aisha", gc.PlayerName)
}

func TestLoad_YAMLFile(t *testing.T) {
	noConfigFile(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\ngame:\n  round_units: 15\n"), 0o644))
	t.Setenv(PathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Game.RoundUnits)
}

func TestLoad_FlagPathWinsOverEnvPath(t *testing.T) {
	dir := t.TempDir()
	flagPath := filepath.Join(dir, "flag.yaml")
	require.NoError(t, os.WriteFile(flagPath, []byte("game:\n  round_units: 12\n"), 0o644))
	t.Setenv(PathEnv, filepath.Join(dir, "missing.yaml"))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(flagPath)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Game.RoundUnits)
	assert.Equal(t, "debug", cfg.Log.Level, "env still overrides the file")
	assert.Equal(t, 24*time.Hour, cfg.Bot.InitDataMaxAge)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	noConfigFile(t)
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]string{
		"ROUND_UNITS":       "0",
		"DIFFICULTY_TIERS":  "5:3",
		"LOG_LEVEL":         "loud",
		"LOG_FORMAT":        "xml",
		"SESSION_TTL":       "0s",
		"INIT_DATA_MAX_AGE": "-1h",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			noConfigFile(t)
			t.Setenv(key, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
