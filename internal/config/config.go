// internal/config/config.go
//
// Process configuration.
// Sources, highest priority first: environment (a .env file is loaded into it
// by main), the YAML file named by --config or CONFIG_PATH, then the
// env-default tags below.

package config

import (
	"time"

	"github.com/basfurolhi/unscramble/internal/game"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Words    WordsConfig    `yaml:"words"`
	Game     GameConfig     `yaml:"game"`
	Bot      BotConfig      `yaml:"bot"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"             env-default:"8080"`
	ClientOrigin    string        `yaml:"client_origin"    env:"CLIENT_ORIGIN"    env-default:"http://localhost:5173"`
	SessionTTL      time.Duration `yaml:"session_ttl"      env:"SESSION_TTL"      env-default:"30m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// WordsConfig says where the word list comes from. An empty source uses the
// list compiled into the binary.
type WordsConfig struct {
	Source       string        `yaml:"source"        env:"WORDS_SOURCE"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"WORDS_FETCH_TIMEOUT" env-default:"10s"`
}

// GameConfig holds round and difficulty settings.
type GameConfig struct {
	RoundUnits      int           `yaml:"round_units"      env:"ROUND_UNITS"      env-default:"20"`
	RoundUnit       time.Duration `yaml:"round_unit"       env:"ROUND_UNIT"       env-default:"1s"`
	AdvanceDelay    time.Duration `yaml:"advance_delay"    env:"ADVANCE_DELAY"    env-default:"1200ms"`
	DifficultyTiers string        `yaml:"difficulty_tiers" env:"DIFFICULTY_TIERS" env-default:"0:3,5:4,10:5,15:6,20:inf"`
	FallbackName    string        `yaml:"fallback_name"    env:"FALLBACK_NAME"    env-default:"ޔޫސާގެނަން"`
}

// BotConfig holds Telegram settings. An empty token disables the bot and
// init data verification.
type BotConfig struct {
	Token         string `yaml:"token"           env:"BOT_TOKEN"`
	GameShortName string `yaml:"game_short_name" env:"GAME_SHORT_NAME" env-default:"BasFurolhi"`
	GameURL       string `yaml:"game_url"        env:"GAME_URL"`
	// auth_date bound for verified init data; 0 disables it
	InitDataMaxAge time.Duration `yaml:"init_data_max_age" env:"INIT_DATA_MAX_AGE" env-default:"24h"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN" env-default:"./data/unscramble.db"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	TokenSecret string        `yaml:"token_secret" env:"TOKEN_SECRET" env-default:"dev_secret_change_me"`
	TokenTTL    time.Duration `yaml:"token_ttl"    env:"TOKEN_TTL"    env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Difficulty returns the parsed DifficultyTiers, or the default table if
// they do not parse (Validate rejects that case).
func (c *Config) Difficulty() game.Table {
	t, err := game.ParseTable(c.Game.DifficultyTiers)
	if err != nil {
		return game.DefaultTable
	}
	return t
}

// GameSettings returns the per-session game settings.
func (c *Config) GameSettings(playerName string) game.Config {
	return game.Config{
		Difficulty:   c.Difficulty(),
		RoundUnits:   c.Game.RoundUnits,
		AdvanceDelay: c.Game.AdvanceDelay,
		PlayerName:   playerName,
	}
}
