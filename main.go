// main.go
//
// Entry point for the Unscramble game server.
// Commands:
//   - serve  mini-app HTTP API, Telegram relay bot, SQLite leaderboards.
//   - words  load a word list and print its statistics.
//
// Both read .env (if present), then the YAML file named by --config or
// CONFIG_PATH and the environment via internal/config.

package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/basfurolhi/unscramble/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "unscramble",
	Short:         "Telegram word-unscramble game server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.PathEnv+")")
	rootCmd.AddCommand(serveCmd, wordsCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

// loadConfig reads .env then the typed configuration, and configures the
// global logger from it.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Log)
	return cfg, nil
}

func setupLogging(c config.LogConfig) {
	if lvl, err := zerolog.ParseLevel(c.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if strings.EqualFold(c.Format, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
