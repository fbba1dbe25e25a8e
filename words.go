package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basfurolhi/unscramble/internal/game"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Load the configured word list and print its statistics",
	Long: "Loads WORDS_SOURCE (or --source) exactly as the server would and prints\n" +
		"the total and a histogram by grapheme length. Exits non-zero if the list\n" +
		"fails to load or no word fits the first difficulty tier.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if src, _ := cmd.Flags().GetString("source"); src != "" {
			cfg.Words.Source = src
		}

		list, err := loadWords(cmd.Context(), cfg.Words)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(list.Stats()); err != nil {
			return err
		}

		first := cfg.Difficulty().Initial()
		if list.CountWithin(first) == 0 {
			return fmt.Errorf("%w (max %d graphemes)", game.ErrNoInitialWords, first)
		}
		return nil
	},
}

func init() {
	wordsCmd.Flags().String("source", "", "word list URL or file (overrides WORDS_SOURCE)")
}
