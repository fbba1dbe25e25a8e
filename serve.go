package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/basfurolhi/unscramble/internal/config"
	"github.com/basfurolhi/unscramble/internal/httpserver"
	"github.com/basfurolhi/unscramble/internal/leaderboard"
	"github.com/basfurolhi/unscramble/internal/relay"
	"github.com/basfurolhi/unscramble/internal/storage"
	"github.com/basfurolhi/unscramble/internal/store"
	"github.com/basfurolhi/unscramble/internal/words"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mini-app API and the relay bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// A failed load is not fatal for the process: sessions stay on the
	// loading screen and show the error.
	list, loadErr := loadWords(ctx, cfg.Words)
	if loadErr != nil {
		log.Error().Err(loadErr).Str("source", cfg.Words.Source).Msg("word list unavailable")
	} else {
		log.Info().Int("words", list.Len()).Stringer("difficulty", cfg.Difficulty()).Msg("word list loaded")
	}

	var notifier relay.Notifier = relay.Nop{}
	if cfg.Bot.Token != "" {
		rb, tg, err := relay.Dial(cfg.Bot.Token, storage.NewLaunches(db), relay.BotConfig{
			GameShortName: cfg.Bot.GameShortName,
			GameURL:       cfg.Bot.GameURL,
		})
		if err != nil {
			return err
		}
		notifier = relay.NewDirect(rb)
		go tg.Start(ctx)
		log.Info().Str("game", cfg.Bot.GameShortName).Msg("relay bot polling")
	} else {
		log.Warn().Msg("BOT_TOKEN not set; relay disabled and init data unverified")
	}

	srv := httpserver.New(ctx, httpserver.Deps{
		Store:    store.NewMemoryStore(),
		Words:    list,
		WordsErr: loadErr,
		Board:    leaderboard.NewBoard(storage.NewKV(db)),
		Notifier: notifier,
	}, httpserver.Options{
		ClientOrigin:   cfg.Server.ClientOrigin,
		BotToken:       cfg.Bot.Token,
		InitDataMaxAge: cfg.Bot.InitDataMaxAge,
		TokenSecret:    cfg.Auth.TokenSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		SessionTTL:     cfg.Server.SessionTTL,
		RoundUnit:      cfg.Game.RoundUnit,
		FallbackName:   cfg.Game.FallbackName,
		Game:           cfg.GameSettings(cfg.Game.FallbackName),
	})
	go srv.RunJanitor(ctx, janitorInterval(cfg.Server.SessionTTL))

	hs := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting unscramble server")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func loadWords(ctx context.Context, c config.WordsConfig) (*words.List, error) {
	ctx, cancel := context.WithTimeout(ctx, c.FetchTimeout)
	defer cancel()
	return words.Load(ctx, c.Source, &http.Client{Timeout: c.FetchTimeout})
}

// janitorInterval sweeps a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}
