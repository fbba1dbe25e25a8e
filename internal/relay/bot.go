// internal/relay/bot.go
//
// Telegram relay bot.
// Responsibilities:
//   - /start           → send the game message (GAME_SHORT_NAME).
//   - game callback    → remember user → inline message id, open GAME_URL.
//   - other callbacks  → plain answer so the client stops spinning.
//   - web-app data     → {"score": n} → setGameScore(force) on the
//                        remembered message, then reply with the outcome.
//
// The bot talks to Telegram through the narrow API interface below, which
// *bot.Bot satisfies; tests substitute a recorder.

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// Replies sent to the player after a score report.
const (
	ReplySavedFormat = "✅ Your score of %d has been saved!"
	ReplyNoSession   = "Could not find your game session."
	ReplyFailed      = "❌ Failed to update score."
)

// ErrNoLaunch means no game launch is remembered for the user.
var ErrNoLaunch = errors.New("relay: no game launch recorded for user")

// API is the subset of the Telegram Bot API the relay uses.
type API interface {
	SendGame(ctx context.Context, params *bot.SendGameParams) (*models.Message, error)
	SetGameScore(ctx context.Context, params *bot.SetGameScoreParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// BotConfig names the registered game and where the mini-app is hosted.
type BotConfig struct {
	GameShortName string
	GameURL       string // opened on game callbacks; empty leaves them unanswered
}

// Bot handles Telegram updates for the game.
type Bot struct {
	api      API
	launches Launches
	cfg      BotConfig
}

// NewBot returns a Bot over api.
func NewBot(api API, launches Launches, cfg BotConfig) *Bot {
	return &Bot{api: api, launches: launches, cfg: cfg}
}

// Dial creates a Telegram client for token whose updates are routed to a
// new Bot. Call Start on the returned client to begin polling.
func Dial(token string, launches Launches, cfg BotConfig) (*Bot, *bot.Bot, error) {
	rb := NewBot(nil, launches, cfg)
	tg, err := bot.New(token, bot.WithDefaultHandler(rb.Handle))
	if err != nil {
		return nil, nil, fmt.Errorf("telegram client: %w", err)
	}
	rb.api = tg
	return rb, tg, nil
}

// Handle dispatches one update. Its signature matches bot.HandlerFunc.
func (b *Bot) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.onMessage(ctx, update.Message)
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *models.Message) {
	if msg.WebAppData != nil && msg.From != nil {
		_ = b.Submit(ctx, msg.Chat.ID, msg.From.ID, []byte(msg.WebAppData.Data))
		return
	}
	if isStart(msg.Text) {
		chatID := msg.Chat.ID
		if _, err := b.api.SendGame(ctx, &bot.SendGameParams{
			ChatID:       chatID,
			GameShorName: b.cfg.GameShortName,
		}); err != nil {
			log.Error().Err(err).Int64("chatId", chatID).Msg("send game")
		}
	}
}

func isStart(text string) bool {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start"
}

func (b *Bot) onCallback(ctx context.Context, q *models.CallbackQuery) {
	if q.GameShortName != b.cfg.GameShortName {
		if _, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
			log.Warn().Err(err).Msg("answer callback")
		}
		return
	}

	if q.InlineMessageID != "" {
		if err := b.launches.Remember(ctx, q.From.ID, q.InlineMessageID); err != nil {
			log.Error().Err(err).Int64("userId", q.From.ID).Msg("remember game launch")
		}
	}
	if b.cfg.GameURL == "" {
		return
	}
	if _, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		URL:             b.cfg.GameURL,
	}); err != nil {
		log.Warn().Err(err).Msg("answer game callback")
	}
}

// Submit records a score report for userID and replies in chatID with the
// outcome. The returned error mirrors the reply: nil only when the score
// board was updated.
func (b *Bot) Submit(ctx context.Context, chatID, userID int64, data []byte) error {
	err := b.submit(ctx, userID, data)
	reply := ReplyFailed
	switch {
	case err == nil:
		var r Report
		_ = json.Unmarshal(data, &r)
		reply = fmt.Sprintf(ReplySavedFormat, r.Score)
	case errors.Is(err, ErrNoLaunch):
		reply = ReplyNoSession
	default:
		log.Error().Err(err).Int64("userId", userID).Msg("set game score")
	}
	if _, serr := b.api.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply}); serr != nil {
		log.Warn().Err(serr).Int64("chatId", chatID).Msg("send reply")
	}
	return err
}

func (b *Bot) submit(ctx context.Context, userID int64, data []byte) error {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	inlineID, ok, err := b.launches.Lookup(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup launch: %w", err)
	}
	if !ok {
		return ErrNoLaunch
	}
	if _, err := b.api.SetGameScore(ctx, &bot.SetGameScoreParams{
		UserID:          userID,
		Score:           r.Score,
		Force:           true,
		InlineMessageID: inlineID,
	}); err != nil {
		return fmt.Errorf("set game score: %w", err)
	}
	log.Info().Int64("userId", userID).Int("score", r.Score).Msg("score saved")
	return nil
}
