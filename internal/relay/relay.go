// internal/relay/relay.go
//
// Score relay between a finished game and the Telegram game score board.
// Responsibilities:
//   - The report message a game emits on game over: {"score": <int>}.
//   - Notifier implementations: Direct (hand the report to the in-process
//     bot) and Nop (no bot configured, log only).
//
// Notification is fire-and-forget from the game's point of view; callers
// run Notify off the game loop and surface errors as a non-fatal notice.

package relay

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrNoUser means the report has no Telegram user to credit.
var ErrNoUser = errors.New("relay: no telegram user")

// Report is the message a game emits when it ends.
type Report struct {
	Score int `json:"score"`
}

// Notifier delivers a final score for a Telegram user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, r Report) error
}

// Direct forwards reports to a Bot running in the same process, encoded
// exactly as the mini-app would send them through web-app data.
type Direct struct{ bot *Bot }

// NewDirect returns a Notifier backed by b.
func NewDirect(b *Bot) *Direct { return &Direct{bot: b} }

// Notify encodes r and submits it on behalf of userID, whose private chat
// receives the confirmation.
func (d *Direct) Notify(ctx context.Context, userID int64, r Report) error {
	if userID == 0 {
		return ErrNoUser
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return d.bot.Submit(ctx, userID, userID, data)
}

// Nop drops reports. Used for guests and when no bot token is configured.
type Nop struct{}

// Notify logs the report and returns nil.
func (Nop) Notify(_ context.Context, userID int64, r Report) error {
	log.Debug().Int64("userId", userID).Int("score", r.Score).Msg("relay disabled, score not forwarded")
	return nil
}
