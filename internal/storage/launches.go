package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Launches remembers, per Telegram user, the inline message their game was
// launched from. Only the latest launch is kept.
type Launches struct{ db *sql.DB }

// NewLaunches returns a Launches store over a migrated database.
func NewLaunches(db *sql.DB) *Launches { return &Launches{db: db} }

// Remember records inlineMessageID as userID's current launch.
func (s *Launches) Remember(ctx context.Context, userID int64, inlineMessageID string) error {
	_, err := sq.Insert("game_launches").
		Columns("user_id", "inline_message_id", "updated_at").
		Values(userID, inlineMessageID, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET inline_message_id=excluded.inline_message_id, updated_at=excluded.updated_at").
		RunWith(s.db).
		ExecContext(ctx)
	return err
}

// Lookup returns userID's current launch; ok is false if none is recorded.
func (s *Launches) Lookup(ctx context.Context, userID int64) (string, bool, error) {
	var id string
	err := sq.Select("inline_message_id").From("game_launches").
		Where(sq.Eq{"user_id": userID}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
