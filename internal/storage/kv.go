package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// KV is a string-keyed blob store over the kv table. It backs the
// leaderboards.
type KV struct{ db *sql.DB }

// NewKV returns a KV over a migrated database.
func NewKV(db *sql.DB) *KV { return &KV{db: db} }

// Get returns the value stored under key; ok is false if there is none.
func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := sq.Select("value").From("kv").
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(v), true, nil
}

// Put stores value under key, replacing any previous value.
func (s *KV) Put(ctx context.Context, key string, value []byte) error {
	_, err := sq.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at").
		RunWith(s.db).
		ExecContext(ctx)
	return err
}
