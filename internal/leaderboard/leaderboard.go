// internal/leaderboard/leaderboard.go
//
// Score Persistence: a top-N list of (name, score) entries per scope,
// stored as a JSON array under one key of a key/value store.
//
// Writes append the new entry, sort by score descending (stable, so equal
// scores keep arrival order) and keep the first MaxEntries. Record holds a
// per-scope lock across its read and write, so concurrent games finishing
// in the same scope (all guests share one) never drop each other's entry.

package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
)

// MaxEntries is the leaderboard length.
const MaxEntries = 10

// guestScope is the key used when the player has no host identity.
const guestScope = "highscores"

// Entry is one leaderboard row.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// KV is the minimal key/value store a Board needs.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Board reads and writes leaderboards. A Board must be shared by every
// writer of the same KV for Record to be serialised.
type Board struct {
	kv KV

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per scope
}

// NewBoard returns a Board over kv.
func NewBoard(kv KV) *Board {
	return &Board{kv: kv, locks: make(map[string]*sync.Mutex)}
}

func (b *Board) lock(scope string) func() {
	b.mu.Lock()
	l, ok := b.locks[scope]
	if !ok {
		l = &sync.Mutex{}
		b.locks[scope] = l
	}
	b.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ScopeFor returns the storage key for a player; userID 0 means guest.
func ScopeFor(userID int64) string {
	if userID == 0 {
		return guestScope
	}
	return guestScope + ":" + strconv.FormatInt(userID, 10)
}

// Insert adds e to entries and returns the sorted, trimmed result.
// entries is not modified.
func Insert(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	slices.SortStableFunc(out, func(a, b Entry) int { return b.Score - a.Score })
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// Load returns the leaderboard stored under scope (empty if none).
func (b *Board) Load(ctx context.Context, scope string) ([]Entry, error) {
	raw, ok, err := b.kv.Get(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: get %s: %w", scope, err)
	}
	if !ok || len(raw) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("leaderboard: decode %s: %w", scope, err)
	}
	return entries, nil
}

// Record appends e to the leaderboard under scope and returns the stored
// list. A corrupt stored value is replaced rather than blocking the write.
func (b *Board) Record(ctx context.Context, scope string, e Entry) ([]Entry, error) {
	defer b.lock(scope)()

	current, err := b.Load(ctx, scope)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return nil, err
		}
		current = nil
	}
	next := Insert(current, e)
	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: encode: %w", err)
	}
	if err := b.kv.Put(ctx, scope, raw); err != nil {
		return nil, fmt.Errorf("leaderboard: put %s: %w", scope, err)
	}
	return next, nil
}
