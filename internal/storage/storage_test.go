package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfurolhi/unscramble/internal/leaderboard"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('kv','game_launches')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))
	assert.FileExists(t, path)
}

func TestKV_GetPut(t *testing.T) {
	ctx := context.Background()
	kv := NewKV(setupTestDB(t))

	_, ok, err := kv.Get(ctx, "highscores")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put(ctx, "highscores", []byte(`[1]`)))
	require.NoError(t, kv.Put(ctx, "highscores", []byte(`[2]`)))
	v, ok, err := kv.Get(ctx, "highscores")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(v))
}

func TestKV_BacksLeaderboard(t *testing.T) {
	ctx := context.Background()
	board := leaderboard.NewBoard(NewKV(setupTestDB(t)))

	for _, e := range []leaderboard.Entry{{Name: "A", Score: 10}, {Name: "B", Score: 30}, {Name: "C", Score: 20}} {
		_, err := board.Record(ctx, leaderboard.ScopeFor(5), e)
		require.NoError(t, err)
	}
	got, err := board.Load(ctx, leaderboard.ScopeFor(5))
	require.NoError(t, err)
	assert.Equal(t, []leaderboard.Entry{{Name: "B", Score: 30}, {Name: "C", Score: 20}, {Name: "A", Score: 10}}, got)
}

func TestLaunches(t *testing.T) {
	ctx := context.Background()
	l := NewLaunches(setupTestDB(t))

	_, ok, err := l.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Remember(ctx, 1, "AAA"))
	require.NoError(t, l.Remember(ctx, 1, "BBB"))
	id, ok, err := l.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BBB", id)
}
