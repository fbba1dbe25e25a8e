package store

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfurolhi/unscramble/internal/play"
	"github.com/basfurolhi/unscramble/internal/words"
)

func newRunner(t *testing.T, clock clockwork.Clock) *play.Runner {
	t.Helper()
	l, err := words.Parse([]byte(`["ab"]`))
	require.NoError(t, err)
	r := play.Start(context.Background(), play.Options{Clock: clock}, l, nil)
	t.Cleanup(r.Close)
	return r
}

func TestMemory_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := newRunner(t, clockwork.NewFakeClock())

	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "x", r))
	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Same(t, r, got)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "x"))
	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	<-r.Done()
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := NewMemoryStore()

	stale := newRunner(t, clock)
	require.NoError(t, s.Save(ctx, "stale", stale))
	clock.Advance(10 * time.Minute)
	fresh := newRunner(t, clock)
	require.NoError(t, s.Save(ctx, "fresh", fresh))

	n := s.Sweep(ctx, clock.Now().Add(-5*time.Minute))
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
	_, err := s.Get(ctx, "fresh")
	assert.NoError(t, err)
	<-stale.Done()
}
