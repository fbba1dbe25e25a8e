package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_SortsDescending(t *testing.T) {
	var lb []Entry
	lb = Insert(lb, Entry{Name: "A", Score: 10})
	lb = Insert(lb, Entry{Name: "B", Score: 30})
	lb = Insert(lb, Entry{Name: "C", Score: 20})
	assert.Equal(t, []Entry{{"B", 30}, {"C", 20}, {"A", 10}}, lb)
}

func TestInsert_TrimsToTen(t *testing.T) {
	var lb []Entry
	for i := 1; i <= MaxEntries; i++ {
		lb = Insert(lb, Entry{Name: fmt.Sprint(i), Score: i * 10})
	}
	require.Len(t, lb, MaxEntries)

	lb = Insert(lb, Entry{Name: "late", Score: 55})
	require.Len(t, lb, MaxEntries)
	assert.Equal(t, 100, lb[0].Score)
	assert.Equal(t, 20, lb[MaxEntries-1].Score, "lowest score dropped")
	assert.Contains(t, lb, Entry{Name: "late", Score: 55})
}

func TestInsert_TiesKeepArrivalOrder(t *testing.T) {
	lb := Insert([]Entry{{"first", 5}}, Entry{Name: "second", Score: 5})
	assert.Equal(t, []Entry{{"first", 5}, {"second", 5}}, lb)
}

func TestInsert_DoesNotMutateInput(t *testing.T) {
	in := []Entry{{"a", 1}, {"b", 2}}
	_ = Insert(in, Entry{Name: "c", Score: 3})
	assert.Equal(t, []Entry{{"a", 1}, {"b", 2}}, in)
}

func TestBoard_RecordAndLoad(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	b := NewBoard(kv)

	got, err := b.Load(ctx, ScopeFor(0))
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, e := range []Entry{{"A", 10}, {"B", 30}, {"C", 20}} {
		_, err := b.Record(ctx, ScopeFor(0), e)
		require.NoError(t, err)
	}
	got, err = b.Load(ctx, ScopeFor(0))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"B", 30}, {"C", 20}, {"A", 10}}, got)

	raw, ok, _ := kv.Get(ctx, "highscores")
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"B","score":30},{"name":"C","score":20},{"name":"A","score":10}]`, string(raw))
}

func TestBoard_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	b := NewBoard(NewMemoryKV())
	_, err := b.Record(ctx, ScopeFor(42), Entry{"x", 1})
	require.NoError(t, err)

	got, err := b.Load(ctx, ScopeFor(7))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "highscores:42", ScopeFor(42))
}

func TestBoard_RecordReplacesCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, "highscores", []byte(`{not json`)))
	b := NewBoard(kv)

	_, err := b.Load(ctx, "highscores")
	require.Error(t, err)

	got, err := b.Record(ctx, "highscores", Entry{"A", 3})
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"A", 3}}, got)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (failingKV) Put(context.Context, string, []byte) error { return errors.New("disk gone") }

func TestBoard_PropagatesStoreErrors(t *testing.T) {
	_, err := NewBoard(failingKV{}).Record(context.Background(), "highscores", Entry{"A", 1})
	assert.ErrorContains(t, err, "disk gone")
}

func TestEntry_JSONShape(t *testing.T) {
	b, err := json.Marshal(Entry{Name: "ޔޫސާގެނަން", Score: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ޔޫސާގެނަން","score":4}`, string(b))
}

// slowKV widens the gap between a Record's read and its write.
type slowKV struct{ *MemoryKV }

func (s slowKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(2 * time.Millisecond)
	return s.MemoryKV.Get(ctx, key)
}

func TestBoard_ConcurrentRecordsKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	board := NewBoard(slowKV{NewMemoryKV()})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := board.Record(ctx, ScopeFor(0), Entry{Name: fmt.Sprintf("guest%d", i), Score: i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := board.Load(ctx, ScopeFor(0))
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, 7, got[0].Score)
}
