package words

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRNG(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func mustParse(t *testing.T, js string) *List {
	t.Helper()
	l, err := Parse([]byte(js))
	require.NoError(t, err)
	return l
}

func TestSelectNext_NeverReusesAndExhausts(t *testing.T) {
	l := mustParse(t, `["cat","dog","owl","emu","yak"]`)
	p := NewPool(l)
	rng := newRNG(1)

	seen := map[int]bool{}
	for i := 0; i < l.Len(); i++ {
		idx, err := p.SelectNext(3, rng)
		require.NoError(t, err)
		assert.False(t, seen[idx], "index %d selected twice", idx)
		seen[idx] = true
	}
	assert.Equal(t, 0, p.Remaining())

	_, err := p.SelectNext(3, rng)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestSelectNext_PrefersInBudget(t *testing.T) {
	l := mustParse(t, `["elephant","cat","giraffe","dog"]`)
	for seed := uint64(0); seed < 50; seed++ {
		p := NewPool(l)
		rng := newRNG(seed)
		a, err := p.SelectNext(3, rng)
		require.NoError(t, err)
		b, err := p.SelectNext(3, rng)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"cat", "dog"}, []string{l.Word(a), l.Word(b)})
	}
}

func TestSelectNext_FallsBackBeyondBudget(t *testing.T) {
	l := mustParse(t, `["cat","elephant","giraffe"]`)
	p := NewPool(l)
	rng := newRNG(7)

	idx, err := p.SelectNext(3, rng)
	require.NoError(t, err)
	assert.Equal(t, "cat", l.Word(idx))

	// Nothing in budget remains, but unused words do: pick one anyway.
	idx, err = p.SelectNext(3, rng)
	require.NoError(t, err)
	assert.Contains(t, []string{"elephant", "giraffe"}, l.Word(idx))

	idx2, err := p.SelectNext(3, rng)
	require.NoError(t, err)
	assert.NotEqual(t, idx, idx2)

	_, err = p.SelectNext(3, rng)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestSelectNext_UniformAmongCandidates(t *testing.T) {
	l := mustParse(t, `["cat","dog","owl"]`)
	rng := newRNG(42)
	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		p := NewPool(l)
		idx, err := p.SelectNext(3, rng)
		require.NoError(t, err)
		counts[l.Word(idx)]++
	}
	for w, n := range counts {
		assert.InDelta(t, 1000, n, 150, "word %s picked %d times", w, n)
	}
}

func TestReset(t *testing.T) {
	l := mustParse(t, `["cat"]`)
	p := NewPool(l)
	rng := newRNG(3)

	_, err := p.SelectNext(3, rng)
	require.NoError(t, err)
	_, err = p.SelectNext(3, rng)
	require.ErrorIs(t, err, ErrPoolExhausted)

	p.Reset()
	assert.False(t, p.Consumed(0))
	idx, err := p.SelectNext(3, rng)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}
