// internal/words/pool.go
//
// Word Pool: a read-only List plus the set of indices consumed in the
// current game. A consumed index is never selected again until Reset.
//
// Selection (SelectNext):
//   1. Unconsumed words of at most maxLength graphemes ("in budget").
//      If any, pick one uniformly at random.
//   2. Otherwise, if every word is consumed → ErrPoolExhausted.
//   3. Otherwise pick uniformly among all unconsumed words, ignoring
//      maxLength, so a game never stalls on the difficulty filter.

package words

import (
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Pool tracks which words of a List were used this session.
type Pool struct {
	list     *List
	consumed map[int]struct{}
}

// NewPool returns a pool over l with nothing consumed.
func NewPool(l *List) *Pool {
	return &Pool{list: l, consumed: make(map[int]struct{}, l.Len())}
}

// List returns the underlying word list.
func (p *Pool) List() *List { return p.list }

// SelectNext picks the next word index and marks it consumed.
func (p *Pool) SelectNext(maxLength int, rng *rand.Rand) (int, error) {
	all := lo.Range(p.list.Len())
	unconsumed := lo.Reject(all, func(i int, _ int) bool { return p.Consumed(i) })

	inBudget := lo.Filter(unconsumed, func(i int, _ int) bool {
		return p.list.GraphemeLen(i) <= maxLength
	})

	var idx int
	switch {
	case len(inBudget) > 0:
		idx = inBudget[rng.IntN(len(inBudget))]
	case len(unconsumed) == 0:
		return -1, ErrPoolExhausted
	default:
		idx = unconsumed[rng.IntN(len(unconsumed))]
		log.Warn().
			Int("maxLength", maxLength).
			Int("index", idx).
			Msg("no unused word within difficulty bound, picking any remaining word")
	}

	p.consumed[idx] = struct{}{}
	return idx, nil
}

// Consumed reports whether index i was used this session.
func (p *Pool) Consumed(i int) bool {
	_, ok := p.consumed[i]
	return ok
}

// Remaining returns how many words are still unused.
func (p *Pool) Remaining() int { return p.list.Len() - len(p.consumed) }

// Reset clears the consumed set (new game).
func (p *Pool) Reset() { clear(p.consumed) }
