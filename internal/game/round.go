// internal/game/round.go
//
// Round Engine: one attempt at unscrambling a single word.
//
// The word is split into graphemes, shuffled into the "scrambled" row and
// the player moves graphemes into answer slots left to right. Every answer
// slot remembers which scrambled position it came from, so a grapheme is
// always either in the scrambled row (unused) or in exactly one slot.

package game

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/grapheme"
)

// maxShuffleAttempts bounds the reshuffles spent avoiding a scramble that
// already spells the word.
const maxShuffleAttempts = 100

// Slot is one answer position.
type Slot struct {
	Grapheme string
	Origin   int // index into the scrambled row
	Filled   bool
}

// Round holds the state of the word being solved.
type Round struct {
	word      string
	graphemes []string
	scrambled []string
	used      []bool
	answer    []Slot
}

// NewRound segments word and scrambles its graphemes.
func NewRound(word string, rng *rand.Rand) *Round {
	g := grapheme.Segment(word)
	return &Round{
		word:      word,
		graphemes: g,
		scrambled: scramble(word, g, rng),
		used:      make([]bool, len(g)),
		answer:    make([]Slot, len(g)),
	}
}

// scramble shuffles g (Fisher–Yates) until it no longer spells word.
// Words of one grapheme, or words whose every arrangement spells the word,
// keep the last shuffle once the attempts run out.
func scramble(word string, g []string, rng *rand.Rand) []string {
	out := slices.Clone(g)
	for attempt := 1; ; attempt++ {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		if len(g) <= 1 || strings.Join(out, "") != word {
			return out
		}
		if attempt >= maxShuffleAttempts {
			log.Warn().Str("word", word).Int("attempts", attempt).Msg("could not scramble word")
			return out
		}
	}
}

// Word returns the word being solved.
func (r *Round) Word() string { return r.word }

// Len returns the number of graphemes (and answer slots).
func (r *Round) Len() int { return len(r.graphemes) }

// Scrambled returns a copy of the scrambled row.
func (r *Round) Scrambled() []string { return slices.Clone(r.scrambled) }

// Used reports whether scrambled position i currently sits in a slot.
func (r *Round) Used(i int) bool { return i >= 0 && i < len(r.used) && r.used[i] }

// Answer returns a copy of the answer slots.
func (r *Round) Answer() []Slot { return slices.Clone(r.answer) }

// Place moves scrambled grapheme i into the first empty answer slot. It is a
// no-op for an out-of-range or already used position. When the last slot is
// filled the answer is evaluated and the outcome returned; otherwise Pending.
func (r *Round) Place(i int) Outcome {
	if i < 0 || i >= len(r.scrambled) || r.used[i] {
		return OutcomePending
	}
	slot := slices.IndexFunc(r.answer, func(s Slot) bool { return !s.Filled })
	if slot < 0 {
		return OutcomePending
	}
	r.answer[slot] = Slot{Grapheme: r.scrambled[i], Origin: i, Filled: true}
	r.used[i] = true
	return r.Evaluate()
}

// Retract empties answer slot i and frees its scrambled position. It reports
// whether anything changed.
func (r *Round) Retract(i int) bool {
	if i < 0 || i >= len(r.answer) || !r.answer[i].Filled {
		return false
	}
	r.used[r.answer[i].Origin] = false
	r.answer[i] = Slot{}
	return true
}

// Clear retracts every filled slot.
func (r *Round) Clear() {
	for i := range r.answer {
		r.Retract(i)
	}
}

// Evaluate compares the assembled answer with the word. Pending while any
// slot is empty.
func (r *Round) Evaluate() Outcome {
	var b strings.Builder
	for _, s := range r.answer {
		if !s.Filled {
			return OutcomePending
		}
		b.WriteString(s.Grapheme)
	}
	if b.String() == r.word {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}
