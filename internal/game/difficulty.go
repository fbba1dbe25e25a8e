// internal/game/difficulty.go
//
// Difficulty Controller: maps the running score to the longest word (in
// graphemes) that may be selected next. The table is ordered by score
// threshold; the active level is the last one whose threshold ≤ score.

package game

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unbounded is the MaxLength of a level without a length cap.
const Unbounded = math.MaxInt

// Level is one difficulty tier.
type Level struct {
	Threshold int // minimum score for this tier
	MaxLength int // longest selectable word, in graphemes
}

// Table is a list of levels ascending by Threshold.
type Table []Level

// DefaultTable is the shipped difficulty ramp.
var DefaultTable = Table{
	{Threshold: 0, MaxLength: 3},
	{Threshold: 5, MaxLength: 4},
	{Threshold: 10, MaxLength: 5},
	{Threshold: 15, MaxLength: 6},
	{Threshold: 20, MaxLength: Unbounded},
}

// LevelFor returns the max grapheme length in force at score.
func (t Table) LevelFor(score int) int {
	if len(t) == 0 {
		return Unbounded
	}
	maxLength := t[0].MaxLength
	for _, lvl := range t {
		if score < lvl.Threshold {
			break
		}
		maxLength = lvl.MaxLength
	}
	return maxLength
}

// Initial returns the bound used at the start of a game.
func (t Table) Initial() int { return t.LevelFor(0) }

// Validate checks the table is usable.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("difficulty: table is empty")
	}
	if t[0].Threshold != 0 {
		return fmt.Errorf("difficulty: first threshold must be 0, got %d", t[0].Threshold)
	}
	for i, lvl := range t {
		if lvl.MaxLength <= 0 {
			return fmt.Errorf("difficulty: level %d has non-positive max length %d", i, lvl.MaxLength)
		}
		if i > 0 && lvl.Threshold <= t[i-1].Threshold {
			return fmt.Errorf("difficulty: thresholds must be ascending (level %d)", i)
		}
	}
	return nil
}

// String renders the table in ParseTable's format.
func (t Table) String() string {
	parts := make([]string, len(t))
	for i, lvl := range t {
		limit := strconv.Itoa(lvl.MaxLength)
		if lvl.MaxLength == Unbounded {
			limit = "inf"
		}
		parts[i] = strconv.Itoa(lvl.Threshold) + ":" + limit
	}
	return strings.Join(parts, ",")
}

// ParseTable reads "threshold:max,..." (max may be "inf"), e.g.
// "0:3,5:4,10:5,15:6,20:inf", and validates the result.
func ParseTable(s string) (Table, error) {
	var t Table
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		th, limit, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("difficulty: %q: want threshold:max", part)
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(th))
		if err != nil {
			return nil, fmt.Errorf("difficulty: %q: threshold: %w", part, err)
		}
		lvl := Level{Threshold: threshold, MaxLength: Unbounded}
		if limit = strings.TrimSpace(limit); !strings.EqualFold(limit, "inf") {
			if lvl.MaxLength, err = strconv.Atoi(limit); err != nil {
				return nil, fmt.Errorf("difficulty: %q: max length: %w", part, err)
			}
		}
		t = append(t, lvl)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
