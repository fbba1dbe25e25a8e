// internal/words/words.go
//
// Word list loading for the game engine.
//
// Responsibilities:
//   - Fetch the word list from a URL, a file, or the embedded default.
//   - Validate it: a JSON array of non-empty strings, at least one word.
//   - Keep each word verbatim and record its grapheme length once. Entries
//     that are not NFC or carry surrounding spaces are logged, not changed.
//   - Report simple statistics (total, histogram by grapheme length).
//
// Sources (WORDS_SOURCE):
//   https://host/words.json   fetched with the caller's http.Client
//   /path/to/words.json       read from disk
//   (empty)                   assets/words.json compiled into the binary
//
// Any failure is a *LoadError; callers treat it as fatal for the session
// (the mini-app stays on its loading screen and shows the message).

package words

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/basfurolhi/unscramble/assets"
	"github.com/basfurolhi/unscramble/internal/grapheme"
)

// maxListBytes bounds how much of a remote word list is read.
const maxListBytes = 4 << 20

// List is an immutable, validated word list.
type List struct {
	words   []string
	lengths []int // grapheme length per word, same index as words
}

// Parse validates raw JSON and builds a List.
func Parse(data []byte) (*List, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, &LoadError{Reason: "word list is not a JSON array", Err: err}
	}
	if len(raw) == 0 {
		return nil, &LoadError{Reason: "word list is empty"}
	}

	l := &List{
		words:   make([]string, 0, len(raw)),
		lengths: make([]int, 0, len(raw)),
	}
	for i, item := range raw {
		var w string
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, &LoadError{Reason: fmt.Sprintf("entry %d is not a string", i), Err: err}
		}
		if strings.TrimSpace(w) == "" {
			return nil, &LoadError{Reason: fmt.Sprintf("entry %d is empty", i)}
		}
		if !norm.NFC.IsNormalString(w) || strings.TrimSpace(w) != w {
			log.Warn().Int("index", i).Str("word", w).Msg("word list entry is not trimmed NFC; kept as is")
		}
		l.words = append(l.words, w)
		l.lengths = append(l.lengths, grapheme.Count(w))
	}
	return l, nil
}

// Load reads a word list from source (URL, file path or "" for the
// embedded default) and parses it.
func Load(ctx context.Context, source string, client *http.Client) (*List, error) {
	data, err := read(ctx, source, client)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func read(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	switch {
	case source == "":
		b, err := assets.DefaultWords()
		if err != nil {
			return nil, &LoadError{Reason: "embedded word list missing", Err: err}
		}
		return b, nil

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, &LoadError{Reason: "bad word list URL", Err: err}
		}
		res, err := client.Do(req)
		if err != nil {
			return nil, &LoadError{Reason: "fetch word list", Err: err}
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, &LoadError{Reason: fmt.Sprintf("fetch word list: HTTP status %d", res.StatusCode)}
		}
		b, err := io.ReadAll(io.LimitReader(res.Body, maxListBytes))
		if err != nil {
			return nil, &LoadError{Reason: "read word list body", Err: err}
		}
		return b, nil

	default:
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, &LoadError{Reason: "read word list file", Err: err}
		}
		return b, nil
	}
}

// Len returns the number of words.
func (l *List) Len() int { return len(l.words) }

// Word returns the i-th word.
func (l *List) Word(i int) string { return l.words[i] }

// GraphemeLen returns the grapheme length of the i-th word.
func (l *List) GraphemeLen(i int) int { return l.lengths[i] }

// CountWithin reports how many words are at most maxLength graphemes long.
func (l *List) CountWithin(maxLength int) int {
	return lo.CountBy(l.lengths, func(n int) bool { return n <= maxLength })
}

// Stats summarises a list for diagnostics.
type Stats struct {
	Total    int         `json:"total"`
	ByLength []LengthBin `json:"byLength"`
}

// LengthBin is one histogram bucket of Stats.
type LengthBin struct {
	Graphemes int `json:"graphemes"`
	Words     int `json:"words"`
}

// Stats returns the word count and a histogram by grapheme length,
// ordered by length ascending.
func (l *List) Stats() Stats {
	counts := lo.CountValues(l.lengths)
	keys := lo.Keys(counts)
	sort.Ints(keys)
	bins := lo.Map(keys, func(n int, _ int) LengthBin {
		return LengthBin{Graphemes: n, Words: counts[n]}
	})
	return Stats{Total: len(l.words), ByLength: bins}
}
