// internal/grapheme/grapheme.go
//
// Grapheme segmentation for word lists whose script uses combining marks
// (Thaana fili, Latin accents, emoji sequences). A grapheme here is an
// extended grapheme cluster as defined by UAX #29; it is the unit that is
// scrambled, placed into answer slots and counted against difficulty.

package grapheme

import "github.com/rivo/uniseg"

// Segment splits s into its user-perceptible characters, in order.
// Joining the result reconstructs s exactly.
func Segment(s string) []string {
	out := make([]string, 0, len(s))
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
