package trie

import (
	"slices"
	"unicode/utf8"
)

// Prepare returns a sorted copy of words with duplicates and invalid UTF-8 removed.
// Byte order on valid UTF-8 is the same as Unicode scalar order, which is what the builder expects.
func Prepare(words []string) []string {
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.ValidString(w) {
			sorted = append(sorted, w)
		}
	}
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
