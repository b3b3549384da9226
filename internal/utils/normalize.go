package utils

import (
	"strings"
	"unicode"
)

// CapitalPositions lower-cases s rune by rune and records which rune positions were upper case.
// The result has as many runes as s. The positions are nil when s has no upper case runes.
func CapitalPositions(s string) (string, []bool) {
	var positions []bool
	var lower strings.Builder
	lower.Grow(len(s))
	i := 0
	for _, r := range s {
		lower.WriteRune(unicode.ToLower(r))
		if unicode.IsUpper(r) {
			if positions == nil {
				positions = make([]bool, 0, len(s))
			}
			for len(positions) < i {
				positions = append(positions, false)
			}
			positions = append(positions, true)
		}
		i++
	}
	return lower.String(), positions
}

// ApplyCapitals upper-cases the runes of word at the recorded positions.
// Positions past the end of word are ignored.
func ApplyCapitals(word string, positions []bool) string {
	if len(positions) == 0 {
		return word
	}
	runes := []rune(word)
	for i := 0; i < len(runes) && i < len(positions); i++ {
		if positions[i] {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}
