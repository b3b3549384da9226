package utils

import "strings"

// SuggestionFilter drops repeated words while merging suggestions from several sources.
// It is not safe for concurrent use.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates a filter. Any exclude words are treated as already seen.
func NewSuggestionFilter(exclude ...string) *SuggestionFilter {
	seenWords := make(map[string]bool, len(exclude))
	for _, word := range exclude {
		seenWords[strings.ToLower(word)] = true
	}
	return &SuggestionFilter{seenWords: seenWords}
}

// ShouldInclude reports whether word was not seen before and marks it as seen.
// Comparison ignores case.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}
