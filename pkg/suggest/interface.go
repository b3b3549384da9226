// Package suggest ranks dictionary words for a typed prefix, with optional typo tolerance.
package suggest

import "github.com/bastiangx/wordtrie/pkg/trie"

// ICompleter defines the interface for word completion engines
type ICompleter interface {
	// Complete returns the most frequent words starting with prefix
	Complete(prefix string, limit int) []Suggestion

	// CompleteFuzzy also accepts words whose prefix is within k edits of prefix
	CompleteFuzzy(prefix string, k, limit int) []Suggestion

	// Search reports whether query is a word, or a prefix of one when prefix is set
	Search(query string, prefix bool) bool

	// SearchFuzzy returns every word within k edits of query
	SearchFuzzy(query string, k int, prefix bool) []trie.Match

	Contains(word string) bool
	HasPrefix(prefix string) bool

	// Stats returns statistics about the loaded dictionary
	Stats() map[string]int
}
