// Package trie implements a static, path-compressed prefix trie stored as flat parallel arrays.
//
// A Trie is built once from a word list and never changes afterwards. Lookups walk the
// arrays directly: each node owns a contiguous range of edges sorted by their first rune,
// so the next edge is found with a binary search instead of a map lookup.
package trie

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Trie is an immutable flattened trie.
// It is safe for concurrent readers.
type Trie struct {
	// edge labels, concatenated in emission order
	labels string
	// labels[labelOffsets[i]:labelOffsets[i+1]] is the label of edge i
	labelOffsets []int
	firsts       []rune
	// edges nodeOffsets[n]..nodeOffsets[n+1] are the children of node n
	nodeOffsets []int
	// child node of each edge, 0 for leaves
	children []int
	terminal []bool

	root     int
	words    int
	maxRunes int
	hasEmpty bool
}

// Stats describes the size of a built trie.
type Stats struct {
	Words      int
	Nodes      int
	Edges      int
	LabelBytes int
}

// Stats returns the counts of the flattened arrays.
func (t *Trie) Stats() Stats {
	return Stats{
		Words: t.words,
		// node 0 is the leaf sentinel
		Nodes:      len(t.nodeOffsets) - 2,
		Edges:      len(t.firsts),
		LabelBytes: len(t.labels),
	}
}

// Len returns the number of distinct words stored.
func (t *Trie) Len() int {
	return t.words
}

func (t *Trie) label(edge int) string {
	return t.labels[t.labelOffsets[edge]:t.labelOffsets[edge+1]]
}

func (t *Trie) edges(node int) (int, int) {
	return t.nodeOffsets[node], t.nodeOffsets[node+1]
}

// findEdge binary searches the children of node for an edge starting with r.
func (t *Trie) findEdge(node int, r rune) (int, bool) {
	lo, hi := t.edges(node)
	i, found := slices.BinarySearch(t.firsts[lo:hi], r)
	return lo + i, found
}

// Search reports whether query is stored in the trie.
// With prefix set, it reports whether any stored word starts with query.
// Queries match by whole scalars, so a query ending inside a multi-byte
// character is not a prefix of the word that holds it.
func (t *Trie) Search(query string, prefix bool) bool {
	if query == "" {
		return prefix || t.hasEmpty
	}

	node := t.root
	for {
		r, _ := utf8.DecodeRuneInString(query)
		edge, ok := t.findEdge(node, r)
		if !ok {
			return false
		}
		matched := t.label(edge)

		switch {
		case len(query) < len(matched):
			return prefix && strings.HasPrefix(matched, query)
		case len(query) == len(matched):
			return query == matched && (prefix || t.terminal[edge])
		}

		if !strings.HasPrefix(query, matched) {
			return false
		}
		query = query[len(matched):]
		node = t.children[edge]
		if node == 0 {
			return false
		}
	}
}

// Contains reports whether word is stored in the trie.
func (t *Trie) Contains(word string) bool {
	return t.Search(word, false)
}

// HasPrefix reports whether any stored word starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	return t.Search(prefix, true)
}
