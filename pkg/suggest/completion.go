package suggest

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/bastiangx/wordtrie/pkg/dictionary"
	"github.com/bastiangx/wordtrie/pkg/trie"
	"github.com/charmbracelet/log"
)

// hotPrefixRunes is the longest prefix answered from the hot cache.
const hotPrefixRunes = 2

type Suggestion struct {
	Word           string
	Frequency      int
	Distance       int    `json:",omitempty"`
	WasCorrected   bool   `json:",omitempty"`
	OriginalPrefix string `json:",omitempty"`
}

// Options tune filtering. Zero values disable the corresponding filter.
type Options struct {
	MinFreqThreshold   int
	MinFreqShortPrefix int
	HotWords           int
}

// DefaultOptions matches the default [dict] config section.
func DefaultOptions() Options {
	return Options{
		MinFreqThreshold:   20,
		MinFreqShortPrefix: 24,
		HotWords:           2000,
	}
}

// Completer answers completion queries over an immutable trie.
// It is safe for concurrent use.
type Completer struct {
	trie         *trie.Trie
	wordFreqs    map[string]int
	hotCache     *HotCache
	maxFrequency int
	opts         Options
}

var _ ICompleter = (*Completer)(nil)

// NewCompleter builds the trie for vocab and fills the hot cache.
func NewCompleter(vocab *dictionary.Vocabulary, opts Options) *Completer {
	t := trie.New(vocab.Words)
	c := &Completer{
		trie:         t,
		wordFreqs:    vocab.Freqs,
		hotCache:     NewHotCache(opts.HotWords),
		maxFrequency: vocab.MaxFrequency(),
		opts:         opts,
	}
	c.hotCache.Populate(vocab.Freqs)

	stats := t.Stats()
	log.Debugf("Completer ready: %s words, %s nodes, %s label bytes",
		utils.FormatWithCommas(stats.Words), utils.FormatWithCommas(stats.Nodes), utils.FormatWithCommas(stats.LabelBytes))
	return c
}

func (c *Completer) threshold(lowerPrefix string) int {
	if len(lowerPrefix) <= 2 || utils.IsRepetitive(lowerPrefix) {
		return c.opts.MinFreqShortPrefix
	}
	return c.opts.MinFreqThreshold
}

func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	lowerPrefix, capitals := utils.CapitalPositions(prefix)
	minFreq := c.threshold(lowerPrefix)

	var suggestions []Suggestion
	if utf8.RuneCountInString(lowerPrefix) <= hotPrefixRunes && limit > 0 {
		suggestions = c.hotCache.Search(lowerPrefix, minFreq)
		if len(suggestions) < limit {
			suggestions = nil
		}
	}

	if suggestions == nil {
		for _, m := range c.trie.SearchFuzzy(lowerPrefix, 0, true) {
			if m.Word == lowerPrefix {
				continue
			}
			freq := c.wordFreqs[m.Word]
			if freq < minFreq {
				continue
			}
			suggestions = append(suggestions, Suggestion{Word: m.Word, Frequency: freq})
		}
	}

	slices.SortFunc(suggestions, byFrequency)
	return finish(suggestions, capitals, limit)
}

// CompleteFuzzy returns words that have a prefix within k edits of prefix.
// Closer matches come first, then more frequent ones.
func (c *Completer) CompleteFuzzy(prefix string, k, limit int) []Suggestion {
	if k < 0 {
		return nil
	}
	lowerPrefix, capitals := utils.CapitalPositions(prefix)
	minFreq := c.threshold(lowerPrefix)

	var suggestions []Suggestion
	for _, m := range c.trie.SearchFuzzy(lowerPrefix, k, true) {
		if m.Word == lowerPrefix {
			continue
		}
		freq := c.wordFreqs[m.Word]
		if freq < minFreq {
			continue
		}
		s := Suggestion{Word: m.Word, Frequency: freq, Distance: m.Distance}
		if m.Distance > 0 {
			s.WasCorrected = true
			s.OriginalPrefix = prefix
		}
		suggestions = append(suggestions, s)
	}

	slices.SortFunc(suggestions, func(a, b Suggestion) int {
		if d := cmp.Compare(a.Distance, b.Distance); d != 0 {
			return d
		}
		return byFrequency(a, b)
	})
	return finish(suggestions, capitals, limit)
}

func byFrequency(a, b Suggestion) int {
	if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
		return c
	}
	return strings.Compare(a.Word, b.Word)
}

func finish(suggestions []Suggestion, capitals []bool, limit int) []Suggestion {
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	for i := range suggestions {
		suggestions[i].Word = utils.ApplyCapitals(suggestions[i].Word, capitals)
	}
	return suggestions
}

func (c *Completer) Search(query string, prefix bool) bool {
	return c.trie.Search(query, prefix)
}

// SearchFuzzy exposes the raw trie matches in lexicographic order.
func (c *Completer) SearchFuzzy(query string, k int, prefix bool) []trie.Match {
	return c.trie.SearchFuzzy(query, k, prefix)
}

func (c *Completer) Contains(word string) bool {
	return c.trie.Contains(word)
}

func (c *Completer) HasPrefix(prefix string) bool {
	return c.trie.HasPrefix(prefix)
}

// Frequency returns the score of word, or 0 when it is not in the dictionary.
func (c *Completer) Frequency(word string) int {
	return c.wordFreqs[word]
}

func (c *Completer) Stats() map[string]int {
	ts := c.trie.Stats()
	stats := map[string]int{
		"totalWords":   ts.Words,
		"maxFrequency": c.maxFrequency,
		"trieNodes":    ts.Nodes,
		"trieEdges":    ts.Edges,
		"labelBytes":   ts.LabelBytes,
	}
	for k, v := range c.hotCache.Stats() {
		stats[k] = v
	}
	return stats
}
