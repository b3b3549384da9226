package trie

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// ErrUnsorted is returned by FromSorted when the input is not strictly increasing.
var ErrUnsorted = errors.New("words are not sorted and unique")

// ErrInvalidUTF8 is returned by FromSorted when a word is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("word is not valid UTF-8")

// frame is an open node on the build stack.
// Its incoming edge label is word[parent.prefixSize:prefixSize].
type frame struct {
	prefixSize int
	word       string
	children   []*frame
	ptr        int
	terminal   bool
}

// builder accumulates the raw per-edge lengths and per-node child counts
// before they are turned into cumulative offsets.
type builder struct {
	t          *Trie
	labels     []byte
	labelLens  []int
	nodeCounts []int
}

// New builds a trie from words in any order.
// Duplicates and words that are not valid UTF-8 are skipped, and an empty list gives an empty trie.
func New(words []string) *Trie {
	t, err := FromSorted(Prepare(words))
	if err != nil {
		// Prepare guarantees what FromSorted checks for.
		panic(err)
	}
	return t
}

// FromSorted builds a trie from valid UTF-8 words that are already sorted and free of duplicates.
func FromSorted(words []string) (*Trie, error) {
	for i, w := range words {
		if !utf8.ValidString(w) {
			return nil, fmt.Errorf("%w: %q at index %d", ErrInvalidUTF8, w, i)
		}
		if i > 0 && words[i-1] >= w {
			return nil, fmt.Errorf("%w: %q at index %d follows %q", ErrUnsorted, w, i, words[i-1])
		}
	}

	t := &Trie{words: len(words)}
	if len(words) > 0 && words[0] == "" {
		t.hasEmpty = true
		words = words[1:]
	}

	b := &builder{
		t: t,
		// node 0 has no children and doubles as the leaf sentinel
		nodeCounts: []int{0},
	}
	b.build(words)
	b.finish()

	log.Debugf("Built trie: words=%d nodes=%d edges=%d bytes=%d",
		t.words, len(t.nodeOffsets)-2, len(t.firsts), len(t.labels))
	return t, nil
}

func (b *builder) build(words []string) {
	last := ""
	stack := []*frame{{}}

	// the trailing "" shares no prefix with anything and flushes every open frame
	for i := 0; i <= len(words); i++ {
		word := ""
		if i < len(words) {
			word = words[i]
		}
		p := commonPrefixSize(word, last)

		var merged *frame
		for stack[len(stack)-1].prefixSize > p {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if merged != nil {
				top.children = append(top.children, merged)
			}
			b.flush(top)
			merged = top
		}

		if merged != nil {
			if stack[len(stack)-1].prefixSize < p {
				stack = append(stack, &frame{prefixSize: p, word: word})
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, merged)
		}

		if word != "" {
			stack = append(stack, &frame{prefixSize: len(word), word: word, terminal: true})
			if n := utf8.RuneCountInString(word); n > b.t.maxRunes {
				b.t.maxRunes = n
			}
		}
		last = word
	}

	if len(stack) != 1 {
		panic(fmt.Sprintf("trie: %d frames left open after build", len(stack)))
	}
	root := stack[0]
	b.flush(root)
	b.t.root = root.ptr
}

// flush emits the children of f as edges and assigns f a node index.
// Frames without children stay leaves and keep ptr 0.
func (b *builder) flush(f *frame) {
	if len(f.children) == 0 && f.prefixSize > 0 {
		return
	}

	t := b.t
	prev := rune(-1)
	for _, child := range f.children {
		label := child.word[f.prefixSize:child.prefixSize]
		if label == "" {
			panic("trie: empty edge label")
		}
		first, _ := utf8.DecodeRuneInString(label)
		if first <= prev {
			panic(fmt.Sprintf("trie: edge %q out of order under %q", label, f.word[:f.prefixSize]))
		}
		prev = first

		b.labels = append(b.labels, label...)
		b.labelLens = append(b.labelLens, len(label))
		t.firsts = append(t.firsts, first)
		t.children = append(t.children, child.ptr)
		t.terminal = append(t.terminal, child.terminal)
	}

	b.nodeCounts = append(b.nodeCounts, len(f.children))
	f.ptr = len(b.nodeCounts) - 1
	f.children = nil
}

// finish turns the raw lengths and counts into half-open offset ranges.
func (b *builder) finish() {
	b.t.labels = string(b.labels)
	b.t.labelOffsets = cumulative(b.labelLens)
	b.t.nodeOffsets = cumulative(b.nodeCounts)
}

func cumulative(sizes []int) []int {
	offsets := make([]int, len(sizes)+1)
	for i, n := range sizes {
		offsets[i+1] = offsets[i] + n
	}
	return offsets
}

// commonPrefixSize returns the length in bytes of the longest common prefix
// of a and b, counting whole runes only.
func commonPrefixSize(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) {
		ra, sa := utf8.DecodeRuneInString(a[n:])
		rb, sb := utf8.DecodeRuneInString(b[n:])
		if ra != rb || sa != sb || a[n:n+sa] != b[n:n+sb] {
			break
		}
		n += sa
	}
	return n
}
