package trie

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants verifies the layout of the flattened arrays.
func checkInvariants(t *testing.T, tr *Trie) {
	t.Helper()

	edges := len(tr.firsts)
	require.Len(t, tr.labelOffsets, edges+1)
	require.Len(t, tr.children, edges)
	require.Len(t, tr.terminal, edges)
	assert.Equal(t, len(tr.labels), tr.labelOffsets[edges])
	assert.Equal(t, len(tr.nodeOffsets)-2, tr.root, "root must be the last node")
	assert.Equal(t, edges, tr.nodeOffsets[len(tr.nodeOffsets)-1])

	for i := 1; i < len(tr.labelOffsets); i++ {
		assert.LessOrEqual(t, tr.labelOffsets[i-1], tr.labelOffsets[i])
	}
	for i := 1; i < len(tr.nodeOffsets); i++ {
		assert.LessOrEqual(t, tr.nodeOffsets[i-1], tr.nodeOffsets[i])
	}

	lo, hi := tr.edges(0)
	assert.Equal(t, lo, hi, "node 0 is the leaf sentinel")

	for node := 1; node < len(tr.nodeOffsets)-1; node++ {
		lo, hi := tr.edges(node)
		for e := lo; e < hi; e++ {
			label := tr.label(e)
			require.NotEmpty(t, label)
			first, _ := utf8.DecodeRuneInString(label)
			assert.Equal(t, first, tr.firsts[e])
			if e > lo {
				assert.Less(t, tr.firsts[e-1], tr.firsts[e], "children of node %d out of order", node)
			}
			// children are flushed before their parent
			assert.Less(t, tr.children[e], node)
			if tr.children[e] == 0 {
				assert.True(t, tr.terminal[e], "leaf edge %q must end a word", label)
			}
		}
	}
}

func TestCommonPrefixSize(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"auto", "", 0},
		{"auto", "autobus", 4},
		{"brno", "brnena", 3},
		{"abc", "xbc", 0},
		// shares the first byte of a two-byte rune only
		{"é", "è", 0},
		{"čaj", "čas", 3},
		{"日本語", "日本人", 6},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"|"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.expected, commonPrefixSize(tc.a, tc.b))
			assert.Equal(t, tc.expected, commonPrefixSize(tc.b, tc.a))
		})
	}
}

func TestBuildLayout(t *testing.T) {
	tr := New([]string{"brno", "brnena", "burani"})
	checkInvariants(t, tr)

	// root -b-> (rn -> (ena, o), urani)
	assert.Equal(t, Stats{Words: 3, Nodes: 3, Edges: 5, LabelBytes: 12}, tr.Stats())

	lo, hi := tr.edges(tr.root)
	require.Equal(t, 1, hi-lo)
	assert.Equal(t, "b", tr.label(lo))
	assert.False(t, tr.terminal[lo])

	var labels []string
	lo, hi = tr.edges(tr.children[lo])
	for e := lo; e < hi; e++ {
		labels = append(labels, tr.label(e))
	}
	assert.Equal(t, []string{"rn", "urani"}, labels)
}

func TestBuildWordThatPrefixesAnother(t *testing.T) {
	tr := New([]string{"autobus", "auto", "autori"})
	checkInvariants(t, tr)

	lo, hi := tr.edges(tr.root)
	require.Equal(t, 1, hi-lo)
	assert.Equal(t, "auto", tr.label(lo))
	assert.True(t, tr.terminal[lo])
	assert.NotZero(t, tr.children[lo])
}

func TestBuildEmpty(t *testing.T) {
	tr := New(nil)
	checkInvariants(t, tr)
	assert.Equal(t, Stats{Nodes: 1}, tr.Stats(), "only the root")
	assert.False(t, tr.Search("a", true))
	assert.True(t, tr.Search("", true))
	assert.False(t, tr.Search("", false))
	assert.Empty(t, tr.SearchFuzzy("a", 2, false))
}

func TestBuildEmptyWord(t *testing.T) {
	tr := New([]string{"", "a"})
	checkInvariants(t, tr)
	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.Search("", false))
	assert.True(t, tr.Search("a", false))
}

func TestPrepare(t *testing.T) {
	in := []string{"brno", "auto", "brno", "", "autobus", "auto"}
	out := Prepare(in)
	assert.Equal(t, []string{"", "auto", "autobus", "brno"}, out)
	assert.Equal(t, "brno", in[0], "input must not be modified")
}

func TestFromSortedRejectsBadOrder(t *testing.T) {
	testCases := []struct {
		name  string
		words []string
	}{
		{"unsorted", []string{"b", "a"}},
		{"duplicate", []string{"a", "a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromSorted(tc.words)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsorted))
		})
	}
}

func TestBuildSkipsInvalidUTF8(t *testing.T) {
	testCases := []struct {
		name  string
		words []string
		want  []string
	}{
		{"lone bytes", []string{"\xff", "\xfe"}, nil},
		{"before multibyte", []string{"\x80", "一"}, []string{"一"}},
		{"after shared prefix", []string{"a\xff", "a\xfe", "ab"}, []string{"ab"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(tc.words)
			checkInvariants(t, tr)
			assert.Equal(t, len(tc.want), tr.Len())
			for _, w := range tc.want {
				assert.True(t, tr.Contains(w), w)
			}
			for _, w := range tc.words {
				if !utf8.ValidString(w) {
					assert.False(t, tr.Contains(w), "%q", w)
				}
			}
		})
	}

	assert.Equal(t, []string{"a", "é"}, Prepare([]string{"é", "\xc3", "a", "a\xff"}))
}

func TestFromSortedRejectsInvalidUTF8(t *testing.T) {
	_, err := FromSorted([]string{"a", "a\xfe", "a\xff"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
	assert.Contains(t, err.Error(), "index 1")
}

func TestBuildRandomVocabularies(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		words := randomWords(rng, 1+rng.Intn(300))
		tr := New(words)
		checkInvariants(t, tr)
		assert.Equal(t, len(Prepare(words)), tr.Len())
	}
}

var alphabet = []string{"a", "b", "c", "á", "č", "ř"}

func randomWord(rng *rand.Rand, maxLen int) string {
	var sb strings.Builder
	n := rng.Intn(maxLen + 1)
	for i := 0; i < n; i++ {
		sb.WriteString(alphabet[rng.Intn(len(alphabet))])
	}
	return sb.String()
}

func randomWords(rng *rand.Rand, n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = randomWord(rng, 7)
	}
	return words
}
