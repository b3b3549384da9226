package trie

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	tr := New([]string{"brno", "brnena", "burani", "auto", "autobus", "čaj", "čas"})

	testCases := []struct {
		query    string
		prefix   bool
		expected bool
	}{
		{"brno", false, true},
		{"br", true, true},
		{"br", false, false},
		{"brn", true, true},
		{"brnen", false, false},
		{"brnena", false, true},
		{"brnenas", true, false},
		{"burani", true, true},
		{"bu", false, false},
		{"auto", false, true},
		{"autob", true, true},
		{"autobus", false, true},
		{"autobusy", false, false},
		{"autx", true, false},
		{"brxo", false, false},
		{"x", true, false},
		{"č", true, true},
		{"ča", false, false},
		{"čas", false, true},
		{"", true, true},
		{"", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, tr.Search(tc.query, tc.prefix), "prefix=%v", tc.prefix)
		})
	}
}

func TestSearchMatchesWholeScalars(t *testing.T) {
	tr := New([]string{"é", "čaj"})
	assert.True(t, tr.Search("é", true))
	assert.False(t, tr.Search("\xc3", true), "first byte of é")
	assert.False(t, tr.Search("\xc4", true), "first byte of č")
	assert.True(t, tr.Search("č", true))
}

func TestContainsAndHasPrefix(t *testing.T) {
	tr := New([]string{"auto", "autobus", "atom"})
	assert.True(t, tr.Contains("atom"))
	assert.False(t, tr.Contains("ato"))
	assert.True(t, tr.HasPrefix("ato"))
	assert.False(t, tr.HasPrefix("autobusy"))
}

// Every stored word is found and every other string is not.
func TestSearchMatchesWordSet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		words := randomWords(rng, 1+rng.Intn(200))
		tr := New(words)

		stored := make(map[string]bool, len(words))
		for _, w := range words {
			stored[w] = true
			assert.True(t, tr.Search(w, false), "stored word %q", w)
			assert.True(t, tr.Search(w, true), "stored word %q as prefix", w)
		}

		for i := 0; i < 300; i++ {
			q := randomWord(rng, 8)
			assert.Equal(t, stored[q], tr.Search(q, false), "query %q", q)
			assert.Equal(t, hasPrefix(words, q), tr.Search(q, true), "prefix query %q", q)
		}
	}
}

// A failed prefix never succeeds once extended.
func TestSearchPrefixMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tr := New(randomWords(rng, 150))

	for i := 0; i < 500; i++ {
		q := randomWord(rng, 5)
		if tr.Search(q, true) {
			continue
		}
		for _, c := range alphabet {
			assert.False(t, tr.Search(q+c, true), "%q failed but %q matched", q, q+c)
		}
	}
}

func hasPrefix(words []string, prefix string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

func BenchmarkSearch(b *testing.B) {
	words := make([]string, 0, 10000)
	rng := rand.New(rand.NewSource(1))
	for len(words) < cap(words) {
		words = append(words, randomWord(rng, 10))
	}
	tr := New(words)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Search(words[i%len(words)], false)
	}
}
