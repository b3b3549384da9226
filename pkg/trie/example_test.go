package trie_test

import (
	"fmt"

	"github.com/bastiangx/wordtrie/pkg/trie"
)

func Example() {
	t := trie.New([]string{"brno", "brnena", "burani"})

	fmt.Println(t.Search("brno", false))
	fmt.Println(t.Search("br", true))
	fmt.Println(t.Search("br", false))

	// Output:
	// true
	// true
	// false
}

func ExampleTrie_SearchFuzzy() {
	t := trie.New([]string{"auto", "autobus", "atom"})

	fmt.Println(t.SearchFuzzy("auto", 1, false))
	fmt.Println(t.SearchFuzzy("auto", 1, true))

	// Output:
	// [{auto 0}]
	// [{atom 1} {auto 0} {autobus 0}]
}

func ExampleFromSorted() {
	_, err := trie.FromSorted([]string{"brno", "auto"})
	fmt.Println(err)

	// Output:
	// words are not sorted and unique: "auto" at index 1 follows "brno"
}
