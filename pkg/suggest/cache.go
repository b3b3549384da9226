package suggest

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache keeps the most frequent words in a small patricia trie so that
// short prefixes, which match large parts of the dictionary, stay cheap.
// Entries are evicted least recently used first.
type HotCache struct {
	hotWords   map[string]int
	hotTrie    *patricia.Trie
	accessTime map[string]int64
	clock      int64
	hits       int64
	evictions  int64
	maxWords   int
	mu         sync.Mutex
}

// NewHotCache creates a cache holding at most maxWords words.
func NewHotCache(maxWords int) *HotCache {
	maxWords = max(maxWords, 0)
	return &HotCache{
		hotWords:   make(map[string]int, maxWords),
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxWords),
		maxWords:   maxWords,
	}
}

// Search returns the cached words starting with lowerPrefix whose score is at
// least minThreshold. The prefix itself is not returned.
func (hc *HotCache) Search(lowerPrefix string, minThreshold int) []Suggestion {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	var results []Suggestion
	visit := func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lowerPrefix {
			return nil
		}
		score := item.(int)
		if score < minThreshold {
			return nil
		}
		hc.markAccessed(word)
		results = append(results, Suggestion{Word: word, Frequency: score})
		return nil
	}

	var err error
	if lowerPrefix == "" {
		err = hc.hotTrie.Visit(visit)
	} else {
		err = hc.hotTrie.VisitSubtree(patricia.Prefix(lowerPrefix), visit)
	}
	if err != nil {
		log.Errorf("Error searching hot cache: %v", err)
	}
	if len(results) > 0 {
		hc.hits++
	}
	return results
}

// Insert adds or updates a word, evicting the least recently used one when full.
func (hc *HotCache) Insert(word string, score int) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.insert(word, score)
}

func (hc *HotCache) insert(word string, score int) {
	if hc.maxWords == 0 {
		return
	}
	if _, ok := hc.hotWords[word]; !ok && len(hc.hotWords) >= hc.maxWords {
		hc.evictLRU()
	}
	hc.hotWords[word] = score
	hc.hotTrie.Set(patricia.Prefix(word), score)
	hc.markAccessed(word)
}

// Populate replaces the cache contents with the highest scoring words.
// Ties are broken alphabetically.
func (hc *HotCache) Populate(freqs map[string]int) {
	type scored struct {
		word  string
		score int
	}
	all := make([]scored, 0, len(freqs))
	for w, f := range freqs {
		all = append(all, scored{w, f})
	}
	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.word, b.word)
	})
	all = all[:min(len(all), hc.maxWords)]

	hc.mu.Lock()
	defer hc.mu.Unlock()

	clear(hc.hotWords)
	clear(hc.accessTime)
	hc.hotTrie = patricia.NewTrie()
	// Insert least frequent first so they are the first to be evicted.
	for i := len(all) - 1; i >= 0; i-- {
		hc.insert(all[i].word, all[i].score)
	}
	log.Debugf("Populated hot cache with %d words", len(all))
}

// Len returns the number of cached words.
func (hc *HotCache) Len() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.hotWords)
}

func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCacheWords":     len(hc.hotWords),
		"maxHotWords":       hc.maxWords,
		"hotCacheHits":      int(hc.hits),
		"hotCacheEvictions": int(hc.evictions),
	}
}

func (hc *HotCache) markAccessed(word string) {
	hc.clock++
	hc.accessTime[word] = hc.clock
}

func (hc *HotCache) evictLRU() {
	var oldestWord string
	var oldestTime int64 = math.MaxInt64

	for word, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestWord = word
		}
	}

	if oldestWord != "" {
		delete(hc.hotWords, oldestWord)
		delete(hc.accessTime, oldestWord)
		hc.hotTrie.Delete(patricia.Prefix(oldestWord))
		hc.evictions++
		log.Debugf("Evicted word '%s' from hot cache", oldestWord)
	}
}
