package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testPrefixes = []string{
	"a", "au", "aut", "auto",
	"b", "br", "brn",
	"č", "ča", "čaj",
	"r", "ra", "rar",
}

func TestCompleterConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 200},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	c := newTestCompleter(8)
	want := make(map[string][]Suggestion, len(testPrefixes))
	for _, p := range testPrefixes {
		want[p] = c.Complete(p, 3)
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d", cfg.workers), func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan string, cfg.workers)
			for w := range cfg.workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range cfg.iterationsPerWorker {
						p := testPrefixes[(w+i)%len(testPrefixes)]
						got := c.Complete(p, 3)
						if !assert.ObjectsAreEqual(want[p], got) {
							errs <- fmt.Sprintf("prefix %q: got %v, want %v", p, got, want[p])
							return
						}
						c.CompleteFuzzy(p, 1, 3)
					}
				}()
			}
			wg.Wait()
			close(errs)
			for msg := range errs {
				t.Error(msg)
			}
		})
	}
}

func TestCompleteMemoryStable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping memory test in short mode")
	}
	c := newTestCompleter(8)

	run := func(n int) {
		for i := range n {
			c.Complete(testPrefixes[i%len(testPrefixes)], 5)
		}
	}
	run(1000)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	run(5000)
	runtime.GC()
	runtime.ReadMemStats(&after)

	// Completions allocate only per call; the live heap must not keep growing.
	growth := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	assert.Less(t, growth, int64(1<<20), "heap grew by %d bytes", growth)
}
