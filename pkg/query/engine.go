// Package query implements the QueryEngine of spec C8: reading a query
// file line by line, canonicalizing and de-duplicating lines, and driving
// search against an index.Searchable.
package query

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/normalize"
	"github.com/kentaro-sato/wakachi/pkg/workqueue"
)

// WrongKindError reports that a query target is not a regular file (the
// spec's WrongInputKind error kind for this phase).
type WrongKindError struct {
	Path string
}

func (e *WrongKindError) Error() string {
	return fmt.Sprintf("query: %s is not a regular file", e.Path)
}

// Results maps a canonical query string to its ranked search results, in
// canonical-string ascending order for deterministic emission.
type Results struct {
	mu      sync.Mutex
	order   []string
	entries map[string][]index.SearchResult
}

func newResults() *Results {
	return &Results{entries: make(map[string][]index.SearchResult)}
}

// reserve registers canonical with an empty slot if it is not already
// present, reporting whether the caller won the reservation. Only the
// reserving caller may go on to run search and fill it — this is the
// reserve-then-fill pattern that keeps two lines sharing a canonical form
// from both invoking search.
func (r *Results) reserve(canonical string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[canonical]; ok {
		return false
	}
	r.entries[canonical] = nil
	r.order = append(r.order, canonical)
	return true
}

func (r *Results) fill(canonical string, results []index.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[canonical] = results
}

// Ordered returns the canonical queries and their results sorted by
// canonical string ascending.
func (r *Results) Ordered() ([]string, map[string][]index.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := append([]string(nil), r.order...)
	sort.Strings(keys)
	out := make(map[string][]index.SearchResult, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return keys, out
}

func readLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("query: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &WrongKindError{Path: path}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("query: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("query: read %s: %w", path, err)
	}
	return lines, nil
}

// processLine normalizes line, and if it has a non-empty canonical form
// not already present in r, reserves it, searches idx, and fills the slot.
// Returns the canonical form, or "" if the line was empty or a duplicate.
func processLine(line string, idx index.Searchable, exact bool, r *Results) string {
	stems := normalize.UniqueStems(line)
	if len(stems) == 0 {
		return ""
	}
	canonical := normalize.Canonical(stems)
	if !r.reserve(canonical) {
		return ""
	}
	r.fill(canonical, idx.Search(stems, exact))
	return canonical
}

// ParseQueriesSequential reads path line by line and answers each unique
// canonical query against idx, one line at a time.
func ParseQueriesSequential(path string, idx index.Searchable, exact bool) (*Results, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	r := newResults()
	for _, line := range lines {
		processLine(line, idx, exact, r)
	}
	return r, nil
}

// ParseQueriesParallel submits one task per line to a WorkQueue of the
// given worker count, guarding the shared Results map with its own
// monitor so reserve-then-fill still holds under concurrency.
func ParseQueriesParallel(path string, idx index.Searchable, exact bool, workers int) (*Results, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	r := newResults()
	q := workqueue.New(workers)
	for _, line := range lines {
		line := line
		q.Submit(func() {
			processLine(line, idx, exact, r)
		})
	}
	q.Finish()
	q.Shutdown()
	return r, nil
}
