package index

import "github.com/kentaro-sato/wakachi/pkg/rwmutex"

// Searchable is the capability set IndexBuilder, WebCrawler, and QueryEngine
// depend on, satisfied by both *Index and *Locked. Callers generic over
// "plain or locked" code against this interface instead of a concrete type.
type Searchable interface {
	Add(word, location string, position int)
	Merge(other *Index)
	Contains(word string) bool
	ContainsAt(word, location string) bool
	ContainsPosition(word, location string, position int) bool
	Words() []string
	Locations(word string) []string
	Positions(word, location string) []int
	Counts() map[string]int
	OrderedCounts() []CountEntry
	Enumerate(fn func(word, location string, positions []int))
	Search(stems []string, exact bool) []SearchResult
}

var (
	_ Searchable = (*Index)(nil)
	_ Searchable = (*Locked)(nil)
)

// Locked is the LockedIndex of spec C5: a transparent concurrent façade
// over a plain Index. Every read runs inside a read-lock section, every
// mutation inside a write-lock section; Merge is a single write-critical
// section covering the whole traversal so callers never see torn state.
type Locked struct {
	mu  *rwmutex.RWMutex
	idx *Index
}

// NewLocked wraps a fresh empty Index for concurrent use.
func NewLocked() *Locked {
	return &Locked{mu: rwmutex.New(), idx: New()}
}

func (l *Locked) Add(word, location string, position int) {
	tok := l.mu.WriteLock()
	defer l.mu.WriteUnlock(tok)
	l.idx.Add(word, location, position)
}

func (l *Locked) Merge(other *Index) {
	tok := l.mu.WriteLock()
	defer l.mu.WriteUnlock(tok)
	l.idx.Merge(other)
}

func (l *Locked) Contains(word string) bool {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Contains(word)
}

func (l *Locked) ContainsAt(word, location string) bool {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.ContainsAt(word, location)
}

func (l *Locked) ContainsPosition(word, location string, position int) bool {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.ContainsPosition(word, location, position)
}

// Words returns a snapshot copy taken under the read lock.
func (l *Locked) Words() []string {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Words()
}

func (l *Locked) Locations(word string) []string {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Locations(word)
}

func (l *Locked) Positions(word, location string) []int {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Positions(word, location)
}

func (l *Locked) Counts() map[string]int {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Counts()
}

func (l *Locked) OrderedCounts() []CountEntry {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.OrderedCounts()
}

// Enumerate runs fn over every entry under a single read lock rather than
// re-locking per entry, so fn sees one consistent state. The positions
// slices passed to fn are the index's own, not copies.
func (l *Locked) Enumerate(fn func(word, location string, positions []int)) {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	l.idx.Enumerate(fn)
}

func (l *Locked) Search(stems []string, exact bool) []SearchResult {
	l.mu.ReadLock()
	defer l.mu.ReadUnlock()
	return l.idx.Search(stems, exact)
}
