// Package index implements the inverted index: a word -> location ->
// ordered position set map, a location -> max-position count table, and the
// exact/prefix search and ranking algorithm that reads them.
//
// Enumeration order is part of the contract: every map here is kept ordered
// by key so JSON emission and prefix search never need a sort pass or a
// linear filter. Ordering is provided by github.com/google/btree.
package index

import (
	"fmt"

	"github.com/google/btree"
)

const treeDegree = 32

// locsTree is the per-word location -> positions btree, named for
// readability at call sites outside this file.
type locsTree = btree.BTreeG[locEntry]

// wordEntry is one node of the outer word -> locations btree.
type wordEntry struct {
	word string
	locs *btree.BTreeG[locEntry]
}

func lessWordEntry(a, b wordEntry) bool { return a.word < b.word }

// locEntry is one node of a per-word location -> positions btree.
type locEntry struct {
	location  string
	positions *positionSet
}

func lessLocEntry(a, b locEntry) bool { return a.location < b.location }

// countEntry is one node of the location -> max-position count btree.
type countEntry struct {
	location string
	count    int
}

func lessCountEntry(a, b countEntry) bool { return a.location < b.location }

// Index is the plain (unlocked) InvertedIndex of spec C4. It is not safe
// for concurrent use by itself; Locked (locked.go) wraps it for that.
type Index struct {
	words  *btree.BTreeG[wordEntry]
	counts *btree.BTreeG[countEntry]
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		words:  btree.NewG(treeDegree, lessWordEntry),
		counts: btree.NewG(treeDegree, lessCountEntry),
	}
}

// Add inserts the occurrence of word at location, position into the index.
// It is idempotent: adding the same (word, location, position) triple twice
// has no further effect. CountMap is updated atomically with IndexMap in the
// same call, preserving the invariant counts[location] >= max(positions).
func (idx *Index) Add(word, location string, position int) {
	we, ok := idx.words.Get(wordEntry{word: word})
	if !ok {
		we = wordEntry{word: word, locs: btree.NewG(treeDegree, lessLocEntry)}
		idx.words.ReplaceOrInsert(we)
	}

	le, ok := we.locs.Get(locEntry{location: location})
	if !ok {
		le = locEntry{location: location, positions: &positionSet{}}
		we.locs.ReplaceOrInsert(le)
	}
	le.positions.add(position)

	idx.bumpCount(location, position)

	ce, _ := idx.counts.Get(countEntry{location: location})
	if want := le.positions.max(); ce.count < want {
		panic(fmt.Sprintf("index: invariant violated: counts[%q]=%d < max position %d", location, ce.count, want))
	}
}

func (idx *Index) bumpCount(location string, position int) {
	ce, ok := idx.counts.Get(countEntry{location: location})
	if !ok || position > ce.count {
		idx.counts.ReplaceOrInsert(countEntry{location: location, count: max(position, ce.count)})
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Merge bulk-unions other into idx. For each word absent from idx, other's
// whole inner map is copied in (position sets are cloned, never shared);
// for each word present in both, positions are merged location by location. CountMap entries take the max of both sides.
// This is the only operation that needs to see both indices at once, so
// LockedIndex treats it as a single write-critical section.
func (idx *Index) Merge(other *Index) {
	other.words.Ascend(func(owe wordEntry) bool {
		we, ok := idx.words.Get(wordEntry{word: owe.word})
		if !ok {
			we = wordEntry{word: owe.word, locs: btree.NewG(treeDegree, lessLocEntry)}
			idx.words.ReplaceOrInsert(we)
		}
		owe.locs.Ascend(func(ole locEntry) bool {
			le, ok := we.locs.Get(locEntry{location: ole.location})
			if !ok {
				le = locEntry{location: ole.location, positions: ole.positions.clone()}
				we.locs.ReplaceOrInsert(le)
			} else {
				le.positions.mergeFrom(ole.positions)
			}
			return true
		})
		return true
	})

	other.counts.Ascend(func(oce countEntry) bool {
		ce, ok := idx.counts.Get(countEntry{location: oce.location})
		if !ok || oce.count > ce.count {
			idx.counts.ReplaceOrInsert(countEntry{location: oce.location, count: max(oce.count, ce.count)})
		}
		return true
	})
}

// Contains reports whether word is indexed at all.
func (idx *Index) Contains(word string) bool {
	_, ok := idx.words.Get(wordEntry{word: word})
	return ok
}

// ContainsAt reports whether word occurs at location.
func (idx *Index) ContainsAt(word, location string) bool {
	we, ok := idx.words.Get(wordEntry{word: word})
	if !ok {
		return false
	}
	_, ok = we.locs.Get(locEntry{location: location})
	return ok
}

// ContainsPosition reports whether word occurs at location at position.
func (idx *Index) ContainsPosition(word, location string, position int) bool {
	we, ok := idx.words.Get(wordEntry{word: word})
	if !ok {
		return false
	}
	le, ok := we.locs.Get(locEntry{location: location})
	if !ok {
		return false
	}
	return le.positions.contains(position)
}

// Words returns every indexed word in ascending lexicographic order.
func (idx *Index) Words() []string {
	out := make([]string, 0, idx.words.Len())
	idx.words.Ascend(func(we wordEntry) bool {
		out = append(out, we.word)
		return true
	})
	return out
}

// Locations returns the locations where word occurs, in ascending order.
func (idx *Index) Locations(word string) []string {
	we, ok := idx.words.Get(wordEntry{word: word})
	if !ok {
		return nil
	}
	out := make([]string, 0, we.locs.Len())
	we.locs.Ascend(func(le locEntry) bool {
		out = append(out, le.location)
		return true
	})
	return out
}

// Positions returns the ascending positions of word at location.
func (idx *Index) Positions(word, location string) []int {
	we, ok := idx.words.Get(wordEntry{word: word})
	if !ok {
		return nil
	}
	le, ok := we.locs.Get(locEntry{location: location})
	if !ok {
		return nil
	}
	return le.positions.slice()
}

// Counts returns the location -> word-count table as a map, which carries
// no order; OrderedCounts returns the same data in ascending location order.
func (idx *Index) Counts() map[string]int {
	out := make(map[string]int, idx.counts.Len())
	idx.counts.Ascend(func(ce countEntry) bool {
		out[ce.location] = ce.count
		return true
	})
	return out
}

// OrderedCounts returns the same data as Counts but as an ordered slice,
// for callers that need deterministic emission order without relying on
// map iteration.
func (idx *Index) OrderedCounts() []CountEntry {
	out := make([]CountEntry, 0, idx.counts.Len())
	idx.counts.Ascend(func(ce countEntry) bool {
		out = append(out, CountEntry{Location: ce.location, Count: ce.count})
		return true
	})
	return out
}

// CountEntry is one (location, count) pair in ascending location order.
type CountEntry struct {
	Location string
	Count    int
}

// Enumerate walks every (word, location, positions) triple in canonical
// (word ascending, then location ascending) order, calling fn for each. It
// is the primitive the JSON sink uses to emit index.json without building
// an intermediate ordered structure of its own.
func (idx *Index) Enumerate(fn func(word, location string, positions []int)) {
	idx.words.Ascend(func(we wordEntry) bool {
		we.locs.Ascend(func(le locEntry) bool {
			fn(we.word, le.location, le.positions.slice())
			return true
		})
		return true
	})
}

// prefixWords enumerates the words of idx whose key is >= q and which have
// q as a prefix, stopping at the first key that doesn't — a single-pass
// range scan rather than a linear filter over every word.
func (idx *Index) prefixWords(q string, fn func(word string, locs *locsTree)) {
	idx.words.AscendGreaterOrEqual(wordEntry{word: q}, func(we wordEntry) bool {
		if !hasPrefix(we.word, q) {
			return false
		}
		fn(we.word, we.locs)
		return true
	})
}

func hasPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return s[:len(prefix)] == prefix
}
