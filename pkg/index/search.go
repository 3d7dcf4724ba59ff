package index

import (
	"sort"
	"strings"
)

// SearchResult is one location's aggregate match for a single query: the
// number of matched-word occurrences found there and the resulting
// count/total score. It is produced and owned entirely by Search — nothing
// else reads the index's internal maps.
type SearchResult struct {
	Where string
	Count int
	Score float64
}

// Search runs the exact or prefix query described by stems (a sorted,
// de-duplicated set) against idx and returns ranked results. Each (word,
// location) pair contributes to a query's totals at most once, even when
// several stems in the query resolve — via prefix — to the same indexed
// word.
func (idx *Index) Search(stems []string, exact bool) []SearchResult {
	hits := make(map[string]*SearchResult)
	var results []SearchResult
	visitedWords := make(map[string]bool)

	visit := func(word string, locs *locsTree) {
		if visitedWords[word] {
			return
		}
		visitedWords[word] = true
		locs.Ascend(func(le locEntry) bool {
			n := le.positions.len()
			if r, ok := hits[le.location]; ok {
				r.Count += n
				r.Score = float64(r.Count) / float64(idx.countFor(le.location))
			} else {
				r := &SearchResult{
					Where: le.location,
					Count: n,
					Score: float64(n) / float64(idx.countFor(le.location)),
				}
				hits[le.location] = r
				results = append(results, *r)
			}
			return true
		})
	}

	for _, q := range stems {
		if q == "" {
			continue
		}
		if exact {
			we, ok := idx.words.Get(wordEntry{word: q})
			if !ok {
				continue
			}
			visit(we.word, we.locs)
		} else {
			idx.prefixWords(q, visit)
		}
	}

	// results was appended as value copies before hits could accumulate
	// further matches for the same location; reconcile from the map so
	// every entry reflects its final count and score.
	for i := range results {
		results[i] = *hits[results[i].Where]
	}

	sort.Slice(results, func(i, j int) bool { return less(results[i], results[j]) })
	return results
}

func (idx *Index) countFor(location string) int {
	ce, ok := idx.counts.Get(countEntry{location: location})
	if !ok {
		return 0
	}
	return ce.count
}

// less implements the strict total ranking order: score descending, then
// count descending, then location ascending case-insensitive with a
// case-sensitive tiebreak.
func less(a, b SearchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	al, bl := strings.ToLower(a.Where), strings.ToLower(b.Where)
	if al != bl {
		return al < bl
	}
	return a.Where < b.Where
}
