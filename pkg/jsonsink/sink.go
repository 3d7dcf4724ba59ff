// Package jsonsink is the JSON sink adapter of spec C10: a stable,
// pretty-printed serialization of the index, counts, and query results.
// Go's encoding/json already sorts map[string]T keys ascending byte-wise
// on Marshal, which is exactly the case-sensitive ascending order spec §6
// requires — so these functions build plain maps from the already-ordered
// index enumeration and let the standard encoder do the rest.
package jsonsink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/query"
)

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("jsonsink: marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("jsonsink: write %s: %w", path, err)
	}
	return nil
}

// WriteIndex emits index.json: an object keyed by word, whose value is an
// object keyed by location, whose value is an array of ascending
// positions.
func WriteIndex(path string, idx index.Searchable) error {
	doc := make(map[string]map[string][]int)
	idx.Enumerate(func(word, location string, positions []int) {
		locs, ok := doc[word]
		if !ok {
			locs = make(map[string][]int)
			doc[word] = locs
		}
		locs[location] = positions
	})
	return writeJSON(path, doc)
}

// WriteCounts emits counts.json: an object keyed by location whose value
// is the integer word-count for that location.
func WriteCounts(path string, idx index.Searchable) error {
	return writeJSON(path, idx.Counts())
}

// ResultView is the on-the-wire shape of one SearchResult: score is
// formatted as an "%.8f" decimal string per spec §6 rather than a raw
// JSON number, to pin its textual precision across platforms.
type ResultView struct {
	Where string `json:"where"`
	Count int    `json:"count"`
	Score string `json:"score"`
}

func toView(r index.SearchResult) ResultView {
	return ResultView{
		Where: r.Where,
		Count: r.Count,
		Score: fmt.Sprintf("%.8f", r.Score),
	}
}

// WriteResults emits results.json: an object keyed by canonical query
// string whose value is the ranked array of ResultView records.
func WriteResults(path string, r *query.Results) error {
	keys, entries := r.Ordered()
	doc := make(map[string][]ResultView, len(keys))
	for _, k := range keys {
		views := make([]ResultView, 0, len(entries[k]))
		for _, res := range entries[k] {
			views = append(views, toView(res))
		}
		doc[k] = views
	}
	return writeJSON(path, doc)
}
