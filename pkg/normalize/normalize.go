// Package normalize turns raw text into the stems the rest of the system
// indexes and searches on: split on non-letter boundaries, lowercase, drop
// empties, stem with the English Snowball algorithm.
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokens splits text into cleaned lowercase tokens on any boundary that is
// not a letter, discarding empty runs. It does not stem.
func Tokens(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			cur.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// Stem reduces a single cleaned lowercase word to its English Snowball stem.
func Stem(word string) string {
	return english.Stem(word, false)
}

// Stems normalizes text into its full stem sequence, in source order,
// duplicates and all — the order ingestion needs to assign positions.
func Stems(text string) []string {
	tokens := Tokens(text)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = Stem(tok)
	}
	return stems
}

// UniqueStems reduces text to the sorted, de-duplicated set of stems used as
// a query's canonical phrase set.
func UniqueStems(text string) []string {
	seen := make(map[string]struct{})
	for _, s := range Stems(text) {
		if s == "" {
			continue
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Canonical returns the space-joined canonical form of a sorted stem set.
func Canonical(stems []string) string {
	return strings.Join(stems, " ")
}
