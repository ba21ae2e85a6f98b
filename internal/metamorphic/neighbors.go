package metamorphic

import (
	"maps"
	"slices"

	"github.com/roach88/semithue/internal/engine"
	"github.com/roach88/semithue/internal/ir"
)

// WordSet is a set of words.
type WordSet map[string]struct{}

// Add inserts word.
func (s WordSet) Add(word string) {
	s[word] = struct{}{}
}

// Contains reports whether word is in the set.
func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Sorted returns the words in increasing order.
func (s WordSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Neighbors returns every word one rewrite away from word, applying each
// rule in both directions at every occurrence. word itself is excluded.
//
// Rules with an empty LHS are skipped, as the matcher skips them. An empty
// RHS occurs at every symbol boundary, so the reverse direction inserts the
// LHS anywhere in the word.
func Neighbors(word string, rules []ir.Rule) WordSet {
	out := WordSet{}
	for _, r := range rules {
		if r.LHS == "" {
			continue
		}
		replaceAll(out, word, r.LHS, r.RHS)
		replaceAll(out, word, r.RHS, r.LHS)
	}
	delete(out, word)
	return out
}

// replaceAll adds to out the result of replacing each occurrence of
// pattern in word, one at a time.
func replaceAll(out WordSet, word, pattern, replacement string) {
	for _, pos := range occurrences(word, pattern) {
		m := ir.Match{Pos: pos, Rule: ir.Rule{LHS: pattern, RHS: replacement}}
		out.Add(m.Apply(word))
	}
}

// occurrences is engine.Occurrences, except that the empty pattern occurs
// at every symbol boundary of word, including both ends.
func occurrences(word, pattern string) []int {
	if pattern != "" {
		return engine.Occurrences(word, pattern)
	}
	positions := make([]int, 0, len(word)+1)
	for i := range word {
		positions = append(positions, i)
	}
	return append(positions, len(word))
}
