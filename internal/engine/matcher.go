package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/roach88/semithue/internal/ir"
)

// FindMatch returns the governing match of word under rules.
//
// Every occurrence of every non-empty LHS is considered. The match is chosen by:
// 1. Smallest position
// 2. Longest LHS (in symbols) among matches at that position
// 3. First rule in declared order among equally long LHSs
//
// Rules with an empty LHS are skipped. Returns false if no rule applies
// (the word is a normal form).
func FindMatch(word string, rules []ir.Rule) (ir.Match, bool) {
	var best ir.Match
	bestLen := 0
	found := false

	for i, rule := range rules {
		if rule.LHS == "" {
			continue
		}
		lhsLen := utf8.RuneCountInString(rule.LHS)
		for _, pos := range Occurrences(word, rule.LHS) {
			if !found || pos < best.Pos || (pos == best.Pos && lhsLen > bestLen) {
				best = ir.Match{Pos: pos, Index: i, Rule: rule}
				bestLen = lhsLen
				found = true
			}
		}
	}

	return best, found
}

// Occurrences returns the byte offsets of every occurrence of pattern in
// word, including overlapping ones, in increasing order.
//
// An empty pattern has no occurrences.
func Occurrences(word, pattern string) []int {
	if pattern == "" {
		return nil
	}

	var positions []int
	start := 0
	for start <= len(word)-len(pattern) {
		i := strings.Index(word[start:], pattern)
		if i < 0 {
			break
		}
		pos := start + i
		positions = append(positions, pos)
		// Resume one byte later so overlapping occurrences are found.
		start = pos + 1
	}
	return positions
}
