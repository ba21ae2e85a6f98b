package metamorphic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rand"

	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/testutil"
)

func TestNeighbors(t *testing.T) {
	got := Neighbors("aaab", testutil.MinimalRules().Rules)
	assert.Equal(t, []string{
		"aaaaaaab", // a -> aaaaa at any of the three a's
		"aaaab",    // ab -> aab
		"aaaba",    // ab -> aba
		"aab",      // aab -> ab
		"aabab",    // ab -> bab
		"aabb",     // ab -> bb
	}, got.Sorted())
}

func TestNeighbors_BothDirectionsEveryOccurrence(t *testing.T) {
	got := Neighbors("abab", []ir.Rule{{LHS: "ab", RHS: "ba"}})
	assert.Equal(t, []string{"aabb", "abba", "baab"}, got.Sorted())
	assert.False(t, got.Contains("abab"))
}

func TestNeighbors_ExcludesWord(t *testing.T) {
	assert.Empty(t, Neighbors("aaa", []ir.Rule{{LHS: "a", RHS: "a"}}))
}

func TestNeighbors_EmptyRHS(t *testing.T) {
	rules := []ir.Rule{{LHS: "b", RHS: ""}}

	// Deleting b one way, inserting it at every boundary the other way.
	assert.Equal(t, []string{"a", "abb", "bab"}, Neighbors("ab", rules).Sorted())
	assert.Equal(t, []string{"b"}, Neighbors("", rules).Sorted())

	erase := []ir.Rule{{LHS: "ab", RHS: ""}}
	assert.Equal(t, []string{"", "aabb", "abab"}, Neighbors("ab", erase).Sorted())
	assert.Equal(t, []string{"ab"}, Neighbors("", erase).Sorted())
}

func TestNeighbors_EmptyRHSInsertsOnSymbolBoundaries(t *testing.T) {
	// Two-byte symbols: insertions land between runes, never inside one.
	got := Neighbors("\u03b1\u03b2", []ir.Rule{{LHS: "\u03b3", RHS: ""}})
	assert.ElementsMatch(t, []string{
		"\u03b3\u03b1\u03b2",
		"\u03b1\u03b3\u03b2",
		"\u03b1\u03b2\u03b3",
	}, got.Sorted())
}

func TestNeighbors_EmptyLHSSkipped(t *testing.T) {
	assert.Empty(t, Neighbors("ab", []ir.Rule{{LHS: "", RHS: "b"}}))
}

func TestNeighbors_DeadEnd(t *testing.T) {
	assert.Empty(t, Neighbors("aa", []ir.Rule{{LHS: "bb", RHS: "b"}}))
}

func TestNeighbors_Symmetric(t *testing.T) {
	tests := []struct {
		name  string
		rules []ir.Rule
	}{
		{"minimal", testutil.MinimalRules().Rules},
		{"original", testutil.OriginalRules().Rules},
		{"erasing", []ir.Rule{{LHS: "ab", RHS: ""}, {LHS: "ba", RHS: "b"}}},
		{"dropped_lab_rule", []ir.Rule{{LHS: "baaabb", RHS: ""}, {LHS: "bb", RHS: "ab"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := gen.WordSpec{Alphabet: "ab", MinLen: 0, MaxLen: 8}
			rnd := rand.New(99)

			for i := 0; i < 100; i++ {
				w := words.RandomWord(rnd)
				for _, v := range Neighbors(w, tt.rules).Sorted() {
					assert.True(t, Neighbors(v, tt.rules).Contains(w), "%q is a neighbor of %q but not the reverse", v, w)
				}
			}
		})
	}
}
