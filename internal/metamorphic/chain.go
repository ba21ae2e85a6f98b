package metamorphic

import (
	"pgregory.net/rand"

	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
)

// RandomChain walks from start for a number of steps drawn uniformly from
// [minSteps, maxSteps], moving each time to a neighbor chosen uniformly in
// sorted order. The walk stops early at a word without neighbors.
//
// The returned chain starts with start.
func RandomChain(start string, rules []ir.Rule, minSteps, maxSteps int, rnd *rand.Rand) []string {
	steps := gen.IntBetween(rnd, minSteps, maxSteps)
	chain := []string{start}

	w := start
	for i := 0; i < steps; i++ {
		next := Neighbors(w, rules).Sorted()
		if len(next) == 0 {
			break
		}
		w = next[rnd.Intn(len(next))]
		chain = append(chain, w)
	}
	return chain
}

// ChainCheck is the result of checking a chain against its first word.
type ChainCheck struct {
	// Consistent is false iff some word violated an invariant.
	Consistent bool `json:"consistent"`

	// Inconclusive is set when some check could not be decided because a
	// normal form was not reached.
	Inconclusive bool `json:"inconclusive"`

	Base      invariant.Snapshot  `json:"base"`
	Violating *invariant.Snapshot `json:"violating,omitempty"`
	Word      *string             `json:"word,omitempty"`
	Check     invariant.Check     `json:"check"`
}

// CheckChain compares the invariants of every word of chain with those of
// its first word, stopping at the first violation.
//
// An empty chain has nothing to compare and is consistent, with a zero Base.
func CheckChain(set *invariant.Set, chain []string) ChainCheck {
	result := ChainCheck{
		Consistent: true,
		Check:      invariant.Check{Verdict: invariant.VerdictConsistent},
	}
	if len(chain) == 0 {
		return result
	}
	result.Base = set.Snapshot(chain[0])

	for _, w := range chain[1:] {
		cur := set.Snapshot(w)
		check := invariant.Consistent(result.Base, cur)
		switch check.Verdict {
		case invariant.VerdictViolated:
			result.Consistent = false
			result.Violating = &cur
			result.Word = &w
			result.Check = check
			return result
		case invariant.VerdictInconclusive:
			if !result.Inconclusive {
				result.Inconclusive = true
				result.Check = check
			}
		}
	}
	return result
}
