package equiv

import (
	"github.com/roach88/semithue/internal/engine"
	"github.com/roach88/semithue/internal/ir"
)

// Verdict classifies one trial.
type Verdict string

const (
	VerdictAgree          Verdict = "agree"
	VerdictMismatch       Verdict = "mismatch"
	VerdictNonTerminating Verdict = "non_terminating"
)

// Comparison holds both reductions of one word.
type Comparison struct {
	Word    string     `json:"word"`
	Verdict Verdict    `json:"verdict"`
	A       ir.Outcome `json:"a"`
	B       ir.Outcome `json:"b"`
}

// NonTerminating reports whether either side failed to converge.
func (c Comparison) NonTerminating() bool {
	return !c.A.Converged || !c.B.Converged
}

// Compare reduces word under both rule sets.
// equal is true iff both reductions converged to identical words.
func Compare(word string, a, b []ir.Rule, stepCap int) (bool, Comparison) {
	c := Comparison{
		Word: word,
		A:    engine.Reduce(word, a, stepCap),
		B:    engine.Reduce(word, b, stepCap),
	}

	switch {
	case c.NonTerminating():
		c.Verdict = VerdictNonTerminating
	case c.A.Final != c.B.Final:
		c.Verdict = VerdictMismatch
	default:
		c.Verdict = VerdictAgree
	}
	return c.Verdict == VerdictAgree, c
}
