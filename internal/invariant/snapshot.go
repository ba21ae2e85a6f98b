package invariant

import (
	"fmt"
	"strconv"

	"github.com/roach88/semithue/internal/ir"
)

// Snapshot holds the invariants of one word. Nil pointers mark invariants
// that are undefined for the word.
type Snapshot struct {
	Word                string  `json:"word"`
	HasDesignated       bool    `json:"has_designated"`
	Residue             *int    `json:"residue"`
	ForcedTail          *string `json:"forced_tail"`
	NormalForm          string  `json:"normal_form"`
	NormalFormConverged bool    `json:"normal_form_converged"`
}

// String renders the snapshot on one line.
func (s Snapshot) String() string {
	residue := "-"
	if s.Residue != nil {
		residue = strconv.Itoa(*s.Residue)
	}
	tail := "-"
	if s.ForcedTail != nil {
		tail = ir.Show(*s.ForcedTail)
	}
	nf := ir.Show(s.NormalForm)
	if !s.NormalFormConverged {
		nf += "?"
	}
	return fmt.Sprintf("(designated=%t, residue=%s, tail=%s, nf=%s)", s.HasDesignated, residue, tail, nf)
}

// Verdict is the outcome of a consistency check.
type Verdict string

const (
	VerdictConsistent   Verdict = "consistent"
	VerdictViolated     Verdict = "violated"
	VerdictInconclusive Verdict = "inconclusive"
)

// Names of the invariants reported in a Check.
const (
	InvariantDesignated = "has_designated"
	InvariantResidue    = "residue"
	InvariantForcedTail = "forced_tail"
)

// Check is the result of comparing two snapshots.
type Check struct {
	Verdict   Verdict `json:"verdict"`
	Invariant string  `json:"invariant,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// OK reports whether no invariant was violated.
func (c Check) OK() bool {
	return c.Verdict != VerdictViolated
}

// Consistent checks cur against base.
//
// Presence of the designated symbol must be equal. Residues must be equal
// when both are defined. If base has a forced tail, the normal form of cur
// must equal it; when that normal form is unknown the check is
// inconclusive rather than violated.
func Consistent(base, cur Snapshot) Check {
	if base.HasDesignated != cur.HasDesignated {
		return Check{
			Verdict:   VerdictViolated,
			Invariant: InvariantDesignated,
			Reason:    fmt.Sprintf("presence changed from %t to %t", base.HasDesignated, cur.HasDesignated),
		}
	}

	if base.Residue != nil && cur.Residue != nil && *base.Residue != *cur.Residue {
		return Check{
			Verdict:   VerdictViolated,
			Invariant: InvariantResidue,
			Reason:    fmt.Sprintf("residue changed from %d to %d", *base.Residue, *cur.Residue),
		}
	}

	if base.ForcedTail != nil {
		if !cur.NormalFormConverged {
			return Check{
				Verdict:   VerdictInconclusive,
				Invariant: InvariantForcedTail,
				Reason:    fmt.Sprintf("normal form of %s not reached", ir.Show(cur.Word)),
			}
		}
		if cur.NormalForm != *base.ForcedTail {
			return Check{
				Verdict:   VerdictViolated,
				Invariant: InvariantForcedTail,
				Reason: fmt.Sprintf("normal form %s, forced %s",
					ir.Show(cur.NormalForm), ir.Show(*base.ForcedTail)),
			}
		}
	}

	return Check{Verdict: VerdictConsistent}
}
