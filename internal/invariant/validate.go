package invariant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/semithue/internal/ir"
)

// DefaultCouplingBound is the longest word Validate enumerates.
const DefaultCouplingBound = 10

// RuleError reports a rule of the reference rule set that can change an
// invariant in a single step, in either direction.
type RuleError struct {
	Invariant string
	RuleIndex int
	Rule      ir.Rule
	Message   string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s) breaks %s: %s", e.RuleIndex, e.Rule, e.Invariant, e.Message)
}

// CouplingError reports a word the forced tail claim does not hold for.
type CouplingError struct {
	Word       string
	Expected   string
	NormalForm string
	Converged  bool
}

// Error implements the error interface.
func (e *CouplingError) Error() string {
	if !e.Converged {
		return fmt.Sprintf("forced tail %s unverified: %s has no normal form within the step cap",
			ir.Show(e.Expected), ir.Show(e.Word))
	}
	return fmt.Sprintf("forced tail %s does not hold: %s reduces to %s",
		ir.Show(e.Expected), ir.Show(e.Word), ir.Show(e.NormalForm))
}

// IsCouplingError returns true if err is or wraps a *CouplingError.
func IsCouplingError(err error) bool {
	var target *CouplingError
	return errors.As(err, &target)
}

// Validate checks that the invariants are supported by the reference rule
// set.
//
// Presence and residue are checked rule by rule: a rewrite in either
// direction must not change them. The forced tail is checked by reducing
// every covered word of length at most bound; at most one CouplingError is
// returned, for the shortest failing word in alphabet order.
func (s *Set) Validate(bound int) []error {
	var errs []error
	for i, r := range s.reference.Rules {
		if err := s.checkRule(i, r); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.checkForcedTail(bound); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (s *Set) checkRule(i int, r ir.Rule) error {
	lhsHas, rhsHas := s.HasDesignated(r.LHS), s.HasDesignated(r.RHS)
	if lhsHas != rhsHas {
		return &RuleError{
			Invariant: InvariantDesignated,
			RuleIndex: i,
			Rule:      r,
			Message:   "only one side contains the designated symbol",
		}
	}
	if !lhsHas {
		diff := ir.Len(r.LHS) - ir.Len(r.RHS)
		if diff%s.cfg.Modulus != 0 {
			return &RuleError{
				Invariant: InvariantResidue,
				RuleIndex: i,
				Rule:      r,
				Message:   fmt.Sprintf("length changes by %d, not a multiple of %d", diff, s.cfg.Modulus),
			}
		}
	}
	return nil
}

func (s *Set) checkForcedTail(bound int) error {
	if s.cfg.ForcedTail == "" {
		return nil
	}
	symbols := ir.Symbols(s.alphabet)

	for n := 2; n <= bound; n++ {
		var failure *CouplingError
		forEachWord(symbols, n-1, func(prefix string) bool {
			word := prefix + s.cfg.Designated
			out := s.NormalForm(word)
			if !out.Converged || out.Final != s.cfg.ForcedTail {
				failure = &CouplingError{
					Word:       word,
					Expected:   s.cfg.ForcedTail,
					NormalForm: out.Final,
					Converged:  out.Converged,
				}
				return false
			}
			return true
		})
		if failure != nil {
			return failure
		}
	}
	return nil
}

// forEachWord calls fn for every word of length n over symbols, in
// alphabet order, until fn returns false.
func forEachWord(symbols []string, n int, fn func(string) bool) {
	idx := make([]int, n)
	var b strings.Builder
	for {
		b.Reset()
		for _, i := range idx {
			b.WriteString(symbols[i])
		}
		if !fn(b.String()) {
			return
		}

		k := n - 1
		for k >= 0 && idx[k] == len(symbols)-1 {
			idx[k] = 0
			k--
		}
		if k < 0 {
			return
		}
		idx[k]++
	}
}
