package testutil

import "github.com/roach88/semithue/internal/ir"

// OriginalRules returns the 22-rule system over {a, b} that the minimal
// system is validated against.
func OriginalRules() ir.RuleSet {
	return ir.RuleSet{
		Name: "original",
		Rules: []ir.Rule{
			{LHS: "bbb", RHS: "bab"},
			{LHS: "abab", RHS: "bab"},
			{LHS: "abba", RHS: "aba"},
			{LHS: "babb", RHS: "abb"},
			{LHS: "bbab", RHS: "bab"},
			{LHS: "aaaaa", RHS: "a"},
			{LHS: "aaaba", RHS: "bba"},
			{LHS: "aaaabb", RHS: "bb"},
			{LHS: "abaaaa", RHS: "abb"},
			{LHS: "abaaab", RHS: "ab"},
			{LHS: "baaaab", RHS: "bab"},
			{LHS: "bbaaaa", RHS: "bb"},
			{LHS: "bbaaab", RHS: "aaaab"},
			{LHS: "baabaab", RHS: "baaab"},
			{LHS: "babaaba", RHS: "bab"},
			{LHS: "babaabb", RHS: "babaaa"},
			{LHS: "baba", RHS: "aba"},
			{LHS: "bab", RHS: "ab"},
			{LHS: "aab", RHS: "ab"},
			{LHS: "aba", RHS: "ab"},
			{LHS: "abb", RHS: "ab"},
			{LHS: "bb", RHS: "ab"},
		},
	}
}

// MinimalRules returns the five-rule minimal system over {a, b}.
func MinimalRules() ir.RuleSet {
	return ir.RuleSet{
		Name: "minimal",
		Rules: []ir.Rule{
			{LHS: "aaaaa", RHS: "a"},
			{LHS: "aba", RHS: "ab"},
			{LHS: "aab", RHS: "ab"},
			{LHS: "bab", RHS: "ab"},
			{LHS: "bb", RHS: "ab"},
		},
	}
}

// LabSystem returns the complete system: both rule sets plus the invariant
// parameters of the minimal one.
func LabSystem() *ir.System {
	return &ir.System{
		Name:     "lab1",
		Alphabet: "ab",
		RuleSets: []ir.RuleSet{OriginalRules(), MinimalRules()},
		Invariants: ir.InvariantConfig{
			Designated: "b",
			Modulus:    4,
			ForcedTail: "ab",
			Reference:  "minimal",
		},
	}
}
