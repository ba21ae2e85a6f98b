package ir

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rule is a directional rewrite rule LHS -> RHS.
// An empty LHS is a configuration error; the matcher skips such rules.
type Rule struct {
	LHS string `json:"lhs"`
	RHS string `json:"rhs"`
}

// String renders the rule as "lhs -> rhs", with ε for the empty word.
func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s", Show(r.LHS), Show(r.RHS))
}

// RuleSet is an ordered sequence of rules.
// Declared order only matters as the last tie-break of the matcher.
type RuleSet struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Match identifies where and which rule applies to a word.
type Match struct {
	Pos   int  `json:"pos"`   // byte offset of the LHS occurrence
	Index int  `json:"index"` // index of the rule in declared order
	Rule  Rule `json:"rule"`
}

// Apply returns the word with the matched LHS replaced by the RHS.
// The match must have been found in word.
func (m Match) Apply(word string) string {
	var b strings.Builder
	b.Grow(len(word) - len(m.Rule.LHS) + len(m.Rule.RHS))
	b.WriteString(word[:m.Pos])
	b.WriteString(m.Rule.RHS)
	b.WriteString(word[m.Pos+len(m.Rule.LHS):])
	return b.String()
}

// Outcome is the result of reducing a word.
//
// Converged is true iff reduction stopped because no rule applied, i.e.
// Final is a genuine normal form. Converged == false means the step cap was
// hit: Final is the last word reached and must not be treated as a normal
// form.
type Outcome struct {
	Final     string   `json:"final"`
	Converged bool     `json:"converged"`
	Trace     []string `json:"trace"` // Trace[0] is the start word
}

// Steps returns the number of rewrite steps taken.
func (o Outcome) Steps() int {
	return len(o.Trace) - 1
}

// InvariantConfig parameterises the metamorphic invariant set.
type InvariantConfig struct {
	// Designated is the single symbol whose presence is tracked.
	Designated string `json:"designated"`

	// Modulus for the residue of the other symbols in designated-free words.
	Modulus int `json:"modulus"`

	// ForcedTail is the normal form every word of length >= 2 ending in the
	// designated symbol reduces to. Specific to the reference rule set.
	ForcedTail string `json:"forced_tail"`

	// Reference names the rule set used to compute normal forms.
	Reference string `json:"reference"`
}

// System is a compiled rewriting system definition: an alphabet, one or
// more named rule sets over it, and the invariant parameters.
type System struct {
	Name       string          `json:"name"`
	Alphabet   string          `json:"alphabet"`
	RuleSets   []RuleSet       `json:"rule_sets"`
	Invariants InvariantConfig `json:"invariants"`
}

// RuleSet looks up a rule set by name.
func (s *System) RuleSet(name string) (RuleSet, bool) {
	for _, rs := range s.RuleSets {
		if rs.Name == name {
			return rs, true
		}
	}
	return RuleSet{}, false
}

// RuleSetNames returns the rule set names in declaration order.
func (s *System) RuleSetNames() []string {
	names := make([]string, len(s.RuleSets))
	for i, rs := range s.RuleSets {
		names[i] = rs.Name
	}
	return names
}

// Symbols returns the alphabet as a slice of single-symbol strings.
func (s *System) Symbols() []string {
	return Symbols(s.Alphabet)
}

// Symbols splits a word into its symbols.
func Symbols(word string) []string {
	out := make([]string, 0, utf8.RuneCountInString(word))
	for _, r := range word {
		out = append(out, string(r))
	}
	return out
}

// Len returns the number of symbols in word.
func Len(word string) int {
	return utf8.RuneCountInString(word)
}

// Show renders a word for humans, using ε for the empty word.
func Show(word string) string {
	if word == "" {
		return "ε"
	}
	return word
}
