package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/semithue/internal/ir"
)

// CompileSystem parses a CUE value into a System.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the system struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`system: lab1: { alphabet: "ab", ... }`)
//	sys, err := CompileSystem(v.LookupPath(cue.ParsePath("system.lab1")))
//
// Every word is NFC-normalized so that canonically equivalent spellings of a
// symbol match each other.
func CompileSystem(v cue.Value) (*ir.System, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sys := &ir.System{}

	// System name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		sys.Name = labels[len(labels)-1].String()
	}

	alphabetVal := v.LookupPath(cue.ParsePath("alphabet"))
	if !alphabetVal.Exists() {
		return nil, &CompileError{
			Field:   "alphabet",
			Message: "alphabet is required",
			Pos:     v.Pos(),
		}
	}
	alphabet, err := alphabetVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	sys.Alphabet = norm.NFC.String(alphabet)

	sys.RuleSets, err = parseRuleSets(v)
	if err != nil {
		return nil, err
	}
	if len(sys.RuleSets) == 0 {
		return nil, &CompileError{
			Field:   "rule_set",
			Message: "at least one rule set is required",
			Pos:     v.Pos(),
		}
	}

	// Invariants are optional; without them only reduction and equivalence
	// campaigns are available.
	invVal := v.LookupPath(cue.ParsePath("invariants"))
	if invVal.Exists() {
		sys.Invariants, err = parseInvariants(invVal)
		if err != nil {
			return nil, err
		}
	}

	return sys, nil
}

// CompileSource compiles every system defined in a CUE source file.
func CompileSource(filename string, src []byte) ([]*ir.System, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileValue(v)
}

// CompileValue compiles every field of the top-level "system" struct of v,
// in declaration order.
func CompileValue(v cue.Value) ([]*ir.System, error) {
	systemsVal := v.LookupPath(cue.ParsePath("system"))
	if !systemsVal.Exists() {
		return nil, &CompileError{
			Field:   "system",
			Message: "no systems defined",
			Pos:     v.Pos(),
		}
	}

	iter, err := systemsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var systems []*ir.System
	for iter.Next() {
		sys, err := CompileSystem(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("system %s: %w", iter.Label(), err)
		}
		systems = append(systems, sys)
	}
	return systems, nil
}

// parseRuleSets extracts the named rule sets in declaration order.
func parseRuleSets(v cue.Value) ([]ir.RuleSet, error) {
	var ruleSets []ir.RuleSet

	setsVal := v.LookupPath(cue.ParsePath("rule_set"))
	if !setsVal.Exists() {
		return ruleSets, nil
	}

	iter, err := setsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		rulesIter, err := iter.Value().List()
		if err != nil {
			return nil, formatCUEError(err)
		}

		rs := ir.RuleSet{Name: name, Rules: []ir.Rule{}}
		for rulesIter.Next() {
			rule, err := parseRule(rulesIter.Value())
			if err != nil {
				return nil, err
			}
			rs.Rules = append(rs.Rules, rule)
		}
		ruleSets = append(ruleSets, rs)
	}

	return ruleSets, nil
}

// parseRule parses {lhs: "...", rhs: "..."}.
func parseRule(v cue.Value) (ir.Rule, error) {
	var rule ir.Rule

	for _, side := range []struct {
		field string
		dst   *string
	}{
		{"lhs", &rule.LHS},
		{"rhs", &rule.RHS},
	} {
		sideVal := v.LookupPath(cue.ParsePath(side.field))
		if !sideVal.Exists() {
			return rule, &CompileError{
				Field:   side.field,
				Message: fmt.Sprintf("rule %s is required", side.field),
				Pos:     v.Pos(),
			}
		}
		word, err := sideVal.String()
		if err != nil {
			return rule, formatCUEError(err)
		}
		*side.dst = norm.NFC.String(word)
	}

	return rule, nil
}

// parseInvariants parses the invariant parameters.
func parseInvariants(v cue.Value) (ir.InvariantConfig, error) {
	var cfg ir.InvariantConfig

	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"designated", &cfg.Designated},
		{"forced_tail", &cfg.ForcedTail},
		{"reference", &cfg.Reference},
	} {
		fv := v.LookupPath(cue.ParsePath(field.name))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return cfg, formatCUEError(err)
		}
		*field.dst = norm.NFC.String(s)
	}

	modVal := v.LookupPath(cue.ParsePath("modulus"))
	if modVal.Exists() {
		if modVal.IncompleteKind() != cue.IntKind {
			return cfg, &CompileError{
				Field:   "modulus",
				Message: fmt.Sprintf("modulus must be an int, got %v", modVal.IncompleteKind()),
				Pos:     modVal.Pos(),
			}
		}
		m, err := modVal.Int64()
		if err != nil {
			return cfg, formatCUEError(err)
		}
		cfg.Modulus = int(m)
	}

	return cfg, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
