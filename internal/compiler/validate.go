package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/semithue/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Alphabet errors (E101-E102)
	ErrAlphabetEmpty     = "E101" // alphabet is required
	ErrAlphabetDuplicate = "E102" // symbol listed twice

	// Rule set errors (E103-E109)
	ErrNoRuleSets        = "E103" // at least one rule set required
	ErrDuplicateRuleSet  = "E104" // duplicate rule set name
	ErrEmptyLHS          = "E105" // rule with empty left-hand side
	ErrForeignSymbol     = "E106" // symbol outside the alphabet
	ErrDuplicateRule     = "E107" // rule declared twice in one set
	ErrTrivialRule       = "E108" // lhs equals rhs

	// Invariant errors (E110-E119)
	ErrInvalidDesignated = "E110" // designated symbol not a single alphabet symbol
	ErrInvalidModulus    = "E111" // modulus must be positive
	ErrUnknownReference  = "E112" // reference rule set not defined
	ErrForeignForcedTail = "E113" // forced tail uses symbols outside the alphabet
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled system.
// Returns all errors found (does not fail-fast).
func Validate(sys *ir.System) []ValidationError {
	var errs []ValidationError

	alphabet := make(map[rune]bool)
	if sys.Alphabet == "" {
		errs = append(errs, ValidationError{
			Field:   "alphabet",
			Message: "alphabet is required and must be non-empty",
			Code:    ErrAlphabetEmpty,
		})
	}
	for _, r := range sys.Alphabet {
		if alphabet[r] {
			errs = append(errs, ValidationError{
				Field:   "alphabet",
				Message: fmt.Sprintf("duplicate symbol %q", r),
				Code:    ErrAlphabetDuplicate,
			})
		}
		alphabet[r] = true
	}

	if len(sys.RuleSets) == 0 {
		errs = append(errs, ValidationError{
			Field:   "rule_set",
			Message: "at least one rule set is required",
			Code:    ErrNoRuleSets,
		})
	}

	setNames := make(map[string]bool)
	for _, rs := range sys.RuleSets {
		if setNames[rs.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule_set.%s", rs.Name),
				Message: fmt.Sprintf("duplicate rule set name: %q", rs.Name),
				Code:    ErrDuplicateRuleSet,
			})
		}
		setNames[rs.Name] = true
		errs = append(errs, validateRuleSet(rs, alphabet)...)
	}

	if sys.Invariants != (ir.InvariantConfig{}) {
		errs = append(errs, validateInvariants(sys, alphabet)...)
	}

	return errs
}

// validateRuleSet validates the rules of one set.
func validateRuleSet(rs ir.RuleSet, alphabet map[rune]bool) []ValidationError {
	var errs []ValidationError
	seen := make(map[ir.Rule]int)

	for i, rule := range rs.Rules {
		field := fmt.Sprintf("rule_set.%s[%d]", rs.Name, i)

		// E105: the matcher skips these, so they are dead rules
		if rule.LHS == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rule %s has an empty lhs", rule),
				Code:    ErrEmptyLHS,
			})
		}

		for _, side := range []string{rule.LHS, rule.RHS} {
			if r, ok := foreignSymbol(side, alphabet); ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("rule %s uses symbol %q outside the alphabet", rule, r),
					Code:    ErrForeignSymbol,
				})
				break
			}
		}

		if rule.LHS != "" && rule.LHS == rule.RHS {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rule %s rewrites a word to itself", rule),
				Code:    ErrTrivialRule,
			})
		}

		if first, dup := seen[rule]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rule %s duplicates rule %d", rule, first),
				Code:    ErrDuplicateRule,
			})
		} else {
			seen[rule] = i
		}
	}

	return errs
}

// validateInvariants validates the invariant parameters.
func validateInvariants(sys *ir.System, alphabet map[rune]bool) []ValidationError {
	var errs []ValidationError
	cfg := sys.Invariants

	if ir.Len(cfg.Designated) != 1 || !strings.ContainsRune(sys.Alphabet, []rune(cfg.Designated)[0]) {
		errs = append(errs, ValidationError{
			Field:   "invariants.designated",
			Message: fmt.Sprintf("designated symbol %q must be a single symbol of the alphabet", cfg.Designated),
			Code:    ErrInvalidDesignated,
		})
	}

	if cfg.Modulus <= 0 {
		errs = append(errs, ValidationError{
			Field:   "invariants.modulus",
			Message: fmt.Sprintf("modulus must be positive, got %d", cfg.Modulus),
			Code:    ErrInvalidModulus,
		})
	}

	if _, ok := sys.RuleSet(cfg.Reference); !ok {
		errs = append(errs, ValidationError{
			Field:   "invariants.reference",
			Message: fmt.Sprintf("reference rule set %q is not defined", cfg.Reference),
			Code:    ErrUnknownReference,
		})
	}

	if r, ok := foreignSymbol(cfg.ForcedTail, alphabet); ok {
		errs = append(errs, ValidationError{
			Field:   "invariants.forced_tail",
			Message: fmt.Sprintf("forced tail uses symbol %q outside the alphabet", r),
			Code:    ErrForeignForcedTail,
		})
	}

	return errs
}

// foreignSymbol returns the first symbol of word not in alphabet.
func foreignSymbol(word string, alphabet map[rune]bool) (rune, bool) {
	for _, r := range word {
		if !alphabet[r] {
			return r, true
		}
	}
	return 0, false
}
