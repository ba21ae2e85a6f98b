package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/semithue/internal/ir"
)

// RuntimeErrorCode categorizes engine errors.
type RuntimeErrorCode string

const (
	// ErrCodeStepCapExceeded indicates a reduction hit its step cap.
	ErrCodeStepCapExceeded RuntimeErrorCode = "STEP_CAP_EXCEEDED"

	// ErrCodeEmptyLHS indicates a rule with an empty left-hand side.
	ErrCodeEmptyLHS RuntimeErrorCode = "EMPTY_LHS"
)

// RuntimeError describes a rule that the engine refuses to apply.
type RuntimeError struct {
	Code      RuntimeErrorCode
	Message   string
	RuleIndex int
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (rule=%d)", e.Code, e.Message, e.RuleIndex)
}

// StepCapExceededError is returned by Normalize when reduction did not
// reach a normal form within the step cap.
//
// This is an expected outcome when testing possibly non-terminating or slowly
// converging systems. It signals "divergence suspected", not an engine fault.
type StepCapExceededError struct {
	Word  string // last word reached
	Steps int    // steps taken
	Limit int    // step cap
}

// Error implements the error interface.
func (e *StepCapExceededError) Error() string {
	return fmt.Sprintf("%s: no normal form within %d steps (last word %q)",
		ErrCodeStepCapExceeded, e.Limit, e.Word)
}

// IsStepCapExceeded returns true if the error is a StepCapExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepCapExceeded(err error) bool {
	var se *StepCapExceededError
	return errors.As(err, &se)
}

// CheckRules reports every rule the matcher will skip.
// Intended to be called once at setup time by whoever supplies the rules.
func CheckRules(rules []ir.Rule) []error {
	var errs []error
	for i, r := range rules {
		if r.LHS == "" {
			errs = append(errs, &RuntimeError{
				Code:      ErrCodeEmptyLHS,
				Message:   fmt.Sprintf("rule %s has an empty left-hand side and is skipped", r),
				RuleIndex: i,
			})
		}
	}
	return errs
}
