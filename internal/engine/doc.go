// Package engine implements the semi-Thue rewriting engine.
//
// The engine finds the governing match of a word (leftmost position, then
// longest left-hand side, then declared rule order), applies it, and
// iterates to a normal form or until a step cap is exhausted.
//
// ARCHITECTURE:
//
// Pure functions:
// FindMatch, ApplyOneStep and Reduce are pure functions of (word, rules).
// They never mutate their inputs and hold no state between calls, so a
// rule set may be shared read-only by any number of goroutines.
//
// Bounded reduction:
// Termination of an arbitrary rewriting system is undecidable. Reduce uses
// an explicit step cap as a conservative timeout and reports the result as
// a tri-state Outcome (converged / capped) instead of failing. Callers that
// prefer an error use Normalize, which returns *StepCapExceededError.
//
// Determinism:
// Repeated reduction of the same word under the same rules produces the same
// trace. The only rule-order dependence is the last tie-break between rules
// sharing both position and left-hand side length.
package engine
