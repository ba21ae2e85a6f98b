package engine

import (
	"io"
	"log/slog"

	"github.com/roach88/semithue/internal/ir"
)

// DefaultMaxSteps is the default step cap of a single reduction.
const DefaultMaxSteps = 1000

// ApplyOneStep rewrites the governing match of word.
// Returns false if no rule applies.
func ApplyOneStep(word string, rules []ir.Rule) (string, bool) {
	m, ok := FindMatch(word, rules)
	if !ok {
		return "", false
	}
	return m.Apply(word), true
}

// Reduce rewrites word until no rule applies or stepCap steps were taken.
//
// The trace always starts with word. Converged is true iff reduction stopped
// because no rule applied. After stepCap successful steps reduction stops
// with Converged == false without inspecting the last word, so a capped
// outcome is "unknown", never a normal form.
func Reduce(word string, rules []ir.Rule, stepCap int) ir.Outcome {
	out, _ := reduce(word, rules, stepCap)
	return out
}

// Normalize is like Reduce but returns only the normal form, or a
// *StepCapExceededError if none was reached within stepCap steps.
func Normalize(word string, rules []ir.Rule, stepCap int) (string, error) {
	out, err := reduce(word, rules, stepCap)
	if err != nil {
		return "", err
	}
	return out.Final, nil
}

// reduce returns the outcome and, when the cap stopped reduction, the
// budget's *StepCapExceededError.
func reduce(word string, rules []ir.Rule, stepCap int) (ir.Outcome, error) {
	budget := NewStepBudget(stepCap)
	cur := word
	trace := []string{cur}

	for {
		if err := budget.Check(cur); err != nil {
			return ir.Outcome{Final: cur, Converged: false, Trace: trace}, err
		}
		next, ok := ApplyOneStep(cur, rules)
		if !ok {
			return ir.Outcome{Final: cur, Converged: true, Trace: trace}, nil
		}
		cur = next
		trace = append(trace, cur)
	}
}

// Engine binds a rule set to a step cap.
//
// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules    ir.RuleSet
	maxSteps int
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the step cap.
//
// Default: 1000 steps (DefaultMaxSteps)
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithLogger sets the logger used for per-reduction debug output.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine for the given rule set.
//
// The rules slice is copied to prevent external mutation from changing the
// matching behaviour of a live engine.
func New(rules ir.RuleSet, opts ...EngineOption) *Engine {
	copied := ir.RuleSet{Name: rules.Name, Rules: make([]ir.Rule, len(rules.Rules))}
	copy(copied.Rules, rules.Rules)

	e := &Engine{
		rules:    copied,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, err := range CheckRules(e.rules.Rules) {
		e.logger.Warn("rule skipped", "rule_set", e.rules.Name, "error", err)
	}
	return e
}

// RuleSet returns the engine's rule set.
func (e *Engine) RuleSet() ir.RuleSet {
	return e.rules
}

// MaxSteps returns the engine's step cap.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// FindMatch returns the governing match of word.
func (e *Engine) FindMatch(word string) (ir.Match, bool) {
	return FindMatch(word, e.rules.Rules)
}

// Reduce reduces word with the engine's rules and step cap.
func (e *Engine) Reduce(word string) ir.Outcome {
	out := Reduce(word, e.rules.Rules, e.maxSteps)
	e.logger.Debug("reduced",
		"rule_set", e.rules.Name,
		"word", word,
		"final", out.Final,
		"converged", out.Converged,
		"steps", out.Steps(),
	)
	return out
}

// Normalize returns the normal form of word or a *StepCapExceededError.
func (e *Engine) Normalize(word string) (string, error) {
	return Normalize(word, e.rules.Rules, e.maxSteps)
}
