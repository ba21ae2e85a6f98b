package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/semithue/internal/compiler"
	"github.com/roach88/semithue/internal/engine"
	"github.com/roach88/semithue/internal/ir"
)

// Harness executes one scenario against its compiled system.
type Harness struct {
	system *ir.System
	rules  ir.RuleSet
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures a harness run.
type Option func(*options)

type options struct {
	logger *slog.Logger
	jobs   int
}

// WithLogger sets the logger for reductions and campaigns.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithJobs sets the worker count of campaign assertions.
func WithJobs(jobs int) Option {
	return func(o *options) {
		o.jobs = jobs
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load and compile the scenario's system
// 2. Reduce every word with the selected rule set
// 3. Validate expect clauses
// 4. Evaluate campaign assertions
//
// An error is returned only when the scenario cannot be executed at all;
// failed expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	sys, err := LoadSystem(scenario)
	if err != nil {
		return nil, err
	}
	rules, ok := sys.RuleSet(scenario.RuleSet)
	if !ok {
		return nil, fmt.Errorf("system %s has no rule set %q", sys.Name, scenario.RuleSet)
	}

	stepCap := scenario.StepCap
	if stepCap == 0 {
		stepCap = engine.DefaultMaxSteps
	}

	h := &Harness{
		system: sys,
		rules:  rules,
		engine: engine.New(rules, engine.WithMaxSteps(stepCap), engine.WithLogger(o.logger)),
		logger: o.logger,
	}

	result := NewResult()
	h.executeReductions(scenario.Reductions, result)

	actx := &AssertionContext{
		Ctx:     ctx,
		System:  sys,
		Rules:   rules,
		StepCap: stepCap,
		Jobs:    o.jobs,
		Logger:  o.logger,
	}
	assertionErrors, err := EvaluateAssertions(scenario.Assertions, actx)
	if err != nil {
		return nil, err
	}
	for _, errMsg := range assertionErrors {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"system", sys.Name,
		"rule_set", rules.Name,
		"pass", result.Pass,
	)
	return result, nil
}

// LoadSystem compiles the system a scenario refers to.
func LoadSystem(scenario *Scenario) (*ir.System, error) {
	if scenario.SystemFile == "" {
		return compiler.BuiltinSystem(scenario.System)
	}

	src, err := os.ReadFile(scenario.SystemFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read system file: %w", err)
	}
	systems, err := compiler.CompileSource(scenario.SystemFile, src)
	if err != nil {
		return nil, err
	}

	if scenario.System == "" {
		if len(systems) != 1 {
			return nil, fmt.Errorf("%s defines %d systems; name one with system", scenario.SystemFile, len(systems))
		}
		return systems[0], nil
	}
	for _, sys := range systems {
		if sys.Name == scenario.System {
			return sys, nil
		}
	}
	return nil, fmt.Errorf("%s defines no system %q", scenario.SystemFile, scenario.System)
}

// executeReductions reduces every word and validates expect clauses.
func (h *Harness) executeReductions(reductions []Reduction, result *Result) {
	for i, r := range reductions {
		out := h.engine.Reduce(r.Word)
		result.AddReduction(r.Word, out)

		if r.Expect == nil {
			continue
		}
		for _, msg := range checkExpect(r.Expect, out) {
			result.AddError(fmt.Sprintf("reductions[%d] (%s): %s", i, ir.Show(r.Word), msg))
		}
	}
}

// checkExpect compares the set fields of an expect clause with an outcome.
func checkExpect(expect *ExpectClause, out ir.Outcome) []string {
	var errs []string
	if expect.NormalForm != nil && *expect.NormalForm != out.Final {
		errs = append(errs, fmt.Sprintf("expected normal form %s, got %s", ir.Show(*expect.NormalForm), ir.Show(out.Final)))
	}
	if expect.Converged != nil && *expect.Converged != out.Converged {
		errs = append(errs, fmt.Sprintf("expected converged=%t, got %t", *expect.Converged, out.Converged))
	}
	if expect.Steps != nil && *expect.Steps != out.Steps() {
		errs = append(errs, fmt.Sprintf("expected %d steps, got %d", *expect.Steps, out.Steps()))
	}
	return errs
}
