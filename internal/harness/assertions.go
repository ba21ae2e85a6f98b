package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    []string // Counterexample trace or chain, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nCounterexample:\n")
		for i, w := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, ir.Show(w))
		}
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx     context.Context
	System  *ir.System
	Rules   ir.RuleSet
	StepCap int
	Jobs    int
	Logger  *slog.Logger
}

// EvaluateAssertions evaluates all assertions against the rule set.
// Returns a slice of error messages for failed assertions. The error is
// non-nil only when an assertion could not be evaluated.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) ([]string, error) {
	if actx.Logger == nil {
		actx.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var errors []string

	for i, assertion := range assertions {
		var failed *AssertionError
		var err error

		switch assertion.Type {
		case AssertEquivalent:
			failed, err = assertEquivalent(actx, assertion)
		case AssertChainsConsistent:
			failed, err = assertChainsConsistent(actx, assertion)
		case AssertInvariantsValid:
			failed, err = assertInvariantsValid(actx, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			return nil, fmt.Errorf("assertions[%d]: %w", i, err)
		}
		if failed != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %s", i, failed.Error()))
		}
	}

	return errors, nil
}

// assertEquivalent fuzzes the scenario's rule set against another rule set
// of the same system.
func assertEquivalent(actx *AssertionContext, a Assertion) (*AssertionError, error) {
	against, ok := actx.System.RuleSet(a.Against)
	if !ok {
		return nil, fmt.Errorf("system %s has no rule set %q", actx.System.Name, a.Against)
	}

	cfg := equiv.DefaultConfig(actx.System.Alphabet)
	cfg.StepCap = actx.StepCap
	applyCampaignParams(&cfg.Trials, &cfg.Words.MinLen, &cfg.Words.MaxLen, &cfg.Seed, a)
	cfg.Jobs = actx.Jobs
	cfg.Logger = actx.Logger

	report, err := equiv.RunCampaign(actx.Ctx, cfg, actx.Rules, against)
	if err != nil {
		return nil, err
	}
	if report.Equivalent() {
		return nil, nil
	}

	failed := &AssertionError{
		Type:     AssertEquivalent,
		Expected: fmt.Sprintf("%s and %s agree on %d trials", actx.Rules.Name, against.Name, report.Trials),
		Actual:   fmt.Sprintf("%d mismatches, %d non-terminations", report.Mismatches, report.NonTerminations),
	}
	if len(report.Counterexamples) > 0 {
		c := report.Counterexamples[0]
		failed.Actual += fmt.Sprintf("; %s reduces to %s and %s", ir.Show(c.Word), ir.Show(c.A.Final), ir.Show(c.B.Final))
		failed.Trace = c.A.Trace
	}
	return failed, nil
}

// assertChainsConsistent runs a metamorphic campaign over the system's
// invariants, walking chains with the scenario's rule set.
func assertChainsConsistent(actx *AssertionContext, a Assertion) (*AssertionError, error) {
	set, err := invariant.New(actx.System, invariant.WithLogger(actx.Logger))
	if err != nil {
		return nil, err
	}

	cfg := metamorphic.DefaultConfig(actx.System.Alphabet)
	applyCampaignParams(&cfg.Trials, &cfg.Words.MinLen, &cfg.Words.MaxLen, &cfg.Seed, a)
	cfg.Jobs = actx.Jobs
	cfg.Logger = actx.Logger

	report, err := metamorphic.RunCampaign(actx.Ctx, cfg, actx.Rules, set)
	if err != nil {
		return nil, err
	}
	if report.OK() {
		return nil, nil
	}

	failed := &AssertionError{
		Type:     AssertChainsConsistent,
		Expected: fmt.Sprintf("invariants hold along %d chains", report.Trials),
		Actual:   fmt.Sprintf("%d inconsistent chains", report.Inconsistent),
	}
	if len(report.Violations) > 0 {
		v := report.Violations[0]
		failed.Actual += fmt.Sprintf("; %s breaks %s: %s", ir.Show(v.Word), v.Check.Invariant, v.Check.Reason)
		failed.Trace = v.Chain
	}
	return failed, nil
}

// assertInvariantsValid checks the invariants against the reference rules.
func assertInvariantsValid(actx *AssertionContext, a Assertion) (*AssertionError, error) {
	set, err := invariant.New(actx.System, invariant.WithLogger(actx.Logger))
	if err != nil {
		return nil, err
	}

	bound := a.Bound
	if bound == 0 {
		bound = invariant.DefaultCouplingBound
	}
	errs := set.Validate(bound)
	if len(errs) == 0 {
		return nil, nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &AssertionError{
		Type:     AssertInvariantsValid,
		Expected: fmt.Sprintf("invariants of %s hold up to length %d", set.Reference().Name, bound),
		Actual:   strings.Join(msgs, "; "),
	}, nil
}

// applyCampaignParams overrides campaign defaults with the non-zero
// parameters of an assertion.
func applyCampaignParams(trials, minLen, maxLen *int, seed *uint64, a Assertion) {
	if a.Trials != 0 {
		*trials = a.Trials
	}
	if a.MinLen != 0 {
		*minLen = a.MinLen
	}
	if a.MaxLen != 0 {
		*maxLen = a.MaxLen
	}
	if a.Seed != 0 {
		*seed = a.Seed
	}
}
