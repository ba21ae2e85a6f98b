package harness

import "github.com/roach88/semithue/internal/ir"

// ReductionTrace records one reduction of a scenario.
type ReductionTrace struct {
	Word      string   `json:"word"`
	Final     string   `json:"final"`
	Converged bool     `json:"converged"`
	Steps     int      `json:"steps"`
	Trace     []string `json:"trace"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Reductions contains every reduction in scenario order.
	// Used for golden comparison.
	Reductions []ReductionTrace `json:"reductions"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Reductions: []ReductionTrace{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddReduction appends the outcome of reducing word.
func (r *Result) AddReduction(word string, out ir.Outcome) {
	r.Reductions = append(r.Reductions, ReductionTrace{
		Word:      word,
		Final:     out.Final,
		Converged: out.Converged,
		Steps:     out.Steps(),
		Trace:     out.Trace,
	})
}
