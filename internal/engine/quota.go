package engine

// StepBudget counts rewrite steps and enforces the step cap of a single
// reduction.
//
// Each reduction has its own StepBudget. The budget is checked before every
// attempted step, so a reduction performs at most maxSteps rewrites.
type StepBudget struct {
	maxSteps int // Maximum allowed steps
	current  int // Steps granted so far
}

// NewStepBudget creates a budget with the given limit.
// A non-positive limit grants no steps at all.
func NewStepBudget(maxSteps int) *StepBudget {
	return &StepBudget{maxSteps: maxSteps}
}

// Check grants one more step or returns a StepCapExceededError when the
// limit has been reached.
func (b *StepBudget) Check(word string) error {
	if b.current >= b.maxSteps {
		return &StepCapExceededError{
			Word:  word,
			Steps: b.current,
			Limit: b.maxSteps,
		}
	}
	b.current++
	return nil
}
