package queryir

import (
	"fmt"
)

// ValidationResult contains the problems found in a query.
type ValidationResult struct {
	// Valid is true when the query can be compiled.
	Valid bool

	// Problems lists every invalid node, in traversal order.
	Problems []string
}

// Err returns the problems as a single error, or nil for a valid query.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	if len(r.Problems) == 1 {
		return fmt.Errorf("invalid query: %s", r.Problems[0])
	}
	return fmt.Errorf("invalid query: %s (and %d more)", r.Problems[0], len(r.Problems)-1)
}

// Validate checks that a query only references known fields with values of
// the right type.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// validateQuery validates a query node.
func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.Last < 0 {
		v.addProblem("last must be non-negative, got %d", sel.Last)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case AtLeast:
		v.validateAtLeast(pred)
	case *AtLeast:
		v.validateAtLeast(*pred)
	case And:
		v.validateAll(pred.Predicates)
	case *And:
		v.validateAll(pred.Predicates)
	case Or:
		v.validateAll(pred.Predicates)
	case *Or:
		v.validateAll(pred.Predicates)
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	kind, ok := Fields[eq.Field]
	if !ok {
		v.addProblem("unknown field %q", eq.Field)
		return
	}
	switch eq.Value.(type) {
	case string:
		if kind != TextField {
			v.addProblem("field %q compared to a string, want an int", eq.Field)
		}
	case int:
		if kind != IntField {
			v.addProblem("field %q compared to an int, want a string", eq.Field)
		}
	default:
		v.addProblem("field %q compared to unsupported value %T", eq.Field, eq.Value)
	}
}

func (v *validator) validateAtLeast(al AtLeast) {
	kind, ok := Fields[al.Field]
	if !ok {
		v.addProblem("unknown field %q", al.Field)
		return
	}
	if kind != IntField {
		v.addProblem("field %q is not a count", al.Field)
	}
}

func (v *validator) validateAll(preds []Predicate) {
	for _, p := range preds {
		v.validatePredicate(p)
	}
}
