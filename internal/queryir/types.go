package queryir

// Query represents an abstract query over recorded runs.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition on a run.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = value
//   - AtLeast: field >= min, for count fields
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// FieldKind is the value type of a run field.
type FieldKind int

const (
	TextField FieldKind = iota
	IntField
)

// Fields lists the run fields a query may reference.
var Fields = map[string]FieldKind{
	"id":             TextField,
	"kind":           TextField,
	"system":         TextField,
	"system_hash":    TextField,
	"subject":        TextField,
	"subject_hash":   TextField,
	"against":        TextField,
	"against_hash":   TextField,
	"engine_version": TextField,
	"ir_version":     TextField,
	"seq":            IntField,
	"trials":         IntField,
	"passed":         IntField,
	"failed":         IntField,
	"inconclusive":   IntField,
}

// Select selects the runs matching Filter.
//
// Semantics:
//
//	SELECT <run> FROM runs WHERE <filter> ORDER BY seq
//
// When Last is positive only the Last matching runs with the highest seq
// are kept, still returned in ascending seq order.
type Select struct {
	Filter Predicate // nil = every run
	Last   int       // 0 = no limit
}

func (Select) queryNode() {}

// Equals represents a field-equals-value predicate.
//
// Value must be a string for text fields and an int for count fields.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// AtLeast represents a lower bound on a count field.
//
// Example, runs that found at least one failure:
//
//	AtLeast{Field: "failed", Min: 1}
type AtLeast struct {
	Field string
	Min   int
}

func (AtLeast) predicateNode() {}

// And represents a conjunction of predicates.
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates.
// An empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}
