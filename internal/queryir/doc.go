// Package queryir defines a small query representation for selecting
// recorded campaign runs.
//
// A query names runs by their recorded columns: the kind of campaign, the
// system and rule sets involved, their content hashes and the trial
// counts. The representation is independent of the storage backend; the
// querysql package compiles it to parameterized SQLite.
//
//	[runs list flags] → [Query IR] → [SQL backend]
//
// Query and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch exhaustively over the node types:
//
//	switch q := query.(type) {
//	case Select:
//	    // handle select
//	}
//
// Fields are restricted to the columns listed in Fields. Validate checks
// field names and value types before a query reaches a backend, which lets
// backends place field names in generated SQL while values stay
// parameterized.
//
// Example, the failing equivalence runs that involve rule set "minimal":
//
//	Select{
//	    Filter: And{Predicates: []Predicate{
//	        Equals{Field: "kind", Value: "equiv"},
//	        Or{Predicates: []Predicate{
//	            Equals{Field: "subject", Value: "minimal"},
//	            Equals{Field: "against", Value: "minimal"},
//	        }},
//	        AtLeast{Field: "failed", Min: 1},
//	    }},
//	}
//
// Results are always in seq order.
package queryir
