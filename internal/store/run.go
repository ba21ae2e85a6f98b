package store

// RunKind distinguishes the two campaign types.
type RunKind string

const (
	KindEquiv       RunKind = "equiv"
	KindMetamorphic RunKind = "metamorphic"
)

// Run is the stored summary of one campaign.
//
// Subject is the rule set under test: rule set A of an equivalence run, the
// walked rule set of a metamorphic run. Against is rule set B, or the
// reference rule set of the invariants.
//
// Passed counts agreeing trials or consistent chains. Failed counts
// mismatches or inconsistent chains. Inconclusive counts trials decided by
// the step cap: non-terminations or inconclusive chains.
type Run struct {
	ID            string  `json:"id"`
	Seq           int64   `json:"seq"`
	Kind          RunKind `json:"kind"`
	System        string  `json:"system"`
	SystemHash    string  `json:"system_hash"`
	Subject       string  `json:"subject"`
	SubjectHash   string  `json:"subject_hash"`
	Against       string  `json:"against"`
	AgainstHash   string  `json:"against_hash"`
	Config        string  `json:"config"`
	Trials        int     `json:"trials"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Inconclusive  int     `json:"inconclusive"`
	EngineVersion string  `json:"engine_version"`
	IRVersion     string  `json:"ir_version"`
}

// Sample is one retained counterexample or violation.
// Detail is the JSON encoding of the equiv.Comparison or
// metamorphic.Violation.
type Sample struct {
	RunID   string `json:"run_id"`
	Index   int    `json:"index"`
	Verdict string `json:"verdict"`
	Word    string `json:"word"`
	Detail  string `json:"detail"`
}
