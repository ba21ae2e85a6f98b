// Package harness provides conformance testing for rewriting systems.
//
// The harness compiles a system, reduces scenario words with one of its
// rule sets, and validates the outcomes and campaign-level properties as
// executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	system: lab1                 # builtin, or selects within system_file
//	system_file: path/to/sys.cue # optional, relative to the scenario
//	rule_set: minimal
//	step_cap: 1000               # optional
//	reductions:
//	  - word: bbab
//	    expect:
//	      normal_form: ab
//	      converged: true
//	      steps: 4
//	assertions:
//	  - type: equivalent
//	    against: original
//	    trials: 500
//	  - type: chains_consistent
//	  - type: invariants_valid
//	    bound: 10
//
// # Assertion Types
//
//   - equivalent: fuzzes the rule set against another rule set of the system
//   - chains_consistent: walks random chains and checks the invariants
//   - invariants_valid: checks the invariants against their reference rules
//
// # Deterministic Testing
//
// Reductions are pure and campaigns draw from seeded per-trial streams, so
// a scenario produces identical traces on every run. The traces are
// compared against golden files with RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/lab1_minimal.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
