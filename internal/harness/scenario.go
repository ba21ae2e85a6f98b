package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios pin the behavior of one rule set of a system: the reductions of
// chosen words and, optionally, campaign-level properties.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// System names the system under test. Without SystemFile it must be a
	// builtin system; with SystemFile it selects among the file's systems.
	System string `yaml:"system,omitempty"`

	// SystemFile is a CUE file defining the system.
	// Relative paths are resolved against the scenario file location.
	SystemFile string `yaml:"system_file,omitempty"`

	// RuleSet names the rule set whose reductions are checked.
	RuleSet string `yaml:"rule_set"`

	// StepCap bounds every reduction. Zero selects engine.DefaultMaxSteps.
	StepCap int `yaml:"step_cap,omitempty"`

	// Reductions lists the words to reduce, with optional expectations.
	Reductions []Reduction `yaml:"reductions"`

	// Assertions validate campaign-level properties of the rule set.
	// Supported types: equivalent, chains_consistent, invariants_valid
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Reduction is one word to reduce.
type Reduction struct {
	Word string `yaml:"word"`

	// Expect specifies the expected outcome.
	// If nil, the reduction only contributes to the trace.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a reduction.
// Only the fields that are set are validated.
type ExpectClause struct {
	NormalForm *string `yaml:"normal_form,omitempty"`
	Converged  *bool   `yaml:"converged,omitempty"`
	Steps      *int    `yaml:"steps,omitempty"`
}

// Assertion validates a property of the rule set as a whole.
type Assertion struct {
	// Type specifies the assertion type:
	// - "equivalent": fuzz the rule set against another one
	// - "chains_consistent": run a metamorphic campaign over the invariants
	// - "invariants_valid": check the invariants against the reference rules
	Type string `yaml:"type"`

	// Against is the other rule set (used by equivalent).
	Against string `yaml:"against,omitempty"`

	// Campaign parameters (used by equivalent and chains_consistent).
	// Zero values select the campaign defaults.
	Trials int    `yaml:"trials,omitempty"`
	MinLen int    `yaml:"min_len,omitempty"`
	MaxLen int    `yaml:"max_len,omitempty"`
	Seed   uint64 `yaml:"seed,omitempty"`

	// Bound is the longest word enumerated by invariants_valid.
	// Zero selects invariant.DefaultCouplingBound.
	Bound int `yaml:"bound,omitempty"`
}

// Assertion type constants.
const (
	AssertEquivalent       = "equivalent"
	AssertChainsConsistent = "chains_consistent"
	AssertInvariantsValid  = "invariants_valid"
)

// LoadScenario reads and parses a scenario YAML file.
// A relative system_file is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative system_file against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "reduction:" vs "reductions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the system path BEFORE validation
	if scenario.SystemFile != "" && !filepath.IsAbs(scenario.SystemFile) && basePath != "" {
		scenario.SystemFile = filepath.Join(basePath, scenario.SystemFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.System == "" && s.SystemFile == "" {
		return fmt.Errorf("system or system_file is required")
	}

	if s.SystemFile != "" {
		if _, err := os.Stat(s.SystemFile); os.IsNotExist(err) {
			return fmt.Errorf("system file not found: %s", s.SystemFile)
		}
	}

	if s.RuleSet == "" {
		return fmt.Errorf("rule_set is required")
	}

	if s.StepCap < 0 {
		return fmt.Errorf("step_cap must be non-negative, got %d", s.StepCap)
	}

	if len(s.Reductions) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("reductions or assertions must be non-empty")
	}

	for i, r := range s.Reductions {
		if r.Expect != nil && r.Expect.Steps != nil && *r.Expect.Steps < 0 {
			return fmt.Errorf("reductions[%d].expect: steps must be non-negative", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Trials < 0 || a.MinLen < 0 || a.MaxLen < 0 || a.Bound < 0 {
		return fmt.Errorf("assertions[%d]: parameters must be non-negative", index)
	}

	switch a.Type {
	case AssertEquivalent:
		if a.Against == "" {
			return fmt.Errorf("assertions[%d]: against is required for equivalent", index)
		}
	case AssertChainsConsistent, AssertInvariantsValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// FindScenarioFiles returns the YAML files under dir in lexical order.
// A non-empty filter is a glob matched against the file name without
// its extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := filepath.Base(path)
			name = name[:len(name)-len(ext)]
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
