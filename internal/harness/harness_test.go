package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestRun_BuiltinSystem(t *testing.T) {
	scenario := &Scenario{
		Name:        "builtin",
		Description: "Reduce with the builtin lab system",
		System:      "lab1",
		RuleSet:     "minimal",
		Reductions: []Reduction{
			{Word: "bbab", Expect: &ExpectClause{NormalForm: strPtr("ab"), Converged: boolPtr(true), Steps: intPtr(4)}},
			{Word: "aaab"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Reductions, 2)
	assert.Equal(t, []string{"bbab", "abab", "abb", "aab", "ab"}, result.Reductions[0].Trace)
	assert.Equal(t, ReductionTrace{
		Word:      "aaab",
		Final:     "ab",
		Converged: true,
		Steps:     2,
		Trace:     []string{"aaab", "aab", "ab"},
	}, result.Reductions[1])
}

func TestRun_ExpectationMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "Every expectation is wrong",
		System:      "lab1",
		RuleSet:     "original",
		Reductions: []Reduction{
			{Word: "bbab", Expect: &ExpectClause{NormalForm: strPtr("b"), Converged: boolPtr(false), Steps: intPtr(4)}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"reductions[0] (bbab): expected normal form b, got ab",
		"reductions[0] (bbab): expected converged=false, got true",
		"reductions[0] (bbab): expected 4 steps, got 2",
	}, result.Errors)

	// The trace is recorded even when expectations fail
	require.Len(t, result.Reductions, 1)
	assert.Equal(t, []string{"bbab", "bab", "ab"}, result.Reductions[0].Trace)
}

func TestRun_EmptyWordShownAsEpsilon(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "The empty word is its own normal form",
		System:      "lab1",
		RuleSet:     "minimal",
		Reductions: []Reduction{
			{Word: "", Expect: &ExpectClause{Steps: intPtr(1)}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, []string{"reductions[0] (\u03b5): expected 1 steps, got 0"}, result.Errors)
}

func TestRun_StepCap(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/toy_grow.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	r := result.Reductions[0]
	assert.False(t, r.Converged)
	assert.Equal(t, 5, r.Steps)
	assert.Len(t, r.Trace, 6)
}

func TestRun_DefaultStepCap(t *testing.T) {
	scenario := &Scenario{
		Name:        "default_cap",
		Description: "Zero step cap selects the engine default",
		SystemFile:  filepath.Join("testdata", "systems", "toy.cue"),
		RuleSet:     "grow",
		Reductions:  []Reduction{{Word: "x"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, 1000, result.Reductions[0].Steps)
	assert.False(t, result.Reductions[0].Converged)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *Scenario
		wantErr  string
	}{
		{
			name:     "unknown builtin",
			scenario: &Scenario{System: "lab9", RuleSet: "minimal"},
			wantErr:  `no builtin system "lab9"`,
		},
		{
			name:     "unknown rule set",
			scenario: &Scenario{System: "lab1", RuleSet: "maximal"},
			wantErr:  `system lab1 has no rule set "maximal"`,
		},
		{
			name: "unknown system in file",
			scenario: &Scenario{
				SystemFile: filepath.Join("testdata", "systems", "toy.cue"),
				System:     "lab1",
				RuleSet:    "sort",
			},
			wantErr: `defines no system "lab1"`,
		},
		{
			name: "unknown assertion against",
			scenario: &Scenario{
				System:     "lab1",
				RuleSet:    "minimal",
				Assertions: []Assertion{{Type: AssertEquivalent, Against: "maximal"}},
			},
			wantErr: `assertions[0]: system lab1 has no rule set "maximal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_Scenarios(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario, WithJobs(4))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestLoadSystem(t *testing.T) {
	sys, err := LoadSystem(&Scenario{System: "lab1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "minimal"}, sys.RuleSetNames())

	sys, err = LoadSystem(&Scenario{SystemFile: filepath.Join("testdata", "systems", "toy.cue")})
	require.NoError(t, err)
	assert.Equal(t, "toy", sys.Name)
	assert.Equal(t, "xy", sys.Alphabet)
	assert.Equal(t, []string{"sort", "grow"}, sys.RuleSetNames())
}
