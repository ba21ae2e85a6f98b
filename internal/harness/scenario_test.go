package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content to dir/name and returns the path.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/lab1_minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, "lab1_minimal", scenario.Name)
	assert.Equal(t, "lab1", scenario.System)
	assert.Equal(t, "minimal", scenario.RuleSet)
	require.Len(t, scenario.Reductions, 6)
	assert.Equal(t, "bbab", scenario.Reductions[0].Word)
	require.NotNil(t, scenario.Reductions[0].Expect)
	assert.Equal(t, "ab", *scenario.Reductions[0].Expect.NormalForm)
	assert.True(t, *scenario.Reductions[0].Expect.Converged)
	assert.Equal(t, 4, *scenario.Reductions[0].Expect.Steps)

	// Unset expectation fields stay nil
	assert.Nil(t, scenario.Reductions[1].Expect.Converged)
	assert.Nil(t, scenario.Reductions[5].Expect)

	// The empty word survives YAML decoding
	assert.Equal(t, "", scenario.Reductions[2].Word)

	require.Len(t, scenario.Assertions, 3)
	assert.Equal(t, AssertEquivalent, scenario.Assertions[0].Type)
	assert.Equal(t, "original", scenario.Assertions[0].Against)
	assert.Equal(t, 300, scenario.Assertions[0].Trials)
	assert.Equal(t, 15, scenario.Assertions[0].MaxLen)
	assert.Equal(t, 8, scenario.Assertions[2].Bound)
}

func TestLoadScenario_ResolvesSystemFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/toy_sort.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "systems", "toy.cue"), scenario.SystemFile)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	content := `
name: based
description: "Resolved against an explicit base"
system_file: systems/toy.cue
rule_set: sort
reductions:
  - word: yx
`
	path := writeScenario(t, dir, "based.yaml", content)

	base, err := filepath.Abs("testdata")
	require.NoError(t, err)

	scenario, err := LoadScenarioWithBasePath(path, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "systems", "toy.cue"), scenario.SystemFile)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	content := `
name: typo
description: "Misspelled reductions"
system: lab1
rule_set: minimal
reduction:
  - word: ab
`
	path := writeScenario(t, dir, "typo.yaml", content)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "reduction")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", "name: [unterminated\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "d"
system: lab1
rule_set: minimal
reductions: [{word: ab}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
system: lab1
rule_set: minimal
reductions: [{word: ab}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing system",
			content: `
name: n
description: "d"
rule_set: minimal
reductions: [{word: ab}]
`,
			wantErr: "system or system_file is required",
		},
		{
			name: "system file not found",
			content: `
name: n
description: "d"
system_file: nowhere.cue
rule_set: minimal
reductions: [{word: ab}]
`,
			wantErr: "system file not found",
		},
		{
			name: "missing rule set",
			content: `
name: n
description: "d"
system: lab1
reductions: [{word: ab}]
`,
			wantErr: "rule_set is required",
		},
		{
			name: "negative step cap",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
step_cap: -1
reductions: [{word: ab}]
`,
			wantErr: "step_cap must be non-negative",
		},
		{
			name: "nothing to check",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
`,
			wantErr: "reductions or assertions must be non-empty",
		},
		{
			name: "negative steps",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
reductions:
  - word: ab
    expect: {steps: -2}
`,
			wantErr: "reductions[0].expect: steps must be non-negative",
		},
		{
			name: "assertion without type",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
assertions:
  - trials: 10
`,
			wantErr: "assertions[0]: type is required",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
assertions:
  - type: confluent
`,
			wantErr: `unknown assertion type "confluent"`,
		},
		{
			name: "equivalent without against",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
assertions:
  - type: equivalent
`,
			wantErr: "against is required for equivalent",
		},
		{
			name: "negative campaign parameter",
			content: `
name: n
description: "d"
system: lab1
rule_set: minimal
assertions:
  - type: chains_consistent
    trials: -5
`,
			wantErr: "parameters must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"lab1_minimal.yaml", "lab1_original.yaml", "toy_grow.yaml", "toy_sort.yaml"}, names)
}

func TestFindScenarioFiles_Filter(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "toy_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = FindScenarioFiles("testdata/scenarios", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
