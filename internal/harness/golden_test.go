package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalTraces_Canonical(t *testing.T) {
	scenario := &Scenario{Name: "n", RuleSet: "minimal"}
	result := NewResult()
	result.Reductions = append(result.Reductions, ReductionTrace{
		Word:      "aab",
		Final:     "ab",
		Converged: true,
		Steps:     1,
		Trace:     []string{"aab", "ab"},
	})

	data, err := MarshalTraces(scenario, result)
	require.NoError(t, err)

	// Keys sorted, no whitespace
	assert.Equal(t,
		`{"reductions":[{"converged":true,"final":"ab","steps":1,"trace":["aab","ab"],"word":"aab"}],"rule_set":"minimal","scenario_name":"n"}`,
		string(data))
}

func TestMarshalTraces_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/lab1_original.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := MarshalTraces(scenario, first)
	require.NoError(t, err)
	b, err := MarshalTraces(scenario, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/toy_sort.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, scenario, result))
}
