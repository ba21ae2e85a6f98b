package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceCommand_Text(t *testing.T) {
	output, err := execute(t, "reduce", "bbab", "abba")
	require.NoError(t, err)

	want := "bbab => ab (finished, 4 steps)\n" +
		"  bbab -> abab -> abb -> aab -> ab\n" +
		"abba => ab (finished, 3 steps)\n" +
		"  abba -> aaba -> aba -> ab\n"
	assert.Equal(t, want, output)
}

func TestReduceCommand_OriginalRuleSet(t *testing.T) {
	output, err := execute(t, "reduce", "--rule-set", "original", "bbab")
	require.NoError(t, err)
	assert.Contains(t, output, "bbab => ab (finished, 2 steps)")
}

func TestReduceCommand_JSON(t *testing.T) {
	output, err := execute(t, "--format", "json", "reduce", "aaaaaaaa")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReduceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "lab1", resp.Data.System)
	assert.Equal(t, "minimal", resp.Data.RuleSet)
	assert.Equal(t, 1000, resp.Data.StepCap)
	require.Len(t, resp.Data.Reductions, 1)
	assert.Equal(t, "aaaa", resp.Data.Reductions[0].Final)
	assert.True(t, resp.Data.Reductions[0].Converged)
}

func TestReduceCommand_StepCap(t *testing.T) {
	output, err := execute(t, "reduce", "--system", toySystemFile, "--name", "toy",
		"--rule-set", "grow", "--cap", "3", "x")
	require.NoError(t, err)

	want := "x => xxxx (NOT finished, 3 steps)\n" +
		"  x -> xx -> xxx -> xxxx\n"
	assert.Equal(t, want, output)
}

func TestReduceCommand_Strict(t *testing.T) {
	output, err := execute(t, "reduce", "--system", toySystemFile, "--name", "toy",
		"--rule-set", "grow", "--cap", "3", "--strict", "x", "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 word(s) reached no normal form within 3 steps")
	assert.Contains(t, err.Error(), "STEP_CAP_EXCEEDED")

	// The traces are still printed
	assert.Contains(t, output, "x => xxxx (NOT finished, 3 steps)")
}

func TestReduceCommand_StrictConverged(t *testing.T) {
	output, err := execute(t, "reduce", "--strict", "bbab", "abba")
	require.NoError(t, err)
	assert.Contains(t, output, "bbab => ab (finished, 4 steps)")
}

func TestReduceCommand_EmptyWord(t *testing.T) {
	output, err := execute(t, "reduce", "")
	require.NoError(t, err)
	assert.Equal(t, "\u03b5 => \u03b5 (finished, 0 steps)\n  \u03b5\n", output)
}

func TestReduceCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no_words", []string{"reduce"}, "requires at least 1 arg"},
		{"unknown_rule_set", []string{"reduce", "--rule-set", "nope", "ab"}, `no rule set "nope"`},
		{"unknown_system", []string{"reduce", "--name", "nope", "ab"}, `system "nope" not found`},
		{"bad_cap", []string{"reduce", "--cap", "0", "ab"}, "--cap must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
