package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchApply(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		match    Match
		expected string
	}{
		{"prefix", "bbab", Match{Pos: 0, Rule: Rule{"bbab", "bab"}}, "bab"},
		{"middle", "abba", Match{Pos: 1, Rule: Rule{"bb", "ab"}}, "aaba"},
		{"suffix", "aaaaa", Match{Pos: 0, Rule: Rule{"aaaaa", "a"}}, "a"},
		{"to empty", "xaby", Match{Pos: 1, Rule: Rule{"ab", ""}}, "xy"},
		{"grow", "ab", Match{Pos: 1, Rule: Rule{"b", "bbb"}}, "abbb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.match.Apply(tt.word))
		})
	}
}

func TestMatchApplyDoesNotMutateInput(t *testing.T) {
	word := "abab"
	_ = Match{Pos: 1, Rule: Rule{"bab", "ab"}}.Apply(word)
	assert.Equal(t, "abab", word)
}

func TestOutcomeSteps(t *testing.T) {
	assert.Equal(t, 0, Outcome{Final: "", Converged: true, Trace: []string{""}}.Steps())
	assert.Equal(t, 2, Outcome{Trace: []string{"bbb", "bab", "ab"}}.Steps())
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "aaaaa -> a", Rule{"aaaaa", "a"}.String())
	assert.Equal(t, "ab -> ε", Rule{"ab", ""}.String())
}

func TestSystemRuleSetLookup(t *testing.T) {
	sys := &System{
		RuleSets: []RuleSet{
			{Name: "original", Rules: []Rule{{"bbb", "bab"}}},
			{Name: "minimal", Rules: []Rule{{"bb", "ab"}}},
		},
	}

	rs, ok := sys.RuleSet("minimal")
	require.True(t, ok)
	assert.Equal(t, "minimal", rs.Name)

	_, ok = sys.RuleSet("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"original", "minimal"}, sys.RuleSetNames())
}

func TestSymbolsAndLen(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Symbols("ab"))
	assert.Equal(t, []string{"α", "β", "α"}, Symbols("αβα"))
	assert.Equal(t, 3, Len("αβα"))
	assert.Equal(t, 0, Len(""))
	assert.Empty(t, Symbols(""))
}

func TestOutcomeJSONTags(t *testing.T) {
	data, err := json.Marshal(Outcome{Final: "ab", Converged: true, Trace: []string{"bb", "ab"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"final":"ab","converged":true,"trace":["bb","ab"]}`, string(data))
}
