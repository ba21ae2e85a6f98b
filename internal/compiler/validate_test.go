package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/testutil"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateLabSystemValid(t *testing.T) {
	assert.Empty(t, Validate(testutil.LabSystem()))
}

func TestValidateSystemWithoutInvariants(t *testing.T) {
	sys := testutil.LabSystem()
	sys.Invariants = ir.InvariantConfig{}
	assert.Empty(t, Validate(sys))
}

func TestValidateAlphabet(t *testing.T) {
	sys := &ir.System{Name: "s", RuleSets: []ir.RuleSet{{Name: "r"}}}
	assert.Equal(t, []string{ErrAlphabetEmpty}, codes(Validate(sys)))

	sys.Alphabet = "aba"
	errs := Validate(sys)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrAlphabetDuplicate, errs[0].Code)
	assert.Contains(t, errs[0].Message, `'a'`)
}

func TestValidateNoRuleSets(t *testing.T) {
	sys := &ir.System{Name: "s", Alphabet: "ab"}
	assert.Equal(t, []string{ErrNoRuleSets}, codes(Validate(sys)))
}

func TestValidateDuplicateRuleSet(t *testing.T) {
	sys := &ir.System{
		Name:     "s",
		Alphabet: "ab",
		RuleSets: []ir.RuleSet{{Name: "r"}, {Name: "r"}},
	}
	errs := Validate(sys)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateRuleSet, errs[0].Code)
	assert.Equal(t, "rule_set.r", errs[0].Field)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []ir.Rule
		want  []string
	}{
		{
			name:  "empty lhs",
			rules: []ir.Rule{{LHS: "", RHS: "a"}},
			want:  []string{ErrEmptyLHS},
		},
		{
			name:  "foreign symbol in lhs",
			rules: []ir.Rule{{LHS: "ac", RHS: "a"}},
			want:  []string{ErrForeignSymbol},
		},
		{
			name:  "foreign symbols on both sides reported once",
			rules: []ir.Rule{{LHS: "c", RHS: "d"}},
			want:  []string{ErrForeignSymbol},
		},
		{
			name:  "trivial rule",
			rules: []ir.Rule{{LHS: "ab", RHS: "ab"}},
			want:  []string{ErrTrivialRule},
		},
		{
			name:  "duplicate rule",
			rules: []ir.Rule{{LHS: "ab", RHS: "a"}, {LHS: "b", RHS: "a"}, {LHS: "ab", RHS: "a"}},
			want:  []string{ErrDuplicateRule},
		},
		{
			name:  "same lhs different rhs is allowed",
			rules: []ir.Rule{{LHS: "ab", RHS: "a"}, {LHS: "ab", RHS: "b"}},
			want:  []string{},
		},
		{
			name:  "empty rhs is allowed",
			rules: []ir.Rule{{LHS: "ab", RHS: ""}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &ir.System{
				Name:     "s",
				Alphabet: "ab",
				RuleSets: []ir.RuleSet{{Name: "r", Rules: tt.rules}},
			}
			assert.Equal(t, tt.want, codes(Validate(sys)))
		})
	}
}

func TestValidateDuplicateRuleNamesFirstIndex(t *testing.T) {
	sys := &ir.System{
		Name:     "s",
		Alphabet: "ab",
		RuleSets: []ir.RuleSet{{Name: "r", Rules: []ir.Rule{{LHS: "ab", RHS: "a"}, {LHS: "ab", RHS: "a"}}}},
	}
	errs := Validate(sys)
	require.Len(t, errs, 1)
	assert.Equal(t, "rule_set.r[1]", errs[0].Field)
	assert.Contains(t, errs[0].Message, "duplicates rule 0")
	assert.Equal(t, "[E107] rule_set.r[1]: rule ab -> a duplicates rule 0", errs[0].Error())
}

func TestValidateInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.InvariantConfig)
		want   []string
	}{
		{
			name:   "designated not in alphabet",
			mutate: func(c *ir.InvariantConfig) { c.Designated = "c" },
			want:   []string{ErrInvalidDesignated},
		},
		{
			name:   "designated too long",
			mutate: func(c *ir.InvariantConfig) { c.Designated = "ab" },
			want:   []string{ErrInvalidDesignated},
		},
		{
			name:   "designated empty",
			mutate: func(c *ir.InvariantConfig) { c.Designated = "" },
			want:   []string{ErrInvalidDesignated},
		},
		{
			name:   "zero modulus",
			mutate: func(c *ir.InvariantConfig) { c.Modulus = 0 },
			want:   []string{ErrInvalidModulus},
		},
		{
			name:   "unknown reference",
			mutate: func(c *ir.InvariantConfig) { c.Reference = "tiny" },
			want:   []string{ErrUnknownReference},
		},
		{
			name:   "forced tail outside alphabet",
			mutate: func(c *ir.InvariantConfig) { c.ForcedTail = "ax" },
			want:   []string{ErrForeignForcedTail},
		},
		{
			name:   "forced tail disabled",
			mutate: func(c *ir.InvariantConfig) { c.ForcedTail = "" },
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := testutil.LabSystem()
			tt.mutate(&sys.Invariants)
			assert.Equal(t, tt.want, codes(Validate(sys)))
		})
	}
}

func TestValidationErrorWithLine(t *testing.T) {
	err := ValidationError{Field: "alphabet", Message: "m", Code: ErrAlphabetEmpty, Line: 3}
	assert.Equal(t, "[E101] line 3: alphabet: m", err.Error())
}
