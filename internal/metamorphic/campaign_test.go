package metamorphic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/testutil"
)

func smallConfig() Config {
	cfg := DefaultConfig("ab")
	cfg.Trials = 300
	return cfg
}

// breaking walks with a rule that can remove the designated symbol.
var breaking = ir.RuleSet{Name: "breaking", Rules: []ir.Rule{{LHS: "b", RHS: "a"}}}

func TestRunCampaign_MinimalRulesConsistent(t *testing.T) {
	report, err := RunCampaign(context.Background(), smallConfig(), testutil.MinimalRules(), labSet(t))
	require.NoError(t, err)

	assert.Equal(t, 300, report.Trials)
	assert.Equal(t, 300, report.Consistent)
	assert.Zero(t, report.Inconsistent)
	assert.Zero(t, report.Inconclusive)
	assert.Empty(t, report.Violations)
	assert.True(t, report.OK())
	assert.Equal(t, "minimal", report.RuleSet)
	assert.Equal(t, "minimal", report.Reference)
	assert.Equal(t, ir.MustRuleSetHash(testutil.MinimalRules()), report.Hash)
}

func TestRunCampaign_BrokenRulesFound(t *testing.T) {
	cfg := smallConfig()
	cfg.Samples = 4
	report, err := RunCampaign(context.Background(), cfg, breaking, labSet(t))
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, report.Trials, report.Consistent+report.Inconsistent+report.Inconclusive)
	require.Len(t, report.Violations, 4)

	prev := -1
	for _, v := range report.Violations {
		assert.Greater(t, v.Trial, prev, "violations are kept in trial order")
		prev = v.Trial
		assert.Equal(t, v.Base.Word, v.Chain[0])
		assert.Contains(t, v.Chain, v.Word)
		assert.Equal(t, v.Word, v.Violating.Word)
	}
}

func TestRunCampaign_DeterministicAcrossJobs(t *testing.T) {
	var reports []*Report
	for _, jobs := range []int{1, 4, 16} {
		cfg := smallConfig()
		cfg.Jobs = jobs
		report, err := RunCampaign(context.Background(), cfg, breaking, labSet(t))
		require.NoError(t, err)
		reports = append(reports, report)
	}

	for _, r := range reports[1:] {
		assert.Equal(t, reports[0].Consistent, r.Consistent)
		assert.Equal(t, reports[0].Inconsistent, r.Inconsistent)
		assert.Equal(t, reports[0].Violations, r.Violations)
	}
}

func TestRunCampaign_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.MinSteps, cfg.MaxSteps = 5, 2
	_, err := RunCampaign(context.Background(), cfg, testutil.MinimalRules(), labSet(t))
	assert.ErrorContains(t, err, "max steps 2 is less than min steps 5")
}

func TestRunCampaign_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunCampaign(ctx, smallConfig(), testutil.MinimalRules(), labSet(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunCampaign_RecordsInvariantStepCap(t *testing.T) {
	cfg := smallConfig()
	cfg.Trials = 20
	cfg.StepCap = 0

	report, err := RunCampaign(context.Background(), cfg, testutil.MinimalRules(), labSet(t, invariant.WithStepCap(500)))
	require.NoError(t, err)
	assert.Equal(t, 500, report.Config.StepCap)

	assert.Equal(t, invariant.DefaultStepCap, DefaultConfig("ab").StepCap)
}

func TestRunCampaign_StepCapMismatch(t *testing.T) {
	cfg := smallConfig()
	cfg.StepCap = 10

	_, err := RunCampaign(context.Background(), cfg, testutil.MinimalRules(), labSet(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step cap 10 does not match the invariant step cap 10000")
}

func TestConfigValidate_NegativeStepCap(t *testing.T) {
	cfg := smallConfig()
	cfg.StepCap = -1
	assert.EqualError(t, cfg.Validate(), "step cap must be non-negative, got -1")
}
