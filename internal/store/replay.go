package store

import (
	"fmt"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/metamorphic"
)

// EquivConfig decodes the parameters of an equivalence run.
// Execution-only settings (jobs, logger) are left at their zero values.
func (r Run) EquivConfig() (equiv.Config, error) {
	var cfg equiv.Config
	if r.Kind != KindEquiv {
		return cfg, fmt.Errorf("run %s is a %s run", r.ID, r.Kind)
	}
	if err := unmarshalJSON(r.Config, &cfg); err != nil {
		return cfg, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return cfg, nil
}

// MetamorphicConfig decodes the parameters of a metamorphic run.
// Execution-only settings (jobs, logger) are left at their zero values.
// Records without a step cap get invariant.DefaultStepCap.
func (r Run) MetamorphicConfig() (metamorphic.Config, error) {
	var cfg metamorphic.Config
	if r.Kind != KindMetamorphic {
		return cfg, fmt.Errorf("run %s is a %s run", r.ID, r.Kind)
	}
	if err := unmarshalJSON(r.Config, &cfg); err != nil {
		return cfg, fmt.Errorf("run %s: %w", r.ID, err)
	}
	if cfg.StepCap == 0 {
		cfg.StepCap = invariant.DefaultStepCap
	}
	return cfg, nil
}

// Diff compares a stored run with a fresh run of the same campaign and
// returns a description of every difference. Campaigns are deterministic,
// so any difference means the rules, the engine, or the stored record
// changed.
//
// IDs and seqs are not compared.
func Diff(stored Run, storedSamples []Sample, fresh Run, freshSamples []Sample) []string {
	var diffs []string
	field := func(name string, a, b any) {
		if a != b {
			diffs = append(diffs, fmt.Sprintf("%s: stored %v, replayed %v", name, a, b))
		}
	}

	field("kind", stored.Kind, fresh.Kind)
	field("system_hash", stored.SystemHash, fresh.SystemHash)
	field("subject_hash", stored.SubjectHash, fresh.SubjectHash)
	field("against_hash", stored.AgainstHash, fresh.AgainstHash)
	field("config", stored.Config, fresh.Config)
	field("trials", stored.Trials, fresh.Trials)
	field("passed", stored.Passed, fresh.Passed)
	field("failed", stored.Failed, fresh.Failed)
	field("inconclusive", stored.Inconclusive, fresh.Inconclusive)

	if len(storedSamples) != len(freshSamples) {
		diffs = append(diffs, fmt.Sprintf("samples: stored %d, replayed %d", len(storedSamples), len(freshSamples)))
		return diffs
	}
	for i := range storedSamples {
		a, b := storedSamples[i], freshSamples[i]
		if a.Verdict != b.Verdict || a.Word != b.Word || a.Detail != b.Detail {
			diffs = append(diffs, fmt.Sprintf("sample %d: stored %s %q, replayed %s %q",
				i, a.Verdict, a.Word, b.Verdict, b.Word))
		}
	}
	return diffs
}
