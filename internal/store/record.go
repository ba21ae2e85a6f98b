package store

import (
	"fmt"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
)

// EquivRecord builds the run and samples of an equivalence report.
// The run's ID and Seq are assigned when it is written.
func EquivRecord(sys *ir.System, report *equiv.Report) (Run, []Sample, error) {
	run, err := baseRun(KindEquiv, sys, report.Config)
	if err != nil {
		return Run{}, nil, err
	}
	run.Subject = report.RuleSetA
	run.SubjectHash = report.HashA
	run.Against = report.RuleSetB
	run.AgainstHash = report.HashB
	run.Trials = report.Trials
	run.Passed = report.Successes
	run.Failed = report.Mismatches
	run.Inconclusive = report.NonTerminations

	samples := make([]Sample, len(report.Counterexamples))
	for i, cmp := range report.Counterexamples {
		detail, err := marshalJSON(cmp)
		if err != nil {
			return Run{}, nil, err
		}
		samples[i] = Sample{Index: i, Verdict: string(cmp.Verdict), Word: cmp.Word, Detail: detail}
	}
	return run, samples, nil
}

// MetamorphicRecord builds the run and samples of a metamorphic report.
// The run's ID and Seq are assigned when it is written.
func MetamorphicRecord(sys *ir.System, report *metamorphic.Report) (Run, []Sample, error) {
	run, err := baseRun(KindMetamorphic, sys, report.Config)
	if err != nil {
		return Run{}, nil, err
	}
	run.Subject = report.RuleSet
	run.SubjectHash = report.Hash
	run.Against = report.Reference
	run.AgainstHash = report.ReferenceHash
	run.Trials = report.Trials
	run.Passed = report.Consistent
	run.Failed = report.Inconsistent
	run.Inconclusive = report.Inconclusive

	samples := make([]Sample, len(report.Violations))
	for i, v := range report.Violations {
		detail, err := marshalJSON(v)
		if err != nil {
			return Run{}, nil, err
		}
		samples[i] = Sample{Index: i, Verdict: string(v.Check.Verdict), Word: v.Word, Detail: detail}
	}
	return run, samples, nil
}

func baseRun(kind RunKind, sys *ir.System, cfg any) (Run, error) {
	systemHash, err := ir.SystemHash(sys)
	if err != nil {
		return Run{}, err
	}
	config, err := marshalJSON(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("%s run config: %w", kind, err)
	}
	return Run{
		Kind:          kind,
		System:        sys.Name,
		SystemHash:    systemHash,
		Config:        config,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}
