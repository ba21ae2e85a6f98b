package equiv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/semithue/internal/campaign"
	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/ir"
)

// Defaults of an equivalence campaign.
const (
	DefaultTrials  = 2000
	DefaultMinLen  = 1
	DefaultMaxLen  = 25
	DefaultStepCap = 1000
	DefaultSamples = 12
	DefaultSeed    = 123456
)

// Config parameterises a campaign.
type Config struct {
	Trials  int          `json:"trials"`
	Words   gen.WordSpec `json:"words"`
	StepCap int          `json:"step_cap"`
	Samples int          `json:"samples"` // max counterexamples retained
	Seed    uint64       `json:"seed"`

	Jobs             int           `json:"-"`
	Logger           *slog.Logger  `json:"-"`
	ProgressInterval time.Duration `json:"-"`
}

// DefaultConfig returns the default campaign over alphabet.
func DefaultConfig(alphabet string) Config {
	return Config{
		Trials:  DefaultTrials,
		Words:   gen.WordSpec{Alphabet: alphabet, MinLen: DefaultMinLen, MaxLen: DefaultMaxLen},
		StepCap: DefaultStepCap,
		Samples: DefaultSamples,
		Seed:    DefaultSeed,
	}
}

// Validate checks the campaign parameters.
func (c Config) Validate() error {
	if c.Trials < 0 {
		return fmt.Errorf("trials must be non-negative, got %d", c.Trials)
	}
	if c.StepCap <= 0 {
		return fmt.Errorf("step cap must be positive, got %d", c.StepCap)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", c.Samples)
	}
	if err := c.Words.Validate(); err != nil {
		return fmt.Errorf("words: %w", err)
	}
	return nil
}

// Report is the outcome of an equivalence campaign.
type Report struct {
	RuleSetA        string       `json:"rule_set_a"`
	RuleSetB        string       `json:"rule_set_b"`
	HashA           string       `json:"hash_a"`
	HashB           string       `json:"hash_b"`
	Config          Config       `json:"config"`
	Trials          int          `json:"trials"`
	Successes       int          `json:"successes"`
	Mismatches      int          `json:"mismatches"`
	NonTerminations int          `json:"non_terminations"`
	Counterexamples []Comparison `json:"counterexamples"`
}

// Failures counts every trial that did not agree.
func (r *Report) Failures() int {
	return r.Mismatches + r.NonTerminations
}

// Equivalent reports whether no trial found a difference.
func (r *Report) Equivalent() bool {
	return r.Failures() == 0
}

// RunCampaign fuzzes rule sets a and b against each other.
//
// Counterexamples (mismatches and non-terminations) are retained in trial
// order, up to cfg.Samples, with their full traces.
func RunCampaign(ctx context.Context, cfg Config, a, b ir.RuleSet) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	hashA, err := ir.RuleSetHash(a)
	if err != nil {
		return nil, err
	}
	hashB, err := ir.RuleSetHash(b)
	if err != nil {
		return nil, err
	}

	logger.Info("equivalence campaign starting",
		"a", a.Name, "b", b.Name,
		"trials", cfg.Trials, "seed", cfg.Seed, "step_cap", cfg.StepCap,
	)

	// Agreeing trials keep only their verdict; failures keep the full
	// comparison until the fold below picks the samples.
	verdicts := make([]Verdict, cfg.Trials)
	failures := make([]*Comparison, cfg.Trials)

	opts := campaign.Options{
		Name:             "equiv",
		Jobs:             cfg.Jobs,
		Logger:           logger,
		ProgressInterval: cfg.ProgressInterval,
	}
	err = campaign.ForEachTrial(ctx, cfg.Trials, opts, func(trial int) {
		word := cfg.Words.RandomWord(gen.TrialStream(cfg.Seed, trial))
		equal, cmp := Compare(word, a.Rules, b.Rules, cfg.StepCap)
		verdicts[trial] = cmp.Verdict
		if !equal {
			failures[trial] = &cmp
		}
	})
	if err != nil {
		return nil, fmt.Errorf("equivalence campaign aborted: %w", err)
	}

	report := &Report{
		RuleSetA:        a.Name,
		RuleSetB:        b.Name,
		HashA:           hashA,
		HashB:           hashB,
		Config:          cfg,
		Trials:          cfg.Trials,
		Counterexamples: []Comparison{},
	}
	for trial, v := range verdicts {
		switch v {
		case VerdictAgree:
			report.Successes++
			continue
		case VerdictMismatch:
			report.Mismatches++
		case VerdictNonTerminating:
			report.NonTerminations++
		}
		if len(report.Counterexamples) < cfg.Samples {
			report.Counterexamples = append(report.Counterexamples, *failures[trial])
		}
	}

	logger.Info("equivalence campaign finished",
		"successes", report.Successes,
		"mismatches", report.Mismatches,
		"non_terminations", report.NonTerminations,
	)
	return report, nil
}
