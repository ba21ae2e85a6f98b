package metamorphic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/semithue/internal/campaign"
	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
)

// Defaults of a metamorphic campaign.
const (
	DefaultTrials   = 5000
	DefaultMinLen   = 3
	DefaultMaxLen   = 14
	DefaultMinSteps = 3
	DefaultMaxSteps = 15
	DefaultSamples  = 10
	DefaultSeed     = 123456
)

// Config parameterises a campaign.
type Config struct {
	Trials   int          `json:"trials"`
	Words    gen.WordSpec `json:"words"`
	MinSteps int          `json:"min_steps"`
	MaxSteps int          `json:"max_steps"`
	Samples  int          `json:"samples"` // max violations retained
	Seed     uint64       `json:"seed"`
	StepCap  int          `json:"step_cap"` // invariant normal form cap; 0 = the set's

	Jobs             int           `json:"-"`
	Logger           *slog.Logger  `json:"-"`
	ProgressInterval time.Duration `json:"-"`
}

// DefaultConfig returns the default campaign over alphabet.
func DefaultConfig(alphabet string) Config {
	return Config{
		Trials:   DefaultTrials,
		Words:    gen.WordSpec{Alphabet: alphabet, MinLen: DefaultMinLen, MaxLen: DefaultMaxLen},
		MinSteps: DefaultMinSteps,
		MaxSteps: DefaultMaxSteps,
		Samples:  DefaultSamples,
		Seed:     DefaultSeed,
		StepCap:  invariant.DefaultStepCap,
	}
}

// Validate checks the campaign parameters.
func (c Config) Validate() error {
	if c.Trials < 0 {
		return fmt.Errorf("trials must be non-negative, got %d", c.Trials)
	}
	if c.MinSteps < 0 {
		return fmt.Errorf("min steps must be non-negative, got %d", c.MinSteps)
	}
	if c.MaxSteps < c.MinSteps {
		return fmt.Errorf("max steps %d is less than min steps %d", c.MaxSteps, c.MinSteps)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", c.Samples)
	}
	if c.StepCap < 0 {
		return fmt.Errorf("step cap must be non-negative, got %d", c.StepCap)
	}
	if err := c.Words.Validate(); err != nil {
		return fmt.Errorf("words: %w", err)
	}
	return nil
}

// Violation is one inconsistent chain.
type Violation struct {
	Trial     int                `json:"trial"`
	Base      invariant.Snapshot `json:"base"`
	Violating invariant.Snapshot `json:"violating"`
	Word      string             `json:"word"`
	Check     invariant.Check    `json:"check"`
	Chain     []string           `json:"chain"`
}

// Report is the outcome of a metamorphic campaign.
type Report struct {
	RuleSet       string      `json:"rule_set"`
	Reference     string      `json:"reference"`
	Hash          string      `json:"hash"`
	ReferenceHash string      `json:"reference_hash"`
	Config        Config      `json:"config"`
	Trials        int         `json:"trials"`
	Consistent    int         `json:"consistent"`
	Inconsistent  int         `json:"inconsistent"`
	Inconclusive  int         `json:"inconclusive"`
	Violations    []Violation `json:"violations"`
}

// OK reports whether no chain was inconsistent.
func (r *Report) OK() bool {
	return r.Inconsistent == 0
}

// RunCampaign walks random chains with rules and checks each against set.
//
// A chain is counted once: inconsistent if any word violates an invariant,
// otherwise inconclusive if some check could not be decided, otherwise
// consistent. Violations are retained in trial order, up to cfg.Samples.
//
// cfg.StepCap must match the step cap of set; a zero cap is taken from set,
// so the report's config always records it.
func RunCampaign(ctx context.Context, cfg Config, rules ir.RuleSet, set *invariant.Set) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign config: %w", err)
	}
	switch {
	case cfg.StepCap == 0:
		cfg.StepCap = set.StepCap()
	case cfg.StepCap != set.StepCap():
		return nil, fmt.Errorf("invalid campaign config: step cap %d does not match the invariant step cap %d",
			cfg.StepCap, set.StepCap())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	hash, err := ir.RuleSetHash(rules)
	if err != nil {
		return nil, err
	}
	refHash, err := ir.RuleSetHash(set.Reference())
	if err != nil {
		return nil, err
	}

	logger.Info("metamorphic campaign starting",
		"rule_set", rules.Name, "reference", set.Reference().Name,
		"trials", cfg.Trials, "seed", cfg.Seed,
	)

	checks := make([]ChainCheck, cfg.Trials)
	chains := make([][]string, cfg.Trials)

	opts := campaign.Options{
		Name:             "metamorphic",
		Jobs:             cfg.Jobs,
		Logger:           logger,
		ProgressInterval: cfg.ProgressInterval,
	}
	err = campaign.ForEachTrial(ctx, cfg.Trials, opts, func(trial int) {
		rnd := gen.TrialStream(cfg.Seed, trial)
		start := cfg.Words.RandomWord(rnd)
		chain := RandomChain(start, rules.Rules, cfg.MinSteps, cfg.MaxSteps, rnd)
		checks[trial] = CheckChain(set, chain)
		if !checks[trial].Consistent {
			chains[trial] = chain
		}
	})
	if err != nil {
		return nil, fmt.Errorf("metamorphic campaign aborted: %w", err)
	}

	report := &Report{
		RuleSet:       rules.Name,
		Reference:     set.Reference().Name,
		Hash:          hash,
		ReferenceHash: refHash,
		Config:        cfg,
		Trials:        cfg.Trials,
		Violations:    []Violation{},
	}
	for trial, c := range checks {
		switch {
		case !c.Consistent:
			report.Inconsistent++
			if len(report.Violations) < cfg.Samples {
				report.Violations = append(report.Violations, Violation{
					Trial:     trial,
					Base:      c.Base,
					Violating: *c.Violating,
					Word:      *c.Word,
					Check:     c.Check,
					Chain:     chains[trial],
				})
			}
		case c.Inconclusive:
			report.Inconclusive++
		default:
			report.Consistent++
		}
	}

	logger.Info("metamorphic campaign finished",
		"consistent", report.Consistent,
		"inconsistent", report.Inconsistent,
		"inconclusive", report.Inconclusive,
	)
	return report, nil
}
