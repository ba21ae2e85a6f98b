package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
)

// MetamorphicOptions holds flags for the metamorphic command.
type MetamorphicOptions struct {
	*RootOptions
	SystemOptions
	CampaignOptions
	MinSteps int
	MaxSteps int
	StepCap  int
}

// MetamorphicResult holds the outcome of the metamorphic command.
type MetamorphicResult struct {
	System string              `json:"system"`
	RunID  string              `json:"run_id,omitempty"`
	Report *metamorphic.Report `json:"report"`
}

// NewMetamorphicCommand creates the metamorphic command.
func NewMetamorphicCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetamorphicOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "metamorphic",
		Short: "Check invariants along random rewriting chains",
		Long: `Walk random chains in the symmetric rewriting relation of a rule set and
check that the system's invariants stay consistent with the normal form of
the chain's start: presence of the designated symbol, the length residue of
words without it, and the forced normal-form tail.

A chain whose normal form could not be computed within --cap steps is
counted as inconclusive, not as a violation.

Exit codes:
  0 - Every chain was consistent or inconclusive
  1 - Inconsistent chains found
  2 - Command error (system without invariants, invalid parameters, etc.)

Examples:
  semithue metamorphic
  semithue metamorphic --trials 20000 --max-steps 30
  semithue metamorphic --db ./runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetamorphic(opts, cmd)
		},
	}

	opts.SystemOptions.addFlags(cmd, "rule set to walk (default: the invariants' reference)", "")
	opts.CampaignOptions.addFlags(cmd, metamorphic.DefaultTrials, metamorphic.DefaultMinLen, metamorphic.DefaultMaxLen,
		metamorphic.DefaultSamples, metamorphic.DefaultSeed)
	cmd.Flags().IntVar(&opts.MinSteps, "min-steps", metamorphic.DefaultMinSteps, "minimum chain steps")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", metamorphic.DefaultMaxSteps, "maximum chain steps")
	cmd.Flags().IntVar(&opts.StepCap, "cap", invariant.DefaultStepCap, "maximum rewriting steps when computing a normal form")

	return cmd
}

func runMetamorphic(opts *MetamorphicOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sys, err := LoadSystem(opts.SystemPath, opts.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load system", err)
	}
	set, err := invariant.New(sys, invariant.WithStepCap(opts.StepCap), invariant.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("system %s has no usable invariants", sys.Name), err)
	}

	name := opts.RuleSet
	if name == "" {
		name = set.Reference().Name
	}
	rules, err := ruleSet(sys, name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select rule set", err)
	}

	cfg := metamorphic.Config{
		Trials:           opts.Trials,
		Words:            gen.WordSpec{Alphabet: sys.Alphabet, MinLen: opts.MinLen, MaxLen: opts.MaxLen},
		MinSteps:         opts.MinSteps,
		MaxSteps:         opts.MaxSteps,
		Samples:          opts.Samples,
		Seed:             opts.Seed,
		StepCap:          opts.StepCap,
		Jobs:             opts.Jobs,
		Logger:           logger,
		ProgressInterval: opts.Progress,
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid campaign parameters", err)
	}

	ctx, cancel := campaignContext(cmd, logger)
	defer cancel()

	report, err := metamorphic.RunCampaign(ctx, cfg, rules, set)
	if err != nil {
		return WrapExitError(ExitCommandError, "campaign aborted", err)
	}

	result := MetamorphicResult{System: sys.Name, Report: report}
	if opts.Database != "" {
		runID, err := recordMetamorphicRun(opts, sys, report, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = runID
	}

	if err := formatter.Render(result, func(w io.Writer) error {
		if err := renderMetamorphicReport(w, sys.Name, report); err != nil {
			return err
		}
		if result.RunID != "" {
			fmt.Fprintf(w, "Run recorded: %s\n", result.RunID)
		}
		return nil
	}); err != nil {
		return err
	}

	if !report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("found %d inconsistent chains in %d trials", report.Inconsistent, report.Trials))
	}
	return nil
}

func recordMetamorphicRun(opts *MetamorphicOptions, sys *ir.System, report *metamorphic.Report, logger *slog.Logger) (string, error) {
	st, err := opts.openStore()
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.WriteMetamorphicRun(context.Background(), sys, report)
	if err != nil {
		return "", err
	}
	logger.Info("run recorded", "id", run.ID, "seq", run.Seq, "db", opts.Database)
	return run.ID, nil
}
