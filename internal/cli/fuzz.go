package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/gen"
	"github.com/roach88/semithue/internal/ir"
)

// FuzzOptions holds flags for the fuzz command.
type FuzzOptions struct {
	*RootOptions
	SystemOptions
	CampaignOptions
	Against string
	StepCap int
}

// FuzzResult holds the outcome of the fuzz command.
type FuzzResult struct {
	System string        `json:"system"`
	RunID  string        `json:"run_id,omitempty"`
	Report *equiv.Report `json:"report"`
}

// NewFuzzCommand creates the fuzz command.
func NewFuzzCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FuzzOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Fuzz two rule sets for equivalence",
		Long: `Reduce random words under two rule sets and compare normal forms.

A trial succeeds when both reductions converge to the same word. A trial
where either side exhausts the step cap counts as a failure due to
non-termination. Results depend only on the seed, never on --jobs.

Exit codes:
  0 - All trials agreed
  1 - Mismatches or non-terminations found
  2 - Command error (unknown system or rule set, invalid parameters, etc.)

Examples:
  semithue fuzz
  semithue fuzz --rule-set minimal --against original --trials 10000
  semithue fuzz --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(opts, cmd)
		},
	}

	opts.SystemOptions.addFlags(cmd, "rule set under test (A)", "minimal")
	opts.CampaignOptions.addFlags(cmd, equiv.DefaultTrials, equiv.DefaultMinLen, equiv.DefaultMaxLen,
		equiv.DefaultSamples, equiv.DefaultSeed)
	cmd.Flags().StringVar(&opts.Against, "against", "original", "rule set to compare with (B)")
	cmd.Flags().IntVar(&opts.StepCap, "cap", equiv.DefaultStepCap, "maximum rewriting steps per reduction")

	return cmd
}

func runFuzz(opts *FuzzOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sys, err := LoadSystem(opts.SystemPath, opts.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load system", err)
	}
	a, err := ruleSet(sys, opts.RuleSet)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select rule set", err)
	}
	b, err := ruleSet(sys, opts.Against)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select rule set", err)
	}

	cfg := equiv.Config{
		Trials:           opts.Trials,
		Words:            gen.WordSpec{Alphabet: sys.Alphabet, MinLen: opts.MinLen, MaxLen: opts.MaxLen},
		StepCap:          opts.StepCap,
		Samples:          opts.Samples,
		Seed:             opts.Seed,
		Jobs:             opts.Jobs,
		Logger:           logger,
		ProgressInterval: opts.Progress,
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid campaign parameters", err)
	}

	ctx, cancel := campaignContext(cmd, logger)
	defer cancel()

	report, err := equiv.RunCampaign(ctx, cfg, a, b)
	if err != nil {
		return WrapExitError(ExitCommandError, "campaign aborted", err)
	}

	result := FuzzResult{System: sys.Name, Report: report}
	if opts.Database != "" {
		runID, err := recordEquivRun(opts, sys, report, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = runID
	}

	if err := formatter.Render(result, func(w io.Writer) error {
		if err := renderEquivReport(w, sys.Name, report); err != nil {
			return err
		}
		if result.RunID != "" {
			fmt.Fprintf(w, "Run recorded: %s\n", result.RunID)
		}
		return nil
	}); err != nil {
		return err
	}

	if !report.Equivalent() {
		return NewExitError(ExitFailure, fmt.Sprintf("found %d failures in %d trials", report.Failures(), report.Trials))
	}
	return nil
}

func recordEquivRun(opts *FuzzOptions, sys *ir.System, report *equiv.Report, logger *slog.Logger) (string, error) {
	st, err := opts.openStore()
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.WriteEquivRun(context.Background(), sys, report)
	if err != nil {
		return "", err
	}
	logger.Info("run recorded", "id", run.ID, "seq", run.Seq, "db", opts.Database)
	return run.ID, nil
}
