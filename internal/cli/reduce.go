package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/engine"
	"github.com/roach88/semithue/internal/ir"
)

// SystemOptions selects a rule set of a compiled system.
type SystemOptions struct {
	SystemPath string // CUE file or directory; builtin systems when empty
	Name       string // system name; optional when only one is defined
	RuleSet    string
}

func (o *SystemOptions) addFlags(cmd *cobra.Command, ruleSetUsage, ruleSetDefault string) {
	cmd.Flags().StringVar(&o.SystemPath, "system", "", "CUE file or directory defining the system (default: builtin systems)")
	cmd.Flags().StringVar(&o.Name, "name", "lab1", "system name")
	cmd.Flags().StringVar(&o.RuleSet, "rule-set", ruleSetDefault, ruleSetUsage)
}

// ReduceOptions holds flags for the reduce command.
type ReduceOptions struct {
	*RootOptions
	SystemOptions
	StepCap int
	Strict  bool
}

// ReduceResult holds the reductions of the reduce command.
type ReduceResult struct {
	System     string       `json:"system"`
	RuleSet    string       `json:"rule_set"`
	StepCap    int          `json:"step_cap"`
	Reductions []ir.Outcome `json:"reductions"`
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reduce <word>...",
		Short: "Reduce words to their normal forms",
		Long: `Reduce each word with a rule set and print the reduction trace.

At every step the leftmost occurrence of any left-hand side is rewritten,
preferring the longest left-hand side at that position and then the first
declared rule. Reduction stops at a normal form or after --cap steps.
Use "" for the empty word.

With --strict a word that reaches no normal form within --cap steps is an
error and the command exits with status 1.

Examples:
  semithue reduce bbab abba
  semithue reduce --rule-set original bbab
  semithue reduce --system ./systems --name toy --rule-set sort yxyx`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(opts, args, cmd)
		},
	}

	opts.addFlags(cmd, "rule set to reduce with", "minimal")
	cmd.Flags().IntVar(&opts.StepCap, "cap", engine.DefaultMaxSteps, "maximum rewriting steps per word")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when a word reaches no normal form")

	return cmd
}

func runReduce(opts *ReduceOptions, words []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if opts.StepCap <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--cap must be positive, got %d", opts.StepCap))
	}

	sys, err := LoadSystem(opts.SystemPath, opts.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load system", err)
	}
	rules, err := ruleSet(sys, opts.RuleSet)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select rule set", err)
	}

	eng := engine.New(rules, engine.WithMaxSteps(opts.StepCap), engine.WithLogger(logger))
	result := ReduceResult{
		System:     sys.Name,
		RuleSet:    rules.Name,
		StepCap:    opts.StepCap,
		Reductions: make([]ir.Outcome, len(words)),
	}
	for i, word := range words {
		result.Reductions[i] = eng.Reduce(word)
	}

	err = formatter.Render(result, func(w io.Writer) error {
		for i, out := range result.Reductions {
			fmt.Fprintf(w, "%s => %s\n", ir.Show(words[i]), describeOutcome(out))
			fmt.Fprintf(w, "  %s\n", formatTrace(out.Trace))
		}
		return nil
	})
	if err != nil || !opts.Strict {
		return err
	}
	return checkNormalForms(eng, words)
}

// checkNormalForms fails when some word has no normal form within the
// engine's step cap.
func checkNormalForms(eng *engine.Engine, words []string) error {
	var firstErr error
	diverged := 0
	for _, word := range words {
		_, err := eng.Normalize(word)
		if err == nil {
			continue
		}
		if !engine.IsStepCapExceeded(err) {
			return WrapExitError(ExitCommandError, "reduction failed", err)
		}
		if firstErr == nil {
			firstErr = err
		}
		diverged++
	}
	if diverged == 0 {
		return nil
	}
	return WrapExitError(ExitFailure,
		fmt.Sprintf("%d of %d word(s) reached no normal form within %d steps", diverged, len(words), eng.MaxSteps()),
		firstErr)
}
