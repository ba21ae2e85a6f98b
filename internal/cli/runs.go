package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
	"github.com/roach88/semithue/internal/queryir"
	"github.com/roach88/semithue/internal/store"
)

// RunsOptions holds flags shared by the runs subcommands.
type RunsOptions struct {
	*RootOptions
	Database string
}

// ListOptions holds filter flags for runs list.
type ListOptions struct {
	*RunsOptions
	Kind    string
	System  string
	RuleSet string
	Failing bool
	Last    int
}

// ReplayOptions holds flags for runs replay.
type ReplayOptions struct {
	*RunsOptions
	SystemPath string
	Jobs       int
}

// RunDetail is a stored run with its samples.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Samples []store.Sample `json:"samples"`
}

// ReplayResult holds the outcome of replaying a stored run.
type ReplayResult struct {
	RunID         string   `json:"run_id"`
	Kind          string   `json:"kind"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// NewRunsCommand creates the runs command and its subcommands.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and replay recorded campaigns",
		Long: `Inspect campaign runs recorded with --db and replay them.

Examples:
  semithue runs list --db ./runs.db
  semithue runs show <run-id> --db ./runs.db
  semithue runs replay last --db ./runs.db
  semithue runs delete <run-id> --db ./runs.db

A run ID of "last" selects the most recently recorded run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newRunsListCommand(opts))
	cmd.AddCommand(newRunsShowCommand(opts))
	cmd.AddCommand(newRunsReplayCommand(opts))
	cmd.AddCommand(newRunsDeleteCommand(opts))

	return cmd
}

func newRunsListCommand(runsOpts *RunsOptions) *cobra.Command {
	opts := &ListOptions{RunsOptions: runsOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Long: `List recorded runs in the order they were recorded.

Filters combine; a run is listed when it matches all of them.

Examples:
  semithue runs list --db ./runs.db --kind equiv --failing
  semithue runs list --db ./runs.db --rule-set minimal --last 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only runs of this kind (equiv, metamorphic)")
	cmd.Flags().StringVar(&opts.System, "system", "", "only runs of this system")
	cmd.Flags().StringVar(&opts.RuleSet, "rule-set", "", "only runs involving this rule set")
	cmd.Flags().BoolVar(&opts.Failing, "failing", false, "only runs with at least one failed trial")
	cmd.Flags().IntVar(&opts.Last, "last", 0, "only the most recent N matching runs")

	return cmd
}

func newRunsShowCommand(opts *RunsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show a recorded run and its samples",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(opts, args[0], cmd)
		},
	}
}

func newRunsDeleteCommand(opts *RunsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <run-id>",
		Short:         "Delete a recorded run and its samples",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsDelete(opts, args[0], cmd)
		},
	}
}

func newRunsReplayCommand(runsOpts *RunsOptions) *cobra.Command {
	opts := &ReplayOptions{RunsOptions: runsOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-run a recorded campaign and compare the results",
		Long: `Re-run a recorded campaign with its stored parameters and compare the
fresh results with the record. Campaigns are deterministic, so any
difference means the rules, the engine or the record changed.

Exit codes:
  0 - The replay matched the record
  1 - The replay differed from the record
  2 - Command error (run not found, system not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SystemPath, "system", "", "CUE file or directory defining the system (default: builtin systems)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "parallel workers (results do not depend on it)")

	return cmd
}

// withStore opens the database, runs fn and closes the database.
func (o *RunsOptions) withStore(fn func(st *store.Store) error) error {
	st, err := store.Open(o.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()
	return fn(st)
}

// Query builds the run query selected by the list flags.
func (o *ListOptions) Query() (queryir.Query, error) {
	if o.Kind != "" && o.Kind != string(store.KindEquiv) && o.Kind != string(store.KindMetamorphic) {
		return nil, fmt.Errorf("invalid --kind %q (must be %s or %s)", o.Kind, store.KindEquiv, store.KindMetamorphic)
	}
	if o.Last < 0 {
		return nil, fmt.Errorf("--last must not be negative, got %d", o.Last)
	}

	var preds []queryir.Predicate
	if o.Kind != "" {
		preds = append(preds, queryir.Equals{Field: "kind", Value: o.Kind})
	}
	if o.System != "" {
		preds = append(preds, queryir.Equals{Field: "system", Value: o.System})
	}
	if o.RuleSet != "" {
		preds = append(preds, queryir.Or{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "subject", Value: o.RuleSet},
			queryir.Equals{Field: "against", Value: o.RuleSet},
		}})
	}
	if o.Failing {
		preds = append(preds, queryir.AtLeast{Field: "failed", Min: 1})
	}

	sel := queryir.Select{Last: o.Last}
	if len(preds) > 0 {
		sel.Filter = queryir.And{Predicates: preds}
	}
	return sel, nil
}

func runRunsList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	query, err := opts.Query()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	return opts.withStore(func(st *store.Store) error {
		runs, err := st.QueryRuns(context.Background(), query)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}

		return formatter.Render(runs, func(w io.Writer) error {
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(w, "%4d  %s  %-11s  %s  %s\n", run.Seq, run.ID, run.Kind, run.System, runSubject(run))
				fmt.Fprintf(w, "      trials %d: %d passed, %d failed, %d inconclusive\n",
					run.Trials, run.Passed, run.Failed, run.Inconclusive)
			}
			return nil
		})
	})
}

func runRunsShow(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	return opts.withStore(func(st *store.Store) error {
		ctx := context.Background()
		run, err := readRun(ctx, st, id)
		if err != nil {
			return err
		}
		samples, err := st.ReadSamples(ctx, run.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read samples", err)
		}

		detail := RunDetail{Run: run, Samples: samples}
		return formatter.Render(detail, func(w io.Writer) error {
			fmt.Fprintf(w, "Run %s (#%d)\n", run.ID, run.Seq)
			fmt.Fprintf(w, "  Kind:           %s\n", run.Kind)
			fmt.Fprintf(w, "  System:         %s (%s)\n", run.System, run.SystemHash)
			fmt.Fprintf(w, "  Rule sets:      %s\n", runSubject(run))
			fmt.Fprintf(w, "  Config:         %s\n", run.Config)
			fmt.Fprintf(w, "  Trials:         %d\n", run.Trials)
			fmt.Fprintf(w, "  Passed:         %d\n", run.Passed)
			fmt.Fprintf(w, "  Failed:         %d\n", run.Failed)
			fmt.Fprintf(w, "  Inconclusive:   %d\n", run.Inconclusive)
			fmt.Fprintf(w, "  Engine version: %s\n", run.EngineVersion)
			for _, s := range samples {
				fmt.Fprintf(w, "  [%d] %s %s\n", s.Index, s.Verdict, ir.Show(s.Word))
			}
			return nil
		})
	})
}

func runRunsDelete(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	return opts.withStore(func(st *store.Store) error {
		ctx := context.Background()
		run, err := readRun(ctx, st, id)
		if err != nil {
			return err
		}
		if _, err := st.DeleteRun(ctx, run.ID); err != nil {
			return WrapExitError(ExitCommandError, "failed to delete run", err)
		}

		return formatter.Render(map[string]string{"deleted": run.ID}, func(w io.Writer) error {
			fmt.Fprintf(w, "Deleted run %s\n", run.ID)
			return nil
		})
	})
}

func runRunsReplay(opts *ReplayOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	return opts.withStore(func(st *store.Store) error {
		ctx := context.Background()
		stored, err := readRun(ctx, st, id)
		if err != nil {
			return err
		}
		storedSamples, err := st.ReadSamples(ctx, stored.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read samples", err)
		}

		sys, err := LoadSystem(opts.SystemPath, stored.System)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load system", err)
		}

		fresh, freshSamples, err := replayRun(ctx, opts, sys, stored, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}

		diffs := store.Diff(stored, storedSamples, fresh, freshSamples)
		result := ReplayResult{
			RunID:         stored.ID,
			Kind:          string(stored.Kind),
			Deterministic: len(diffs) == 0,
			Differences:   diffs,
		}
		return outputReplay(formatter, result)
	})
}

// replayRun re-runs the campaign of a stored run and builds its record.
func replayRun(ctx context.Context, opts *ReplayOptions, sys *ir.System, stored store.Run, logger *slog.Logger) (store.Run, []store.Sample, error) {
	switch stored.Kind {
	case store.KindEquiv:
		cfg, err := stored.EquivConfig()
		if err != nil {
			return store.Run{}, nil, err
		}
		cfg.Jobs, cfg.Logger = opts.Jobs, logger
		a, err := ruleSet(sys, stored.Subject)
		if err != nil {
			return store.Run{}, nil, err
		}
		b, err := ruleSet(sys, stored.Against)
		if err != nil {
			return store.Run{}, nil, err
		}
		report, err := equiv.RunCampaign(ctx, cfg, a, b)
		if err != nil {
			return store.Run{}, nil, err
		}
		return store.EquivRecord(sys, report)

	case store.KindMetamorphic:
		cfg, err := stored.MetamorphicConfig()
		if err != nil {
			return store.Run{}, nil, err
		}
		cfg.Jobs, cfg.Logger = opts.Jobs, logger
		set, err := invariant.New(sys, invariant.WithStepCap(cfg.StepCap), invariant.WithLogger(logger))
		if err != nil {
			return store.Run{}, nil, err
		}
		rules, err := ruleSet(sys, stored.Subject)
		if err != nil {
			return store.Run{}, nil, err
		}
		report, err := metamorphic.RunCampaign(ctx, cfg, rules, set)
		if err != nil {
			return store.Run{}, nil, err
		}
		return store.MetamorphicRecord(sys, report)
	}
	return store.Run{}, nil, fmt.Errorf("unknown run kind %q", stored.Kind)
}

// lastRunID selects the most recently recorded run.
const lastRunID = "last"

func readRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	var run store.Run
	var err error
	if id == lastRunID {
		run, err = st.LastRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if id == lastRunID {
			return store.Run{}, NewExitError(ExitCommandError, fmt.Sprintf("%s: no runs recorded", ErrCodeNotFound))
		}
		return store.Run{}, NewExitError(ExitCommandError, fmt.Sprintf("%s: run %s not found", ErrCodeNotFound, id))
	}
	if err != nil {
		return store.Run{}, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	return run, nil
}

func runSubject(run store.Run) string {
	if run.Kind == store.KindEquiv {
		return run.Subject + " vs " + run.Against
	}
	return run.Subject + " (reference " + run.Against + ")"
}

// outputReplay outputs the replay result.
func outputReplay(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Deterministic {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "E_DETERMINISM",
				Message: "replay differs from the recorded run",
			}
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Deterministic {
			fmt.Fprintf(w, "✓ Run %s replayed identically\n", result.RunID)
		} else {
			fmt.Fprintf(w, "✗ Run %s replayed with %d difference(s)\n", result.RunID, len(result.Differences))
			for _, d := range result.Differences {
				fmt.Fprintf(w, "  %s\n", d)
			}
		}
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "replay differs from the recorded run")
	}
	return nil
}
