package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/compiler"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Bound int
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Systems []string                   `json:"systems,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [systems-path]",
		Short: "Validate rewriting systems",
		Long: `Compile CUE system definitions and report configuration errors.

Checks the alphabet, every rule set (empty left-hand sides, symbols outside
the alphabet, duplicate and trivial rules) and the invariant parameters. For
systems with invariants, checks that no reference rule can change the
designated-symbol presence or the residue, and re-derives the forced
normal-form tail for every word up to --bound symbols.

Without a path the builtin systems are validated.

Exit codes:
  0 - All systems valid
  1 - Validation errors found
  2 - Command error (path not found, no CUE files, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(opts, path, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Bound, "bound", invariant.DefaultCouplingBound, "longest word enumerated for the forced-tail check")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSystems(path, LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	if loadResult.Builtin {
		formatter.VerboseLog("Validating %d builtin system(s)", len(loadResult.Systems))
	} else {
		formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)
	}

	// Compile errors are reported alongside validation errors
	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr),
			})
		}
	}

	var names []string
	for _, sys := range loadResult.Systems {
		formatter.VerboseLog("Validating system: %s", sys.Name)
		names = append(names, sys.Name)
		validationErrors = append(validationErrors, validateSystem(sys, opts.Bound)...)
	}

	if len(loadResult.Systems) == 0 && len(validationErrors) == 0 {
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "systems",
			Message: "no systems found",
			Code:    ErrCodeGeneric,
		})
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, names)
}

// validateSystem runs the schema checks and, when the schema is sound and
// invariants are configured, the invariant checks.
func validateSystem(sys *ir.System, bound int) []compiler.ValidationError {
	prefix := "system." + sys.Name + "."

	errs := compiler.Validate(sys)
	for i := range errs {
		errs[i].Field = prefix + errs[i].Field
	}
	if len(errs) > 0 || sys.Invariants == (ir.InvariantConfig{}) {
		return errs
	}

	set, err := invariant.New(sys)
	if err != nil {
		return append(errs, compiler.ValidationError{
			Field:   prefix + "invariants",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		})
	}
	for _, err := range set.Validate(bound) {
		code := ErrCodeInvariantRule
		if invariant.IsCouplingError(err) {
			code = ErrCodeCoupling
		}
		errs = append(errs, compiler.ValidationError{
			Field:   prefix + "invariants",
			Message: err.Error(),
			Code:    code,
		})
	}
	return errs
}

// getLineFromCuePos extracts the line number of a load error, if known.
func getLineFromCuePos(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, systems []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Systems: systems})
	}

	fmt.Fprintf(formatter.Writer, "✓ All systems valid (%d)\n", len(systems))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
