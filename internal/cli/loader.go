package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"

	"github.com/roach88/semithue/internal/compiler"
	"github.com/roach88/semithue/internal/ir"
)

// LoadMode controls how errors are handled during system loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the systems loaded from a path.
type LoadResult struct {
	Systems   []*ir.System
	FileCount int  // Number of CUE files compiled
	Builtin   bool // Systems came from the embedded set
}

// LoadError represents an error that occurred during system loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSystems compiles the systems defined at path: a single CUE file, or
// every CUE file under a directory. An empty path loads the builtin systems.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSystems(path string, mode LoadMode) (*LoadResult, []error) {
	if path == "" {
		systems, err := compiler.Builtin()
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("builtin systems: %v", err)}}
		}
		return &LoadResult{Systems: systems, Builtin: true}, nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("systems path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing systems path: %v", err)}}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", file, err)})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		systems, err := compiler.CompileSource(file, src)
		if err != nil {
			errs = append(errs, convertCompileError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Systems = append(result.Systems, systems...)
	}

	return result, errs
}

// LoadSystem loads the systems at path and selects one by name. An empty
// name is allowed when exactly one system is defined.
func LoadSystem(path, name string) (*ir.System, error) {
	result, errs := LoadSystems(path, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return selectSystem(result.Systems, name)
}

func selectSystem(systems []*ir.System, name string) (*ir.System, error) {
	if name == "" {
		if len(systems) != 1 {
			return nil, &LoadError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("%d systems defined; select one with --name", len(systems)),
			}
		}
		return systems[0], nil
	}
	for _, sys := range systems {
		if sys.Name == name {
			return sys, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("system %q not found", name)}
}

// ruleSet looks up a rule set of sys, as a command error when missing.
func ruleSet(sys *ir.System, name string) (ir.RuleSet, error) {
	rs, ok := sys.RuleSet(name)
	if !ok {
		return ir.RuleSet{}, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("system %s has no rule set %q (have %v)", sys.Name, name, sys.RuleSetNames()),
		}
	}
	return rs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths in
// lexical order.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // File read failed
	ErrCodeNotFound    = "E005" // Path, system, rule set or run not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeStore       = "E007" // Run store error

	// Invariant validation errors
	ErrCodeInvariantRule = "E120" // A reference rule changes an invariant
	ErrCodeCoupling      = "E121" // The forced tail does not follow from the rules
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "alphabet":
		return compiler.ErrAlphabetEmpty
	case "rule_set":
		return compiler.ErrNoRuleSets
	case "modulus":
		return compiler.ErrInvalidModulus
	case "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeGeneric
	}
}
