package compiler

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/roach88/semithue/internal/ir"
)

//go:embed systems/*.cue
var builtinFS embed.FS

// Builtin compiles the systems shipped with the binary, sorted by file name.
func Builtin() ([]*ir.System, error) {
	files, err := fs.Glob(builtinFS, "systems/*.cue")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var systems []*ir.System
	for _, name := range files {
		src, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		compiled, err := CompileSource(name, src)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", name, err)
		}
		systems = append(systems, compiled...)
	}
	return systems, nil
}

// BuiltinSystem returns the builtin system with the given name.
func BuiltinSystem(name string) (*ir.System, error) {
	systems, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, sys := range systems {
		if sys.Name == name {
			return sys, nil
		}
	}
	return nil, fmt.Errorf("no builtin system %q", name)
}
