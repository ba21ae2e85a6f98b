// Command semithue reduces words under semi-Thue rule sets and runs
// equivalence and metamorphic fuzzing campaigns against them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/semithue/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
