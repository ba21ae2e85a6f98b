package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
)

// Traces longer than traceLimit words are shown as their first and last
// traceKeep words.
const (
	traceLimit = 20
	traceKeep  = 8
)

// formatTrace renders a trace as "w0 -> w1 -> ...".
func formatTrace(trace []string) string {
	words := make([]string, len(trace))
	for i, w := range trace {
		words[i] = ir.Show(w)
	}
	if len(words) <= traceLimit {
		return strings.Join(words, " -> ")
	}
	head := strings.Join(words[:traceKeep], " -> ")
	tail := strings.Join(words[len(words)-traceKeep:], " -> ")
	return head + " ... " + tail
}

// describeOutcome renders the end of a reduction, e.g. "ab (finished, 4 steps)".
func describeOutcome(out ir.Outcome) string {
	state := "finished"
	if !out.Converged {
		state = "NOT finished"
	}
	return fmt.Sprintf("%s (%s, %d steps)", ir.Show(out.Final), state, out.Steps())
}

// renderEquivReport writes an equivalence report for humans.
func renderEquivReport(w io.Writer, system string, r *equiv.Report) error {
	fmt.Fprintln(w, "Fuzz-equivalence test")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "System           : %s\n", system)
	fmt.Fprintf(w, "Rule sets        : A=%s B=%s\n", r.RuleSetA, r.RuleSetB)
	fmt.Fprintf(w, "Trials           : %d\n", r.Trials)
	fmt.Fprintf(w, "Successes (match): %d\n", r.Successes)
	fmt.Fprintf(w, "Failures         : %d\n", r.Failures())
	fmt.Fprintf(w, "  of failures due to non-termination (step limit): %d\n", r.NonTerminations)
	fmt.Fprintln(w)

	if len(r.Counterexamples) == 0 {
		fmt.Fprintln(w, "No counterexamples found.")
	} else {
		fmt.Fprintf(w, "Sample counterexamples (up to %d):\n", r.Config.Samples)
		for i, c := range r.Counterexamples {
			fmt.Fprintf(w, "\n--- Example #%d (%s) ---\n", i+1, c.Verdict)
			fmt.Fprintf(w, "start word : %s\n", ir.Show(c.Word))
			fmt.Fprintf(w, "A nf       : %s\n", describeOutcome(c.A))
			fmt.Fprintf(w, "B nf       : %s\n", describeOutcome(c.B))
			fmt.Fprintf(w, "trace A    : %s\n", formatTrace(c.A.Trace))
			fmt.Fprintf(w, "trace B    : %s\n", formatTrace(c.B.Trace))
		}
	}

	fmt.Fprintln(w)
	if r.Equivalent() {
		fmt.Fprintln(w, "✓ All tested words reduced to the same normal form under both rule sets.")
	} else {
		fmt.Fprintf(w, "✗ Found %d failures in %d trials.\n", r.Failures(), r.Trials)
	}
	return nil
}

// renderMetamorphicReport writes a metamorphic report for humans.
func renderMetamorphicReport(w io.Writer, system string, r *metamorphic.Report) error {
	fmt.Fprintln(w, "Metamorphic test")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "System           : %s\n", system)
	fmt.Fprintf(w, "Rule set         : %s (invariants of %s)\n", r.RuleSet, r.Reference)
	fmt.Fprintf(w, "Chains           : %d\n", r.Trials)
	fmt.Fprintf(w, "Consistent       : %d\n", r.Consistent)
	fmt.Fprintf(w, "Inconsistent     : %d\n", r.Inconsistent)
	fmt.Fprintf(w, "Inconclusive     : %d\n", r.Inconclusive)

	if len(r.Violations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Sample violations (up to %d):\n", r.Config.Samples)
		for i, v := range r.Violations {
			fmt.Fprintf(w, "\n--- Violation #%d (trial %d) ---\n", i+1, v.Trial)
			fmt.Fprintf(w, "base      : %s\n", v.Base)
			fmt.Fprintf(w, "violating : %s\n", v.Violating)
			fmt.Fprintf(w, "word      : %s\n", ir.Show(v.Word))
			fmt.Fprintf(w, "broken    : %s: %s\n", v.Check.Invariant, v.Check.Reason)
			fmt.Fprintf(w, "chain     : %s\n", formatTrace(v.Chain))
		}
	}

	fmt.Fprintln(w)
	if r.OK() {
		fmt.Fprintln(w, "✓ Invariants held along every chain.")
	} else {
		fmt.Fprintf(w, "✗ Found %d inconsistent chains in %d trials.\n", r.Inconsistent, r.Trials)
	}
	return nil
}
