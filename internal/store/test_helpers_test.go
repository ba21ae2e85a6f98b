package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/invariant"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
	"github.com/roach88/semithue/internal/testutil"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sequentialIDs returns run IDs run-1, run-2, ...
type sequentialIDs struct{ n int }

func (g *sequentialIDs) Generate() string {
	g.n++
	return fmt.Sprintf("run-%d", g.n)
}

// mismatchReport runs a small equivalence campaign between two rule sets
// that disagree on every word containing b.
func mismatchReport(t *testing.T) *equiv.Report {
	t.Helper()
	a := ir.RuleSet{Name: "to-a", Rules: []ir.Rule{{LHS: "b", RHS: "a"}}}
	b := ir.RuleSet{Name: "drop", Rules: []ir.Rule{{LHS: "b", RHS: ""}}}

	cfg := equiv.DefaultConfig("ab")
	cfg.Trials = 50
	cfg.Samples = 3
	report, err := equiv.RunCampaign(context.Background(), cfg, a, b)
	if err != nil {
		t.Fatalf("RunCampaign() failed: %v", err)
	}
	return report
}

// violationReport runs a small metamorphic campaign walking with a rule
// that breaks the lab invariants.
func violationReport(t *testing.T) *metamorphic.Report {
	t.Helper()
	set, err := invariant.New(testutil.LabSystem())
	if err != nil {
		t.Fatalf("invariant.New() failed: %v", err)
	}
	breaking := ir.RuleSet{Name: "breaking", Rules: []ir.Rule{{LHS: "b", RHS: "a"}}}

	cfg := metamorphic.DefaultConfig("ab")
	cfg.Trials = 200
	cfg.Samples = 2
	report, err := metamorphic.RunCampaign(context.Background(), cfg, breaking, set)
	if err != nil {
		t.Fatalf("RunCampaign() failed: %v", err)
	}
	return report
}
