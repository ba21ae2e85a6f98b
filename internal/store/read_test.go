package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/semithue/internal/testutil"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	written, err := s.WriteEquivRun(ctx, testutil.LabSystem(), mismatchReport(t))
	if err != nil {
		t.Fatalf("WriteEquivRun() failed: %v", err)
	}

	read, err := s.ReadRun(ctx, written.ID)
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if !reflect.DeepEqual(written, read) {
		t.Errorf("ReadRun() = %+v, want %+v", read, written)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t, WithRunIDGenerator(&sequentialIDs{}))
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns() on empty store = %v, want empty slice", runs)
	}

	if _, err := s.WriteEquivRun(ctx, testutil.LabSystem(), mismatchReport(t)); err != nil {
		t.Fatalf("WriteEquivRun() failed: %v", err)
	}
	if _, err := s.WriteMetamorphicRun(ctx, testutil.LabSystem(), violationReport(t)); err != nil {
		t.Fatalf("WriteMetamorphicRun() failed: %v", err)
	}

	runs, err = s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-2" {
		t.Errorf("order = %s, %s; want run-1, run-2", runs[0].ID, runs[1].ID)
	}
	if runs[1].Kind != KindMetamorphic {
		t.Errorf("runs[1].Kind = %q", runs[1].Kind)
	}

	last, err := s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() failed: %v", err)
	}
	if last.ID != "run-2" {
		t.Errorf("LastRun() = %s, want run-2", last.ID)
	}
}

func TestLastRun_Empty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LastRun(context.Background())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("LastRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestFindRunsByHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	eq := mismatchReport(t)
	if _, err := s.WriteEquivRun(ctx, testutil.LabSystem(), eq); err != nil {
		t.Fatalf("WriteEquivRun() failed: %v", err)
	}
	meta := violationReport(t)
	if _, err := s.WriteMetamorphicRun(ctx, testutil.LabSystem(), meta); err != nil {
		t.Fatalf("WriteMetamorphicRun() failed: %v", err)
	}

	runs, err := s.FindRunsByHash(ctx, eq.HashB)
	if err != nil {
		t.Fatalf("FindRunsByHash() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Kind != KindEquiv {
		t.Errorf("FindRunsByHash(against) = %+v, want the equiv run", runs)
	}

	runs, err = s.FindRunsByHash(ctx, meta.ReferenceHash)
	if err != nil {
		t.Fatalf("FindRunsByHash() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Kind != KindMetamorphic {
		t.Errorf("FindRunsByHash(reference) = %+v, want the metamorphic run", runs)
	}

	runs, err = s.FindRunsByHash(ctx, "unknown")
	if err != nil {
		t.Fatalf("FindRunsByHash() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("FindRunsByHash(unknown) = %d runs, want 0", len(runs))
	}
}

func TestReadComparisons_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	report := mismatchReport(t)

	run, err := s.WriteEquivRun(ctx, testutil.LabSystem(), report)
	if err != nil {
		t.Fatalf("WriteEquivRun() failed: %v", err)
	}

	got, err := s.ReadComparisons(ctx, run.ID)
	if err != nil {
		t.Fatalf("ReadComparisons() failed: %v", err)
	}
	if !reflect.DeepEqual(got, report.Counterexamples) {
		t.Errorf("ReadComparisons() = %+v, want %+v", got, report.Counterexamples)
	}

	samples, err := s.ReadSamples(ctx, run.ID)
	if err != nil {
		t.Fatalf("ReadSamples() failed: %v", err)
	}
	for i, sample := range samples {
		if sample.Index != i {
			t.Errorf("samples[%d].Index = %d", i, sample.Index)
		}
		if sample.Word != report.Counterexamples[i].Word {
			t.Errorf("samples[%d].Word = %q, want %q", i, sample.Word, report.Counterexamples[i].Word)
		}
	}
}

func TestReadViolations_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	report := violationReport(t)

	run, err := s.WriteMetamorphicRun(ctx, testutil.LabSystem(), report)
	if err != nil {
		t.Fatalf("WriteMetamorphicRun() failed: %v", err)
	}

	got, err := s.ReadViolations(ctx, run.ID)
	if err != nil {
		t.Fatalf("ReadViolations() failed: %v", err)
	}
	if !reflect.DeepEqual(got, report.Violations) {
		t.Errorf("ReadViolations() = %+v, want %+v", got, report.Violations)
	}
}

func TestReadSamples_Empty(t *testing.T) {
	s := createTestStore(t)

	samples, err := s.ReadSamples(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadSamples() failed: %v", err)
	}
	if samples == nil || len(samples) != 0 {
		t.Errorf("ReadSamples() = %v, want empty slice", samples)
	}
}
