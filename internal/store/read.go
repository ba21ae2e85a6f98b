package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/metamorphic"
	"github.com/roach88/semithue/internal/queryir"
)

// runColumnList is the runs column order scanRun expects.
var runColumnList = []string{
	"id", "seq", "kind", "system", "system_hash", "subject", "subject_hash", "against", "against_hash",
	"config", "trials", "passed", "failed", "inconclusive", "engine_version", "ir_version",
}

var runColumns = strings.Join(runColumnList, ", ")

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns every run in seq order.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
}

// FindRunsByHash returns, in seq order, every run whose subject or against
// rule set has the given content hash.
func (s *Store) FindRunsByHash(ctx context.Context, hash string) ([]Run, error) {
	return s.QueryRuns(ctx, queryir.Select{
		Filter: queryir.Or{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "subject_hash", Value: hash},
			queryir.Equals{Field: "against_hash", Value: hash},
		}},
	})
}

// LastRun returns the run with the highest seq.
// Returns sql.ErrNoRows if the store is empty.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT 1`)
	return scanRun(row)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSamples returns the samples of a run in index order.
//
// Returns an empty slice (not nil) if the run has no samples.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, verdict, word, detail
		FROM samples
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.RunID, &sample.Index, &sample.Verdict, &sample.Word, &sample.Detail); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// ReadComparisons decodes the samples of an equivalence run.
func (s *Store) ReadComparisons(ctx context.Context, runID string) ([]equiv.Comparison, error) {
	samples, err := s.ReadSamples(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]equiv.Comparison, len(samples))
	for i, sample := range samples {
		if err := unmarshalJSON(sample.Detail, &out[i]); err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.Index, err)
		}
	}
	return out, nil
}

// ReadViolations decodes the samples of a metamorphic run.
func (s *Store) ReadViolations(ctx context.Context, runID string) ([]metamorphic.Violation, error) {
	samples, err := s.ReadSamples(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]metamorphic.Violation, len(samples))
	for i, sample := range samples {
		if err := unmarshalJSON(sample.Detail, &out[i]); err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.Index, err)
		}
	}
	return out, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var kind string
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&kind,
		&run.System,
		&run.SystemHash,
		&run.Subject,
		&run.SubjectHash,
		&run.Against,
		&run.AgainstHash,
		&run.Config,
		&run.Trials,
		&run.Passed,
		&run.Failed,
		&run.Inconclusive,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = RunKind(kind)
	return run, nil
}
