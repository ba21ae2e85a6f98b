package store

import (
	"context"
	"fmt"

	"github.com/roach88/semithue/internal/equiv"
	"github.com/roach88/semithue/internal/ir"
	"github.com/roach88/semithue/internal/metamorphic"
)

// WriteEquivRun stores an equivalence report and returns the stored run.
func (s *Store) WriteEquivRun(ctx context.Context, sys *ir.System, report *equiv.Report) (Run, error) {
	run, samples, err := EquivRecord(sys, report)
	if err != nil {
		return Run{}, fmt.Errorf("write equiv run: %w", err)
	}
	return s.WriteRun(ctx, run, samples)
}

// WriteMetamorphicRun stores a metamorphic report and returns the stored run.
func (s *Store) WriteMetamorphicRun(ctx context.Context, sys *ir.System, report *metamorphic.Report) (Run, error) {
	run, samples, err := MetamorphicRecord(sys, report)
	if err != nil {
		return Run{}, fmt.Errorf("write metamorphic run: %w", err)
	}
	return s.WriteRun(ctx, run, samples)
}

// WriteRun inserts a run and its samples in a single transaction.
//
// The run gets a fresh ID from the store's RunIDGenerator and the next seq.
// A run whose ID already exists is an error: IDs are never reused.
func (s *Store) WriteRun(ctx context.Context, run Run, samples []Sample) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	run.ID = s.idGen.Generate()
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, kind, system, system_hash, subject, subject_hash, against, against_hash,
		 config, trials, passed, failed, inconclusive, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		string(run.Kind),
		run.System,
		run.SystemHash,
		run.Subject,
		run.SubjectHash,
		run.Against,
		run.AgainstHash,
		run.Config,
		run.Trials,
		run.Passed,
		run.Failed,
		run.Inconclusive,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: insert run: %w", err)
	}

	for _, sample := range samples {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO samples (run_id, idx, verdict, word, detail)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, sample.Index, sample.Verdict, sample.Word, sample.Detail)
		if err != nil {
			return Run{}, fmt.Errorf("write run: insert sample %d: %w", sample.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and its samples.
// Returns false if no run has the given ID.
func (s *Store) DeleteRun(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete run: rows affected: %w", err)
	}
	return n > 0, nil
}
