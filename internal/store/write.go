package store

import (
	"context"
	"fmt"
	"slices"
)

// WriteRun inserts a run and its outcome counts in one transaction.
// Uses ON CONFLICT(id) DO NOTHING, so writing the same run twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: empty id")
	}
	if len(run.Counts) == 0 {
		return fmt.Errorf("write run %s: no outcome counts", run.ID)
	}
	qubitsJSON, err := marshalQubits(run.Qubits)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin: %w", run.ID, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, circuit_hash, program_hash, circuit, shots, qubits, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.CircuitHash,
		run.ProgramHash,
		run.Circuit,
		run.Shots,
		qubitsJSON,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	// Sorted so the insert order, and rowids, do not depend on map order.
	keys := make([]string, 0, len(run.Counts))
	for k := range run.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outcomes (run_id, bitstring, count) VALUES (?, ?, ?)
		`, run.ID, k, run.Counts[k]); err != nil {
			return fmt.Errorf("write run %s: outcome %q: %w", run.ID, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}
