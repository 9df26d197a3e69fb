package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/stabsim/internal/outcome"
)

// Run is one logged simulation.
type Run struct {
	ID            string
	Seq           int64
	CircuitHash   string
	ProgramHash   string
	Circuit       string
	Shots         int
	Qubits        []int
	EngineVersion string
	Counts        map[string]int
}

// Distribution rebuilds the outcome distribution from the stored counts.
func (r Run) Distribution() (*outcome.Distribution, error) {
	return outcome.FromCounts(r.Qubits, r.Counts)
}

const runColumns = `id, seq, circuit_hash, program_hash, circuit, shots, qubits, engine_version`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	if run.Counts, err = s.readCounts(ctx, run.ID); err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns every run ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// RunsForCircuit returns the runs of one circuit hash, oldest first.
func (s *Store) RunsForCircuit(ctx context.Context, circuitHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE circuit_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, circuitHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// Close before issuing the count queries: the pool holds one connection.
	rows.Close()

	for i := range runs {
		if runs[i].Counts, err = s.readCounts(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) readCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bitstring, count FROM outcomes
		WHERE run_id = ?
		ORDER BY bitstring COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes for %s: %w", runID, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return counts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		qubitsJSON string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.CircuitHash,
		&run.ProgramHash,
		&run.Circuit,
		&run.Shots,
		&qubitsJSON,
		&run.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.Qubits, err = unmarshalQubits(qubitsJSON); err != nil {
		return Run{}, err
	}
	return run, nil
}
