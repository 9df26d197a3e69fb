// Package store is a SQLite run log of completed simulations.
//
// Each run records what was simulated (circuit text and content hashes of
// the circuit and translated program), how (shot count, measured qubits,
// engine version), and the integer outcome counts. Probabilities are never
// stored; they are recomputed from counts on read so they stay exact.
//
// # Ordering
//
// Runs are ordered by seq, a logical clock value assigned by the engine, then
// by id. Wall-clock time is not recorded.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
