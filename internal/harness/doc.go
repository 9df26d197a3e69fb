// Package harness runs calibration scenarios against the simulator.
//
// A scenario is a YAML file naming an operator model, a circuit, a shot
// count, and the outcome distribution the circuit should produce:
//
//	name: bell-pair
//	model: standard
//	circuit: "Gh:0Gcnot:0:1"
//	shots: 2000
//	seed: 3
//	expect:
//	  "00": 0.5
//	  "11": 0.5
//	tolerance: 0.05
//
// Shots run in process on the reference tableau with a seeded random stream,
// so a scenario produces the same counts on every run unless an external
// simulator is supplied with WithExecutable. Scenarios may instead declare
// expect_error with an error code when the circuit must be rejected.
//
// Mismatches do not abort a run; they are collected in Result.Errors.
// AssertGolden snapshots the translated program under testdata/golden.
package harness
