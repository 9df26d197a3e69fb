// Package engine is the forward simulator facade.
//
// A Simulator owns an operator lookup table and a shot runner. Each call to
// Probabilities:
//
//  1. translates the circuit once, on the calling goroutine (stochastic
//     operators draw here, in layer order, so translation is reproducible)
//  2. runs Config.Shots independent shots of the resulting program on a
//     bounded worker pool
//  3. aggregates the shots into an outcome distribution
//
// Translation errors fail the call before any simulator process starts. A
// shot that still fails after its retries cancels the remaining shots and
// fails the call. No distribution over fewer than Config.Shots shots is
// ever returned.
//
// When a run log is attached (WithStore), every successful run is recorded
// with a UUIDv7 ID and a sequence number from a logical clock resumed from
// the log.
package engine
