// Package oprep implements operator representations: trees of nodes that
// describe how a gate or noise process is realized as primitive simulator
// instructions.
//
// The node set is closed. Rep is sealed, and Instructions dispatches on the
// concrete type:
//
//   - Static: a fixed instruction sequence over local qubits 0..n-1
//   - Stochastic: weighted alternatives plus an implicit identity, sampled
//     from a pseudorandom sequence the node owns
//   - Composed: children over a shared local space, concatenated in order
//   - Embedded: a child placed onto a subset of a larger register
//
// Trees are immutable after construction except for the sampling position of
// Stochastic nodes, which advances by exactly one draw per Instructions call
// on that node. Identical seed and identical call count give an identical
// choice sequence, independent of who calls or with which targets.
package oprep
