// Package ir defines the flat instruction representation shared by the
// translator, the simulator adapter, and the run log.
//
// This package imports nothing internal. Every other package builds on it.
//
// Key constraints:
//   - Programs are plain data: no references back into operator trees
//   - Qubit operands are absolute register indices once they reach a Program
//   - Content hashes use canonical JSON (RFC 8785 style) with domain separation
//   - No floats in hashed data; probabilities are never part of an identity
package ir
