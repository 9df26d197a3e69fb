// Package chp drives an external stabilizer simulator process.
//
// A program is serialized to the line grammar, written to program.chp in a
// fresh temporary directory, and passed to the simulator both as the final
// argument and on stdin. The simulator answers with one "<qubit> <bit>" line
// per measurement, in measurement order. Every attempt gets its own directory
// and process, so concurrent shots share nothing but the executable.
package chp
