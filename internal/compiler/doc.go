// Package compiler lowers a layered circuit onto a flat simulator program
// through an operator lookup table.
//
// Translation is two-phase. Check validates the whole circuit against the
// register, the lookup table, and the optional availability policy without
// touching any representation. Only a circuit that passes is expanded, so a
// rejected circuit never advances a stochastic sampling sequence.
package compiler
