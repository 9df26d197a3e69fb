// Package model builds operator lookup tables: the standard Clifford gate
// set, noise wrappers around it, processor specifications that restrict
// where gates may be placed, and user-defined models written in CUE.
package model
