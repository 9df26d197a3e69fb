// Package circuit defines the layered circuit model handed to the translator
// and its two textual forms.
//
// A Circuit is a register size, an ordered list of layers, and the qubits to
// measure at the end. Each layer is a set of entries that act in parallel,
// where an entry pairs an operator label with the register positions it
// targets.
//
// The compact string form follows the usual gate-string notation:
//
//	Gxpi2:0Gcnot:0:1          two single-entry layers
//	[Gxpi2:0Gh:1]Gcnot:0:1    a parallel layer then a CNOT
//	{}                        an idle layer
//	(Gx:0)^4                  repetition
//	Gx:0@(0,1)                explicit register of two lines
//
// The YAML file form lists layers and measured qubits explicitly, or embeds a
// string form under the circuit key.
package circuit
