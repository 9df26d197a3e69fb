package model

import (
	"slices"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
)

// standardGates lists each standard gate's arity and instruction sequence in
// time order. Rotations by pi/2 are realized up to global phase.
var standardGates = map[string]struct {
	qubits int
	ops    []string
}{
	"Gi":      {1, nil},
	"Gxpi2":   {1, []string{"h 0", "p 0", "h 0"}},
	"Gx":      {1, []string{"h 0", "p 0", "h 0"}},
	"Gypi2":   {1, []string{"z 0", "h 0"}},
	"Gy":      {1, []string{"z 0", "h 0"}},
	"Gzpi2":   {1, []string{"p 0"}},
	"Gz":      {1, []string{"p 0"}},
	"Gp":      {1, []string{"p 0"}},
	"Gxpi":    {1, []string{"x 0"}},
	"Gypi":    {1, []string{"y 0"}},
	"Gzpi":    {1, []string{"z 0"}},
	"Gh":      {1, []string{"h 0"}},
	"Gcnot":   {2, []string{"c 0 1"}},
	"Gcphase": {2, []string{"h 1", "c 0 1", "h 1"}},
	"Gswap":   {2, []string{"c 0 1", "c 1 0", "c 0 1"}},
}

// StandardGates returns a fresh table of every standard gate.
func StandardGates() oprep.Table {
	table := make(oprep.Table, len(standardGates))
	for name := range standardGates {
		table[name] = standardGate(name)
	}
	return table
}

// StandardGateNames returns the standard gate names, sorted.
func StandardGateNames() []string {
	names := make([]string, 0, len(standardGates))
	for name := range standardGates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsStandardGate reports whether name is a standard gate.
func IsStandardGate(name string) bool {
	_, ok := standardGates[name]
	return ok
}

func standardGate(name string) *oprep.Static {
	g := standardGates[name]
	s, err := oprep.NewStatic(g.qubits, ir.MustParse(g.ops...))
	if err != nil {
		panic("model: invalid standard gate " + name + ": " + err.Error())
	}
	return s
}
