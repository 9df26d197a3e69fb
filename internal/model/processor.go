package model

import (
	"fmt"
	"slices"

	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
)

// Geometry names a qubit connectivity graph.
type Geometry string

// Supported geometries. Edges are usable in both directions.
const (
	GeometryLine Geometry = "line" // i <-> i+1
	GeometryRing Geometry = "ring" // line plus n-1 <-> 0
	GeometryFull Geometry = "full" // every pair
)

// Rule is a placement rule for gates without an explicit target list.
type Rule string

const (
	// RuleAllEdges allows single-qubit gates anywhere and two-qubit gates on
	// geometry edges. It is the default.
	RuleAllEdges Rule = "all-edges"

	// RuleAllPermutations allows any ordered tuple of distinct qubits.
	RuleAllPermutations Rule = "all-permutations"

	// RuleAllCombinations allows tuples of distinct qubits in ascending order.
	RuleAllCombinations Rule = "all-combinations"
)

// ProcessorSpec describes which standard gates a device offers and where
// each may be placed. Placement is decided by, in order: an explicit entry in
// Availability, a rule in Rules, or RuleAllEdges.
type ProcessorSpec struct {
	NumQubits    int
	GateNames    []string
	Geometry     Geometry
	Availability map[string][][]int
	Rules        map[string]Rule
}

// NewProcessorSpec validates and returns a processor specification.
func NewProcessorSpec(numQubits int, gateNames []string, geometry Geometry) (*ProcessorSpec, error) {
	ps := &ProcessorSpec{
		NumQubits:    numQubits,
		GateNames:    slices.Clone(gateNames),
		Geometry:     geometry,
		Availability: map[string][][]int{},
		Rules:        map[string]Rule{},
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Validate checks gate names, geometry, and every explicit placement.
func (ps *ProcessorSpec) Validate() error {
	if ps.NumQubits < 1 {
		return simerr.Configuration("processor: need at least one qubit, got %d", ps.NumQubits)
	}
	switch ps.Geometry {
	case GeometryLine, GeometryRing, GeometryFull:
	default:
		return simerr.Configuration("processor: unknown geometry %q", ps.Geometry)
	}
	for _, name := range ps.GateNames {
		if !IsStandardGate(name) {
			return simerr.Configuration("processor: %q is not a standard gate", name)
		}
	}
	for name, tuples := range ps.Availability {
		if !slices.Contains(ps.GateNames, name) {
			return simerr.Configuration("processor: availability given for unlisted gate %q", name)
		}
		arity := standardGates[name].qubits
		for _, tuple := range tuples {
			if err := ps.checkTuple(tuple, arity); err != nil {
				return simerr.Wrap(simerr.CodeConfiguration, err, "processor: gate %s", name)
			}
		}
	}
	for name, rule := range ps.Rules {
		switch rule {
		case RuleAllEdges, RuleAllPermutations, RuleAllCombinations:
		default:
			return simerr.Configuration("processor: gate %s has unknown rule %q", name, rule)
		}
	}
	return nil
}

func (ps *ProcessorSpec) checkTuple(tuple []int, arity int) error {
	if len(tuple) != arity {
		return fmt.Errorf("placement %v has %d qubit(s), gate acts on %d", tuple, len(tuple), arity)
	}
	seen := map[int]bool{}
	for _, q := range tuple {
		if q < 0 || q >= ps.NumQubits {
			return fmt.Errorf("placement %v leaves register [0,%d)", tuple, ps.NumQubits)
		}
		if seen[q] {
			return fmt.Errorf("placement %v repeats qubit %d", tuple, q)
		}
		seen[q] = true
	}
	return nil
}

// Table returns the lookup table of the processor's gates.
func (ps *ProcessorSpec) Table() oprep.Table {
	table := make(oprep.Table, len(ps.GateNames))
	for _, name := range ps.GateNames {
		table[name] = standardGate(name)
	}
	return table
}

// Available reports whether label may act on targets. Labels that are not
// processor gates, such as user-defined noise operators, are not restricted.
func (ps *ProcessorSpec) Available(label string, targets []int) bool {
	if !slices.Contains(ps.GateNames, label) {
		return true
	}
	arity := standardGates[label].qubits
	if ps.checkTuple(targets, arity) != nil {
		return false
	}

	if tuples, ok := ps.Availability[label]; ok {
		return slices.ContainsFunc(tuples, func(t []int) bool { return slices.Equal(t, targets) })
	}

	switch ps.Rules[label] {
	case RuleAllPermutations:
		return true
	case RuleAllCombinations:
		return slices.IsSorted(targets)
	default:
		switch len(targets) {
		case 1:
			return true
		case 2:
			return ps.connected(targets[0], targets[1])
		default:
			return false
		}
	}
}

// AvailableTargets enumerates every placement of label in lexical order.
func (ps *ProcessorSpec) AvailableTargets(label string) [][]int {
	if !slices.Contains(ps.GateNames, label) {
		return nil
	}
	var out [][]int
	var walk func(prefix []int)
	arity := standardGates[label].qubits
	walk = func(prefix []int) {
		if len(prefix) == arity {
			if ps.Available(label, prefix) {
				out = append(out, slices.Clone(prefix))
			}
			return
		}
		for q := 0; q < ps.NumQubits; q++ {
			if !slices.Contains(prefix, q) {
				walk(append(prefix, q))
			}
		}
	}
	walk(make([]int, 0, arity))
	return out
}

func (ps *ProcessorSpec) connected(a, b int) bool {
	n := ps.NumQubits
	switch ps.Geometry {
	case GeometryFull:
		return a != b
	case GeometryRing:
		d := (a - b + n) % n
		return n > 1 && (d == 1 || d == n-1)
	default:
		return a-b == 1 || b-a == 1
	}
}
