package compiler

import (
	"strings"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/simerr"
)

// Check validates c against the translator's register rules, lookup table,
// and availability policy. It returns every problem found rather than
// stopping at the first, in circuit order. A nil result means Translate will
// not fail.
func (t *Translator) Check(c circuit.Circuit) []*simerr.Error {
	var errs []*simerr.Error

	if c.NumQubits < 1 {
		errs = append(errs, simerr.InvalidLayer(-1, "register must have at least one qubit, got %d", c.NumQubits))
		return errs
	}

	if len(c.Measured) == 0 {
		errs = append(errs, simerr.InvalidLayer(-1, "no qubits designated for measurement"))
	}
	measured := make(map[int]bool, len(c.Measured))
	for _, q := range c.Measured {
		switch {
		case q < 0 || q >= c.NumQubits:
			errs = append(errs, atQubit(simerr.InvalidLayer(-1,
				"measured qubit %d outside register [0,%d)", q, c.NumQubits), q))
		case measured[q]:
			errs = append(errs, atQubit(simerr.InvalidLayer(-1,
				"qubit %d measured twice", q), q))
		}
		measured[q] = true
	}

	for li, layer := range c.Layers {
		errs = append(errs, t.checkLayer(li, layer, c.NumQubits)...)
	}
	return errs
}

func (t *Translator) checkLayer(li int, layer circuit.Layer, numQubits int) []*simerr.Error {
	var errs []*simerr.Error

	// owner maps a qubit to the entry that claimed it first.
	owner := make(map[int]string)

	for _, e := range layer {
		if err := checkTargets(li, e, numQubits); err != nil {
			errs = append(errs, err)
			continue
		}

		for _, q := range e.Targets {
			if prev, taken := owner[q]; taken {
				errs = append(errs, simerr.SharedQubit(li, q, prev, e.String()))
				continue
			}
			owner[q] = e.String()
		}

		rep, ok := t.table.Lookup(e.Label)
		if !ok {
			errs = append(errs, simerr.UnknownOperator(e.Label, li))
			continue
		}
		if rep.Arity() != len(e.Targets) {
			errs = append(errs, withLabel(simerr.InvalidLayer(li,
				"arity mismatch: operator acts on %d qubit(s), got %d target(s)", rep.Arity(), len(e.Targets)), e.Label))
			continue
		}
		if t.avail != nil && !t.avail.Available(e.Label, e.Targets) {
			errs = append(errs, withLabel(simerr.InvalidLayer(li,
				"operator not available on qubits %v", e.Targets), e.Label))
		}
	}
	return errs
}

// checkTargets validates one entry's target list in isolation.
func checkTargets(li int, e circuit.Entry, numQubits int) *simerr.Error {
	if len(e.Targets) == 0 {
		return withLabel(simerr.InvalidLayer(li, "operator has no targets"), e.Label)
	}
	seen := make(map[int]bool, len(e.Targets))
	for _, q := range e.Targets {
		if q < 0 || q >= numQubits {
			return atQubit(withLabel(simerr.InvalidLayer(li,
				"target qubit %d outside register [0,%d)", q, numQubits), e.Label), q)
		}
		if seen[q] {
			return atQubit(withLabel(simerr.InvalidLayer(li,
				"target qubit %d repeated", q), e.Label), q)
		}
		seen[q] = true
	}
	return nil
}

func withLabel(e *simerr.Error, label string) *simerr.Error {
	e.Label = label
	return e
}

func atQubit(e *simerr.Error, q int) *simerr.Error {
	e.Qubit = q
	return e
}

// FormatErrors renders check results one per line for CLI output.
func FormatErrors(errs []*simerr.Error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  " + err.Error()
	}
	return strings.Join(lines, "\n")
}
