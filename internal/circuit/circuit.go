package circuit

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/stabsim/internal/ir"
)

// Entry applies one operator to an ordered list of register positions.
type Entry struct {
	Label   string `yaml:"op" json:"op"`
	Targets []int  `yaml:"on" json:"on"`
}

// String renders the entry in string form, e.g. "Gcnot:0:1".
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Label)
	for _, q := range e.Targets {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(q))
	}
	return b.String()
}

// Layer is a set of entries applied in parallel.
type Layer []Entry

// Circuit is the translator's input.
type Circuit struct {
	NumQubits int     `json:"num_qubits"`
	Layers    []Layer `json:"layers"`
	Measured  []int   `json:"measured"`
}

// New builds a circuit over numQubits lines. A nil measured list means every
// line, in ascending order.
func New(numQubits int, layers []Layer, measured []int) Circuit {
	if measured == nil {
		measured = AllLines(numQubits)
	}
	return Circuit{NumQubits: numQubits, Layers: layers, Measured: measured}
}

// AllLines returns 0..n-1.
func AllLines(n int) []int {
	out := make([]int, max(n, 0))
	for i := range out {
		out[i] = i
	}
	return out
}

// Depth is the number of layers, idle layers included.
func (c Circuit) Depth() int { return len(c.Layers) }

// Labels returns the distinct operator labels used, sorted.
func (c Circuit) Labels() []string {
	seen := map[string]bool{}
	var out []string
	for _, layer := range c.Layers {
		for _, e := range layer {
			if !seen[e.Label] {
				seen[e.Label] = true
				out = append(out, e.Label)
			}
		}
	}
	slices.Sort(out)
	return out
}

// String renders the circuit in string form. Single-entry layers are written
// bare, idle layers as "{}", and the register suffix is always present so the
// result parses back to the same register size.
func (c Circuit) String() string {
	var b strings.Builder
	for _, layer := range c.Layers {
		switch len(layer) {
		case 0:
			b.WriteString("{}")
		case 1:
			b.WriteString(layer[0].String())
		default:
			b.WriteByte('[')
			for _, e := range layer {
				b.WriteString(e.String())
			}
			b.WriteByte(']')
		}
	}
	b.WriteString("@(")
	for i := 0; i < c.NumQubits; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(i))
	}
	b.WriteByte(')')
	return b.String()
}

// Value converts the circuit to its hashed form. Layer entries keep their
// declared order; the translator's sort is not part of identity.
func (c Circuit) Value() ir.Object {
	layers := make(ir.Array, len(c.Layers))
	for i, layer := range c.Layers {
		entries := make(ir.Array, len(layer))
		for j, e := range layer {
			entries[j] = ir.Object{
				"op": ir.String(e.Label),
				"on": ir.Ints(e.Targets),
			}
		}
		layers[i] = entries
	}
	return ir.Object{
		"num_qubits": ir.Int(c.NumQubits),
		"layers":     layers,
		"measured":   ir.Ints(c.Measured),
	}
}

// Hash returns the content hash of the circuit.
func (c Circuit) Hash() (string, error) {
	h, err := ir.ContentHash(ir.DomainCircuit, c.Value())
	if err != nil {
		return "", fmt.Errorf("circuit hash: %w", err)
	}
	return h, nil
}
