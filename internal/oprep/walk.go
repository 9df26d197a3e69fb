package oprep

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stabsim/internal/ir"
)

// Arity returns the number of qubits r acts on, or 0 for a nil node.
func Arity(r Rep) int {
	if r == nil {
		return 0
	}
	return r.Arity()
}

// Walk visits r and its descendants depth-first, parents before children.
// Returning false from visit skips the node's children.
func Walk(r Rep, visit func(Rep) bool) {
	if r == nil || !visit(r) {
		return
	}
	switch node := r.(type) {
	case *Composed:
		for _, c := range node.children {
			Walk(c, visit)
		}
	case *Embedded:
		Walk(node.child, visit)
	}
}

// IsDeterministic reports whether r contains no Stochastic node, so that its
// expansion for given targets never changes between calls.
func IsDeterministic(r Rep) bool {
	deterministic := true
	Walk(r, func(n Rep) bool {
		if _, ok := n.(*Stochastic); ok {
			deterministic = false
		}
		return deterministic
	})
	return deterministic
}

// StochasticNodes returns every Stochastic node in r, in walk order.
func StochasticNodes(r Rep) []*Stochastic {
	var out []*Stochastic
	Walk(r, func(n Rep) bool {
		if s, ok := n.(*Stochastic); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Describe renders r as a compact one-line form for logs and CLI output,
// e.g. "composed[static(1){h 0} stochastic(1,seed=7){0.1:z 0}]".
func Describe(r Rep) string {
	switch node := r.(type) {
	case nil:
		return "<nil>"
	case *Static:
		return fmt.Sprintf("static(%d){%s}", node.n, joinOps(node.ops))
	case *Stochastic:
		parts := make([]string, len(node.alts))
		for i, a := range node.alts {
			parts[i] = fmt.Sprintf("%g:%s", a.Weight, joinOps(a.Ops))
		}
		return fmt.Sprintf("stochastic(%d,seed=%d){%s}", node.n, node.seed, strings.Join(parts, " | "))
	case *Composed:
		parts := make([]string, len(node.children))
		for i, c := range node.children {
			parts[i] = Describe(c)
		}
		return "composed[" + strings.Join(parts, " ") + "]"
	case *Embedded:
		return fmt.Sprintf("embedded(%v/%d){%s}", node.mapping, node.register, Describe(node.child))
	default:
		return fmt.Sprintf("%T", r)
	}
}

func joinOps(ops []ir.Instruction) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, "; ")
}

// Table is the lookup table from operator label to representation.
type Table map[string]Rep

// Labels returns the table's labels in sorted order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t))
	for l := range t {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Lookup returns the representation for label.
func (t Table) Lookup(label string) (Rep, bool) {
	r, ok := t[label]
	return r, ok
}

// Clone returns a shallow copy: the map is new, the nodes are shared.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
