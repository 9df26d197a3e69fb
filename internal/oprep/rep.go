package oprep

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/simerr"
)

// weightTolerance absorbs float rounding when alternative weights are meant
// to sum to exactly one.
const weightTolerance = 1e-12

// Rep is an operator representation node. Implemented only by *Static,
// *Stochastic, *Composed, and *Embedded.
type Rep interface {
	// Arity is the number of local qubits the node acts on.
	Arity() int

	isRep()
}

// Static is a fixed instruction sequence over local qubits 0..n-1.
type Static struct {
	n   int
	ops []ir.Instruction
}

// NewStatic builds a Static node over n local qubits. Every instruction must
// be a gate whose operands lie in [0, n).
func NewStatic(n int, ops []ir.Instruction) (*Static, error) {
	if n < 1 {
		return nil, simerr.Configuration("static: arity must be >= 1, got %d", n)
	}
	if err := validateOps(n, ops); err != nil {
		return nil, simerr.Wrap(simerr.CodeConfiguration, err, "static: invalid instruction")
	}
	return &Static{n: n, ops: cloneOps(ops)}, nil
}

// Arity implements Rep.
func (s *Static) Arity() int { return s.n }

// Ops returns a copy of the node's local instructions.
func (s *Static) Ops() []ir.Instruction { return cloneOps(s.ops) }

func (*Static) isRep() {}

// Alternative is one weighted branch of a Stochastic node.
type Alternative struct {
	Weight float64
	Ops    []ir.Instruction
}

// Stochastic selects one alternative per Instructions call. The identity
// branch takes whatever probability the declared weights leave over.
type Stochastic struct {
	n     int
	seed  int64
	alts  []Alternative
	total float64

	mu    sync.Mutex
	rng   *rand.Rand
	draws int64
}

// NewStochastic builds a Stochastic node over n local qubits whose sampling
// sequence is seeded with seed. Weights must be non-negative and sum to at
// most one.
func NewStochastic(n int, seed int64, alts ...Alternative) (*Stochastic, error) {
	if n < 1 {
		return nil, simerr.Configuration("stochastic: arity must be >= 1, got %d", n)
	}

	owned := make([]Alternative, len(alts))
	total := 0.0
	for i, alt := range alts {
		if math.IsNaN(alt.Weight) || math.IsInf(alt.Weight, 0) {
			return nil, simerr.Configuration("stochastic: alternative %d has non-finite weight", i)
		}
		if alt.Weight < 0 {
			return nil, simerr.Configuration("stochastic: alternative %d has negative weight %g", i, alt.Weight)
		}
		if err := validateOps(n, alt.Ops); err != nil {
			return nil, simerr.Wrap(simerr.CodeConfiguration, err, "stochastic: alternative %d", i)
		}
		total += alt.Weight
		owned[i] = Alternative{Weight: alt.Weight, Ops: cloneOps(alt.Ops)}
	}
	if total > 1+weightTolerance {
		return nil, simerr.Configuration("stochastic: weights sum to %g, must be <= 1", total)
	}

	return &Stochastic{
		n:     n,
		seed:  seed,
		alts:  owned,
		total: total,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Arity implements Rep.
func (s *Stochastic) Arity() int { return s.n }

// Seed returns the seed the sampling sequence started from.
func (s *Stochastic) Seed() int64 { return s.seed }

// IdentityWeight is the probability of selecting the identity branch.
func (s *Stochastic) IdentityWeight() float64 { return math.Max(0, 1-s.total) }

// Alternatives returns a copy of the declared alternatives.
func (s *Stochastic) Alternatives() []Alternative {
	out := make([]Alternative, len(s.alts))
	for i, a := range s.alts {
		out[i] = Alternative{Weight: a.Weight, Ops: cloneOps(a.Ops)}
	}
	return out
}

// Draws returns how many samples have been taken so far.
func (s *Stochastic) Draws() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// choose advances the sampling sequence by one draw and returns the index of
// the selected alternative, or -1 for identity.
func (s *Stochastic) choose() int {
	s.mu.Lock()
	r := s.rng.Float64()
	s.draws++
	s.mu.Unlock()

	cum := 0.0
	for i, alt := range s.alts {
		cum += alt.Weight
		if cum > r {
			return i
		}
	}
	return -1
}

func (*Stochastic) isRep() {}

// Composed concatenates its children's instructions in order. All children
// share one local qubit space.
type Composed struct {
	n        int
	children []Rep
}

// NewComposed builds a Composed node. Children must be non-nil and agree on
// arity.
func NewComposed(children ...Rep) (*Composed, error) {
	if len(children) == 0 {
		return nil, simerr.Configuration("composed: at least one child is required")
	}
	n := -1
	for i, c := range children {
		if c == nil {
			return nil, simerr.Configuration("composed: child %d is nil", i)
		}
		if n < 0 {
			n = c.Arity()
			continue
		}
		if c.Arity() != n {
			return nil, simerr.Configuration("composed: child %d acts on %d qubit(s), expected %d", i, c.Arity(), n)
		}
	}
	owned := make([]Rep, len(children))
	copy(owned, children)
	return &Composed{n: n, children: owned}, nil
}

// Arity implements Rep.
func (c *Composed) Arity() int { return c.n }

// Children returns the child list in composition order.
func (c *Composed) Children() []Rep {
	out := make([]Rep, len(c.children))
	copy(out, c.children)
	return out
}

func (*Composed) isRep() {}

// Embedded places a child onto a subset of an enclosing register. Child local
// qubit i acts on enclosing position Mapping[i].
type Embedded struct {
	child    Rep
	mapping  []int
	register int
}

// NewEmbedded builds an Embedded node. mapping must have one entry per child
// qubit, be injective, and stay within [0, registerSize).
func NewEmbedded(child Rep, mapping []int, registerSize int) (*Embedded, error) {
	if child == nil {
		return nil, simerr.Configuration("embedded: child is nil")
	}
	if len(mapping) != child.Arity() {
		return nil, simerr.Configuration("embedded: mapping has %d entries, child acts on %d qubit(s)", len(mapping), child.Arity())
	}
	if registerSize < len(mapping) {
		return nil, simerr.Configuration("embedded: register of %d qubit(s) cannot hold %d", registerSize, len(mapping))
	}
	seen := make(map[int]int, len(mapping))
	for i, m := range mapping {
		if m < 0 || m >= registerSize {
			return nil, simerr.Configuration("embedded: mapping[%d]=%d outside register [0,%d)", i, m, registerSize)
		}
		if j, dup := seen[m]; dup {
			return nil, simerr.Configuration("embedded: mapping is not injective (entries %d and %d both map to %d)", j, i, m)
		}
		seen[m] = i
	}
	owned := make([]int, len(mapping))
	copy(owned, mapping)
	return &Embedded{child: child, mapping: owned, register: registerSize}, nil
}

// Arity implements Rep. An Embedded node acts on the whole enclosing register.
func (e *Embedded) Arity() int { return e.register }

// Child returns the embedded child.
func (e *Embedded) Child() Rep { return e.child }

// Mapping returns a copy of the child-to-register mapping.
func (e *Embedded) Mapping() []int {
	out := make([]int, len(e.mapping))
	copy(out, e.mapping)
	return out
}

func (*Embedded) isRep() {}

// Instructions expands r onto targets, the ordered enclosing-register labels
// the node acts on. Local qubit i of r becomes targets[i]. Stochastic nodes
// in the tree each take exactly one draw.
func Instructions(r Rep, targets []int) ([]ir.Instruction, error) {
	if r == nil {
		return nil, simerr.Configuration("nil operator representation")
	}
	if len(targets) != r.Arity() {
		return nil, simerr.New(simerr.CodeInvalidLayer,
			"arity mismatch: operator acts on %d qubit(s), got %d target(s)", r.Arity(), len(targets))
	}
	if q, dup := firstDuplicate(targets); dup {
		return nil, simerr.New(simerr.CodeInvalidLayer, "qubit %d targeted twice by one operator", q)
	}

	switch node := r.(type) {
	case *Static:
		return remapAll(node.ops, targets)

	case *Stochastic:
		i := node.choose()
		if i < 0 {
			return []ir.Instruction{}, nil
		}
		return remapAll(node.alts[i].Ops, targets)

	case *Composed:
		var out []ir.Instruction
		for _, child := range node.children {
			ops, err := Instructions(child, targets)
			if err != nil {
				return nil, err
			}
			out = append(out, ops...)
		}
		if out == nil {
			out = []ir.Instruction{}
		}
		return out, nil

	case *Embedded:
		sub := make([]int, len(node.mapping))
		for i, m := range node.mapping {
			sub[i] = targets[m]
		}
		return Instructions(node.child, sub)

	default:
		return nil, fmt.Errorf("unknown operator representation %T", r)
	}
}

func remapAll(ops []ir.Instruction, targets []int) ([]ir.Instruction, error) {
	out := make([]ir.Instruction, len(ops))
	for i, op := range ops {
		remapped, err := op.Remap(targets)
		if err != nil {
			return nil, err
		}
		out[i] = remapped
	}
	return out, nil
}

func validateOps(n int, ops []ir.Instruction) error {
	for i, op := range ops {
		if !op.Op.IsGate() {
			return fmt.Errorf("instruction %d: %q is not a gate", i, op.Op)
		}
		if err := op.Validate(n); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

func cloneOps(ops []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(ops))
	for i, op := range ops {
		out[i] = ir.NewInstruction(op.Op, op.Qubits...)
	}
	return out
}

func firstDuplicate(xs []int) (int, bool) {
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return x, true
		}
		seen[x] = true
	}
	return 0, false
}
