package model

import (
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
)

// Depolarizing returns single-qubit depolarizing noise of strength p: X, Y,
// and Z each with probability p/3, identity otherwise.
func Depolarizing(p float64, seed int64) (*oprep.Stochastic, error) {
	if p < 0 || p > 1 {
		return nil, simerr.Configuration("depolarizing: p must be in [0,1], got %g", p)
	}
	w := p / 3
	return oprep.NewStochastic(1, seed,
		oprep.Alternative{Weight: w, Ops: ir.MustParse("x 0")},
		oprep.Alternative{Weight: w, Ops: ir.MustParse("y 0")},
		oprep.Alternative{Weight: w, Ops: ir.MustParse("z 0")},
	)
}

// BitFlip returns single-qubit X noise with probability p.
func BitFlip(p float64, seed int64) (*oprep.Stochastic, error) {
	if p < 0 || p > 1 {
		return nil, simerr.Configuration("bit flip: p must be in [0,1], got %g", p)
	}
	return oprep.NewStochastic(1, seed, oprep.Alternative{Weight: p, Ops: ir.MustParse("x 0")})
}

// WithNoise returns a copy of table where label is followed by noise. The
// noise must act on as many qubits as the gate.
func WithNoise(table oprep.Table, label string, noise oprep.Rep) (oprep.Table, error) {
	gate, ok := table.Lookup(label)
	if !ok {
		return nil, simerr.Configuration("with noise: no operator %q in table", label)
	}
	noisy, err := oprep.NewComposed(gate, noise)
	if err != nil {
		return nil, err
	}
	out := table.Clone()
	out[label] = noisy
	return out, nil
}

// NoisyTable attaches independent depolarizing noise of strength p to every
// operator in table. Multi-qubit operators get one noise node per qubit.
// Noise nodes are seeded seed, seed+1, ... in label order, so the result is
// reproducible from (table, p, seed).
func NoisyTable(table oprep.Table, p float64, seed int64) (oprep.Table, error) {
	out := make(oprep.Table, len(table))
	next := seed
	for _, label := range table.Labels() {
		gate := table[label]
		n := gate.Arity()

		children := []oprep.Rep{gate}
		for q := 0; q < n; q++ {
			dep, err := Depolarizing(p, next)
			if err != nil {
				return nil, err
			}
			next++

			if n == 1 {
				children = append(children, dep)
				continue
			}
			emb, err := oprep.NewEmbedded(dep, []int{q}, n)
			if err != nil {
				return nil, err
			}
			children = append(children, emb)
		}

		noisy, err := oprep.NewComposed(children...)
		if err != nil {
			return nil, err
		}
		out[label] = noisy
	}
	return out, nil
}
