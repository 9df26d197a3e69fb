package compiler

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
)

// Availability decides whether an operator may be placed on a target tuple.
// Implemented by model.ProcessorSpec.
type Availability interface {
	Available(label string, targets []int) bool
}

// Translator converts circuits to programs. It is safe for concurrent use
// when its table's stochastic nodes are, which they are by construction.
type Translator struct {
	table oprep.Table
	avail Availability
	cache *expansionCache
}

// Option configures a Translator.
type Option func(*Translator)

// WithAvailability rejects placements that avail does not allow.
func WithAvailability(avail Availability) Option {
	return func(t *Translator) {
		t.avail = avail
	}
}

// WithCache memoizes expansions of deterministic representations, keyed by
// label and targets. A size below one disables the cache.
func WithCache(size int) Option {
	return func(t *Translator) {
		t.cache = newExpansionCache(size)
	}
}

// New creates a Translator over table. The table map is copied; its nodes
// are shared.
func New(table oprep.Table, opts ...Option) *Translator {
	t := &Translator{table: table.Clone()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Table returns the lookup table the translator resolves labels against.
func (t *Translator) Table() oprep.Table { return t.table }

// CacheStats reports expansion cache hits and misses. Both are zero when the
// cache is disabled.
func (t *Translator) CacheStats() (hits, misses int64) {
	return t.cache.stats()
}

// Translate validates c and emits its program: a reset of every line, each
// layer's expansion with entries ordered by their lowest target, and one
// measurement per designated qubit.
func (t *Translator) Translate(c circuit.Circuit) (*ir.Program, error) {
	if errs := t.Check(c); len(errs) > 0 {
		return nil, errs[0]
	}

	prog := &ir.Program{
		NumQubits: c.NumQubits,
		Measured:  slices.Clone(c.Measured),
	}
	prog.Instructions = append(prog.Instructions, ir.NewInstruction(ir.OpReset, circuit.AllLines(c.NumQubits)...))

	for li, layer := range c.Layers {
		for _, e := range orderLayer(layer) {
			ops, err := t.expand(e)
			if err != nil {
				var se *simerr.Error
				if errors.As(err, &se) && se.Layer < 0 {
					se.Layer = li
					se.Label = e.Label
				}
				return nil, err
			}
			prog.Instructions = append(prog.Instructions, ops...)
		}
	}

	for _, q := range c.Measured {
		prog.Instructions = append(prog.Instructions, ir.NewInstruction(ir.OpMeasure, q))
	}

	slog.Debug("translated circuit",
		"qubits", c.NumQubits,
		"layers", len(c.Layers),
		"instructions", len(prog.Instructions))
	return prog, nil
}

func (t *Translator) expand(e circuit.Entry) ([]ir.Instruction, error) {
	rep := t.table[e.Label]
	if t.cache == nil || !oprep.IsDeterministic(rep) {
		return oprep.Instructions(rep, e.Targets)
	}

	key := cacheKey(e)
	if ops, ok := t.cache.get(key); ok {
		return ops, nil
	}
	ops, err := oprep.Instructions(rep, e.Targets)
	if err != nil {
		return nil, err
	}
	t.cache.add(key, ops)
	return ops, nil
}

// orderLayer sorts a layer's entries by their smallest target. Entries are
// disjoint after Check, so the order is total.
func orderLayer(layer circuit.Layer) circuit.Layer {
	ordered := slices.Clone(layer)
	slices.SortStableFunc(ordered, func(a, b circuit.Entry) int {
		return cmp.Compare(slices.Min(a.Targets), slices.Min(b.Targets))
	})
	return ordered
}
