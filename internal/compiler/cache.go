package compiler

import (
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/ir"
)

// expansionCache holds expansions of deterministic representations only.
// A nil *expansionCache is a disabled cache.
type expansionCache struct {
	entries *lru.Cache[string, []ir.Instruction]
	hits    atomic.Int64
	misses  atomic.Int64
}

func newExpansionCache(size int) *expansionCache {
	if size < 1 {
		return nil
	}
	entries, err := lru.New[string, []ir.Instruction](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &expansionCache{entries: entries}
}

func (c *expansionCache) get(key string) ([]ir.Instruction, bool) {
	ops, ok := c.entries.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneInstructions(ops), true
}

func (c *expansionCache) add(key string, ops []ir.Instruction) {
	c.entries.Add(key, cloneInstructions(ops))
}

func (c *expansionCache) stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// cacheKey renders an entry as "label@q0,q1,...".
func cacheKey(e circuit.Entry) string {
	var b strings.Builder
	b.WriteString(e.Label)
	b.WriteByte('@')
	for i, q := range e.Targets {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(q))
	}
	return b.String()
}

func cloneInstructions(ops []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(ops))
	for i, op := range ops {
		out[i] = ir.NewInstruction(op.Op, op.Qubits...)
	}
	return out
}
