package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/tableau"
)

// measureAfter runs the labeled gates in order on a fresh register and
// returns the measured bits of every qubit.
func measureAfter(t *testing.T, table oprep.Table, n int, steps ...step) []byte {
	t.Helper()
	prog := []ir.Instruction{ir.NewInstruction(ir.OpReset, seq(n)...)}
	for _, s := range steps {
		ops, err := oprep.Instructions(table[s.label], s.targets)
		require.NoError(t, err)
		prog = append(prog, ops...)
	}
	for q := 0; q < n; q++ {
		prog = append(prog, ir.NewInstruction(ir.OpMeasure, q))
	}
	ms, err := tableau.Interpret(prog, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	bits := make([]byte, len(ms))
	for i, m := range ms {
		bits[i] = m.Bit
	}
	return bits
}

type step struct {
	label   string
	targets []int
}

func on(label string, targets ...int) step { return step{label, targets} }

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestStandardGateNames(t *testing.T) {
	names := StandardGateNames()
	assert.Len(t, names, 15)
	assert.IsIncreasing(t, names)
	assert.Equal(t, names, StandardGates().Labels())
	assert.True(t, IsStandardGate("Gcphase"))
	assert.False(t, IsStandardGate("Gt"))
}

func TestStandardGateArity(t *testing.T) {
	table := StandardGates()
	for _, name := range []string{"Gcnot", "Gcphase", "Gswap"} {
		assert.Equal(t, 2, table[name].Arity(), name)
	}
	for _, name := range []string{"Gi", "Gx", "Gxpi2", "Gh", "Gzpi"} {
		assert.Equal(t, 1, table[name].Arity(), name)
	}
}

func TestStandardGateAction(t *testing.T) {
	table := StandardGates()

	tests := []struct {
		name  string
		n     int
		steps []step
		want  []byte
	}{
		{"idle", 1, []step{on("Gi", 0)}, []byte{0}},
		{"x pi/2 twice flips", 1, []step{on("Gxpi2", 0), on("Gxpi2", 0)}, []byte{1}},
		{"x alias", 1, []step{on("Gx", 0), on("Gx", 0)}, []byte{1}},
		{"y pi/2 twice flips", 1, []step{on("Gypi2", 0), on("Gypi2", 0)}, []byte{1}},
		{"x pi flips", 1, []step{on("Gxpi", 0)}, []byte{1}},
		{"y pi flips", 1, []step{on("Gypi", 0)}, []byte{1}},
		{"z pi keeps", 1, []step{on("Gzpi", 0)}, []byte{0}},
		{"z pi/2 keeps", 1, []step{on("Gzpi2", 0)}, []byte{0}},
		{"hzh is x", 1, []step{on("Gh", 0), on("Gzpi", 0), on("Gh", 0)}, []byte{1}},
		{"cnot", 2, []step{on("Gxpi", 1), on("Gcnot", 1, 0)}, []byte{1, 1}},
		{"swap", 3, []step{on("Gxpi", 0), on("Gswap", 0, 2)}, []byte{0, 0, 1}},
		{"cphase", 2, []step{on("Gxpi", 0), on("Gh", 1), on("Gcphase", 0, 1), on("Gh", 1)}, []byte{1, 1}},
		{"cphase control off", 2, []step{on("Gh", 1), on("Gcphase", 0, 1), on("Gh", 1)}, []byte{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, measureAfter(t, table, tt.n, tt.steps...))
		})
	}
}

func TestStandardGatesAreFresh(t *testing.T) {
	a, b := StandardGates(), StandardGates()
	assert.NotSame(t, a["Gh"], b["Gh"])
}
