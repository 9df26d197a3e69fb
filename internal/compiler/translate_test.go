package compiler

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
)

func static(t *testing.T, n int, lines ...string) *oprep.Static {
	t.Helper()
	s, err := oprep.NewStatic(n, ir.MustParse(lines...))
	require.NoError(t, err)
	return s
}

func testTable(t *testing.T) oprep.Table {
	t.Helper()
	return oprep.Table{
		"Gh":    static(t, 1, "h 0"),
		"Gxpi2": static(t, 1, "h 0", "p 0", "h 0"),
		"Gz":    static(t, 1, "p 0"),
		"Gcnot": static(t, 2, "c 0 1"),
	}
}

func noise(t *testing.T) *oprep.Stochastic {
	t.Helper()
	s, err := oprep.NewStochastic(1, 42, oprep.Alternative{Weight: 0.5, Ops: ir.MustParse("z 0")})
	require.NoError(t, err)
	return s
}

func programText(p *ir.Program) []byte {
	return []byte(strings.Join(p.Lines(), "\n") + "\n")
}

func TestTranslateBell(t *testing.T) {
	tr := New(testTable(t))

	prog, err := tr.Translate(circuit.MustParse("Gh:0Gcnot:0:1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"reset 0 1", "h 0", "c 0 1", "m 0", "m 1"}, prog.Lines())
	assert.Equal(t, 2, prog.NumQubits)
	assert.Equal(t, []int{0, 1}, prog.Measured)
}

func TestTranslateEmbedded(t *testing.T) {
	table := testTable(t)
	x1, err := oprep.NewEmbedded(static(t, 1, "x 0"), []int{1}, 2)
	require.NoError(t, err)
	table["Xon1"] = x1

	prog, err := New(table).Translate(circuit.MustParse("Xon1:0:1"))
	require.NoError(t, err)
	assert.Equal(t, []ir.Instruction{ir.NewInstruction(ir.OpX, 1)}, prog.Body())
}

func TestTranslateOrdersLayerByLowestTarget(t *testing.T) {
	prog, err := New(testTable(t)).Translate(circuit.MustParse("[Gh:2 Gcnot:1:0]@(0,1,2)"))
	require.NoError(t, err)

	assert.Equal(t, []string{"c 1 0", "h 2"}, bodyLines(prog))
}

func TestTranslateIdleLayerEmitsNothing(t *testing.T) {
	prog, err := New(testTable(t)).Translate(circuit.MustParse("{}{}@(0)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"reset 0", "m 0"}, prog.Lines())
}

func TestTranslateMeasuresDesignatedOrder(t *testing.T) {
	c := circuit.MustParse("Gh:1@(0,1,2)")
	c.Measured = []int{2, 0}

	prog, err := New(testTable(t)).Translate(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"reset 0 1 2", "h 1", "m 2", "m 0"}, prog.Lines())
}

func TestTranslateGolden(t *testing.T) {
	c := circuit.MustParse("[Gxpi2:0Gh:2]Gcnot:0:1{}Gz:1@(0,1,2)")
	c.Measured = []int{2, 0}

	prog, err := New(testTable(t)).Translate(c)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "translate_layers", programText(prog))
}

func TestTranslateSharedQubitRejectedBeforeSampling(t *testing.T) {
	table := testTable(t)
	n := noise(t)
	table["Nz"] = n

	// Noise in layer 0 is valid; layer 1 overlaps on qubit 2.
	_, err := New(table).Translate(circuit.MustParse("Nz:2[Gcnot:1:2 Gh:2]@(0,1,2)"))
	require.Error(t, err)
	assert.True(t, simerr.IsInvalidLayer(err))

	var se *simerr.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Layer)
	assert.Equal(t, 2, se.Qubit)
	assert.Zero(t, n.Draws())
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name  string
		c     circuit.Circuit
		code  simerr.Code
		label string
		layer int
	}{
		{
			name:  "unknown label",
			c:     circuit.MustParse("Gh:0Gfoo:0"),
			code:  simerr.CodeUnknownOperator,
			label: "Gfoo",
			layer: 1,
		},
		{
			name:  "arity mismatch",
			c:     circuit.MustParse("Gcnot:0@(0,1)"),
			code:  simerr.CodeInvalidLayer,
			label: "Gcnot",
			layer: 0,
		},
		{
			name:  "target outside register",
			c:     circuit.MustParse("Gh:3@(0,1)"),
			code:  simerr.CodeInvalidLayer,
			label: "Gh",
			layer: 0,
		},
		{
			name:  "repeated target",
			c:     circuit.MustParse("Gcnot:1:1@(0,1)"),
			code:  simerr.CodeInvalidLayer,
			label: "Gcnot",
			layer: 0,
		},
		{
			name:  "measured outside register",
			c:     circuit.New(1, nil, []int{1}),
			code:  simerr.CodeInvalidLayer,
			layer: -1,
		},
		{
			name:  "measured twice",
			c:     circuit.New(2, nil, []int{0, 0}),
			code:  simerr.CodeInvalidLayer,
			layer: -1,
		},
		{
			name:  "nothing measured",
			c:     circuit.New(2, nil, []int{}),
			code:  simerr.CodeInvalidLayer,
			layer: -1,
		},
		{
			name:  "empty register",
			c:     circuit.New(0, nil, nil),
			code:  simerr.CodeInvalidLayer,
			layer: -1,
		},
	}

	tr := New(testTable(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := tr.Translate(tt.c)
			require.Error(t, err)
			assert.Nil(t, prog)

			var se *simerr.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.label, se.Label)
			assert.Equal(t, tt.layer, se.Layer)
		})
	}
}

func TestCheckReportsEveryProblem(t *testing.T) {
	c := circuit.MustParse("Gfoo:0[Gh:0Gh:0]Gcnot:1@(0,1)")
	c.Measured = []int{0, 5}

	errs := New(testTable(t)).Check(c)
	require.Len(t, errs, 4)

	assert.Contains(t, errs[0].Error(), "measured qubit 5 outside register")
	assert.True(t, simerr.IsUnknownOperator(errs[1]))
	assert.Equal(t, 0, errs[1].Layer)
	assert.Equal(t, "INVALID_LAYER: operators Gh:0 and Gh:0 both target the same qubit (layer=1, qubit=0)", errs[2].Error())
	assert.Contains(t, errs[3].Error(), "arity mismatch")

	out := FormatErrors(errs)
	assert.Equal(t, 4, strings.Count(out, "\n")+1)
}

type allowList map[string]bool

func (a allowList) Available(label string, targets []int) bool {
	return a[circuit.Entry{Label: label, Targets: targets}.String()]
}

func TestTranslateAvailability(t *testing.T) {
	avail := allowList{"Gh:0": true, "Gh:1": true, "Gcnot:0:1": true}
	tr := New(testTable(t), WithAvailability(avail))

	_, err := tr.Translate(circuit.MustParse("Gh:0Gcnot:0:1"))
	require.NoError(t, err)

	_, err = tr.Translate(circuit.MustParse("Gh:0Gcnot:1:0"))
	require.Error(t, err)
	assert.True(t, simerr.IsInvalidLayer(err))
	assert.Contains(t, err.Error(), "not available on qubits [1 0]")
	assert.Contains(t, err.Error(), "label=Gcnot")
}

func TestTranslateCachesDeterministicOnly(t *testing.T) {
	table := testTable(t)
	n := noise(t)
	table["Nz"] = n
	tr := New(table, WithCache(16))

	prog, err := tr.Translate(circuit.MustParse("Gh:0Nz:0Gh:0Nz:0"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Draws())

	hits, misses := tr.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	// Mutating a translated program must not leak into the cache.
	prog.Instructions[1].Qubits[0] = 9
	again, err := tr.Translate(circuit.MustParse("Gh:0@(0)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"h 0"}, bodyLines(again))
	assert.Equal(t, int64(2), n.Draws())
}

func TestCacheDisabled(t *testing.T) {
	tr := New(testTable(t), WithCache(0))
	_, err := tr.Translate(circuit.MustParse("Gh:0Gh:0"))
	require.NoError(t, err)

	hits, misses := tr.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestNewCopiesTable(t *testing.T) {
	table := testTable(t)
	tr := New(table)
	delete(table, "Gh")

	_, err := tr.Translate(circuit.MustParse("Gh:0"))
	assert.NoError(t, err)
}

func bodyLines(p *ir.Program) []string {
	body := p.Body()
	out := make([]string, len(body))
	for i, in := range body {
		out[i] = in.String()
	}
	return out
}
