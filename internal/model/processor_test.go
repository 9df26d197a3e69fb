package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/compiler"
	"github.com/roach88/stabsim/internal/simerr"
)

func TestProcessorGeometry(t *testing.T) {
	tests := []struct {
		geometry Geometry
		targets  []int
		want     bool
	}{
		{GeometryLine, []int{0, 1}, true},
		{GeometryLine, []int{1, 0}, true},
		{GeometryLine, []int{0, 2}, false},
		{GeometryLine, []int{3, 0}, false},
		{GeometryRing, []int{3, 0}, true},
		{GeometryRing, []int{0, 3}, true},
		{GeometryRing, []int{0, 2}, false},
		{GeometryFull, []int{0, 3}, true},
		{GeometryFull, []int{2, 1}, true},
	}

	for _, tt := range tests {
		ps, err := NewProcessorSpec(4, []string{"Gxpi2", "Gcnot"}, tt.geometry)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ps.Available("Gcnot", tt.targets), "%s %v", tt.geometry, tt.targets)
	}
}

func TestProcessorAvailable(t *testing.T) {
	ps, err := NewProcessorSpec(3, []string{"Gxpi2", "Gcnot"}, GeometryLine)
	require.NoError(t, err)

	assert.True(t, ps.Available("Gxpi2", []int{2}))
	assert.False(t, ps.Available("Gxpi2", []int{3}), "outside register")
	assert.False(t, ps.Available("Gxpi2", []int{0, 1}), "wrong arity")
	assert.False(t, ps.Available("Gcnot", []int{1, 1}), "repeated qubit")
	assert.True(t, ps.Available("Nz", []int{2}), "not a processor gate")
}

func TestProcessorExplicitAvailability(t *testing.T) {
	ps, err := NewProcessorSpec(3, []string{"Gcnot", "Gh"}, GeometryLine)
	require.NoError(t, err)
	ps.Availability["Gcnot"] = [][]int{{0, 1}}
	ps.Availability["Gh"] = [][]int{{2}}
	require.NoError(t, ps.Validate())

	assert.True(t, ps.Available("Gcnot", []int{0, 1}))
	assert.False(t, ps.Available("Gcnot", []int{1, 0}))
	assert.False(t, ps.Available("Gcnot", []int{1, 2}))
	assert.False(t, ps.Available("Gh", []int{0}))
	assert.True(t, ps.Available("Gh", []int{2}))
}

func TestProcessorRules(t *testing.T) {
	ps, err := NewProcessorSpec(3, []string{"Gcnot", "Gswap"}, GeometryLine)
	require.NoError(t, err)
	ps.Rules["Gcnot"] = RuleAllCombinations
	ps.Rules["Gswap"] = RuleAllPermutations
	require.NoError(t, ps.Validate())

	assert.True(t, ps.Available("Gcnot", []int{0, 2}))
	assert.False(t, ps.Available("Gcnot", []int{2, 0}))
	assert.True(t, ps.Available("Gswap", []int{2, 0}))
}

func TestProcessorAvailableTargets(t *testing.T) {
	ps, err := NewProcessorSpec(3, []string{"Gcnot", "Gh"}, GeometryLine)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1}, {1, 0}, {1, 2}, {2, 1}}, ps.AvailableTargets("Gcnot"))
	assert.Equal(t, [][]int{{0}, {1}, {2}}, ps.AvailableTargets("Gh"))
	assert.Nil(t, ps.AvailableTargets("Gswap"))
}

func TestProcessorValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *ProcessorSpec
		want  string
	}{
		{
			name: "no qubits",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{NumQubits: 0, Geometry: GeometryLine}
			},
			want: "at least one qubit",
		},
		{
			name: "unknown geometry",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{NumQubits: 2, Geometry: "grid"}
			},
			want: `unknown geometry "grid"`,
		},
		{
			name: "unknown gate",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{NumQubits: 2, Geometry: GeometryLine, GateNames: []string{"Gfoo"}}
			},
			want: `"Gfoo" is not a standard gate`,
		},
		{
			name: "availability for unlisted gate",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{
					NumQubits: 2, Geometry: GeometryLine, GateNames: []string{"Gh"},
					Availability: map[string][][]int{"Gcnot": {{0, 1}}},
				}
			},
			want: `unlisted gate "Gcnot"`,
		},
		{
			name: "tuple arity",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{
					NumQubits: 2, Geometry: GeometryLine, GateNames: []string{"Gcnot"},
					Availability: map[string][][]int{"Gcnot": {{0}}},
				}
			},
			want: "gate acts on 2",
		},
		{
			name: "tuple out of range",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{
					NumQubits: 2, Geometry: GeometryLine, GateNames: []string{"Gh"},
					Availability: map[string][][]int{"Gh": {{5}}},
				}
			},
			want: "leaves register",
		},
		{
			name: "unknown rule",
			build: func() *ProcessorSpec {
				return &ProcessorSpec{
					NumQubits: 2, Geometry: GeometryLine, GateNames: []string{"Gh"},
					Rules: map[string]Rule{"Gh": "anywhere"},
				}
			},
			want: `unknown rule "anywhere"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			require.Error(t, err)
			assert.True(t, simerr.IsConfiguration(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProcessorTable(t *testing.T) {
	ps, err := NewProcessorSpec(2, []string{"Gh", "Gcnot"}, GeometryLine)
	require.NoError(t, err)

	table := ps.Table()
	assert.Equal(t, []string{"Gcnot", "Gh"}, table.Labels())
}

func TestProcessorRestrictsTranslation(t *testing.T) {
	ps, err := NewProcessorSpec(3, []string{"Gh", "Gcnot"}, GeometryLine)
	require.NoError(t, err)
	tr := compiler.New(ps.Table(), compiler.WithAvailability(ps))

	_, err = tr.Translate(circuit.MustParse("Gh:0Gcnot:0:1"))
	require.NoError(t, err)

	_, err = tr.Translate(circuit.MustParse("Gh:1Gcnot:0:2"))
	require.Error(t, err)
	assert.True(t, simerr.IsInvalidLayer(err))
	assert.Contains(t, err.Error(), "not available on qubits [0 2]")
}
