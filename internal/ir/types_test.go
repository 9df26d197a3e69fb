package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstruction(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Instruction
	}{
		{"single qubit", "h 0", Instruction{Op: OpH, Qubits: []int{0}}},
		{"two qubit", "c 1 0", Instruction{Op: OpCNOT, Qubits: []int{1, 0}}},
		{"padded", "  x   3 ", Instruction{Op: OpX, Qubits: []int{3}}},
		{"reset register", "reset 0 1 2", Instruction{Op: OpReset, Qubits: []int{0, 1, 2}}},
		{"measure", "m 4", Instruction{Op: OpMeasure, Qubits: []int{4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstruction(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		msg  string
	}{
		{"empty", "   ", "empty"},
		{"unknown opcode", "cz 0 1", "unknown opcode"},
		{"negative operand", "h -1", "invalid qubit"},
		{"non-numeric operand", "h a", "invalid qubit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInstruction(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "c 0 1", NewInstruction(OpCNOT, 0, 1).String())
	assert.Equal(t, "reset 0 1 2", NewInstruction(OpReset, 0, 1, 2).String())
	assert.Equal(t, "m 7", NewInstruction(OpMeasure, 7).String())
}

func TestInstructionValidate(t *testing.T) {
	assert.NoError(t, NewInstruction(OpCNOT, 0, 1).Validate(2))
	assert.NoError(t, NewInstruction(OpReset, 0, 1).Validate(2))

	err := NewInstruction(OpCNOT, 0).Validate(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 2")

	err = NewInstruction(OpH, 2).Validate(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = NewInstruction(OpCNOT, 1, 1).Validate(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeated")

	err = NewInstruction(OpReset).Validate(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")
}

func TestInstructionRemap(t *testing.T) {
	in := NewInstruction(OpCNOT, 0, 1)

	got, err := in.Remap([]int{5, 2})
	require.NoError(t, err)
	assert.Equal(t, "c 5 2", got.String())

	// The receiver is not modified.
	assert.Equal(t, "c 0 1", in.String())

	_, err = NewInstruction(OpH, 1).Remap([]int{3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target")
}

func TestOpcodeIsGate(t *testing.T) {
	for _, op := range []Opcode{OpH, OpP, OpX, OpY, OpZ, OpCNOT} {
		assert.True(t, op.IsGate(), "%s should be a gate", op)
	}
	assert.False(t, OpReset.IsGate())
	assert.False(t, OpMeasure.IsGate())
	assert.False(t, Opcode("t").IsGate())
}

func TestProgramLinesAndBody(t *testing.T) {
	p := &Program{
		NumQubits: 2,
		Measured:  []int{0, 1},
		Instructions: MustParse(
			"reset 0 1",
			"h 0",
			"c 0 1",
			"m 0",
			"m 1",
		),
	}

	assert.Equal(t, []string{"reset 0 1", "h 0", "c 0 1", "m 0", "m 1"}, p.Lines())
	assert.Equal(t, MustParse("h 0", "c 0 1"), p.Body())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("q 0") })
}
