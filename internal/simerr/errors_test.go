package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare",
			err:  Configuration("shot count must be >= 1, got %d", 0),
			want: "CONFIGURATION: shot count must be >= 1, got 0",
		},
		{
			name: "unknown operator",
			err:  UnknownOperator("Gfoo", 3),
			want: "UNKNOWN_OPERATOR: operator label not found in lookup table (label=Gfoo, layer=3)",
		},
		{
			name: "layer",
			err:  InvalidLayer(0, "qubit %d targeted twice", 2),
			want: "INVALID_LAYER: qubit 2 targeted twice (layer=0)",
		},
		{
			name: "shared qubit",
			err:  SharedQubit(2, 1, "Gx", "Gcnot"),
			want: "INVALID_LAYER: operators Gx and Gcnot both target the same qubit (layer=2, qubit=1)",
		},
		{
			name: "execution with cause",
			err: &Error{
				Code: CodeSimulatorExecution, Message: "shot failed",
				Layer: -1, Qubit: -1, Shot: 4, Attempts: 3, Err: errors.New("exit status 2"),
			},
			want: "SIMULATOR_EXECUTION: shot failed (shot=4, attempts=3): exit status 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("probabilities: %w", InvalidLayer(1, "overlap"))

	assert.True(t, IsInvalidLayer(err))
	assert.True(t, IsTranslation(err))
	assert.False(t, IsConfiguration(err))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, CodeInvalidLayer, CodeOf(err))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeSimulatorExecution, "x")))
	assert.True(t, IsRetryable(New(CodeParse, "x")))
	assert.True(t, IsRetryable(New(CodeTimeout, "x")))
	assert.False(t, IsRetryable(New(CodeConfiguration, "x")))
	assert.False(t, IsRetryable(UnknownOperator("G", 0)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestCodeOfNonSimErr(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeParse, cause, "bad output")

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsParse(err))
	assert.True(t, IsTimeout(New(CodeTimeout, "slow")))
	assert.True(t, IsSimulatorExecution(New(CodeSimulatorExecution, "exit")))
	assert.True(t, IsUnknownOperator(UnknownOperator("G", 0)))
}

func TestCodesCoverPredicates(t *testing.T) {
	codes := Codes()
	assert.Len(t, codes, 6)
	for _, c := range codes {
		err := New(c, "x")
		assert.Equal(t, c, CodeOf(err))
		assert.NotEqual(t, IsRetryable(err), IsTranslation(err) || c == CodeConfiguration, c)
	}
}
