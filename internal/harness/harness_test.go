package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stabsim/internal/simerr"
	"github.com/roach88/stabsim/internal/testutil"
)

func mustScenario(t *testing.T, yaml string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return s
}

func TestRun_Passes(t *testing.T) {
	s := mustScenario(t, `
name: flip
circuit: "Gxpi:0"
shots: 5
expect: {"1": 1}
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err)
	assert.Equal(t, 5, result.Distribution.Shots)
	assert.Equal(t, []string{"reset 0", "x 0", "m 0"}, result.Program.Lines())
}

func TestRun_RecordsMismatch(t *testing.T) {
	s := mustScenario(t, `
name: wrong
circuit: "Gxpi:0"
shots: 5
expect: {"0": 1}
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"outcome 0: got 0.0000, want 1.0000 ± 0",
		"outcome 1: got 1.0000, want 0.0000 ± 0",
	}, result.Errors)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	s := mustScenario(t, `
name: seeded
circuit: "Gh:0Gh:1"
shots: 64
seed: 11
expect: {"00": 0.25, "01": 0.25, "10": 0.25, "11": 0.25}
tolerance: 0.25
`)
	a, err := Run(context.Background(), s)
	require.NoError(t, err)
	b, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, a.Distribution.Counts(), b.Distribution.Counts())
}

func TestRun_ExpectedError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shared-qubit.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.True(t, simerr.IsInvalidLayer(result.Err))
	assert.Nil(t, result.Program)
}

func TestRun_ModelFailureIsAResult(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, `
name: missing-model
model: nowhere
circuit: "Gh:0"
shots: 1
expect_error: CONFIGURATION
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.True(t, simerr.IsConfiguration(result.Err))
}

func TestRun_UnexpectedFailure(t *testing.T) {
	s := mustScenario(t, `
name: unknown-op
circuit: "Gfoo:0"
shots: 1
expect: {"0": 1}
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "simulation failed: UNKNOWN_OPERATOR")
}

func TestRun_BadCircuitIsAnError(t *testing.T) {
	s := mustScenario(t, `
name: broken
circuit: "Gh:"
shots: 1
expect: {"0": 1}
`)
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken: circuit")
}

func TestRun_WithRunner(t *testing.T) {
	runner := testutil.NewFakeRunner(1)
	s := mustScenario(t, `
name: injected
circuit: "Gh:0"
shots: 30
expect: {"0": 0.5, "1": 0.5}
tolerance: 0.5
`)
	result, err := Run(context.Background(), s, WithRunner(runner))
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, 30, runner.Calls())
}

func TestRun_MarginalUnknownQubit(t *testing.T) {
	s := mustScenario(t, `
name: bad-marginal
circuit: "Gh:0"
shots: 2
marginal: [3]
expect: {"0": 1}
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.True(t, simerr.IsConfiguration(result.Err))
}

func TestRun_Noise(t *testing.T) {
	s := mustScenario(t, `
name: noisy
circuit: "Gi:0"
shots: 4
noise: 1
seed: 2
expect: {"0": 0.5, "1": 0.5}
tolerance: 0.5
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	// Full-strength depolarizing always inserts a Pauli after the gate.
	require.Len(t, result.Program.Instructions, 3)
	assert.Contains(t, []string{"x 0", "y 0", "z 0"}, result.Program.Instructions[1].String())
}
