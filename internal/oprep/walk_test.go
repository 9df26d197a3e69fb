package oprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDeterministic(t *testing.T) {
	h := mustStatic(t, 1, "h 0")
	noise := pauliNoise(t, 1)

	assert.True(t, IsDeterministic(h))
	assert.False(t, IsDeterministic(noise))

	c, err := NewComposed(h, noise)
	require.NoError(t, err)
	assert.False(t, IsDeterministic(c))

	e, err := NewEmbedded(c, []int{1}, 2)
	require.NoError(t, err)
	assert.False(t, IsDeterministic(e))

	clean, err := NewEmbedded(h, []int{0}, 2)
	require.NoError(t, err)
	assert.True(t, IsDeterministic(clean))
}

func TestStochasticNodes(t *testing.T) {
	n1 := pauliNoise(t, 1)
	n2 := pauliNoise(t, 2)
	c, err := NewComposed(mustStatic(t, 1, "h 0"), n1, n2)
	require.NoError(t, err)

	assert.Equal(t, []*Stochastic{n1, n2}, StochasticNodes(c))
}

func TestDescribe(t *testing.T) {
	noise, err := NewStochastic(1, 7, Alternative{Weight: 0.1, Ops: mustStatic(t, 1, "z 0").Ops()})
	require.NoError(t, err)
	c, err := NewComposed(mustStatic(t, 1, "h 0", "p 0"), noise)
	require.NoError(t, err)
	e, err := NewEmbedded(c, []int{1}, 2)
	require.NoError(t, err)

	assert.Equal(t,
		"embedded([1]/2){composed[static(1){h 0; p 0} stochastic(1,seed=7){0.1:z 0}]}",
		Describe(e))
	assert.Equal(t, "<nil>", Describe(nil))
}

func TestTableLabelsSorted(t *testing.T) {
	table := Table{
		"Gz": mustStatic(t, 1, "p 0"),
		"Gh": mustStatic(t, 1, "h 0"),
		"Gi": mustStatic(t, 1),
	}
	assert.Equal(t, []string{"Gh", "Gi", "Gz"}, table.Labels())

	clone := table.Clone()
	delete(clone, "Gz")
	_, ok := table.Lookup("Gz")
	assert.True(t, ok)
}
