package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_MeanAndStdDev(t *testing.T) {
	var a Accumulator
	for _, x := range []float64{1.0, 2.0, 3.0} {
		a.Add(x)
	}
	assert.Equal(t, 3, a.Count())
	assert.InDelta(t, 2.0, a.Mean(), 1e-12)
	sd := a.SampleStdDev()
	require.NotNil(t, sd)
	assert.InDelta(t, 1.0, *sd, 1e-12)
}

func TestAccumulator_StdDevUndefinedBelowTwoSamples(t *testing.T) {
	var a Accumulator
	assert.Nil(t, a.SampleStdDev())
	a.Add(4.2)
	assert.Nil(t, a.SampleStdDev(), "one sample has no sample stddev")
	assert.InDelta(t, 4.2, a.Mean(), 1e-12)
}

func TestAccumulator_Stability(t *testing.T) {
	// Large offset would wreck a naive sum-of-squares implementation.
	var a Accumulator
	offset := 1e9
	for _, x := range []float64{offset + 1, offset + 2, offset + 3} {
		a.Add(x)
	}
	sd := a.SampleStdDev()
	require.NotNil(t, sd)
	assert.InDelta(t, 1.0, *sd, 1e-6)
	assert.False(t, math.IsNaN(*sd))
}

func TestGroupMeans(t *testing.T) {
	g := NewGroupMeans()
	g.Add(0, 1.0)
	g.Add(0, 3.0)
	g.Add(7, 5.0)

	acc := g.Get(0)
	require.NotNil(t, acc)
	assert.InDelta(t, 2.0, acc.Mean(), 1e-12)

	lone := g.Get(7)
	require.NotNil(t, lone)
	assert.Nil(t, lone.SampleStdDev())

	assert.Nil(t, g.Get(99))
}
