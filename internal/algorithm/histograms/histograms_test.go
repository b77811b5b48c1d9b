package histograms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seantiz/algolab/internal/algorithm/histograms"
)

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestExpandGolden(t *testing.T) {
	in := []int{2, 5, 3, 8, 1, 4, 6, 2}
	out, err := histograms.Expand(in, 1, 7)
	require.NoError(t, err)

	assert.Len(t, out, 7)
	assert.LessOrEqual(t, sum(out), sum(in))
	assert.Equal(t, sum(in), sum(out)) // counts are moved, never dropped
	assert.Equal(t, 2, out[0])         // level 0 maps to newMin
	assert.Equal(t, 2, out[6])         // level 7 maps to newMax
}

func TestExpandEdgeCases(t *testing.T) {
	out, err := histograms.Expand([]int{0, 0, 0}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, out)

	out, err = histograms.Expand([]int{0, 9, 0}, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 0, 0}, out)

	_, err = histograms.Expand(nil, 0, 3)
	assert.ErrorIs(t, err, histograms.ErrEmptyHistogram)

	_, err = histograms.Expand([]int{1, -1}, 0, 3)
	assert.ErrorIs(t, err, histograms.ErrNegativeCount)

	_, err = histograms.Expand([]int{1, 2}, 5, 3)
	assert.ErrorIs(t, err, histograms.ErrBadRange)
}

func TestEqualize(t *testing.T) {
	in := []int{0, 10, 10, 0, 0, 0, 0, 20}
	out, err := histograms.Equalize(in, 8)
	require.NoError(t, err)
	assert.Len(t, out, 8)
	assert.Equal(t, sum(in), sum(out))

	mapping, err := histograms.EqualizationMap(in, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, mapping[1])
	assert.Equal(t, 7, mapping[7])

	_, err = histograms.Equalize([]int{0, 0}, 4)
	assert.ErrorIs(t, err, histograms.ErrNoMass)
}

func TestCumulativeAndNormalize(t *testing.T) {
	cdf, err := histograms.Cumulative([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 6}, cdf)

	p, err := histograms.Normalize([]int{1, 1, 2})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.5}, p, 1e-12)
}

func TestTableDecodesLooseArguments(t *testing.T) {
	fn := histograms.Table()["expand"]
	require.NotNil(t, fn)

	got, err := fn([]any{[]any{2.0, 5.0, 3.0, 8.0, 1.0, 4.0, 6.0, 2.0}, 1.0, 7.0})
	require.NoError(t, err)
	out, ok := got.([]int)
	require.True(t, ok)
	assert.Len(t, out, 7)
}
