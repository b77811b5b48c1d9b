package algorithm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seantiz/algolab/internal/algorithm"
	"github.com/seantiz/algolab/internal/model"
)

func TestDefaultRegistersEveryCategory(t *testing.T) {
	reg, err := algorithm.Default()
	require.NoError(t, err)

	assert.ElementsMatch(t, model.Categories, reg.Categories())
	for _, path := range []string{
		"histograms.expand",
		"imageProcessing.convolve",
		"graphTheory.floydWarshall",
		"cryptography.modInverse",
		"gameTheory.shapley",
	} {
		assert.True(t, reg.Has(path), path)
	}
}

func TestDefaultExpandSmoke(t *testing.T) {
	reg, err := algorithm.Default()
	require.NoError(t, err)

	fn, err := reg.Lookup("histograms.expand")
	require.NoError(t, err)

	got, err := fn([]any{[]int{2, 5, 3, 8, 1, 4, 6, 2}, 1, 7})
	require.NoError(t, err)
	out := got.([]int)
	assert.Len(t, out, 7)

	total := 0
	for _, v := range out {
		total += v
	}
	assert.LessOrEqual(t, total, 31)
}
