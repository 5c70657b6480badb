package shuffle

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix() [][]float64 {
	return [][]float64{
		{1, 10, 100},
		{2, 20, 200},
		{3, 30, 300},
		{4, 40, 400},
		{5, 50, 500},
		{6, 60, 600},
	}
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func column(m [][]float64, col int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[col]
	}
	return out
}

func TestShuffleColumnPreservesMultiset(t *testing.T) {
	src := testMatrix()
	dst := cloneMatrix(src)
	rng := rand.New(rand.NewSource(1))

	FisherYates{}.ShuffleColumn(dst, src, 1, rng)

	// The shuffle is a permutation, not a resample.
	got := column(dst, 1)
	want := column(src, 1)
	sort.Float64s(got)
	sort.Float64s(want)
	assert.Equal(t, want, got)
}

func TestShuffleColumnLeavesOtherColumnsAndSource(t *testing.T) {
	src := testMatrix()
	original := cloneMatrix(src)
	dst := cloneMatrix(src)
	rng := rand.New(rand.NewSource(2))

	FisherYates{}.ShuffleColumn(dst, src, 0, rng)

	assert.Equal(t, original, src, "source matrix must not be mutated")
	assert.Equal(t, column(src, 1), column(dst, 1))
	assert.Equal(t, column(src, 2), column(dst, 2))
}

func TestShuffleColumnDeterministicWithSeed(t *testing.T) {
	src := testMatrix()

	first := cloneMatrix(src)
	FisherYates{}.ShuffleColumn(first, src, 2, rand.New(rand.NewSource(7)))

	second := cloneMatrix(src)
	FisherYates{}.ShuffleColumn(second, src, 2, rand.New(rand.NewSource(7)))

	assert.Equal(t, first, second)
}

func TestColumnAllocatesFreshMatrix(t *testing.T) {
	src := testMatrix()
	original := cloneMatrix(src)

	out := NewFisherYates().Column(src, 0, rand.New(rand.NewSource(3)))

	require.Len(t, out, len(src))
	assert.Equal(t, original, src)

	got := column(out, 0)
	want := column(src, 0)
	sort.Float64s(got)
	sort.Float64s(want)
	assert.Equal(t, want, got)
}
