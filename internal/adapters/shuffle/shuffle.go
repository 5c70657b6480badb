// Package shuffle provides the column permutation used by the importance
// engine: a Fisher–Yates shuffle of one feature column across rows, leaving
// every other column untouched.
package shuffle

import "math/rand"

// FisherYates permutes single feature columns with the supplied random
// source. It is stateless and safe for concurrent use; callers own the
// random sources.
type FisherYates struct{}

// NewFisherYates creates a new column shuffler.
func NewFisherYates() *FisherYates {
	return &FisherYates{}
}

// ShuffleColumn copies src into the scratch matrix dst, then replaces
// column col in dst with a uniformly random permutation of that column's
// original values. The shuffle is a permutation, not a resample: the
// multiset of column values is preserved, and a value may land back in its
// original row. src is never mutated. Cost is O(rows).
func (FisherYates) ShuffleColumn(dst, src [][]float64, col int, rng *rand.Rand) {
	for i, row := range src {
		copy(dst[i], row)
	}
	rng.Shuffle(len(dst), func(i, j int) {
		dst[i][col], dst[j][col] = dst[j][col], dst[i][col]
	})
}

// Column returns a fresh copy of matrix with column col permuted, for
// callers that do not manage scratch matrices themselves.
func (fy FisherYates) Column(matrix [][]float64, col int, rng *rand.Rand) [][]float64 {
	dst := make([][]float64, len(matrix))
	for i, row := range matrix {
		dst[i] = make([]float64, len(row))
	}
	fy.ShuffleColumn(dst, matrix, col, rng)
	return dst
}
