package ports

import "math/rand"

// ColumnShuffler produces a permuted copy of one feature column.
type ColumnShuffler interface {
	// ShuffleColumn copies src into the scratch matrix dst and replaces
	// column col in dst with a uniformly random permutation of that
	// column's original values, drawn from rng. src is never mutated.
	// dst must have the same shape as src.
	ShuffleColumn(dst, src [][]float64, col int, rng *rand.Rand)
}
