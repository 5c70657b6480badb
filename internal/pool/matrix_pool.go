package pool

import "sync"

// MatrixPool implements a pool of row-major scratch matrices of a fixed
// shape for efficient memory reuse across permutation trials. Each matrix
// is backed by a single contiguous float64 slice.
type MatrixPool struct {
	pool sync.Pool
	rows int
	cols int
}

// NewMatrixPool creates a new pool of rows x cols scratch matrices.
func NewMatrixPool(rows, cols int) *MatrixPool {
	return &MatrixPool{
		pool: sync.Pool{
			New: func() interface{} {
				backing := make([]float64, rows*cols)
				matrix := make([][]float64, rows)
				for i := range matrix {
					matrix[i] = backing[i*cols : (i+1)*cols]
				}
				return &matrix
			},
		},
		rows: rows,
		cols: cols,
	}
}

// Get retrieves a scratch matrix from the pool or creates a new one if none
// are available. Contents are unspecified; callers overwrite before use.
func (mp *MatrixPool) Get() [][]float64 {
	return *mp.pool.Get().(*[][]float64)
}

// Put returns a scratch matrix to the pool for reuse.
func (mp *MatrixPool) Put(matrix [][]float64) {
	mp.pool.Put(&matrix)
}

// Rows returns the row count of matrices managed by this pool.
func (mp *MatrixPool) Rows() int { return mp.rows }

// Cols returns the column count of matrices managed by this pool.
func (mp *MatrixPool) Cols() int { return mp.cols }
