package pool

import "testing"

func TestMatrixPoolShape(t *testing.T) {
	mp := NewMatrixPool(4, 3)

	m := mp.Get()
	if len(m) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(m))
	}
	for i, row := range m {
		if len(row) != 3 {
			t.Errorf("row %d has %d columns, want 3", i, len(row))
		}
	}
	mp.Put(m)

	if mp.Rows() != 4 || mp.Cols() != 3 {
		t.Errorf("unexpected pool shape %dx%d", mp.Rows(), mp.Cols())
	}
}

func TestMatrixPoolReuse(t *testing.T) {
	mp := NewMatrixPool(2, 2)

	m := mp.Get()
	m[0][0] = 42
	mp.Put(m)

	// Pooled or fresh, the matrix must have the right shape and be fully
	// writable.
	again := mp.Get()
	for i := range again {
		for j := range again[i] {
			again[i][j] = float64(i + j)
		}
	}
	mp.Put(again)
}
