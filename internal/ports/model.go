package ports

// Model is the single capability the importance engine requires from a
// fitted predictive model: map a feature matrix to one prediction per row.
//
// Predict must be safe to call concurrently with distinct inputs; the
// engine invokes it from multiple worker goroutines. It must not retain or
// mutate the matrix it is given.
type Model interface {
	Predict(x [][]float64) ([]float64, error)
}
