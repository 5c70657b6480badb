package domain

// ScoreKind selects the scoring function used to evaluate predictions
// against true targets. The set is closed; dispatch over it is exhaustive.
type ScoreKind int

const (
	// Mse is the mean squared error.
	Mse ScoreKind = iota
	// Mae is the mean absolute error.
	Mae
	// Rmse is the root mean squared error.
	Rmse
	// Smape is the symmetric mean absolute percentage error.
	Smape
	// Acc is classification accuracy over rounded predictions.
	Acc
	// Ce is binary cross-entropy with clamped predictions.
	Ce
)

// String returns the canonical lower-case name of the score kind.
func (k ScoreKind) String() string {
	switch k {
	case Mse:
		return "mse"
	case Mae:
		return "mae"
	case Rmse:
		return "rmse"
	case Smape:
		return "smape"
	case Acc:
		return "acc"
	case Ce:
		return "ce"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the supported score kinds.
func (k ScoreKind) Valid() bool {
	return k >= Mse && k <= Ce
}

// HigherIsBetter reports the polarity of the score kind: true for
// accuracy-like scores, false for error-like scores. The engine uses this
// to orient importance deltas so that a larger positive delta always means
// the feature matters more.
func (k ScoreKind) HigherIsBetter() bool {
	return k == Acc
}

// FeatureImportance holds the importance estimate for a single feature.
type FeatureImportance struct {
	// Feature is the zero-based column index in the input matrix.
	Feature int
	// Raw holds the per-trial score deltas, one per repetition.
	// Nil when the computation ran in means-only mode.
	Raw []float64
	// Mean is the mean of the (possibly rescaled) deltas.
	Mean float64
	// StdDev is the population standard deviation of the deltas.
	// Zero when the computation ran in means-only mode.
	StdDev float64
}

// Result holds the outcome of one importance computation. It is created
// fresh per call and never mutated afterwards; entries are ordered by
// original feature index.
type Result struct {
	// Kind is the scoring function the result was computed with.
	Kind ScoreKind
	// BaseScore is the model's score on the unshuffled data.
	BaseScore float64
	// Importances holds one entry per input feature, in column order.
	Importances []FeatureImportance
}
