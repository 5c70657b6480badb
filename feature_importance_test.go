// feature_importance_test.go
package featureimportance

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/baditaflorin/l"
)

// rowSumModel predicts the sum of each row's values.
type rowSumModel struct{}

func (rowSumModel) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		var sum float64
		for _, v := range row {
			sum += v
		}
		out[i] = sum
	}
	return out, nil
}

// quietLogger builds a logger that discards all output, so tests stay silent.
func quietLogger(t *testing.T) l.Logger {
	t.Helper()
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output: io.Discard,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func TestRowSumModelImportance(t *testing.T) {
	// Column 1 is constant zero: shuffling it never changes predictions,
	// so it must rank lowest with importance zero. Columns 0 and 2 carry
	// all the signal.
	x := [][]float64{
		{1, 0, 3},
		{4, 0, 6},
		{7, 0, 9},
	}
	y := []float64{4, 10, 16}

	result, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithSeed(42),
		WithRepeats(20),
		WithLogger(quietLogger(t)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.BaseScore != 0 {
		t.Errorf("expected base score 0 for a perfect fit, got %v", result.BaseScore)
	}
	if len(result.Importances) != 3 {
		t.Fatalf("expected 3 importances, got %d", len(result.Importances))
	}
	for i, imp := range result.Importances {
		if imp.Feature != i {
			t.Errorf("importance %d has feature index %d", i, imp.Feature)
		}
		if len(imp.Raw) != 20 {
			t.Errorf("feature %d has %d raw deltas, want 20", i, len(imp.Raw))
		}
	}

	if result.Importances[1].Mean != 0 {
		t.Errorf("constant column should have importance 0, got %v", result.Importances[1].Mean)
	}
	if result.Importances[0].Mean <= 0 || result.Importances[2].Mean <= 0 {
		t.Errorf("informative columns should have positive importance, got %v and %v",
			result.Importances[0].Mean, result.Importances[2].Mean)
	}
	if result.Importances[1].Mean >= result.Importances[0].Mean ||
		result.Importances[1].Mean >= result.Importances[2].Mean {
		t.Errorf("constant column must rank lowest: %+v", result.Importances)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	x := [][]float64{
		{1.5, 2.0, 0.5},
		{3.0, 1.0, 2.5},
		{0.5, 4.0, 1.0},
		{2.0, 3.5, 3.0},
	}
	y := []float64{4.0, 6.5, 5.5, 8.5}

	run := func() Result {
		result, err := Compute(context.Background(), rowSumModel{}, x, y,
			WithSeed(7),
			WithLogger(quietLogger(t)),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different results:\n%+v\n%+v", first, second)
	}
}

func TestVerboseDoesNotChangeResult(t *testing.T) {
	x := [][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	}
	y := []float64{3, 7, 11}

	run := func(verbose bool) Result {
		result, err := Compute(context.Background(), rowSumModel{}, x, y,
			WithSeed(11),
			WithVerbose(verbose),
			WithLogger(quietLogger(t)),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result
	}

	if !reflect.DeepEqual(run(false), run(true)) {
		t.Error("verbose mode changed the numeric result")
	}
}

func TestOnlyMeans(t *testing.T) {
	x := [][]float64{
		{2, 1},
		{4, 3},
		{6, 5},
		{8, 7},
	}
	y := []float64{3, 7, 11, 15}

	full, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithSeed(3),
		WithLogger(quietLogger(t)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meansOnly, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithSeed(3),
		WithOnlyMeans(true),
		WithLogger(quietLogger(t)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range full.Importances {
		if meansOnly.Importances[i].Raw != nil {
			t.Errorf("feature %d: only_means result carries raw deltas", i)
		}
		if meansOnly.Importances[i].StdDev != 0 {
			t.Errorf("feature %d: only_means result carries stddev", i)
		}
		if meansOnly.Importances[i].Mean != full.Importances[i].Mean {
			t.Errorf("feature %d: only_means mean %v differs from full mean %v",
				i, meansOnly.Importances[i].Mean, full.Importances[i].Mean)
		}
	}
}

func TestScalePreservesRanking(t *testing.T) {
	x := [][]float64{
		{1.0, 0.1, 5.0},
		{2.0, 0.2, 3.0},
		{3.0, 0.3, 8.0},
		{4.0, 0.4, 1.0},
		{5.0, 0.5, 6.0},
	}
	y := []float64{6.1, 5.2, 11.3, 5.4, 11.5}

	raw, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithSeed(9),
		WithLogger(quietLogger(t)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithSeed(9),
		WithScale(true),
		WithLogger(quietLogger(t)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scaling is monotone: pairwise order of means is preserved.
	for i := range raw.Importances {
		for j := range raw.Importances {
			rawLess := raw.Importances[i].Mean < raw.Importances[j].Mean
			scaledLess := scaled.Importances[i].Mean < scaled.Importances[j].Mean
			if rawLess != scaledLess {
				t.Errorf("scaling changed ranking between features %d and %d", i, j)
			}
		}
	}

	// The top feature gets a canonical mean of 1.
	var maxMean float64 = math.Inf(-1)
	for _, imp := range scaled.Importances {
		if imp.Mean > maxMean {
			maxMean = imp.Mean
		}
	}
	if math.Abs(maxMean-1) > 1e-12 {
		t.Errorf("expected top scaled mean 1, got %v", maxMean)
	}
}

func TestInvalidOptions(t *testing.T) {
	x := [][]float64{{1}, {2}}
	y := []float64{1, 2}

	_, err := Compute(context.Background(), rowSumModel{}, x, y,
		WithRepeats(0),
		WithLogger(quietLogger(t)),
	)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero repeats, got %v", err)
	}

	_, err = Compute(context.Background(), rowSumModel{}, x, y,
		WithScoreKind(ScoreKind(99)),
		WithLogger(quietLogger(t)),
	)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown score kind, got %v", err)
	}
}

func TestComputeWithDefaults(t *testing.T) {
	x := [][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	}
	y := []float64{3, 7, 11}

	result, err := ComputeWithDefaults(rowSumModel{}, x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Importances) != 2 {
		t.Fatalf("expected 2 importances, got %d", len(result.Importances))
	}
	for i, imp := range result.Importances {
		if len(imp.Raw) != 5 {
			t.Errorf("feature %d: expected 5 raw deltas by default, got %d", i, len(imp.Raw))
		}
	}
}
