// Package engine implements the permutation importance computation: base
// score, per-feature repeated shuffling and rescoring, and aggregation of
// score degradation into per-feature mean and standard deviation.
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/baditaflorin/go_feature_importance/internal/core/domain"
	"github.com/baditaflorin/go_feature_importance/internal/core/score"
	"github.com/baditaflorin/go_feature_importance/internal/pool"
	"github.com/baditaflorin/go_feature_importance/internal/ports"
)

// Config holds configuration for the importance engine.
type Config struct {
	// Kind selects the scoring function.
	Kind domain.ScoreKind
	// Repeats is the number of shuffle trials per feature.
	Repeats int
	// OnlyMeans drops per-trial deltas and standard deviations from the
	// result, keeping only per-feature means.
	OnlyMeans bool
	// Scale rescales deltas by the maximum per-feature mean delta so the
	// top feature gets a canonical mean importance of 1.
	Scale bool
	// Verbose emits per-feature progress at info level. It never affects
	// the returned values.
	Verbose bool
	// Seed seeds the per-feature random sources; feature f uses Seed+f,
	// so results are reproducible regardless of worker scheduling.
	// Zero means derive a seed from the clock.
	Seed int64
	// Workers bounds the number of concurrent feature tasks.
	// Zero means use runtime.NumCPU().
	Workers int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Kind:    domain.Mse,
		Repeats: 5,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown score kind %d", domain.ErrInvalidInput, int(c.Kind))
	}
	if c.Repeats <= 0 {
		return fmt.Errorf("%w: repeats must be positive, got %d", domain.ErrInvalidInput, c.Repeats)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", domain.ErrInvalidInput, c.Workers)
	}
	return nil
}

// Engine computes permutation feature importance.
type Engine struct {
	config   Config
	logger   ports.Logger
	shuffler ports.ColumnShuffler
}

// New creates a new importance engine.
func New(config Config, logger ports.Logger, shuffler ports.ColumnShuffler) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config:   config,
		logger:   logger,
		shuffler: shuffler,
	}, nil
}

// Compute estimates the importance of every feature column in x by
// measuring how much the model's score against y degrades when that column
// is shuffled. The model's Predict must be safe for concurrent calls with
// distinct inputs; x and y are only read. Either a fully populated result
// is returned or a single error; there are no partial results.
func (e *Engine) Compute(ctx context.Context, model ports.Model, x [][]float64, y []float64) (domain.Result, error) {
	if err := validateData(x, y); err != nil {
		return domain.Result{}, err
	}

	rows := len(x)
	features := len(x[0])

	basePred, err := model.Predict(x)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: base prediction failed: %v", domain.ErrModel, err)
	}
	if len(basePred) != rows {
		return domain.Result{}, fmt.Errorf("%w: base prediction length %d, want %d",
			domain.ErrModel, len(basePred), rows)
	}
	baseScore, err := score.Evaluate(e.config.Kind, y, basePred)
	if err != nil {
		return domain.Result{}, err
	}

	seed := e.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e.logger.Debug("Starting importance computation",
		"kind", e.config.Kind.String(),
		"rows", rows,
		"features", features,
		"repeats", e.config.Repeats,
		"base_score", baseScore,
	)

	workers := e.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > features {
		workers = features
	}

	// Deltas are collected into a slice indexed by feature position, so
	// worker completion order never leaks into result order.
	raw := make([][]float64, features)
	scratch := pool.NewMatrixPool(rows, features)

	jobs := make(chan int, features)
	for f := 0; f < features; f++ {
		jobs <- f
	}
	close(jobs)

	errCh := make(chan error, features)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if ctx.Err() != nil {
					errCh <- ctx.Err()
					continue
				}
				rng := rand.New(rand.NewSource(seed + int64(f)))
				deltas, err := e.permute(model, x, y, baseScore, f, rng, scratch)
				if err != nil {
					errCh <- err
					continue
				}
				raw[f] = deltas
				if e.config.Verbose {
					e.logger.Info("Feature processed",
						"feature", f,
						"repeats", e.config.Repeats,
					)
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return domain.Result{}, err
	}

	if e.config.Scale {
		rescale(raw)
	}

	result := domain.Result{
		Kind:        e.config.Kind,
		BaseScore:   baseScore,
		Importances: make([]domain.FeatureImportance, features),
	}
	for f, deltas := range raw {
		imp := domain.FeatureImportance{
			Feature: f,
			Mean:    stat.Mean(deltas, nil),
		}
		if !e.config.OnlyMeans {
			imp.Raw = deltas
			imp.StdDev = math.Sqrt(stat.Moment(2, deltas, nil))
		}
		result.Importances[f] = imp
	}

	e.logger.Debug("Importance computation finished",
		"features", features,
		"base_score", baseScore,
	)
	return result, nil
}

// permute runs the repeated shuffle-predict-score loop for one feature and
// returns the oriented score deltas.
func (e *Engine) permute(model ports.Model, x [][]float64, y []float64, baseScore float64,
	feature int, rng *rand.Rand, scratch *pool.MatrixPool) ([]float64, error) {

	shuffled := scratch.Get()
	defer scratch.Put(shuffled)

	deltas := make([]float64, e.config.Repeats)
	for i := 0; i < e.config.Repeats; i++ {
		e.shuffler.ShuffleColumn(shuffled, x, feature, rng)
		pred, err := model.Predict(shuffled)
		if err != nil {
			return nil, fmt.Errorf("%w: prediction failed for feature %d: %v",
				domain.ErrModel, feature, err)
		}
		if len(pred) != len(y) {
			return nil, fmt.Errorf("%w: prediction length %d for feature %d, want %d",
				domain.ErrModel, len(pred), feature, len(y))
		}
		permuted, err := score.Evaluate(e.config.Kind, y, pred)
		if err != nil {
			return nil, err
		}
		// Orient the delta so that larger positive means more important,
		// independent of the score kind's polarity.
		if e.config.Kind.HigherIsBetter() {
			deltas[i] = baseScore - permuted
		} else {
			deltas[i] = permuted - baseScore
		}
	}
	return deltas, nil
}

// rescale divides every delta by the maximum per-feature mean delta, a
// global monotone normalization that gives the most important feature a
// mean of 1. Left untouched when the maximum is not positive.
func rescale(raw [][]float64) {
	means := make([]float64, len(raw))
	for f, deltas := range raw {
		means[f] = stat.Mean(deltas, nil)
	}
	maxMean := floats.Max(means)
	if maxMean <= 0 {
		return
	}
	for _, deltas := range raw {
		floats.Scale(1/maxMean, deltas)
	}
}

// validateData checks the feature matrix and target vector invariants:
// at least one row and one column, no ragged rows, one target per row.
func validateData(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: feature matrix has no rows", domain.ErrInvalidInput)
	}
	cols := len(x[0])
	if cols == 0 {
		return fmt.Errorf("%w: feature matrix has no columns", domain.ErrInvalidInput)
	}
	for i, row := range x {
		if len(row) != cols {
			return fmt.Errorf("%w: ragged feature matrix, row %d has %d columns, want %d",
				domain.ErrInvalidInput, i, len(row), cols)
		}
	}
	if len(y) != len(x) {
		return fmt.Errorf("%w: target length %d does not match row count %d",
			domain.ErrInvalidInput, len(y), len(x))
	}
	return nil
}
