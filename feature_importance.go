// feature_importance.go
// Package featureimportance estimates permutation feature importance for a
// trained predictive model: given a fitted model, a feature matrix and
// target values, it measures how much each feature contributes to model
// performance by scoring the degradation caused by randomly shuffling that
// feature's values across samples.
//
// The model is an external collaborator accessed only through a Predict
// capability; any concrete model (linear, tree ensemble, mock) satisfies it.
// Feature tasks run in parallel; results are always ordered by original
// feature index, and a seeded run is fully reproducible.
//
// This version uses the functional options pattern to allow configuration of
// the scoring function, repeat count, scaling, parallelism and logging.
package featureimportance

import (
	"context"

	"github.com/baditaflorin/go_feature_importance/internal/adapters/logger"
	"github.com/baditaflorin/go_feature_importance/internal/adapters/shuffle"
	"github.com/baditaflorin/go_feature_importance/internal/core/domain"
	"github.com/baditaflorin/go_feature_importance/internal/core/engine"
	"github.com/baditaflorin/go_feature_importance/internal/core/score"
	"github.com/baditaflorin/go_feature_importance/internal/ports"
	"github.com/baditaflorin/go_feature_importance/internal/warmup"
	"github.com/baditaflorin/l"
)

// Re-exported core types so callers only import the root package.
type (
	// Model is the predict capability the engine requires from a fitted
	// model. Predict must be safe to call concurrently with distinct
	// inputs and must return one prediction per input row.
	Model = ports.Model
	// Result holds one importance computation, ordered by feature index.
	Result = domain.Result
	// FeatureImportance is the per-feature slice of a Result.
	FeatureImportance = domain.FeatureImportance
	// ScoreKind selects a scoring function.
	ScoreKind = domain.ScoreKind
)

// Supported scoring functions.
const (
	Mse   = domain.Mse
	Mae   = domain.Mae
	Rmse  = domain.Rmse
	Smape = domain.Smape
	Acc   = domain.Acc
	Ce    = domain.Ce
)

// Sentinel errors; match with errors.Is.
var (
	ErrInvalidInput = domain.ErrInvalidInput
	ErrModel        = domain.ErrModel
)

// Importance provides methods to compute permutation feature importance
// using configurable parameters.
type Importance struct {
	engine *engine.Engine
	logger ports.Logger
}

// Option defines a functional option for configuring Importance.
type Option func(*importanceConfig)

type importanceConfig struct {
	Engine engine.Config
	Logger ports.Logger
	WarmUp bool
}

// WithScoreKind sets the scoring function. Default is Mse.
func WithScoreKind(kind ScoreKind) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Kind = kind
	}
}

// WithRepeats sets the number of shuffle trials per feature. Default is 5.
func WithRepeats(n int) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Repeats = n
	}
}

// WithOnlyMeans drops per-trial deltas and standard deviations from the
// result, keeping only per-feature means.
func WithOnlyMeans(onlyMeans bool) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.OnlyMeans = onlyMeans
	}
}

// WithScale rescales importances by the maximum per-feature mean delta, so
// the most important feature gets a canonical mean of 1. The normalization
// is global and monotone: relative ranking is preserved.
func WithScale(scale bool) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Scale = scale
	}
}

// WithVerbose emits per-feature progress lines. Diagnostic output never
// affects the returned values.
func WithVerbose(verbose bool) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Verbose = verbose
	}
}

// WithSeed seeds the per-feature random sources; identical seeds produce
// identical results regardless of worker scheduling. Zero (the default)
// derives a seed from the clock.
func WithSeed(seed int64) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Seed = seed
	}
}

// WithWorkers bounds the number of concurrent feature tasks. Zero (the
// default) uses runtime.NumCPU().
func WithWorkers(workers int) Option {
	return func(cfg *importanceConfig) {
		cfg.Engine.Workers = workers
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *importanceConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithWarmUp pre-warms scratch pools and the shuffle/score path with
// synthetic data when the instance is created.
func WithWarmUp(warmUp bool) Option {
	return func(cfg *importanceConfig) {
		cfg.WarmUp = warmUp
	}
}

// New creates a new Importance instance with the provided functional
// options. If no logger is provided, a default logger is created.
func New(opts ...Option) (*Importance, error) {
	cfg := &importanceConfig{
		Engine: engine.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		lg, err := createDefaultLogger()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger.FromExisting(lg)
	}

	eng, err := engine.New(cfg.Engine, cfg.Logger, shuffle.NewFisherYates())
	if err != nil {
		return nil, err
	}

	if cfg.WarmUp {
		mgr := warmup.NewManager(cfg.Logger, warmup.DefaultConfig())
		mgr.RegisterComputer(eng)
		mgr.WarmUp(context.Background())
	}

	return &Importance{
		engine: eng,
		logger: cfg.Logger,
	}, nil
}

// Compute estimates per-feature importance of model on the feature matrix x
// against targets y. x and y are only read; one scratch column copy is
// permuted per trial. Either a fully populated result is returned or a
// single error (ErrInvalidInput or ErrModel); never partial results.
func (imp *Importance) Compute(ctx context.Context, model Model, x [][]float64, y []float64) (Result, error) {
	return imp.engine.Compute(ctx, model, x, y)
}

// Compute is a convenience wrapper that builds a one-shot Importance
// instance from opts and runs it.
func Compute(ctx context.Context, model Model, x [][]float64, y []float64, opts ...Option) (Result, error) {
	imp, err := New(opts...)
	if err != nil {
		return Result{}, err
	}
	return imp.Compute(ctx, model, x, y)
}

// ComputeWithDefaults runs an importance computation with default options:
// mse scoring, 5 repeats per feature, clock-derived seed.
func ComputeWithDefaults(model Model, x [][]float64, y []float64) (Result, error) {
	return Compute(context.Background(), model, x, y)
}

// Score evaluates predictions against true targets with the given scoring
// function. Exposed for callers that want the same metrics the engine uses.
func Score(kind ScoreKind, yTrue, yPred []float64) (float64, error) {
	return score.Evaluate(kind, yTrue, yPred)
}

// ParseScoreKind maps a scoring-function name (mse, mae, rmse, smape, acc,
// ce) to its ScoreKind.
func ParseScoreKind(name string) (ScoreKind, error) {
	return score.ParseKind(name)
}
