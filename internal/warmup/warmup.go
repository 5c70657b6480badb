package warmup

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/baditaflorin/go_feature_importance/internal/core/domain"
	"github.com/baditaflorin/go_feature_importance/internal/ports"
)

// Computer is the slice of the importance engine the warmup manager needs.
type Computer interface {
	Compute(ctx context.Context, model ports.Model, x [][]float64, y []float64) (domain.Result, error)
}

// Config defines configuration for warming up the system.
type Config struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of importance computations per routine
	Iterations int
	// Shape of the synthetic warmup matrix
	Rows     int
	Features int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultConfig returns the default warmup configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: runtime.NumCPU(),
		Iterations:  20,
		Rows:        64,
		Features:    8,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations: it exercises the scratch-matrix
// pools, the shuffle path and the scoring path on synthetic data so first
// real computations do not pay allocation and scheduling cost.
type Manager struct {
	logger    ports.Logger
	computers []Computer
	config    Config
}

// NewManager creates a new warmup manager.
func NewManager(logger ports.Logger, config Config) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterComputer adds an importance computer to be warmed up.
func (wm *Manager) RegisterComputer(c Computer) {
	wm.computers = append(wm.computers, c)
}

// WarmUp runs the warmup process for all registered computers.
func (wm *Manager) WarmUp(ctx context.Context) {
	if len(wm.computers) == 0 {
		return
	}

	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.computers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	x, y := generateSampleData(wm.config.Rows, wm.config.Features)
	model := rowSumModel{}

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-warmupCtx.Done():
					return
				default:
					// Continue
				}

				for _, computer := range wm.computers {
					_, _ = computer.Compute(warmupCtx, model, x, y)
				}
			}
		}()
	}
	wg.Wait()

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// rowSumModel is the synthetic model used during warmup.
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

// generateSampleData creates a deterministic synthetic matrix and matching
// row-sum targets.
func generateSampleData(rows, features int) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(1))
	x := make([][]float64, rows)
	y := make([]float64, rows)
	for i := range x {
		x[i] = make([]float64, features)
		var sum float64
		for j := range x[i] {
			x[i][j] = rng.Float64()
			sum += x[i][j]
		}
		y[i] = sum
	}
	return x, y
}
