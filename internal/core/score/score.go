// Package score implements the scalar scoring functions the importance
// engine dispatches over: mse, mae, rmse, smape, acc and ce.
package score

import (
	"fmt"
	"math"

	"github.com/baditaflorin/go_feature_importance/internal/core/domain"
)

// Eps guards divisions and logarithms against zero arguments. Numeric edge
// cases are absorbed here, never surfaced as errors.
const Eps = 1e-9

// Evaluate computes the score of predictions against true targets using the
// given kind. Both slices must be non-empty and of equal length.
func Evaluate(kind domain.ScoreKind, yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("%w: empty target vector", domain.ErrInvalidInput)
	}
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("%w: target and prediction lengths differ (%d vs %d)",
			domain.ErrInvalidInput, len(yTrue), len(yPred))
	}

	switch kind {
	case domain.Mse:
		return mse(yTrue, yPred), nil
	case domain.Mae:
		return mae(yTrue, yPred), nil
	case domain.Rmse:
		return math.Sqrt(mse(yTrue, yPred)), nil
	case domain.Smape:
		return smape(yTrue, yPred), nil
	case domain.Acc:
		return acc(yTrue, yPred), nil
	case domain.Ce:
		return crossEntropy(yTrue, yPred), nil
	default:
		return 0, fmt.Errorf("%w: unknown score kind %d", domain.ErrInvalidInput, kind)
	}
}

// ParseKind maps a scoring-function name to its ScoreKind. Recognized
// names are the lower-case String() forms: mse, mae, rmse, smape, acc, ce.
func ParseKind(name string) (domain.ScoreKind, error) {
	switch name {
	case "mse":
		return domain.Mse, nil
	case "mae":
		return domain.Mae, nil
	case "rmse":
		return domain.Rmse, nil
	case "smape":
		return domain.Smape, nil
	case "acc":
		return domain.Acc, nil
	case "ce":
		return domain.Ce, nil
	default:
		return 0, fmt.Errorf("%w: unknown score kind %q", domain.ErrInvalidInput, name)
	}
}

func mse(yt, yp []float64) float64 {
	var sum float64
	for i := range yt {
		d := yt[i] - yp[i]
		sum += d * d
	}
	return sum / float64(len(yt))
}

func mae(yt, yp []float64) float64 {
	var sum float64
	for i := range yt {
		sum += math.Abs(yt[i] - yp[i])
	}
	return sum / float64(len(yt))
}

func smape(yt, yp []float64) float64 {
	var sum float64
	for i := range yt {
		sum += 2 * math.Abs(yt[i]-yp[i]) / (math.Abs(yt[i]) + math.Abs(yp[i]) + Eps)
	}
	return sum / float64(len(yt))
}

// acc compares targets against predictions rounded to the nearest integer
// class label.
func acc(yt, yp []float64) float64 {
	var hits float64
	for i := range yt {
		if math.Round(yp[i]) == yt[i] {
			hits++
		}
	}
	return hits / float64(len(yt))
}

// crossEntropy expects targets in {0, 1}; predictions are clamped into
// (Eps, 1-Eps) to keep the logarithms finite.
func crossEntropy(yt, yp []float64) float64 {
	var sum float64
	for i := range yt {
		p := clamp(yp[i], Eps, 1-Eps)
		sum += -(yt[i]*math.Log(p) + (1-yt[i])*math.Log(1-p))
	}
	return sum / float64(len(yt))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
