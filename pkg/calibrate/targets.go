// Package calibrate fits outcome-model parameters so that model-derived
// probabilities reproduce de-vigged market targets. The solvers are
// heuristic: they always return the best parameter set observed, with the
// residual error exposed, and never fail on non-convergence.
package calibrate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTarget is returned when a calibration target fails validation.
var ErrInvalidTarget = errors.New("invalid calibration target")

// TargetKind names the model quantity a fair probability is matched against.
type TargetKind string

const (
	// TargetWin is side A's outright win probability.
	TargetWin TargetKind = "win"
	// TargetTotalsOver is P(total score over Line), conditioned on no push.
	TargetTotalsOver TargetKind = "totals_over"
	// TargetHandicapCover is P(side A covers Line), conditioned on no push.
	TargetHandicapCover TargetKind = "handicap_cover"
)

// Target is one observed fair probability the model must reproduce.
type Target struct {
	Kind        TargetKind
	Line        float64
	Probability float64
	Weight      float64
}

// Bounds clips a model parameter during fitting.
type Bounds struct {
	Min float64
	Max float64
}

// Clip returns v pulled inside the bounds.
func (b Bounds) Clip(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// SolverConfig controls the iterative-correction loop.
type SolverConfig struct {
	Tolerance     float64 // summed absolute error to stop at
	MaxIterations int
	StepSize      float64 // initial correction scale
	StepDecay     float64 // per-iteration decay rate
}

// DefaultSolverConfig matches the calibration behaviour tuned in production:
// tolerance around 1e-4 with a budget in the hundreds of iterations.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Tolerance:     1e-4,
		MaxIterations: 800,
		StepSize:      1.0,
		StepDecay:     0.002,
	}
}

// Result is the outcome of a fit. Converged=false is not a failure: the
// parameters are the best observed and Residual tells the caller how
// approximate they are.
type Result struct {
	RateA      float64
	RateB      float64
	Residual   float64
	Iterations int
	Converged  bool
}

func validateTargets(targets []Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidTarget)
	}
	if len(targets) > 3 {
		return fmt.Errorf("%w: at most 3 targets, got %d", ErrInvalidTarget, len(targets))
	}
	for i, tg := range targets {
		if math.IsNaN(tg.Probability) || tg.Probability <= 0 || tg.Probability >= 1 {
			return fmt.Errorf("%w: target[%d] probability %g outside (0, 1)", ErrInvalidTarget, i, tg.Probability)
		}
		switch tg.Kind {
		case TargetWin, TargetTotalsOver, TargetHandicapCover:
		default:
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, tg.Kind)
		}
	}
	return nil
}

func weight(tg Target) float64 {
	if tg.Weight <= 0 {
		return 1
	}
	return tg.Weight
}
