// Package devig strips bookmaker margin from quoted decimal odds, producing
// fair probability vectors that the calibration solvers fit against.
package devig

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds is returned when a quoted odds vector fails validation.
var ErrInvalidOdds = errors.New("invalid odds")

const (
	shinMaxIterations = 50
	shinTolerance     = 1e-7
	shinMaxZ          = 0.99
)

// Method selects the de-vig policy applied to a quoted market.
type Method string

const (
	MethodProportional Method = "proportional"
	MethodShin         Method = "shin"
)

// Remove applies the named policy to a 2- or 3-way odds vector.
func Remove(method Method, odds []float64) ([]float64, error) {
	switch method {
	case MethodShin:
		return Shin(odds)
	case MethodProportional, "":
		return Proportional(odds)
	default:
		return nil, fmt.Errorf("unknown devig method %q", method)
	}
}

// Proportional normalizes implied probabilities by the total overround:
// pᵢ = (1/oddsᵢ) / Σ(1/oddsⱼ).
func Proportional(odds []float64) ([]float64, error) {
	implied, total, err := impliedProbabilities(odds)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(implied))
	for i, p := range implied {
		probs[i] = p / total
	}
	return probs, nil
}

// Shin removes margin under Shin's insider-trading model. The market
// parameter z is solved iteratively so the adjusted probabilities sum to 1;
// when the quoted market carries no overround the proportional policy is
// used instead, since Shin's model assumes positive margin.
func Shin(odds []float64) ([]float64, error) {
	implied, total, err := impliedProbabilities(odds)
	if err != nil {
		return nil, err
	}
	overround := total - 1
	if overround <= 0 {
		return Proportional(odds)
	}

	z := 0.0
	probs := make([]float64, len(implied))
	for iter := 0; iter < shinMaxIterations; iter++ {
		sum := 0.0
		for i, p := range implied {
			probs[i] = shinProbability(z, p, total)
			sum += probs[i]
		}
		diff := sum - 1
		if math.Abs(diff) < shinTolerance {
			break
		}
		z += 0.5 * diff
		if z < 0 {
			z = 0
		}
		if z > shinMaxZ {
			z = shinMaxZ
		}
	}

	// The iteration leaves a residual below tolerance; normalize it away so
	// the contract Σp = 1 holds exactly.
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// shinProbability is the per-outcome fair probability implied by market
// parameter z and implied probability p within a book totalling sum.
func shinProbability(z, p, sum float64) float64 {
	if z == 0 {
		return p / sum
	}
	return (math.Sqrt(z*z+4*(1-z)*p*p/sum) - z) / (2 * (1 - z))
}

// impliedProbabilities validates the odds vector and returns 1/oddsᵢ along
// with the book total (1 + overround).
func impliedProbabilities(odds []float64) ([]float64, float64, error) {
	if len(odds) != 2 && len(odds) != 3 {
		return nil, 0, fmt.Errorf("%w: expected 2 or 3 outcomes, got %d", ErrInvalidOdds, len(odds))
	}
	implied := make([]float64, len(odds))
	total := 0.0
	for i, o := range odds {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			return nil, 0, fmt.Errorf("%w: odds[%d] is not finite", ErrInvalidOdds, i)
		}
		if o <= 1.0 {
			return nil, 0, fmt.Errorf("%w: odds[%d]=%g must be greater than 1.0", ErrInvalidOdds, i, o)
		}
		implied[i] = 1 / o
		total += implied[i]
	}
	return implied, total, nil
}
