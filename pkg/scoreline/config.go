// Package scoreline builds joint scoreline distributions from Poisson-family
// rate parameters and answers derived-market queries against them.
package scoreline

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned when a scoring rate fails validation.
var ErrInvalidRate = errors.New("invalid scoring rate")

// Adjustment selects the distribution variant applied on top of the base
// independent-Poisson matrix.
type Adjustment string

const (
	// AdjustmentNone uses independent Poisson margins.
	AdjustmentNone Adjustment = "none"
	// AdjustmentDixonColes applies the low-score correction to the
	// (0,0), (0,1), (1,0), (1,1) cells.
	AdjustmentDixonColes Adjustment = "dixon_coles"
	// AdjustmentBivariate adds a latent shared count, producing positive
	// correlation between the two sides.
	AdjustmentBivariate Adjustment = "bivariate"
	// AdjustmentReallocation shifts win-by-one mass into win-by-two-plus
	// cells, scaled by the scoring environment.
	AdjustmentReallocation Adjustment = "reallocation"
)

// Config describes one sport's scoreline model. It is plain data passed into
// every build; nothing here is shared mutable state between runs.
type Config struct {
	// MaxScore truncates the matrix at [0, MaxScore] per side.
	MaxScore int

	Adjustment Adjustment

	// Rho is the Dixon-Coles correlation coefficient. Negative values
	// inflate the draw-heavy low-score cells.
	Rho float64

	// SharedFraction is the share of the smaller rate attributed to the
	// latent common process under the bivariate adjustment. Must be in
	// [0, 1).
	SharedFraction float64

	// ReallocationBase and ReallocationReference control the win-by-one
	// shift: fraction = ReallocationBase * (rateA+rateB) / ReallocationReference,
	// capped at ReallocationMax.
	ReallocationBase      float64
	ReallocationReference float64
	ReallocationMax       float64
}

func (c Config) validate() error {
	if c.MaxScore < 1 {
		return fmt.Errorf("max score must be at least 1, got %d", c.MaxScore)
	}
	if c.SharedFraction < 0 || c.SharedFraction >= 1 {
		return fmt.Errorf("shared fraction %g outside [0, 1)", c.SharedFraction)
	}
	return nil
}

func validateRate(name string, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w: %s=%g", ErrInvalidRate, name, rate)
	}
	return nil
}
