package calibrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cypherlabdev/odds-calibration-service/pkg/scoreline"
)

// ErrUnknownSport is returned for a sport with no registered strategy.
var ErrUnknownSport = errors.New("unknown sport")

// ModelFamily selects which distribution family a sport is fitted with.
type ModelFamily string

const (
	ModelScoreline ModelFamily = "scoreline"
	ModelRace      ModelFamily = "race"
)

// Strategy bundles the model choice and fitting defaults for one sport.
// Values here are defaults; service configuration overrides the tunable
// subset through StrategyOverride.
type Strategy struct {
	Sport  string
	Family ModelFamily

	// Scoreline-family settings.
	Scoreline  scoreline.Config
	RateBounds Bounds
	Solver     SolverConfig
	// PriorTotal seeds the combined rate when no totals target is given.
	PriorTotal float64

	// Race-family settings.
	Race RaceConfig
}

// StrategyOverride carries per-sport tuning from service configuration.
// Nil fields keep the registered default; fields that do not apply to the
// sport's model family are ignored.
type StrategyOverride struct {
	MaxScore        *int
	Rho             *float64
	SharedFraction  *float64
	PriorTotal      *float64
	PriorServeLevel *float64
}

// WithOverride returns a copy of the strategy with the non-nil override
// fields applied.
func (s Strategy) WithOverride(o StrategyOverride) Strategy {
	if o.MaxScore != nil {
		s.Scoreline.MaxScore = *o.MaxScore
	}
	if o.Rho != nil {
		s.Scoreline.Rho = *o.Rho
	}
	if o.SharedFraction != nil {
		s.Scoreline.SharedFraction = *o.SharedFraction
	}
	if o.PriorTotal != nil {
		s.PriorTotal = *o.PriorTotal
	}
	if o.PriorServeLevel != nil {
		s.Race.PriorServeLevel = *o.PriorServeLevel
	}
	return s
}

// Fitted is the parameterization produced by fitting a strategy.
// Exactly one of Matrix or Race is set, matching the strategy family.
type Fitted struct {
	Strategy  Strategy
	Matrix    *scoreline.Matrix
	Race      RaceResult
	Residual  float64
	Converged bool
}

var defaultStrategies = map[string]Strategy{
	"football": {
		Sport:  "football",
		Family: ModelScoreline,
		Scoreline: scoreline.Config{
			MaxScore:   10,
			Adjustment: scoreline.AdjustmentDixonColes,
			Rho:        -0.09,
		},
		RateBounds: Bounds{Min: 0.2, Max: 6},
		Solver:     DefaultSolverConfig(),
		PriorTotal: 2.6,
	},
	"ice_hockey": {
		Sport:  "ice_hockey",
		Family: ModelScoreline,
		Scoreline: scoreline.Config{
			MaxScore:              15,
			Adjustment:            scoreline.AdjustmentReallocation,
			ReallocationBase:      0.06,
			ReallocationReference: 5.5,
			ReallocationMax:       0.14,
		},
		RateBounds: Bounds{Min: 0.5, Max: 8},
		Solver:     DefaultSolverConfig(),
		PriorTotal: 5.4,
	},
	"handball": {
		Sport:  "handball",
		Family: ModelScoreline,
		Scoreline: scoreline.Config{
			MaxScore:       55,
			Adjustment:     scoreline.AdjustmentBivariate,
			SharedFraction: 0.15,
		},
		RateBounds: Bounds{Min: 18, Max: 42},
		Solver:     DefaultSolverConfig(),
		PriorTotal: 55,
	},
	"tennis": {
		Sport:  "tennis",
		Family: ModelRace,
		Race: RaceConfig{
			BestOf:           3,
			ServePointBounds: Bounds{Min: 0.45, Max: 0.80},
			PriorServeLevel:  0.62,
		},
	},
}

// StrategyFor resolves the default strategy for a sport name.
// Lookup is case-insensitive.
func StrategyFor(sport string) (Strategy, error) {
	s, ok := defaultStrategies[strings.ToLower(strings.TrimSpace(sport))]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownSport, sport)
	}
	return s, nil
}

// Sports lists the sports with a registered default strategy.
func Sports() []string {
	out := make([]string, 0, len(defaultStrategies))
	for name := range defaultStrategies {
		out = append(out, name)
	}
	return out
}

// Fit runs the sport's solver against the targets and returns the fitted
// distribution ready for market evaluation.
func Fit(strategy Strategy, targets []Target) (Fitted, error) {
	switch strategy.Family {
	case ModelScoreline:
		res, err := SolveScoreline(strategy.Scoreline, strategy.RateBounds, strategy.Solver, strategy.PriorTotal, targets)
		if err != nil {
			return Fitted{}, err
		}
		m, err := scoreline.New(strategy.Scoreline, res.RateA, res.RateB)
		if err != nil {
			return Fitted{}, err
		}
		return Fitted{
			Strategy:  strategy,
			Matrix:    m,
			Residual:  res.Residual,
			Converged: res.Converged,
		}, nil
	case ModelRace:
		res, err := SolveRace(strategy.Race, targets)
		if err != nil {
			return Fitted{}, err
		}
		return Fitted{
			Strategy:  strategy,
			Race:      res,
			Residual:  res.Residual,
			Converged: res.Converged,
		}, nil
	default:
		return Fitted{}, fmt.Errorf("unknown model family %q", strategy.Family)
	}
}
