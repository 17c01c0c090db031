package calibrate

import (
	"fmt"
	"math"

	"github.com/cypherlabdev/odds-calibration-service/pkg/racemodel"
)

// RaceConfig describes a race-to-N sport fitted through the exact DP model.
type RaceConfig struct {
	BestOf int
	// ServePointBounds clips each side's serve point-win probability.
	ServePointBounds Bounds
	// PriorServeLevel is the combined serve level used when no totals
	// target constrains match length.
	PriorServeLevel float64
}

// RaceResult is the fitted race-model parameterization.
type RaceResult struct {
	ServePointA float64
	ServePointB float64
	Residual    float64
	Converged   bool
}

// SolveRace fits the two serve point-win probabilities against a match-win
// target and optionally a total-games target. The fit is two nested
// monotone inversions rather than a gradient loop: for a candidate combined
// serve level the point gap is bisected until the match-win target is met,
// and the outer bisection moves the level until expected match length meets
// the totals target. Like the matrix solver it always returns the best
// obtainable estimate with its residual.
func SolveRace(cfg RaceConfig, targets []Target) (RaceResult, error) {
	if err := validateTargets(targets); err != nil {
		return RaceResult{}, err
	}

	var winTarget, totalsTarget *Target
	for i := range targets {
		switch targets[i].Kind {
		case TargetWin:
			winTarget = &targets[i]
		case TargetTotalsOver:
			totalsTarget = &targets[i]
		case TargetHandicapCover:
			return RaceResult{}, fmt.Errorf("%w: handicap targets are not supported by the race solver", ErrInvalidTarget)
		}
	}
	if winTarget == nil {
		return RaceResult{}, fmt.Errorf("%w: race fit requires a win target", ErrInvalidTarget)
	}

	bounds := cfg.ServePointBounds
	level := cfg.PriorServeLevel
	if level < bounds.Min || level > bounds.Max {
		level = (bounds.Min + bounds.Max) / 2
	}

	if totalsTarget == nil {
		gapRes, err := fitGapAtLevel(cfg, level, winTarget.Probability)
		if err != nil {
			return RaceResult{}, err
		}
		pA := bounds.Clip(level + gapRes.Value/2)
		pB := bounds.Clip(level - gapRes.Value/2)
		return RaceResult{
			ServePointA: pA,
			ServePointB: pB,
			Residual:    gapRes.Residual,
			Converged:   gapRes.Converged,
		}, nil
	}

	// Outer inversion: expected match length rises with the serve level, so
	// P(total games over line) is monotone in it once the win target is
	// pinned by the inner inversion. The sweep keeps the best candidate it
	// evaluates, so an unreachable totals target still yields the closest
	// fit that honours the win target rather than a bracket-endpoint
	// artifact.
	var (
		best      RaceResult
		bestFound bool
	)
	overAtLevel := func(lvl float64) (float64, error) {
		gapRes, err := fitGapAtLevel(cfg, lvl, winTarget.Probability)
		if err != nil {
			return 0, err
		}
		d, err := buildRace(cfg, lvl, gapRes.Value)
		if err != nil {
			return 0, err
		}
		over := 0.5
		if r := d.TotalGames(totalsTarget.Line); r.Over+r.Under > 0 {
			over = r.Over / (r.Over + r.Under)
		}
		totalsResidual := math.Abs(over - totalsTarget.Probability)
		residual := weight(*winTarget)*gapRes.Residual + weight(*totalsTarget)*totalsResidual
		if !bestFound || residual < best.Residual {
			best = RaceResult{
				ServePointA: bounds.Clip(lvl + gapRes.Value/2),
				ServePointB: bounds.Clip(lvl - gapRes.Value/2),
				Residual:    residual,
				Converged:   gapRes.Converged && totalsResidual < 1e-5,
			}
			bestFound = true
		}
		return over, nil
	}

	if _, err := Bisect(overAtLevel, bounds.Min, bounds.Max, totalsTarget.Probability, 1e-5, 40); err != nil {
		return RaceResult{}, err
	}
	return best, nil
}

// fitGapAtLevel bisects the serve-point gap so the model match-win
// probability hits the target at a fixed combined level. The bracket spans
// the full clipped range in either direction: buildRace clips each side to
// the serve bounds, so match-win stays weakly monotone in the gap and the
// win target remains fittable even when the level sits on a bound.
func fitGapAtLevel(cfg RaceConfig, level, winTarget float64) (BisectResult, error) {
	bounds := cfg.ServePointBounds
	maxGap := 2 * (bounds.Max - bounds.Min)

	f := func(gap float64) (float64, error) {
		d, err := buildRace(cfg, level, gap)
		if err != nil {
			return 0, err
		}
		return d.MatchWin(), nil
	}
	return Bisect(f, -maxGap, maxGap, winTarget, 1e-6, 60)
}

func buildRace(cfg RaceConfig, level, gap float64) (*racemodel.MatchDistribution, error) {
	bounds := cfg.ServePointBounds
	pA := bounds.Clip(level + gap/2)
	pB := bounds.Clip(level - gap/2)
	return racemodel.NewMatchDistribution(cfg.BestOf, pA, pB)
}
