package calibrate

import (
	"math"

	"github.com/cypherlabdev/odds-calibration-service/pkg/numeric"
	"github.com/cypherlabdev/odds-calibration-service/pkg/scoreline"
)

// SolveScoreline fits the two scoring rates of a scoreline model so the
// model reproduces the given fair targets. Each iteration rebuilds the
// candidate matrix, reads the target quantities off it, and applies
// hand-weighted corrections in transformed coordinates: the rate sum answers
// totals errors, the rate gap answers win and handicap errors. The step
// decays over the budget and the minimum-error parameter set seen is always
// the one returned.
//
// priorTotal seeds the combined rate when no totals target pins it down.
func SolveScoreline(modelCfg scoreline.Config, bounds Bounds, cfg SolverConfig, priorTotal float64, targets []Target) (Result, error) {
	if err := validateTargets(targets); err != nil {
		return Result{}, err
	}

	sum, gap := scorelinePrior(bounds, priorTotal, targets)

	best := Result{Residual: math.Inf(1)}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		rateA := bounds.Clip((sum + gap) / 2)
		rateB := bounds.Clip((sum - gap) / 2)
		m, err := scoreline.New(modelCfg, rateA, rateB)
		if err != nil {
			return best, err
		}

		residual := 0.0
		gapErr := 0.0
		sumErr := 0.0
		for _, tg := range targets {
			e := tg.Probability - evaluateScoreline(m, tg)
			residual += weight(tg) * math.Abs(e)
			switch tg.Kind {
			case TargetTotalsOver:
				sumErr += weight(tg) * e
			default:
				gapErr += weight(tg) * e
			}
		}

		if residual < best.Residual {
			best = Result{RateA: rateA, RateB: rateB, Residual: residual, Iterations: iter + 1}
		}
		if residual < cfg.Tolerance {
			best.Converged = true
			return best, nil
		}

		// Local sensitivity of both controls scales like 1/sqrt(sum), so
		// the correction gain scales with sqrt(sum) to stay near-Newton
		// across low- and high-scoring sports.
		step := cfg.StepSize / (1 + cfg.StepDecay*float64(iter))
		gain := 2.5 * math.Sqrt(sum)
		sum = clampSum(sum+step*gain*sumErr, bounds)
		gap = clampGap(gap+step*gain*gapErr, sum, bounds)
	}

	best.Iterations = cfg.MaxIterations
	return best, nil
}

// scorelinePrior picks the starting (sum, gap). A totals target pins the
// combined rate by inverting the single-Poisson total through bisection; a
// win target skews the split toward the favourite.
func scorelinePrior(bounds Bounds, priorTotal float64, targets []Target) (sum, gap float64) {
	sum = priorTotal
	share := 0.5
	for _, tg := range targets {
		switch tg.Kind {
		case TargetTotalsOver:
			if inverted, err := invertTotalRate(tg.Line, tg.Probability, bounds); err == nil {
				sum = inverted
			}
		case TargetWin:
			share = 0.5 + 0.6*(tg.Probability-0.5)
		}
	}
	sum = clampSum(sum, bounds)
	if share < 0.2 {
		share = 0.2
	}
	if share > 0.8 {
		share = 0.8
	}
	gap = clampGap(sum*(2*share-1), sum, bounds)
	return sum, gap
}

// invertTotalRate finds the combined rate whose single-Poisson total clears
// the line with the target probability. The sum of the two side processes is
// itself Poisson in the independent model, which makes this a cheap seed.
func invertTotalRate(line, overProb float64, bounds Bounds) (float64, error) {
	f := func(lambda float64) (float64, error) {
		return poissonOverProbability(lambda, line), nil
	}
	res, err := Bisect(f, 2*bounds.Min, 2*bounds.Max, overProb, 1e-7, 60)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// poissonOverProbability is P(total > line | no push) for a Poisson total.
func poissonOverProbability(lambda, line float64) float64 {
	threshold := int(math.Floor(line))
	cdf := 0.0
	push := 0.0
	for k := 0; k <= threshold; k++ {
		p := numeric.PoissonPMF(lambda, k)
		cdf += p
		if float64(k) == line {
			push = p
		}
	}
	over := 1 - cdf
	under := cdf - push
	if over+under <= 0 {
		return 0.5
	}
	return over / (over + under)
}

// evaluateScoreline reads one target quantity off a candidate matrix. Push
// mass is excluded from two-way reads, matching how the quoted markets the
// targets came from settle.
func evaluateScoreline(m *scoreline.Matrix, tg Target) float64 {
	switch tg.Kind {
	case TargetWin:
		winA, _, _ := m.MatchOdds()
		return winA
	case TargetTotalsOver:
		r := m.Totals(tg.Line)
		if r.Over+r.Under <= 0 {
			return 0.5
		}
		return r.Over / (r.Over + r.Under)
	case TargetHandicapCover:
		r := m.Handicap(tg.Line)
		if r.CoverA+r.CoverB <= 0 {
			return 0.5
		}
		return r.CoverA / (r.CoverA + r.CoverB)
	default:
		return 0.5
	}
}

func clampSum(sum float64, bounds Bounds) float64 {
	if sum < 2*bounds.Min {
		return 2 * bounds.Min
	}
	if sum > 2*bounds.Max {
		return 2 * bounds.Max
	}
	return sum
}

// clampGap keeps both implied rates inside bounds for the current sum.
func clampGap(gap, sum float64, bounds Bounds) float64 {
	maxGap := sum - 2*bounds.Min
	if maxGap < 0 {
		maxGap = 0
	}
	limit := 2*bounds.Max - sum
	if limit < maxGap {
		maxGap = limit
	}
	if gap > maxGap {
		return maxGap
	}
	if gap < -maxGap {
		return -maxGap
	}
	return gap
}
