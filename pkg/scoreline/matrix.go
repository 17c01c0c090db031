package scoreline

import (
	"fmt"
	"math"

	"github.com/cypherlabdev/odds-calibration-service/pkg/numeric"
)

// Matrix is a frozen joint probability mass over (scoreA, scoreB) truncated
// at the configured maximum. All queries are pure reads.
type Matrix struct {
	cfg   Config
	rateA float64
	rateB float64
	cells [][]float64
}

// New builds the joint scoreline distribution for the given rates under the
// configured variant. Cells are computed in log space so large rates or
// scores never overflow, then the matrix is renormalized so truncation and
// adjustment drift never leak into market reads.
func New(cfg Config, rateA, rateB float64) (*Matrix, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := validateRate("rateA", rateA); err != nil {
		return nil, err
	}
	if err := validateRate("rateB", rateB); err != nil {
		return nil, err
	}

	m := &Matrix{cfg: cfg, rateA: rateA, rateB: rateB}
	switch cfg.Adjustment {
	case AdjustmentBivariate:
		m.cells = buildBivariate(cfg, rateA, rateB)
	default:
		m.cells = buildIndependent(cfg, rateA, rateB)
	}

	switch cfg.Adjustment {
	case AdjustmentDixonColes:
		applyLowScoreAdjustment(m.cells, rateA, rateB, cfg.Rho)
	case AdjustmentReallocation:
		applyWinByOneReallocation(m.cells, cfg, rateA, rateB)
	}

	mass := totalMass(m.cells)
	if mass > 0 {
		scale(m.cells, 1/mass)
	}
	return m, nil
}

// Rates returns the rate parameters the matrix was built from.
func (m *Matrix) Rates() (rateA, rateB float64) {
	return m.rateA, m.rateB
}

// MaxScore returns the truncation bound per side.
func (m *Matrix) MaxScore() int {
	return m.cfg.MaxScore
}

// Prob returns the mass at one scoreline, or 0 outside the truncated support.
func (m *Matrix) Prob(scoreA, scoreB int) float64 {
	if scoreA < 0 || scoreB < 0 || scoreA > m.cfg.MaxScore || scoreB > m.cfg.MaxScore {
		return 0
	}
	return m.cells[scoreA][scoreB]
}

// Slice rebuilds the distribution for a sub-event covering the given
// fraction of play, under the same variant. Scoring is assumed homogeneous
// in time, so both rates scale linearly.
func (m *Matrix) Slice(fraction float64) (*Matrix, error) {
	if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
		return nil, fmt.Errorf("slice fraction %g outside (0, 1]", fraction)
	}
	return New(m.cfg, m.rateA*fraction, m.rateB*fraction)
}

func buildIndependent(cfg Config, rateA, rateB float64) [][]float64 {
	n := cfg.MaxScore + 1
	logA := make([]float64, n)
	logB := make([]float64, n)
	for k := 0; k < n; k++ {
		logA[k] = numeric.LogPoissonPMF(rateA, k)
		logB[k] = numeric.LogPoissonPMF(rateB, k)
	}

	cells := make([][]float64, n)
	for a := 0; a < n; a++ {
		cells[a] = make([]float64, n)
		for b := 0; b < n; b++ {
			cells[a][b] = math.Exp(logA[a] + logB[b])
		}
	}
	return cells
}

// buildBivariate computes the shared-intensity joint mass. With side rates
// split as rateA = alpha + shared, rateB = beta + shared, the cell is
//
//	P(x,y) = e^(−alpha−beta−shared) Σ_s alpha^(x−s)/(x−s)! · beta^(y−s)/(y−s)! · shared^s/s!
//
// summed over the latent common count s = 0..min(x,y) in log space. Marginal
// means stay at the configured side rates.
func buildBivariate(cfg Config, rateA, rateB float64) [][]float64 {
	shared := cfg.SharedFraction * math.Min(rateA, rateB)
	alpha := rateA - shared
	beta := rateB - shared
	if shared <= 0 {
		return buildIndependent(cfg, rateA, rateB)
	}

	n := cfg.MaxScore + 1
	logAlpha := math.Log(alpha)
	logBeta := math.Log(beta)
	logShared := math.Log(shared)
	norm := -(alpha + beta + shared)

	cells := make([][]float64, n)
	terms := make([]float64, 0, n)
	for x := 0; x < n; x++ {
		cells[x] = make([]float64, n)
		for y := 0; y < n; y++ {
			terms = terms[:0]
			for s := 0; s <= x && s <= y; s++ {
				lt := float64(x-s)*logAlpha - numeric.LogFactorial(x-s) +
					float64(y-s)*logBeta - numeric.LogFactorial(y-s) +
					float64(s)*logShared - numeric.LogFactorial(s)
				terms = append(terms, lt)
			}
			cells[x][y] = math.Exp(norm + numeric.LogSumExp(terms))
		}
	}
	return cells
}

// applyLowScoreAdjustment multiplies the four low-score cells by the
// Dixon-Coles tau factors. Callers renormalize afterwards.
func applyLowScoreAdjustment(cells [][]float64, rateA, rateB, rho float64) {
	if len(cells) < 2 {
		return
	}
	cells[0][0] *= 1 - rateA*rateB*rho
	cells[0][1] *= 1 + rateA*rho
	cells[1][0] *= 1 + rateB*rho
	cells[1][1] *= 1 - rho

	// A large rho can push a low-score cell negative; floor at zero and let
	// renormalization restore total mass.
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			if cells[a][b] < 0 {
				cells[a][b] = 0
			}
		}
	}
}

// applyWinByOneReallocation moves part of each win-by-exactly-one cell's
// mass into the matching win-by-two cell on the same side. The shifted
// fraction grows with the scoring environment.
func applyWinByOneReallocation(cells [][]float64, cfg Config, rateA, rateB float64) {
	ref := cfg.ReallocationReference
	if ref <= 0 {
		ref = 1
	}
	fraction := cfg.ReallocationBase * (rateA + rateB) / ref
	if fraction > cfg.ReallocationMax {
		fraction = cfg.ReallocationMax
	}
	if fraction <= 0 {
		return
	}

	n := len(cells)
	for loser := 0; loser+2 < n; loser++ {
		// Side A leads by exactly one: (loser+1, loser) -> (loser+2, loser).
		shift := cells[loser+1][loser] * fraction
		cells[loser+1][loser] -= shift
		cells[loser+2][loser] += shift

		// Mirror for side B.
		shift = cells[loser][loser+1] * fraction
		cells[loser][loser+1] -= shift
		cells[loser][loser+2] += shift
	}
}

func totalMass(cells [][]float64) float64 {
	total := 0.0
	for _, row := range cells {
		for _, p := range row {
			total += p
		}
	}
	return total
}

func scale(cells [][]float64, factor float64) {
	for _, row := range cells {
		for j := range row {
			row[j] *= factor
		}
	}
}
