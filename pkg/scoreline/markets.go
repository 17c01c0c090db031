package scoreline

import (
	"math"

	"github.com/cypherlabdev/odds-calibration-service/pkg/numeric"
)

// Side names one competitor in a two-sided market.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// MatchOdds returns win/draw/loss probabilities from side A's perspective.
func (m *Matrix) MatchOdds() (winA, draw, winB float64) {
	for a := range m.cells {
		for b, p := range m.cells[a] {
			switch {
			case a > b:
				winA += p
			case a == b:
				draw += p
			default:
				winB += p
			}
		}
	}
	return winA, draw, winB
}

// HandicapResult is the three-way split of a spread market. Push is zero at
// non-integer lines.
type HandicapResult struct {
	CoverA float64 // side A plus the line beats side B
	Push   float64 // stake returned, integer lines only
	CoverB float64
}

// Handicap prices side A at the given line: A covers when scoreA + line
// exceeds scoreB. Integer lines produce a push band.
func (m *Matrix) Handicap(line float64) HandicapResult {
	var res HandicapResult
	for a := range m.cells {
		for b, p := range m.cells[a] {
			adjusted := float64(a) + line - float64(b)
			switch {
			case adjusted > 1e-9:
				res.CoverA += p
			case adjusted < -1e-9:
				res.CoverB += p
			default:
				res.Push += p
			}
		}
	}
	return res
}

// TotalsResult is the over/under split at a totals line.
type TotalsResult struct {
	Over  float64
	Push  float64
	Under float64
}

// Totals prices combined score over/under at the given line.
func (m *Matrix) Totals(line float64) TotalsResult {
	var res TotalsResult
	for a := range m.cells {
		for b, p := range m.cells[a] {
			diff := float64(a+b) - line
			switch {
			case diff > 1e-9:
				res.Over += p
			case diff < -1e-9:
				res.Under += p
			default:
				res.Push += p
			}
		}
	}
	return res
}

// TeamTotals prices one side's score over/under at the given line.
func (m *Matrix) TeamTotals(side Side, line float64) TotalsResult {
	var res TotalsResult
	for a := range m.cells {
		for b, p := range m.cells[a] {
			score := a
			if side == SideB {
				score = b
			}
			diff := float64(score) - line
			switch {
			case diff > 1e-9:
				res.Over += p
			case diff < -1e-9:
				res.Under += p
			default:
				res.Push += p
			}
		}
	}
	return res
}

// BothSidesScore returns P(both sides score at least once).
func (m *Matrix) BothSidesScore() float64 {
	both := 0.0
	for a := 1; a < len(m.cells); a++ {
		for b := 1; b < len(m.cells[a]); b++ {
			both += m.cells[a][b]
		}
	}
	return both
}

// CorrectScore returns the probability of an exact scoreline. Scores beyond
// the truncation bound report zero available mass and truncated=true rather
// than failing.
func (m *Matrix) CorrectScore(scoreA, scoreB int) (prob float64, truncated bool) {
	if scoreA > m.cfg.MaxScore || scoreB > m.cfg.MaxScore {
		return 0, true
	}
	if scoreA < 0 || scoreB < 0 {
		return 0, false
	}
	return m.cells[scoreA][scoreB], false
}

// RangeResult carries a locally renormalized range probability together with
// the truncation bias: the share of the requested range that lies beyond the
// matrix bound and therefore could not be counted.
type RangeResult struct {
	Probability    float64
	TruncationBias float64
}

// ScoreRange prices the event minA <= scoreA <= maxA and minB <= scoreB <= maxB,
// renormalized over the matrix's available mass. If part of the requested
// range exceeds the truncation bound, the uncounted tail mass of the
// unclipped request is estimated from the matrix margins and surfaced as
// TruncationBias instead of being silently corrected.
func (m *Matrix) ScoreRange(minA, maxA, minB, maxB int) RangeResult {
	if minA < 0 {
		minA = 0
	}
	if minB < 0 {
		minB = 0
	}
	clippedA := maxA > m.cfg.MaxScore
	clippedB := maxB > m.cfg.MaxScore
	hiA := maxA
	if clippedA {
		hiA = m.cfg.MaxScore
	}
	hiB := maxB
	if clippedB {
		hiB = m.cfg.MaxScore
	}

	var res RangeResult
	if minA > hiA || minB > hiB {
		if clippedA || clippedB {
			res.TruncationBias = 1
		}
		return res
	}

	mass := totalMass(m.cells)
	inRange := 0.0
	for a := minA; a <= hiA; a++ {
		for b := minB; b <= hiB; b++ {
			inRange += m.cells[a][b]
		}
	}
	if mass > 0 {
		res.Probability = inRange / mass
	}

	// Estimate the untabulated share of the request from the Poisson tails
	// of each margin.
	if clippedA {
		res.TruncationBias += poissonTailAbove(m.rateA, m.cfg.MaxScore)
	}
	if clippedB {
		res.TruncationBias += poissonTailAbove(m.rateB, m.cfg.MaxScore)
	}
	return res
}

// ExpectedScores returns the mean score for each side under the matrix.
func (m *Matrix) ExpectedScores() (meanA, meanB float64) {
	for a := range m.cells {
		for b, p := range m.cells[a] {
			meanA += float64(a) * p
			meanB += float64(b) * p
		}
	}
	return meanA, meanB
}

// CompoundResult is the joint price of a match result and a totals side,
// read directly off the joint matrix so side correlation is respected.
type CompoundResult struct {
	WinAndOver   float64
	WinAndUnder  float64
	DrawAndOver  float64
	DrawAndUnder float64
	LossAndOver  float64
	LossAndUnder float64
}

// ResultAndTotals prices the six result-by-totals combinations for side A at
// the given totals line. Push mass at an integer line is excluded from both
// totals sides, matching how combination bets settle.
func (m *Matrix) ResultAndTotals(line float64) CompoundResult {
	var res CompoundResult
	for a := range m.cells {
		for b, p := range m.cells[a] {
			diff := float64(a+b) - line
			over := diff > 1e-9
			under := diff < -1e-9
			switch {
			case a > b && over:
				res.WinAndOver += p
			case a > b && under:
				res.WinAndUnder += p
			case a == b && over:
				res.DrawAndOver += p
			case a == b && under:
				res.DrawAndUnder += p
			case a < b && over:
				res.LossAndOver += p
			case a < b && under:
				res.LossAndUnder += p
			}
		}
	}
	return res
}

// poissonTailAbove returns P(X > bound) for X ~ Poisson(lambda).
func poissonTailAbove(lambda float64, bound int) float64 {
	cdf := 0.0
	logLambda := math.Log(lambda)
	for k := 0; k <= bound; k++ {
		cdf += math.Exp(float64(k)*logLambda - lambda - numeric.LogFactorial(k))
	}
	tail := 1 - cdf
	if tail < 0 {
		return 0
	}
	return tail
}
