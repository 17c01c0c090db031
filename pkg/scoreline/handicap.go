package scoreline

import (
	"math"

	"github.com/cypherlabdev/odds-calibration-service/pkg/numeric"
)

// HandicapFastPath prices a spread market straight from the two rates via
// the Skellam difference distribution, without materializing the joint
// matrix. Valid for the independent-Poisson variant; the matrix and this
// closed form agree to numerical tolerance there. Side A covers when
// scoreA + line > scoreB, i.e. when the score difference D = A − B exceeds
// −line.
func HandicapFastPath(rateA, rateB, line float64) (HandicapResult, error) {
	if err := validateRate("rateA", rateA); err != nil {
		return HandicapResult{}, err
	}
	if err := validateRate("rateB", rateB); err != nil {
		return HandicapResult{}, err
	}

	var res HandicapResult
	threshold := -line
	if isInteger(threshold) {
		k := int(math.Round(threshold))
		res.Push = numeric.SkellamPMF(rateA, rateB, k)
		res.CoverB = numeric.SkellamCDF(rateA, rateB, k-1)
		res.CoverA = 1 - res.Push - res.CoverB
	} else {
		k := int(math.Floor(threshold))
		res.CoverB = numeric.SkellamCDF(rateA, rateB, k)
		res.CoverA = 1 - res.CoverB
	}
	if res.CoverA < 0 {
		res.CoverA = 0
	}
	return res, nil
}

func isInteger(x float64) bool {
	return math.Abs(x-math.Round(x)) < 1e-9
}
