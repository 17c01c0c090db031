package calibrate

import (
	"fmt"
	"math"
)

// BisectResult carries the located argument plus the residual at exit, so
// callers can judge how approximate a budget-exhausted answer is.
type BisectResult struct {
	Value      float64
	Residual   float64
	Iterations int
	Converged  bool
}

// Bisect inverts a monotone scalar function: it finds x in [lo, hi] with
// f(x) ≈ target. Direction is detected from the endpoints, so decreasing
// composites work unmodified. When the target lies outside the bracket the
// nearest endpoint is returned with its residual — best obtainable estimate,
// not an error.
func Bisect(f func(float64) (float64, error), lo, hi, target, tol float64, maxIter int) (BisectResult, error) {
	if !(lo < hi) {
		return BisectResult{}, fmt.Errorf("invalid bracket [%g, %g]", lo, hi)
	}
	if maxIter <= 0 {
		maxIter = 60
	}

	fLo, err := f(lo)
	if err != nil {
		return BisectResult{}, err
	}
	fHi, err := f(hi)
	if err != nil {
		return BisectResult{}, err
	}
	increasing := fHi >= fLo

	// Target outside the reachable range: clamp to the best endpoint.
	if increasing && target <= fLo || !increasing && target >= fLo {
		return BisectResult{Value: lo, Residual: math.Abs(fLo - target)}, nil
	}
	if increasing && target >= fHi || !increasing && target <= fHi {
		return BisectResult{Value: hi, Residual: math.Abs(fHi - target)}, nil
	}

	res := BisectResult{}
	for i := 0; i < maxIter; i++ {
		mid := (lo + hi) / 2
		fMid, err := f(mid)
		if err != nil {
			return BisectResult{}, err
		}
		res.Value = mid
		res.Residual = math.Abs(fMid - target)
		res.Iterations = i + 1
		if res.Residual < tol {
			res.Converged = true
			return res, nil
		}
		if (fMid < target) == increasing {
			lo = mid
		} else {
			hi = mid
		}
	}
	return res, nil
}
