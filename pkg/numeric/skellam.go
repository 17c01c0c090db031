package numeric

import "math"

// SkellamPMF returns P(X − Y = k) where X ~ Poisson(lambdaA) and
// Y ~ Poisson(lambdaB) are independent. Evaluated through the modified
// Bessel function of the first kind:
//
//	P(D = k) = e^(−λA−λB) · (λA/λB)^(k/2) · I_|k|(2·√(λA·λB))
//
// The Bessel series is summed term by term in log space, so extreme rates
// stay finite.
func SkellamPMF(lambdaA, lambdaB float64, k int) float64 {
	if lambdaA <= 0 && lambdaB <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if lambdaA <= 0 {
		if k > 0 {
			return 0
		}
		return PoissonPMF(lambdaB, -k)
	}
	if lambdaB <= 0 {
		if k < 0 {
			return 0
		}
		return PoissonPMF(lambdaA, k)
	}

	n := k
	if n < 0 {
		n = -n
	}
	logX := 0.5 * math.Log(lambdaA*lambdaB) // ln(x/2) with x = 2√(λA·λB)

	// ln of term m in the I_n series: (2m+n)·ln(x/2) − ln(m!) − ln((m+n)!)
	logTerm := func(m int) float64 {
		return float64(2*m+n)*logX - LogFactorial(m) - LogFactorial(m+n)
	}

	// Sum until terms stop contributing at double precision.
	terms := make([]float64, 0, 64)
	best := math.Inf(-1)
	for m := 0; m < 1024; m++ {
		lt := logTerm(m)
		terms = append(terms, lt)
		if lt > best {
			best = lt
		}
		if m > 0 && lt < best-40 {
			break
		}
	}
	logBessel := LogSumExp(terms)

	logP := -(lambdaA + lambdaB) + float64(k)*0.5*math.Log(lambdaA/lambdaB) + logBessel
	return math.Exp(logP)
}

// SkellamCDF returns P(X − Y <= k) by direct summation over the support
// implied by the two rates. The support is truncated where the pmf mass
// becomes negligible in both tails.
func SkellamCDF(lambdaA, lambdaB float64, k int) float64 {
	lo, hi := skellamSupport(lambdaA, lambdaB)
	if k < lo {
		return 0
	}
	sum := 0.0
	for d := lo; d <= k && d <= hi; d++ {
		sum += SkellamPMF(lambdaA, lambdaB, d)
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

// skellamSupport returns a [lo, hi] window covering essentially all mass of
// the difference distribution (mean ± 10 standard deviations).
func skellamSupport(lambdaA, lambdaB float64) (int, int) {
	mean := lambdaA - lambdaB
	sd := math.Sqrt(lambdaA + lambdaB)
	span := 10*sd + 5
	return int(math.Floor(mean - span)), int(math.Ceil(mean + span))
}
