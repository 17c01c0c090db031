package numeric

import "math"

// ProbEpsilon bounds probabilities away from 0 and 1 before any reciprocal.
const ProbEpsilon = 1e-9

const logFactTableSize = 256

var logFactTable [logFactTableSize]float64

func init() {
	for k := 1; k < logFactTableSize; k++ {
		logFactTable[k] = logFactTable[k-1] + math.Log(float64(k))
	}
}

// LogFactorial returns ln(k!). Values up to 255 come from a precomputed
// table; larger arguments fall back to the log-gamma function.
func LogFactorial(k int) float64 {
	if k < 0 {
		return math.NaN()
	}
	if k < logFactTableSize {
		return logFactTable[k]
	}
	lg, _ := math.Lgamma(float64(k) + 1)
	return lg
}

// Factorial returns k! as a float64. Overflows to +Inf beyond 170.
func Factorial(k int) float64 {
	return math.Exp(LogFactorial(k))
}

// LogBinomial returns ln(C(n, k)), or -Inf for k outside [0, n].
func LogBinomial(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return LogFactorial(n) - LogFactorial(k) - LogFactorial(n-k)
}

// Binomial returns the binomial coefficient C(n, k).
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	return math.Exp(LogBinomial(n, k))
}

// LogPoissonPMF returns ln P(X = k) for X ~ Poisson(lambda), computed as
// k·ln(lambda) − lambda − ln(k!) so that large lambda or k never overflow.
func LogPoissonPMF(lambda float64, k int) float64 {
	if k < 0 {
		return math.Inf(-1)
	}
	if lambda <= 0 {
		if k == 0 {
			return 0
		}
		return math.Inf(-1)
	}
	return float64(k)*math.Log(lambda) - lambda - LogFactorial(k)
}

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda).
func PoissonPMF(lambda float64, k int) float64 {
	return math.Exp(LogPoissonPMF(lambda, k))
}

// LogSumExp returns ln(Σ exp(xᵢ)) without overflowing on large terms.
func LogSumExp(xs []float64) float64 {
	if len(xs) == 0 {
		return math.Inf(-1)
	}
	maxX := xs[0]
	for _, x := range xs[1:] {
		if x > maxX {
			maxX = x
		}
	}
	if math.IsInf(maxX, -1) {
		return maxX
	}
	sum := 0.0
	for _, x := range xs {
		sum += math.Exp(x - maxX)
	}
	return maxX + math.Log(sum)
}

// ClampProbability pulls p into [ProbEpsilon, 1−ProbEpsilon] so that fair
// prices 1/p stay finite even for degenerate inputs. NaN clamps to the floor.
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) || p < ProbEpsilon {
		return ProbEpsilon
	}
	if p > 1-ProbEpsilon {
		return 1 - ProbEpsilon
	}
	return p
}
