package scoreline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func footballConfig() Config {
	return Config{
		MaxScore:   10,
		Adjustment: AdjustmentDixonColes,
		Rho:        -0.09,
	}
}

func independentConfig(maxScore int) Config {
	return Config{MaxScore: maxScore, Adjustment: AdjustmentNone}
}

// TestNew_MassSumsToOne tests total mass across variants and rate ranges
func TestNew_MassSumsToOne(t *testing.T) {
	configs := map[string]Config{
		"independent": independentConfig(12),
		"dixon_coles": footballConfig(),
		"bivariate":   {MaxScore: 25, Adjustment: AdjustmentBivariate, SharedFraction: 0.25},
		"reallocation": {
			MaxScore: 15, Adjustment: AdjustmentReallocation,
			ReallocationBase: 0.06, ReallocationReference: 5.5, ReallocationMax: 0.15,
		},
	}
	rates := [][2]float64{{0.3, 0.3}, {1.4, 1.1}, {2.8, 2.3}, {5.0, 4.0}}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			for _, r := range rates {
				m, err := New(cfg, r[0], r[1])
				require.NoError(t, err)
				// Truncation mass is scaled back in, so the sum is exact up
				// to float accumulation.
				assert.InDelta(t, 1.0, matrixMass(m), 1e-9, "rates %v", r)
			}
		})
	}
}

// TestNew_RejectsInvalidRates tests rate validation
func TestNew_RejectsInvalidRates(t *testing.T) {
	cfg := independentConfig(10)

	for _, rate := range []float64{0, -1.5, math.NaN(), math.Inf(1)} {
		_, err := New(cfg, rate, 1.5)
		assert.ErrorIs(t, err, ErrInvalidRate)

		_, err = New(cfg, 1.5, rate)
		assert.ErrorIs(t, err, ErrInvalidRate)
	}
}

// TestNew_RejectsBadConfig tests config validation
func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{MaxScore: 0}, 1.5, 1.5)
	assert.Error(t, err)

	_, err = New(Config{MaxScore: 10, SharedFraction: 1.0}, 1.5, 1.5)
	assert.Error(t, err)
}

// TestMatchOdds_Symmetric tests that equal rates price both sides equally
func TestMatchOdds_Symmetric(t *testing.T) {
	for _, cfg := range []Config{
		independentConfig(12),
		footballConfig(),
		{MaxScore: 20, Adjustment: AdjustmentBivariate, SharedFraction: 0.2},
		{MaxScore: 15, Adjustment: AdjustmentReallocation, ReallocationBase: 0.06, ReallocationReference: 5.5, ReallocationMax: 0.15},
	} {
		m, err := New(cfg, 2.2, 2.2)
		require.NoError(t, err)

		winA, draw, winB := m.MatchOdds()
		assert.InDelta(t, winA, winB, 1e-9, "variant %s", cfg.Adjustment)
		assert.True(t, draw > 0)
		assert.InDelta(t, 1.0, winA+draw+winB, 0.001)
	}
}

// TestDixonColes_InflatesDraw tests that negative rho raises low-score draws
// relative to independent Poisson
func TestDixonColes_InflatesDraw(t *testing.T) {
	base, err := New(independentConfig(10), 1.3, 1.1)
	require.NoError(t, err)
	adjusted, err := New(footballConfig(), 1.3, 1.1)
	require.NoError(t, err)

	p00 := base.Prob(0, 0)
	q00 := adjusted.Prob(0, 0)
	assert.True(t, q00 > p00, "0-0 should gain mass under negative rho")

	_, baseDraw, _ := base.MatchOdds()
	_, adjDraw, _ := adjusted.MatchOdds()
	assert.True(t, adjDraw > baseDraw)
}

// TestBivariate_PositiveCorrelation tests that the shared count correlates
// the two sides
func TestBivariate_PositiveCorrelation(t *testing.T) {
	cfg := Config{MaxScore: 30, Adjustment: AdjustmentBivariate, SharedFraction: 0.4}
	m, err := New(cfg, 6.0, 5.0)
	require.NoError(t, err)

	meanA, meanB := m.ExpectedScores()
	assert.InDelta(t, 6.0, meanA, 0.01)
	assert.InDelta(t, 5.0, meanB, 0.01)

	// E[AB] − E[A]E[B] > 0 under a shared component.
	eAB := 0.0
	for a := 0; a <= cfg.MaxScore; a++ {
		for b := 0; b <= cfg.MaxScore; b++ {
			eAB += float64(a*b) * m.Prob(a, b)
		}
	}
	assert.True(t, eAB-meanA*meanB > 0.01, "covariance %v should be positive", eAB-meanA*meanB)
}

// TestReallocation_ShiftsWinByOneMass tests the late-event shift
func TestReallocation_ShiftsWinByOneMass(t *testing.T) {
	cfg := Config{
		MaxScore: 15, Adjustment: AdjustmentReallocation,
		ReallocationBase: 0.08, ReallocationReference: 5.5, ReallocationMax: 0.20,
	}
	base, err := New(independentConfig(15), 3.2, 2.6)
	require.NoError(t, err)
	shifted, err := New(cfg, 3.2, 2.6)
	require.NoError(t, err)

	winBy := func(m *Matrix, margin int) float64 {
		total := 0.0
		for a := 0; a <= m.MaxScore(); a++ {
			b := a - margin
			if b < 0 || b > m.MaxScore() {
				continue
			}
			total += m.Prob(a, b)
		}
		return total
	}

	assert.True(t, winBy(shifted, 1) < winBy(base, 1))
	assert.True(t, winBy(shifted, 2) > winBy(base, 2))

	// The shift moves mass within the winning side, so match odds hold.
	baseWin, _, _ := base.MatchOdds()
	shiftWin, _, _ := shifted.MatchOdds()
	assert.InDelta(t, baseWin, shiftWin, 1e-9)
}

// TestReallocation_ScalesWithRates tests that higher-scoring environments
// shift a larger fraction
func TestReallocation_ScalesWithRates(t *testing.T) {
	cfg := Config{
		MaxScore: 20, Adjustment: AdjustmentReallocation,
		ReallocationBase: 0.06, ReallocationReference: 5.5, ReallocationMax: 0.25,
	}

	shiftShare := func(rateA, rateB float64) float64 {
		base, err := New(independentConfig(20), rateA, rateB)
		require.NoError(t, err)
		shifted, err := New(cfg, rateA, rateB)
		require.NoError(t, err)

		baseBy1, shiftedBy1 := 0.0, 0.0
		for a := 1; a <= 20; a++ {
			baseBy1 += base.Prob(a, a-1) + base.Prob(a-1, a)
			shiftedBy1 += shifted.Prob(a, a-1) + shifted.Prob(a-1, a)
		}
		return 1 - shiftedBy1/baseBy1
	}

	assert.True(t, shiftShare(4.0, 3.5) > shiftShare(2.0, 1.8))
}

// TestSlice_ScalesRates tests sub-event rebuilds
func TestSlice_ScalesRates(t *testing.T) {
	m, err := New(footballConfig(), 1.6, 1.2)
	require.NoError(t, err)

	half, err := m.Slice(0.5)
	require.NoError(t, err)

	rA, rB := half.Rates()
	assert.InDelta(t, 0.8, rA, 1e-12)
	assert.InDelta(t, 0.6, rB, 1e-12)
	assert.InDelta(t, 1.0, matrixMass(half), 0.001)

	_, err = m.Slice(0)
	assert.Error(t, err)
	_, err = m.Slice(1.5)
	assert.Error(t, err)
}

// TestBoundarySafety tests that rates clamped at sport bounds never produce
// NaN or infinite mass anywhere in the matrix
func TestBoundarySafety(t *testing.T) {
	for _, cfg := range []Config{
		independentConfig(50),
		{MaxScore: 50, Adjustment: AdjustmentBivariate, SharedFraction: 0.3},
		footballConfig(),
	} {
		for _, rates := range [][2]float64{{0.3, 0.3}, {40, 40}, {0.3, 40}} {
			m, err := New(cfg, rates[0], rates[1])
			require.NoError(t, err)
			for a := 0; a <= m.MaxScore(); a++ {
				for b := 0; b <= m.MaxScore(); b++ {
					p := m.Prob(a, b)
					assert.False(t, math.IsNaN(p) || math.IsInf(p, 0),
						"cell (%d,%d) rates %v variant %s", a, b, rates, cfg.Adjustment)
					assert.True(t, p >= 0)
				}
			}
		}
	}
}

func matrixMass(m *Matrix) float64 {
	total := 0.0
	for a := 0; a <= m.MaxScore(); a++ {
		for b := 0; b <= m.MaxScore(); b++ {
			total += m.Prob(a, b)
		}
	}
	return total
}
