package racemodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGameHoldProbability tests the closed-form game hold
func TestGameHoldProbability(t *testing.T) {
	// A 50/50 point is a 50/50 game.
	hold, err := GameHoldProbability(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, hold, 1e-12)

	// Serve dominance amplifies: a 65% point wins well over 65% of games.
	hold, err = GameHoldProbability(0.65)
	require.NoError(t, err)
	assert.True(t, hold > 0.8, "got %v", hold)

	// Monotone in the point probability.
	prev := 0.0
	for p := 0.05; p < 1; p += 0.05 {
		h, err := GameHoldProbability(p)
		require.NoError(t, err)
		assert.True(t, h > prev)
		assert.True(t, h > 0 && h < 1)
		prev = h
	}
}

// TestGameHoldProbability_Complement tests P(hold|p) + P(break|1−p) = 1
func TestGameHoldProbability_Complement(t *testing.T) {
	for _, p := range []float64{0.3, 0.55, 0.72} {
		hold, err := GameHoldProbability(p)
		require.NoError(t, err)
		breakOpp, err := GameHoldProbability(1 - p)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, hold+breakOpp, 1e-12, "p=%v", p)
	}
}

// TestGameHoldProbability_RejectsInvalid tests probability validation
func TestGameHoldProbability_RejectsInvalid(t *testing.T) {
	for _, p := range []float64{0, 1, -0.2, 1.5, math.NaN()} {
		_, err := GameHoldProbability(p)
		assert.ErrorIs(t, err, ErrInvalidProbability, "p=%v", p)
	}
}

// TestTiebreakWinProbability tests the tiebreak DP
func TestTiebreakWinProbability(t *testing.T) {
	// Identical servers: averaging over the two first-server assignments
	// must be exactly fair, and serve order alone moves little.
	aFirst, err := TiebreakWinProbability(0.65, 0.65)
	require.NoError(t, err)
	bFirst, err := TiebreakWinProbability(0.65, 0.65)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, (aFirst+(1-bFirst))/2, 1e-12)
	assert.InDelta(t, 0.5, aFirst, 0.02)

	// Stronger server wins more.
	strong, err := TiebreakWinProbability(0.70, 0.60)
	require.NoError(t, err)
	weak, err := TiebreakWinProbability(0.60, 0.70)
	require.NoError(t, err)
	assert.True(t, strong > 0.5)
	assert.True(t, weak < 0.5)
}

// TestSetDistribution_SumsToOne tests the set DP mass and score coverage
func TestSetDistribution_SumsToOne(t *testing.T) {
	outcomes, err := SetDistribution(0.80, 0.74, 0.55)
	require.NoError(t, err)

	total := 0.0
	sawTiebreak := false
	for _, o := range outcomes {
		total += o.Probability
		assert.True(t, validSetScore(o.GamesA, o.GamesB), "impossible score %d-%d", o.GamesA, o.GamesB)
		if o.GamesA == 7 && o.GamesB == 6 || o.GamesA == 6 && o.GamesB == 7 {
			sawTiebreak = true
		}
		if o.WinnerA {
			assert.True(t, o.GamesA > o.GamesB)
		} else {
			assert.True(t, o.GamesB > o.GamesA)
		}
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.True(t, sawTiebreak, "high hold rates must reach tiebreaks")
}

// TestMatchDistribution_EqualHoldsExactlyFair tests engine symmetry
func TestMatchDistribution_EqualHoldsExactlyFair(t *testing.T) {
	for _, bestOf := range []int{3, 5} {
		d, err := NewMatchDistributionFromHolds(bestOf, 0.65, 0.65)
		require.NoError(t, err)

		assert.InDelta(t, 0.5, d.MatchWin(), 1e-12, "best of %d", bestOf)

		margin := d.GameMarginDistribution()
		for m, p := range margin {
			assert.InDelta(t, p, margin[-m], 1e-12, "margin %d must mirror", m)
		}
		assert.InDelta(t, 1.0, d.TotalMass(), 1e-12)
	}
}

// TestMatchDistribution_FromServePoints tests the full point->match chain
func TestMatchDistribution_FromServePoints(t *testing.T) {
	d, err := NewMatchDistribution(3, 0.67, 0.61)
	require.NoError(t, err)

	assert.True(t, d.MatchWin() > 0.5, "stronger server must be favourite")
	assert.InDelta(t, 1.0, d.TotalMass(), 1e-12)

	// Best-of-3 set scores only.
	assert.True(t, d.SetScore(2, 0) > 0)
	assert.True(t, d.SetScore(2, 1) > 0)
	assert.True(t, d.SetScore(0, 2) > 0)
	assert.True(t, d.SetScore(1, 2) > 0)
	assert.Zero(t, d.SetScore(3, 0))
	sum := d.SetScore(2, 0) + d.SetScore(2, 1) + d.SetScore(0, 2) + d.SetScore(1, 2)
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, d.MatchWin(), d.SetScore(2, 0)+d.SetScore(2, 1), 1e-12)

	// Total games bounded by the format: 12 minimum, 39 maximum.
	assert.True(t, d.ExpectedTotalGames() > 12 && d.ExpectedTotalGames() < 39)
}

// TestMatchDistribution_MarginalsAgreeWithJoint tests marginal consistency
func TestMatchDistribution_MarginalsAgreeWithJoint(t *testing.T) {
	d, err := NewMatchDistributionFromHolds(3, 0.78, 0.70)
	require.NoError(t, err)

	gamesA := d.GamesMarginal(true)
	gamesB := d.GamesMarginal(false)

	sumA, meanA := 0.0, 0.0
	for g, p := range gamesA {
		sumA += p
		meanA += float64(g) * p
	}
	sumB, meanB := 0.0, 0.0
	for g, p := range gamesB {
		sumB += p
		meanB += float64(g) * p
	}
	assert.InDelta(t, 1.0, sumA, 1e-12)
	assert.InDelta(t, 1.0, sumB, 1e-12)
	assert.InDelta(t, d.ExpectedTotalGames(), meanA+meanB, 1e-9)
}

// TestMatchDistribution_HandicapFromJointMargin tests that game handicaps
// come from the convolved joint rather than independent marginals
func TestMatchDistribution_HandicapFromJointMargin(t *testing.T) {
	d, err := NewMatchDistributionFromHolds(3, 0.80, 0.68)
	require.NoError(t, err)

	// Half lines partition all mass.
	hc := d.GameHandicap(-3.5)
	assert.Zero(t, hc.Push)
	assert.InDelta(t, 1.0, hc.Over+hc.Under, 1e-12)

	// Integer lines can push.
	level := d.GameHandicap(-3)
	assert.True(t, level.Push > 0)
	assert.InDelta(t, 1.0, level.Over+level.Push+level.Under, 1e-12)

	// Monotone in the line.
	prev := 0.0
	for line := -12.5; line <= 12.5; line += 1.0 {
		res := d.GameHandicap(line)
		assert.True(t, res.Over >= prev-1e-12, "line %v", line)
		prev = res.Over
	}

	// Joint margin equals the handicap reads.
	margin := d.GameMarginDistribution()
	cover := 0.0
	for m, p := range margin {
		if m > 3 {
			cover += p
		}
	}
	assert.InDelta(t, cover, d.GameHandicap(-3).Over, 1e-12)
}

// TestMatchDistribution_TotalGames tests totals splits
func TestMatchDistribution_TotalGames(t *testing.T) {
	d, err := NewMatchDistributionFromHolds(3, 0.75, 0.72)
	require.NoError(t, err)

	res := d.TotalGames(21.5)
	assert.Zero(t, res.Push)
	assert.InDelta(t, 1.0, res.Over+res.Under, 1e-12)

	integer := d.TotalGames(22)
	assert.InDelta(t, res.Over, integer.Over+integer.Push, 1e-12)
}

// TestMatchDistribution_RejectsBadInput tests input validation
func TestMatchDistribution_RejectsBadInput(t *testing.T) {
	_, err := NewMatchDistribution(4, 0.6, 0.6)
	assert.Error(t, err)

	_, err = NewMatchDistribution(3, 0, 0.6)
	assert.ErrorIs(t, err, ErrInvalidProbability)

	_, err = NewMatchDistributionFromHolds(5, 0.7, 1.2)
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

// TestMatchWinFromHolds_Monotone tests the scalar composite used by the
// bisection solver
func TestMatchWinFromHolds_Monotone(t *testing.T) {
	prev := 0.0
	for h := 0.05; h < 1; h += 0.05 {
		w, err := MatchWinFromHolds(3, h, 0.70)
		require.NoError(t, err)
		assert.True(t, w > prev, "match win must rise with hold at h=%v", h)
		prev = w
	}
}

func validSetScore(a, b int) bool {
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	switch {
	case hi == 6:
		return lo <= 4
	case hi == 7:
		return lo == 5 || lo == 6
	default:
		return false
	}
}
