package calibrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-calibration-service/pkg/scoreline"
)

// TestStrategyFor resolves registered sports case-insensitively
func TestStrategyFor(t *testing.T) {
	tests := []struct {
		name       string
		sport      string
		wantFamily ModelFamily
	}{
		{name: "football", sport: "football", wantFamily: ModelScoreline},
		{name: "uppercase", sport: "Ice_Hockey", wantFamily: ModelScoreline},
		{name: "padded", sport: " tennis ", wantFamily: ModelRace},
		{name: "handball", sport: "handball", wantFamily: ModelScoreline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyFor(tt.sport)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFamily, s.Family)
		})
	}
}

func TestStrategyFor_Unknown(t *testing.T) {
	_, err := StrategyFor("curling")
	assert.ErrorIs(t, err, ErrUnknownSport)
}

// TestWithOverride applies only the non-nil fields and leaves the
// registered default untouched
func TestWithOverride(t *testing.T) {
	base, err := StrategyFor("football")
	require.NoError(t, err)

	rho := -0.04
	priorTotal := 3.1
	got := base.WithOverride(StrategyOverride{Rho: &rho, PriorTotal: &priorTotal})

	assert.Equal(t, -0.04, got.Scoreline.Rho)
	assert.Equal(t, 3.1, got.PriorTotal)
	assert.Equal(t, base.Scoreline.MaxScore, got.Scoreline.MaxScore)
	assert.Equal(t, base.RateBounds, got.RateBounds)

	// The table entry keeps its defaults.
	again, err := StrategyFor("football")
	require.NoError(t, err)
	assert.Equal(t, base, again)
}

func TestWithOverride_RaceFamily(t *testing.T) {
	base, err := StrategyFor("tennis")
	require.NoError(t, err)

	level := 0.64
	got := base.WithOverride(StrategyOverride{PriorServeLevel: &level})

	assert.Equal(t, 0.64, got.Race.PriorServeLevel)
	assert.Equal(t, base.Race.BestOf, got.Race.BestOf)
	assert.Equal(t, base.Race.ServePointBounds, got.Race.ServePointBounds)
}

func TestSports_ListsAllDefaults(t *testing.T) {
	sports := Sports()
	assert.Len(t, sports, len(defaultStrategies))
	assert.Contains(t, sports, "football")
	assert.Contains(t, sports, "tennis")
}

// TestFit_ScorelineFamily returns a matrix ready for market reads
func TestFit_ScorelineFamily(t *testing.T) {
	strategy := footballStrategy()
	targets := []Target{
		{Kind: TargetWin, Probability: 0.48},
		{Kind: TargetTotalsOver, Line: 2.5, Probability: 0.52},
	}

	fitted, err := Fit(strategy, targets)
	require.NoError(t, err)
	assert.True(t, fitted.Converged)
	require.NotNil(t, fitted.Matrix)

	winA, _, _ := fitted.Matrix.MatchOdds()
	assert.InDelta(t, 0.48, winA, 2e-4)
}

// TestFit_RaceFamily returns serve points instead of a matrix
func TestFit_RaceFamily(t *testing.T) {
	strategy, err := StrategyFor("tennis")
	require.NoError(t, err)
	targets := []Target{{Kind: TargetWin, Probability: 0.64}}

	fitted, err := Fit(strategy, targets)
	require.NoError(t, err)
	assert.True(t, fitted.Converged)
	assert.Nil(t, fitted.Matrix)
	assert.Greater(t, fitted.Race.ServePointA, fitted.Race.ServePointB)
}

// TestFit_UnknownFamily rejects an unregistered model family
func TestFit_UnknownFamily(t *testing.T) {
	strategy := Strategy{Sport: "darts", Family: "elo"}
	_, err := Fit(strategy, []Target{{Kind: TargetWin, Probability: 0.5}})
	assert.Error(t, err)
}

// TestDefaultStrategies_ScorelineConfigsValid ensures every registered
// scoreline config builds a matrix at representative rates
func TestDefaultStrategies_ScorelineConfigsValid(t *testing.T) {
	for name, s := range defaultStrategies {
		if s.Family != ModelScoreline {
			continue
		}
		t.Run(name, func(t *testing.T) {
			mid := (s.RateBounds.Min + s.RateBounds.Max) / 2
			m, err := scoreline.New(s.Scoreline, mid, mid)
			require.NoError(t, err)
			winA, draw, winB := m.MatchOdds()
			assert.InDelta(t, 1.0, winA+draw+winB, 1e-9)
		})
	}
}
