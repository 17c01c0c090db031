package calibrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-calibration-service/pkg/racemodel"
)

func tennisRaceConfig() RaceConfig {
	s, _ := StrategyFor("tennis")
	return s.Race
}

// TestSolveRace_RecoversServePoints round-trips known serve points through
// the nested inversion
func TestSolveRace_RecoversServePoints(t *testing.T) {
	tests := []struct {
		name       string
		servA      float64
		servB      float64
		totalsLine float64
	}{
		{name: "mild favourite", servA: 0.66, servB: 0.60, totalsLine: 21.5},
		{name: "even match", servA: 0.63, servB: 0.63, totalsLine: 22.5},
		{name: "strong favourite", servA: 0.71, servB: 0.58, totalsLine: 20.5},
	}

	cfg := tennisRaceConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := racemodel.NewMatchDistribution(cfg.BestOf, tt.servA, tt.servB)
			require.NoError(t, err)
			totals := d.TotalGames(tt.totalsLine)
			targets := []Target{
				{Kind: TargetWin, Probability: d.MatchWin()},
				{Kind: TargetTotalsOver, Line: tt.totalsLine, Probability: totals.Over / (totals.Over + totals.Under)},
			}

			res, err := SolveRace(cfg, targets)
			require.NoError(t, err)
			assert.True(t, res.Converged, "residual %g", res.Residual)
			assert.InDelta(t, tt.servA, res.ServePointA, 0.01)
			assert.InDelta(t, tt.servB, res.ServePointB, 0.01)

			fitted, err := racemodel.NewMatchDistribution(cfg.BestOf, res.ServePointA, res.ServePointB)
			require.NoError(t, err)
			assert.InDelta(t, d.MatchWin(), fitted.MatchWin(), 1e-4)
		})
	}
}

// TestSolveRace_WinOnly fixes the serve level at the prior and splits it
func TestSolveRace_WinOnly(t *testing.T) {
	cfg := tennisRaceConfig()
	targets := []Target{{Kind: TargetWin, Probability: 0.70}}

	res, err := SolveRace(cfg, targets)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.InDelta(t, cfg.PriorServeLevel, (res.ServePointA+res.ServePointB)/2, 1e-9)
	assert.Greater(t, res.ServePointA, res.ServePointB)

	d, err := racemodel.NewMatchDistribution(cfg.BestOf, res.ServePointA, res.ServePointB)
	require.NoError(t, err)
	assert.InDelta(t, 0.70, d.MatchWin(), 1e-4)
}

// TestSolveRace_UnreachableTotalsKeepsWinTarget drives the outer level
// sweep onto its bounds and checks the win target is still fitted there
// instead of degrading to an even match
func TestSolveRace_UnreachableTotalsKeepsWinTarget(t *testing.T) {
	cfg := tennisRaceConfig()
	targets := []Target{
		{Kind: TargetWin, Probability: 0.775},
		{Kind: TargetTotalsOver, Line: 28.5, Probability: 0.999},
	}

	res, err := SolveRace(cfg, targets)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Greater(t, res.ServePointA-res.ServePointB, 0.01, "favourite must keep a serve-point edge")

	d, err := racemodel.NewMatchDistribution(cfg.BestOf, res.ServePointA, res.ServePointB)
	require.NoError(t, err)
	assert.InDelta(t, 0.775, d.MatchWin(), 1e-3)
}

// TestSolveRace_RejectsHandicapTarget names the unsupported target kind
func TestSolveRace_RejectsHandicapTarget(t *testing.T) {
	cfg := tennisRaceConfig()
	targets := []Target{
		{Kind: TargetWin, Probability: 0.6},
		{Kind: TargetHandicapCover, Line: -3.5, Probability: 0.5},
	}

	_, err := SolveRace(cfg, targets)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

// TestSolveRace_RequiresWinTarget cannot split serve points from totals alone
func TestSolveRace_RequiresWinTarget(t *testing.T) {
	cfg := tennisRaceConfig()
	targets := []Target{{Kind: TargetTotalsOver, Line: 21.5, Probability: 0.5}}

	_, err := SolveRace(cfg, targets)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

// TestSolveRace_ExtremeWinClamps stays inside the serve-point bounds
func TestSolveRace_ExtremeWinClamps(t *testing.T) {
	cfg := tennisRaceConfig()
	targets := []Target{{Kind: TargetWin, Probability: 0.9999}}

	res, err := SolveRace(cfg, targets)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ServePointA, cfg.ServePointBounds.Min)
	assert.LessOrEqual(t, res.ServePointA, cfg.ServePointBounds.Max)
	assert.GreaterOrEqual(t, res.ServePointB, cfg.ServePointBounds.Min)
}
