package engine

import (
	"fmt"
	"math"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
	"github.com/cypherlabdev/odds-calibration-service/pkg/calibrate"
	"github.com/cypherlabdev/odds-calibration-service/pkg/racemodel"
	"github.com/cypherlabdev/odds-calibration-service/pkg/scoreline"
)

// Catalogue market names.
const (
	CatalogueMatchOdds    = "match_odds"
	CatalogueTotals       = "totals"
	CatalogueHalfTotals   = "first_half_totals"
	CatalogueHandicap     = "handicap"
	CatalogueBothScore    = "both_sides_score"
	CatalogueCorrectScore = "correct_score"
	CatalogueTeamTotals   = "team_totals"
	CatalogueResultTotals = "result_and_totals"
	CatalogueMatchWin     = "match_win"
	CatalogueSetBetting   = "set_betting"
	CatalogueTotalGames   = "total_games"
	CatalogueGameHandicap = "game_handicap"
)

func (e *Engine) marketsFor(fitted calibrate.Fitted) ([]models.Market, error) {
	switch fitted.Strategy.Family {
	case calibrate.ModelScoreline:
		return e.scorelineMarkets(fitted.Matrix)
	case calibrate.ModelRace:
		d, err := racemodel.NewMatchDistribution(
			fitted.Strategy.Race.BestOf,
			fitted.Race.ServePointA,
			fitted.Race.ServePointB,
		)
		if err != nil {
			return nil, err
		}
		return e.raceMarkets(d), nil
	default:
		return nil, fmt.Errorf("unknown model family %q", fitted.Strategy.Family)
	}
}

// scorelineMarkets prices the catalogue off a fitted scoreline matrix. Line
// choices centre on the fitted means so the quoted ladder tracks the event
// rather than a fixed grid.
func (e *Engine) scorelineMarkets(m *scoreline.Matrix) ([]models.Market, error) {
	meanA, meanB := m.ExpectedScores()
	mainTotal := math.Floor(meanA+meanB) + 0.5

	markets := make([]models.Market, 0, 16)

	winA, draw, winB := m.MatchOdds()
	markets = append(markets, models.Market{
		Name: CatalogueMatchOdds,
		Quotes: []models.MarketQuote{
			e.fairQuote("side_a", winA),
			e.fairQuote("draw", draw),
			e.fairQuote("side_b", winB),
		},
	})

	for _, line := range []float64{mainTotal - 1, mainTotal, mainTotal + 1} {
		if line < 0.5 {
			continue
		}
		r := m.Totals(line)
		markets = append(markets, models.Market{
			Name: CatalogueTotals,
			Line: line,
			Quotes: []models.MarketQuote{
				e.fairQuote("over", r.Over),
				e.fairQuote("under", r.Under),
			},
		})
	}

	centre := -math.Round(meanA - meanB)
	for _, line := range []float64{centre - 0.5, centre + 0.5} {
		r := m.Handicap(line)
		markets = append(markets, models.Market{
			Name: CatalogueHandicap,
			Line: line,
			Quotes: []models.MarketQuote{
				e.fairQuote("side_a", r.CoverA),
				e.fairQuote("side_b", r.CoverB),
			},
		})
	}

	// First-half scoring is the full-time fit scaled down by the half
	// fraction; one totals line centred on the sliced mean.
	half, err := m.Slice(e.params.HalfScoringFraction)
	if err != nil {
		return nil, fmt.Errorf("first-half slice: %w", err)
	}
	halfMeanA, halfMeanB := half.ExpectedScores()
	halfLine := math.Floor(halfMeanA+halfMeanB) + 0.5
	halfTotals := half.Totals(halfLine)
	markets = append(markets, models.Market{
		Name: CatalogueHalfTotals,
		Line: halfLine,
		Quotes: []models.MarketQuote{
			e.fairQuote("over", halfTotals.Over),
			e.fairQuote("under", halfTotals.Under),
		},
	})

	btts := m.BothSidesScore()
	markets = append(markets, models.Market{
		Name: CatalogueBothScore,
		Quotes: []models.MarketQuote{
			e.fairQuote("yes", btts),
			e.fairQuote("no", 1-btts),
		},
	})

	markets = append(markets, e.correctScoreMarket(m))

	for _, side := range []struct {
		side scoreline.Side
		name string
		mean float64
	}{
		{scoreline.SideA, "side_a", meanA},
		{scoreline.SideB, "side_b", meanB},
	} {
		line := math.Floor(side.mean) + 0.5
		r := m.TeamTotals(side.side, line)
		markets = append(markets, models.Market{
			Name: CatalogueTeamTotals + ":" + side.name,
			Line: line,
			Quotes: []models.MarketQuote{
				e.fairQuote("over", r.Over),
				e.fairQuote("under", r.Under),
			},
		})
	}

	c := m.ResultAndTotals(mainTotal)
	markets = append(markets, models.Market{
		Name: CatalogueResultTotals,
		Line: mainTotal,
		Quotes: []models.MarketQuote{
			e.fairQuote("side_a_over", c.WinAndOver),
			e.fairQuote("side_a_under", c.WinAndUnder),
			e.fairQuote("draw_over", c.DrawAndOver),
			e.fairQuote("draw_under", c.DrawAndUnder),
			e.fairQuote("side_b_over", c.LossAndOver),
			e.fairQuote("side_b_under", c.LossAndUnder),
		},
	})

	return markets, nil
}

// correctScoreMarket quotes the exact-score grid up to the configured bound
// plus a single bucket for everything beyond it.
func (e *Engine) correctScoreMarket(m *scoreline.Matrix) models.Market {
	bound := e.params.MaxCorrectScore
	if bound > m.MaxScore() {
		bound = m.MaxScore()
	}

	quotes := make([]models.MarketQuote, 0, (bound+1)*(bound+1)+1)
	covered := 0.0
	for a := 0; a <= bound; a++ {
		for b := 0; b <= bound; b++ {
			p, _ := m.CorrectScore(a, b)
			covered += p
			quotes = append(quotes, e.fairQuote(fmt.Sprintf("%d-%d", a, b), p))
		}
	}
	quotes = append(quotes, e.fairQuote("any_other", math.Max(0, 1-covered)))

	return models.Market{Name: CatalogueCorrectScore, Quotes: quotes}
}

// raceMarkets prices the catalogue off a fitted race-model distribution.
func (e *Engine) raceMarkets(d *racemodel.MatchDistribution) []models.Market {
	markets := make([]models.Market, 0, 8)

	winA := d.MatchWin()
	markets = append(markets, models.Market{
		Name: CatalogueMatchWin,
		Quotes: []models.MarketQuote{
			e.fairQuote("side_a", winA),
			e.fairQuote("side_b", 1-winA),
		},
	})

	need := d.BestOf()/2 + 1
	setQuotes := make([]models.MarketQuote, 0, 2*need)
	for lost := 0; lost < need; lost++ {
		setQuotes = append(setQuotes, e.fairQuote(fmt.Sprintf("%d-%d", need, lost), d.SetScore(need, lost)))
	}
	for lost := 0; lost < need; lost++ {
		setQuotes = append(setQuotes, e.fairQuote(fmt.Sprintf("%d-%d", lost, need), d.SetScore(lost, need)))
	}
	markets = append(markets, models.Market{Name: CatalogueSetBetting, Quotes: setQuotes})

	mainGames := math.Floor(d.ExpectedTotalGames()) + 0.5
	for _, line := range []float64{mainGames - 1, mainGames, mainGames + 1} {
		r := d.TotalGames(line)
		markets = append(markets, models.Market{
			Name: CatalogueTotalGames,
			Line: line,
			Quotes: []models.MarketQuote{
				e.fairQuote("over", r.Over),
				e.fairQuote("under", r.Under),
			},
		})
	}

	margin := 0.0
	for diff, p := range d.GameMarginDistribution() {
		margin += float64(diff) * p
	}
	centre := -math.Round(margin)
	for _, line := range []float64{centre - 0.5, centre + 0.5} {
		r := d.GameHandicap(line)
		markets = append(markets, models.Market{
			Name: CatalogueGameHandicap,
			Line: line,
			Quotes: []models.MarketQuote{
				e.fairQuote("side_a", r.Over),
				e.fairQuote("side_b", r.Under),
			},
		})
	}

	return markets
}
