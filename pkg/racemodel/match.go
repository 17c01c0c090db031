package racemodel

import (
	"fmt"
	"math"
)

// GameCount is a joint total-games cell: side A's and side B's game counts
// over a whole match.
type GameCount struct {
	GamesA int
	GamesB int
}

// MatchDistribution is the frozen exact outcome distribution of a best-of-N
// sets match. The joint game-count mass is produced by convolving every
// feasible set-score path, so handicap and totals markets read correlated
// totals rather than an independence approximation.
type MatchDistribution struct {
	bestOf int

	winA      float64
	setScores map[[2]int]float64
	joint     map[GameCount]float64
}

// NewMatchDistribution builds the match model from each side's probability
// of winning a point on serve. bestOf must be 3 or 5.
func NewMatchDistribution(bestOf int, servePointA, servePointB float64) (*MatchDistribution, error) {
	if bestOf != 3 && bestOf != 5 {
		return nil, fmt.Errorf("best of %d is not supported, want 3 or 5", bestOf)
	}
	holdA, err := GameHoldProbability(servePointA)
	if err != nil {
		return nil, err
	}
	holdB, err := GameHoldProbability(servePointB)
	if err != nil {
		return nil, err
	}
	tiebreakAFirst, err := TiebreakWinProbability(servePointA, servePointB)
	if err != nil {
		return nil, err
	}
	tiebreakBFirst, err := TiebreakWinProbability(servePointB, servePointA)
	if err != nil {
		return nil, err
	}
	return matchFromSets(bestOf, holdA, holdB, tiebreakAFirst, 1-tiebreakBFirst)
}

// NewMatchDistributionFromHolds builds the match model directly from game
// hold probabilities, for sports where the unit-win probability is the
// natural parameter. The decider is priced with the same unit probabilities.
func NewMatchDistributionFromHolds(bestOf int, holdA, holdB float64) (*MatchDistribution, error) {
	if bestOf != 3 && bestOf != 5 {
		return nil, fmt.Errorf("best of %d is not supported, want 3 or 5", bestOf)
	}
	tiebreakAFirst, err := TiebreakWinProbability(holdA, holdB)
	if err != nil {
		return nil, err
	}
	tiebreakBFirst, err := TiebreakWinProbability(holdB, holdA)
	if err != nil {
		return nil, err
	}
	return matchFromSets(bestOf, holdA, holdB, tiebreakAFirst, 1-tiebreakBFirst)
}

type matchState struct {
	setsA, setsB int
	games        GameCount
}

func matchFromSets(bestOf int, holdA, holdB, tiebreakAFirst, tiebreakABFirst float64) (*MatchDistribution, error) {
	sets, err := symmetrizedSetDistribution(holdA, holdB, tiebreakAFirst, tiebreakABFirst)
	if err != nil {
		return nil, err
	}

	need := bestOf/2 + 1
	dist := &MatchDistribution{
		bestOf:    bestOf,
		setScores: make(map[[2]int]float64),
		joint:     make(map[GameCount]float64),
	}

	// Convolve set outcomes over every live set-count state.
	live := map[matchState]float64{{}: 1}
	for len(live) > 0 {
		next := make(map[matchState]float64, len(live)*len(sets))
		for st, p := range live {
			for _, set := range sets {
				q := p * set.Probability
				ns := matchState{
					setsA: st.setsA,
					setsB: st.setsB,
					games: GameCount{st.games.GamesA + set.GamesA, st.games.GamesB + set.GamesB},
				}
				if set.WinnerA {
					ns.setsA++
				} else {
					ns.setsB++
				}
				if ns.setsA == need || ns.setsB == need {
					if ns.setsA == need {
						dist.winA += q
					}
					dist.setScores[[2]int{ns.setsA, ns.setsB}] += q
					dist.joint[ns.games] += q
				} else {
					next[ns] += q
				}
			}
		}
		live = next
	}
	return dist, nil
}

// MatchWin returns side A's match-win probability.
func (d *MatchDistribution) MatchWin() float64 {
	return d.winA
}

// BestOf returns the configured match length.
func (d *MatchDistribution) BestOf() int {
	return d.bestOf
}

// SetScore returns the probability of an exact final set score, e.g. (2, 1).
func (d *MatchDistribution) SetScore(setsA, setsB int) float64 {
	return d.setScores[[2]int{setsA, setsB}]
}

// ExpectedTotalGames returns the mean combined game count.
func (d *MatchDistribution) ExpectedTotalGames() float64 {
	mean := 0.0
	for gc, p := range d.joint {
		mean += float64(gc.GamesA+gc.GamesB) * p
	}
	return mean
}

// GameMarginDistribution returns the joint signed margin (gamesA − gamesB)
// mass, computed from the convolved paths.
func (d *MatchDistribution) GameMarginDistribution() map[int]float64 {
	margin := make(map[int]float64)
	for gc, p := range d.joint {
		margin[gc.GamesA-gc.GamesB] += p
	}
	return margin
}

// GamesMarginal returns one side's marginal distribution over total games
// won, indexed by game count.
func (d *MatchDistribution) GamesMarginal(sideA bool) []float64 {
	maxGames := 0
	for gc := range d.joint {
		g := gc.GamesA
		if !sideA {
			g = gc.GamesB
		}
		if g > maxGames {
			maxGames = g
		}
	}
	marginal := make([]float64, maxGames+1)
	for gc, p := range d.joint {
		g := gc.GamesA
		if !sideA {
			g = gc.GamesB
		}
		marginal[g] += p
	}
	return marginal
}

// TotalsSplit is an over/push/under split of a totals or handicap read.
type TotalsSplit struct {
	Over  float64
	Push  float64
	Under float64
}

// TotalGames prices combined games over/under at the given line.
func (d *MatchDistribution) TotalGames(line float64) TotalsSplit {
	var res TotalsSplit
	for gc, p := range d.joint {
		diff := float64(gc.GamesA+gc.GamesB) - line
		switch {
		case diff > 1e-9:
			res.Over += p
		case diff < -1e-9:
			res.Under += p
		default:
			res.Push += p
		}
	}
	return res
}

// GameHandicap prices side A at the given game line from the joint margin
// distribution: A covers when margin + line > 0.
func (d *MatchDistribution) GameHandicap(line float64) TotalsSplit {
	var res TotalsSplit
	for gc, p := range d.joint {
		adjusted := float64(gc.GamesA-gc.GamesB) + line
		switch {
		case adjusted > 1e-9:
			res.Over += p
		case adjusted < -1e-9:
			res.Under += p
		default:
			res.Push += p
		}
	}
	return res
}

// TotalMass returns the summed joint mass; the DP is exact so this should
// differ from 1 only by float rounding.
func (d *MatchDistribution) TotalMass() float64 {
	total := 0.0
	for _, p := range d.joint {
		total += p
	}
	return total
}

// MatchWinFromHolds is the scalar composite used when inverting a target
// match-win probability back to a unit-hold probability: both sides get the
// same hold parameter h for the opponent-strength baseline, and side A's
// hold is the free scalar.
func MatchWinFromHolds(bestOf int, holdA, holdB float64) (float64, error) {
	d, err := NewMatchDistributionFromHolds(bestOf, holdA, holdB)
	if err != nil {
		return math.NaN(), err
	}
	return d.MatchWin(), nil
}
