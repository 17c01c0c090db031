package racemodel

// SetOutcome is one terminal set score with its probability. Games are
// counted for the side that served the first game of the set ("side A").
type SetOutcome struct {
	WinnerA     bool
	GamesA      int
	GamesB      int
	Probability float64
}

// SetDistribution enumerates every terminal set score (6-0 through 7-5 each
// way, plus 7-6 / 6-7 through the tiebreak) by forward dynamic programming
// over the game grid. holdA and holdB are each side's probability of holding
// serve; tiebreakA is side A's probability of taking a tiebreak. Side A
// serves the first game and the serve alternates.
func SetDistribution(holdA, holdB, tiebreakA float64) ([]SetOutcome, error) {
	if err := validateProbability("hold A", holdA); err != nil {
		return nil, err
	}
	if err := validateProbability("hold B", holdB); err != nil {
		return nil, err
	}
	if err := validateProbability("tiebreak A", tiebreakA); err != nil {
		return nil, err
	}

	// reach[a][b] = P(score a-b occurs with the set still live).
	var reach [8][8]float64
	reach[0][0] = 1

	outcomes := make([]SetOutcome, 0, 14)
	record := func(winnerA bool, gamesA, gamesB int, p float64) {
		if p > 0 {
			outcomes = append(outcomes, SetOutcome{WinnerA: winnerA, GamesA: gamesA, GamesB: gamesB, Probability: p})
		}
	}

	for total := 0; total <= 12; total++ {
		for a := 0; a <= 6; a++ {
			b := total - a
			if b < 0 || b > 6 {
				continue
			}
			p := reach[a][b]
			if p == 0 {
				continue
			}
			if a == 6 && b == 6 {
				record(true, 7, 6, p*tiebreakA)
				record(false, 6, 7, p*(1-tiebreakA))
				continue
			}
			if setOver(a, b) {
				continue
			}

			// Side A serves even-indexed games (0-based).
			pGameA := holdA
			if total%2 == 1 {
				pGameA = 1 - holdB
			}

			if setOver(a+1, b) {
				record(true, a+1, b, p*pGameA)
			} else {
				reach[a+1][b] += p * pGameA
			}
			if setOver(a, b+1) {
				record(false, a, b+1, p*(1-pGameA))
			} else {
				reach[a][b+1] += p * (1 - pGameA)
			}
		}
	}
	return outcomes, nil
}

// symmetrizedSetDistribution averages the set distribution over the two
// first-server assignments. The serve toss is a fair coin, so pregame
// pricing weights "A serves first" and "B serves first" equally; this also
// makes equal-strength matchups exactly fair by construction.
// tiebreakAFirst and tiebreakABFirst are side A's tiebreak-win probabilities
// when A and B respectively serve the first tiebreak point.
func symmetrizedSetDistribution(holdA, holdB, tiebreakAFirst, tiebreakABFirst float64) ([]SetOutcome, error) {
	aFirst, err := SetDistribution(holdA, holdB, tiebreakAFirst)
	if err != nil {
		return nil, err
	}
	bFirst, err := SetDistribution(holdB, holdA, 1-tiebreakABFirst)
	if err != nil {
		return nil, err
	}

	type key struct {
		winnerA bool
		gamesA  int
		gamesB  int
	}
	merged := make(map[key]float64, len(aFirst)+len(bFirst))
	for _, o := range aFirst {
		merged[key{o.WinnerA, o.GamesA, o.GamesB}] += 0.5 * o.Probability
	}
	// Mirror the B-first outcomes back into side A's frame.
	for _, o := range bFirst {
		merged[key{!o.WinnerA, o.GamesB, o.GamesA}] += 0.5 * o.Probability
	}

	outcomes := make([]SetOutcome, 0, len(merged))
	for k, p := range merged {
		outcomes = append(outcomes, SetOutcome{WinnerA: k.winnerA, GamesA: k.gamesA, GamesB: k.gamesB, Probability: p})
	}
	return outcomes, nil
}

// setOver reports whether a-b is a terminal set score short of the tiebreak:
// six games with a two-game margin, or 7-5.
func setOver(a, b int) bool {
	if a >= 6 && a-b >= 2 {
		return true
	}
	if b >= 6 && b-a >= 2 {
		return true
	}
	return a == 7 || b == 7
}
