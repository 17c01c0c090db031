package racemodel

// tiebreakTarget is the winning point count before the two-clear rule.
const tiebreakTarget = 7

// TiebreakWinProbability returns the probability that side A wins a
// first-to-seven, win-by-two tiebreak, given each side's probability of
// winning a point on its own serve. Side A serves the first point, then the
// serve alternates every two points. The bounded grid handles every path up
// to 6-6; beyond the cap the sudden-death extension is the symmetric
// two-point cycle solved in closed form.
func TiebreakWinProbability(servePointA, servePointB float64) (float64, error) {
	if err := validateProbability("serve point A", servePointA); err != nil {
		return 0, err
	}
	if err := validateProbability("serve point B", servePointB); err != nil {
		return 0, err
	}

	// From 6-6 every pair of points has one serve each. A takes the pair
	// with probability pA·(1−pB), B with (1−pA)·pB, otherwise the score is
	// level again and the cycle repeats.
	winPair := servePointA * (1 - servePointB)
	losePair := (1 - servePointA) * servePointB
	extension := winPair / (winPair + losePair)

	// win[a][b] = P(A wins | score a-b). Fill by decreasing total points.
	var win [tiebreakTarget + 1][tiebreakTarget + 1]float64
	for total := 2 * (tiebreakTarget - 1); total >= 0; total-- {
		for a := 0; a <= tiebreakTarget-1; a++ {
			b := total - a
			if b < 0 || b > tiebreakTarget-1 {
				continue
			}
			if a == tiebreakTarget-1 && b == tiebreakTarget-1 {
				win[a][b] = extension
				continue
			}
			pPoint := servePointA
			if !servesFirstSide(a + b) {
				pPoint = 1 - servePointB
			}
			winNext := 1.0
			if a+1 < tiebreakTarget {
				winNext = win[a+1][b]
			}
			loseNext := 0.0
			if b+1 < tiebreakTarget {
				loseNext = win[a][b+1]
			}
			win[a][b] = pPoint*winNext + (1-pPoint)*loseNext
		}
	}
	return win[0][0], nil
}

// servesFirstSide reports whether the side that served point one also serves
// the point played at zero-based index k under the 1-2-2 rotation.
func servesFirstSide(k int) bool {
	return ((k+1)/2)%2 == 0
}
