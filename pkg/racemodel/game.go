// Package racemodel prices sports decided by a discrete point → game → set →
// match structure through exact dynamic programming rather than a parametric
// scoreline matrix.
package racemodel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidProbability is returned when a point or hold probability falls
// outside (0, 1).
var ErrInvalidProbability = errors.New("invalid probability")

// GameHoldProbability returns the probability the server wins a standard
// game given the probability p of winning a single service point. The
// no-deuce paths are closed form; the deuce/advantage cycle recursion
//
//	P(deuce) = p² + 2pq·P(deuce)
//
// resolves to p²/(1 − 2pq).
func GameHoldProbability(p float64) (float64, error) {
	if err := validateProbability("point win", p); err != nil {
		return 0, err
	}
	q := 1 - p
	p4 := p * p * p * p

	// To love, to 15, to 30: 4-0, 4-1 (4 orderings), 4-2 (10 orderings).
	straight := p4 * (1 + 4*q + 10*q*q)

	// 20 orderings reach deuce at 3-3, then the two-point cycle repeats.
	deuce := 20 * p * p * p * q * q * q * (p * p / (1 - 2*p*q))

	return straight + deuce, nil
}

func validateProbability(name string, p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return fmt.Errorf("%w: %s=%g must be inside (0, 1)", ErrInvalidProbability, name, p)
	}
	return nil
}
