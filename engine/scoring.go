package engine

import (
	"errors"
	"fmt"

	"github.com/quinipool/prediction-pool/models"
)

var (
	ErrResultMissing = errors.New("official result is not set")
	ErrBadMultiplier = errors.New("score multiplier must be a positive integer")
)

// Scoreline is a pair of goal counts for one match.
type Scoreline struct {
	Home int
	Away int
}

// Outcome returns -1, 0 or 1 for away win, draw and home win.
func (s Scoreline) Outcome() int {
	switch {
	case s.Home > s.Away:
		return 1
	case s.Home < s.Away:
		return -1
	default:
		return 0
	}
}

// MatchPoints converts one (prediction, official result) pair into points
// under the round's rules. Exactly one category applies, in strict priority:
//
//  1. both goal counts exact            -> rules.Exact
//  2. same goal difference and outcome  -> rules.Difference
//  3. same outcome only                 -> rules.Sign
//  4. otherwise                         -> 0
//
// The result is multiplied by the match's score multiplier. Calling with a
// nil actual result is the caller's bug, not a zero score. Penalty-shootout
// goals are never read here; they affect advancement only.
func MatchPoints(predicted Scoreline, actual *Scoreline, rules models.PhaseRules, multiplier int) (int, error) {
	if actual == nil {
		return 0, ErrResultMissing
	}
	if multiplier < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrBadMultiplier, multiplier)
	}

	var base int
	switch {
	case predicted.Home == actual.Home && predicted.Away == actual.Away:
		base = rules.Exact
	case predicted.Home-predicted.Away == actual.Home-actual.Away:
		// Equal differences imply equal outcomes, so the sign check is
		// already satisfied here.
		base = rules.Difference
	case predicted.Outcome() == actual.Outcome():
		base = rules.Sign
	}
	return base * multiplier, nil
}
