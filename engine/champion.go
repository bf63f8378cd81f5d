package engine

import "github.com/quinipool/prediction-pool/models"

// FinalistPair names a champion and a runner-up, predicted or official.
type FinalistPair struct {
	Champion string
	RunnerUp string
}

// ChampionPoints scores a predicted finalist pair against the official one.
// The two comparisons are independent: a user can take the runner-up points
// while missing the champion, and vice versa. Values come from the final
// round's rule-set.
func ChampionPoints(predicted, official FinalistPair, rules models.PhaseRules) (championPts, runnerUpPts int) {
	if predicted.Champion == official.Champion {
		championPts = rules.Champion
	}
	if predicted.RunnerUp == official.RunnerUp {
		runnerUpPts = rules.RunnerUp
	}
	return championPts, runnerUpPts
}
