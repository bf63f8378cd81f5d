package models

// StandingsRow is one team's line in a group table. Rows are derived on
// demand from a match set (official results or one user's predictions) and
// are never persisted as source of truth.
type StandingsRow struct {
	Team           string `json:"team"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}
