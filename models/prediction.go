package models

import "github.com/google/uuid"

// Prediction is one user's predicted score for one match. There is at most
// one per (user, match); it stays mutable until the match's round is closed.
// Points holds the last scoring run's output and is replaced, never
// accumulated, on rescoring.
type Prediction struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	HomeGoals int       `json:"home_goals" db:"home_goals"`
	AwayGoals int       `json:"away_goals" db:"away_goals"`
	HomePens  *int      `json:"home_pens,omitempty" db:"home_pens"`
	AwayPens  *int      `json:"away_pens,omitempty" db:"away_pens"`
	Points    *int      `json:"points,omitempty" db:"points"`
}

// ChampionPrediction is one user's champion / runner-up pick for a cup.
// The pair doubles as the user's predicted finalist pair when scoring a
// virtual final. Point fields stay NULL until the official champion and
// runner-up are known.
type ChampionPrediction struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	Champion       string    `json:"champion" db:"champion"`
	RunnerUp       string    `json:"runner_up" db:"runner_up"`
	ChampionPoints *int      `json:"champion_points,omitempty" db:"champion_points"`
	RunnerUpPoints *int      `json:"runner_up_points,omitempty" db:"runner_up_points"`
}
