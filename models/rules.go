package models

// PhaseRules holds the point values in force for one round of one
// tournament. Rule-sets are loaded from the rules file into the database;
// changing a tournament's point values is a data change, not a deploy.
//
// Advancement is the classification bonus for correctly predicting who
// proceeds past this round (0 for rounds without classification).
// Champion/RunnerUp only apply on a tournament's final round.
type PhaseRules struct {
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Round        int    `json:"round" db:"round"`
	Phase        string `json:"phase" db:"phase"`
	Exact        int    `json:"exact" db:"exact"`
	Difference   int    `json:"difference" db:"difference"`
	Sign         int    `json:"sign" db:"sign"`
	Advancement  int    `json:"advancement" db:"advancement"`
	Champion     int    `json:"champion" db:"champion"`
	RunnerUp     int    `json:"runner_up" db:"runner_up"`
}

// Phase labels used by the rules files. One or more rounds may map to the
// same phase.
const (
	PhaseGroup        = "group"
	PhaseRegular      = "regular"
	PhaseRoundOf16    = "round_of_16"
	PhaseQuarterfinal = "quarterfinal"
	PhaseSemifinal    = "semifinal"
	PhaseFinal        = "final"
)
