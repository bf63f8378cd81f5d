package models

import "github.com/google/uuid"

// ClassificationPoint records one user's advancement call for one slot of
// one round: either a knockout tie (slot = tie ID) or a group-qualification
// position (slot = "group:<label>:<rank>"). At most one row exists per
// (user, tournament, slot, round); rescoring replaces the row.
type ClassificationPoint struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	Slot          string    `json:"slot" db:"slot"`
	Round         int       `json:"round" db:"round"`
	PredictedTeam string    `json:"predicted_team" db:"predicted_team"`
	OfficialTeam  *string   `json:"official_team,omitempty" db:"official_team"`
	Points        int       `json:"points" db:"points"`
}
