package models

import (
	"time"

	"github.com/google/uuid"
)

// UserScore pairs a user with a point total, used for round totals and
// cumulative rankings.
type UserScore struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Points int       `json:"points" db:"points"`
}

// RoundWinner marks one user tied for the maximum total of a round. Ties are
// never broken: a round with three users on the top score has three rows.
// The set is rebuilt wholesale every time the round is scored.
type RoundWinner struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Round        int       `json:"round" db:"round"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Points       int       `json:"points" db:"points"`
}

// PodiumEntry is one position of the cumulative top-N snapshot taken at
// explicit recomputation time. Replacing the snapshot discards the previous
// one; it is not versioned.
type PodiumEntry struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Position     int       `json:"position" db:"position"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Points       int       `json:"points" db:"points"`
	CapturedAt   time.Time `json:"captured_at" db:"captured_at"`
}
