package models

// Match is a fixture between two teams. Result fields stay NULL until the
// match is played; they may be re-entered once for corrections, after which
// the round is rescored. Penalty counts are only meaningful for knockout
// fixtures and never affect match-result points.
type Match struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	Round        int     `json:"round" db:"round"`
	GroupLabel   *string `json:"group_label,omitempty" db:"group_label"`
	TieID        *string `json:"tie_id,omitempty" db:"tie_id"`
	Leg          *int    `json:"leg,omitempty" db:"leg"`
	HomeTeam     string  `json:"home_team" db:"home_team"`
	AwayTeam     string  `json:"away_team" db:"away_team"`
	HomeGoals    *int    `json:"home_goals,omitempty" db:"home_goals"`
	AwayGoals    *int    `json:"away_goals,omitempty" db:"away_goals"`
	HomePens     *int    `json:"home_pens,omitempty" db:"home_pens"`
	AwayPens     *int    `json:"away_pens,omitempty" db:"away_pens"`
	Multiplier   int     `json:"multiplier" db:"multiplier"`
	Virtual      bool    `json:"virtual" db:"virtual"`
}

// HasResult reports whether the official result is fully known.
// The scoring engine must not be invoked for a match without one.
func (m *Match) HasResult() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}
