package models

// TournamentKind distinguishes the domestic league from the cup competitions.
type TournamentKind string

const (
	KindLeague TournamentKind = "league"
	KindCup    TournamentKind = "cup"
)

// Tournament represents one competition of the prediction pool.
// Scoring rules (phase_rules) and tie-break criteria are per-tournament
// configuration data, not code.
type Tournament struct {
	ID                 int            `json:"id" db:"id"`
	Code               string         `json:"code" db:"code"`
	Name               string         `json:"name" db:"name"`
	Kind               TournamentKind `json:"kind" db:"kind"`
	FinalRound         int            `json:"final_round" db:"final_round"`
	QualifiersPerGroup int            `json:"qualifiers_per_group" db:"qualifiers_per_group"`
	HeadToHead         bool           `json:"head_to_head" db:"head_to_head"`
}

// Round is a numbered stage of a tournament. Closing a round is a terminal
// transition: prediction writes for its matches are rejected afterwards.
type Round struct {
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	Number       int  `json:"number" db:"number"`
	Closed       bool `json:"closed" db:"closed"`
}
