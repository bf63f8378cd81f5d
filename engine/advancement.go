package engine

import "errors"

var ErrTeamMismatch = errors.New("legs do not feature the same two teams")

// Leg is one played (or fully predicted) leg of a knockout tie.
type Leg struct {
	HomeTeam  string
	AwayTeam  string
	HomeGoals int
	AwayGoals int
	HomePens  *int
	AwayPens  *int
}

// AdvancingTeam resolves a two-legged tie. Goals are aggregated per team
// identity, never per home/away slot, so the caller may pass the legs in
// either order. A level aggregate falls back to the penalty shootout of
// whichever leg recorded one. nil without an error is a valid state: the
// tie is not yet determined, and no classification record may be persisted
// for it.
func AdvancingTeam(leg1, leg2 Leg) (*string, error) {
	if leg1.HomeTeam == leg1.AwayTeam || !SamePair(leg1.HomeTeam, leg1.AwayTeam, leg2.HomeTeam, leg2.AwayTeam) {
		return nil, ErrTeamMismatch
	}

	aggregate := map[string]int{}
	for _, leg := range []Leg{leg1, leg2} {
		aggregate[leg.HomeTeam] += leg.HomeGoals
		aggregate[leg.AwayTeam] += leg.AwayGoals
	}

	a, b := leg1.HomeTeam, leg1.AwayTeam
	switch {
	case aggregate[a] > aggregate[b]:
		return &a, nil
	case aggregate[b] > aggregate[a]:
		return &b, nil
	}

	// Shootouts only happen in the deciding leg, so at most one leg
	// carries penalty counts.
	for _, leg := range []Leg{leg2, leg1} {
		if leg.HomePens == nil || leg.AwayPens == nil {
			continue
		}
		switch {
		case *leg.HomePens > *leg.AwayPens:
			team := leg.HomeTeam
			return &team, nil
		case *leg.AwayPens > *leg.HomePens:
			team := leg.AwayTeam
			return &team, nil
		}
	}
	return nil, nil
}

// FinalWinner resolves a single-leg final: goals first, then penalties.
// nil means the final is level with no (or a level) shootout.
func FinalWinner(leg Leg) (*string, error) {
	if leg.HomeTeam == leg.AwayTeam {
		return nil, ErrTeamMismatch
	}
	switch {
	case leg.HomeGoals > leg.AwayGoals:
		team := leg.HomeTeam
		return &team, nil
	case leg.AwayGoals > leg.HomeGoals:
		team := leg.AwayTeam
		return &team, nil
	}
	if leg.HomePens != nil && leg.AwayPens != nil {
		switch {
		case *leg.HomePens > *leg.AwayPens:
			team := leg.HomeTeam
			return &team, nil
		case *leg.AwayPens > *leg.HomePens:
			team := leg.AwayTeam
			return &team, nil
		}
	}
	return nil, nil
}

// SamePair reports whether {a1, a2} and {b1, b2} are the same unordered
// pair of teams.
func SamePair(a1, a2, b1, b2 string) bool {
	return (a1 == b1 && a2 == b2) || (a1 == b2 && a2 == b1)
}
