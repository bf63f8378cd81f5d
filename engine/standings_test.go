package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func played(group, home, away string, hg, ag int) MatchResult {
	return MatchResult{Group: group, HomeTeam: home, AwayTeam: away, HomeGoals: &hg, AwayGoals: &ag}
}

func unplayed(group, home, away string) MatchResult {
	return MatchResult{Group: group, HomeTeam: home, AwayTeam: away}
}

func TestGroupStandingsBasicTable(t *testing.T) {
	results := []MatchResult{
		played("A", "Alpha", "Beta", 2, 0),
		played("A", "Gamma", "Alpha", 1, 1),
		played("A", "Beta", "Gamma", 0, 3),
		unplayed("A", "Alpha", "Delta"),
		played("B", "Omega", "Sigma", 5, 0), // other group, ignored
	}

	table := GroupStandings(results, "A", TieBreakPolicy{})
	require.Len(t, table, 4)

	assert.Equal(t, "Alpha", table[0].Team)
	assert.Equal(t, 4, table[0].Points)
	assert.Equal(t, 2, table[0].Played)
	assert.Equal(t, 3, table[0].GoalsFor)
	assert.Equal(t, 1, table[0].GoalsAgainst)

	assert.Equal(t, "Gamma", table[1].Team)
	assert.Equal(t, 4, table[1].Points)

	assert.Equal(t, "Beta", table[2].Team)
	assert.Equal(t, 0, table[2].Points)

	// The unplayed fixture registers Delta but contributes nothing.
	assert.Equal(t, "Delta", table[3].Team)
	assert.Equal(t, 0, table[3].Played)
}

func TestGroupStandingsOrderInvariance(t *testing.T) {
	results := []MatchResult{
		played("A", "Alpha", "Beta", 2, 1),
		played("A", "Gamma", "Delta", 0, 0),
		played("A", "Alpha", "Gamma", 1, 3),
		played("A", "Beta", "Delta", 2, 2),
		played("A", "Delta", "Alpha", 1, 0),
		played("A", "Gamma", "Beta", 1, 1),
	}

	want := GroupStandings(results, "A", TieBreakPolicy{HeadToHead: true})
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]MatchResult, len(results))
		copy(shuffled, results)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, GroupStandings(shuffled, "A", TieBreakPolicy{HeadToHead: true}))
	}
}

// A beat B beat C beat A, all 1-0: points, head-to-head, goal difference and
// goals-for are all level, so the name fallback decides without regress.
func TestGroupStandingsCircularHeadToHead(t *testing.T) {
	results := []MatchResult{
		played("A", "Aston", "Burnley", 1, 0),
		played("A", "Burnley", "Chelsea", 1, 0),
		played("A", "Chelsea", "Aston", 1, 0),
	}

	table := GroupStandings(results, "A", TieBreakPolicy{HeadToHead: true})
	require.Len(t, table, 3)
	assert.Equal(t, []string{"Aston", "Burnley", "Chelsea"},
		[]string{table[0].Team, table[1].Team, table[2].Team})
	for _, row := range table {
		assert.Equal(t, 3, row.Points)
	}
}

// Three teams level on 3 points where head-to-head and goal difference
// disagree. Xerez beat Yeovil, Wigan beat Xerez, Yeovil only beat Zenit:
//
//	head-to-head among the tied three: Xerez 3, Wigan 3, Yeovil 0
//	goal difference:                   Yeovil +4, Wigan +2, Xerez -1
func TestGroupStandingsTieBreakPolicy(t *testing.T) {
	results := []MatchResult{
		played("A", "Xerez", "Yeovil", 1, 0),
		played("A", "Yeovil", "Zenit", 5, 0),
		played("A", "Wigan", "Xerez", 2, 0),
	}

	withH2H := GroupStandings(results, "A", TieBreakPolicy{HeadToHead: true})
	require.Len(t, withH2H, 4)
	assert.Equal(t, []string{"Wigan", "Xerez", "Yeovil", "Zenit"},
		[]string{withH2H[0].Team, withH2H[1].Team, withH2H[2].Team, withH2H[3].Team})

	withoutH2H := GroupStandings(results, "A", TieBreakPolicy{})
	require.Len(t, withoutH2H, 4)
	assert.Equal(t, []string{"Yeovil", "Wigan", "Xerez", "Zenit"},
		[]string{withoutH2H[0].Team, withoutH2H[1].Team, withoutH2H[2].Team, withoutH2H[3].Team})
}
