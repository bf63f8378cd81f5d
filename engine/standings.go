package engine

import (
	"sort"

	"github.com/quinipool/prediction-pool/models"
)

// TieBreakPolicy selects the tie-break cascade for a tournament's group
// tables. One competition in the pool ranks tied teams by their head-to-head
// mini-table first, another explicitly does not, so the choice is always an
// explicit parameter.
type TieBreakPolicy struct {
	HeadToHead bool
}

// MatchResult is the input the standings calculator works from: either an
// official fixture or one user's prediction projected onto that fixture.
// Nil goal counts mean the match is unplayed (or unpredicted) and
// contribute nothing, not even to the played count.
type MatchResult struct {
	Group     string
	HomeTeam  string
	AwayTeam  string
	HomeGoals *int
	AwayGoals *int
}

// Played reports whether both goal counts are known.
func (m MatchResult) Played() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// GroupStandings builds the ranked table of a group from a match set.
// Win = 3, draw = 1, loss = 0. Sorting is descending by points, then (when
// the policy enables it) head-to-head points among exactly the tied teams,
// then goal difference, goals for, and finally team name ascending so the
// output is deterministic. The result is invariant to input order.
func GroupStandings(results []MatchResult, group string, policy TieBreakPolicy) []models.StandingsRow {
	rows := map[string]*models.StandingsRow{}
	ensure := func(team string) *models.StandingsRow {
		if r, ok := rows[team]; ok {
			return r
		}
		r := &models.StandingsRow{Team: team}
		rows[team] = r
		return r
	}

	var groupResults []MatchResult
	for _, m := range results {
		if m.Group != group {
			continue
		}
		groupResults = append(groupResults, m)
		home, away := ensure(m.HomeTeam), ensure(m.AwayTeam)
		if !m.Played() {
			continue
		}
		accumulate(home, away, *m.HomeGoals, *m.AwayGoals)
	}

	table := make([]models.StandingsRow, 0, len(rows))
	for _, r := range rows {
		table = append(table, *r)
	}

	h2h := map[string]int{}
	if policy.HeadToHead {
		h2h = headToHeadPoints(table, groupResults)
	}

	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if policy.HeadToHead && h2h[a.Team] != h2h[b.Team] {
			return h2h[a.Team] > h2h[b.Team]
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
	return table
}

func accumulate(home, away *models.StandingsRow, homeGoals, awayGoals int) {
	home.Played++
	away.Played++
	home.GoalsFor += homeGoals
	home.GoalsAgainst += awayGoals
	away.GoalsFor += awayGoals
	away.GoalsAgainst += homeGoals
	home.GoalDifference = home.GoalsFor - home.GoalsAgainst
	away.GoalDifference = away.GoalsFor - away.GoalsAgainst

	switch {
	case homeGoals > awayGoals:
		home.Wins++
		home.Points += 3
		away.Losses++
	case homeGoals < awayGoals:
		away.Wins++
		away.Points += 3
		home.Losses++
	default:
		home.Draws++
		away.Draws++
		home.Points++
		away.Points++
	}
}

// headToHeadPoints computes, for every cluster of teams level on points, the
// points each earned in matches among exactly those teams. Teams outside a
// cluster keep 0; the comparator only consults the map for teams that are
// level, so values are never compared across clusters.
func headToHeadPoints(table []models.StandingsRow, results []MatchResult) map[string]int {
	clusters := map[int][]string{}
	for _, r := range table {
		clusters[r.Points] = append(clusters[r.Points], r.Team)
	}

	h2h := map[string]int{}
	for _, teams := range clusters {
		if len(teams) < 2 {
			continue
		}
		members := map[string]bool{}
		for _, t := range teams {
			members[t] = true
		}
		for _, m := range results {
			if !m.Played() || !members[m.HomeTeam] || !members[m.AwayTeam] {
				continue
			}
			switch {
			case *m.HomeGoals > *m.AwayGoals:
				h2h[m.HomeTeam] += 3
			case *m.HomeGoals < *m.AwayGoals:
				h2h[m.AwayTeam] += 3
			default:
				h2h[m.HomeTeam]++
				h2h[m.AwayTeam]++
			}
		}
	}
	return h2h
}
