package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
tournaments:
  - code: liga
    name: Liga Nacional
    kind: league
    final_round: 18
    head_to_head: false
    phases:
      - phase: regular
        from_round: 1
        to_round: 18
        exact: 5
        difference: 3
        sign: 1
  - code: copa
    name: Copa Continental
    kind: cup
    final_round: 7
    qualifiers_per_group: 2
    head_to_head: true
    phases:
      - phase: group
        from_round: 1
        to_round: 3
        exact: 5
        difference: 3
        sign: 1
        advancement: 2
      - phase: quarterfinal
        from_round: 4
        to_round: 5
        exact: 6
        difference: 4
        sign: 2
        advancement: 3
      - phase: semifinal
        from_round: 6
        to_round: 6
        exact: 6
        difference: 4
        sign: 2
        advancement: 3
      - phase: final
        from_round: 7
        to_round: 7
        exact: 8
        difference: 5
        sign: 2
        champion: 10
        runner_up: 5
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	tournaments, err := LoadRules(writeRules(t, sampleRules))
	require.NoError(t, err)
	require.Len(t, tournaments, 2)

	liga := tournaments[0]
	assert.Equal(t, "liga", liga.Code)
	assert.False(t, liga.HeadToHead)
	assert.Equal(t, 0, liga.LastGroupRound())

	copa := tournaments[1]
	assert.Equal(t, "copa", copa.Code)
	assert.True(t, copa.HeadToHead)
	assert.Equal(t, 2, copa.QualifiersPerGroup)
	assert.Equal(t, 3, copa.LastGroupRound())

	rules := copa.Expand(42)
	require.Len(t, rules, 7)
	assert.Equal(t, 42, rules[0].TournamentID)
	assert.Equal(t, "group", rules[0].Phase)
	assert.Equal(t, 2, rules[0].Advancement)

	final := rules[len(rules)-1]
	assert.Equal(t, 7, final.Round)
	assert.Equal(t, "final", final.Phase)
	assert.Equal(t, 10, final.Champion)
	assert.Equal(t, 5, final.RunnerUp)
}

func TestLoadRulesOverlappingPhases(t *testing.T) {
	_, err := LoadRules(writeRules(t, `
tournaments:
  - code: copa
    name: Copa
    kind: cup
    final_round: 4
    phases:
      - phase: group
        from_round: 1
        to_round: 3
        exact: 5
      - phase: final
        from_round: 3
        to_round: 4
        exact: 8
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one phase")
}

func TestLoadRulesBadKind(t *testing.T) {
	_, err := LoadRules(writeRules(t, `
tournaments:
  - code: copa
    name: Copa
    kind: friendly
    final_round: 4
    phases:
      - phase: final
        from_round: 1
        to_round: 4
        exact: 8
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
