package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/quinipool/prediction-pool/models"
)

// TournamentRules is one tournament's section of the rules file: its
// identity, its tie-break and qualification policy, and the phase
// definitions that expand into per-round rule-sets.
type TournamentRules struct {
	Code               string         `mapstructure:"code"`
	Name               string         `mapstructure:"name"`
	Kind               string         `mapstructure:"kind"`
	FinalRound         int            `mapstructure:"final_round"`
	QualifiersPerGroup int            `mapstructure:"qualifiers_per_group"`
	HeadToHead         bool           `mapstructure:"head_to_head"`
	Phases             []PhaseSection `mapstructure:"phases"`
}

// PhaseSection maps a contiguous range of rounds to one set of point values.
type PhaseSection struct {
	Phase       string `mapstructure:"phase"`
	FromRound   int    `mapstructure:"from_round"`
	ToRound     int    `mapstructure:"to_round"`
	Exact       int    `mapstructure:"exact"`
	Difference  int    `mapstructure:"difference"`
	Sign        int    `mapstructure:"sign"`
	Advancement int    `mapstructure:"advancement"`
	Champion    int    `mapstructure:"champion"`
	RunnerUp    int    `mapstructure:"runner_up"`
}

// LoadRules reads the rules file. Point values live in data, not code: the
// four tournaments differ in round-to-phase mapping and magnitudes, and a
// mid-season change must not require a redeploy.
func LoadRules(path string) ([]TournamentRules, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var tournaments []TournamentRules
	if err := v.UnmarshalKey("tournaments", &tournaments); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if len(tournaments) == 0 {
		return nil, fmt.Errorf("rules file %s defines no tournaments", path)
	}

	for _, t := range tournaments {
		if err := validateTournamentRules(t); err != nil {
			return nil, fmt.Errorf("rules file %s, tournament %q: %w", path, t.Code, err)
		}
	}
	return tournaments, nil
}

func validateTournamentRules(t TournamentRules) error {
	if t.Code == "" {
		return fmt.Errorf("tournament code is required")
	}
	if t.Kind != string(models.KindLeague) && t.Kind != string(models.KindCup) {
		return fmt.Errorf("kind must be %q or %q, got %q", models.KindLeague, models.KindCup, t.Kind)
	}
	if t.FinalRound < 1 {
		return fmt.Errorf("final_round must be positive")
	}
	if len(t.Phases) == 0 {
		return fmt.Errorf("at least one phase is required")
	}
	covered := map[int]bool{}
	for _, p := range t.Phases {
		if p.FromRound < 1 || p.ToRound < p.FromRound {
			return fmt.Errorf("phase %q has an invalid round range %d..%d", p.Phase, p.FromRound, p.ToRound)
		}
		for r := p.FromRound; r <= p.ToRound; r++ {
			if covered[r] {
				return fmt.Errorf("round %d is covered by more than one phase", r)
			}
			covered[r] = true
		}
	}
	return nil
}

// Expand flattens the phase sections into one PhaseRules row per round,
// ready to be stored.
func (t TournamentRules) Expand(tournamentID int) []models.PhaseRules {
	var rules []models.PhaseRules
	for _, p := range t.Phases {
		for round := p.FromRound; round <= p.ToRound; round++ {
			rules = append(rules, models.PhaseRules{
				TournamentID: tournamentID,
				Round:        round,
				Phase:        p.Phase,
				Exact:        p.Exact,
				Difference:   p.Difference,
				Sign:         p.Sign,
				Advancement:  p.Advancement,
				Champion:     p.Champion,
				RunnerUp:     p.RunnerUp,
			})
		}
	}
	return rules
}

// Tournament converts the section header into the stored tournament row.
func (t TournamentRules) Tournament() models.Tournament {
	return models.Tournament{
		Code:               t.Code,
		Name:               t.Name,
		Kind:               models.TournamentKind(t.Kind),
		FinalRound:         t.FinalRound,
		QualifiersPerGroup: t.QualifiersPerGroup,
		HeadToHead:         t.HeadToHead,
	}
}

// LastGroupRound returns the highest round mapped to the group phase, or 0
// when the tournament has none. Group-qualification classification runs on
// that round only.
func (t TournamentRules) LastGroupRound() int {
	last := 0
	for _, p := range t.Phases {
		if p.Phase == models.PhaseGroup && p.ToRound > last {
			last = p.ToRound
		}
	}
	return last
}
