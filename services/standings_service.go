package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quinipool/prediction-pool/engine"
	"github.com/quinipool/prediction-pool/models"
	"github.com/quinipool/prediction-pool/repositories"
)

// Perspective selects whose results a derived view is computed from: the
// official ones, or a single user's stored predictions projected onto the
// same fixture list.
type Perspective struct {
	UserID *uuid.UUID
}

func OfficialPerspective() Perspective {
	return Perspective{}
}

func UserPerspective(userID uuid.UUID) Perspective {
	return Perspective{UserID: &userID}
}

func (p Perspective) official() bool {
	return p.UserID == nil
}

type StandingsService interface {
	// ComputeGroupStandings returns the ranked group table as of a round,
	// from the official results or from one user's predictions. The
	// tournament's configured tie-break policy applies in both cases.
	ComputeGroupStandings(ctx context.Context, tournamentCode, group string, asOfRound int, perspective Perspective) ([]models.StandingsRow, error)

	// ResolveAdvancement resolves a knockout tie from the chosen
	// perspective. nil without an error means the tie is still pending.
	ResolveAdvancement(ctx context.Context, tieID string, perspective Perspective) (*string, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
	}
}

func (s *standingsService) ComputeGroupStandings(ctx context.Context, tournamentCode, group string, asOfRound int, perspective Perspective) ([]models.StandingsRow, error) {
	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByGroup(ctx, nil, tournament.ID, group, asOfRound)
	if err != nil {
		return nil, err
	}

	results, err := s.projectResults(ctx, matches, perspective)
	if err != nil {
		return nil, err
	}

	policy := engine.TieBreakPolicy{HeadToHead: tournament.HeadToHead}
	return engine.GroupStandings(results, group, policy), nil
}

// projectResults turns fixtures into standings input. Official perspective
// uses the stored results; a user perspective substitutes the user's
// predicted scorelines, leaving fixtures they did not predict unplayed.
func (s *standingsService) projectResults(ctx context.Context, matches []*models.Match, perspective Perspective) ([]engine.MatchResult, error) {
	predicted := map[int]*models.Prediction{}
	if !perspective.official() {
		ids := make([]int, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		predictions, err := s.predictionRepo.ListByUserAndMatchIDs(ctx, nil, *perspective.UserID, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range predictions {
			predicted[p.MatchID] = p
		}
	}

	results := make([]engine.MatchResult, 0, len(matches))
	for _, m := range matches {
		group := ""
		if m.GroupLabel != nil {
			group = *m.GroupLabel
		}
		result := engine.MatchResult{
			Group:    group,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
		}
		if perspective.official() {
			result.HomeGoals = m.HomeGoals
			result.AwayGoals = m.AwayGoals
		} else if p, ok := predicted[m.ID]; ok {
			home, away := p.HomeGoals, p.AwayGoals
			result.HomeGoals = &home
			result.AwayGoals = &away
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *standingsService) ResolveAdvancement(ctx context.Context, tieID string, perspective Perspective) (*string, error) {
	legs, err := s.matchRepo.ListByTie(ctx, nil, tieID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTieNotFound, tieID)
	}
	return resolveTie(ctx, legs, perspective, s.predictionRepo)
}

// resolveTie builds engine legs from the chosen perspective and resolves
// them. A fixture without a result (or without the user's prediction) makes
// the tie pending, not an error.
func resolveTie(ctx context.Context, legs []*models.Match, perspective Perspective, predictionRepo repositories.PredictionRepository) (*string, error) {
	engineLegs := make([]engine.Leg, 0, len(legs))

	if perspective.official() {
		for _, m := range legs {
			if !m.HasResult() {
				return nil, nil
			}
			engineLegs = append(engineLegs, engine.Leg{
				HomeTeam:  m.HomeTeam,
				AwayTeam:  m.AwayTeam,
				HomeGoals: *m.HomeGoals,
				AwayGoals: *m.AwayGoals,
				HomePens:  m.HomePens,
				AwayPens:  m.AwayPens,
			})
		}
	} else {
		ids := make([]int, 0, len(legs))
		for _, m := range legs {
			ids = append(ids, m.ID)
		}
		predictions, err := predictionRepo.ListByUserAndMatchIDs(ctx, nil, *perspective.UserID, ids)
		if err != nil {
			return nil, err
		}
		byMatch := map[int]*models.Prediction{}
		for _, p := range predictions {
			byMatch[p.MatchID] = p
		}
		for _, m := range legs {
			p, ok := byMatch[m.ID]
			if !ok {
				return nil, nil
			}
			engineLegs = append(engineLegs, engine.Leg{
				HomeTeam:  m.HomeTeam,
				AwayTeam:  m.AwayTeam,
				HomeGoals: p.HomeGoals,
				AwayGoals: p.AwayGoals,
				HomePens:  p.HomePens,
				AwayPens:  p.AwayPens,
			})
		}
	}

	switch len(engineLegs) {
	case 1:
		return engine.FinalWinner(engineLegs[0])
	case 2:
		return engine.AdvancingTeam(engineLegs[0], engineLegs[1])
	default:
		return nil, fmt.Errorf("tie has %d legs, expected 1 or 2", len(engineLegs))
	}
}
