package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quinipool/prediction-pool/models"
	"github.com/quinipool/prediction-pool/repositories"
)

// PredictionService validates and stores user picks. Writes are gated on
// round state only; nothing here computes points.
type PredictionService interface {
	// SubmitPrediction inserts or replaces the user's predicted score for a
	// match. Resubmitting after the round is closed fails with
	// ErrRoundClosed.
	SubmitPrediction(ctx context.Context, prediction *models.Prediction) error

	// SubmitChampionPrediction stores the user's champion / runner-up pick
	// for a cup. The pick locks together with round 1: once the opening
	// round is closed it can no longer change.
	SubmitChampionPrediction(ctx context.Context, userID uuid.UUID, tournamentCode, champion, runnerUp string) error
}

type predictionService struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	championRepo   repositories.ChampionRepository
	logger         *slog.Logger
}

func NewPredictionService(
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	championRepo repositories.ChampionRepository,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		championRepo:   championRepo,
		logger:         logger,
	}
}

func (s *predictionService) SubmitPrediction(ctx context.Context, prediction *models.Prediction) error {
	if prediction.HomeGoals < 0 || prediction.AwayGoals < 0 {
		return ErrInvalidScoreline
	}
	if (prediction.HomePens != nil) != (prediction.AwayPens != nil) {
		return fmt.Errorf("%w: penalty counts must come in pairs", ErrInvalidScoreline)
	}
	if prediction.HomePens != nil && (*prediction.HomePens < 0 || *prediction.AwayPens < 0) {
		return ErrInvalidScoreline
	}

	match, err := s.matchRepo.GetByID(ctx, nil, prediction.MatchID)
	if err != nil {
		return err
	}
	closed, err := s.roundRepo.IsClosed(ctx, nil, match.TournamentID, match.Round)
	if err != nil {
		return err
	}
	if closed {
		return fmt.Errorf("%w: round %d", ErrRoundClosed, match.Round)
	}

	if err := s.predictionRepo.Upsert(ctx, nil, prediction); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "prediction stored",
		slog.String("user", prediction.UserID.String()),
		slog.Int("match", prediction.MatchID),
	)
	return nil
}

func (s *predictionService) SubmitChampionPrediction(ctx context.Context, userID uuid.UUID, tournamentCode, champion, runnerUp string) error {
	if champion == "" || runnerUp == "" || champion == runnerUp {
		return ErrInvalidFinalistPair
	}

	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return err
	}
	if tournament.Kind != models.KindCup {
		return fmt.Errorf("%w: %s has no champion market", ErrInvalidFinalistPair, tournamentCode)
	}

	closed, err := s.roundRepo.IsClosed(ctx, nil, tournament.ID, 1)
	if err != nil {
		return err
	}
	if closed {
		return fmt.Errorf("%w: champion picks lock with round 1", ErrRoundClosed)
	}

	pick := &models.ChampionPrediction{
		UserID:       userID,
		TournamentID: tournament.ID,
		Champion:     champion,
		RunnerUp:     runnerUp,
	}
	if err := s.championRepo.Upsert(ctx, nil, pick); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "champion pick stored",
		slog.String("user", userID.String()),
		slog.String("tournament", tournamentCode),
	)
	return nil
}
