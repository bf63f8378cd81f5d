package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrChampionPredictionNotFound = errors.New("champion prediction not found")

type ChampionRepository interface {
	// Upsert replaces the user's champion/runner-up pick and resets any
	// previously awarded points.
	Upsert(ctx context.Context, exec SQLExecutor, prediction *models.ChampionPrediction) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.ChampionPrediction, error)
	UpdatePoints(ctx context.Context, exec SQLExecutor, userID uuid.UUID, tournamentID, championPts, runnerUpPts int) error
}

type postgresChampionRepository struct {
	db *sqlx.DB
}

func NewPostgresChampionRepository(db *sqlx.DB) ChampionRepository {
	return &postgresChampionRepository{db: db}
}

func (r *postgresChampionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresChampionRepository) Upsert(ctx context.Context, exec SQLExecutor, prediction *models.ChampionPrediction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO champion_predictions
			(user_id, tournament_id, champion, runner_up, champion_points, runner_up_points)
		VALUES ($1, $2, $3, $4, NULL, NULL)
		ON CONFLICT (user_id, tournament_id) DO UPDATE SET
			champion = EXCLUDED.champion,
			runner_up = EXCLUDED.runner_up,
			champion_points = NULL,
			runner_up_points = NULL`
	_, err := executor.ExecContext(ctx, query,
		prediction.UserID, prediction.TournamentID, prediction.Champion, prediction.RunnerUp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert champion prediction of user %s: %w", prediction.UserID, err)
	}
	prediction.ChampionPoints = nil
	prediction.RunnerUpPoints = nil
	return nil
}

func (r *postgresChampionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.ChampionPrediction, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_id, tournament_id, champion, runner_up, champion_points, runner_up_points
		FROM champion_predictions
		WHERE tournament_id = $1
		ORDER BY user_id`
	predictions := make([]*models.ChampionPrediction, 0)
	if err := sqlx.SelectContext(ctx, executor, &predictions, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list champion predictions for tournament %d: %w", tournamentID, err)
	}
	return predictions, nil
}

func (r *postgresChampionRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, userID uuid.UUID, tournamentID, championPts, runnerUpPts int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE champion_predictions
		SET champion_points = $1, runner_up_points = $2
		WHERE user_id = $3 AND tournament_id = $4`
	result, err := executor.ExecContext(ctx, query, championPts, runnerUpPts, userID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update champion points of user %s: %w", userID, err)
	}
	return checkAffectedRows(result, ErrChampionPredictionNotFound)
}
