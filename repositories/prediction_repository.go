package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

const predictionColumns = `
	id, user_id, match_id, home_goals, away_goals, home_pens, away_pens, points`

type PredictionRepository interface {
	// Upsert inserts or replaces the user's prediction for a match and
	// resets any previously computed points.
	Upsert(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error
	ListByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) ([]*models.Prediction, error)
	ListByUserAndMatchIDs(ctx context.Context, exec SQLExecutor, userID uuid.UUID, matchIDs []int) ([]*models.Prediction, error)
	UpdatePoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, points int) error
}

type postgresPredictionRepository struct {
	db *sqlx.DB
}

func NewPostgresPredictionRepository(db *sqlx.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPredictionRepository) Upsert(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error {
	executor := r.getExecutor(exec)
	if prediction.ID == uuid.Nil {
		prediction.ID = uuid.New()
	}
	query := `
		INSERT INTO predictions
			(id, user_id, match_id, home_goals, away_goals, home_pens, away_pens, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
			home_goals = EXCLUDED.home_goals,
			away_goals = EXCLUDED.away_goals,
			home_pens = EXCLUDED.home_pens,
			away_pens = EXCLUDED.away_pens,
			points = NULL
		RETURNING id`
	err := executor.QueryRowxContext(ctx, query,
		prediction.ID, prediction.UserID, prediction.MatchID,
		prediction.HomeGoals, prediction.AwayGoals, prediction.HomePens, prediction.AwayPens,
	).Scan(&prediction.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction for user %s match %d: %w", prediction.UserID, prediction.MatchID, err)
	}
	prediction.Points = nil
	return nil
}

func (r *postgresPredictionRepository) ListByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) ([]*models.Prediction, error) {
	if len(matchIDs) == 0 {
		return []*models.Prediction{}, nil
	}
	executor := r.getExecutor(exec)
	query, args, err := sqlx.In(`
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE match_id IN (?)
		ORDER BY user_id, match_id`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction query: %w", err)
	}
	query = executor.Rebind(query)
	predictions := make([]*models.Prediction, 0)
	if err := sqlx.SelectContext(ctx, executor, &predictions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list predictions for %d matches: %w", len(matchIDs), err)
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) ListByUserAndMatchIDs(ctx context.Context, exec SQLExecutor, userID uuid.UUID, matchIDs []int) ([]*models.Prediction, error) {
	if len(matchIDs) == 0 {
		return []*models.Prediction{}, nil
	}
	executor := r.getExecutor(exec)
	query, args, err := sqlx.In(`
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = ? AND match_id IN (?)
		ORDER BY match_id`, userID, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction query: %w", err)
	}
	query = executor.Rebind(query)
	predictions := make([]*models.Prediction, 0)
	if err := sqlx.SelectContext(ctx, executor, &predictions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %s: %w", userID, err)
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, points int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE predictions SET points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("failed to update points of prediction %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}
