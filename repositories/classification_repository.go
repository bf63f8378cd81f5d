package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

// ClassificationRepository stores advancement-call records. They are a
// materialized view of a pure computation: every rescoring of a round
// deletes the round's records and reinserts the fresh set inside the same
// transaction.
type ClassificationRepository interface {
	DeleteByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) error
	BatchCreate(ctx context.Context, exec SQLExecutor, records []*models.ClassificationPoint) error
	ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.ClassificationPoint, error)
}

type postgresClassificationRepository struct {
	db *sqlx.DB
}

func NewPostgresClassificationRepository(db *sqlx.DB) ClassificationRepository {
	return &postgresClassificationRepository{db: db}
}

func (r *postgresClassificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClassificationRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM classification_points WHERE tournament_id = $1 AND round = $2`
	if _, err := executor.ExecContext(ctx, query, tournamentID, round); err != nil {
		return fmt.Errorf("failed to delete classification points for tournament %d round %d: %w", tournamentID, round, err)
	}
	return nil
}

func (r *postgresClassificationRepository) BatchCreate(ctx context.Context, exec SQLExecutor, records []*models.ClassificationPoint) error {
	if len(records) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO classification_points
			(user_id, tournament_id, slot, round, predicted_team, official_team, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, record := range records {
		_, err := executor.ExecContext(ctx, query,
			record.UserID, record.TournamentID, record.Slot, record.Round,
			record.PredictedTeam, record.OfficialTeam, record.Points,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// The round was not cleared before reinsertion.
				return fmt.Errorf("duplicate classification point for user %s slot %s round %d: %w", record.UserID, record.Slot, record.Round, err)
			}
			return fmt.Errorf("failed to insert classification point for user %s slot %s: %w", record.UserID, record.Slot, err)
		}
	}
	return nil
}

func (r *postgresClassificationRepository) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.ClassificationPoint, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_id, tournament_id, slot, round, predicted_team, official_team, points
		FROM classification_points
		WHERE tournament_id = $1 AND round = $2
		ORDER BY user_id, slot`
	records := make([]*models.ClassificationPoint, 0)
	if err := sqlx.SelectContext(ctx, executor, &records, query, tournamentID, round); err != nil {
		return nil, fmt.Errorf("failed to list classification points for tournament %d round %d: %w", tournamentID, round, err)
	}
	return records, nil
}
