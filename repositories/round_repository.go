package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	Get(ctx context.Context, exec SQLExecutor, tournamentID, number int) (*models.Round, error)
	// IsClosed treats a round with no row yet as open.
	IsClosed(ctx context.Context, exec SQLExecutor, tournamentID, number int) (bool, error)
	Close(ctx context.Context, exec SQLExecutor, tournamentID, number int) error
}

type postgresRoundRepository struct {
	db *sqlx.DB
}

func NewPostgresRoundRepository(db *sqlx.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, number int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, number, closed
		FROM rounds
		WHERE tournament_id = $1 AND number = $2`
	round := &models.Round{}
	err := sqlx.GetContext(ctx, executor, round, query, tournamentID, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d of tournament %d: %w", number, tournamentID, err)
	}
	return round, nil
}

func (r *postgresRoundRepository) IsClosed(ctx context.Context, exec SQLExecutor, tournamentID, number int) (bool, error) {
	round, err := r.Get(ctx, exec, tournamentID, number)
	if err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			return false, nil
		}
		return false, err
	}
	return round.Closed, nil
}

func (r *postgresRoundRepository) Close(ctx context.Context, exec SQLExecutor, tournamentID, number int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (tournament_id, number, closed)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (tournament_id, number) DO UPDATE SET closed = TRUE`
	if _, err := executor.ExecContext(ctx, query, tournamentID, number); err != nil {
		return fmt.Errorf("failed to close round %d of tournament %d: %w", number, tournamentID, err)
	}
	return nil
}
