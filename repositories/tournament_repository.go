package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sqlx.DB
}

func NewPostgresTournamentRepository(db *sqlx.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Upsert(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (code, name, kind, final_round, qualifiers_per_group, head_to_head)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			final_round = EXCLUDED.final_round,
			qualifiers_per_group = EXCLUDED.qualifiers_per_group,
			head_to_head = EXCLUDED.head_to_head
		RETURNING id`
	err := executor.QueryRowxContext(ctx, query,
		tournament.Code, tournament.Name, tournament.Kind,
		tournament.FinalRound, tournament.QualifiersPerGroup, tournament.HeadToHead,
	).Scan(&tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament %s: %w", tournament.Code, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, code, name, kind, final_round, qualifiers_per_group, head_to_head
		FROM tournaments
		WHERE code = $1`
	tournament := &models.Tournament{}
	err := sqlx.GetContext(ctx, executor, tournament, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", code, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, code, name, kind, final_round, qualifiers_per_group, head_to_head
		FROM tournaments
		ORDER BY id`
	tournaments := make([]*models.Tournament, 0)
	if err := sqlx.SelectContext(ctx, executor, &tournaments, query); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}
