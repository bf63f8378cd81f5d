package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = `
	id, tournament_id, round, group_label, tie_id, leg, home_team, away_team,
	home_goals, away_goals, home_pens, away_pens, multiplier, virtual`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.Match, error)
	// ListByGroup returns every fixture of a group up to and including
	// maxRound, played or not.
	ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group string, maxRound int) ([]*models.Match, error)
	ListByTie(ctx context.Context, exec SQLExecutor, tieID string) ([]*models.Match, error)
	// UpdateResult enters or corrects the official result. Passing nil
	// penalty counts clears them.
	UpdateResult(ctx context.Context, exec SQLExecutor, id, homeGoals, awayGoals int, homePens, awayPens *int) error
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, round, group_label, tie_id, leg, home_team, away_team,
			 home_goals, away_goals, home_pens, away_pens, multiplier, virtual)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := executor.QueryRowxContext(ctx, query,
		match.TournamentID, match.Round, match.GroupLabel, match.TieID, match.Leg,
		match.HomeTeam, match.AwayTeam, match.HomeGoals, match.AwayGoals,
		match.HomePens, match.AwayPens, match.Multiplier, match.Virtual,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to create match %s vs %s: %w", match.HomeTeam, match.AwayTeam, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match := &models.Match{}
	err := sqlx.GetContext(ctx, executor, match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND round = $2
		ORDER BY id`
	matches := make([]*models.Match, 0)
	if err := sqlx.SelectContext(ctx, executor, &matches, query, tournamentID, round); err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d round %d: %w", tournamentID, round, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group string, maxRound int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND group_label = $2 AND round <= $3
		ORDER BY round, id`
	matches := make([]*models.Match, 0)
	if err := sqlx.SelectContext(ctx, executor, &matches, query, tournamentID, group, maxRound); err != nil {
		return nil, fmt.Errorf("failed to list group %s matches for tournament %d: %w", group, tournamentID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListByTie(ctx context.Context, exec SQLExecutor, tieID string) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tie_id = $1
		ORDER BY leg`
	matches := make([]*models.Match, 0)
	if err := sqlx.SelectContext(ctx, executor, &matches, query, tieID); err != nil {
		return nil, fmt.Errorf("failed to list legs of tie %s: %w", tieID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id, homeGoals, awayGoals int, homePens, awayPens *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET home_goals = $1, away_goals = $2, home_pens = $3, away_pens = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, homeGoals, awayGoals, homePens, awayPens, id)
	if err != nil {
		return fmt.Errorf("failed to update result of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
