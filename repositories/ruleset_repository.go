package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

var ErrPhaseRulesNotFound = errors.New("phase rules not found for round")

// RulesRepository stores the per-round rule-sets. Rule-sets are replaced
// wholesale per tournament whenever the rules file is reloaded.
type RulesRepository interface {
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rules []models.PhaseRules) error
	GetByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) (*models.PhaseRules, error)
	LastGroupRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresRulesRepository struct {
	db *sqlx.DB
}

func NewPostgresRulesRepository(db *sqlx.DB) RulesRepository {
	return &postgresRulesRepository{db: db}
}

func (r *postgresRulesRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRulesRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rules []models.PhaseRules) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM phase_rules WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to clear phase rules for tournament %d: %w", tournamentID, err)
	}
	query := `
		INSERT INTO phase_rules
			(tournament_id, round, phase, exact, difference, sign, advancement, champion, runner_up)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, rule := range rules {
		_, err := executor.ExecContext(ctx, query,
			tournamentID, rule.Round, rule.Phase, rule.Exact, rule.Difference,
			rule.Sign, rule.Advancement, rule.Champion, rule.RunnerUp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert phase rules for round %d: %w", rule.Round, err)
		}
	}
	return nil
}

func (r *postgresRulesRepository) GetByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) (*models.PhaseRules, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, round, phase, exact, difference, sign, advancement, champion, runner_up
		FROM phase_rules
		WHERE tournament_id = $1 AND round = $2`
	rules := &models.PhaseRules{}
	err := sqlx.GetContext(ctx, executor, rules, query, tournamentID, round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseRulesNotFound
		}
		return nil, fmt.Errorf("failed to get phase rules for tournament %d round %d: %w", tournamentID, round, err)
	}
	return rules, nil
}

func (r *postgresRulesRepository) LastGroupRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(MAX(round), 0)
		FROM phase_rules
		WHERE tournament_id = $1 AND phase = $2`
	var last int
	if err := sqlx.GetContext(ctx, executor, &last, query, tournamentID, models.PhaseGroup); err != nil {
		return 0, fmt.Errorf("failed to find last group round for tournament %d: %w", tournamentID, err)
	}
	return last, nil
}
