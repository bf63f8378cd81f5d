package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quinipool/prediction-pool/models"
)

// RankingRepository aggregates persisted point sources into per-user totals
// and owns the two derived record sets (round winners, podium snapshot).
// Both sets are rebuilt wholesale, never patched.
type RankingRepository interface {
	SumMatchPointsByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]models.UserScore, error)
	SumClassificationByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]models.UserScore, error)
	SumChampionPoints(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.UserScore, error)
	// CumulativeTotals sums every point source across the tournament's
	// whole history, per user, highest first.
	CumulativeTotals(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.UserScore, error)
	ReplaceRoundWinners(ctx context.Context, exec SQLExecutor, tournamentID, round int, winners []models.UserScore) error
	GetRoundWinners(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.RoundWinner, error)
	ReplacePodium(ctx context.Context, exec SQLExecutor, tournamentID int, entries []models.PodiumEntry) error
	GetPodium(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.PodiumEntry, error)
}

type postgresRankingRepository struct {
	db *sqlx.DB
}

func NewPostgresRankingRepository(db *sqlx.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) SumMatchPointsByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]models.UserScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.user_id, SUM(p.points) AS points
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE m.tournament_id = $1 AND m.round = $2 AND p.points IS NOT NULL
		GROUP BY p.user_id
		ORDER BY points DESC, p.user_id`
	scores := make([]models.UserScore, 0)
	if err := sqlx.SelectContext(ctx, executor, &scores, query, tournamentID, round); err != nil {
		return nil, fmt.Errorf("failed to sum match points for tournament %d round %d: %w", tournamentID, round, err)
	}
	return scores, nil
}

func (r *postgresRankingRepository) SumClassificationByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]models.UserScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_id, SUM(points) AS points
		FROM classification_points
		WHERE tournament_id = $1 AND round = $2
		GROUP BY user_id
		ORDER BY points DESC, user_id`
	scores := make([]models.UserScore, 0)
	if err := sqlx.SelectContext(ctx, executor, &scores, query, tournamentID, round); err != nil {
		return nil, fmt.Errorf("failed to sum classification points for tournament %d round %d: %w", tournamentID, round, err)
	}
	return scores, nil
}

func (r *postgresRankingRepository) SumChampionPoints(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.UserScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_id, COALESCE(champion_points, 0) + COALESCE(runner_up_points, 0) AS points
		FROM champion_predictions
		WHERE tournament_id = $1
		  AND (champion_points IS NOT NULL OR runner_up_points IS NOT NULL)
		ORDER BY points DESC, user_id`
	scores := make([]models.UserScore, 0)
	if err := sqlx.SelectContext(ctx, executor, &scores, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to sum champion points for tournament %d: %w", tournamentID, err)
	}
	return scores, nil
}

func (r *postgresRankingRepository) CumulativeTotals(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.UserScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_id, SUM(points) AS points
		FROM (
			SELECT p.user_id, p.points
			FROM predictions p
			JOIN matches m ON m.id = p.match_id
			WHERE m.tournament_id = $1 AND p.points IS NOT NULL
			UNION ALL
			SELECT user_id, points
			FROM classification_points
			WHERE tournament_id = $1
			UNION ALL
			SELECT user_id, COALESCE(champion_points, 0) + COALESCE(runner_up_points, 0)
			FROM champion_predictions
			WHERE tournament_id = $1
			  AND (champion_points IS NOT NULL OR runner_up_points IS NOT NULL)
		) AS sources
		GROUP BY user_id
		ORDER BY points DESC, user_id`
	scores := make([]models.UserScore, 0)
	if err := sqlx.SelectContext(ctx, executor, &scores, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to compute cumulative totals for tournament %d: %w", tournamentID, err)
	}
	return scores, nil
}

func (r *postgresRankingRepository) ReplaceRoundWinners(ctx context.Context, exec SQLExecutor, tournamentID, round int, winners []models.UserScore) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM round_winners WHERE tournament_id = $1 AND round = $2`, tournamentID, round); err != nil {
		return fmt.Errorf("failed to delete round winners for tournament %d round %d: %w", tournamentID, round, err)
	}
	query := `
		INSERT INTO round_winners (tournament_id, round, user_id, points)
		VALUES ($1, $2, $3, $4)`
	for _, winner := range winners {
		if _, err := executor.ExecContext(ctx, query, tournamentID, round, winner.UserID, winner.Points); err != nil {
			return fmt.Errorf("failed to insert round winner %s: %w", winner.UserID, err)
		}
	}
	return nil
}

func (r *postgresRankingRepository) GetRoundWinners(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.RoundWinner, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, round, user_id, points
		FROM round_winners
		WHERE tournament_id = $1 AND round = $2
		ORDER BY user_id`
	winners := make([]*models.RoundWinner, 0)
	if err := sqlx.SelectContext(ctx, executor, &winners, query, tournamentID, round); err != nil {
		return nil, fmt.Errorf("failed to get round winners for tournament %d round %d: %w", tournamentID, round, err)
	}
	return winners, nil
}

func (r *postgresRankingRepository) ReplacePodium(ctx context.Context, exec SQLExecutor, tournamentID int, entries []models.PodiumEntry) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM podium_snapshots WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete podium snapshot for tournament %d: %w", tournamentID, err)
	}
	query := `
		INSERT INTO podium_snapshots (tournament_id, position, user_id, points, captured_at)
		VALUES ($1, $2, $3, $4, $5)`
	for _, entry := range entries {
		capturedAt := entry.CapturedAt
		if capturedAt.IsZero() {
			capturedAt = time.Now()
		}
		if _, err := executor.ExecContext(ctx, query, tournamentID, entry.Position, entry.UserID, entry.Points, capturedAt); err != nil {
			return fmt.Errorf("failed to insert podium position %d: %w", entry.Position, err)
		}
	}
	return nil
}

func (r *postgresRankingRepository) GetPodium(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.PodiumEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, position, user_id, points, captured_at
		FROM podium_snapshots
		WHERE tournament_id = $1
		ORDER BY position`
	entries := make([]*models.PodiumEntry, 0)
	if err := sqlx.SelectContext(ctx, executor, &entries, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to get podium snapshot for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}
