package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/quinipool/prediction-pool/engine"
	"github.com/quinipool/prediction-pool/models"
	"github.com/quinipool/prediction-pool/repositories"
)

// ScoreRoundResult summarizes one scoring run.
type ScoreRoundResult struct {
	MatchesScored               int                `json:"matches_scored"`
	PointsAwarded               int                `json:"points_awarded"`
	ClassificationPointsAwarded int                `json:"classification_points_awarded"`
	Winners                     []models.UserScore `json:"winners"`
}

// ScoringService is the ranking aggregator: the only component with side
// effects. Each operation is a bounded batch over one round's data, applied
// in a single transaction so a concurrent reader never observes a partially
// scored round.
type ScoringService interface {
	ScoreRound(ctx context.Context, tournamentCode string, round int) (*ScoreRoundResult, error)
	ScoreChampionPredictions(ctx context.Context, tournamentCode, officialChampion, officialRunnerUp string) (int, error)
	ComputeRoundWinners(ctx context.Context, tournamentCode string, round int) ([]models.UserScore, error)
	ComputeCumulativePodium(ctx context.Context, tournamentCode string, topN int) ([]models.PodiumEntry, error)
	CloseRound(ctx context.Context, tournamentCode string, round int) error
}

type scoringService struct {
	db                 *sqlx.DB
	tournamentRepo     repositories.TournamentRepository
	rulesRepo          repositories.RulesRepository
	roundRepo          repositories.RoundRepository
	matchRepo          repositories.MatchRepository
	predictionRepo     repositories.PredictionRepository
	classificationRepo repositories.ClassificationRepository
	championRepo       repositories.ChampionRepository
	rankingRepo        repositories.RankingRepository
	logger             *slog.Logger

	// One binary semaphore per (tournament, round): a second scoring
	// request for the same round is rejected, not queued. Different
	// rounds score independently.
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func NewScoringService(
	db *sqlx.DB,
	tournamentRepo repositories.TournamentRepository,
	rulesRepo repositories.RulesRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	classificationRepo repositories.ClassificationRepository,
	championRepo repositories.ChampionRepository,
	rankingRepo repositories.RankingRepository,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		db:                 db,
		tournamentRepo:     tournamentRepo,
		rulesRepo:          rulesRepo,
		roundRepo:          roundRepo,
		matchRepo:          matchRepo,
		predictionRepo:     predictionRepo,
		classificationRepo: classificationRepo,
		championRepo:       championRepo,
		rankingRepo:        rankingRepo,
		logger:             logger,
		locks:              map[string]*semaphore.Weighted{},
	}
}

func (s *scoringService) roundLock(tournamentCode string, round int) *semaphore.Weighted {
	key := fmt.Sprintf("%s#%d", tournamentCode, round)
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[key] = sem
	}
	return sem
}

type pointsUpdate struct {
	predictionID uuid.UUID
	points       int
}

func (s *scoringService) ScoreRound(ctx context.Context, tournamentCode string, round int) (*ScoreRoundResult, error) {
	lock := s.roundLock(tournamentCode, round)
	if !lock.TryAcquire(1) {
		return nil, fmt.Errorf("%w: %s round %d", ErrScoringInProgress, tournamentCode, round)
	}
	defer lock.Release(1)

	started := time.Now()

	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return nil, err
	}
	rules, err := s.rulesRepo.GetByRound(ctx, nil, tournament.ID, round)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByRound(ctx, nil, tournament.ID, round)
	if err != nil {
		return nil, err
	}
	playable := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.HasResult() {
			playable = append(playable, m)
		}
	}
	if len(playable) == 0 {
		return nil, fmt.Errorf("%w: no results entered for %s round %d", ErrNothingToScore, tournamentCode, round)
	}

	matchIDs := make([]int, 0, len(playable))
	for _, m := range playable {
		matchIDs = append(matchIDs, m.ID)
	}
	predictions, err := s.predictionRepo.ListByMatchIDs(ctx, nil, matchIDs)
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: no predictions stored for %s round %d", ErrNothingToScore, tournamentCode, round)
	}

	championPairs, err := s.championPairs(ctx, tournament, playable)
	if err != nil {
		return nil, err
	}

	updates, pointsAwarded, err := s.computeMatchPoints(ctx, playable, predictions, *rules, championPairs)
	if err != nil {
		return nil, err
	}

	var classification []*models.ClassificationPoint
	if rules.Advancement > 0 {
		classification, err = s.computeClassification(ctx, tournament, *rules, round, matches)
		if err != nil {
			return nil, err
		}
	}

	// Everything above is pure computation over loaded data; all writes
	// happen in one transaction below.
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin scoring transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, update := range updates {
		if err := s.predictionRepo.UpdatePoints(ctx, tx, update.predictionID, update.points); err != nil {
			return nil, err
		}
	}

	classificationAwarded := 0
	if rules.Advancement > 0 {
		if err := s.classificationRepo.DeleteByRound(ctx, tx, tournament.ID, round); err != nil {
			return nil, err
		}
		if err := s.classificationRepo.BatchCreate(ctx, tx, classification); err != nil {
			return nil, err
		}
		for _, record := range classification {
			classificationAwarded += record.Points
		}
	}

	totals, err := s.roundTotals(ctx, tx, tournament, round)
	if err != nil {
		return nil, err
	}
	winners := winnersFromTotals(totals)
	if err := s.rankingRepo.ReplaceRoundWinners(ctx, tx, tournament.ID, round, winners); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scoring transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "round scored",
		slog.String("tournament", tournamentCode),
		slog.Int("round", round),
		slog.Int("matches", len(playable)),
		slog.Int("predictions", len(updates)),
		slog.Int("winners", len(winners)),
		slog.Duration("elapsed", time.Since(started)),
	)

	return &ScoreRoundResult{
		MatchesScored:               len(playable),
		PointsAwarded:               pointsAwarded,
		ClassificationPointsAwarded: classificationAwarded,
		Winners:                     winners,
	}, nil
}

// championPairs loads each user's champion/runner-up pick when the round
// contains a virtual final. The pick doubles as the user's predicted
// finalist pair: match-result points for a virtual final are only awarded
// when that pair equals the official pairing.
func (s *scoringService) championPairs(ctx context.Context, tournament *models.Tournament, playable []*models.Match) (map[uuid.UUID]engine.FinalistPair, error) {
	hasVirtual := false
	for _, m := range playable {
		if m.Virtual {
			hasVirtual = true
			break
		}
	}
	if !hasVirtual {
		return nil, nil
	}

	picks, err := s.championRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	pairs := make(map[uuid.UUID]engine.FinalistPair, len(picks))
	for _, pick := range picks {
		pairs[pick.UserID] = engine.FinalistPair{Champion: pick.Champion, RunnerUp: pick.RunnerUp}
	}
	return pairs, nil
}

// computeMatchPoints runs the scoring engine over every prediction. The
// engine is pure and stateless, so predictions are scored concurrently,
// one goroutine per user.
func (s *scoringService) computeMatchPoints(
	ctx context.Context,
	playable []*models.Match,
	predictions []*models.Prediction,
	rules models.PhaseRules,
	championPairs map[uuid.UUID]engine.FinalistPair,
) ([]pointsUpdate, int, error) {
	matchByID := make(map[int]*models.Match, len(playable))
	for _, m := range playable {
		matchByID[m.ID] = m
	}

	byUser := map[uuid.UUID][]*models.Prediction{}
	for _, p := range predictions {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	userIDs := make([]uuid.UUID, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}

	results := make([][]pointsUpdate, len(userIDs))
	g, _ := errgroup.WithContext(ctx)
	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			userUpdates := make([]pointsUpdate, 0, len(byUser[userID]))
			for _, p := range byUser[userID] {
				match, ok := matchByID[p.MatchID]
				if !ok {
					continue
				}

				if match.Virtual {
					pair, picked := championPairs[p.UserID]
					if !picked || !engine.SamePair(pair.Champion, pair.RunnerUp, match.HomeTeam, match.AwayTeam) {
						// Wrong (or missing) finalist pair: the predicted
						// score is irrelevant and scores zero.
						userUpdates = append(userUpdates, pointsUpdate{predictionID: p.ID, points: 0})
						continue
					}
				}

				actual := engine.Scoreline{Home: *match.HomeGoals, Away: *match.AwayGoals}
				points, err := engine.MatchPoints(
					engine.Scoreline{Home: p.HomeGoals, Away: p.AwayGoals},
					&actual,
					rules,
					match.Multiplier,
				)
				if err != nil {
					return fmt.Errorf("failed to score prediction %s: %w", p.ID, err)
				}
				userUpdates = append(userUpdates, pointsUpdate{predictionID: p.ID, points: points})
			}
			results[i] = userUpdates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var updates []pointsUpdate
	total := 0
	for _, userUpdates := range results {
		for _, u := range userUpdates {
			updates = append(updates, u)
			total += u.points
		}
	}
	return updates, total, nil
}

// computeClassification builds the round's advancement-call records:
// knockout ties deciding in this round, and group-qualification slots when
// this is the tournament's last group round. Undetermined outcomes are
// withheld entirely; a guessed advancer is never persisted.
func (s *scoringService) computeClassification(
	ctx context.Context,
	tournament *models.Tournament,
	rules models.PhaseRules,
	round int,
	matches []*models.Match,
) ([]*models.ClassificationPoint, error) {
	var records []*models.ClassificationPoint

	tieRecords, err := s.classifyTies(ctx, tournament, rules, round, matches)
	if err != nil {
		return nil, err
	}
	records = append(records, tieRecords...)

	lastGroupRound, err := s.rulesRepo.LastGroupRound(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}
	if tournament.QualifiersPerGroup > 0 && round == lastGroupRound {
		groupRecords, err := s.classifyGroupQualifiers(ctx, tournament, rules, round, matches)
		if err != nil {
			return nil, err
		}
		records = append(records, groupRecords...)
	}

	return records, nil
}

func (s *scoringService) classifyTies(
	ctx context.Context,
	tournament *models.Tournament,
	rules models.PhaseRules,
	round int,
	matches []*models.Match,
) ([]*models.ClassificationPoint, error) {
	tieIDs := make([]string, 0)
	seen := map[string]bool{}
	for _, m := range matches {
		if m.TieID == nil || m.Virtual || seen[*m.TieID] {
			continue
		}
		seen[*m.TieID] = true
		tieIDs = append(tieIDs, *m.TieID)
	}
	sort.Strings(tieIDs)

	var records []*models.ClassificationPoint
	for _, tieID := range tieIDs {
		legs, err := s.matchRepo.ListByTie(ctx, nil, tieID)
		if err != nil {
			return nil, err
		}
		official, err := officialAdvancer(legs)
		if err != nil {
			return nil, fmt.Errorf("tie %s: %w", tieID, err)
		}
		if official == nil {
			// Pending tie: withhold the records rather than persisting a
			// guessed advancer or a premature zero.
			s.logger.DebugContext(ctx, "tie undetermined, records withheld", slog.String("tie", tieID))
			continue
		}

		legIDs := make([]int, 0, len(legs))
		for _, leg := range legs {
			legIDs = append(legIDs, leg.ID)
		}
		predictions, err := s.predictionRepo.ListByMatchIDs(ctx, nil, legIDs)
		if err != nil {
			return nil, err
		}
		byUser := map[uuid.UUID]map[int]*models.Prediction{}
		for _, p := range predictions {
			if byUser[p.UserID] == nil {
				byUser[p.UserID] = map[int]*models.Prediction{}
			}
			byUser[p.UserID][p.MatchID] = p
		}

		userIDs := make([]uuid.UUID, 0, len(byUser))
		for id := range byUser {
			userIDs = append(userIDs, id)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i].String() < userIDs[j].String() })

		for _, userID := range userIDs {
			predicted, err := predictedAdvancer(legs, byUser[userID])
			if err != nil {
				return nil, fmt.Errorf("tie %s, user %s: %w", tieID, userID, err)
			}
			if predicted == nil {
				// The user's own prediction does not pick a side.
				continue
			}
			points := 0
			if *predicted == *official {
				points = rules.Advancement
			}
			records = append(records, &models.ClassificationPoint{
				UserID:        userID,
				TournamentID:  tournament.ID,
				Slot:          tieID,
				Round:         round,
				PredictedTeam: *predicted,
				OfficialTeam:  official,
				Points:        points,
			})
		}
	}
	return records, nil
}

func officialAdvancer(legs []*models.Match) (*string, error) {
	engineLegs := make([]engine.Leg, 0, len(legs))
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
	return resolveLegs(engineLegs)
}

// predictedAdvancer reruns the resolver over the user's own two
// predictions, never mixing in official data.
func predictedAdvancer(legs []*models.Match, predictions map[int]*models.Prediction) (*string, error) {
	engineLegs := make([]engine.Leg, 0, len(legs))
	for _, m := range legs {
		p, ok := predictions[m.ID]
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
	return resolveLegs(engineLegs)
}

func resolveLegs(engineLegs []engine.Leg) (*string, error) {
	switch len(engineLegs) {
	case 1:
		return engine.FinalWinner(engineLegs[0])
	case 2:
		return engine.AdvancingTeam(engineLegs[0], engineLegs[1])
	default:
		return nil, fmt.Errorf("tie has %d legs, expected 1 or 2", len(engineLegs))
	}
}

// classifyGroupQualifiers compares each user's hypothetical group table
// (built from their own predictions) with the official one, slot by slot,
// on the tournament's last group round.
func (s *scoringService) classifyGroupQualifiers(
	ctx context.Context,
	tournament *models.Tournament,
	rules models.PhaseRules,
	round int,
	matches []*models.Match,
) ([]*models.ClassificationPoint, error) {
	groups := make([]string, 0)
	seen := map[string]bool{}
	for _, m := range matches {
		if m.GroupLabel == nil || seen[*m.GroupLabel] {
			continue
		}
		seen[*m.GroupLabel] = true
		groups = append(groups, *m.GroupLabel)
	}
	sort.Strings(groups)

	policy := engine.TieBreakPolicy{HeadToHead: tournament.HeadToHead}

	var records []*models.ClassificationPoint
	for _, group := range groups {
		groupMatches, err := s.matchRepo.ListByGroup(ctx, nil, tournament.ID, group, round)
		if err != nil {
			return nil, err
		}

		officialResults := make([]engine.MatchResult, 0, len(groupMatches))
		complete := true
		for _, m := range groupMatches {
			if !m.HasResult() {
				complete = false
				break
			}
			officialResults = append(officialResults, engine.MatchResult{
				Group: group, HomeTeam: m.HomeTeam, AwayTeam: m.AwayTeam,
				HomeGoals: m.HomeGoals, AwayGoals: m.AwayGoals,
			})
		}
		if !complete {
			// Qualifiers are not determined until the whole group is
			// played; withhold this group's records.
			s.logger.DebugContext(ctx, "group incomplete, records withheld", slog.String("group", group))
			continue
		}
		officialTable := engine.GroupStandings(officialResults, group, policy)
		if len(officialTable) < tournament.QualifiersPerGroup {
			continue
		}

		matchIDs := make([]int, 0, len(groupMatches))
		matchByID := make(map[int]*models.Match, len(groupMatches))
		for _, m := range groupMatches {
			matchIDs = append(matchIDs, m.ID)
			matchByID[m.ID] = m
		}
		predictions, err := s.predictionRepo.ListByMatchIDs(ctx, nil, matchIDs)
		if err != nil {
			return nil, err
		}
		byUser := map[uuid.UUID][]*models.Prediction{}
		for _, p := range predictions {
			byUser[p.UserID] = append(byUser[p.UserID], p)
		}
		userIDs := make([]uuid.UUID, 0, len(byUser))
		for id := range byUser {
			userIDs = append(userIDs, id)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i].String() < userIDs[j].String() })

		for _, userID := range userIDs {
			userResults := make([]engine.MatchResult, 0, len(groupMatches))
			predictedByMatch := map[int]*models.Prediction{}
			for _, p := range byUser[userID] {
				predictedByMatch[p.MatchID] = p
			}
			for _, m := range groupMatches {
				result := engine.MatchResult{Group: group, HomeTeam: m.HomeTeam, AwayTeam: m.AwayTeam}
				if p, ok := predictedByMatch[m.ID]; ok {
					home, away := p.HomeGoals, p.AwayGoals
					result.HomeGoals = &home
					result.AwayGoals = &away
				}
				userResults = append(userResults, result)
			}
			userTable := engine.GroupStandings(userResults, group, policy)
			if len(userTable) < tournament.QualifiersPerGroup {
				continue
			}

			for rank := 1; rank <= tournament.QualifiersPerGroup; rank++ {
				officialTeam := officialTable[rank-1].Team
				predictedTeam := userTable[rank-1].Team
				points := 0
				if predictedTeam == officialTeam {
					points = rules.Advancement
				}
				records = append(records, &models.ClassificationPoint{
					UserID:        userID,
					TournamentID:  tournament.ID,
					Slot:          fmt.Sprintf("group:%s:%d", group, rank),
					Round:         round,
					PredictedTeam: predictedTeam,
					OfficialTeam:  &officialTeam,
					Points:        points,
				})
			}
		}
	}
	return records, nil
}

// roundTotals merges every point source applicable to the round into one
// per-user total. Champion points only count on the terminal round.
func (s *scoringService) roundTotals(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, round int) (map[uuid.UUID]int, error) {
	totals := map[uuid.UUID]int{}

	matchSums, err := s.rankingRepo.SumMatchPointsByRound(ctx, exec, tournament.ID, round)
	if err != nil {
		return nil, err
	}
	for _, score := range matchSums {
		totals[score.UserID] += score.Points
	}

	classSums, err := s.rankingRepo.SumClassificationByRound(ctx, exec, tournament.ID, round)
	if err != nil {
		return nil, err
	}
	for _, score := range classSums {
		totals[score.UserID] += score.Points
	}

	if round == tournament.FinalRound {
		championSums, err := s.rankingRepo.SumChampionPoints(ctx, exec, tournament.ID)
		if err != nil {
			return nil, err
		}
		for _, score := range championSums {
			totals[score.UserID] += score.Points
		}
	}

	return totals, nil
}

// winnersFromTotals returns every user tied on the maximum total. Ties are
// never broken.
func winnersFromTotals(totals map[uuid.UUID]int) []models.UserScore {
	if len(totals) == 0 {
		return nil
	}
	best := 0
	first := true
	for _, points := range totals {
		if first || points > best {
			best = points
			first = false
		}
	}
	winners := make([]models.UserScore, 0, 1)
	for userID, points := range totals {
		if points == best {
			winners = append(winners, models.UserScore{UserID: userID, Points: points})
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].UserID.String() < winners[j].UserID.String() })
	return winners
}

func (s *scoringService) ScoreChampionPredictions(ctx context.Context, tournamentCode, officialChampion, officialRunnerUp string) (int, error) {
	if officialChampion == "" || officialRunnerUp == "" || officialChampion == officialRunnerUp {
		return 0, ErrInvalidFinalistPair
	}

	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return 0, err
	}
	rules, err := s.rulesRepo.GetByRound(ctx, nil, tournament.ID, tournament.FinalRound)
	if err != nil {
		return 0, err
	}
	picks, err := s.championRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return 0, err
	}
	if len(picks) == 0 {
		return 0, nil
	}

	official := engine.FinalistPair{Champion: officialChampion, RunnerUp: officialRunnerUp}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin champion scoring transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, pick := range picks {
		predicted := engine.FinalistPair{Champion: pick.Champion, RunnerUp: pick.RunnerUp}
		championPts, runnerUpPts := engine.ChampionPoints(predicted, official, *rules)
		if err := s.championRepo.UpdatePoints(ctx, tx, pick.UserID, tournament.ID, championPts, runnerUpPts); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit champion scoring transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "champion predictions scored",
		slog.String("tournament", tournamentCode),
		slog.String("champion", officialChampion),
		slog.String("runner_up", officialRunnerUp),
		slog.Int("users", len(picks)),
	)
	return len(picks), nil
}

func (s *scoringService) ComputeRoundWinners(ctx context.Context, tournamentCode string, round int) ([]models.UserScore, error) {
	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin round winners transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	totals, err := s.roundTotals(ctx, tx, tournament, round)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		// Do not replace existing winner rows with an empty set.
		return nil, fmt.Errorf("%w: no scored points for %s round %d", ErrNothingToScore, tournamentCode, round)
	}

	winners := winnersFromTotals(totals)
	if err := s.rankingRepo.ReplaceRoundWinners(ctx, tx, tournament.ID, round, winners); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit round winners transaction: %w", err)
	}
	return winners, nil
}

func (s *scoringService) ComputeCumulativePodium(ctx context.Context, tournamentCode string, topN int) ([]models.PodiumEntry, error) {
	if topN < 1 {
		return nil, ErrInvalidTopN
	}
	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin podium transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	totals, err := s.rankingRepo.CumulativeTotals(ctx, tx, tournament.ID)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("%w: no accumulated points for %s", ErrNothingToScore, tournamentCode)
	}

	if len(totals) > topN {
		totals = totals[:topN]
	}
	capturedAt := time.Now()
	entries := make([]models.PodiumEntry, 0, len(totals))
	for i, score := range totals {
		entries = append(entries, models.PodiumEntry{
			TournamentID: tournament.ID,
			Position:     i + 1,
			UserID:       score.UserID,
			Points:       score.Points,
			CapturedAt:   capturedAt,
		})
	}

	if err := s.rankingRepo.ReplacePodium(ctx, tx, tournament.ID, entries); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit podium transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "cumulative podium recomputed",
		slog.String("tournament", tournamentCode),
		slog.Int("positions", len(entries)),
	)
	return entries, nil
}

func (s *scoringService) CloseRound(ctx context.Context, tournamentCode string, round int) error {
	tournament, err := s.tournamentRepo.GetByCode(ctx, nil, tournamentCode)
	if err != nil {
		return err
	}
	if err := s.roundRepo.Close(ctx, nil, tournament.ID, round); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "round closed",
		slog.String("tournament", tournamentCode),
		slog.Int("round", round),
	)
	return nil
}
