package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/quinipool/prediction-pool/models"
	"github.com/quinipool/prediction-pool/repositories"
)

// fixtureDB is the shared in-memory state behind the fake repositories.
// Fakes ignore the executor argument: transaction semantics are covered by
// sqlmock expectations on the service's *sqlx.DB, not replayed here.
type fixtureDB struct {
	tournaments    map[string]*models.Tournament
	rules          map[int]map[int]*models.PhaseRules
	lastGroupRound map[int]int
	closedRounds   map[int]map[int]bool
	matches        map[int]*models.Match
	predictions    map[uuid.UUID]*models.Prediction
	champions      map[uuid.UUID]*models.ChampionPrediction
	classification []*models.ClassificationPoint
	roundWinners   map[int]map[int][]models.UserScore
	podium         []models.PodiumEntry
}

func newFixtureDB() *fixtureDB {
	return &fixtureDB{
		tournaments:    map[string]*models.Tournament{},
		rules:          map[int]map[int]*models.PhaseRules{},
		lastGroupRound: map[int]int{},
		closedRounds:   map[int]map[int]bool{},
		matches:        map[int]*models.Match{},
		predictions:    map[uuid.UUID]*models.Prediction{},
		champions:      map[uuid.UUID]*models.ChampionPrediction{},
		roundWinners:   map[int]map[int][]models.UserScore{},
	}
}

func (f *fixtureDB) addTournament(t *models.Tournament) {
	f.tournaments[t.Code] = t
}

func (f *fixtureDB) addRules(r *models.PhaseRules) {
	if f.rules[r.TournamentID] == nil {
		f.rules[r.TournamentID] = map[int]*models.PhaseRules{}
	}
	f.rules[r.TournamentID][r.Round] = r
	if r.Phase == models.PhaseGroup && r.Round > f.lastGroupRound[r.TournamentID] {
		f.lastGroupRound[r.TournamentID] = r.Round
	}
}

func (f *fixtureDB) addMatch(m *models.Match) {
	f.matches[m.ID] = m
}

func (f *fixtureDB) addPrediction(p *models.Prediction) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.predictions[p.ID] = p
}

type fakeTournamentRepo struct{ db *fixtureDB }

func (r *fakeTournamentRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	if t.ID == 0 {
		t.ID = len(r.db.tournaments) + 1
	}
	r.db.tournaments[t.Code] = t
	return nil
}

func (r *fakeTournamentRepo) GetByCode(_ context.Context, _ repositories.SQLExecutor, code string) (*models.Tournament, error) {
	t, ok := r.db.tournaments[code]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.db.tournaments))
	for _, t := range r.db.tournaments {
		out = append(out, t)
	}
	return out, nil
}

type fakeRulesRepo struct{ db *fixtureDB }

func (r *fakeRulesRepo) ReplaceForTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, rules []models.PhaseRules) error {
	r.db.rules[tournamentID] = map[int]*models.PhaseRules{}
	for i := range rules {
		r.db.addRules(&rules[i])
	}
	return nil
}

func (r *fakeRulesRepo) GetByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) (*models.PhaseRules, error) {
	rules, ok := r.db.rules[tournamentID][round]
	if !ok {
		return nil, repositories.ErrPhaseRulesNotFound
	}
	return rules, nil
}

func (r *fakeRulesRepo) LastGroupRound(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	return r.db.lastGroupRound[tournamentID], nil
}

type fakeRoundRepo struct{ db *fixtureDB }

func (r *fakeRoundRepo) Get(_ context.Context, _ repositories.SQLExecutor, tournamentID, number int) (*models.Round, error) {
	return &models.Round{TournamentID: tournamentID, Number: number, Closed: r.db.closedRounds[tournamentID][number]}, nil
}

func (r *fakeRoundRepo) IsClosed(_ context.Context, _ repositories.SQLExecutor, tournamentID, number int) (bool, error) {
	return r.db.closedRounds[tournamentID][number], nil
}

func (r *fakeRoundRepo) Close(_ context.Context, _ repositories.SQLExecutor, tournamentID, number int) error {
	if r.db.closedRounds[tournamentID] == nil {
		r.db.closedRounds[tournamentID] = map[int]bool{}
	}
	r.db.closedRounds[tournamentID][number] = true
	return nil
}

type fakeMatchRepo struct {
	db *fixtureDB

	// listStarted / listRelease, when set, turn ListByRound into a
	// rendezvous point so a test can hold one scoring run mid-flight.
	listStarted chan struct{}
	listRelease chan struct{}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	if m.ID == 0 {
		m.ID = len(r.db.matches) + 1
	}
	r.db.addMatch(m)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.db.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]*models.Match, error) {
	if r.listStarted != nil {
		r.listStarted <- struct{}{}
		<-r.listRelease
	}
	return r.collect(func(m *models.Match) bool {
		return m.TournamentID == tournamentID && m.Round == round
	}), nil
}

func (r *fakeMatchRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, tournamentID int, group string, maxRound int) ([]*models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		return m.TournamentID == tournamentID && m.GroupLabel != nil && *m.GroupLabel == group && m.Round <= maxRound
	}), nil
}

func (r *fakeMatchRepo) ListByTie(_ context.Context, _ repositories.SQLExecutor, tieID string) ([]*models.Match, error) {
	legs := r.collect(func(m *models.Match) bool {
		return m.TieID != nil && *m.TieID == tieID
	})
	sort.Slice(legs, func(i, j int) bool {
		li, lj := 1, 1
		if legs[i].Leg != nil {
			li = *legs[i].Leg
		}
		if legs[j].Leg != nil {
			lj = *legs[j].Leg
		}
		return li < lj
	})
	return legs, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id, homeGoals, awayGoals int, homePens, awayPens *int) error {
	m, ok := r.db.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeGoals = &homeGoals
	m.AwayGoals = &awayGoals
	m.HomePens = homePens
	m.AwayPens = awayPens
	return nil
}

func (r *fakeMatchRepo) collect(keep func(*models.Match) bool) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range r.db.matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakePredictionRepo struct{ db *fixtureDB }

func (r *fakePredictionRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, p *models.Prediction) error {
	for _, existing := range r.db.predictions {
		if existing.UserID == p.UserID && existing.MatchID == p.MatchID {
			p.ID = existing.ID
			break
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Points = nil
	r.db.predictions[p.ID] = p
	return nil
}

func (r *fakePredictionRepo) ListByMatchIDs(_ context.Context, _ repositories.SQLExecutor, matchIDs []int) ([]*models.Prediction, error) {
	wanted := map[int]bool{}
	for _, id := range matchIDs {
		wanted[id] = true
	}
	out := make([]*models.Prediction, 0)
	for _, p := range r.db.predictions {
		if wanted[p.MatchID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID.String() < out[j].UserID.String()
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

func (r *fakePredictionRepo) ListByUserAndMatchIDs(_ context.Context, _ repositories.SQLExecutor, userID uuid.UUID, matchIDs []int) ([]*models.Prediction, error) {
	all, _ := r.ListByMatchIDs(context.Background(), nil, matchIDs)
	out := make([]*models.Prediction, 0)
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) UpdatePoints(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, points int) error {
	p, ok := r.db.predictions[id]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	p.Points = &points
	return nil
}

type fakeClassificationRepo struct{ db *fixtureDB }

func (r *fakeClassificationRepo) DeleteByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) error {
	kept := r.db.classification[:0]
	for _, record := range r.db.classification {
		if !(record.TournamentID == tournamentID && record.Round == round) {
			kept = append(kept, record)
		}
	}
	r.db.classification = kept
	return nil
}

func (r *fakeClassificationRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, records []*models.ClassificationPoint) error {
	r.db.classification = append(r.db.classification, records...)
	return nil
}

func (r *fakeClassificationRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]*models.ClassificationPoint, error) {
	out := make([]*models.ClassificationPoint, 0)
	for _, record := range r.db.classification {
		if record.TournamentID == tournamentID && record.Round == round {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeChampionRepo struct{ db *fixtureDB }

func (r *fakeChampionRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, p *models.ChampionPrediction) error {
	p.ChampionPoints = nil
	p.RunnerUpPoints = nil
	r.db.champions[p.UserID] = p
	return nil
}

func (r *fakeChampionRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.ChampionPrediction, error) {
	out := make([]*models.ChampionPrediction, 0)
	for _, p := range r.db.champions {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (r *fakeChampionRepo) UpdatePoints(_ context.Context, _ repositories.SQLExecutor, userID uuid.UUID, tournamentID, championPts, runnerUpPts int) error {
	p, ok := r.db.champions[userID]
	if !ok || p.TournamentID != tournamentID {
		return repositories.ErrChampionPredictionNotFound
	}
	p.ChampionPoints = &championPts
	p.RunnerUpPoints = &runnerUpPts
	return nil
}

// fakeRankingRepo derives totals from the fixture state so a test observes
// the same aggregation the SQL views produce.
type fakeRankingRepo struct{ db *fixtureDB }

func (r *fakeRankingRepo) SumMatchPointsByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]models.UserScore, error) {
	totals := map[uuid.UUID]int{}
	for _, p := range r.db.predictions {
		if p.Points == nil {
			continue
		}
		m, ok := r.db.matches[p.MatchID]
		if !ok || m.TournamentID != tournamentID || m.Round != round {
			continue
		}
		totals[p.UserID] += *p.Points
	}
	return scoresFromTotals(totals), nil
}

func (r *fakeRankingRepo) SumClassificationByRound(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]models.UserScore, error) {
	totals := map[uuid.UUID]int{}
	for _, record := range r.db.classification {
		if record.TournamentID == tournamentID && record.Round == round {
			totals[record.UserID] += record.Points
		}
	}
	return scoresFromTotals(totals), nil
}

func (r *fakeRankingRepo) SumChampionPoints(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.UserScore, error) {
	totals := map[uuid.UUID]int{}
	for _, p := range r.db.champions {
		if p.TournamentID != tournamentID || (p.ChampionPoints == nil && p.RunnerUpPoints == nil) {
			continue
		}
		sum := 0
		if p.ChampionPoints != nil {
			sum += *p.ChampionPoints
		}
		if p.RunnerUpPoints != nil {
			sum += *p.RunnerUpPoints
		}
		totals[p.UserID] += sum
	}
	return scoresFromTotals(totals), nil
}

func (r *fakeRankingRepo) CumulativeTotals(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.UserScore, error) {
	totals := map[uuid.UUID]int{}
	for _, p := range r.db.predictions {
		if p.Points == nil {
			continue
		}
		m, ok := r.db.matches[p.MatchID]
		if !ok || m.TournamentID != tournamentID {
			continue
		}
		totals[p.UserID] += *p.Points
	}
	for _, record := range r.db.classification {
		if record.TournamentID == tournamentID {
			totals[record.UserID] += record.Points
		}
	}
	champs, _ := r.SumChampionPoints(context.Background(), nil, tournamentID)
	for _, score := range champs {
		totals[score.UserID] += score.Points
	}
	return scoresFromTotals(totals), nil
}

func (r *fakeRankingRepo) ReplaceRoundWinners(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int, winners []models.UserScore) error {
	if r.db.roundWinners[tournamentID] == nil {
		r.db.roundWinners[tournamentID] = map[int][]models.UserScore{}
	}
	r.db.roundWinners[tournamentID][round] = winners
	return nil
}

func (r *fakeRankingRepo) GetRoundWinners(_ context.Context, _ repositories.SQLExecutor, tournamentID, round int) ([]*models.RoundWinner, error) {
	out := make([]*models.RoundWinner, 0)
	for _, score := range r.db.roundWinners[tournamentID][round] {
		out = append(out, &models.RoundWinner{TournamentID: tournamentID, Round: round, UserID: score.UserID, Points: score.Points})
	}
	return out, nil
}

func (r *fakeRankingRepo) ReplacePodium(_ context.Context, _ repositories.SQLExecutor, tournamentID int, entries []models.PodiumEntry) error {
	r.db.podium = entries
	return nil
}

func (r *fakeRankingRepo) GetPodium(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.PodiumEntry, error) {
	out := make([]*models.PodiumEntry, 0, len(r.db.podium))
	for i := range r.db.podium {
		out = append(out, &r.db.podium[i])
	}
	return out, nil
}

func scoresFromTotals(totals map[uuid.UUID]int) []models.UserScore {
	out := make([]models.UserScore, 0, len(totals))
	for userID, points := range totals {
		out = append(out, models.UserScore{UserID: userID, Points: points})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out
}

func intPtr(v int) *int { return &v }
