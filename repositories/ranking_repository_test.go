package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/quinipool/prediction-pool/models"
)

type RankingRepositoryTestSuite struct {
	suite.Suite
	db   *sqlx.DB
	mock sqlmock.Sqlmock
	repo RankingRepository
}

func (suite *RankingRepositoryTestSuite) SetupTest() {
	mockDB, mock, err := sqlmock.New()
	require.NoError(suite.T(), err)

	suite.db = sqlx.NewDb(mockDB, "postgres")
	suite.mock = mock
	suite.repo = NewPostgresRankingRepository(suite.db)
}

func (suite *RankingRepositoryTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *RankingRepositoryTestSuite) TestSumMatchPointsByRound_SkipsUnscored() {
	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"user_id", "points"}).AddRow(userID, 14)

	suite.mock.ExpectQuery(`SELECT p\.user_id, SUM\(p\.points\) AS points`).
		WithArgs(3, 2).
		WillReturnRows(rows)

	scores, err := suite.repo.SumMatchPointsByRound(context.Background(), nil, 3, 2)

	assert.NoError(suite.T(), err)
	require.Len(suite.T(), scores, 1)
	assert.Equal(suite.T(), models.UserScore{UserID: userID, Points: 14}, scores[0])
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RankingRepositoryTestSuite) TestReplaceRoundWinners_DeletesThenInserts() {
	first := uuid.New()
	second := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM round_winners WHERE tournament_id = \$1 AND round = \$2`).
		WithArgs(3, 5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	suite.mock.ExpectExec(`INSERT INTO round_winners`).
		WithArgs(3, 5, first, 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`INSERT INTO round_winners`).
		WithArgs(3, 5, second, 21).
		WillReturnResult(sqlmock.NewResult(0, 1))

	winners := []models.UserScore{
		{UserID: first, Points: 21},
		{UserID: second, Points: 21},
	}
	err := suite.repo.ReplaceRoundWinners(context.Background(), nil, 3, 5, winners)

	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RankingRepositoryTestSuite) TestReplaceRoundWinners_EmptySetStillClears() {
	suite.mock.ExpectExec(`DELETE FROM round_winners WHERE tournament_id = \$1 AND round = \$2`).
		WithArgs(3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := suite.repo.ReplaceRoundWinners(context.Background(), nil, 3, 5, nil)

	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RankingRepositoryTestSuite) TestCumulativeTotals_OrderedByPoints() {
	leader := uuid.New()
	trailer := uuid.New()
	rows := sqlmock.NewRows([]string{"user_id", "points"}).
		AddRow(leader, 40).
		AddRow(trailer, 25)

	suite.mock.ExpectQuery(`SELECT user_id, SUM\(points\) AS points`).
		WithArgs(3).
		WillReturnRows(rows)

	scores, err := suite.repo.CumulativeTotals(context.Background(), nil, 3)

	assert.NoError(suite.T(), err)
	require.Len(suite.T(), scores, 2)
	assert.Equal(suite.T(), leader, scores[0].UserID)
	assert.Equal(suite.T(), 40, scores[0].Points)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RankingRepositoryTestSuite) TestReplacePodium() {
	userID := uuid.New()
	capturedAt := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	suite.mock.ExpectExec(`DELETE FROM podium_snapshots WHERE tournament_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 3))
	suite.mock.ExpectExec(`INSERT INTO podium_snapshots`).
		WithArgs(3, 1, userID, 55, capturedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entries := []models.PodiumEntry{
		{TournamentID: 3, Position: 1, UserID: userID, Points: 55, CapturedAt: capturedAt},
	}
	err := suite.repo.ReplacePodium(context.Background(), nil, 3, entries)

	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func TestRankingRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RankingRepositoryTestSuite))
}
