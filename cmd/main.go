package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/quinipool/prediction-pool/config"
	"github.com/quinipool/prediction-pool/db"
	"github.com/quinipool/prediction-pool/models"
	"github.com/quinipool/prediction-pool/repositories"
	"github.com/quinipool/prediction-pool/services"
)

const usage = `Usage: pool <command> [flags]

Commands:
  migrate          apply pending database migrations
  load-rules       load tournaments and phase rules from the rules file
  submit-prediction  store a user's predicted score for a match
  pick-champion    store a user's champion and runner-up pick
  enter-result     enter or correct a match's official result
  score-round      score a round's predictions and determine its winners
  standings        print a group table (official or one user's view)
  advancement      resolve a knockout tie (official or one user's view)
  score-champions  score champion picks against the official podium
  round-winners    print the stored winners of a round
  podium           recompute and print the cumulative top-N
  close-round      close a round for prediction writes
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if command == "migrate" {
		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			logger.Error("migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
		return
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	rulesRepo := repositories.NewPostgresRulesRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	classificationRepo := repositories.NewPostgresClassificationRepository(dbConn)
	championRepo := repositories.NewPostgresChampionRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)

	scoringService := services.NewScoringService(
		dbConn,
		tournamentRepo, rulesRepo, roundRepo, matchRepo,
		predictionRepo, classificationRepo, championRepo, rankingRepo,
		logger,
	)
	standingsService := services.NewStandingsService(tournamentRepo, matchRepo, predictionRepo)
	predictionService := services.NewPredictionService(
		tournamentRepo, roundRepo, matchRepo, predictionRepo, championRepo, logger,
	)

	app := &application{
		logger:            logger,
		cfg:               cfg,
		tournamentRepo:    tournamentRepo,
		rulesRepo:         rulesRepo,
		matchRepo:         matchRepo,
		rankingRepo:       rankingRepo,
		scoringService:    scoringService,
		standingsService:  standingsService,
		predictionService: predictionService,
	}

	ctx := context.Background()
	switch command {
	case "load-rules":
		err = app.loadRules(ctx)
	case "submit-prediction":
		err = app.submitPrediction(ctx, args)
	case "pick-champion":
		err = app.pickChampion(ctx, args)
	case "enter-result":
		err = app.enterResult(ctx, args)
	case "score-round":
		err = app.scoreRound(ctx, args)
	case "standings":
		err = app.standings(ctx, args)
	case "advancement":
		err = app.advancement(ctx, args)
	case "score-champions":
		err = app.scoreChampions(ctx, args)
	case "round-winners":
		err = app.roundWinners(ctx, args)
	case "podium":
		err = app.podium(ctx, args)
	case "close-round":
		err = app.closeRound(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", slog.String("command", command), slog.Any("error", err))
		os.Exit(1)
	}
}

type application struct {
	logger            *slog.Logger
	cfg               *config.Config
	tournamentRepo    repositories.TournamentRepository
	rulesRepo         repositories.RulesRepository
	matchRepo         repositories.MatchRepository
	rankingRepo       repositories.RankingRepository
	scoringService    services.ScoringService
	standingsService  services.StandingsService
	predictionService services.PredictionService
}

// loadRules upserts every tournament in the rules file and replaces its
// phase rules. A rules change is a data change: rerunning the command after
// editing the file is the whole upgrade procedure.
func (app *application) loadRules(ctx context.Context) error {
	tournaments, err := config.LoadRules(app.cfg.RulesPath)
	if err != nil {
		return err
	}
	for _, t := range tournaments {
		tournament := t.Tournament()
		if err := app.tournamentRepo.Upsert(ctx, nil, &tournament); err != nil {
			return err
		}
		if err := app.rulesRepo.ReplaceForTournament(ctx, nil, tournament.ID, t.Expand(tournament.ID)); err != nil {
			return err
		}
		app.logger.Info("rules loaded",
			slog.String("tournament", tournament.Code),
			slog.Int("rounds", tournament.FinalRound),
		)
	}
	return nil
}

func (app *application) submitPrediction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit-prediction", flag.ExitOnError)
	user := fs.String("user", "", "user ID")
	matchID := fs.Int("match", 0, "match ID")
	home := fs.Int("home", 0, "predicted home goals")
	away := fs.Int("away", 0, "predicted away goals")
	homePens := fs.Int("home-pens", -1, "predicted home shootout goals (knockout only)")
	awayPens := fs.Int("away-pens", -1, "predicted away shootout goals (knockout only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", *user, err)
	}
	prediction := &models.Prediction{
		UserID:    userID,
		MatchID:   *matchID,
		HomeGoals: *home,
		AwayGoals: *away,
	}
	if *homePens >= 0 {
		prediction.HomePens = homePens
	}
	if *awayPens >= 0 {
		prediction.AwayPens = awayPens
	}
	return app.predictionService.SubmitPrediction(ctx, prediction)
}

func (app *application) pickChampion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pick-champion", flag.ExitOnError)
	user := fs.String("user", "", "user ID")
	tournament := fs.String("tournament", "", "tournament code")
	champion := fs.String("champion", "", "predicted champion")
	runnerUp := fs.String("runner-up", "", "predicted runner-up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", *user, err)
	}
	return app.predictionService.SubmitChampionPrediction(ctx, userID, *tournament, *champion, *runnerUp)
}

func (app *application) enterResult(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enter-result", flag.ExitOnError)
	matchID := fs.Int("match", 0, "match ID")
	home := fs.Int("home", 0, "home goals")
	away := fs.Int("away", 0, "away goals")
	homePens := fs.Int("home-pens", -1, "home shootout goals (knockout only)")
	awayPens := fs.Int("away-pens", -1, "away shootout goals (knockout only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var hp, ap *int
	if *homePens >= 0 {
		hp = homePens
	}
	if *awayPens >= 0 {
		ap = awayPens
	}
	if err := app.matchRepo.UpdateResult(ctx, nil, *matchID, *home, *away, hp, ap); err != nil {
		return err
	}
	app.logger.Info("result entered, rescore the round to update points",
		slog.Int("match", *matchID),
	)
	return nil
}

func (app *application) scoreRound(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("score-round", flag.ExitOnError)
	tournament := fs.String("tournament", "", "tournament code")
	round := fs.Int("round", 0, "round number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	result, err := app.scoringService.ScoreRound(ctx, *tournament, *round)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (app *application) standings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ExitOnError)
	tournament := fs.String("tournament", "", "tournament code")
	group := fs.String("group", "", "group label")
	round := fs.Int("round", 0, "standings as of this round")
	user := fs.String("user", "", "user ID for a prediction-based table (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	perspective, err := parsePerspective(*user)
	if err != nil {
		return err
	}
	rows, err := app.standingsService.ComputeGroupStandings(ctx, *tournament, *group, *round, perspective)
	if err != nil {
		return err
	}
	return printJSON(rows)
}

func (app *application) advancement(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("advancement", flag.ExitOnError)
	tie := fs.String("tie", "", "knockout tie ID")
	user := fs.String("user", "", "user ID for a prediction-based call (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	perspective, err := parsePerspective(*user)
	if err != nil {
		return err
	}
	advancer, err := app.standingsService.ResolveAdvancement(ctx, *tie, perspective)
	if err != nil {
		return err
	}
	if advancer == nil {
		fmt.Println("pending")
		return nil
	}
	fmt.Println(*advancer)
	return nil
}

func (app *application) scoreChampions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("score-champions", flag.ExitOnError)
	tournament := fs.String("tournament", "", "tournament code")
	champion := fs.String("champion", "", "official champion")
	runnerUp := fs.String("runner-up", "", "official runner-up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	scored, err := app.scoringService.ScoreChampionPredictions(ctx, *tournament, *champion, *runnerUp)
	if err != nil {
		return err
	}
	app.logger.Info("champion picks scored", slog.Int("users", scored))
	return nil
}

func (app *application) roundWinners(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("round-winners", flag.ExitOnError)
	tournamentCode := fs.String("tournament", "", "tournament code")
	round := fs.Int("round", 0, "round number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tournament, err := app.tournamentRepo.GetByCode(ctx, nil, *tournamentCode)
	if err != nil {
		return err
	}
	winners, err := app.rankingRepo.GetRoundWinners(ctx, nil, tournament.ID, *round)
	if err != nil {
		return err
	}
	return printJSON(winners)
}

func (app *application) podium(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("podium", flag.ExitOnError)
	tournament := fs.String("tournament", "", "tournament code")
	topN := fs.Int("top", 3, "podium size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entries, err := app.scoringService.ComputeCumulativePodium(ctx, *tournament, *topN)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func (app *application) closeRound(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("close-round", flag.ExitOnError)
	tournament := fs.String("tournament", "", "tournament code")
	round := fs.Int("round", 0, "round number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return app.scoringService.CloseRound(ctx, *tournament, *round)
}

func parsePerspective(user string) (services.Perspective, error) {
	if user == "" {
		return services.OfficialPerspective(), nil
	}
	userID, err := uuid.Parse(user)
	if err != nil {
		return services.Perspective{}, fmt.Errorf("invalid user ID %q: %w", user, err)
	}
	return services.UserPerspective(userID), nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
