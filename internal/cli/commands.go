package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/backtest"
	"github.com/richard-senior/predictomatic/pkg/config"
	"github.com/richard-senior/predictomatic/pkg/feature"
	"github.com/richard-senior/predictomatic/pkg/league"
	"github.com/richard-senior/predictomatic/pkg/predict"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/scrape"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

func runImport(app *App, args []string) error {
	cfg := app.Config
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	source := fs.String("source", "bbc", "bbc or football-data")
	url := fs.String("url", cfg.Source.ResultsURL, "BBC results page")
	leagueCode := fs.String("league", cfg.Source.League, "football-data league code")
	season := fs.String("season", cfg.Source.Season, "football-data season, yyyy/yyyy")
	file := fs.String("file", "", "parse a saved results page or CSV instead of downloading")
	refresh := fs.Bool("refresh", false, "ignore cached downloads")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var matches []results.MatchRecord
	var err error
	switch {
	case *file != "":
		matches, err = scrape.ReadFile(*file)
	case *source == "bbc":
		im := scrape.NewImporter(cfg.Cache.Path)
		im.Refresh = *refresh
		matches, err = im.BBC(context.Background(), *url)
	case *source == "football-data":
		im := scrape.NewImporter(cfg.Cache.Path)
		im.Refresh = *refresh
		matches, err = im.FootballData(context.Background(), cfg.Source.FootballDataURL, *leagueCode, *season)
	default:
		return fmt.Errorf("%w: unknown source %q", ErrUsage, *source)
	}
	if err != nil {
		return err
	}

	db, store, err := app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.SaveMatches(matches); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Imported %d matches\n", len(matches))
	return nil
}

func runStats(app *App, args []string) error {
	cfg := app.Config
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	team := fs.String("team", "", "team name")
	date := fs.String("date", "", "last day of the window, yyyy-mm-dd (default today)")
	normalize := fs.Bool("normalize", cfg.Window.Normalize, "divide points and goal difference by matches played")
	window := addWindowFlags(fs, cfg.Window.Weeks, 0)
	venue := addVenueFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *team == "" {
		return fmt.Errorf("%w: --team is required", ErrUsage)
	}
	ref, err := app.referenceDate(*date)
	if err != nil {
		return err
	}
	spec, err := window.spec()
	if err != nil {
		return err
	}
	homeOnly, err := venue.homeOnly()
	if err != nil {
		return err
	}

	db, store, err := app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := stats.NewAggregator(store).Compute(*team, spec, ref, stats.Options{HomeOnly: homeOnly, Normalize: *normalize})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s over %s to %s (%s): played=%d won=%d drawn=%d lost=%d for=%d against=%d goal_diff=%g points=%g\n",
		s.Team, spec, ref.Format(results.DateLayout), results.VenueFor(homeOnly), s.Played, s.Won, s.Drawn, s.Lost,
		s.ScoreFor, s.ScoreAgainst, s.GoalDiff(), s.Points())
	return nil
}

func runLeague(app *App, args []string) error {
	cfg := app.Config
	fs := flag.NewFlagSet("league", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	date := fs.String("date", "", "last day of the window, yyyy-mm-dd (default today)")
	repeatTo := fs.String("repeat-to", "", "rebuild the table weekly until this date")
	strategy := fs.String("strategy", "league", "ranking: league, premier, points, goal-diff, win-rate, ...")
	normalize := fs.Bool("normalize", cfg.Window.Normalize, "divide points and goal difference by matches played")
	window := addWindowFlags(fs, cfg.Window.Weeks, 0)
	venue := addVenueFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	scoring, ok := feature.Strategies[*strategy]
	if !ok {
		return fmt.Errorf("%w: unknown strategy %q", ErrUsage, *strategy)
	}
	from, err := app.referenceDate(*date)
	if err != nil {
		return err
	}
	to := from
	if *repeatTo != "" {
		if to, err = app.referenceDate(*repeatTo); err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("%w: --repeat-to %s is before --date %s", ErrUsage,
				to.Format(results.DateLayout), from.Format(results.DateLayout))
		}
	}
	spec, err := window.spec()
	if err != nil {
		return err
	}
	homeOnly, err := venue.homeOnly()
	if err != nil {
		return err
	}

	db, store, err := app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	teams, err := store.Teams()
	if err != nil {
		return err
	}
	agg := stats.NewAggregator(store)
	for ref := from; !ref.After(to); ref = ref.AddDate(0, 0, 7) {
		all, err := agg.ComputeAll(teams, spec, ref, stats.Options{HomeOnly: homeOnly, Normalize: *normalize})
		if err != nil {
			return err
		}
		l, err := league.FromStats(all, scoring)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "League to %s over %s\n", ref.Format(results.DateLayout), spec)
		if err := l.Print(app.Out, true); err != nil {
			return err
		}
		if ref.Before(to) {
			fmt.Fprintln(app.Out)
		}
	}
	return nil
}

// modelBuilder resolves a model name to a factory builder. It reports whether
// the models already carry the home advantage boost.
func modelBuilder(name string, normalize bool, boost float64) (backtest.FactoryBuilder, bool, error) {
	switch name {
	case "home-away":
		return backtest.HomeAwayGoalDiffModels(normalize), false, nil
	case "boosted":
		return func(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time) feature.Factory {
			return feature.BoostedGoalDiffFactory(agg, spec, cutoff, normalize, boost)
		}, true, nil
	case "ground":
		return func(*stats.Aggregator, stats.WindowSpec, time.Time) feature.Factory {
			return feature.GroundCapacityFactory(feature.GroundCapacities2016, boost)
		}, true, nil
	}
	fn, ok := feature.Strategies[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: unknown model %q", ErrUsage, name)
	}
	return backtest.StatsModels(fn, stats.Options{Normalize: normalize}), false, nil
}

// predictorTemplate applies the configured predictor settings
func predictorTemplate(cfg *config.Config, threshold, boost float64, boosted bool) predict.Predictor {
	p := predict.Predictor{Threshold: threshold}
	if !boosted {
		p.HomeAdvantageBoost = boost
	}
	if lo, hi, ok := cfg.DrawRange(); ok {
		p.WithDrawRange(lo, hi)
	}
	return p
}

func runPredict(app *App, args []string) error {
	cfg := app.Config
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	fixtures := fs.String("fixtures", "", "fixtures to predict: 'Home 1-Away 1, Home 2-Away 2'")
	date := fs.String("date", "", "use data up to this date, yyyy-mm-dd (default today)")
	model := fs.String("model", "home-away", "home-away, boosted, ground or a ranking strategy name")
	normalize := fs.Bool("normalize", true, "divide goal difference by matches played")
	boost := fs.Float64("boost", cfg.Predictor.HomeAdvantageBoost, "home advantage boost")
	threshold := fs.Float64("threshold", cfg.Predictor.Threshold, "margin needed to call a win")
	window := addWindowFlags(fs, cfg.Window.Weeks, cfg.Window.Samples)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	matches, err := predict.ParseFixtures(*fixtures)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: --fixtures is required", ErrUsage)
	}
	ref, err := app.referenceDate(*date)
	if err != nil {
		return err
	}
	spec, err := window.spec()
	if err != nil {
		return err
	}
	build, boosted, err := modelBuilder(*model, *normalize, *boost)
	if err != nil {
		return err
	}

	db, store, err := app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := store.Teams()
	if err != nil {
		return err
	}
	var teams []string
	seen := map[string]bool{}
	for i, f := range matches {
		if f.Home, err = results.ResolveTeam(f.Home, known); err != nil {
			return err
		}
		if f.Away, err = results.ResolveTeam(f.Away, known); err != nil {
			return err
		}
		matches[i] = f
		for _, team := range []string{f.Home, f.Away} {
			if !seen[team] {
				seen[team] = true
				teams = append(teams, team)
			}
		}
	}

	models, err := feature.CreateModelsForAllTeams(build(stats.NewAggregator(store), spec, ref), teams)
	if err != nil {
		return err
	}
	p := predictorTemplate(cfg, *threshold, *boost, boosted)
	p.Models = models

	for _, f := range matches {
		pred, err := p.Predict(f.Home, f.Away)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "Predicted result for %s is a %s with distance %f\n", f, pred.Outcome, pred.Margin)
		if pred.Diagnostic != nil {
			fmt.Fprintf(app.Out, "  warning: %s\n", *pred.Diagnostic)
		}
	}
	return nil
}

func windowsFor(unit string, sizes []int) ([]stats.WindowSpec, error) {
	ret := make([]stats.WindowSpec, 0, len(sizes))
	for _, n := range sizes {
		switch unit {
		case "weeks":
			ret = append(ret, stats.Weeks(n))
		case "days":
			ret = append(ret, stats.Days(n))
		case "samples":
			ret = append(ret, stats.Samples(n))
		default:
			return nil, fmt.Errorf("%w: unknown window unit %q", ErrUsage, unit)
		}
	}
	return ret, nil
}

func runBacktest(app *App, args []string) error {
	cfg := app.Config
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	strategyName := fs.String("strategy", cfg.Backtest.Strategy, "league or model")
	scoringName := fs.String("scoring", "league", "league ranking used by the league strategy")
	model := fs.String("model", "home-away", "model used by the model strategy")
	first := fs.String("first", cfg.Backtest.FirstEvaluation, "first checkpoint, yyyy-mm-dd")
	interval := fs.Duration("interval", cfg.Backtest.Interval, "time between checkpoints")
	minWindow := fs.Int("min", cfg.Backtest.MinWindow, "smallest window size")
	maxWindow := fs.Int("max", cfg.Backtest.MaxWindow, "largest window size")
	unit := fs.String("unit", cfg.Backtest.WindowUnit, "window unit: weeks, days or samples")
	normalize := fs.Bool("normalize", cfg.Window.Normalize, "divide points and goal difference by matches played")
	grid := fs.Bool("grid", false, "also print the per checkpoint grid")
	logPredictions := fs.Bool("log", cfg.Backtest.LogPredictions, "store every prediction in prediction_log")
	venue := addVenueFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *minWindow < 1 || *minWindow > *maxWindow {
		return fmt.Errorf("%w: window sizes %d to %d", ErrUsage, *minWindow, *maxWindow)
	}
	run := *cfg
	run.Backtest.MinWindow, run.Backtest.MaxWindow = *minWindow, *maxWindow
	windows, err := windowsFor(*unit, run.WindowSizes())
	if err != nil {
		return err
	}
	start := results.Day(app.Now())
	if *first != "" {
		run.Backtest.FirstEvaluation = *first
		if start, err = run.FirstEvaluationDate(); err != nil {
			return fmt.Errorf("%w: bad --first %q, expected yyyy-mm-dd", ErrUsage, *first)
		}
	}
	homeOnly, err := venue.homeOnly()
	if err != nil {
		return err
	}

	var strategy backtest.Strategy
	switch *strategyName {
	case "league":
		scoring, ok := feature.Strategies[*scoringName]
		if !ok {
			return fmt.Errorf("%w: unknown scoring %q", ErrUsage, *scoringName)
		}
		strategy = backtest.LeagueStrategy{Scoring: scoring, Normalize: *normalize, HomeOnly: homeOnly}
	case "model":
		build, boosted, err := modelBuilder(*model, *normalize, cfg.Predictor.HomeAdvantageBoost)
		if err != nil {
			return err
		}
		strategy = backtest.ModelStrategy{
			Label:    "model " + *model,
			Build:    build,
			Template: predictorTemplate(cfg, cfg.Predictor.Threshold, cfg.Predictor.HomeAdvantageBoost, boosted),
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrUsage, *strategyName)
	}

	db, store, err := app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	e := backtest.NewEvaluator(store, strategy, start, *interval)
	if *logPredictions {
		if e.Log, err = backtest.NewPredictionLog(db); err != nil {
			return err
		}
		logger.Info("Logging predictions under run", e.RunID())
	}

	summaries, err := e.Run(windows)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Predictive performance of %s, window sizes in %s\n", strategy.Name(), *unit)
	if err := backtest.WriteSummary(app.Out, summaries); err != nil {
		return err
	}
	if *grid {
		fmt.Fprintln(app.Out)
		return backtest.WriteGrid(app.Out, "Results prediction performance for "+strategy.Name(), summaries)
	}
	return nil
}
