package backtest

import (
	"fmt"
	"time"

	"github.com/richard-senior/predictomatic/pkg/feature"
	"github.com/richard-senior/predictomatic/pkg/league"
	"github.com/richard-senior/predictomatic/pkg/predict"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// Forecaster calls the outcome of a fixture from data gathered up to a cutoff
type Forecaster interface {
	Forecast(home, away string) (predict.Prediction, error)
}

// Strategy prepares a Forecaster for one checkpoint and window
type Strategy interface {
	Name() string
	Prepare(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time, teams []string) (Forecaster, error)
}

// LeagueStrategy predicts that the higher placed team wins and that teams
// sharing a position draw.
type LeagueStrategy struct {
	Scoring   feature.ScoringFn[stats.TeamWindowStats]
	Normalize bool
	HomeOnly  *bool
}

func (s LeagueStrategy) Name() string {
	name := "league"
	if s.Normalize {
		name += ", normalized"
	}
	if s.HomeOnly != nil {
		name += ", " + results.VenueFor(s.HomeOnly).String() + " only"
	}
	return name
}

func (s LeagueStrategy) Prepare(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time, teams []string) (Forecaster, error) {
	all, err := agg.ComputeAll(teams, spec, cutoff, stats.Options{HomeOnly: s.HomeOnly, Normalize: s.Normalize})
	if err != nil {
		return nil, err
	}
	scoring := s.Scoring
	if scoring == nil {
		scoring = feature.PointsThenGoalDiff
	}
	l, err := league.FromStats(all, scoring)
	if err != nil {
		return nil, err
	}
	return positionForecaster{league: l}, nil
}

type positionForecaster struct {
	league *league.League
}

// Forecast turns positions into metrics where bigger is better, so the margin
// is the number of places the home team sits above the away team.
func (f positionForecaster) Forecast(home, away string) (predict.Prediction, error) {
	hp, ok := f.league.Position(home)
	if !ok {
		return predict.Prediction{}, fmt.Errorf("%w: %s", predict.ErrMissingModel, home)
	}
	ap, ok := f.league.Position(away)
	if !ok {
		return predict.Prediction{}, fmt.Errorf("%w: %s", predict.ErrMissingModel, away)
	}

	size := f.league.Len()
	homeMetric, awayMetric := float64(size-hp), float64(size-ap)
	ret := predict.Prediction{Outcome: results.Draw, Margin: homeMetric - awayMetric}
	if homeMetric > awayMetric {
		ret.Outcome = results.HomeWin
	} else if homeMetric < awayMetric {
		ret.Outcome = results.AwayWin
	}
	return ret, nil
}

// FactoryBuilder returns the model factory for one window and cutoff
type FactoryBuilder func(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time) feature.Factory

// ModelStrategy builds a model for every team and hands them to a Predictor
// configured like Template.
type ModelStrategy struct {
	Label    string
	Build    FactoryBuilder
	Template predict.Predictor
}

func (s ModelStrategy) Name() string {
	if s.Label == "" {
		return "model"
	}
	return s.Label
}

func (s ModelStrategy) Prepare(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time, teams []string) (Forecaster, error) {
	models, err := feature.CreateModelsForAllTeams(s.Build(agg, spec, cutoff), teams)
	if err != nil {
		return nil, err
	}
	p := s.Template
	p.Models = models
	return predictorForecaster{p: &p}, nil
}

type predictorForecaster struct {
	p *predict.Predictor
}

func (f predictorForecaster) Forecast(home, away string) (predict.Prediction, error) {
	return f.p.Predict(home, away)
}

// StatsModels is a FactoryBuilder scoring windowed stats with fn
func StatsModels(fn feature.ScoringFn[stats.TeamWindowStats], opts stats.Options) FactoryBuilder {
	return func(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time) feature.Factory {
		return feature.StatsFactory(agg, spec, cutoff, opts, fn)
	}
}

// HomeAwayGoalDiffModels is a FactoryBuilder giving [home gd, away gd] models
func HomeAwayGoalDiffModels(normalize bool) FactoryBuilder {
	return func(agg *stats.Aggregator, spec stats.WindowSpec, cutoff time.Time) feature.Factory {
		return feature.HomeAwayGoalDiffFactory(agg, spec, cutoff, normalize)
	}
}
