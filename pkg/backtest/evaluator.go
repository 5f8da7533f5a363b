package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

const day = 24 * time.Hour

// Period is the accuracy of one checkpoint. Carried periods had no fixtures
// and repeat the previous period's percentage.
type Period struct {
	Checkpoint time.Time
	Matches    int
	Correct    int
	Percent    float64
	Carried    bool
}

// Summary is the accuracy of one window size across the season
type Summary struct {
	Window  stats.WindowSpec
	Mean    float64
	StdDev  float64
	Periods []Period
}

// Percents returns the per period percentages in checkpoint order
func (s Summary) Percents() []float64 {
	ret := make([]float64, len(s.Periods))
	for i, p := range s.Periods {
		ret[i] = p.Percent
	}
	return ret
}

// Evaluator walks forward through a season, checking a strategy's calls
// against the results that followed each checkpoint.
type Evaluator struct {
	Source   results.Source
	Strategy Strategy
	// First is the first checkpoint; later ones follow every Interval
	First    time.Time
	Interval time.Duration
	// Log, when set, records every prediction made
	Log *PredictionLog

	runID string
}

func NewEvaluator(source results.Source, strategy Strategy, first time.Time, interval time.Duration) *Evaluator {
	return &Evaluator{
		Source:   source,
		Strategy: strategy,
		First:    results.Day(first),
		Interval: interval,
		runID:    uuid.NewString(),
	}
}

// RunID identifies this evaluator's rows in the prediction log
func (e *Evaluator) RunID() string {
	return e.runID
}

// Checkpoints lists every checkpoint from First that is not after the last
// match in the source
func (e *Evaluator) Checkpoints() ([]time.Time, error) {
	if e.Interval < day {
		return nil, fmt.Errorf("interval %s is shorter than a day", e.Interval)
	}
	dates, err := e.Source.Dates()
	if err != nil {
		return nil, fmt.Errorf("failed to list match dates: %w", err)
	}
	if len(dates) == 0 {
		return nil, nil
	}
	last := dates[len(dates)-1]

	var ret []time.Time
	for t := e.First; !t.After(last); t = t.Add(e.Interval) {
		ret = append(ret, t)
	}
	return ret, nil
}

// Run evaluates every window size in turn
func (e *Evaluator) Run(windows []stats.WindowSpec) ([]Summary, error) {
	checkpoints, err := e.Checkpoints()
	if err != nil {
		return nil, err
	}
	teams, err := e.Source.Teams()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	// fixtures following each checkpoint are shared by every window
	fixtures := make([][]results.MatchRecord, len(checkpoints))
	for i, t := range checkpoints {
		fixtures[i], err = e.Source.Range(t.Add(day), t.Add(e.Interval))
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures after %s: %w", t.Format(results.DateLayout), err)
		}
	}

	logger.Info("Evaluating", e.Strategy.Name(), "over", len(checkpoints), "checkpoints and", len(windows), "windows")
	agg := stats.NewAggregator(e.Source)
	ret := make([]Summary, 0, len(windows))
	for _, w := range windows {
		s, err := e.evaluate(agg, w, teams, checkpoints, fixtures)
		if err != nil {
			return nil, err
		}
		logger.Info("Window", w.String(), "mean", fmt.Sprintf("%.2f", s.Mean), "stddev", fmt.Sprintf("%.2f", s.StdDev))
		ret = append(ret, s)
	}
	return ret, nil
}

func (e *Evaluator) evaluate(agg *stats.Aggregator, w stats.WindowSpec, teams []string,
	checkpoints []time.Time, fixtures [][]results.MatchRecord) (Summary, error) {
	ret := Summary{Window: w}

	for i, t := range checkpoints {
		if len(fixtures[i]) == 0 {
			// nothing to carry before the first scored period
			if len(ret.Periods) == 0 {
				logger.Debug("No fixtures after", t.Format(results.DateLayout), "and nothing to carry")
				continue
			}
			prev := ret.Periods[len(ret.Periods)-1]
			logger.Debug("No fixtures after", t.Format(results.DateLayout), "carrying", prev.Percent)
			ret.Periods = append(ret.Periods, Period{Checkpoint: t, Percent: prev.Percent, Carried: true})
			continue
		}

		f, err := e.Strategy.Prepare(agg, w, t, teams)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to prepare %s for %s at %s: %w", e.Strategy.Name(), w, t.Format(results.DateLayout), err)
		}

		p := Period{Checkpoint: t, Matches: len(fixtures[i])}
		var entries []*PredictionEntry
		for _, m := range fixtures[i] {
			pred, err := f.Forecast(m.HomeTeam, m.AwayTeam)
			if err != nil {
				return Summary{}, fmt.Errorf("failed to forecast %s v %s: %w", m.HomeTeam, m.AwayTeam, err)
			}
			correct := pred.Outcome == m.Outcome()
			if correct {
				p.Correct++
			}
			logger.Debug(m.String(), "predicted", string(pred.Outcome), "correct", correct)
			if e.Log != nil {
				entries = append(entries, newPredictionEntry(e.runID, e.Strategy.Name(), w, m, pred, correct))
			}
		}
		p.Percent = 100.0 * float64(p.Correct) / float64(p.Matches)
		ret.Periods = append(ret.Periods, p)

		if e.Log != nil {
			if err := e.Log.Record(entries); err != nil {
				return Summary{}, err
			}
		}
	}

	ret.Mean, ret.StdDev = MeanStdDev(ret.Percents())
	return ret, nil
}

// MeanStdDev returns the mean and sample standard deviation of values.
// The deviation is zero for fewer than two values.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}

	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}
