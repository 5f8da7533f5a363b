package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// StatsFactory builds each team's model from its stats over spec ending at ref.
// Count windows that find fewer than spec.N matches are flagged as bad data.
func StatsFactory(agg *stats.Aggregator, spec stats.WindowSpec, ref time.Time, opts stats.Options,
	fn ScoringFn[stats.TeamWindowStats]) Factory {
	return func(team string) (Model, error) {
		s, err := agg.Compute(team, spec, ref, opts)
		if err != nil {
			return Model{}, err
		}
		return Make(s, team, fn, sufficiency(spec, ref, s)...)
	}
}

// HomeAwayGoalDiffFactory gives each team a [home goal diff, away goal diff]
// model from separate home-only and away-only windows. The model source is
// the combined stats.
func HomeAwayGoalDiffFactory(agg *stats.Aggregator, spec stats.WindowSpec, ref time.Time, normalize bool) Factory {
	return func(team string) (Model, error) {
		home, err := agg.Compute(team, spec, ref, stats.Options{HomeOnly: stats.Bool(true), Normalize: normalize})
		if err != nil {
			return Model{}, err
		}
		away, err := agg.Compute(team, spec, ref, stats.Options{HomeOnly: stats.Bool(false), Normalize: normalize})
		if err != nil {
			return Model{}, err
		}
		both, err := home.Add(away)
		if err != nil {
			return Model{}, err
		}

		var reasons []string
		if r, short := shortfall(spec, ref, home); short {
			reasons = append(reasons, "home: "+r)
		}
		if r, short := shortfall(spec, ref, away); short {
			reasons = append(reasons, "away: "+r)
		}
		var opts []Option
		if len(reasons) > 0 {
			opts = append(opts, WithBadData(strings.Join(reasons, ", ")))
		}
		return Make(both, team, func(stats.TeamWindowStats) []float64 {
			return []float64{home.GoalDiff(), away.GoalDiff()}
		}, opts...)
	}
}

// BoostedGoalDiffFactory gives each team [boost + goal diff, goal diff], so
// the team's home signal carries a fixed home advantage.
func BoostedGoalDiffFactory(agg *stats.Aggregator, spec stats.WindowSpec, ref time.Time, normalize bool, boost float64) Factory {
	return StatsFactory(agg, spec, ref, stats.Options{Normalize: normalize}, func(s stats.TeamWindowStats) []float64 {
		return []float64{boost + s.GoalDiff(), s.GoalDiff()}
	})
}

// GroundCapacityFactory uses stadium capacity as a proxy for club size:
// [boost*capacity + capacity, capacity]. Unknown grounds give a zero model
// flagged as bad data.
func GroundCapacityFactory(capacities map[string]float64, boost float64) Factory {
	return func(team string) (Model, error) {
		capacity, ok := capacities[team]
		if !ok {
			return Make([]float64{0, 0}, team, nil, WithBadData(fmt.Sprintf("no ground capacity for %s", team)))
		}
		return Make(capacity, team, func(c float64) []float64 {
			return []float64{boost*c + c, c}
		})
	}
}

func sufficiency(spec stats.WindowSpec, ref time.Time, s stats.TeamWindowStats) []Option {
	if reason, short := shortfall(spec, ref, s); short {
		return []Option{WithBadData(reason)}
	}
	return nil
}

// shortfall describes a count window that found fewer matches than asked for
func shortfall(spec stats.WindowSpec, ref time.Time, s stats.TeamWindowStats) (string, bool) {
	if spec.Kind != stats.CountWindow || s.Played >= spec.N {
		return "", false
	}
	return fmt.Sprintf("only %d of %d samples up to %s", s.Played, spec.N, ref.Format(results.DateLayout)), true
}
