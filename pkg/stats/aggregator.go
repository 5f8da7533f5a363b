package stats

import (
	"fmt"
	"time"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/results"
)

// Options narrow a Compute call
type Options struct {
	// HomeOnly nil combines home and away matches, true keeps home matches and false away matches
	HomeOnly *bool
	// Normalize divides derived points and goal difference by matches played
	Normalize bool
}

// Bool returns a pointer to b, for Options.HomeOnly
func Bool(b bool) *bool {
	return &b
}

// Aggregator computes windowed statistics from a results source.
// Every call is independent; it holds no state beyond the source.
type Aggregator struct {
	source results.Source
}

func NewAggregator(source results.Source) *Aggregator {
	return &Aggregator{source: source}
}

// Source returns the results source the aggregator reads from
func (a *Aggregator) Source() results.Source {
	return a.source
}

// Compute aggregates team's matches in the window ending at ref.
// A team with no qualifying matches gets all-zero stats, never an error.
func (a *Aggregator) Compute(team string, spec WindowSpec, ref time.Time, opts Options) (TeamWindowStats, error) {
	ref = results.Day(ref)
	var s TeamWindowStats
	var err error

	switch spec.Kind {
	case DurationWindow:
		s, err = a.duration(team, spec, ref, opts.HomeOnly)
	case CountWindow:
		s, err = a.count(team, spec.N, ref, results.VenueFor(opts.HomeOnly))
	default:
		return TeamWindowStats{}, fmt.Errorf("unknown window kind %d", spec.Kind)
	}
	if err != nil {
		return TeamWindowStats{}, err
	}
	s.Normalize = opts.Normalize

	logger.Debug("Window stats", spec.String(), ref.Format(results.DateLayout), s.String())
	return s, nil
}

// ComputeAll runs Compute for each team, in the order given
func (a *Aggregator) ComputeAll(teams []string, spec WindowSpec, ref time.Time, opts Options) ([]TeamWindowStats, error) {
	out := make([]TeamWindowStats, 0, len(teams))
	for _, team := range teams {
		s, err := a.Compute(team, spec, ref, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to compute stats for %s: %w", team, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// duration handles (ref - length, ref]. With no venue restriction the home and
// away sides are aggregated separately then added, so that for/against never
// need flipping inside one pass.
func (a *Aggregator) duration(team string, spec WindowSpec, ref time.Time, homeOnly *bool) (TeamWindowStats, error) {
	start := results.Day(spec.Start(ref))
	if homeOnly != nil {
		return a.durationVenue(team, start, ref, results.VenueFor(homeOnly))
	}

	home, err := a.durationVenue(team, start, ref, results.Home)
	if err != nil {
		return TeamWindowStats{}, err
	}
	away, err := a.durationVenue(team, start, ref, results.Away)
	if err != nil {
		return TeamWindowStats{}, err
	}
	return home.Add(away)
}

func (a *Aggregator) durationVenue(team string, start, end time.Time, venue results.Venue) (TeamWindowStats, error) {
	matches, err := a.source.InWindow(team, start, end, venue)
	if err != nil {
		return TeamWindowStats{}, fmt.Errorf("failed to fetch %s matches for %s: %w", venue, team, err)
	}

	from := start.AddDate(0, 0, 1)
	to := end
	s := TeamWindowStats{Team: team, CoverFrom: &from, CoverTo: &to}
	for _, m := range matches {
		s.tally(m)
	}
	return s, nil
}

// count takes the n most recent matches in a single pass; splitting by venue
// would select up to n of each.
func (a *Aggregator) count(team string, n int, ref time.Time, venue results.Venue) (TeamWindowStats, error) {
	to := ref
	s := TeamWindowStats{Team: team, CoverTo: &to}
	if n <= 0 {
		return s, nil
	}

	matches, err := a.source.MostRecent(team, ref, n, venue)
	if err != nil {
		return TeamWindowStats{}, fmt.Errorf("failed to fetch recent matches for %s: %w", team, err)
	}
	for _, m := range matches {
		s.tally(m)
	}
	if len(matches) > 0 {
		from := matches[len(matches)-1].Date
		s.CoverFrom = &from
	}
	return s, nil
}
