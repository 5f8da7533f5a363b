package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/richard-senior/predictomatic/pkg/results"
)

// ErrTeamMismatch is returned when stats for two different teams are combined
var ErrTeamMismatch = errors.New("team names do not match")

// ErrNormalizeMismatch is returned when normalized and raw stats are combined
var ErrNormalizeMismatch = errors.New("normalize settings do not match")

// TeamWindowStats is a team's record over one window.
// Played always equals Won + Drawn + Lost.
type TeamWindowStats struct {
	Team         string     `json:"team"`
	Played       int        `json:"played"`
	Won          int        `json:"won"`
	Drawn        int        `json:"drawn"`
	Lost         int        `json:"lost"`
	ScoreFor     int        `json:"score_for"`
	ScoreAgainst int        `json:"score_against"`
	CoverFrom    *time.Time `json:"cover_from"`
	CoverTo      *time.Time `json:"cover_to"`
	// Normalize divides Points and GoalDiff by Played
	Normalize bool `json:"normalize"`
}

// RawPoints is 3 per win and 1 per draw
func (s TeamWindowStats) RawPoints() int {
	return 3*s.Won + s.Drawn
}

// RawGoalDiff is goals scored minus goals conceded
func (s TeamWindowStats) RawGoalDiff() int {
	return s.ScoreFor - s.ScoreAgainst
}

func (s TeamWindowStats) denominator() float64 {
	if s.Normalize && s.Played > 0 {
		return float64(s.Played)
	}
	return 1
}

// Points is RawPoints, per match played when Normalize is set
func (s TeamWindowStats) Points() float64 {
	return float64(s.RawPoints()) / s.denominator()
}

// GoalDiff is RawGoalDiff, per match played when Normalize is set
func (s TeamWindowStats) GoalDiff() float64 {
	return float64(s.RawGoalDiff()) / s.denominator()
}

// Add sums the counters of two partial aggregates of the same team into a new value.
// Neither operand is modified. Both operands must share the same Normalize setting.
func (s TeamWindowStats) Add(o TeamWindowStats) (TeamWindowStats, error) {
	if s.Team != o.Team {
		return TeamWindowStats{}, fmt.Errorf("%w, %s and %s", ErrTeamMismatch, s.Team, o.Team)
	}
	if s.Normalize != o.Normalize {
		return TeamWindowStats{}, fmt.Errorf("%w for %s", ErrNormalizeMismatch, s.Team)
	}
	sum := s
	sum.Played += o.Played
	sum.Won += o.Won
	sum.Drawn += o.Drawn
	sum.Lost += o.Lost
	sum.ScoreFor += o.ScoreFor
	sum.ScoreAgainst += o.ScoreAgainst
	sum.CoverFrom = earliest(s.CoverFrom, o.CoverFrom)
	sum.CoverTo = latest(s.CoverTo, o.CoverTo)
	return sum, nil
}

// tally adds one match seen from s.Team's side
func (s *TeamWindowStats) tally(m results.MatchRecord) {
	scored, conceded := m.HomeScore, m.AwayScore
	if m.HomeTeam != s.Team {
		scored, conceded = m.AwayScore, m.HomeScore
	}
	s.Played++
	s.ScoreFor += scored
	s.ScoreAgainst += conceded
	switch {
	case scored > conceded:
		s.Won++
	case scored < conceded:
		s.Lost++
	default:
		s.Drawn++
	}
}

// Row returns the tabular fields used in league output:
// played, won, drawn, lost, for, against
func (s TeamWindowStats) Row() [6]int {
	return [6]int{s.Played, s.Won, s.Drawn, s.Lost, s.ScoreFor, s.ScoreAgainst}
}

func (s TeamWindowStats) String() string {
	return fmt.Sprintf("[%s %d %d %d %d %d %d %g %g]", s.Team, s.Played, s.Won, s.Drawn, s.Lost,
		s.ScoreFor, s.ScoreAgainst, s.GoalDiff(), s.Points())
}

func earliest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	default:
		return a
	}
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
