package stats

import (
	"testing"
	"time"

	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := results.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// arsenalSeason builds 32 weekly Arsenal fixtures totalling 18 wins, 6 draws,
// 8 losses, 64 scored and 40 conceded, alternating home and away, plus two
// fixtures just outside a 40 week window ending 2017-04-28.
func arsenalSeason() []results.MatchRecord {
	type score struct{ f, a int }
	var scores []score
	for i := 0; i < 18; i++ {
		scores = append(scores, score{2, 0})
	}
	for i := 0; i < 6; i++ {
		scores = append(scores, score{1, 1})
	}
	for i := 0; i < 6; i++ {
		scores = append(scores, score{3, 4})
	}
	scores = append(scores, score{2, 5}, score{2, 5})

	var out []results.MatchRecord
	first := day("2016-08-13")
	for i, sc := range scores {
		m := results.MatchRecord{Date: first.AddDate(0, 0, 7*i)}
		if i%2 == 0 {
			m.HomeTeam, m.HomeScore, m.AwayTeam, m.AwayScore = "Arsenal", sc.f, "Opponent", sc.a
		} else {
			m.HomeTeam, m.HomeScore, m.AwayTeam, m.AwayScore = "Opponent", sc.a, "Arsenal", sc.f
		}
		out = append(out, m)
	}
	out = append(out,
		results.MatchRecord{Date: day("2016-07-22"), HomeTeam: "Arsenal", HomeScore: 9, AwayTeam: "Opponent", AwayScore: 0},
		results.MatchRecord{Date: day("2017-04-29"), HomeTeam: "Arsenal", HomeScore: 9, AwayTeam: "Opponent", AwayScore: 0},
	)
	return out
}

func TestComputeDurationWindow(t *testing.T) {
	agg := NewAggregator(results.NewMemoryStore(arsenalSeason()...))

	s, err := agg.Compute("Arsenal", Weeks(40), day("2017-04-28"), Options{})
	require.NoError(t, err)

	assert.Equal(t, 32, s.Played)
	assert.Equal(t, 18, s.Won)
	assert.Equal(t, 6, s.Drawn)
	assert.Equal(t, 8, s.Lost)
	assert.Equal(t, 64, s.ScoreFor)
	assert.Equal(t, 40, s.ScoreAgainst)
	assert.Equal(t, 24.0, s.GoalDiff())
	assert.Equal(t, 60.0, s.Points())
	assert.Equal(t, s.Played, s.Won+s.Drawn+s.Lost)
	require.NotNil(t, s.CoverFrom)
	assert.Equal(t, day("2016-07-23"), *s.CoverFrom)
	assert.Equal(t, day("2017-04-28"), *s.CoverTo)

	n, err := agg.Compute("Arsenal", Weeks(40), day("2017-04-28"), Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, 0.75, n.GoalDiff())
	assert.Equal(t, 1.875, n.Points())
}

func TestComputeWindowBoundaries(t *testing.T) {
	src := results.NewMemoryStore(
		results.MatchRecord{Date: day("2017-04-21"), HomeTeam: "Burnley", HomeScore: 1, AwayTeam: "Everton", AwayScore: 0},
		results.MatchRecord{Date: day("2017-04-28"), HomeTeam: "Everton", HomeScore: 2, AwayTeam: "Burnley", AwayScore: 2},
	)
	agg := NewAggregator(src)

	// a one week window holds the end date but not the start date
	s, err := agg.Compute("Burnley", Weeks(1), day("2017-04-28"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Played)
	assert.Equal(t, 1, s.Drawn)

	s, err = agg.Compute("Burnley", Days(8), day("2017-04-28"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Played)
}

func TestComputeNoData(t *testing.T) {
	agg := NewAggregator(results.NewMemoryStore(arsenalSeason()...))

	for _, spec := range []WindowSpec{Weeks(4), Samples(10)} {
		s, err := agg.Compute("Sunderland", spec, day("2017-04-28"), Options{Normalize: true})
		require.NoError(t, err)
		assert.Equal(t, "Sunderland", s.Team)
		assert.Zero(t, s.Played)
		assert.Zero(t, s.Won)
		assert.Zero(t, s.Drawn)
		assert.Zero(t, s.Lost)
		assert.Zero(t, s.ScoreFor)
		assert.Zero(t, s.ScoreAgainst)
		assert.Zero(t, s.Points())
		assert.Zero(t, s.GoalDiff())
	}
}

func TestComputeVenues(t *testing.T) {
	agg := NewAggregator(results.NewMemoryStore(arsenalSeason()...))
	end := day("2017-04-28")

	home, err := agg.Compute("Arsenal", Weeks(40), end, Options{HomeOnly: Bool(true)})
	require.NoError(t, err)
	away, err := agg.Compute("Arsenal", Weeks(40), end, Options{HomeOnly: Bool(false)})
	require.NoError(t, err)
	both, err := agg.Compute("Arsenal", Weeks(40), end, Options{})
	require.NoError(t, err)

	assert.Equal(t, 16, home.Played)
	assert.Equal(t, 16, away.Played)

	sum, err := home.Add(away)
	require.NoError(t, err)
	assert.Equal(t, both.Row(), sum.Row())
}

func TestComputeCountWindow(t *testing.T) {
	agg := NewAggregator(results.NewMemoryStore(arsenalSeason()...))

	s, err := agg.Compute("Arsenal", Samples(3), day("2017-04-28"), Options{})
	require.NoError(t, err)
	// the last three fixtures are two 2-5 defeats preceded by a 3-4 defeat
	assert.Equal(t, 3, s.Played)
	assert.Equal(t, 3, s.Lost)
	assert.Equal(t, 7, s.ScoreFor)
	assert.Equal(t, 14, s.ScoreAgainst)
	require.NotNil(t, s.CoverFrom)
	assert.Equal(t, day("2016-08-13").AddDate(0, 0, 7*29), *s.CoverFrom)
	assert.Equal(t, day("2017-04-28"), *s.CoverTo)

	// fewer matches than requested is not an error
	s, err = agg.Compute("Arsenal", Samples(500), day("2017-04-28"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 33, s.Played)
	assert.Equal(t, day("2016-07-22"), *s.CoverFrom)

	s, err = agg.Compute("Arsenal", Samples(5), day("2016-01-01"), Options{})
	require.NoError(t, err)
	assert.Zero(t, s.Played)
	assert.Nil(t, s.CoverFrom)
	assert.Equal(t, day("2016-01-01"), *s.CoverTo)
}

func TestAddAssociativeAndChecksTeam(t *testing.T) {
	a := TeamWindowStats{Team: "Chelsea", Played: 2, Won: 1, Drawn: 1, ScoreFor: 3, ScoreAgainst: 1}
	b := TeamWindowStats{Team: "Chelsea", Played: 1, Lost: 1, ScoreFor: 0, ScoreAgainst: 2}
	c := TeamWindowStats{Team: "Chelsea", Played: 3, Won: 3, ScoreFor: 7, ScoreAgainst: 0}

	ab, err := a.Add(b)
	require.NoError(t, err)
	abc1, err := ab.Add(c)
	require.NoError(t, err)

	bc, err := b.Add(c)
	require.NoError(t, err)
	abc2, err := a.Add(bc)
	require.NoError(t, err)

	assert.Equal(t, abc1.Row(), abc2.Row())
	assert.Equal(t, [6]int{6, 4, 1, 1, 10, 3}, abc1.Row())
	assert.Equal(t, 13.0, abc1.Points())
	assert.Equal(t, 7.0, abc1.GoalDiff())

	// operands are untouched
	assert.Equal(t, 2, a.Played)

	_, err = a.Add(TeamWindowStats{Team: "Arsenal"})
	assert.ErrorIs(t, err, ErrTeamMismatch)

	raw := TeamWindowStats{Team: "Chelsea", Played: 1, Won: 1}
	normalized := TeamWindowStats{Team: "Chelsea", Played: 1, Drawn: 1, Normalize: true}
	_, err = raw.Add(normalized)
	assert.ErrorIs(t, err, ErrNormalizeMismatch)
	_, err = normalized.Add(raw)
	assert.ErrorIs(t, err, ErrNormalizeMismatch)
}

func TestAddCover(t *testing.T) {
	early, late := day("2016-08-13"), day("2017-04-28")
	a := TeamWindowStats{Team: "Chelsea", CoverFrom: &late, CoverTo: &late}
	b := TeamWindowStats{Team: "Chelsea", CoverFrom: &early}

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, early, *sum.CoverFrom)
	assert.Equal(t, late, *sum.CoverTo)
}

func TestWindowSpecString(t *testing.T) {
	assert.Equal(t, "40 weeks", Weeks(40).String())
	assert.Equal(t, "10 days", Days(10).String())
	assert.Equal(t, "76 samples", Samples(76).String())
}
