package feature

import (
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// Scoring strategies over windowed team statistics. Each can back a league
// table or a predictor without touching the aggregator.

// PointsThenGoalDiff ranks on points, then goal difference. This is the
// ordinary league table ordering.
func PointsThenGoalDiff(s stats.TeamWindowStats) []float64 {
	return []float64{s.Points(), s.GoalDiff()}
}

// PremierLeague approximates the league ranking as a single number by adding
// a nudge from goal difference far too small to ever outweigh a point.
func PremierLeague(s stats.TeamWindowStats) []float64 {
	return []float64{s.Points() + s.GoalDiff()/1000000}
}

// PremierLeagueCoarse is PremierLeague with a larger goal difference weight
func PremierLeagueCoarse(s stats.TeamWindowStats) []float64 {
	return []float64{s.Points() + s.GoalDiff()/1000}
}

func Points(s stats.TeamWindowStats) []float64 {
	return []float64{s.Points()}
}

func GoalDiff(s stats.TeamWindowStats) []float64 {
	return []float64{s.GoalDiff()}
}

// WinRate is wins per match played, zero with no matches
func WinRate(s stats.TeamWindowStats) []float64 {
	return []float64{rate(s.Won, s.Played)}
}

// DrawRate is draws per match played, zero with no matches
func DrawRate(s stats.TeamWindowStats) []float64 {
	return []float64{rate(s.Drawn, s.Played)}
}

// LossRate is negated so that fewer losses rank higher
func LossRate(s stats.TeamWindowStats) []float64 {
	return []float64{-rate(s.Lost, s.Played)}
}

func rate(n, played int) float64 {
	if played == 0 {
		return 0
	}
	return float64(n) / float64(played)
}

// Strategies maps the names accepted on the command line to scoring functions
var Strategies = map[string]ScoringFn[stats.TeamWindowStats]{
	"league":         PointsThenGoalDiff,
	"premier":        PremierLeague,
	"premier-coarse": PremierLeagueCoarse,
	"points":         Points,
	"goal-diff":      GoalDiff,
	"win-rate":       WinRate,
	"draw-rate":      DrawRate,
	"loss-rate":      LossRate,
}

// GroundCapacities2016 are stadium capacities of the 2016/17 Premier League clubs
var GroundCapacities2016 = map[string]float64{
	"Chelsea": 41663, "Tottenham Hotspur": 36284, "Manchester City": 55097, "Liverpool": 54074,
	"Arsenal": 60432, "Manchester United": 75643, "Everton": 39572, "Southampton": 32505,
	"Bournemouth": 11464, "West Bromwich Albion": 26852, "West Ham United": 60000, "Leicester City": 32315,
	"Stoke City": 27902, "Crystal Palace": 25456, "Swansea City": 21088, "Burnley": 21800, "Watford": 21438,
	"Hull City": 25450, "Middlesbrough": 33746, "Sunderland": 49000,
}
