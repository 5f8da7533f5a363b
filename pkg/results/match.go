package results

import (
	"fmt"
	"time"
)

// DateLayout is how match dates are written in stores, files and on the command line
const DateLayout = "2006-01-02"

// Outcome of a match from the home team's point of view
type Outcome string

const (
	HomeWin Outcome = "home_win"
	AwayWin Outcome = "away_win"
	Draw    Outcome = "draw"
)

// Venue restricts which of a team's matches are considered
type Venue int

const (
	Either Venue = iota
	Home
	Away
)

func (v Venue) String() string {
	switch v {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return "either"
	}
}

// VenueFor maps the tri-state home-only flag onto a Venue: nil means either,
// true home matches only and false away matches only.
func VenueFor(homeOnly *bool) Venue {
	if homeOnly == nil {
		return Either
	}
	if *homeOnly {
		return Home
	}
	return Away
}

// MatchRecord is a single completed fixture
type MatchRecord struct {
	Date      time.Time `json:"date"`
	HomeTeam  string    `json:"home_team"`
	HomeScore int       `json:"home_score"`
	AwayTeam  string    `json:"away_team"`
	AwayScore int       `json:"away_score"`
}

// Day truncates t to a UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

// Outcome returns the actual result of the match
func (m MatchRecord) Outcome() Outcome {
	switch {
	case m.HomeScore > m.AwayScore:
		return HomeWin
	case m.HomeScore < m.AwayScore:
		return AwayWin
	default:
		return Draw
	}
}

// Involves reports whether team played in the match at the given venue
func (m MatchRecord) Involves(team string, venue Venue) bool {
	switch venue {
	case Home:
		return m.HomeTeam == team
	case Away:
		return m.AwayTeam == team
	default:
		return m.HomeTeam == team || m.AwayTeam == team
	}
}

// Less orders records by date, then home team name
func (m MatchRecord) Less(o MatchRecord) bool {
	if !m.Date.Equal(o.Date) {
		return m.Date.Before(o.Date)
	}
	return m.HomeTeam < o.HomeTeam
}

func (m MatchRecord) String() string {
	return fmt.Sprintf("%s %s %d - %d %s", m.Date.Format(DateLayout), m.HomeTeam, m.HomeScore, m.AwayScore, m.AwayTeam)
}
