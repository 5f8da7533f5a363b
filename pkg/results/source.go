package results

import "time"

// Source is the query capability the analysis needs over historical results.
// Every list is ordered by date ascending then home team ascending, except
// MostRecent which is newest first.
type Source interface {
	// Teams lists every distinct team name, sorted
	Teams() ([]string, error)
	// Dates lists every distinct match date, ascending
	Dates() ([]time.Time, error)
	// Range returns matches with from <= date <= to
	Range(from, to time.Time) ([]MatchRecord, error)
	// OnDate returns the matches played on a single day
	OnDate(day time.Time) ([]MatchRecord, error)
	// InWindow returns team's matches at venue with after < date <= upTo
	InWindow(team string, after, upTo time.Time, venue Venue) ([]MatchRecord, error)
	// MostRecent returns at most n of team's matches at venue on or before cutoff, newest first
	MostRecent(team string, cutoff time.Time, n int, venue Venue) ([]MatchRecord, error)
}
