package results

import (
	"fmt"
	"time"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/persist"
)

// resultRow is the persisted shape of a MatchRecord. The column names match the
// historical `results` table so existing season databases can be read as is.
type resultRow struct {
	Date      string `column:"date" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	HomeTeam  string `column:"home_team" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	HomeScore int    `column:"home_score" dbtype:"INTEGER NOT NULL"`
	AwayTeam  string `column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayScore int    `column:"away_score" dbtype:"INTEGER NOT NULL"`
}

func (r *resultRow) TableName() string { return "results" }

func (r *resultRow) PrimaryKey() map[string]any {
	return map[string]any{"date": r.Date, "home_team": r.HomeTeam}
}

func toRow(m MatchRecord) *resultRow {
	return &resultRow{
		Date:      Day(m.Date).Format(DateLayout),
		HomeTeam:  m.HomeTeam,
		HomeScore: m.HomeScore,
		AwayTeam:  m.AwayTeam,
		AwayScore: m.AwayScore,
	}
}

func (r resultRow) record() (MatchRecord, error) {
	d, err := ParseDay(r.Date)
	if err != nil {
		return MatchRecord{}, err
	}
	return MatchRecord{Date: d, HomeTeam: r.HomeTeam, HomeScore: r.HomeScore, AwayTeam: r.AwayTeam, AwayScore: r.AwayScore}, nil
}

// SQLStore is a Source backed by a sqlite or postgres `results` table
type SQLStore struct {
	db *persist.DB
}

// NewSQLStore wraps an open connection. The caller keeps ownership of db.
func NewSQLStore(db *persist.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the results table if it does not exist
func (s *SQLStore) Migrate() error {
	if err := s.db.CreateTable(&resultRow{}); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// SaveMatches upserts records keyed on (date, home team)
func (s *SQLStore) SaveMatches(records []MatchRecord) error {
	objs := make([]persist.Persistable, 0, len(records))
	for _, m := range records {
		objs = append(objs, toRow(m))
	}
	if err := s.db.BulkSave(objs); err != nil {
		return fmt.Errorf("failed to save matches: %w", err)
	}
	logger.Info("Saved matches", len(records))
	return nil
}

func (s *SQLStore) Teams() ([]string, error) {
	rows, err := s.db.SQL().Query("SELECT home_team FROM results UNION SELECT away_team FROM results ORDER BY 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLStore) Dates() ([]time.Time, error) {
	rows, err := s.db.SQL().Query("SELECT DISTINCT date FROM results ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		d, err := ParseDay(raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *SQLStore) Range(from, to time.Time) ([]MatchRecord, error) {
	return s.find("date BETWEEN ? AND ? ORDER BY date ASC, home_team ASC", day(from), day(to))
}

func (s *SQLStore) OnDate(d time.Time) ([]MatchRecord, error) {
	return s.find("date = ? ORDER BY date ASC, home_team ASC", day(d))
}

func (s *SQLStore) InWindow(team string, after, upTo time.Time, venue Venue) ([]MatchRecord, error) {
	clause, args := venueClause(team, venue)
	args = append([]any{day(after), day(upTo)}, args...)
	return s.find("date > ? AND date <= ? AND "+clause+" ORDER BY date ASC, home_team ASC", args...)
}

func (s *SQLStore) MostRecent(team string, cutoff time.Time, n int, venue Venue) ([]MatchRecord, error) {
	clause, args := venueClause(team, venue)
	args = append([]any{day(cutoff)}, args...)
	args = append(args, n)
	return s.find("date <= ? AND "+clause+" ORDER BY date DESC, home_team DESC LIMIT ?", args...)
}

func (s *SQLStore) find(where string, args ...any) ([]MatchRecord, error) {
	rows, err := persist.FindWhere[resultRow](s.db, where, args...)
	if err != nil {
		return nil, err
	}
	out := make([]MatchRecord, 0, len(rows))
	for _, r := range rows {
		m, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func venueClause(team string, venue Venue) (string, []any) {
	switch venue {
	case Home:
		return "home_team = ?", []any{team}
	case Away:
		return "away_team = ?", []any{team}
	default:
		return "(home_team = ? OR away_team = ?)", []any{team, team}
	}
}

func day(t time.Time) string {
	return Day(t).Format(DateLayout)
}
