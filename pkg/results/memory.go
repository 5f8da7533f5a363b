package results

import (
	"sort"
	"time"
)

// MemoryStore is a Source over an in-memory slice of records
type MemoryStore struct {
	records []MatchRecord
}

// NewMemoryStore returns a store holding records in canonical order
func NewMemoryStore(records ...MatchRecord) *MemoryStore {
	s := &MemoryStore{}
	s.Add(records...)
	return s
}

// Add appends records, normalising dates to whole days
func (s *MemoryStore) Add(records ...MatchRecord) {
	for _, r := range records {
		r.Date = Day(r.Date)
		s.records = append(s.records, r)
	}
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Less(s.records[j])
	})
}

func (s *MemoryStore) Teams() ([]string, error) {
	seen := map[string]bool{}
	var teams []string
	for _, r := range s.records {
		for _, t := range []string{r.HomeTeam, r.AwayTeam} {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	sort.Strings(teams)
	return teams, nil
}

func (s *MemoryStore) Dates() ([]time.Time, error) {
	var dates []time.Time
	for _, r := range s.records {
		if len(dates) == 0 || !dates[len(dates)-1].Equal(r.Date) {
			dates = append(dates, r.Date)
		}
	}
	return dates, nil
}

func (s *MemoryStore) Range(from, to time.Time) ([]MatchRecord, error) {
	from, to = Day(from), Day(to)
	return s.filter(func(r MatchRecord) bool {
		return !r.Date.Before(from) && !r.Date.After(to)
	}), nil
}

func (s *MemoryStore) OnDate(day time.Time) ([]MatchRecord, error) {
	day = Day(day)
	return s.filter(func(r MatchRecord) bool { return r.Date.Equal(day) }), nil
}

func (s *MemoryStore) InWindow(team string, after, upTo time.Time, venue Venue) ([]MatchRecord, error) {
	after, upTo = Day(after), Day(upTo)
	return s.filter(func(r MatchRecord) bool {
		return r.Date.After(after) && !r.Date.After(upTo) && r.Involves(team, venue)
	}), nil
}

func (s *MemoryStore) MostRecent(team string, cutoff time.Time, n int, venue Venue) ([]MatchRecord, error) {
	cutoff = Day(cutoff)
	var out []MatchRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		r := s.records[i]
		if !r.Date.After(cutoff) && r.Involves(team, venue) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) filter(keep func(MatchRecord) bool) []MatchRecord {
	var out []MatchRecord
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
