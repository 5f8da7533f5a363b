package league

import (
	"fmt"
	"slices"

	"github.com/richard-senior/predictomatic/pkg/feature"
	"github.com/richard-senior/predictomatic/pkg/stats"
)

// Entry is one row of the flattened table
type Entry struct {
	Position int
	Model    feature.Model
}

// League ranks models into groups of ties, best first. Teams in one group share
// a position; the group after a tie is positioned by its row number, so five
// teams tied 8th are followed by the 13th placed team.
type League struct {
	groups        [][]feature.Model
	table         []Entry
	tableIdx      map[string]int
	tablePosition map[string]int
}

func New() *League {
	return &League{
		tableIdx:      map[string]int{},
		tablePosition: map[string]int{},
	}
}

// Build returns a league holding every model
func Build(models []feature.Model) *League {
	l := New()
	l.AddAll(models...)
	return l
}

// FromStats builds a league over a set of team stats using fn as the ranking key
func FromStats(teamStats []stats.TeamWindowStats, fn feature.ScoringFn[stats.TeamWindowStats]) (*League, error) {
	l := New()
	for _, s := range teamStats {
		m, err := feature.Make(s, s.Team, fn)
		if err != nil {
			return nil, fmt.Errorf("failed to make model for %s: %w", s.Team, err)
		}
		l.Add(m)
	}
	return l, nil
}

func (l *League) AddAll(models ...feature.Model) {
	for _, m := range models {
		l.Add(m)
	}
}

// Add inserts m. It joins the first group whose anchor it equals, otherwise it
// becomes a new group in front of the first anchor it beats, otherwise it goes last.
func (l *League) Add(m feature.Model) {
	inserted := false
	for i, group := range l.groups {
		c := feature.Compare(m, group[0])
		if c == 0 {
			l.groups[i] = append(group, m)
			inserted = true
			break
		}
		if c > 0 {
			l.groups = slices.Insert(l.groups, i, []feature.Model{m})
			inserted = true
			break
		}
	}
	if !inserted {
		l.groups = append(l.groups, []feature.Model{m})
	}
	l.update()
}

// update rebuilds the flattened table and the lookups
func (l *League) update() {
	l.table = l.table[:0]
	clear(l.tableIdx)
	clear(l.tablePosition)

	for _, group := range l.groups {
		position := len(l.table) + 1
		for _, m := range group {
			l.tableIdx[m.ID] = len(l.table)
			l.tablePosition[m.ID] = position
			l.table = append(l.table, Entry{Position: position, Model: m})
		}
	}
}

// Entries returns the table top to bottom
func (l *League) Entries() []Entry {
	out := make([]Entry, len(l.table))
	copy(out, l.table)
	return out
}

// Len is the number of teams in the table
func (l *League) Len() int {
	return len(l.table)
}

// Index returns the 0-based row of id
func (l *League) Index(id string) (int, bool) {
	idx, ok := l.tableIdx[id]
	return idx, ok
}

// Position returns the 1-based league position of id
func (l *League) Position(id string) (int, bool) {
	pos, ok := l.tablePosition[id]
	return pos, ok
}

// Groups returns the ids of each tie group, best first
func (l *League) Groups() [][]string {
	out := make([][]string, len(l.groups))
	for i, group := range l.groups {
		for _, m := range group {
			out[i] = append(out[i], m.ID)
		}
	}
	return out
}
