package league

import (
	"fmt"
	"io"
	"strconv"

	"github.com/richard-senior/predictomatic/pkg/stats"
)

// Row is one line of tabular output. GoalDiff and Points are fractional when
// the stats were normalized by matches played.
type Row struct {
	Position     int
	Team         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     float64
	Points       float64
}

// Rows returns the table as rows. Models not built from team stats report zero counts.
func (l *League) Rows() []Row {
	rows := make([]Row, 0, len(l.table))
	for _, e := range l.table {
		r := Row{Position: e.Position, Team: e.Model.ID}
		if s, ok := e.Model.Source.(stats.TeamWindowStats); ok {
			r.Played, r.Won, r.Drawn, r.Lost = s.Played, s.Won, s.Drawn, s.Lost
			r.GoalsFor, r.GoalsAgainst = s.ScoreFor, s.ScoreAgainst
			r.GoalDiff, r.Points = s.GoalDiff(), s.Points()
		}
		rows = append(rows, r)
	}
	return rows
}

// Print writes the table with fixed width columns
func (l *League) Print(w io.Writer, header bool) error {
	width := 4
	for _, e := range l.table {
		width = max(width, len(e.Model.ID))
	}

	if header {
		if _, err := fmt.Fprintf(w, "%3s  %-*s %3s %3s %3s %3s %4s %4s %6s %6s\n",
			"Pos", width, "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"); err != nil {
			return err
		}
	}
	for _, r := range l.Rows() {
		if _, err := fmt.Fprintf(w, "%3d  %-*s %3d %3d %3d %3d %4d %4d %6s %6s\n",
			r.Position, width, r.Team, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, number(r.GoalDiff), number(r.Points)); err != nil {
			return err
		}
	}
	return nil
}

// number prints whole values without decimals and fractions to three places
func number(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
