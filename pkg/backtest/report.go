package backtest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richard-senior/predictomatic/pkg/results"
)

// WriteSummary writes one line per window size:
// size, mean, stddev, then each period's percentage
func WriteSummary(w io.Writer, summaries []Summary) error {
	if _, err := fmt.Fprintln(w, "Window, Accuracy (%), Stdev, Period performances (%)"); err != nil {
		return err
	}
	for _, s := range summaries {
		fields := []string{windowLabel(s), fmt.Sprintf("%.2f", s.Mean), fmt.Sprintf("%.2f", s.StdDev)}
		for _, p := range s.Percents() {
			fields = append(fields, strconv.FormatFloat(p, 'f', -1, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteGrid writes a spreadsheet friendly grid with a row per checkpoint and
// a column per window size. Windows missing a checkpoint leave the cell blank.
func WriteGrid(w io.Writer, description string, summaries []Summary) error {
	if description != "" {
		if _, err := fmt.Fprintf(w, "%-20s, %s\n", "Details", description); err != nil {
			return err
		}
	}

	header := []string{fmt.Sprintf("%-20s", "Window Sizes")}
	for _, s := range summaries {
		header = append(header, fmt.Sprintf("%7s", windowLabel(s)))
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, ", ")); err != nil {
		return err
	}

	var order []string
	cells := map[string]map[int]float64{}
	for i, s := range summaries {
		for _, p := range s.Periods {
			key := p.Checkpoint.Format(results.DateLayout)
			if _, ok := cells[key]; !ok {
				cells[key] = map[int]float64{}
				order = append(order, key)
			}
			cells[key][i] = p.Percent
		}
	}

	for _, key := range order {
		row := []string{fmt.Sprintf("%-20s", key)}
		for i := range summaries {
			v, ok := cells[key][i]
			if !ok {
				row = append(row, fmt.Sprintf("%7s", ""))
				continue
			}
			row = append(row, fmt.Sprintf("%7.4f", v))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// windowLabel is the bare window size in its own unit
func windowLabel(s Summary) string {
	return strconv.Itoa(s.Window.Size())
}
