package scrape

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/results"
)

var seasonPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// footballDataDateLayouts are tried in order, four digit years first
var footballDataDateLayouts = []string{"02/01/2006", "02/01/06"}

// TeamAliases maps football-data.co.uk's short club names onto the full names
// used by the BBC results pages
var TeamAliases = map[string]string{
	"Man City":      "Manchester City",
	"Man United":    "Manchester United",
	"Tottenham":     "Tottenham Hotspur",
	"West Ham":      "West Ham United",
	"West Brom":     "West Bromwich Albion",
	"Leicester":     "Leicester City",
	"Stoke":         "Stoke City",
	"Swansea":       "Swansea City",
	"Hull":          "Hull City",
	"Newcastle":     "Newcastle United",
	"Norwich":       "Norwich City",
	"Cardiff":       "Cardiff City",
	"Huddersfield":  "Huddersfield Town",
	"Brighton":      "Brighton & Hove Albion",
	"Wolves":        "Wolverhampton Wanderers",
	"Nott'm Forest": "Nottingham Forest",
	"Leeds":         "Leeds United",
	"Luton":         "Luton Town",
	"Ipswich":       "Ipswich Town",
	"QPR":           "Queens Park Rangers",
}

// FootballDataURL is the season CSV for a league, e.g. base/1617/E0.csv for
// league E0 and season 2016/2017
func FootballDataURL(base, league, season string) (string, error) {
	if !seasonPattern.MatchString(season) {
		return "", fmt.Errorf("season must be in the format 'yyyy/yyyy', got %q", season)
	}
	if league == "" {
		return "", fmt.Errorf("no league code given")
	}
	native := season[2:4] + season[7:9]
	return strings.TrimRight(base, "/") + "/" + native + "/" + league + ".csv", nil
}

// ParseFootballDataCSV reads finished matches from a football-data.co.uk
// season file. Rows without a full time score are skipped.
func ParseFootballDataCSV(data string) ([]results.MatchRecord, error) {
	reader := csv.NewReader(strings.NewReader(data))
	// trailing empty columns vary from row to row
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	for _, required := range []string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"} {
		found := false
		for _, h := range headers {
			if strings.TrimSpace(h) == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("CSV has no %s column", required)
		}
	}

	var ret []results.MatchRecord
	for i, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for j, value := range record {
			if j < len(headers) {
				row[strings.TrimSpace(headers[j])] = strings.TrimSpace(value)
			}
		}
		if row["HomeTeam"] == "" || row["AwayTeam"] == "" {
			continue
		}

		m, ok, err := parseFootballDataRow(row)
		if err != nil {
			logger.Warn("Failed to parse match at row", i+2, err)
			continue
		}
		if ok {
			ret = append(ret, m)
		}
	}

	logger.Info("Parsed", len(ret), "matches from football-data CSV")
	return ret, nil
}

// parseFootballDataRow reports ok=false for fixtures not yet played
func parseFootballDataRow(row map[string]string) (results.MatchRecord, bool, error) {
	if row["FTHG"] == "" || row["FTAG"] == "" {
		return results.MatchRecord{}, false, nil
	}
	hs, err := strconv.Atoi(row["FTHG"])
	if err != nil {
		return results.MatchRecord{}, false, fmt.Errorf("bad FTHG %q: %w", row["FTHG"], err)
	}
	as, err := strconv.Atoi(row["FTAG"])
	if err != nil {
		return results.MatchRecord{}, false, fmt.Errorf("bad FTAG %q: %w", row["FTAG"], err)
	}
	d, err := parseFootballDataDate(row["Date"])
	if err != nil {
		return results.MatchRecord{}, false, err
	}

	return results.MatchRecord{
		Date:      d,
		HomeTeam:  canonicalTeam(row["HomeTeam"]),
		HomeScore: hs,
		AwayTeam:  canonicalTeam(row["AwayTeam"]),
		AwayScore: as,
	}, true, nil
}

// parseFootballDataDate reads dd/mm/yyyy or dd/mm/yy. Kick off times are
// ignored since matches are dated by their UK calendar day.
func parseFootballDataDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range footballDataDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("could not parse date from %q: %w", s, lastErr)
}

func canonicalTeam(name string) string {
	if full, ok := TeamAliases[name]; ok {
		return full
	}
	return name
}
