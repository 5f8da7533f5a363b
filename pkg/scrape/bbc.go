package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/results"
)

// fixtureCaption marks the results tables on the BBC page; other
// table-stats tables (standings, top scorers) are ignored
const fixtureCaption = "This table charts the fixtures during"

var (
	// "Monday 17th October 2016"
	headingDate = regexp.MustCompile(`(\d+)\w\w\s+(\w+)\s+(\d{4})`)
	scorePair   = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
)

// ParseHeadingDate reads the match day out of a heading like "Monday 17th October 2016"
func ParseHeadingDate(heading string) (time.Time, error) {
	m := headingDate.FindStringSubmatch(heading)
	if m == nil {
		return time.Time{}, fmt.Errorf("no match date in %q", strings.TrimSpace(heading))
	}
	d, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse match date in %q: %w", strings.TrimSpace(heading), err)
	}
	return d, nil
}

// ParseScore splits "h-a" into home and away goals
func ParseScore(s string) (int, int, error) {
	m := scorePair.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("no score in %q", strings.TrimSpace(s))
	}
	home, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse home score %q: %w", m[1], err)
	}
	away, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse away score %q: %w", m[2], err)
	}
	return home, away, nil
}

// ParseBBCResults extracts every completed match from a BBC results page.
// Each match day is a table.table-stats whose caption carries the date; each
// fixture row holds td.match-details with the teams and the score.
func ParseBBCResults(html string) ([]results.MatchRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var ret []results.MatchRecord
	var parseErr error
	doc.Find("table.table-stats").EachWithBreak(func(i int, table *goquery.Selection) bool {
		caption := table.Find("caption").First().Text()
		if !strings.Contains(caption, fixtureCaption) {
			return true
		}
		day, err := ParseHeadingDate(caption)
		if err != nil {
			parseErr = err
			return false
		}

		table.Find("td.match-details").EachWithBreak(func(j int, details *goquery.Selection) bool {
			// header cells reuse the class
			if scope, _ := details.Attr("scope"); scope != "" {
				return true
			}
			m, err := parseMatchDetails(day, details)
			if err != nil {
				parseErr = err
				return false
			}
			logger.Debug("Scraped", m.String())
			ret = append(ret, m)
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return ret, nil
}

func parseMatchDetails(day time.Time, details *goquery.Selection) (results.MatchRecord, error) {
	home := teamName(details.Find(".team-home"))
	away := teamName(details.Find(".team-away"))
	if home == "" || away == "" {
		return results.MatchRecord{}, fmt.Errorf("missing team names on %s", day.Format(results.DateLayout))
	}

	score := details.Find(".score abbr").First().Text()
	if score == "" {
		score = details.Find(".score").First().Text()
	}
	hs, as, err := ParseScore(score)
	if err != nil {
		return results.MatchRecord{}, fmt.Errorf("failed to read score of %s v %s: %w", home, away, err)
	}

	return results.MatchRecord{Date: day, HomeTeam: home, HomeScore: hs, AwayTeam: away, AwayScore: as}, nil
}

func teamName(s *goquery.Selection) string {
	if a := s.Find("a"); a.Length() > 0 {
		return strings.TrimSpace(a.First().Text())
	}
	return strings.TrimSpace(s.Text())
}
