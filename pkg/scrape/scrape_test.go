package scrape

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bbcPage = `<html><body>
<table class="table-stats">
  <caption>This table charts the fixtures during Monday 17th October 2016</caption>
  <thead><tr><th class="match-details" scope="col">Match details</th></tr></thead>
  <tbody>
    <tr><td class="match-details">
      <span class="team-home teams"><a href="/sport/football/teams/liverpool">Liverpool</a></span>
      <span class="score"><abbr title="Score">0-0</abbr></span>
      <span class="team-away teams"><a href="/sport/football/teams/manchester-united">Manchester United</a></span>
    </td></tr>
  </tbody>
</table>
<table class="table-stats">
  <caption>This table charts the fixtures during Saturday 15th October 2016</caption>
  <tbody>
    <tr><td class="match-details">
      <span class="team-home teams"><a>Chelsea</a></span>
      <span class="score"><abbr>3-0</abbr></span>
      <span class="team-away teams"><a>Leicester City</a></span>
    </td></tr>
    <tr><td class="match-details">
      <span class="team-home teams"><a>Arsenal</a></span>
      <span class="score"><abbr>3 - 2</abbr></span>
      <span class="team-away teams"><a>Swansea City</a></span>
    </td></tr>
  </tbody>
</table>
<table class="table-stats"><caption>Top scorers</caption><tr><td class="match-details">n/a</td></tr></table>
</body></html>`

func day(s string) time.Time {
	t, _ := results.ParseDay(s)
	return t
}

func TestParseBBCResults(t *testing.T) {
	got, err := ParseBBCResults(bbcPage)
	require.NoError(t, err)
	assert.Equal(t, []results.MatchRecord{
		{Date: day("2016-10-17"), HomeTeam: "Liverpool", HomeScore: 0, AwayTeam: "Manchester United", AwayScore: 0},
		{Date: day("2016-10-15"), HomeTeam: "Chelsea", HomeScore: 3, AwayTeam: "Leicester City", AwayScore: 0},
		{Date: day("2016-10-15"), HomeTeam: "Arsenal", HomeScore: 3, AwayTeam: "Swansea City", AwayScore: 2},
	}, got)
}

func TestParseBBCResultsBadScore(t *testing.T) {
	page := `<table class="table-stats"><caption>This table charts the fixtures during Sunday 2nd April 2017</caption>
<tr><td class="match-details"><span class="team-home"><a>Spurs</a></span><span class="score"><abbr>v</abbr></span>
<span class="team-away"><a>Burnley</a></span></td></tr></table>`
	_, err := ParseBBCResults(page)
	assert.Error(t, err)

	got, err := ParseBBCResults("<html><body>nothing here</body></html>")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseScore(t *testing.T) {
	home, away, err := ParseScore(" 3 - 1 ")
	require.NoError(t, err)
	assert.Equal(t, 3, home)
	assert.Equal(t, 1, away)

	_, _, err = ParseScore("99999999999999999999-0")
	assert.ErrorContains(t, err, "home score")

	_, _, err = ParseScore("0-99999999999999999999")
	assert.ErrorContains(t, err, "away score")
}

func TestParseHeadingDate(t *testing.T) {
	d, err := ParseHeadingDate("\n   Monday 17th October 2016   ")
	require.NoError(t, err)
	assert.Equal(t, day("2016-10-17"), d)

	d, err = ParseHeadingDate("Saturday 1st April 2017")
	require.NoError(t, err)
	assert.Equal(t, day("2017-04-01"), d)

	_, err = ParseHeadingDate("Fixtures")
	assert.Error(t, err)
}

const footballDataCSV = "\ufeffDiv,Date,HomeTeam,AwayTeam,FTHG,FTAG,FTR\n" +
	"E0,13/08/16,Burnley,Swansea,0,1,A\n" +
	"E0,13/08/2016,Man City,Sunderland,2,1,H\n" +
	"E0,14/08/16,Arsenal,Liverpool,3,4,A\n" +
	"E0,21/05/17,Hull,Tottenham,,,\n" +
	"E0,bad,Everton,Stoke,1,1,D\n" +
	",,,,,,\n"

func TestParseFootballDataCSV(t *testing.T) {
	got, err := ParseFootballDataCSV(footballDataCSV)
	require.NoError(t, err)
	assert.Equal(t, []results.MatchRecord{
		{Date: day("2016-08-13"), HomeTeam: "Burnley", HomeScore: 0, AwayTeam: "Swansea City", AwayScore: 1},
		{Date: day("2016-08-13"), HomeTeam: "Manchester City", HomeScore: 2, AwayTeam: "Sunderland", AwayScore: 1},
		{Date: day("2016-08-14"), HomeTeam: "Arsenal", HomeScore: 3, AwayTeam: "Liverpool", AwayScore: 4},
	}, got)

	_, err = ParseFootballDataCSV("Date,HomeTeam,AwayTeam\n13/08/16,Burnley,Swansea\n")
	assert.Error(t, err)

	got, err = ParseFootballDataCSV("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFootballDataURL(t *testing.T) {
	u, err := FootballDataURL("https://www.football-data.co.uk/mmz4281/", "E0", "2016/2017")
	require.NoError(t, err)
	assert.Equal(t, "https://www.football-data.co.uk/mmz4281/1617/E0.csv", u)

	_, err = FootballDataURL("https://www.football-data.co.uk/mmz4281", "E0", "2016-17")
	assert.Error(t, err)
}

func TestImporterCaches(t *testing.T) {
	calls := 0
	im := &Importer{
		CacheDir: filepath.Join(t.TempDir(), "cache"),
		Get: func(ctx context.Context, url string) ([]byte, error) {
			calls++
			return []byte(footballDataCSV), nil
		},
	}

	ctx := context.Background()
	got, err := im.FootballData(ctx, "https://example.com/mmz4281", "E0", "2016/2017")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = im.FootballData(ctx, "https://example.com/mmz4281", "E0", "2016/2017")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	entries, err := os.ReadDir(im.CacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".csv", filepath.Ext(entries[0].Name()))

	im.Refresh = true
	_, err = im.FootballData(ctx, "https://example.com/mmz4281", "E0", "2016/2017")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestImporterFetchError(t *testing.T) {
	im := &Importer{Get: func(ctx context.Context, url string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}
	_, err := im.BBC(context.Background(), "https://www.bbc.co.uk/sport/football/premier-league/results")
	assert.ErrorContains(t, err, "connection refused")
}

func TestImporterEmptyPage(t *testing.T) {
	im := &Importer{Get: func(ctx context.Context, url string) ([]byte, error) {
		return []byte(`<html><body><h1>Results</h1><a href="/sport">Sport</a></body></html>`), nil
	}}
	got, err := im.BBC(context.Background(), "https://www.bbc.co.uk/sport/football/premier-league/results")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "E0.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte(footballDataCSV), 0644))
	htmlFile := filepath.Join(dir, "results.html")
	require.NoError(t, os.WriteFile(htmlFile, []byte(bbcPage), 0644))

	got, err := ReadFile(csvFile)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = ReadFile(filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}

func TestPageToMarkdown(t *testing.T) {
	md, err := PageToMarkdown(`<h1>Results</h1><p><a href="/sport">Sport</a></p>`, "www.bbc.co.uk")
	require.NoError(t, err)
	assert.Contains(t, md, "# Results")
	assert.Contains(t, md, "[Sport](")
	assert.Contains(t, md, "www.bbc.co.uk/sport)")
}
