package results

import (
	"testing"
	"time"

	"github.com/richard-senior/predictomatic/pkg/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRecords() []MatchRecord {
	return []MatchRecord{
		{Date: d("2016-08-13"), HomeTeam: "Hull City", HomeScore: 2, AwayTeam: "Leicester City", AwayScore: 1},
		{Date: d("2016-08-13"), HomeTeam: "Burnley", HomeScore: 0, AwayTeam: "Swansea City", AwayScore: 1},
		{Date: d("2016-08-14"), HomeTeam: "Arsenal", HomeScore: 3, AwayTeam: "Liverpool", AwayScore: 4},
		{Date: d("2016-08-20"), HomeTeam: "Swansea City", HomeScore: 0, AwayTeam: "Hull City", AwayScore: 2},
		{Date: d("2016-08-20"), HomeTeam: "Leicester City", HomeScore: 0, AwayTeam: "Arsenal", AwayScore: 0},
		{Date: d("2016-08-27"), HomeTeam: "Arsenal", HomeScore: 2, AwayTeam: "Watford", AwayScore: 1},
	}
}

// sources returns the same data behind both Source implementations
func sources(t *testing.T) map[string]Source {
	t.Helper()
	db, err := persist.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db)
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SaveMatches(sampleRecords()))

	return map[string]Source{
		"memory": NewMemoryStore(sampleRecords()...),
		"sql":    store,
	}
}

func TestSourceTeamsAndDates(t *testing.T) {
	for name, src := range sources(t) {
		t.Run(name, func(t *testing.T) {
			teams, err := src.Teams()
			require.NoError(t, err)
			assert.Equal(t, []string{"Arsenal", "Burnley", "Hull City", "Leicester City", "Liverpool", "Swansea City", "Watford"}, teams)

			dates, err := src.Dates()
			require.NoError(t, err)
			assert.Equal(t, []time.Time{d("2016-08-13"), d("2016-08-14"), d("2016-08-20"), d("2016-08-27")}, dates)
		})
	}
}

func TestSourceRangeOrdering(t *testing.T) {
	for name, src := range sources(t) {
		t.Run(name, func(t *testing.T) {
			got, err := src.Range(d("2016-08-13"), d("2016-08-20"))
			require.NoError(t, err)
			require.Len(t, got, 5)
			// same date ties broken by home team name
			assert.Equal(t, "Burnley", got[0].HomeTeam)
			assert.Equal(t, "Hull City", got[1].HomeTeam)
			assert.Equal(t, "Leicester City", got[3].HomeTeam)

			on, err := src.OnDate(d("2016-08-14"))
			require.NoError(t, err)
			require.Len(t, on, 1)
			assert.Equal(t, AwayWin, on[0].Outcome())
		})
	}
}

func TestSourceInWindowBoundaries(t *testing.T) {
	for name, src := range sources(t) {
		t.Run(name, func(t *testing.T) {
			// start is exclusive, end inclusive
			got, err := src.InWindow("Arsenal", d("2016-08-14"), d("2016-08-27"), Either)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, d("2016-08-20"), got[0].Date)
			assert.Equal(t, d("2016-08-27"), got[1].Date)

			home, err := src.InWindow("Arsenal", d("2016-08-01"), d("2016-08-31"), Home)
			require.NoError(t, err)
			assert.Len(t, home, 2)

			away, err := src.InWindow("Arsenal", d("2016-08-01"), d("2016-08-31"), Away)
			require.NoError(t, err)
			assert.Len(t, away, 1)
		})
	}
}

func TestSourceMostRecent(t *testing.T) {
	for name, src := range sources(t) {
		t.Run(name, func(t *testing.T) {
			got, err := src.MostRecent("Arsenal", d("2016-08-26"), 5, Either)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, d("2016-08-20"), got[0].Date)
			assert.Equal(t, d("2016-08-14"), got[1].Date)

			got, err = src.MostRecent("Hull City", d("2016-12-31"), 1, Either)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Swansea City", got[0].HomeTeam)

			got, err = src.MostRecent("Watford", d("2016-08-01"), 3, Either)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestSaveMatchesUpserts(t *testing.T) {
	db, err := persist.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLStore(db)
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SaveMatches(sampleRecords()))

	corrected := sampleRecords()[0]
	corrected.HomeScore = 3
	require.NoError(t, store.SaveMatches([]MatchRecord{corrected}))

	got, err := store.OnDate(d("2016-08-13"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[1].HomeScore)
}

func TestVenueFor(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, Either, VenueFor(nil))
	assert.Equal(t, Home, VenueFor(&yes))
	assert.Equal(t, Away, VenueFor(&no))
}
