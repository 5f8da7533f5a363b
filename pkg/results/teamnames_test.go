package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var premierLeague = []string{
	"Arsenal", "Chelsea", "Everton", "Hull City", "Manchester City",
	"Manchester United", "Tottenham Hotspur", "West Ham United",
}

func TestResolveTeam(t *testing.T) {
	for input, want := range map[string]string{
		"Arsenal":   "Arsenal",
		"chelsea":   "Chelsea",
		" Everton ": "Everton",
		"Evrton":    "Everton",
		"Hull":      "Hull City",
		"Spurs":     "Tottenham Hotspur",
		"West Ham":  "West Ham United",
	} {
		got, err := ResolveTeam(input, premierLeague)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestResolveTeamRejects(t *testing.T) {
	_, err := ResolveTeam("Manchester", premierLeague)
	assert.ErrorContains(t, err, "ambiguous")

	_, err = ResolveTeam("Accrington Stanley", premierLeague)
	assert.ErrorContains(t, err, "unknown team")

	_, err = ResolveTeam("Arsenal", nil)
	assert.Error(t, err)
}

func TestFuzzyDistance(t *testing.T) {
	assert.Equal(t, 0, FuzzyDistance("city", "Manchester City"))
	assert.Equal(t, 1, FuzzyDistance("Chelsee", "Chelsea"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 4, levenshtein("", "hull"))
}
