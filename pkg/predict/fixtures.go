package predict

import (
	"fmt"
	"strings"
)

// Fixture is an upcoming home v away match
type Fixture struct {
	Home string
	Away string
}

func (f Fixture) String() string {
	return f.Home + " v " + f.Away
}

// ParseFixtures reads a comma separated list of "Home-Away" pairs.
// Whitespace around the separators is ignored.
func ParseFixtures(s string) ([]Fixture, error) {
	var ret []Fixture
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		home, away, ok := strings.Cut(part, "-")
		home, away = strings.TrimSpace(home), strings.TrimSpace(away)
		if !ok || home == "" || away == "" {
			return nil, fmt.Errorf("failed to parse fixture %q, expected Home-Away", part)
		}
		if strings.Contains(away, "-") {
			return nil, fmt.Errorf("failed to parse fixture %q, team names may not contain '-'", part)
		}
		ret = append(ret, Fixture{Home: home, Away: away})
	}
	return ret, nil
}
