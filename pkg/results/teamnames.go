package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/richard-senior/predictomatic/internal/logger"
)

// maxNameDistance is the largest edit distance accepted by ResolveTeam
const maxNameDistance = 2

// ResolveTeam maps a user supplied team name onto one of known. An exact
// match, ignoring case, wins; otherwise the single known name containing the
// closest fuzzy match is used. Ambiguous or distant names are an error.
func ResolveTeam(name string, known []string) (string, error) {
	for _, k := range known {
		if strings.EqualFold(strings.TrimSpace(name), k) {
			return k, nil
		}
	}

	best, bestDistance, ties := "", math.MaxInt32, 0
	for _, k := range known {
		d := FuzzyDistance(name, k)
		switch {
		case d < bestDistance:
			best, bestDistance, ties = k, d, 1
		case d == bestDistance:
			ties++
		}
	}

	if best == "" || bestDistance > maxNameDistance {
		return "", fmt.Errorf("unknown team %q", name)
	}
	if ties > 1 {
		return "", fmt.Errorf("team %q is ambiguous", name)
	}
	logger.Debug("Resolved team", name, "to", best, "distance", bestDistance)
	return best, nil
}

// FuzzyDistance is the smallest Levenshtein distance between the shorter of
// the two names and any equal length substring of the longer, ignoring case
func FuzzyDistance(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := math.MaxInt32
	for i := 0; i <= len(longer)-len(shorter); i++ {
		best = min(best, levenshtein(shorter, longer[i:i+len(shorter)]))
		if best == 0 {
			break
		}
	}
	return best
}

func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
