// Package suggest ranks near-miss name matches for template, property,
// and control lookups that failed to resolve exactly — so a diagnostic
// can say "did you mean Foo?" instead of just "Foo not found".
package suggest

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// Match is one candidate ranked against a lookup target.
type Match struct {
	Name       string
	Similarity float64 // 0.0-1.0, higher is closer
}

// Matcher finds the closest candidate names to a failed lookup using
// Jaro-Winkler similarity.
type Matcher struct {
	enabled     bool
	maxResults  int
	minDistance float64
}

// New builds a Matcher. maxResults bounds how many suggestions a single
// lookup failure returns; minDistance is the Jaro-Winkler similarity
// floor (0.0-1.0) a candidate must clear to be suggested at all.
func New(enabled bool, maxResults int, minDistance float64) *Matcher {
	if maxResults <= 0 {
		maxResults = 3
	}
	if minDistance <= 0 || minDistance > 1 {
		minDistance = 0.6
	}
	return &Matcher{enabled: enabled, maxResults: maxResults, minDistance: minDistance}
}

// Suggest ranks candidates by similarity to target and returns the top
// matches clearing the configured floor, most similar first. Returns
// nil if suggestions are disabled or target is empty.
func (m *Matcher) Suggest(target string, candidates []string) []Match {
	if !m.enabled || target == "" || len(candidates) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c == target {
			continue
		}
		score, err := edlib.StringsSimilarity(target, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		sim := float64(score)
		if sim >= m.minDistance {
			matches = append(matches, Match{Name: c, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > m.maxResults {
		matches = matches[:m.maxResults]
	}
	return matches
}

// Names extracts the plain suggestion strings from Suggest's result,
// for callers that just want to render "did you mean X, Y?".
func Names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}
