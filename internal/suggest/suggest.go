// Package suggest produces "did you mean ...?" hints for unresolved
// identifiers and functions (the evaluator's NoSuchVariable /
// NoSuchFunction errors carry an optional suggestion; type errors do not).
// Matching is grounded on xrash/smetrics' Jaro-Winkler string similarity,
// the same distance metric fuzzy-match tooling in the retrieval pack
// reaches for instead of a hand-rolled edit-distance routine.
package suggest

import "github.com/xrash/smetrics"

// boostThreshold and prefixSize match smetrics' own documented defaults for
// Jaro-Winkler: a common-prefix bonus kicks in once similarity clears 0.7,
// weighted over up to a 4-character shared prefix.
const (
	boostThreshold = 0.7
	prefixSize     = 4

	// minScore is the similarity a candidate must clear before it's worth
	// suggesting at all; below this, offering a "did you mean" would be
	// more confusing than no suggestion.
	minScore = 0.6
)

// Find returns the candidate most similar to name by Jaro-Winkler
// similarity, and true if it clears minScore. Ties keep the first
// candidate encountered, so callers that want a deterministic result
// should pass candidates in a stable order (e.g. sorted).
func Find(name string, candidates []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if c == name {
			continue
		}
		score := smetrics.JaroWinkler(name, c, boostThreshold, prefixSize)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < minScore {
		return "", false
	}
	return best, true
}
