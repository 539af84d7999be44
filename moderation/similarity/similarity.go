// Package similarity scores how alike two strings are, for near-duplicate
// message detection. Callers decide the blocking threshold.
package similarity

import "github.com/xrash/smetrics"

// standard Jaro-Winkler parameters
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// Score returns the Jaro-Winkler similarity of a and b, in [0, 1]. It is
// symmetric, Score(x, x) == 1 for any x, and two empty strings score 1.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return smetrics.JaroWinkler(a, b, boostThreshold, prefixSize)
}
