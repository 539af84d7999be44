package pattern

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases text and strips combining marks (NFD decomposition,
// mark removal, NFC recomposition), so that diacritic obfuscation like
// "héll" is seen by the matchers as "hell".
func Normalize(text string) string {
	// the transform chain needs to be re-created per call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(normFunc, text)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		folded = text
	}
	return strings.ToLower(folded)
}
