package detector

import (
	"fmt"
	"regexp"

	"github.com/gamemod/warden/moderation/pattern"
)

// DefaultAdvertisementPattern matches messages carrying a URL, a bare
// domain-looking token, or a dotted-quad IPv4 address (optionally with a
// port). The leading and trailing wildcards are part of the pattern because
// the detector uses full-message match semantics.
const DefaultAdvertisementPattern = `.*(?:(?:https?://)?(?:[a-z0-9-]+\.)+(?:com|net|org|io|gg|co|me|tv|xyz|info|biz|ru|cc|eu|us|uk|de)(?:/\S*)?|(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?).*`

// AdvertisementDetector tests messages for server advertisements. Spans
// matching the domain whitelist are stripped first, then the remainder is
// tested against the configured pattern as a full-message match (the
// pattern itself carries any wildcards it needs).
type AdvertisementDetector struct {
	re        *regexp.Regexp
	whitelist *pattern.LiteralSet
}

func NewAdvertisementDetector(expr string, whitelist *pattern.LiteralSet) (*AdvertisementDetector, error) {
	if expr == "" {
		expr = DefaultAdvertisementPattern
	}
	re, err := regexp.Compile(`(?i)^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling advertisement pattern: %w", err)
	}
	return &AdvertisementDetector{re: re, whitelist: whitelist}, nil
}

func (d *AdvertisementDetector) Check(message string, exempt bool) Verdict {
	if exempt {
		return Verdict{}
	}
	if d.re.MatchString(d.whitelist.Strip(message)) {
		return Verdict{Blocked: true, Category: CategoryAdvertisement, Reason: ReasonAdvertisement, Details: message}
	}
	return Verdict{}
}
