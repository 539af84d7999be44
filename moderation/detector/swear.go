package detector

import "github.com/gamemod/warden/moderation/pattern"

// SwearDetector tests text against the compiled banned-word matcher. The
// same contract covers chat lines and the non-chat text surfaces (book
// titles and pages, sign lines, anvil renames, item display names).
type SwearDetector struct {
	matcher *pattern.Matcher
}

func NewSwearDetector(matcher *pattern.Matcher) *SwearDetector {
	return &SwearDetector{matcher: matcher}
}

func (d *SwearDetector) Check(text string, exempt bool) Verdict {
	if exempt {
		return Verdict{}
	}
	if d.matcher.ContainsBanned(text) {
		return Verdict{Blocked: true, Category: CategorySwear, Reason: ReasonSwear, Details: text}
	}
	return Verdict{}
}
