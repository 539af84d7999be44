// Package pattern compiles the text matchers used by the moderation
// detectors: an obfuscation-resistant banned-word matcher, a literal
// whitelist matcher used to strip safe spans before banned-word testing,
// and an anchored command-prefix matcher for command allow/block lists.
//
// All matchers are immutable after construction and safe for concurrent use.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// BannedMatcher answers whether text contains any configured banned word,
// anywhere in the string, case-insensitively. Each character of a banned
// word may be widened to a character class of look-alike glyphs (eg,
// `a` -> `[aA@4]`), so common obfuscations still match.
//
// A matcher compiled from an empty word list never matches.
type BannedMatcher struct {
	re *regexp.Regexp
}

// CompileBannedWords builds a BannedMatcher from a banned-word list and a
// per-character obfuscation class map. Class values are regex fragments
// (usually character classes); characters without a mapping are escaped
// literally.
func CompileBannedWords(words []string, classes map[rune]string) (*BannedMatcher, error) {
	if len(words) == 0 {
		return &BannedMatcher{}, nil
	}
	frags := make([]string, 0, len(words))
	for _, word := range words {
		var b strings.Builder
		for _, r := range word {
			if class, ok := classes[unicode.ToLower(r)]; ok {
				b.WriteString(class)
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		frags = append(frags, b.String())
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(frags, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compiling banned-word matcher: %w", err)
	}
	return &BannedMatcher{re: re}, nil
}

// Match reports whether text contains any banned word.
func (m *BannedMatcher) Match(text string) bool {
	if m == nil || m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

// LiteralSet matches any of a set of literal, case-insensitive terms. It is
// used for whitelists: matched spans are stripped from a message before the
// banned-word matcher runs, so a whitelisted word can defuse a banned
// substring it contains (eg, whitelisting "shuttle" defuses the "hell"
// inside it).
type LiteralSet struct {
	re *regexp.Regexp
}

// CompileLiteralSet builds a LiteralSet. An empty term list yields a set
// that matches nothing and strips nothing.
func CompileLiteralSet(terms []string) *LiteralSet {
	if len(terms) == 0 {
		return &LiteralSet{}
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return &LiteralSet{re: regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)}
}

// Match reports whether text contains any term of the set.
func (s *LiteralSet) Match(text string) bool {
	if s == nil || s.re == nil {
		return false
	}
	return s.re.MatchString(text)
}

// Strip removes every occurrence of the set's terms from text.
func (s *LiteralSet) Strip(text string) string {
	if s == nil || s.re == nil {
		return text
	}
	return s.re.ReplaceAllString(text, "")
}

// CommandSet matches command strings by prefix, case-insensitively and
// anchored at the start. Used for the anti-spam command whitelist and for
// the blocked-command list.
type CommandSet struct {
	re *regexp.Regexp
}

// CompileCommandSet builds a CommandSet from literal command prefixes. An
// empty list yields a set that matches nothing.
func CompileCommandSet(cmds []string) *CommandSet {
	if len(cmds) == 0 {
		return &CommandSet{}
	}
	quoted := make([]string, len(cmds))
	for i, c := range cmds {
		quoted[i] = regexp.QuoteMeta(c)
	}
	return &CommandSet{re: regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)`)}
}

// MatchesPrefix reports whether cmd starts with any of the set's prefixes.
func (s *CommandSet) MatchesPrefix(cmd string) bool {
	if s == nil || s.re == nil {
		return false
	}
	return s.re.MatchString(cmd)
}

// Matcher combines a banned-word matcher with a whitelist used to strip
// safe spans beforehand.
type Matcher struct {
	banned    *BannedMatcher
	whitelist *LiteralSet
}

// NewMatcher combines the two matchers. Either may be nil.
func NewMatcher(banned *BannedMatcher, whitelist *LiteralSet) *Matcher {
	return &Matcher{banned: banned, whitelist: whitelist}
}

// ContainsBanned strips whitelisted spans from the normalized text and
// tests the remainder against the banned-word matcher.
//
// Known limitation, preserved deliberately: stripping a whitelisted span can
// splice the surrounding characters together, which may hide a banned
// fragment that straddles the span or, conversely, expose one that the span
// interrupted. This is the documented behavior of the whitelist heuristic,
// not a bug to fix by reordering the match.
func (m *Matcher) ContainsBanned(text string) bool {
	if m == nil {
		return false
	}
	return m.banned.Match(m.whitelist.Strip(Normalize(text)))
}
