// Package config defines the moderation policy snapshot: word lists,
// obfuscation classes, detection thresholds, and the per-category threshold
// rules. A snapshot is loaded at startup and on reload; the engine rebuilds
// all compiled matchers and rule sets from it without a restart.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gamemod/warden/moderation/action"
	"github.com/gamemod/warden/moderation/detector"
)

// ThresholdRuleConfig is the serialized form of one threshold rule.
type ThresholdRuleConfig struct {
	Op      string `json:"op"`
	Amount  int    `json:"amount"`
	Command string `json:"command"`
}

type SpamConfig struct {
	ChatDelaySeconds     float64  `json:"chatDelaySeconds"`
	MaxChatDuplicates    int      `json:"maxChatDuplicates"`
	CommandDelaySeconds  float64  `json:"commandDelaySeconds"`
	MaxCommandDuplicates int      `json:"maxCommandDuplicates"`
	CommandWhitelist     []string `json:"commandWhitelist"`
	// SimilarityThreshold below 1.0 treats near-matches as duplicates.
	SimilarityThreshold float64 `json:"similarityThreshold"`
}

type AdvertisementConfig struct {
	// Pattern is matched against the whole message; empty selects the
	// built-in default.
	Pattern         string   `json:"pattern"`
	DomainWhitelist []string `json:"domainWhitelist"`
}

type CapsConfig struct {
	MinLength int     `json:"minLength"`
	Ratio     float64 `json:"ratio"`
}

type SwearConfig struct {
	BannedWords []string `json:"bannedWords"`
	// CharClasses maps a single character to a regex fragment of
	// look-alike glyphs, eg "a": "[aA@4]".
	CharClasses map[string]string `json:"charClasses"`
	Whitelist   []string          `json:"whitelist"`
}

// Policy is one complete moderation configuration snapshot.
type Policy struct {
	// ViolationDurationMs is the single global active-violation window.
	ViolationDurationMs int64 `json:"violationDurationMs"`

	Spam          SpamConfig          `json:"spam"`
	Advertisement AdvertisementConfig `json:"advertisement"`
	Caps          CapsConfig          `json:"caps"`
	Swear         SwearConfig         `json:"swear"`

	BlockedCommands []string `json:"blockedCommands"`

	// ExemptPermissions maps a category name to the host permission node
	// that bypasses the detector.
	ExemptPermissions map[string]string `json:"exemptPermissions"`

	// Rules maps a category name to its threshold rules.
	Rules map[string][]ThresholdRuleConfig `json:"rules"`

	MentionCooldownSeconds float64 `json:"mentionCooldownSeconds"`

	CacheCapacity   int `json:"cacheCapacity"`
	CacheTTLMinutes int `json:"cacheTTLMinutes"`
}

// Default returns the policy used when no snapshot file is supplied.
func Default() Policy {
	return Policy{
		ViolationDurationMs: int64(10 * 60 * 1000),
		Spam: SpamConfig{
			ChatDelaySeconds:     2,
			MaxChatDuplicates:    3,
			CommandDelaySeconds:  1,
			MaxCommandDuplicates: 5,
			SimilarityThreshold:  1.0,
		},
		Caps: CapsConfig{
			MinLength: 10,
			Ratio:     0.70,
		},
		ExemptPermissions: map[string]string{
			"spam":          "warden.exempt.spam",
			"advertisement": "warden.exempt.advertisement",
			"caps":          "warden.exempt.caps",
			"swear":         "warden.exempt.swear",
		},
		MentionCooldownSeconds: 10,
		CacheCapacity:          1000,
		CacheTTLMinutes:        10,
	}
}

// Load reads a policy snapshot from a JSON file and applies defaults for
// zero values. Validation problems are not surfaced here; callers run
// Validate and decide how to report them.
func Load(path string) (Policy, error) {
	pol := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return pol, fmt.Errorf("reading policy file: %w", err)
	}
	if err := json.Unmarshal(raw, &pol); err != nil {
		return pol, fmt.Errorf("parsing policy file: %w", err)
	}
	pol.applyDefaults()
	return pol, nil
}

func (p *Policy) applyDefaults() {
	def := Default()
	if p.ViolationDurationMs < 0 {
		p.ViolationDurationMs = 0
	}
	if p.Spam.SimilarityThreshold <= 0 {
		p.Spam.SimilarityThreshold = 1.0
	}
	if p.CacheCapacity <= 0 {
		p.CacheCapacity = def.CacheCapacity
	}
	if p.CacheTTLMinutes <= 0 {
		p.CacheTTLMinutes = def.CacheTTLMinutes
	}
}

// Validate scrubs the policy in place and returns every problem found:
// invalid obfuscation classes and unparseable rules are dropped so that
// moderation degrades gracefully (fewer active rules) instead of failing
// startup. The returned errors are reported together, not one by one.
func (p *Policy) Validate() []error {
	var problems []error

	for ch, class := range p.Swear.CharClasses {
		if len([]rune(ch)) != 1 {
			problems = append(problems, fmt.Errorf("char class key %q is not a single character", ch))
			delete(p.Swear.CharClasses, ch)
			continue
		}
		if _, err := regexp.Compile(class); err != nil {
			problems = append(problems, fmt.Errorf("char class for %q: %w", ch, err))
			delete(p.Swear.CharClasses, ch)
		}
	}

	if p.Advertisement.Pattern != "" {
		if _, err := regexp.Compile(p.Advertisement.Pattern); err != nil {
			problems = append(problems, fmt.Errorf("advertisement pattern: %w", err))
			p.Advertisement.Pattern = ""
		}
	}

	for name, rules := range p.Rules {
		kept := rules[:0]
		for i, rule := range rules {
			if strings.TrimSpace(rule.Command) == "" {
				problems = append(problems, fmt.Errorf("rule %d for category %q: empty command", i, name))
				continue
			}
			if rule.Amount < 0 {
				problems = append(problems, fmt.Errorf("rule %d for category %q: negative amount", i, name))
				continue
			}
			kept = append(kept, rule)
		}
		p.Rules[name] = kept
	}

	return problems
}

// CharClassMap converts the serialized obfuscation map to the rune-keyed
// form the pattern compiler takes. Run Validate first.
func (p *Policy) CharClassMap() map[rune]string {
	out := make(map[rune]string, len(p.Swear.CharClasses))
	for ch, class := range p.Swear.CharClasses {
		runes := []rune(strings.ToLower(ch))
		if len(runes) != 1 {
			continue
		}
		out[runes[0]] = class
	}
	return out
}

// ExemptPermissionNodes converts the serialized exemption map to the
// category-keyed form the host's permission lookup consumes. Unknown
// category names fold into spam inside ParseCategory; last entry wins.
func (p *Policy) ExemptPermissionNodes() map[detector.Category]string {
	out := make(map[detector.Category]string, len(p.ExemptPermissions))
	for name, node := range p.ExemptPermissions {
		out[detector.ParseCategory(name)] = node
	}
	return out
}

// RuleSets converts the serialized rules into per-category action rules.
// Unknown operator strings fall back to equality inside ParseOperator.
func (p *Policy) RuleSets() map[detector.Category][]action.Rule {
	out := make(map[detector.Category][]action.Rule, len(p.Rules))
	for name, rules := range p.Rules {
		cat := detector.ParseCategory(name)
		for _, rule := range rules {
			out[cat] = append(out[cat], action.Rule{
				Op:      action.ParseOperator(rule.Op),
				Amount:  rule.Amount,
				Command: rule.Command,
			})
		}
	}
	return out
}
