package detector

import (
	"strings"
	"time"

	"github.com/gamemod/warden/moderation/pattern"
	"github.com/gamemod/warden/moderation/session"
	"github.com/gamemod/warden/moderation/similarity"
)

// SpamConfig holds the chat and command rate-limiting knobs. A delay of 0
// disables the corresponding cooldown; a max-duplicates of 0 disables
// duplicate counting. SimilarityThreshold below 1.0 widens duplicate
// detection to near-matches scored by Jaro-Winkler; 1.0 (the default) keeps
// exact case-insensitive matching only.
type SpamConfig struct {
	ChatDelay            time.Duration
	MaxChatDuplicates    int
	CommandDelay         time.Duration
	MaxCommandDuplicates int
	SimilarityThreshold  float64
	// CommandWhitelist bypasses both command checks entirely.
	CommandWhitelist *pattern.CommandSet
}

// SpamDetector applies two independent checks to chat lines and commands:
// a per-player cooldown and a consecutive-duplicate counter. Either check
// is sufficient to block.
type SpamDetector struct {
	cfg SpamConfig
	now func() time.Time
}

func NewSpamDetector(cfg SpamConfig) *SpamDetector {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 1.0
	}
	return &SpamDetector{cfg: cfg, now: time.Now}
}

// CheckChat evaluates one chat message against the player's session state,
// mutating the state's chat fields. Exempt players are neither checked nor
// counted.
//
// The Nth consecutive identical message blocks once N reaches the configured
// maximum: with a maximum of 3, the first two identical repeats pass and the
// third occurrence is blocked.
func (d *SpamDetector) CheckChat(st *session.State, message string, exempt bool) Verdict {
	if exempt {
		return Verdict{}
	}
	now := d.now()
	if now.Before(st.ChatCooldownUntil) {
		return Verdict{Blocked: true, Category: CategorySpam, Reason: ReasonChatCooldown, Details: message}
	}
	if d.sameText(message, st.LastChatMessage) {
		st.ChatRepeatCount++
		if d.cfg.MaxChatDuplicates > 0 && st.ChatRepeatCount+1 >= d.cfg.MaxChatDuplicates {
			return Verdict{Blocked: true, Category: CategorySpam, Reason: ReasonChatDuplicate, Details: message}
		}
	} else {
		st.ChatRepeatCount = 0
		st.LastChatMessage = message
	}
	if d.cfg.ChatDelay > 0 {
		st.ChatCooldownUntil = now.Add(d.cfg.ChatDelay)
	}
	return Verdict{}
}

// CheckCommand applies the same pair of checks to a command string, with
// separate counters and thresholds. Whitelisted commands bypass both checks.
func (d *SpamDetector) CheckCommand(st *session.State, command string, exempt bool) Verdict {
	if exempt {
		return Verdict{}
	}
	if d.cfg.CommandWhitelist.MatchesPrefix(command) {
		return Verdict{}
	}
	now := d.now()
	if now.Before(st.CommandCooldownUntil) {
		return Verdict{Blocked: true, Category: CategorySpam, Reason: ReasonCommandCooldown, Details: command}
	}
	if d.sameText(command, st.LastCommand) {
		st.CommandRepeatCount++
		if d.cfg.MaxCommandDuplicates > 0 && st.CommandRepeatCount+1 >= d.cfg.MaxCommandDuplicates {
			return Verdict{Blocked: true, Category: CategorySpam, Reason: ReasonCommandDuplicate, Details: command}
		}
	} else {
		st.CommandRepeatCount = 0
		st.LastCommand = command
	}
	if d.cfg.CommandDelay > 0 {
		st.CommandCooldownUntil = now.Add(d.cfg.CommandDelay)
	}
	return Verdict{}
}

func (d *SpamDetector) sameText(a, b string) bool {
	if b == "" {
		// nothing recorded yet
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	if d.cfg.SimilarityThreshold < 1.0 {
		return similarity.Score(strings.ToLower(a), strings.ToLower(b)) >= d.cfg.SimilarityThreshold
	}
	return false
}
