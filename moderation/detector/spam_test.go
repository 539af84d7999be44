package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gamemod/warden/moderation/pattern"
	"github.com/gamemod/warden/moderation/session"
)

// fixed clock helper so cooldown math is deterministic
func frozenSpamDetector(cfg SpamConfig) (*SpamDetector, *time.Time) {
	d := NewSpamDetector(cfg)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	return d, &now
}

func TestChatDuplicateThreshold(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{MaxChatDuplicates: 3})
	st := &session.State{}

	// first occurrence passes and seeds the last-message slot
	assert.False(d.CheckChat(st, "buy my stuff", false).Blocked)
	assert.Equal(0, st.ChatRepeatCount)

	// second identical message (case-insensitive) increments once, passes
	assert.False(d.CheckChat(st, "BUY MY STUFF", false).Blocked)
	assert.Equal(1, st.ChatRepeatCount)

	// third occurrence blocks
	v := d.CheckChat(st, "buy my stuff", false)
	assert.True(v.Blocked)
	assert.Equal(CategorySpam, v.Category)
	assert.Equal(ReasonChatDuplicate, v.Reason)

	// a different message resets the counter and replaces the slot
	assert.False(d.CheckChat(st, "something else", false).Blocked)
	assert.Equal(0, st.ChatRepeatCount)
	assert.Equal("something else", st.LastChatMessage)
}

func TestChatCooldown(t *testing.T) {
	assert := assert.New(t)

	d, now := frozenSpamDetector(SpamConfig{ChatDelay: 3 * time.Second})
	st := &session.State{}

	assert.False(d.CheckChat(st, "one", false).Blocked)

	// within the cooldown window everything is blocked, even novel text
	v := d.CheckChat(st, "two", false)
	assert.True(v.Blocked)
	assert.Equal(ReasonChatCooldown, v.Reason)

	*now = now.Add(3 * time.Second)
	assert.False(d.CheckChat(st, "two", false).Blocked)
}

func TestChatCooldownDisabled(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{})
	st := &session.State{}
	assert.False(d.CheckChat(st, "one", false).Blocked)
	assert.False(d.CheckChat(st, "two", false).Blocked)
	assert.True(st.ChatCooldownUntil.IsZero())
}

func TestChatExemptionSkipsStateEntirely(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{ChatDelay: 3 * time.Second, MaxChatDuplicates: 2})
	st := &session.State{LastChatMessage: "hi", ChatRepeatCount: 1}

	assert.False(d.CheckChat(st, "hi", true).Blocked)
	// exemption neither consumes nor resets counters or cooldowns
	assert.Equal(1, st.ChatRepeatCount)
	assert.Equal("hi", st.LastChatMessage)
	assert.True(st.ChatCooldownUntil.IsZero())
}

func TestCommandChecksIndependentOfChat(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{MaxChatDuplicates: 3, MaxCommandDuplicates: 2})
	st := &session.State{}

	assert.False(d.CheckCommand(st, "/home", false).Blocked)
	v := d.CheckCommand(st, "/home", false)
	assert.True(v.Blocked)
	assert.Equal(ReasonCommandDuplicate, v.Reason)

	// chat counters are untouched by command traffic
	assert.Equal(0, st.ChatRepeatCount)
	assert.Empty(st.LastChatMessage)
}

func TestCommandWhitelistBypassesBothChecks(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{
		CommandDelay:         5 * time.Second,
		MaxCommandDuplicates: 2,
		CommandWhitelist:     pattern.CompileCommandSet([]string{"/msg"}),
	})
	st := &session.State{}

	for i := 0; i < 5; i++ {
		assert.False(d.CheckCommand(st, "/msg alex hi", false).Blocked)
	}
	// whitelisted traffic does not start a cooldown either
	assert.True(st.CommandCooldownUntil.IsZero())

	assert.False(d.CheckCommand(st, "/spawn", false).Blocked)
	assert.True(d.CheckCommand(st, "/spawn", false).Blocked) // now inside the cooldown
}

func TestNearDuplicateSimilarity(t *testing.T) {
	assert := assert.New(t)

	d, _ := frozenSpamDetector(SpamConfig{MaxChatDuplicates: 2, SimilarityThreshold: 0.9})
	st := &session.State{}

	assert.False(d.CheckChat(st, "join my server today", false).Blocked)
	// a near-identical variant counts as a duplicate under the 0.9 threshold
	v := d.CheckChat(st, "join my server today!", false)
	assert.True(v.Blocked)
	assert.Equal(ReasonChatDuplicate, v.Reason)
}
