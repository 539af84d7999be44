// Package detector implements the four moderation checks: spam (cooldown and
// duplicate counting), advertisement, excessive capitalization, and banned
// words. Each detector is a decision function over a message, the player's
// exemption flag, and (for spam) the player's session state.
package detector

// Reason codes returned with blocking verdicts. The host uses them as
// localization keys for the player-facing rejection message.
const (
	ReasonChatCooldown     = "chat-cooldown"
	ReasonChatDuplicate    = "chat-duplicate"
	ReasonCommandCooldown  = "command-cooldown"
	ReasonCommandDuplicate = "command-duplicate"
	ReasonBlockedCommand   = "blocked-command"
	ReasonAdvertisement    = "advertisement"
	ReasonCaps             = "caps"
	ReasonSwear            = "swear"
)

// Verdict is the outcome of running one detector against one message. The
// zero value means "not blocked".
type Verdict struct {
	Blocked  bool
	Category Category
	// Reason is a stable code identifying which check tripped.
	Reason string
	// Details carries the offending text for the violation ledger.
	Details string
}
