// Chat moderation and abuse-policy engine for multiplayer game servers.
//
// This package (`github.com/gamemod/warden/moderation`) contains an engine that screens player text (chat lines, commands, books, signs, anvil renames) against a set of obfuscation-resistant detectors: spam cooldowns and duplicate counting, server advertisements, excessive capitalization, and banned words. Confirmed violations are recorded to a time-windowed ledger backed by a durable store with a read-through cache, and threshold rules over the active-violation count resolve to host commands (warn, mute, kick, ban) executed by the host's dispatcher. Detection is synchronous and fails open; recording and punishment run asynchronously off the latency-sensitive path.
//
// See `cmd/warden` for a daemon built on this package.
package moderation
