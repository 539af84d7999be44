// Package session tracks per-player ephemeral rate-limiting state. State
// lives for the duration of a connection, is never persisted, and is only
// mutated by the owning player's own event stream.
package session

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// State is the mutable per-player record consulted by the spam detector and
// the mention cooldown. Each player's events arrive on a single goroutine at
// a time, so fields need no further locking.
type State struct {
	LastChatMessage   string
	ChatRepeatCount   int
	ChatCooldownUntil time.Time

	LastCommand          string
	CommandRepeatCount   int
	CommandCooldownUntil time.Time

	MentionCooldownUntil time.Time
	LastMentionTarget    string
}

// MentionReady reports whether the player may trigger another mention ping.
func (s *State) MentionReady(now time.Time) bool {
	return !now.Before(s.MentionCooldownUntil)
}

// RecordMention notes a mention of target and starts the cooldown.
func (s *State) RecordMention(target string, until time.Time) {
	s.LastMentionTarget = target
	s.MentionCooldownUntil = until
}

// Registry maps player ids to their session state. Entries are created
// lazily on first access and removed on disconnect.
type Registry struct {
	states *xsync.MapOf[string, *State]
}

func NewRegistry() *Registry {
	return &Registry{states: xsync.NewMapOf[string, *State]()}
}

// Get returns the state for playerID, creating it if absent.
func (r *Registry) Get(playerID string) *State {
	st, _ := r.states.LoadOrCompute(playerID, func() *State {
		return &State{}
	})
	return st
}

// Remove drops the state for playerID. Called on disconnect.
func (r *Registry) Remove(playerID string) {
	r.states.Delete(playerID)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	return r.states.Size()
}
