package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gamemod/warden/moderation/storage"
)

// GetPlayer returns the player's profile, read-through cached. A missing
// profile returns (nil, nil); callers surface that as an explicit absence.
func (l *Ledger) GetPlayer(ctx context.Context, playerID string) (*storage.PlayerRecord, error) {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	raw, ok, err := l.Cache.Get(ctx, cachePlayer, playerID)
	if err != nil {
		l.Logger.Warn("player cache read failed", "player", playerID, "err", err)
	} else if ok {
		var rec storage.PlayerRecord
		if err := json.Unmarshal([]byte(raw), &rec); err == nil {
			return &rec, nil
		}
		l.Logger.Warn("corrupt player cache entry, reloading", "player", playerID)
	}
	rec, err := l.Store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading player: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	l.cachePlayerRecord(ctx, rec)
	return rec, nil
}

// UpdatePlayer writes the profile through to the store and refreshes the
// cache entry.
func (l *Ledger) UpdatePlayer(ctx context.Context, rec *storage.PlayerRecord) error {
	mu := l.keyLock(rec.PlayerID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.Store.UpsertPlayer(ctx, rec); err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	l.cachePlayerRecord(ctx, rec)
	return nil
}

func (l *Ledger) cachePlayerRecord(ctx context.Context, rec *storage.PlayerRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := l.Cache.Set(ctx, cachePlayer, rec.PlayerID, string(raw)); err != nil {
		l.Logger.Warn("player cache write failed", "player", rec.PlayerID, "err", err)
	}
}

// AddIgnore records that playerID ignores ignoredID.
func (l *Ledger) AddIgnore(ctx context.Context, playerID, ignoredID string) error {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.Store.AddIgnore(ctx, playerID, ignoredID); err != nil {
		return fmt.Errorf("adding ignore: %w", err)
	}
	if ignores, err := l.Store.ListIgnores(ctx, playerID); err == nil {
		l.cacheIgnoreSet(ctx, playerID, ignores)
	}
	return nil
}

// RemoveIgnore removes the relationship.
func (l *Ledger) RemoveIgnore(ctx context.Context, playerID, ignoredID string) error {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.Store.RemoveIgnore(ctx, playerID, ignoredID); err != nil {
		return fmt.Errorf("removing ignore: %w", err)
	}
	if ignores, err := l.Store.ListIgnores(ctx, playerID); err == nil {
		l.cacheIgnoreSet(ctx, playerID, ignores)
	}
	return nil
}

// IsIgnoring reports whether playerID ignores otherID.
func (l *Ledger) IsIgnoring(ctx context.Context, playerID, otherID string) (bool, error) {
	ignores, err := l.ListIgnores(ctx, playerID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ignores, otherID), nil
}

// ListIgnores returns the set of players playerID ignores, read-through
// cached.
func (l *Ledger) ListIgnores(ctx context.Context, playerID string) ([]string, error) {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	raw, ok, err := l.Cache.Get(ctx, cacheIgnores, playerID)
	if err != nil {
		l.Logger.Warn("ignore cache read failed", "player", playerID, "err", err)
	} else if ok {
		var ignores []string
		if err := json.Unmarshal([]byte(raw), &ignores); err == nil {
			return ignores, nil
		}
	}
	ignores, err := l.Store.ListIgnores(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading ignores: %w", err)
	}
	l.cacheIgnoreSet(ctx, playerID, ignores)
	return ignores, nil
}

func (l *Ledger) cacheIgnoreSet(ctx context.Context, playerID string, ignores []string) {
	if ignores == nil {
		ignores = []string{}
	}
	raw, err := json.Marshal(ignores)
	if err != nil {
		return
	}
	if err := l.Cache.Set(ctx, cacheIgnores, playerID, string(raw)); err != nil {
		l.Logger.Warn("ignore cache write failed", "player", playerID, "err", err)
	}
}
