// Package ledger is the durable, time-windowed record of violations and the
// read-through cache over the player storage. Four logical caches share one
// cache store: player profiles, ignore sets, full violation histories, and
// active (in-window) violation sets.
//
// The cache is never the source of truth. On a read miss the ledger loads
// from the durable store and populates the cache; on writes it updates the
// store first and then patches the affected cache entries in place, so a
// hot player's entry is appended to rather than reloaded.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/gamemod/warden/moderation/cachestore"
	"github.com/gamemod/warden/moderation/detector"
	"github.com/gamemod/warden/moderation/storage"
)

// cache entry namespaces
const (
	cachePlayer     = "player"
	cacheIgnores    = "ignores"
	cacheViolations = "violations"
	cacheActive     = "active-violations"
)

// Violation is the ledger's view of one recorded violation.
type Violation struct {
	ID        string
	PlayerID  string
	Category  detector.Category
	Details   string
	Timestamp time.Time
}

func fromRecord(rec *storage.ViolationRecord) Violation {
	return Violation{
		ID:        rec.ID,
		PlayerID:  rec.PlayerID,
		Category:  detector.ParseCategory(rec.Category),
		Details:   rec.Details,
		Timestamp: rec.Time(),
	}
}

// Ledger fronts a Store with a TTL cache and applies the violation window.
type Ledger struct {
	Store  storage.Store
	Cache  cachestore.Store
	Logger *slog.Logger
	// Window is the global active-violation duration. Zero means every
	// record is immediately inactive.
	Window time.Duration
	// Now is the clock, overridable in tests.
	Now func() time.Time

	// locks serializes cache mutations per player key; an update to a
	// key is all-or-nothing, never a stale read overwriting a
	// concurrent append.
	locks *xsync.MapOf[string, *sync.Mutex]
}

func New(store storage.Store, cache cachestore.Store, window time.Duration, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		Store:  store,
		Cache:  cache,
		Logger: logger,
		Window: window,
		Now:    time.Now,
		locks:  xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// keyLock returns the mutex guarding all cache entries for one player. The
// engine worker and the admin/read-through paths mutate the same keys from
// different goroutines.
func (l *Ledger) keyLock(playerID string) *sync.Mutex {
	mu, _ := l.locks.LoadOrCompute(playerID, func() *sync.Mutex { return &sync.Mutex{} })
	return mu
}

// Record persists a new violation and patches both violation caches. The
// store write is synchronous; callers that must not block run Record off
// the latency-sensitive path.
func (l *Ledger) Record(ctx context.Context, playerID string, category detector.Category, details string) (*Violation, error) {
	rec := &storage.ViolationRecord{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		Category:  category.String(),
		Details:   details,
		Timestamp: l.Now().UnixMilli(),
	}
	if err := l.Store.PutViolation(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting violation: %w", err)
	}
	// append to existing cache entries rather than invalidating them; a
	// missing entry is left for the next read-through to populate in full
	l.appendCached(ctx, cacheViolations, playerID, rec)
	l.appendCached(ctx, cacheActive, playerID, rec)
	v := fromRecord(rec)
	return &v, nil
}

// ActiveCount returns the number of the player's in-window violations for
// one category, counting any record just inserted.
func (l *Ledger) ActiveCount(ctx context.Context, playerID string, category detector.Category) (int, error) {
	recs, err := l.activeViolations(ctx, playerID)
	if err != nil {
		return 0, err
	}
	cutoff := l.cutoff()
	count := 0
	for _, rec := range recs {
		// cached entries age, so the window is re-applied at read time
		if rec.Category == category.String() && rec.Timestamp > cutoff {
			count++
		}
	}
	return count, nil
}

// Violations returns the player's full violation history (the audit trail),
// oldest first.
func (l *Ledger) Violations(ctx context.Context, playerID string) ([]Violation, error) {
	recs, err := l.cachedList(ctx, cacheViolations, playerID, l.Store.ListViolations)
	if err != nil {
		return nil, err
	}
	out := make([]Violation, len(recs))
	for i := range recs {
		out[i] = fromRecord(&recs[i])
	}
	return out, nil
}

// Remove deletes a violation from the store and from both caches. Used for
// administrative pardons.
func (l *Ledger) Remove(ctx context.Context, violationID, playerID string) error {
	if err := l.Store.DeleteViolation(ctx, violationID, playerID); err != nil {
		return fmt.Errorf("deleting violation: %w", err)
	}
	l.removeCached(ctx, cacheViolations, playerID, violationID)
	l.removeCached(ctx, cacheActive, playerID, violationID)
	return nil
}

func (l *Ledger) cutoff() int64 {
	return l.Now().Add(-l.Window).UnixMilli()
}

// activeViolations is the read-through path for the active-violation cache.
// The cached entry holds all categories for the player; filtering happens
// at the call site.
func (l *Ledger) activeViolations(ctx context.Context, playerID string) ([]storage.ViolationRecord, error) {
	load := func(ctx context.Context, playerID string) ([]storage.ViolationRecord, error) {
		return l.Store.ListActiveViolations(ctx, playerID, l.cutoff())
	}
	return l.cachedList(ctx, cacheActive, playerID, load)
}

func (l *Ledger) cachedList(ctx context.Context, name, playerID string, load func(context.Context, string) ([]storage.ViolationRecord, error)) ([]storage.ViolationRecord, error) {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	var recs []storage.ViolationRecord
	raw, ok, err := l.Cache.Get(ctx, name, playerID)
	if err != nil {
		l.Logger.Warn("violation cache read failed", "cache", name, "player", playerID, "err", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			return recs, nil
		}
		l.Logger.Warn("corrupt violation cache entry, reloading", "cache", name, "player", playerID)
	}
	recs, err = load(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading violations: %w", err)
	}
	l.setCached(ctx, name, playerID, recs)
	return recs, nil
}

func (l *Ledger) appendCached(ctx context.Context, name, playerID string, rec *storage.ViolationRecord) {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	raw, ok, err := l.Cache.Get(ctx, name, playerID)
	if err != nil || !ok {
		return
	}
	var recs []storage.ViolationRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		_ = l.Cache.Purge(ctx, name, playerID)
		return
	}
	// a read-through that ran between the store write and this append may
	// already hold the record
	for _, existing := range recs {
		if existing.ID == rec.ID {
			return
		}
	}
	recs = append(recs, *rec)
	l.setCached(ctx, name, playerID, recs)
}

func (l *Ledger) removeCached(ctx context.Context, name, playerID, violationID string) {
	mu := l.keyLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	raw, ok, err := l.Cache.Get(ctx, name, playerID)
	if err != nil || !ok {
		return
	}
	var recs []storage.ViolationRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		_ = l.Cache.Purge(ctx, name, playerID)
		return
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.ID != violationID {
			kept = append(kept, rec)
		}
	}
	l.setCached(ctx, name, playerID, kept)
}

func (l *Ledger) setCached(ctx context.Context, name, playerID string, recs []storage.ViolationRecord) {
	if recs == nil {
		recs = []storage.ViolationRecord{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := l.Cache.Set(ctx, name, playerID, string(raw)); err != nil {
		l.Logger.Warn("violation cache write failed", "cache", name, "player", playerID, "err", err)
	}
}
