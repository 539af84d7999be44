// Package cachestore provides the TTL cache fronting the durable store.
// Entries are JSON payloads grouped by a logical name (player profiles,
// ignore sets, violation sets) and keyed by player id. The cache is never
// the source of truth: it starts empty on process restart and is
// transparently repopulated by read-through callers.
package cachestore

import "context"

// Store is a bounded cache with per-entry TTL. Get distinguishes a miss
// from a cached empty payload, which matters for cached violation sets.
type Store interface {
	Get(ctx context.Context, name, key string) (string, bool, error)
	Set(ctx context.Context, name, key, val string) error
	Purge(ctx context.Context, name, key string) error
}
