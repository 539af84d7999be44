// Package storage is the durable backend for player profiles, ignore
// relationships, and violation records. Two interchangeable
// implementations exist behind one contract: a gorm-backed relational
// store (embedded sqlite or networked postgres, chosen by URL) and an
// in-memory store for tests and ephemeral deployments. Backend choice is a
// deployment detail; both produce identical query results for identical
// inputs.
package storage

import "context"

// Store is the contract the violation ledger builds on.
//
// Lookup misses return (nil, nil) rather than an error, so callers can
// distinguish "player unknown" from a backend failure. ListActiveViolations
// applies the window strictly: a record whose timestamp equals the cutoff
// is excluded.
type Store interface {
	// Bootstrap creates the schema if absent. Idempotent; must complete
	// before any row-level traffic.
	Bootstrap(ctx context.Context) error

	GetPlayer(ctx context.Context, playerID string) (*PlayerRecord, error)
	UpsertPlayer(ctx context.Context, rec *PlayerRecord) error

	AddIgnore(ctx context.Context, playerID, ignoredID string) error
	RemoveIgnore(ctx context.Context, playerID, ignoredID string) error
	ListIgnores(ctx context.Context, playerID string) ([]string, error)

	PutViolation(ctx context.Context, rec *ViolationRecord) error
	DeleteViolation(ctx context.Context, id, playerID string) error
	ListViolations(ctx context.Context, playerID string) ([]ViolationRecord, error)
	// ListActiveViolations returns records with Timestamp > cutoffMillis.
	ListActiveViolations(ctx context.Context, playerID string, cutoffMillis int64) ([]ViolationRecord, error)
}
