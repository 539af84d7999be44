package storage

import (
	"context"
	"sync"
)

// MemStore is the in-memory Store, used in tests and ephemeral
// deployments. Semantics mirror GormStore exactly.
type MemStore struct {
	mu         sync.Mutex
	players    map[string]PlayerRecord
	ignores    map[string]map[string]bool
	violations map[string][]ViolationRecord
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		players:    make(map[string]PlayerRecord),
		ignores:    make(map[string]map[string]bool),
		violations: make(map[string][]ViolationRecord),
	}
}

func (s *MemStore) Bootstrap(ctx context.Context) error {
	return nil
}

func (s *MemStore) GetPlayer(ctx context.Context, playerID string) (*PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.players[playerID]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *MemStore) UpsertPlayer(ctx context.Context, rec *PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[rec.PlayerID] = *rec
	return nil
}

func (s *MemStore) AddIgnore(ctx context.Context, playerID, ignoredID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ignores[playerID]
	if !ok {
		m = make(map[string]bool)
		s.ignores[playerID] = m
	}
	m[ignoredID] = true
	return nil
}

func (s *MemStore) RemoveIgnore(ctx context.Context, playerID, ignoredID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ignores[playerID], ignoredID)
	return nil
}

func (s *MemStore) ListIgnores(ctx context.Context, playerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for ignored := range s.ignores[playerID] {
		out = append(out, ignored)
	}
	return out, nil
}

func (s *MemStore) PutViolation(ctx context.Context, rec *ViolationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations[rec.PlayerID] = append(s.violations[rec.PlayerID], *rec)
	return nil
}

func (s *MemStore) DeleteViolation(ctx context.Context, id, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.violations[playerID]
	for i, rec := range recs {
		if rec.ID == id {
			s.violations[playerID] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemStore) ListViolations(ctx context.Context, playerID string) ([]ViolationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.violations[playerID]
	out := make([]ViolationRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemStore) ListActiveViolations(ctx context.Context, playerID string, cutoffMillis int64) ([]ViolationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ViolationRecord
	for _, rec := range s.violations[playerID] {
		if rec.Timestamp > cutoffMillis {
			out = append(out, rec)
		}
	}
	return out, nil
}
