package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemCacheStore is an in-process cache: LRU-bounded capacity plus a fixed
// absolute TTL, whichever evicts first.
type MemCacheStore struct {
	data *expirable.LRU[string, string]
}

func NewMemCacheStore(capacity int, ttl time.Duration) *MemCacheStore {
	return &MemCacheStore{
		data: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

func (s *MemCacheStore) Get(ctx context.Context, name, key string) (string, bool, error) {
	v, ok := s.data.Get(name + "/" + key)
	return v, ok, nil
}

func (s *MemCacheStore) Set(ctx context.Context, name, key, val string) error {
	s.data.Add(name+"/"+key, val)
	return nil
}

func (s *MemCacheStore) Purge(ctx context.Context, name, key string) error {
	s.data.Remove(name + "/" + key)
	return nil
}
