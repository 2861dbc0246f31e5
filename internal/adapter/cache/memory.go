package cache

import (
	"context"
	"time"

	"intelligence-layer/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LayeredStore fronts a persistent store with an expirable in-memory LRU so
// hot fingerprints skip the disk or database entirely. The LRU TTL matches the
// persistent TTL, which is where the configured cache TTL is enforced for the
// memory layer.
type LayeredStore struct {
	mem  *expirable.LRU[string, []byte]
	next domain.CacheStore
}

func NewLayeredStore(next domain.CacheStore, entries int, ttl time.Duration) *LayeredStore {
	if entries <= 0 {
		entries = 256
	}
	return &LayeredStore{
		mem:  expirable.NewLRU[string, []byte](entries, nil, ttl),
		next: next,
	}
}

func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, ok := s.mem.Get(key); ok {
		return value, true
	}
	value, ok := s.next.Get(ctx, key)
	if ok {
		s.mem.Add(key, value)
	}
	return value, ok
}

func (s *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	s.mem.Add(key, value)
	return s.next.Set(ctx, key, value)
}

var _ domain.CacheStore = (*LayeredStore)(nil)
