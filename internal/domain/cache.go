package domain

import "context"

// CacheStore is the port for the content-addressed cache. Implementations must
// treat missing or corrupt entries as a miss and never surface deserialization
// problems to callers. Writes are whole-value overwrites; concurrent writers
// for the same key race benignly (last writer wins).
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}
