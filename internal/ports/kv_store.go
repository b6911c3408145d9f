package ports

import "context"

// KeyValueStore is the storage capability the registry, session store and
// aggregator are built on: opaque values under namespaced string keys.
// Get returns domain.ErrKeyNotFound when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
