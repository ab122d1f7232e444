// Package storage is the key-value boundary owned by the coordinator.
//
// Values are opaque byte slices (the settings service stores JSON). A Get for
// an absent key returns (nil, nil). Implementations serialise writes per key,
// so writes issued sequentially against one key land in issuance order.
//
// Backends:
//   - MemoryStore  : process-local map, used by tests and "memory" DSN
//   - SQLiteStore  : modernc.org/sqlite, "sqlite://<path>"
//   - PostgresStore: pgx stdlib driver, "postgres://..."
//   - RedisStore   : go-redis, "redis://host:port/db"
//
// Observed wraps any Store and reports every successful write to listeners;
// it is how the change notifier learns about mutations.
package storage

import "context"

// Store is the async get/set surface over the small fixed set of settings keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
