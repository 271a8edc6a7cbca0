// Package blob provides a small document store abstraction: opaque JSON
// documents addressed by string keys. Three backends are provided
// (filesystem files, a SQLite BLOB table, and a bbolt bucket) so the
// storage medium is swappable without touching the repositories above it.
package blob

import "context"

// Store persists opaque documents by key. Get returns domain.ErrNotFound
// for absent keys; any other error is a storage failure.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*BoltStore)(nil)
)
