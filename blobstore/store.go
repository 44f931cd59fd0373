// Package blobstore stores serialized encoded sets as named blobs.
//
// The Store interface is intentionally small: encoded sets are
// immutable, so there is no update or append path, only whole-blob put
// and get. Implementations must be safe for concurrent use.
//
// Built-in implementations:
//
//   - MemoryStore: in-process, for tests and caches
//   - LocalStore: local filesystem with atomic writes
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named blob does not exist.
// Implementations return errors satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blobstore: blob not found")

// Store is an abstraction over immutable named blobs.
type Store interface {
	// Put writes a blob. Implementations write atomically: a
	// concurrent Get observes either the old content or the new,
	// never a mix.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the blob's content.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, in
	// lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
