// Package store is the job store bridge: a key/blob store holding one
// artifact per file id. The store is the job state machine: a missing key
// means the job is still pending, a present key means it is ready. Keys are
// write-once; there is never a second artifact under the same id.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned by Put when the key already names a blob.
var ErrDuplicateKey = errors.New("store: key already exists")

// StorageError wraps backend failures so callers can distinguish them from
// the ordinary not-found (pending) case, which is never an error.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is the key/blob contract the export pipeline depends on.
type Store interface {
	// Put stores data under key. The key becomes immutable: a second Put
	// for the same key fails with ErrDuplicateKey.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Exists reports whether a blob is stored under key. Not-found is
	// false, nil; only backend failures return a *StorageError.
	Exists(ctx context.Context, key string) (bool, error)

	// GetString fetches a blob and decodes it as UTF-8 text. Used for
	// dry-run report retrieval only.
	GetString(ctx context.Context, key string) (string, error)
}
