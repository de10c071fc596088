// Package blob provides key-addressed byte storage behind a small interface.
// Records and generated documents both live here, so a deployment can point
// the whole system at a local directory or a remote object store.
package blob

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when no blob is stored under the key.
var ErrNotExist = errors.New("blob does not exist")

// Store is a key-addressed byte store. Keys are slash-separated paths,
// e.g. "agents/<id>/agent.json".
type Store interface {
	// Put stores data under key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the blob stored under key, or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns every key beginning with prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes the blob under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// IsNotExist reports whether err indicates a missing blob.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}
