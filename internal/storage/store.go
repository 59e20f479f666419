// Package storage provides durable key-value blob storage for persisted
// vector indexes and conversation records. Backends guarantee that a write
// is never partially visible: readers see either the previous blob or the
// complete new one.
package storage

import (
	"context"
	"errors"
)

// Common errors for blob storage operations.
var (
	// ErrNotFound indicates no blob exists under the requested key.
	ErrNotFound = errors.New("blob not found")
)

// BlobStore is durable key-value storage with atomic overwrite.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// ReadAll returns the complete blob stored under key,
	// or ErrNotFound if the key is absent.
	ReadAll(ctx context.Context, key string) ([]byte, error)

	// WriteAll stores data under key, replacing any previous blob.
	// The new blob becomes visible atomically.
	WriteAll(ctx context.Context, key string, data []byte) error

	// Delete removes the blob under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
