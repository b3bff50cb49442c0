package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Head when the object does not exist
var ErrNotFound = errors.New("storage: object not found")

// ObjectInfo describes a stored object without its body
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BlobStore defines the object storage operations the service needs.
// This interface allows for easy mocking in tests
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Ensure S3Store implements BlobStore
var _ BlobStore = (*S3Store)(nil)
