package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrObjectExists is returned by Upload when the key is already taken.
	ErrObjectExists = errors.New("storage: object already exists")

	// ErrObjectNotFound is returned by Download for a missing key.
	ErrObjectNotFound = errors.New("storage: object not found")

	// ErrInvalidKey is returned for empty keys or keys escaping the root.
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// Upload writes a new object. It never overwrites: an existing key
	// yields ErrObjectExists.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
