package storage

import (
	"bytes"
	"context"
	"errors"

	"github.com/timmy/promptgen/internal/apperr"
)

// DefaultNamespace is where generation uploads are written.
const DefaultNamespace = "uploads/images"

// BlobStore writes upload bytes under a fixed namespace of an ObjectStorage.
type BlobStore struct {
	backend   ObjectStorage
	namespace string
}

// NewBlobStore creates a BlobStore writing below namespace.
func NewBlobStore(backend ObjectStorage, namespace string) *BlobStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &BlobStore{backend: backend, namespace: namespace}
}

// Namespace returns the key prefix shared by every stored blob.
func (b *BlobStore) Namespace() string {
	return JoinKey(b.namespace, "")
}

// Store persists data as <namespace>/<safeName> and returns that path.
// Failures, including a name collision, are storage errors.
func (b *BlobStore) Store(ctx context.Context, data []byte, safeName, contentType string) (string, error) {
	key := JoinKey(b.namespace, safeName)

	err := b.backend.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, ErrObjectExists):
		return "", apperr.Storage("storage path collision", err)
	default:
		return "", apperr.Storage("failed to store image", err)
	}
}

// URL resolves a stored path to a client-facing URL.
func (b *BlobStore) URL(storagePath string) string {
	return b.backend.GetURL(storagePath)
}
