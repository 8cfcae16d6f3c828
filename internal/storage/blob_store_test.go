package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/timmy/promptgen/internal/apperr"
)

type failingStorage struct {
	ObjectStorage
	err error
}

func (f failingStorage) Upload(context.Context, string, io.Reader, int64, string) error {
	return f.err
}

func TestBlobStore_StoreUnderNamespace(t *testing.T) {
	ctx := context.Background()
	backend := NewLocalStorage(afero.NewMemMapFs(), "/storage")
	store := NewBlobStore(backend, "")

	path, err := store.Store(ctx, []byte("jpeg"), "cat_ABCDEFGHIJ.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if path != "uploads/images/cat_ABCDEFGHIJ.jpg" {
		t.Errorf("Store() = %q", path)
	}
	if store.URL(path) != "/storage/uploads/images/cat_ABCDEFGHIJ.jpg" {
		t.Errorf("URL() = %q", store.URL(path))
	}
	if store.Namespace() != "uploads/images/" {
		t.Errorf("Namespace() = %q", store.Namespace())
	}
}

func TestBlobStore_CollisionFailsLoudly(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore(NewLocalStorage(afero.NewMemMapFs(), ""), "uploads/images")

	if _, err := store.Store(ctx, []byte("a"), "x.png", "image/png"); err != nil {
		t.Fatal(err)
	}
	_, err := store.Store(ctx, []byte("b"), "x.png", "image/png")
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("error kind = %s, want storage", apperr.KindOf(err))
	}
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("error = %v, want ErrObjectExists in chain", err)
	}
}

func TestBlobStore_BackendFailureIsStorageError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	store := NewBlobStore(failingStorage{err: diskFull}, "uploads/images")

	_, err := store.Store(context.Background(), []byte("a"), "x.png", "image/png")
	if !apperr.Is(err, apperr.KindStorage) || !errors.Is(err, diskFull) {
		t.Fatalf("Store() error = %v", err)
	}
}
