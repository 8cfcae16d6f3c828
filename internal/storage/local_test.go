package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func newMemStorage() *LocalStorage {
	return NewLocalStorage(afero.NewMemMapFs(), "/storage/")
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	data := []byte("image-bytes")
	if err := s.Upload(ctx, "uploads/images/a.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	rc, err := s.Download(ctx, "uploads/images/a.jpg")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Errorf("Download() = %q, want %q", got, data)
	}

	if url := s.GetURL("uploads/images/a.jpg"); url != "/storage/uploads/images/a.jpg" {
		t.Errorf("GetURL() = %q", url)
	}
}

func TestLocalStorage_NeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	first := []byte("first")
	if err := s.Upload(ctx, "k/x.png", bytes.NewReader(first), int64(len(first)), "image/png"); err != nil {
		t.Fatal(err)
	}
	second := []byte("second")
	err := s.Upload(ctx, "k/x.png", bytes.NewReader(second), int64(len(second)), "image/png")
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("second Upload() error = %v, want ErrObjectExists", err)
	}

	rc, err := s.Download(ctx, "k/x.png")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "first" {
		t.Errorf("object was overwritten: %q", got)
	}
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	for _, key := range []string{"", "/etc/passwd", "../x.png", "a/../../x.png", `..\x.png`} {
		err := s.Upload(ctx, key, bytes.NewReader(nil), 0, "image/png")
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Upload(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestLocalStorage_ShortWriteRemovesFile(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	err := s.Upload(ctx, "a/b.gif", bytes.NewReader([]byte("abc")), 10, "image/gif")
	if err == nil {
		t.Fatal("expected short write error")
	}
	ok, err := s.Exists(ctx, "a/b.gif")
	if err != nil || ok {
		t.Fatalf("Exists() = %v, %v; want partial file removed", ok, err)
	}
}

func TestLocalStorage_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	if err := s.Upload(ctx, "d/e.webp", bytes.NewReader([]byte("x")), 1, "image/webp"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "d/e.webp"); !ok {
		t.Fatal("expected object to exist")
	}
	if err := s.Delete(ctx, "d/e.webp"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "d/e.webp"); ok {
		t.Fatal("expected object to be gone")
	}
	if err := s.Delete(ctx, "d/e.webp"); err != nil {
		t.Fatalf("deleting a missing object: %v", err)
	}
	if _, err := s.Download(ctx, "d/e.webp"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Download() error = %v, want ErrObjectNotFound", err)
	}
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	for _, key := range []string{"uploads/images/a.jpg", "uploads/images/b.png", "uploads/avatars/c.png"} {
		if err := s.Upload(ctx, key, bytes.NewReader([]byte("xy")), 2, "image/png"); err != nil {
			t.Fatal(err)
		}
	}

	objects, err := s.List(ctx, "uploads/images/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
		if o.Size != 2 {
			t.Errorf("%s size = %d, want 2", o.Key, o.Size)
		}
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "uploads/images/a.jpg" || keys[1] != "uploads/images/b.png" {
		t.Fatalf("List() keys = %v", keys)
	}

	empty, err := s.List(ctx, "missing/")
	if err != nil || len(empty) != 0 {
		t.Fatalf("List(missing) = %v, %v", empty, err)
	}
}
