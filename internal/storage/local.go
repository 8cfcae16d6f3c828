package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalStorage implements ObjectStorage on a filesystem. Keys map to
// slash-separated paths below the filesystem root.
type LocalStorage struct {
	fs        afero.Fs
	publicURL string
}

// NewLocalStorage creates a local storage backend on fsys.
// Parameters:
//   - fsys: filesystem rooted at the storage directory (a BasePathFs in production).
//   - publicURL: URL prefix under which stored files are served.
func NewLocalStorage(fsys afero.Fs, publicURL string) *LocalStorage {
	return &LocalStorage{
		fs:        fsys,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// NewLocalStorageAt creates a local storage backend rooted at dir on the OS filesystem.
func NewLocalStorageAt(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return NewLocalStorage(afero.NewBasePathFs(afero.NewOsFs(), dir), publicURL), nil
}

// Upload writes the object with O_EXCL so an existing file is never replaced.
func (s *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.FromSlash(key)
	if err := s.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		return fmt.Errorf("failed to create object: %w", err)
	}

	written, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("short write: wrote %d of %d bytes", written, size)
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Download opens the object for reading.
func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(filepath.FromSlash(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return f, nil
}

// GetURL returns the public URL for accessing an object
func (s *LocalStorage) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(filepath.FromSlash(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if an object exists in storage
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, filepath.FromSlash(key))
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return ok, nil
}

// List walks the directory holding prefix and returns matching files.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := path.Dir(strings.ReplaceAll(prefix, "\\", "/") + "x")
	if dir == "." {
		dir = ""
	}
	root := filepath.FromSlash(dir)
	if root == "" {
		root = "."
	}

	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	if !exists {
		return nil, nil
	}

	var objects []ObjectInfo
	err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
		key = strings.TrimPrefix(key, "/")
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return objects, nil
}
