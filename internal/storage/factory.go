package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/timmy/promptgen/internal/config"
)

// ConfigFrom converts the application storage section into a backend Config.
func ConfigFrom(c *config.StorageConfig) *Config {
	return &Config{
		Type:      StorageType(c.Type),
		LocalRoot: c.LocalRoot,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
		Bucket:    c.Bucket,
		Region:    c.Region,
		PublicURL: c.PublicURL,
	}
}

// EnsureReady prepares backends that need it, such as creating a missing bucket.
func EnsureReady(ctx context.Context, s ObjectStorage) error {
	if b, ok := s.(interface{ EnsureBucket(context.Context) error }); ok {
		return b.EnsureBucket(ctx)
	}
	return nil
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including backend type, root or endpoint, and credentials.
//
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	// Auto-detect storage type if not specified
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorageAt(cfg.LocalRoot, cfg.PublicURL)
	case StorageTypeS3, StorageTypeR2, StorageTypeS3Compatible:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case endpoint == "":
		return StorageTypeLocal
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
