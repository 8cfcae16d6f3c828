package storage

import (
	"fmt"
	"path"
	"strings"
)

// cleanKey normalizes an object key to slash-separated relative form and
// rejects keys that would resolve outside the storage root.
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// JoinKey joins a namespace and a name into an object key.
func JoinKey(namespace, name string) string {
	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}
