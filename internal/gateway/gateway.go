// Package gateway moves sealed transfer bytes in and out of object storage.
package gateway

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrObjectNotFound is returned by Get when no object exists for the key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that are empty, absolute or escape the root.
	ErrInvalidKey = errors.New("invalid object key")
)

// Gateway stores opaque sealed objects by key.
type Gateway interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Name() string
}

// ObjectKey returns the storage key for a transfer.
func ObjectKey(userID, transferID string) string {
	return userID + "/" + transferID + ".enc"
}

// validateKey accepts only relative slash-separated keys without dot segments.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if path.Clean(key) != key {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
