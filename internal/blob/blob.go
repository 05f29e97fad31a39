// Package blob stores attachment contents in an object-storage bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/nhle/todolist/internal/apperr"
)

// Store is a flat key/value object store.
type Store interface {
	// Put uploads size bytes from r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens the object at key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time-limited URL for reading the object at key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// EnsureBucket creates the backing bucket if it does not exist yet.
	EnsureBucket(ctx context.Context) error
}

// checkKey rejects keys that could escape the bucket namespace.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("%w: invalid object key %q", apperr.ErrStorage, key)
	}
	return nil
}
