package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/nhle/todolist/internal/apperr"
)

// FSStore implements Store on an afero filesystem. It backs the local
// storage mode and tests.
type FSStore struct {
	fs   afero.Fs
	root string
}

// NewFSStore stores objects at paths relative to the root of fsys.
func NewFSStore(fsys afero.Fs) *FSStore {
	return &FSStore{fs: fsys}
}

// NewLocalStore stores objects under dir on the OS filesystem.
func NewLocalStore(dir string) *FSStore {
	return &FSStore{fs: afero.NewBasePathFs(afero.NewOsFs(), dir), root: dir}
}

func (s *FSStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := afero.WriteReader(s.fs, key, r); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperr.ErrStorage, key, err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", key, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: opening %s: %v", apperr.ErrStorage, key, err)
	}
	return f, nil
}

func (s *FSStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %v", apperr.ErrStorage, key, err)
	}
	return nil
}

// SignedURL returns a file URL; local objects need no signature, so ttl is
// ignored.
func (s *FSStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if _, err := s.fs.Stat(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("object %s: %w", key, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("%w: stat %s: %v", apperr.ErrStorage, key, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.root, key))}
	return u.String(), nil
}

func (s *FSStore) EnsureBucket(_ context.Context) error {
	if s.root == "" {
		return nil
	}
	if err := afero.NewOsFs().MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", apperr.ErrStorage, s.root, err)
	}
	return nil
}
