// Package attachment manages files uploaded against todos: validation,
// blob storage, and the attachment rows that reference the blobs.
package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/blob"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// Service coordinates the relational store and the blob store.
type Service struct {
	store  store.Store
	blobs  blob.Store
	files  afero.Fs
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service. files is the filesystem uploads are read
// from and downloads are written to.
func NewService(st store.Store, blobs blob.Store, files afero.Fs, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		blobs:  blobs,
		files:  files,
		logger: logger.Named("attachment"),
		now:    time.Now,
	}
}

// Upload validates and stores the contents of r as an attachment of todoID.
// mimeType may be empty, in which case it is derived from the name and
// content. No row is created when validation or the upload fails.
func (s *Service) Upload(ctx context.Context, todoID string, r io.Reader, fileName, mimeType string) (model.Attachment, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "." || fileName == "/" || fileName == "" {
		return model.Attachment{}, apperr.Validationf("file name is required")
	}
	if err := ValidateType(fileName); err != nil {
		return model.Attachment{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return model.Attachment{}, fmt.Errorf("%w: reading %s: %v", apperr.ErrStorage, fileName, err)
	}
	if err := ValidateSize(int64(len(data))); err != nil {
		return model.Attachment{}, err
	}
	if mimeType == "" {
		mimeType = detectMime(fileName, data)
	}

	todo, err := s.store.GetTodo(ctx, todoID)
	if err != nil {
		return model.Attachment{}, err
	}
	key := uniqueKey(todo, fileName, s.now())

	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return model.Attachment{}, err
	}

	a, err := s.store.CreateAttachment(ctx, model.Attachment{
		TodoID:   todoID,
		FileName: fileName,
		FilePath: key,
		FileSize: int64(len(data)),
		MimeType: mimeType,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Error("orphaned blob after failed attachment insert",
				zap.String("key", key), zap.Error(delErr))
		}
		return model.Attachment{}, err
	}

	s.logger.Info("attachment uploaded",
		zap.String("todo_id", todoID), zap.String("key", key), zap.Int64("size", a.FileSize))
	return a, nil
}

// UploadFile uploads the file at path.
func (s *Service) UploadFile(ctx context.Context, todoID, path string) (model.Attachment, error) {
	info, err := s.files.Stat(path)
	if err != nil {
		return model.Attachment{}, apperr.Validationf("cannot read %s: %v", path, err)
	}
	if info.IsDir() {
		return model.Attachment{}, apperr.Validationf("%s is a directory", path)
	}
	if err := ValidateType(info.Name()); err != nil {
		return model.Attachment{}, err
	}
	if err := ValidateSize(info.Size()); err != nil {
		return model.Attachment{}, err
	}

	f, err := s.files.Open(path)
	if err != nil {
		return model.Attachment{}, apperr.Validationf("cannot open %s: %v", path, err)
	}
	defer f.Close()

	return s.Upload(ctx, todoID, f, info.Name(), "")
}

// List returns the attachments of a todo, newest first.
func (s *Service) List(ctx context.Context, todoID string) ([]model.Attachment, error) {
	return s.store.ListAttachments(ctx, todoID)
}

// Open returns the attachment row and a reader over its blob.
func (s *Service) Open(ctx context.Context, id string) (model.Attachment, io.ReadCloser, error) {
	a, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		return model.Attachment{}, nil, err
	}
	rc, err := s.blobs.Get(ctx, a.FilePath)
	if err != nil {
		return model.Attachment{}, nil, err
	}
	return a, rc, nil
}

// Download copies an attachment into dir and returns the written path.
// Existing files are never overwritten.
func (s *Service) Download(ctx context.Context, id, dir string) (string, error) {
	a, rc, err := s.Open(ctx, id)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if err := s.files.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", apperr.ErrStorage, dir, err)
	}
	dest, err := s.freePath(dir, a.FileName)
	if err != nil {
		return "", err
	}
	if err := afero.WriteReader(s.files, dest, rc); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", apperr.ErrStorage, dest, err)
	}
	return dest, nil
}

// URL returns a signed, time-limited download URL.
func (s *Service) URL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	a, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		return "", err
	}
	return s.blobs.SignedURL(ctx, a.FilePath, ttl)
}

// Delete removes the attachment row and its blob. The row deletion is
// rolled back when the blob cannot be removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	var key string
	blobGone := false

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		a, err := tx.GetAttachment(ctx, id)
		if err != nil {
			return err
		}
		key = a.FilePath
		if err := tx.DeleteAttachment(ctx, id); err != nil {
			return err
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			return err
		}
		blobGone = true
		return nil
	})
	if err != nil {
		if blobGone {
			s.logger.Error("attachment row left without blob; delete the row manually",
				zap.String("attachment_id", id), zap.String("key", key), zap.Error(err))
		}
		return err
	}

	s.logger.Info("attachment deleted", zap.String("attachment_id", id), zap.String("key", key))
	return nil
}

// RemoveBlobs deletes blobs whose rows are already gone. Every failure is
// logged with its key; the combined error is a storage error.
func (s *Service) RemoveBlobs(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Error("orphaned blob", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d of %d attachment files could not be removed: %w",
			apperr.ErrStorage, len(errs), len(keys), errors.Join(errs...))
	}
	return nil
}

// uniqueKey returns a storage key not used by any of the todo's
// attachments.
func uniqueKey(todo model.TodoDetail, fileName string, at time.Time) string {
	taken := make(map[string]bool, len(todo.Attachments))
	for _, a := range todo.Attachments {
		taken[a.FilePath] = true
	}
	key := StorageKey(todo.ID, fileName, at)
	for n := 1; taken[key]; n++ {
		key = StorageKey(todo.ID, fmt.Sprintf("%d_%s", n, fileName), at)
	}
	return key
}

func (s *Service) freePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		exists, err := afero.Exists(s.files, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: checking %s: %v", apperr.ErrStorage, candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
}

func detectMime(fileName string, data []byte) string {
	if t := mime.TypeByExtension("." + Ext(fileName)); t != "" {
		return t
	}
	return mimetype.Detect(data).String()
}
