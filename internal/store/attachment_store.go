package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
)

const attachmentColumns = "id, todo_id, file_name, file_path, file_size, mime_type, created_at"

// CreateAttachment records an uploaded blob against a todo.
func (s *SQLStore) CreateAttachment(ctx context.Context, a model.Attachment) (model.Attachment, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.FileName == "" || a.FilePath == "" {
		return model.Attachment{}, apperr.Validationf("attachment needs a file name and storage path")
	}

	_, err := s.exec(ctx, `
		INSERT INTO attachments (id, todo_id, file_name, file_path, file_size, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TodoID, a.FileName, a.FilePath, a.FileSize, a.MimeType, time.Now().UTC(),
	)
	if err != nil {
		return model.Attachment{}, s.wrap(err, "recording attachment %q on todo %s", a.FileName, a.TodoID)
	}
	return s.GetAttachment(ctx, a.ID)
}

// GetAttachment retrieves a single attachment by ID.
func (s *SQLStore) GetAttachment(ctx context.Context, id string) (model.Attachment, error) {
	var a model.Attachment
	if err := s.get(ctx, &a, "SELECT "+attachmentColumns+" FROM attachments WHERE id = ?", id); err != nil {
		return model.Attachment{}, s.wrap(err, "attachment %s", id)
	}
	return a, nil
}

// ListAttachments returns a todo's attachments, newest first.
func (s *SQLStore) ListAttachments(ctx context.Context, todoID string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := s.selectAll(ctx, &attachments,
		"SELECT "+attachmentColumns+" FROM attachments WHERE todo_id = ? ORDER BY created_at DESC",
		todoID)
	if err != nil {
		return nil, s.wrap(err, "querying attachments of todo %s", todoID)
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment row. The blob is the caller's
// concern.
func (s *SQLStore) DeleteAttachment(ctx context.Context, id string) error {
	ok, err := s.exec(ctx, "DELETE FROM attachments WHERE id = ?", id)
	if err != nil {
		return s.wrap(err, "deleting attachment %s", id)
	}
	if !ok {
		return apperr.NotFoundf("attachment %s", id)
	}
	return nil
}
