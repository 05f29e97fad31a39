package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
)

const subtaskColumns = "id, todo_id, title, completed, position, created_at"

// CreateSubtask appends a subtask to the end of its todo's list.
func (s *SQLStore) CreateSubtask(ctx context.Context, subtask model.Subtask) (model.Subtask, error) {
	subtask.Title = strings.TrimSpace(subtask.Title)
	if subtask.Title == "" {
		return model.Subtask{}, apperr.Validationf("subtask title is required")
	}
	if subtask.ID == "" {
		subtask.ID = uuid.New().String()
	}

	err := s.inTx(ctx, func(tx *SQLStore) error {
		var next int
		if err := tx.get(ctx, &next,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM subtasks WHERE todo_id = ?",
			subtask.TodoID); err != nil {
			return tx.wrap(err, "getting next subtask position")
		}
		_, err := tx.exec(ctx, `
			INSERT INTO subtasks (id, todo_id, title, completed, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			subtask.ID, subtask.TodoID, subtask.Title, subtask.Completed, next, time.Now().UTC(),
		)
		if err != nil {
			return tx.wrap(err, "adding subtask to todo %s", subtask.TodoID)
		}
		return nil
	})
	if err != nil {
		return model.Subtask{}, err
	}
	return s.GetSubtask(ctx, subtask.ID)
}

// GetSubtask retrieves a single subtask by ID.
func (s *SQLStore) GetSubtask(ctx context.Context, id string) (model.Subtask, error) {
	var st model.Subtask
	if err := s.get(ctx, &st, "SELECT "+subtaskColumns+" FROM subtasks WHERE id = ?", id); err != nil {
		return model.Subtask{}, s.wrap(err, "subtask %s", id)
	}
	return st, nil
}

// UpdateSubtask updates the title and completion state of a subtask.
func (s *SQLStore) UpdateSubtask(ctx context.Context, subtask model.Subtask) (model.Subtask, error) {
	subtask.Title = strings.TrimSpace(subtask.Title)
	if subtask.Title == "" {
		return model.Subtask{}, apperr.Validationf("subtask title is required")
	}
	ok, err := s.exec(ctx,
		"UPDATE subtasks SET title = ?, completed = ? WHERE id = ?",
		subtask.Title, subtask.Completed, subtask.ID,
	)
	if err != nil {
		return model.Subtask{}, s.wrap(err, "updating subtask %s", subtask.ID)
	}
	if !ok {
		return model.Subtask{}, apperr.NotFoundf("subtask %s", subtask.ID)
	}
	return s.GetSubtask(ctx, subtask.ID)
}

// ToggleSubtask flips the completion state of a subtask.
func (s *SQLStore) ToggleSubtask(ctx context.Context, id string) (model.Subtask, error) {
	ok, err := s.exec(ctx, "UPDATE subtasks SET completed = NOT completed WHERE id = ?", id)
	if err != nil {
		return model.Subtask{}, s.wrap(err, "toggling subtask %s", id)
	}
	if !ok {
		return model.Subtask{}, apperr.NotFoundf("subtask %s", id)
	}
	return s.GetSubtask(ctx, id)
}

// ReorderSubtask sets the position of a subtask.
func (s *SQLStore) ReorderSubtask(ctx context.Context, id string, position int) error {
	if position < 0 {
		return apperr.Validationf("position must not be negative, got %d", position)
	}
	ok, err := s.exec(ctx, "UPDATE subtasks SET position = ? WHERE id = ?", position, id)
	if err != nil {
		return s.wrap(err, "reordering subtask %s", id)
	}
	if !ok {
		return apperr.NotFoundf("subtask %s", id)
	}
	return nil
}

// DeleteSubtask removes a subtask by ID.
func (s *SQLStore) DeleteSubtask(ctx context.Context, id string) error {
	ok, err := s.exec(ctx, "DELETE FROM subtasks WHERE id = ?", id)
	if err != nil {
		return s.wrap(err, "deleting subtask %s", id)
	}
	if !ok {
		return apperr.NotFoundf("subtask %s", id)
	}
	return nil
}

// ListSubtasks returns the subtasks of a todo ordered by position.
func (s *SQLStore) ListSubtasks(ctx context.Context, todoID string) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := s.selectAll(ctx, &subtasks,
		"SELECT "+subtaskColumns+" FROM subtasks WHERE todo_id = ? ORDER BY position, created_at",
		todoID)
	if err != nil {
		return nil, s.wrap(err, "querying subtasks of todo %s", todoID)
	}
	return subtasks, nil
}
