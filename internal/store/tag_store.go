package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
)

const tagColumns = "id, name, created_at"

// CreateTag inserts a new tag. Names are unique.
func (s *SQLStore) CreateTag(ctx context.Context, tag model.Tag) (model.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return model.Tag{}, apperr.Validationf("tag name is required")
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}

	_, err := s.exec(ctx,
		"INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)",
		tag.ID, tag.Name, time.Now().UTC(),
	)
	if err != nil {
		return model.Tag{}, s.wrap(err, "creating tag %q", tag.Name)
	}
	return s.getTag(ctx, tag.ID)
}

// UpdateTag renames a tag.
func (s *SQLStore) UpdateTag(ctx context.Context, tag model.Tag) (model.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return model.Tag{}, apperr.Validationf("tag name is required")
	}
	ok, err := s.exec(ctx, "UPDATE tags SET name = ? WHERE id = ?", tag.Name, tag.ID)
	if err != nil {
		return model.Tag{}, s.wrap(err, "renaming tag to %q", tag.Name)
	}
	if !ok {
		return model.Tag{}, apperr.NotFoundf("tag %s", tag.ID)
	}
	return s.getTag(ctx, tag.ID)
}

// DeleteTag removes a tag and its todo associations.
func (s *SQLStore) DeleteTag(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *SQLStore) error {
		if _, err := tx.exec(ctx, "DELETE FROM todo_tags WHERE tag_id = ?", id); err != nil {
			return tx.wrap(err, "unlinking tag %s", id)
		}
		ok, err := tx.exec(ctx, "DELETE FROM tags WHERE id = ?", id)
		if err != nil {
			return tx.wrap(err, "deleting tag %s", id)
		}
		if !ok {
			return apperr.NotFoundf("tag %s", id)
		}
		return nil
	})
}

// ListTags retrieves all tags ordered by name.
func (s *SQLStore) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.selectAll(ctx, &tags, "SELECT "+tagColumns+" FROM tags ORDER BY name"); err != nil {
		return nil, s.wrap(err, "querying tags")
	}
	return tags, nil
}

// GetTagsForTodo retrieves all tags associated with a todo.
func (s *SQLStore) GetTagsForTodo(ctx context.Context, todoID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.selectAll(ctx, &tags, `
		SELECT t.id, t.name, t.created_at FROM tags t
		INNER JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE tt.todo_id = ?
		ORDER BY t.name`, todoID)
	if err != nil {
		return nil, s.wrap(err, "querying tags for todo %s", todoID)
	}
	return tags, nil
}

// SetTodoTags replaces all tag associations for a todo. Duplicate ids are
// ignored; an unknown todo or tag fails the whole replacement.
func (s *SQLStore) SetTodoTags(ctx context.Context, todoID string, tagIDs []string) error {
	return s.inTx(ctx, func(tx *SQLStore) error {
		var exists int
		if err := tx.get(ctx, &exists, "SELECT COUNT(*) FROM todos WHERE id = ?", todoID); err != nil {
			return tx.wrap(err, "checking todo %s", todoID)
		}
		if exists == 0 {
			return apperr.NotFoundf("todo %s", todoID)
		}

		if _, err := tx.exec(ctx, "DELETE FROM todo_tags WHERE todo_id = ?", todoID); err != nil {
			return tx.wrap(err, "clearing tags of todo %s", todoID)
		}

		seen := make(map[string]bool, len(tagIDs))
		for _, tagID := range tagIDs {
			if seen[tagID] {
				continue
			}
			seen[tagID] = true
			if _, err := tx.exec(ctx,
				"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?)",
				todoID, tagID); err != nil {
				return tx.wrap(err, "setting tag %s on todo %s", tagID, todoID)
			}
		}
		return nil
	})
}

func (s *SQLStore) getTag(ctx context.Context, id string) (model.Tag, error) {
	var t model.Tag
	if err := s.get(ctx, &t, "SELECT "+tagColumns+" FROM tags WHERE id = ?", id); err != nil {
		return model.Tag{}, s.wrap(err, "tag %s", id)
	}
	return t, nil
}
