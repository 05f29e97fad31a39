package todo

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name  string `validate:"required,max=50"`
	Color string `validate:"omitempty,hexcolor"`
}

type tagInput struct {
	Name string `validate:"required,max=50"`
}

type subtaskInput struct {
	Title string `validate:"required,max=500"`
}

// === Categories ===

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (model.Category, error) {
	in.Name, in.Color = strings.TrimSpace(in.Name), strings.TrimSpace(in.Color)
	if err := apperr.Validate(in); err != nil {
		return model.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, model.Category{Name: in.Name, Color: in.Color})
	if err != nil {
		return model.Category{}, err
	}
	s.logger.Info("category created", zap.String("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (model.Category, error) {
	in.Name, in.Color = strings.TrimSpace(in.Name), strings.TrimSpace(in.Color)
	if err := apperr.Validate(in); err != nil {
		return model.Category{}, err
	}
	return s.store.UpdateCategory(ctx, model.Category{ID: id, Name: in.Name, Color: in.Color})
}

// DeleteCategory removes a category. Todos in it become uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// === Tags ===

func (s *Service) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	in := tagInput{Name: strings.TrimSpace(name)}
	if err := apperr.Validate(in); err != nil {
		return model.Tag{}, err
	}
	return s.store.CreateTag(ctx, model.Tag{Name: in.Name})
}

func (s *Service) RenameTag(ctx context.Context, id, name string) (model.Tag, error) {
	in := tagInput{Name: strings.TrimSpace(name)}
	if err := apperr.Validate(in); err != nil {
		return model.Tag{}, err
	}
	return s.store.UpdateTag(ctx, model.Tag{ID: id, Name: in.Name})
}

// DeleteTag removes a tag and unlinks it from every todo.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	return s.store.DeleteTag(ctx, id)
}

func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.store.ListTags(ctx)
}

// === Subtasks ===

// AddSubtask appends a subtask to the end of the todo's checklist.
func (s *Service) AddSubtask(ctx context.Context, todoID, title string) (model.Subtask, error) {
	in := subtaskInput{Title: strings.TrimSpace(title)}
	if err := apperr.Validate(in); err != nil {
		return model.Subtask{}, err
	}
	return s.store.CreateSubtask(ctx, model.Subtask{TodoID: todoID, Title: in.Title})
}

func (s *Service) RenameSubtask(ctx context.Context, id, title string) (model.Subtask, error) {
	in := subtaskInput{Title: strings.TrimSpace(title)}
	if err := apperr.Validate(in); err != nil {
		return model.Subtask{}, err
	}
	current, err := s.store.GetSubtask(ctx, id)
	if err != nil {
		return model.Subtask{}, err
	}
	current.Title = in.Title
	return s.store.UpdateSubtask(ctx, current)
}

func (s *Service) ToggleSubtask(ctx context.Context, id string) (model.Subtask, error) {
	return s.store.ToggleSubtask(ctx, id)
}

// MoveSubtask shifts a subtask by delta places within its todo's
// checklist, swapping positions with the neighbour it passes.
func (s *Service) MoveSubtask(ctx context.Context, id string, delta int) error {
	sub, err := s.store.GetSubtask(ctx, id)
	if err != nil {
		return err
	}
	list, err := s.store.ListSubtasks(ctx, sub.TodoID)
	if err != nil {
		return err
	}
	idx := -1
	for i, st := range list {
		if st.ID == id {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(list) || delta == 0 {
		return nil
	}

	list[idx], list[target] = list[target], list[idx]
	return s.store.WithTx(ctx, func(tx store.Store) error {
		for pos, st := range list {
			if st.Position == pos {
				continue
			}
			if err := tx.ReorderSubtask(ctx, st.ID, pos); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) DeleteSubtask(ctx context.Context, id string) error {
	return s.store.DeleteSubtask(ctx, id)
}

func (s *Service) ListSubtasks(ctx context.Context, todoID string) ([]model.Subtask, error) {
	return s.store.ListSubtasks(ctx, todoID)
}
