// Package todo validates user input and orchestrates the store operations
// that span several tables or touch attachment storage.
package todo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// TimeIncrement is the number of minutes one "add time" action records.
const TimeIncrement = 15

// BlobRemover deletes attachment blobs whose rows are gone.
type BlobRemover interface {
	RemoveBlobs(ctx context.Context, keys []string) error
}

// Length limits of the text fields, matching the validate tags on Input.
const (
	MaxTaskLen        = 500
	MaxDescriptionLen = 5000
)

// Input carries the editable fields of a todo.
type Input struct {
	Task        string         `validate:"required,max=500"`
	Description string         `validate:"max=5000"`
	Priority    model.Priority `validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time
	CategoryID  *string
	TagIDs      []string `validate:"dive,required"`
}

func (in *Input) normalize() {
	in.Task = strings.TrimSpace(in.Task)
	in.Description = strings.TrimSpace(in.Description)
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
}

// Service is the entry point the UI uses for every mutation and query.
type Service struct {
	store  store.Store
	blobs  BlobRemover
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(st store.Store, blobs BlobRemover, logger *zap.Logger) *Service {
	return &Service{store: st, blobs: blobs, logger: logger.Named("todo")}
}

// Create validates in and stores a new todo with its tags.
func (s *Service) Create(ctx context.Context, in Input) (model.TodoDetail, error) {
	in.normalize()
	if err := apperr.Validate(in); err != nil {
		return model.TodoDetail{}, err
	}

	var id string
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		created, err := tx.CreateTodo(ctx, model.Todo{
			Task:        in.Task,
			Description: in.Description,
			Priority:    in.Priority,
			DueDate:     in.DueDate,
			CategoryID:  in.CategoryID,
		})
		if err != nil {
			return err
		}
		id = created.ID
		if len(in.TagIDs) == 0 {
			return nil
		}
		return tx.SetTodoTags(ctx, id, in.TagIDs)
	})
	if err != nil {
		return model.TodoDetail{}, err
	}

	s.logger.Info("todo created", zap.String("todo_id", id))
	return s.store.GetTodo(ctx, id)
}

// Update overwrites the editable fields and the tag set of a todo.
// Completion and time spent are left as they are.
func (s *Service) Update(ctx context.Context, id string, in Input) (model.TodoDetail, error) {
	in.normalize()
	if err := apperr.Validate(in); err != nil {
		return model.TodoDetail{}, err
	}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.GetTodo(ctx, id)
		if err != nil {
			return err
		}
		todo := current.Todo
		todo.Task = in.Task
		todo.Description = in.Description
		todo.Priority = in.Priority
		todo.DueDate = in.DueDate
		todo.CategoryID = in.CategoryID
		if _, err := tx.UpdateTodo(ctx, todo); err != nil {
			return err
		}
		return tx.SetTodoTags(ctx, id, in.TagIDs)
	})
	if err != nil {
		return model.TodoDetail{}, err
	}
	return s.store.GetTodo(ctx, id)
}

// Get returns one todo with everything it owns.
func (s *Service) Get(ctx context.Context, id string) (model.TodoDetail, error) {
	return s.store.GetTodo(ctx, id)
}

// List returns the todos matching filter.
func (s *Service) List(ctx context.Context, filter store.TodoFilter) ([]model.TodoDetail, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return s.store.ListTodos(ctx, filter)
}

// Count returns how many todos match filter.
func (s *Service) Count(ctx context.Context, filter store.TodoFilter) (int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return s.store.CountTodos(ctx, filter)
}

// Toggle flips the completion state of a todo.
func (s *Service) Toggle(ctx context.Context, id string) (model.Todo, error) {
	return s.store.ToggleTodo(ctx, id)
}

// AddTime records minutes of work on a todo.
func (s *Service) AddTime(ctx context.Context, id string, minutes int) (model.Todo, error) {
	return s.store.AddTimeSpent(ctx, id, minutes)
}

// Delete removes a todo, its subtasks, tag links and attachment rows in one
// transaction, then removes the attachment blobs. Blob failures are logged
// by the remover and returned as a storage error after the rows are gone.
func (s *Service) Delete(ctx context.Context, id string) error {
	var keys []string
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		attachments, err := tx.ListAttachments(ctx, id)
		if err != nil {
			return err
		}
		for _, a := range attachments {
			keys = append(keys, a.FilePath)
		}
		return tx.DeleteTodo(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("todo deleted", zap.String("todo_id", id), zap.Int("attachments", len(keys)))
	if len(keys) == 0 {
		return nil
	}
	return s.blobs.RemoveBlobs(ctx, keys)
}
