package store

import (
	"context"

	"github.com/nhle/todolist/internal/model"
)

// StatusFilter selects todos by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// SortMode selects the ordering of ListTodos.
type SortMode string

const (
	// SortDefault orders by priority (high first), then due date ascending
	// with undated todos last, then newest first.
	SortDefault  SortMode = "default"
	SortPriority SortMode = "priority"
	SortDueDate  SortMode = "due_date"
	SortCreated  SortMode = "created"
)

// SortModes lists every sort mode in display order.
var SortModes = []SortMode{SortDefault, SortPriority, SortDueDate, SortCreated}

// TodoFilter controls filtering and sorting for todo queries.
type TodoFilter struct {
	Status     StatusFilter    // "" behaves as StatusAll
	Priority   *model.Priority // nil (all)
	CategoryID *string         // nil (all)
	TagIDs     []string        // todos carrying any of these tags
	Query      string          // case-insensitive match on task, description, tag names
	Sort       SortMode
}

// Store defines the persistence interface for todos and everything they own.
type Store interface {
	// === Todos ===

	CreateTodo(ctx context.Context, todo model.Todo) (model.Todo, error)
	GetTodo(ctx context.Context, id string) (model.TodoDetail, error)
	UpdateTodo(ctx context.Context, todo model.Todo) (model.Todo, error)
	ToggleTodo(ctx context.Context, id string) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	ListTodos(ctx context.Context, filter TodoFilter) ([]model.TodoDetail, error)
	CountTodos(ctx context.Context, filter TodoFilter) (int, error)
	AddTimeSpent(ctx context.Context, id string, minutes int) (model.Todo, error)

	// === Categories ===

	CreateCategory(ctx context.Context, category model.Category) (model.Category, error)
	GetCategory(ctx context.Context, id string) (model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]model.Category, error)

	// === Tags ===

	CreateTag(ctx context.Context, tag model.Tag) (model.Tag, error)
	UpdateTag(ctx context.Context, tag model.Tag) (model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTagsForTodo(ctx context.Context, todoID string) ([]model.Tag, error)
	SetTodoTags(ctx context.Context, todoID string, tagIDs []string) error

	// === Subtasks ===

	CreateSubtask(ctx context.Context, subtask model.Subtask) (model.Subtask, error)
	GetSubtask(ctx context.Context, id string) (model.Subtask, error)
	UpdateSubtask(ctx context.Context, subtask model.Subtask) (model.Subtask, error)
	ToggleSubtask(ctx context.Context, id string) (model.Subtask, error)
	ReorderSubtask(ctx context.Context, id string, position int) error
	DeleteSubtask(ctx context.Context, id string) error
	ListSubtasks(ctx context.Context, todoID string) ([]model.Subtask, error)

	// === Attachments ===

	CreateAttachment(ctx context.Context, attachment model.Attachment) (model.Attachment, error)
	GetAttachment(ctx context.Context, id string) (model.Attachment, error)
	ListAttachments(ctx context.Context, todoID string) ([]model.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	// Nested calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	Close() error
}
