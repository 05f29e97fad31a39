package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
)

const todoColumns = `todos.id, todos.task, todos.description, todos.completed, todos.priority,
	todos.due_date, todos.category_id, todos.time_spent_minutes,
	todos.created_at, todos.updated_at`

// CreateTodo inserts a new todo and returns the persisted row.
// A missing priority defaults to medium.
func (s *SQLStore) CreateTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if strings.TrimSpace(todo.Task) == "" {
		return model.Todo{}, apperr.Validationf("task is required")
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.exec(ctx, `
		INSERT INTO todos (
			id, task, description, completed, priority,
			due_date, category_id, time_spent_minutes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		todo.ID, todo.Task, todo.Description, todo.Completed, string(todo.Priority),
		utcPtr(todo.DueDate), todo.CategoryID,
		now, now,
	)
	if err != nil {
		return model.Todo{}, s.wrap(err, "creating todo")
	}
	return s.getTodoRow(ctx, todo.ID)
}

// GetTodo retrieves a todo joined with its category, tags, subtasks and
// attachments.
func (s *SQLStore) GetTodo(ctx context.Context, id string) (model.TodoDetail, error) {
	todo, err := s.getTodoRow(ctx, id)
	if err != nil {
		return model.TodoDetail{}, err
	}
	details, err := s.loadDetails(ctx, []model.Todo{todo})
	if err != nil {
		return model.TodoDetail{}, err
	}
	return details[0], nil
}

// UpdateTodo overwrites the editable fields of a todo. Time spent is only
// changed through AddTimeSpent.
func (s *SQLStore) UpdateTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if strings.TrimSpace(todo.Task) == "" {
		return model.Todo{}, apperr.Validationf("task is required")
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}

	ok, err := s.exec(ctx, `
		UPDATE todos SET
			task = ?, description = ?, completed = ?, priority = ?,
			due_date = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		todo.Task, todo.Description, todo.Completed, string(todo.Priority),
		utcPtr(todo.DueDate), todo.CategoryID, time.Now().UTC(),
		todo.ID,
	)
	if err != nil {
		return model.Todo{}, s.wrap(err, "updating todo %s", todo.ID)
	}
	if !ok {
		return model.Todo{}, apperr.NotFoundf("todo %s", todo.ID)
	}
	return s.getTodoRow(ctx, todo.ID)
}

// ToggleTodo flips the completion state of a todo.
func (s *SQLStore) ToggleTodo(ctx context.Context, id string) (model.Todo, error) {
	ok, err := s.exec(ctx,
		"UPDATE todos SET completed = NOT completed, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return model.Todo{}, s.wrap(err, "toggling todo %s", id)
	}
	if !ok {
		return model.Todo{}, apperr.NotFoundf("todo %s", id)
	}
	return s.getTodoRow(ctx, id)
}

// DeleteTodo removes a todo together with its subtasks, tag links and
// attachment rows in one transaction. Stored blobs are not touched.
func (s *SQLStore) DeleteTodo(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *SQLStore) error {
		for _, table := range []string{"subtasks", "todo_tags", "attachments"} {
			if _, err := tx.exec(ctx, "DELETE FROM "+table+" WHERE todo_id = ?", id); err != nil {
				return tx.wrap(err, "deleting %s of todo %s", table, id)
			}
		}
		ok, err := tx.exec(ctx, "DELETE FROM todos WHERE id = ?", id)
		if err != nil {
			return tx.wrap(err, "deleting todo %s", id)
		}
		if !ok {
			return apperr.NotFoundf("todo %s", id)
		}
		return nil
	})
}

// ListTodos retrieves todos matching the filter, joined with their
// category, tags, subtasks and attachments.
func (s *SQLStore) ListTodos(ctx context.Context, filter TodoFilter) ([]model.TodoDetail, error) {
	var todos []model.Todo
	if err := s.selectBuilt(ctx, &todos, s.todoQuery(filter)); err != nil {
		return nil, s.wrap(err, "querying todos")
	}
	return s.loadDetails(ctx, todos)
}

// CountTodos returns the number of todos matching the filter.
func (s *SQLStore) CountTodos(ctx context.Context, filter TodoFilter) (int, error) {
	var count int
	if err := s.getBuilt(ctx, &count, s.todoCountQuery(filter)); err != nil {
		return 0, s.wrap(err, "counting todos")
	}
	return count, nil
}

// AddTimeSpent increments time_spent_minutes by minutes in a single
// statement, so concurrent increments are never lost.
func (s *SQLStore) AddTimeSpent(ctx context.Context, id string, minutes int) (model.Todo, error) {
	if minutes <= 0 {
		return model.Todo{}, apperr.Validationf("minutes must be positive, got %d", minutes)
	}
	ok, err := s.exec(ctx,
		"UPDATE todos SET time_spent_minutes = time_spent_minutes + ?, updated_at = ? WHERE id = ?",
		minutes, time.Now().UTC(), id)
	if err != nil {
		return model.Todo{}, s.wrap(err, "adding time to todo %s", id)
	}
	if !ok {
		return model.Todo{}, apperr.NotFoundf("todo %s", id)
	}
	return s.getTodoRow(ctx, id)
}

func (s *SQLStore) getTodoRow(ctx context.Context, id string) (model.Todo, error) {
	var todo model.Todo
	if err := s.get(ctx, &todo, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id); err != nil {
		return model.Todo{}, s.wrap(err, "todo %s", id)
	}
	return todo, nil
}

// loadDetails batch-loads everything the todos own or reference.
func (s *SQLStore) loadDetails(ctx context.Context, todos []model.Todo) ([]model.TodoDetail, error) {
	details := make([]model.TodoDetail, len(todos))
	if len(todos) == 0 {
		return details, nil
	}

	ids := make([]string, len(todos))
	index := make(map[string]int, len(todos))
	var categoryIDs []string
	for i, t := range todos {
		details[i].Todo = t
		ids[i] = t.ID
		index[t.ID] = i
		if t.CategoryID != nil {
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	if len(categoryIDs) > 0 {
		var categories []model.Category
		if err := s.selectIn(ctx, &categories,
			"SELECT "+categoryColumns+" FROM categories WHERE id IN (?)", categoryIDs); err != nil {
			return nil, s.wrap(err, "loading categories")
		}
		byID := make(map[string]model.Category, len(categories))
		for _, c := range categories {
			byID[c.ID] = c
		}
		for i := range details {
			if id := details[i].CategoryID; id != nil {
				if c, ok := byID[*id]; ok {
					details[i].Category = &c
				}
			}
		}
	}

	var tags []todoTagRow
	if err := s.selectIn(ctx, &tags, `
		SELECT tt.todo_id, t.id, t.name, t.created_at
		FROM todo_tags tt
		INNER JOIN tags t ON t.id = tt.tag_id
		WHERE tt.todo_id IN (?)
		ORDER BY t.name`, ids); err != nil {
		return nil, s.wrap(err, "loading tags")
	}
	for _, t := range tags {
		i := index[t.TodoID]
		details[i].Tags = append(details[i].Tags, t.Tag)
	}

	var subtasks []model.Subtask
	if err := s.selectIn(ctx, &subtasks,
		"SELECT "+subtaskColumns+" FROM subtasks WHERE todo_id IN (?) ORDER BY position, created_at", ids); err != nil {
		return nil, s.wrap(err, "loading subtasks")
	}
	for _, st := range subtasks {
		i := index[st.TodoID]
		details[i].Subtasks = append(details[i].Subtasks, st)
	}

	var attachments []model.Attachment
	if err := s.selectIn(ctx, &attachments,
		"SELECT "+attachmentColumns+" FROM attachments WHERE todo_id IN (?) ORDER BY created_at DESC", ids); err != nil {
		return nil, s.wrap(err, "loading attachments")
	}
	for _, a := range attachments {
		i := index[a.TodoID]
		details[i].Attachments = append(details[i].Attachments, a)
	}

	return details, nil
}

type todoTagRow struct {
	TodoID string `db:"todo_id"`
	model.Tag
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
