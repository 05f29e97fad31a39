package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/testutil"
)

func TestCategory_CRUD(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	work, err := s.CreateCategory(ctx, model.Category{Name: "  Work ", Color: "#FF0000"})
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, "#FF0000", work.Color)

	_, err = s.CreateCategory(ctx, model.Category{Name: "Work"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.CreateCategory(ctx, model.Category{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	home, err := s.CreateCategory(ctx, model.Category{Name: "Home"})
	require.NoError(t, err)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Home", list[0].Name)

	home.Name = "Work"
	_, err = s.UpdateCategory(ctx, home)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	home.Name = "House"
	renamed, err := s.UpdateCategory(ctx, home)
	require.NoError(t, err)
	assert.Equal(t, "House", renamed.Name)

	_, err = s.UpdateCategory(ctx, model.Category{ID: "nope", Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCategory_UncategorizesTodos(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, model.Category{Name: "Temp"})
	require.NoError(t, err)
	todo := mustTodo(t, s, model.Todo{Task: "keep me", CategoryID: &cat.ID})

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))

	got, err := s.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), apperr.ErrNotFound)
}

func TestTag_CRUD(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, model.Tag{Name: "urgent"})
	require.NoError(t, err)

	_, err = s.CreateTag(ctx, model.Tag{Name: "urgent"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1, "no duplicate row after conflict")

	tag.Name = "asap"
	renamed, err := s.UpdateTag(ctx, tag)
	require.NoError(t, err)
	assert.Equal(t, "asap", renamed.Name)

	todo := mustTodo(t, s, model.Todo{Task: "tagged"})
	require.NoError(t, s.SetTodoTags(ctx, todo.ID, []string{tag.ID}))
	require.NoError(t, s.DeleteTag(ctx, tag.ID))

	remaining, err := s.GetTagsForTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.ErrorIs(t, s.DeleteTag(ctx, tag.ID), apperr.ErrNotFound)
}

func TestSetTodoTags_Replaces(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a, err := s.CreateTag(ctx, model.Tag{Name: "a"})
	require.NoError(t, err)
	b, err := s.CreateTag(ctx, model.Tag{Name: "b"})
	require.NoError(t, err)
	todo := mustTodo(t, s, model.Todo{Task: "t"})

	require.NoError(t, s.SetTodoTags(ctx, todo.ID, []string{a.ID, a.ID}))
	require.NoError(t, s.SetTodoTags(ctx, todo.ID, []string{b.ID}))

	tags, err := s.GetTagsForTodo(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, b.ID, tags[0].ID)

	err = s.SetTodoTags(ctx, todo.ID, []string{a.ID, "missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	tags, err = s.GetTagsForTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, tags[0].ID, "failed replacement leaves the old set")

	assert.ErrorIs(t, s.SetTodoTags(ctx, "missing", nil), apperr.ErrNotFound)
	require.NoError(t, s.SetTodoTags(ctx, todo.ID, nil))
	tags, err = s.GetTagsForTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSubtask_Lifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	todo := mustTodo(t, s, model.Todo{Task: "Buy milk", Priority: model.PriorityLow})

	first, err := s.CreateSubtask(ctx, model.Subtask{TodoID: todo.ID, Title: "Check expiry"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.False(t, first.Completed)

	second, err := s.CreateSubtask(ctx, model.Subtask{TodoID: todo.ID, Title: "Pay"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	toggled, err := s.ToggleSubtask(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	require.NoError(t, s.ReorderSubtask(ctx, first.ID, 5))
	list, err := s.ListSubtasks(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, []string{list[0].ID, list[1].ID})

	second.Title = "Pay at till"
	second.Completed = true
	updated, err := s.UpdateSubtask(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "Pay at till", updated.Title)
	assert.True(t, updated.Completed)

	require.NoError(t, s.DeleteSubtask(ctx, second.ID))
	assert.ErrorIs(t, s.DeleteSubtask(ctx, second.ID), apperr.ErrNotFound)

	_, err = s.CreateSubtask(ctx, model.Subtask{TodoID: "missing", Title: "orphan"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.CreateSubtask(ctx, model.Subtask{TodoID: todo.ID, Title: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorIs(t, s.ReorderSubtask(ctx, first.ID, -1), apperr.ErrValidation)
}

func TestAttachment_Rows(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	todo := mustTodo(t, s, model.Todo{Task: "files"})

	a, err := s.CreateAttachment(ctx, model.Attachment{
		TodoID: todo.ID, FileName: "report.pdf", FilePath: todo.ID + "/x_report.pdf",
		FileSize: 2048, MimeType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "pdf", a.Ext())

	got, err := s.GetAttachment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), got.FileSize)

	time.Sleep(5 * time.Millisecond)
	later, err := s.CreateAttachment(ctx, model.Attachment{
		TodoID: todo.ID, FileName: "notes.txt", FilePath: todo.ID + "/y_notes.txt", FileSize: 12,
	})
	require.NoError(t, err)
	list, err := s.ListAttachments(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{later.ID, a.ID}, []string{list[0].ID, list[1].ID}, "newest first")

	_, err = s.CreateAttachment(ctx, model.Attachment{
		TodoID: "missing", FileName: "x.txt", FilePath: "missing/x.txt",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.DeleteAttachment(ctx, a.ID))
	_, err = s.GetAttachment(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAttachment(ctx, a.ID), apperr.ErrNotFound)
}
