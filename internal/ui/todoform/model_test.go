package todoform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/todo"
)

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDueDate("2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local), *got)

	got, err = parseDueDate(" 2024-05-06 17:30 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 17, 30, 0, 0, time.Local), *got)

	_, err = parseDueDate("next tuesday")
	assert.Error(t, err)
}

func TestStartEditRoundTrip(t *testing.T) {
	due := time.Date(2024, 5, 6, 9, 15, 0, 0, time.Local)
	cat := "c1"
	d := model.TodoDetail{
		Todo: model.Todo{
			ID:          "t1",
			Task:        "Renew passport",
			Description: "bring photos",
			Priority:    model.PriorityHigh,
			DueDate:     &due,
			CategoryID:  &cat,
		},
		Tags: []model.Tag{{ID: "g1", Name: "admin"}},
	}

	m := New(80, 24)
	m.SetOptions([]model.Category{{ID: "c1", Name: "Home"}}, []model.Tag{{ID: "g1", Name: "admin"}})
	m.StartEdit(d)
	assert.True(t, m.Editing())
	assert.Equal(t, "2024-05-06 09:15", m.fb.dueDate)

	msg := m.handleSubmit()()
	submit, ok := msg.(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "t1", submit.ID)
	assert.Equal(t, "Renew passport", submit.Input.Task)
	assert.Equal(t, model.PriorityHigh, submit.Input.Priority)
	require.NotNil(t, submit.Input.CategoryID)
	assert.Equal(t, "c1", *submit.Input.CategoryID)
	require.NotNil(t, submit.Input.DueDate)
	assert.True(t, due.Equal(*submit.Input.DueDate))
	assert.Equal(t, []string{"g1"}, submit.Input.TagIDs)

	m.StartCreate()
	assert.False(t, m.Editing())
	submit = m.handleSubmit()().(SubmitMsg)
	assert.Empty(t, submit.ID)
	assert.Equal(t, model.PriorityMedium, submit.Input.Priority)
	assert.Nil(t, submit.Input.CategoryID)
}

func TestValidateText(t *testing.T) {
	task := validateText("Task", true, todo.MaxTaskLen)
	assert.NoError(t, task(strings.Repeat("é", todo.MaxTaskLen)), "limits count characters, not bytes")
	assert.ErrorContains(t, task(strings.Repeat("a", todo.MaxTaskLen+1)), "at most 500 characters")
	assert.ErrorContains(t, task("   "), "Task is required")

	desc := validateText("Description", false, todo.MaxDescriptionLen)
	assert.NoError(t, desc(""))
	assert.Error(t, desc(strings.Repeat("x", todo.MaxDescriptionLen+1)))
}
