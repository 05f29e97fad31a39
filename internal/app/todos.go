package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/todo"
)

// todoSavedMsg is sent after the form's todo is persisted.
type todoSavedMsg struct {
	err error
	ok  string
}

// editReadyMsg carries the todo to be edited.
type editReadyMsg struct {
	todo model.TodoDetail
	err  error
}

// saveTodo creates a todo when id is empty and updates it otherwise.
func (m Model) saveTodo(id string, in todo.Input) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()

		if id == "" {
			t, err := svc.Create(ctx, in)
			if err != nil {
				return todoSavedMsg{err: err}
			}
			return todoSavedMsg{ok: fmt.Sprintf("Created %q", t.Task)}
		}
		t, err := svc.Update(ctx, id, in)
		if err != nil {
			return todoSavedMsg{err: err}
		}
		return todoSavedMsg{ok: fmt.Sprintf("Saved %q", t.Task)}
	}
}

// loadForEdit re-reads the todo so the form starts from the stored state.
func (m Model) loadForEdit(id string) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		t, err := svc.Get(ctx, id)
		return editReadyMsg{todo: t, err: err}
	}
}
