// Package subtasks is the checklist editor for a single todo.
package subtasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/ui/card"
	"github.com/nhle/todolist/internal/ui/session"
)

// Service is the subset of the todo service this view needs.
type Service interface {
	ListSubtasks(ctx context.Context, todoID string) ([]model.Subtask, error)
	AddSubtask(ctx context.Context, todoID, title string) (model.Subtask, error)
	RenameSubtask(ctx context.Context, id, title string) (model.Subtask, error)
	ToggleSubtask(ctx context.Context, id string) (model.Subtask, error)
	MoveSubtask(ctx context.Context, id string, delta int) error
	DeleteSubtask(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the subtask view.
type CloseMsg struct{}

// ChangedMsg signals that the checklist was modified.
type ChangedMsg struct{}

type viewMode int

const (
	modeList viewMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	title   string
	confirm bool
}

type loadedMsg struct {
	subtasks []model.Subtask
	err      error
}

type savedMsg struct {
	err error
	ok  string
}

// Model is the Bubble Tea model for subtask management.
type Model struct {
	mode        viewMode
	svc         Service
	keys        *keys.KeyMap
	state       *session.State
	todo        model.TodoDetail
	subtasks    []model.Subtask
	selectedIdx int
	editingID   string
	pendingID   string // subtask named by the delete dialog
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a subtask view.
func New(svc Service, k *keys.KeyMap, state *session.State, width, height int) Model {
	return Model{
		svc:    svc,
		keys:   k,
		state:  state,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Open shows the checklist of t.
func (m *Model) Open(t model.TodoDetail) tea.Cmd {
	m.mode = modeList
	m.todo = t
	m.subtasks = t.Subtasks
	m.selectedIdx = 0
	m.statusMsg = ""
	return m.load()
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			return m, nil
		}
		m.subtasks = msg.subtasks
		if m.selectedIdx >= len(m.subtasks) {
			m.selectedIdx = max(len(m.subtasks)-1, 0)
		}
		return m, nil

	case savedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.state.Error(msg.err)
			m.statusMsg = ""
		} else {
			m.statusMsg = msg.ok
		}
		return m, tea.Batch(m.load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.subtasks) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.subtasks)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.subtasks) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.subtasks) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.title = ""
		m.form = m.buildForm("New subtask")
		m.mode = modeForm
		return m, m.form.Init()
	}

	if len(m.subtasks) == 0 {
		return m, nil
	}
	sel := m.subtasks[m.selectedIdx]

	switch {
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Expand):
		return m, m.do(func(ctx context.Context) (string, error) {
			s, err := m.svc.ToggleSubtask(ctx, sel.ID)
			if err != nil {
				return "", err
			}
			if s.Completed {
				return "Subtask done", nil
			}
			return "Subtask reopened", nil
		})

	case key.Matches(msg, m.keys.Edit):
		m.editingID = sel.ID
		m.fb.title = sel.Title
		m.form = m.buildForm("Rename subtask")
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.MoveUp):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, m.move(sel.ID, -1)

	case key.Matches(msg, m.keys.MoveDown):
		if m.selectedIdx < len(m.subtasks)-1 {
			m.selectedIdx++
		}
		return m, m.move(sel.ID, 1)

	case key.Matches(msg, m.keys.Delete):
		m.fb.confirm = false
		m.pendingID = sel.ID
		m.confirmForm = m.buildConfirmForm(sel)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("Subtask title").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildConfirmForm(s model.Subtask) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete subtask %q?", s.Title)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.save()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		return m.closeConfirm()
	case huh.StateAborted:
		m.fb.confirm = false
		return m.closeConfirm()
	}
	return m, cmd
}

// closeConfirm deletes the subtask the dialog named, if confirmed. Reloads
// may have moved the selection meanwhile.
func (m Model) closeConfirm() (Model, tea.Cmd) {
	id := m.pendingID
	m.pendingID = ""
	if m.fb.confirm && id != "" {
		return m, m.do(func(ctx context.Context) (string, error) {
			return "Subtask deleted", m.svc.DeleteSubtask(ctx, id)
		})
	}
	m.mode = modeList
	return m, nil
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the subtask view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Subtasks · " + m.todo.Task))
	b.WriteString("\n\n")

	if len(m.subtasks) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No subtasks yet. Press 'n' to add one."))
	} else {
		stats := model.TodoDetail{Subtasks: m.subtasks}.SubtaskStats()
		b.WriteString(card.SubtaskProgress(stats))
		b.WriteString("\n\n")
		for i, s := range m.subtasks {
			line := card.SubtaskLine(s)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(line))
			} else {
				b.WriteString(theme.ListItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.InfoStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"n new | space toggle | e rename | K/J move | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// === Commands ===

func (m Model) load() tea.Cmd {
	svc, state, todoID := m.svc, m.state, m.todo.ID
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		subtasks, err := svc.ListSubtasks(ctx, todoID)
		return loadedMsg{subtasks: subtasks, err: err}
	}
}

func (m Model) save() tea.Cmd {
	svc, todoID, editID, title := m.svc, m.todo.ID, m.editingID, m.fb.title
	return m.do(func(ctx context.Context) (string, error) {
		if editID == "" {
			_, err := svc.AddSubtask(ctx, todoID, title)
			return "Subtask added", err
		}
		_, err := svc.RenameSubtask(ctx, editID, title)
		return "Subtask renamed", err
	})
}

func (m Model) move(id string, delta int) tea.Cmd {
	svc := m.svc
	return m.do(func(ctx context.Context) (string, error) {
		return "", svc.MoveSubtask(ctx, id, delta)
	})
}

// do runs fn with a bounded context and reports the result.
func (m Model) do(fn func(ctx context.Context) (string, error)) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		ok, err := fn(ctx)
		return savedMsg{err: err, ok: ok}
	}
}
