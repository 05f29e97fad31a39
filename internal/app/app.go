package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/attachment"
	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui"
	"github.com/nhle/todolist/internal/ui/attachments"
	"github.com/nhle/todolist/internal/ui/catmgr"
	helpview "github.com/nhle/todolist/internal/ui/help"
	"github.com/nhle/todolist/internal/ui/session"
	"github.com/nhle/todolist/internal/ui/subtasks"
	"github.com/nhle/todolist/internal/ui/tagmgr"
	"github.com/nhle/todolist/internal/ui/todoform"
	"github.com/nhle/todolist/internal/ui/todolist"
)

// TodoService is everything the views need from the todo service.
type TodoService interface {
	todolist.Service
	subtasks.Service
	catmgr.Service
	tagmgr.Service

	Create(ctx context.Context, in todo.Input) (model.TodoDetail, error)
	Update(ctx context.Context, id string, in todo.Input) (model.TodoDetail, error)
	Get(ctx context.Context, id string) (model.TodoDetail, error)
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewForm
	ViewSubtasks
	ViewAttachments
	ViewCategories
	ViewTags
	ViewHelp
)

// Options carries settings the views need from the configuration.
type Options struct {
	DownloadDir string
}

// Model is the root Bubble Tea model that manages view routing and layout.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          TodoService
	state        *session.State
	keys         *keys.KeyMap

	list           todolist.Model
	todoFormView   todoform.Model
	subtaskView    subtasks.Model
	attachmentView attachments.Model
	categoryView   catmgr.Model
	tagView        tagmgr.Model
	helpView       helpview.Model

	ready bool
}

// New creates the root model.
func New(svc TodoService, files attachments.Service, state *session.State, opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView:    ViewList,
		svc:            svc,
		state:          state,
		keys:           k,
		list:           todolist.New(svc, k, state, 80, 24),
		todoFormView:   todoform.New(80, 24),
		subtaskView:    subtasks.New(svc, k, state, 80, 24),
		attachmentView: attachments.New(files, k, state, opts.DownloadDir, attachment.DefaultURLTTL, 80, 24),
		categoryView:   catmgr.New(svc, k, state, 80, 24),
		tagView:        tagmgr.New(svc, k, state, 80, 24),
		helpView:       helpview.New(k, 80, 24),
	}
}

// Init loads the list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("Todo List"),
		m.list.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.todoFormView.SetSize(w, h)
		m.subtaskView.SetSize(w, h)
		m.attachmentView.SetSize(w, h)
		m.categoryView.SetSize(w, h)
		m.tagView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// The list reloads in the background while other views are open.
	case todolist.LoadedMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case todolist.NewTodoMsg:
		m.todoFormView.SetOptions(m.list.Categories(), m.list.Tags())
		m.currentView = ViewForm
		return m, m.todoFormView.StartCreate()

	case todolist.EditTodoMsg:
		return m, m.loadForEdit(msg.ID)

	case editReadyMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			return m, m.list.Load()
		}
		m.todoFormView.SetOptions(m.list.Categories(), m.list.Tags())
		m.currentView = ViewForm
		return m, m.todoFormView.StartEdit(msg.todo)

	case todoform.SubmitMsg:
		m.currentView = ViewList
		return m, m.saveTodo(msg.ID, msg.Input)

	case todoform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case todoSavedMsg:
		m.state.Report(msg.err, msg.ok)
		return m, m.list.Load()

	case todolist.OpenSubtasksMsg:
		m.currentView = ViewSubtasks
		return m, m.subtaskView.Open(msg.Todo)

	case todolist.OpenAttachmentsMsg:
		m.currentView = ViewAttachments
		return m, m.attachmentView.Open(msg.Todo)

	case subtasks.CloseMsg, attachments.CloseMsg, catmgr.CloseMsg, tagmgr.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case subtasks.ChangedMsg, attachments.ChangedMsg, catmgr.ChangedMsg, tagmgr.ChangedMsg:
		return m, m.list.Load()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.state.ClearFlash()
		if !m.capturing() {
			if next, cmd, ok := m.handleGlobalKey(msg); ok {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey handles keys that switch views. ok is false when the key
// belongs to the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return m, tea.Quit, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}

	case key.Matches(msg, m.keys.Categories):
		if m.currentView == ViewList {
			m.currentView = ViewCategories
			return m, m.categoryView.Init(), true
		}

	case key.Matches(msg, m.keys.Tags):
		if m.currentView == ViewList {
			m.currentView = ViewTags
			return m, m.tagView.Init(), true
		}
	}
	return m, nil, false
}

// capturing reports whether the active view owns every key, such as while a
// form or a text input has focus.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewList:
		return m.list.Capturing()
	case ViewForm:
		return true
	case ViewSubtasks:
		return m.subtaskView.Capturing()
	case ViewAttachments:
		return m.attachmentView.Capturing()
	case ViewCategories:
		return m.categoryView.Capturing()
	case ViewTags:
		return m.tagView.Capturing()
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewForm:
		m.todoFormView, cmd = m.todoFormView.Update(msg)
	case ViewSubtasks:
		m.subtaskView, cmd = m.subtaskView.Update(msg)
	case ViewAttachments:
		m.attachmentView, cmd = m.attachmentView.Update(msg)
	case ViewCategories:
		m.categoryView, cmd = m.categoryView.Update(msg)
	case ViewTags:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Todo List", m.summary())
	content := m.renderContent()

	text, isErr := m.state.Flash()
	if text == "" {
		text = m.keyHints()
	}
	statusBar := m.layout.RenderStatusBar(text, isErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewForm:
		return m.todoFormView.View()
	case ViewSubtasks:
		return m.subtaskView.View()
	case ViewAttachments:
		return m.attachmentView.View()
	case ViewCategories:
		return m.categoryView.View()
	case ViewTags:
		return m.tagView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// summary returns the header counts, e.g. "12 todos · 4 done", or
// "3 of 12 todos · 1 done" while filters hide some.
func (m Model) summary() string {
	shown, total, done := m.list.Counts()
	noun := "todos"
	if total == 1 {
		noun = "todo"
	}
	if shown < total {
		return fmt.Sprintf("%d of %d %s · %d done", shown, total, noun, done)
	}
	return fmt.Sprintf("%d %s · %d done", total, noun, done)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewForm:
		return "tab next field | enter submit | esc cancel"
	case ViewSubtasks:
		return "n new | space toggle | e rename | K/J move | d delete | esc back"
	case ViewAttachments:
		return "u upload | o save copy | y signed link | d delete | esc back"
	case ViewCategories:
		return "n new | e edit | d delete | esc back"
	case ViewTags:
		return "n new | e rename | d delete | esc back"
	default:
		return "q quit | ? help | n new | space done | enter expand | / search | f p c g filter | tab sort"
	}
}
