package todolist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui/prompt"
	"github.com/nhle/todolist/internal/ui/session"
)

// Service is the subset of the todo service the list needs.
type Service interface {
	List(ctx context.Context, filter store.TodoFilter) ([]model.TodoDetail, error)
	Count(ctx context.Context, filter store.TodoFilter) (int, error)
	Toggle(ctx context.Context, id string) (model.Todo, error)
	Delete(ctx context.Context, id string) error
	AddTime(ctx context.Context, id string, minutes int) (model.Todo, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

// NewTodoMsg asks the parent to open the create form.
type NewTodoMsg struct{}

// EditTodoMsg asks the parent to open the edit form for a todo.
type EditTodoMsg struct{ ID string }

// OpenSubtasksMsg asks the parent to open the subtask view.
type OpenSubtasksMsg struct{ Todo model.TodoDetail }

// OpenAttachmentsMsg asks the parent to open the attachment view.
type OpenAttachmentsMsg struct{ Todo model.TodoDetail }

// LoadedMsg carries a fresh copy of the list and the filter options. Total
// counts every todo, filtered out or not.
type LoadedMsg struct {
	Todos      []model.TodoDetail
	Total      int
	Categories []model.Category
	Tags       []model.Tag
	Err        error
}

type mutatedMsg struct {
	err error
	ok  string
}

const searchPromptID = "todolist.search"

type formBindings struct {
	confirm bool
}

// Model is the todo list view: a scrollable column of cards.
type Model struct {
	svc     Service
	keys    *keys.KeyMap
	state   *session.State
	todos   []model.TodoDetail
	total   int
	cats    []model.Category
	tags    []model.Tag
	cursor  int
	offset  int
	loading bool

	searching bool
	search    prompt.Model

	confirming  bool
	confirmForm *huh.Form
	pending     model.TodoDetail // the todo the delete dialog names
	fb          *formBindings

	width  int
	height int
}

// New creates a todo list view.
func New(svc Service, k *keys.KeyMap, state *session.State, width, height int) Model {
	return Model{
		svc:     svc,
		keys:    k,
		state:   state,
		search:  prompt.New(searchPromptID, "Search", "task, description or tag...", width),
		fb:      &formBindings{},
		width:   width,
		height:  height,
		loading: true,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load re-fetches todos with the current session filter together with the
// categories and tags the filters cycle through.
func (m Model) Load() tea.Cmd {
	svc, state := m.svc, m.state
	filter := state.Filter
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()

		todos, err := svc.List(ctx, filter)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		total, err := svc.Count(ctx, store.TodoFilter{})
		if err != nil {
			return LoadedMsg{Err: err}
		}
		cats, err := svc.ListCategories(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		tags, err := svc.ListTags(ctx)
		return LoadedMsg{Todos: todos, Total: total, Categories: cats, Tags: tags, Err: err}
	}
}

// Capturing reports whether the view is consuming all key input.
func (m Model) Capturing() bool {
	return m.searching || m.confirming
}

// Categories returns the categories from the last load.
func (m Model) Categories() []model.Category { return m.cats }

// Tags returns the tags from the last load.
func (m Model) Tags() []model.Tag { return m.tags }

// Counts returns how many todos are shown, how many exist in total and how
// many of the shown ones are done.
func (m Model) Counts() (shown, total, completed int) {
	for _, t := range m.todos {
		if t.Completed {
			completed++
		}
	}
	return len(m.todos), max(m.total, len(m.todos)), completed
}

// Selected returns the todo under the cursor.
func (m Model) Selected() (model.TodoDetail, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return model.TodoDetail{}, false
	}
	return m.todos[m.cursor], true
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.state.Error(msg.Err)
			return m, nil
		}
		m.todos, m.total, m.cats, m.tags = msg.Todos, msg.Total, msg.Categories, msg.Tags
		m.clampCursor()
		return m, nil

	case mutatedMsg:
		m.state.Report(msg.err, msg.ok)
		return m, m.Load()

	case prompt.SubmitMsg:
		if msg.ID != searchPromptID {
			return m, nil
		}
		m.searching = false
		m.state.SetQuery(msg.Value)
		m.cursor, m.offset = 0, 0
		return m, m.Load()

	case prompt.CancelMsg:
		if msg.ID == searchPromptID {
			m.searching = false
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		case m.confirming:
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)
	}

	if m.confirming {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewTodoMsg{} }

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Open(m.state.Filter.Query)

	case key.Matches(msg, m.keys.FilterStatus):
		m.state.CycleStatus()
		return m.reload()

	case key.Matches(msg, m.keys.FilterPriority):
		m.state.CyclePriority()
		return m.reload()

	case key.Matches(msg, m.keys.FilterCategory):
		m.state.CycleCategory(m.cats)
		return m.reload()

	case key.Matches(msg, m.keys.FilterTag):
		m.state.CycleTag(m.tags)
		return m.reload()

	case key.Matches(msg, m.keys.CycleSort):
		m.state.CycleSort()
		return m.reload()

	case key.Matches(msg, m.keys.ClearFilters):
		m.state.ClearFilters()
		return m.reload()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()
	}

	t, ok := m.Selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle(t)

	case key.Matches(msg, m.keys.Expand):
		m.state.ToggleExpanded(t.ID)
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m, func() tea.Msg { return EditTodoMsg{ID: t.ID} }

	case key.Matches(msg, m.keys.AddTime):
		return m, m.addTime(t)

	case key.Matches(msg, m.keys.Subtasks):
		return m, func() tea.Msg { return OpenSubtasksMsg{Todo: t} }

	case key.Matches(msg, m.keys.Attachments):
		return m, func() tea.Msg { return OpenAttachmentsMsg{Todo: t} }

	case key.Matches(msg, m.keys.Delete):
		m.fb.confirm = false
		m.pending = t
		m.confirmForm = m.buildConfirmForm(t)
		m.confirming = true
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) reload() (Model, tea.Cmd) {
	m.cursor, m.offset = 0, 0
	return m, m.Load()
}

func (m Model) buildConfirmForm(t model.TodoDetail) *huh.Form {
	desc := "Its subtasks and tag links are removed too."
	if n := len(t.Attachments); n > 0 {
		desc = fmt.Sprintf("Its subtasks, tag links and %d attachment(s) are removed too.", n)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", t.Task)).
				Description(desc).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(min(max(m.width-4, 40), 100))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
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

// closeConfirm ends the delete dialog, deleting the todo it named when the
// user agreed. The list may have reloaded while the dialog was open, so the
// cursor is not consulted.
func (m Model) closeConfirm() (Model, tea.Cmd) {
	t := m.pending
	m.confirming = false
	m.pending = model.TodoDetail{}
	if !m.fb.confirm || t.ID == "" {
		return m, nil
	}
	return m, m.delete(t)
}

// === Commands ===

func (m Model) toggle(t model.TodoDetail) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		updated, err := svc.Toggle(ctx, t.ID)
		if err != nil {
			return mutatedMsg{err: err}
		}
		if updated.Completed {
			return mutatedMsg{ok: fmt.Sprintf("Completed %q", updated.Task)}
		}
		return mutatedMsg{ok: fmt.Sprintf("Reopened %q", updated.Task)}
	}
}

func (m Model) addTime(t model.TodoDetail) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		_, err := svc.AddTime(ctx, t.ID, todo.TimeIncrement)
		return mutatedMsg{err: err, ok: fmt.Sprintf("Added %d minutes to %q", todo.TimeIncrement, t.Task)}
	}
}

func (m Model) delete(t model.TodoDetail) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		err := svc.Delete(ctx, t.ID)
		return mutatedMsg{err: err, ok: fmt.Sprintf("Deleted %q", t.Task)}
	}
}

// === Layout ===

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

// ensureVisible scrolls so the selected card fits in the viewport.
func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
		return
	}
	avail := m.listHeight()
	for m.offset < m.cursor {
		used := 0
		for i := m.offset; i <= m.cursor; i++ {
			used += lipgloss.Height(m.renderCard(i))
		}
		if used <= avail {
			return
		}
		m.offset++
	}
}

func (m Model) listHeight() int {
	// one line for the filter summary
	return max(m.height-1, 1)
}

// View renders the list.
func (m Model) View() string {
	if m.confirming && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	top := theme.DimmedStyle.Render(m.state.FilterSummary(m.cats, m.tags))
	if m.searching {
		top = m.search.Inline()
	}

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, top, theme.EmptyStyle.Render("Loading..."))
	}
	if len(m.todos) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, top, m.renderEmptyState())
	}

	var cards []string
	used, avail := 0, m.listHeight()
	for i := m.offset; i < len(m.todos); i++ {
		c := m.renderCard(i)
		h := lipgloss.Height(c)
		if used+h > avail && len(cards) > 0 {
			break
		}
		cards = append(cards, c)
		used += h
	}

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{top}, cards...)...)
}

func (m Model) renderCard(i int) string {
	t := m.todos[i]
	return renderCard(t, m.width, i == m.cursor, m.state.IsExpanded(t.ID))
}

// renderEmptyState shows guidance text when no todos match.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.listHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.state.HasFilters() {
		return style.Render("No matching todos.\nPress 0 to clear the filters.")
	}
	return style.Render("No todos yet.\n\nPress n to add one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.SetSize(width, height)
	m.ensureVisible()
}
