package tagmgr

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
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name string) (model.Tag, error)
	RenameTag(ctx context.Context, id, name string) (model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the tag view.
type CloseMsg struct{}

// ChangedMsg signals that tags were modified.
type ChangedMsg struct{}

type tagMode int

const (
	modeList tagMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	confirm bool
}

type tagsLoadedMsg struct {
	tags []model.Tag
	err  error
}

type tagSavedMsg struct {
	err error
	ok  string
}

// Model is the Bubble Tea model for tag management.
type Model struct {
	mode        tagMode
	svc         Service
	keys        *keys.KeyMap
	state       *session.State
	tags        []model.Tag
	selectedIdx int
	editingID   string
	pending     model.Tag // named by the delete dialog
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new tag manager model.
func New(svc Service, k *keys.KeyMap, state *session.State, width, height int) Model {
	return Model{
		mode:  modeList,
		svc:   svc,
		keys:  k,
		state: state,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads tags.
func (m Model) Init() tea.Cmd {
	return m.loadTags()
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsLoadedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			return m, nil
		}
		m.tags = msg.tags
		if m.selectedIdx >= len(m.tags) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.tags) - 1
		}
		return m, nil

	case tagSavedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			m.statusMsg = ""
		} else {
			m.statusMsg = msg.ok
		}
		m.mode = modeList
		return m, tea.Batch(m.loadTags(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.tags) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.tags) == 0 {
			return m, nil
		}
		t := m.tags[m.selectedIdx]
		m.editingID = t.ID
		m.fb.name = t.Name
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.tags) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.pending = m.tags[m.selectedIdx]
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Tag name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete tag %q?", m.pending.Name)).
				Description("This tag will be removed from all todos.").
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
	if m.form.State == huh.StateCompleted {
		return m, m.saveTag()
	}
	if m.form.State == huh.StateAborted {
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
	if m.confirmForm.State == huh.StateCompleted {
		return m.closeConfirm()
	}
	if m.confirmForm.State == huh.StateAborted {
		m.fb.confirm = false
		return m.closeConfirm()
	}
	return m, cmd
}

func (m Model) closeConfirm() (Model, tea.Cmd) {
	id := m.pending.ID
	m.pending = model.Tag{}
	if m.fb.confirm && id != "" {
		return m, m.deleteTag(id)
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

// View renders the tag manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Tags"))
	b.WriteString("\n\n")

	if len(m.tags) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No tags yet. Press 'n' to create one."))
	} else {
		for i, t := range m.tags {
			label := fmt.Sprintf("%s  %s", card.IconTag, t.Name)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.InfoStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n new | e rename | d delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) loadTags() tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		tags, err := svc.ListTags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (m Model) saveTag() tea.Cmd {
	svc, state := m.svc, m.state
	editID, name := m.editingID, m.fb.name
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		if editID == "" {
			_, err := svc.CreateTag(ctx, name)
			return tagSavedMsg{err: err, ok: "Tag created"}
		}
		_, err := svc.RenameTag(ctx, editID, name)
		return tagSavedMsg{err: err, ok: "Tag renamed"}
	}
}

func (m Model) deleteTag(id string) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		err := svc.DeleteTag(ctx, id)
		return tagSavedMsg{err: err, ok: "Tag deleted"}
	}
}
