package catmgr

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
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui/session"
)

// Service is the subset of the todo service this view needs.
type Service interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in todo.CategoryInput) (model.Category, error)
	UpdateCategory(ctx context.Context, id string, in todo.CategoryInput) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the category view.
type CloseMsg struct{}

// ChangedMsg signals that categories were modified (created/updated/deleted).
type ChangedMsg struct{}

type categoryMode int

const (
	modeList categoryMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

type categoriesLoadedMsg struct {
	categories []model.Category
	err        error
}

type categorySavedMsg struct {
	err error
	ok  string
}

// Model is the Bubble Tea model for category management.
type Model struct {
	mode        categoryMode
	svc         Service
	keys        *keys.KeyMap
	state       *session.State
	categories  []model.Category
	selectedIdx int
	editingID   string
	pending     model.Category // named by the delete dialog
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new category manager model.
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

// Init loads categories.
func (m Model) Init() tea.Cmd {
	return m.loadCategories()
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			return m, nil
		}
		m.categories = msg.categories
		if m.selectedIdx >= len(m.categories) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.categories) - 1
		}
		return m, nil

	case categorySavedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			m.statusMsg = ""
		} else {
			m.statusMsg = msg.ok
		}
		m.mode = modeList
		return m, tea.Batch(m.loadCategories(), func() tea.Msg { return ChangedMsg{} })

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
		if len(m.categories) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.categories)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.categories) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.categories) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.fb.color = model.DefaultCategoryColor
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.categories) == 0 {
			return m, nil
		}
		c := m.categories[m.selectedIdx]
		m.editingID = c.ID
		m.fb.name = c.Name
		m.fb.color = c.Color
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.categories) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.pending = m.categories[m.selectedIdx]
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
				Placeholder("Category name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder(model.DefaultCategoryColor).
				Value(&m.fb.color),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete category %q?", m.pending.Name)).
				Description("Todos in this category become uncategorised.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
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
		return m, m.saveCategory()
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
	m.pending = model.Category{}
	if m.fb.confirm && id != "" {
		return m, m.deleteCategory(id)
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

// View renders the category manager.
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

	b.WriteString(theme.TitleStyle.Render("Categories"))
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No categories yet. Press 'n' to create one."))
	} else {
		for i, c := range m.categories {
			swatch := theme.ChipStyle(c.Color).Render("  ")
			label := fmt.Sprintf("%s  %s", swatch, c.Name)
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
	b.WriteString(theme.HelpStyle.Render("n new | e edit | d delete | esc back"))

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

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) loadCategories() tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		categories, err := svc.ListCategories(ctx)
		return categoriesLoadedMsg{categories: categories, err: err}
	}
}

func (m Model) saveCategory() tea.Cmd {
	svc, state := m.svc, m.state
	editID := m.editingID
	in := todo.CategoryInput{Name: m.fb.name, Color: m.fb.color}
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		if editID == "" {
			_, err := svc.CreateCategory(ctx, in)
			return categorySavedMsg{err: err, ok: "Category created"}
		}
		_, err := svc.UpdateCategory(ctx, editID, in)
		return categorySavedMsg{err: err, ok: "Category saved"}
	}
}

func (m Model) deleteCategory(id string) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		err := svc.DeleteCategory(ctx, id)
		return categorySavedMsg{err: err, ok: "Category deleted"}
	}
}
