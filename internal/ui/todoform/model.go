package todoform

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
)

// Accepted due date layouts, tried in order.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// SubmitMsg is dispatched when the form is completed. ID is empty for a
// new todo.
type SubmitMsg struct {
	ID    string
	Input todo.Input
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	task        string
	description string
	priority    model.Priority
	dueDate     string
	categoryID  string
	tagIDs      []string
}

// Model is the Bubble Tea model for the todo create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editID     string
	categories []model.Category
	tags       []model.Tag
	width      int
	height     int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetOptions sets the categories and tags offered by the selectors.
func (m *Model) SetOptions(categories []model.Category, tags []model.Tag) {
	m.categories = categories
	m.tags = tags
}

// StartCreate initializes the form for a new todo.
func (m *Model) StartCreate() tea.Cmd {
	m.editID = ""
	*m.fb = formBindings{priority: model.PriorityMedium}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing todo.
func (m *Model) StartEdit(t model.TodoDetail) tea.Cmd {
	m.editID = t.ID
	*m.fb = formBindings{
		task:        t.Task,
		description: t.Description,
		priority:    t.Priority,
		tagIDs:      t.TagIDs(),
	}
	if t.DueDate != nil {
		local := t.DueDate.Local()
		if local.Hour() == 0 && local.Minute() == 0 {
			m.fb.dueDate = local.Format(dateLayout)
		} else {
			m.fb.dueDate = local.Format(dateTimeLayout)
		}
	}
	if t.CategoryID != nil {
		m.fb.categoryID = *t.CategoryID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing todo.
func (m Model) Editing() bool {
	return m.editID != ""
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.Editing() {
		titleText = "Edit Todo"
	}

	content := theme.TitleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Task").
			Placeholder("What needs to be done?").
			CharLimit(todo.MaxTaskLen).
			Value(&m.fb.task).
			Validate(validateText("Task", true, todo.MaxTaskLen)),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			CharLimit(todo.MaxDescriptionLen).
			Value(&m.fb.description).
			Validate(validateText("Description", false, todo.MaxDescriptionLen)),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD or YYYY-MM-DD HH:MM (optional)").
			Value(&m.fb.dueDate).
			Validate(func(s string) error {
				_, err := parseDueDate(s)
				return err
			}),
		m.categoryField(),
	}
	if tagField := m.tagField(); tagField != nil {
		fields = append(fields, tagField)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) categoryField() huh.Field {
	opts := []huh.Option[string]{
		huh.NewOption("None", ""),
	}
	for _, c := range m.categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return huh.NewSelect[string]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.categoryID)
}

func (m *Model) tagField() huh.Field {
	if len(m.tags) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.tags))
	for i, t := range m.tags {
		opts[i] = huh.NewOption(t.Name, t.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Tags").
		Options(opts...).
		Value(&m.fb.tagIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	in := todo.Input{
		Task:        m.fb.task,
		Description: m.fb.description,
		Priority:    m.fb.priority,
		TagIDs:      append([]string(nil), m.fb.tagIDs...),
	}
	if m.fb.categoryID != "" {
		id := m.fb.categoryID
		in.CategoryID = &id
	}
	if due, err := parseDueDate(m.fb.dueDate); err == nil {
		in.DueDate = due
	}

	id := m.editID
	return func() tea.Msg { return SubmitMsg{ID: id, Input: in} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// validateText applies the service's rules for a text field so the form can
// reject input before it closes.
func validateText(fieldName string, required bool, limit int) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if required && s == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		if utf8.RuneCountInString(s) > limit {
			return fmt.Errorf("%s must be at most %d characters", fieldName, limit)
		}
		return nil
	}
}

// parseDueDate accepts an empty string, a date, or a date and time in the
// local time zone.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date, use YYYY-MM-DD or YYYY-MM-DD HH:MM")
}
