// Package prompt is a single-line input box used for search text and file
// paths.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/theme"
)

// SubmitMsg is emitted when the user presses enter. ID identifies which
// prompt produced it.
type SubmitMsg struct {
	ID    string
	Value string
}

// CancelMsg is emitted when the user presses esc.
type CancelMsg struct {
	ID string
}

// Model is the prompt view.
type Model struct {
	id     string
	title  string
	input  textinput.Model
	width  int
	height int
}

// New creates a prompt identified by id. Empty submissions are passed
// through; the caller decides what they mean.
func New(id, title, placeholder string, width int) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Width = width - 6

	return Model{id: id, title: title, input: ti, width: width}
}

// Open focuses the prompt with an initial value.
func (m *Model) Open(value string) tea.Cmd {
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.Blur()
			id := m.id
			return m, func() tea.Msg { return SubmitMsg{ID: id, Value: value} }
		case "esc":
			m.input.Blur()
			id := m.id
			return m, func() tea.Msg { return CancelMsg{ID: id} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render(m.title),
		m.input.View(),
	)
	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// Inline renders only the input line, for use inside another view.
func (m Model) Inline() string {
	return m.input.View()
}

// Focused reports whether the prompt has keyboard focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// SetSize updates the prompt dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
