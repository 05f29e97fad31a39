package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the grouped keybindings and the manager shortcuts.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")
	columns := m.help.View(m.keys)

	footer := theme.HelpStyle.Render(
		"In the subtask, attachment, category and tag views: n new · e edit · d delete · esc back",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, columns, "", footer)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// Update is a no-op; the root model closes the overlay.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
