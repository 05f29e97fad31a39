package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBarStyle replaces StatusBarStyle while an error message is shown.
var ErrorBarStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// PanelStyle wraps overlay views such as help.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames one todo card in the list.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SelectedCardStyle frames the focused todo card.
var SelectedCardStyle = CardStyle.
	BorderForeground(ColorBlue)

// ListItemStyle is the base style for rows in the manager views.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// TitleStyle is used for view titles.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// HelpStyle is used for keyboard shortcut hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DimmedStyle renders secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// EmptyStyle renders placeholder text for empty lists.
var EmptyStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// CompletedStyle renders the task text of completed todos.
var CompletedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// InfoStyle renders transient status messages inside a view.
var InfoStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Italic(true)

// PriorityStyle returns the badge style for a priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(p.Color()))
}

// ChipStyle returns a colored label style, used for categories.
func ChipStyle(hex string) lipgloss.Style {
	if hex == "" {
		hex = model.DefaultCategoryColor
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(hex))
}

// TagStyle renders tag chips.
var TagStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// DueStyle returns the style for a due date with the given status.
func DueStyle(status model.DueStatus) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch status {
	case model.DueOverdue:
		return base.Bold(true).Foreground(ColorRed)
	case model.DueSoon:
		return base.Foreground(ColorOrange)
	case model.DueOnTrack:
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorGray)
}
