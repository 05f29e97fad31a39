package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the title on the left and a summary, such as the
// active filters, on the right.
func (l Layout) RenderHeader(title, summary string) string {
	return l.fill(theme.HeaderStyle, theme.HeaderStyle.Render(title), theme.HeaderStyle.Render(summary))
}

// RenderStatusBar renders the bottom bar. Errors use the error style.
func (l Layout) RenderStatusBar(text string, isError bool) string {
	style := theme.StatusBarStyle
	if isError {
		style = theme.ErrorBarStyle
	}
	return l.fill(style, style.Render(text), "")
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(max(l.ContentHeight(), 0)).
		MaxHeight(max(l.ContentHeight(), 0)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill pads the gap between left and right with the bar background so the
// bar spans the full width.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
