package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Todo actions
	New         key.Binding
	Toggle      key.Binding
	Expand      key.Binding
	Edit        key.Binding
	Delete      key.Binding
	AddTime     key.Binding
	Subtasks    key.Binding
	Attachments key.Binding

	// Search and filters
	Search         key.Binding
	FilterStatus   key.Binding
	FilterPriority key.Binding
	FilterCategory key.Binding
	FilterTag      key.Binding
	CycleSort      key.Binding
	ClearFilters   key.Binding

	// Managers
	Categories key.Binding
	Tags       key.Binding

	// Item reordering inside the subtask view
	MoveUp   key.Binding
	MoveDown key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle done"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		AddTime: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "add 15 min"),
		),
		Subtasks: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "subtasks"),
		),
		Attachments: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "attachments"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		FilterPriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority filter"),
		),
		FilterCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category filter"),
		),
		FilterTag: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "tag filter"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filters"),
		),
		Categories: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "categories"),
		),
		Tags: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tags"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.New, k.Toggle, k.Expand, k.Edit, k.Delete,
		k.Search, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Back, k.Quit, k.Help, k.Refresh},
		{k.New, k.Toggle, k.Edit, k.Delete, k.AddTime, k.Subtasks, k.Attachments},
		{k.Search, k.FilterStatus, k.FilterPriority, k.FilterCategory, k.FilterTag, k.CycleSort, k.ClearFilters},
		{k.Categories, k.Tags, k.MoveUp, k.MoveDown},
	}
}
