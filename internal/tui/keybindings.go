package tui

import "github.com/charmbracelet/bubbles/key"

// KeyBindings documents the keyboard shortcuts shown in the help dialog and
// the help bar. Key handling itself lives in the state reducer; these
// bindings only match keys the shell intercepts before it.
type KeyBindings struct {
	// Global keys
	Quit     key.Binding
	Palette  key.Binding
	Help     key.Binding
	Paste    key.Binding
	Copy     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Dialog shortcuts
	Conversations   key.Binding
	NewConversation key.Binding
	Datasources     key.Binding
	AddDatasource   key.Binding
	Notebooks       key.Binding
	Stash           key.Binding

	// Prompt keys
	Submit  key.Binding
	History key.Binding
	Cancel  key.Binding
	Tools   key.Binding
	Tabs    key.Binding

	// Notebook keys
	RunCell   key.Binding
	AddCell   key.Binding
	Picker    key.Binding
	CellTitle key.Binding
	MoveCell  key.Binding
}

// DefaultKeyBindings returns the default key bindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "commands"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+?"),
			key.WithHelp("ctrl+?", "help"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy reply"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),

		Conversations: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "conversations"),
		),
		NewConversation: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new conversation"),
		),
		Datasources: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "datasources"),
		),
		AddDatasource: key.NewBinding(
			key.WithKeys("ctrl+shift+a"),
			key.WithHelp("ctrl+shift+a", "add datasource"),
		),
		Notebooks: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "notebooks"),
		),
		Stash: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "stash prompt"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		History: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "history"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("escape"),
			key.WithHelp("esc", "back / cancel"),
		),
		Tools: key.NewBinding(
			key.WithKeys("tab", "ctrl+up"),
			key.WithHelp("tab", "focus tools"),
		),
		Tabs: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch mode"),
		),

		RunCell: key.NewBinding(
			key.WithKeys("ctrl+enter", "ctrl+j"),
			key.WithHelp("ctrl+j", "run cell"),
		),
		AddCell: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "add cell"),
		),
		Picker: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "datasource"),
		),
		CellTitle: key.NewBinding(
			key.WithKeys("f2", "ctrl+t"),
			key.WithHelp("f2", "rename cell"),
		),
		MoveCell: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "move"),
		),
	}
}

// HelpSections groups bindings for the help dialog.
func (k KeyBindings) HelpSections() []HelpSection {
	return []HelpSection{
		{Title: "General", Bindings: []key.Binding{k.Palette, k.Help, k.Quit, k.Paste, k.Copy}},
		{Title: "Dialogs", Bindings: []key.Binding{k.Conversations, k.NewConversation, k.Datasources, k.AddDatasource, k.Notebooks, k.Stash}},
		{Title: "Prompt", Bindings: []key.Binding{k.Submit, k.History, k.Cancel, k.Tools, k.PageUp, k.PageDown}},
		{Title: "Notebook", Bindings: []key.Binding{k.RunCell, k.AddCell, k.Picker, k.CellTitle, k.MoveCell}},
	}
}

// HelpSection is a titled group of bindings.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}
