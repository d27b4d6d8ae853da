package state

import "strings"

// Command ids understood by ExecuteCommand.
const (
	CmdNewConversation   = "new_conversation"
	CmdShowConversations = "show_conversations"
	CmdShowDatasources   = "show_datasources"
	CmdShowAddDatasource = "show_add_datasource"
	CmdShowNotebooks     = "show_notebooks"
	CmdNewNotebook       = "new_notebook"
	CmdNewNotebookCell   = "new_notebook_cell"
	CmdShowTheme         = "show_theme"
	CmdShowExport        = "show_export"
	CmdShowStash         = "show_stash"
	CmdStashCurrent      = "stash_current"
	CmdShowAgent         = "show_agent"
	CmdShowModel         = "show_model"
	CmdShowHelp          = "show_help"
)

// CommandItem is one row of the command palette.
type CommandItem struct {
	Name     string
	Shortcut string
	Category string
	Action   string
}

// DefaultCommands returns the command palette in display order.
func DefaultCommands() []CommandItem {
	return []CommandItem{
		{Name: "New conversation", Shortcut: "ctrl+n", Category: "Conversation", Action: CmdNewConversation},
		{Name: "Conversations", Shortcut: "ctrl+l", Category: "Conversation", Action: CmdShowConversations},
		{Name: "Datasources", Shortcut: "ctrl+d", Category: "Data", Action: CmdShowDatasources},
		{Name: "Add datasource", Shortcut: "ctrl+shift+a", Category: "Data", Action: CmdShowAddDatasource},
		{Name: "Notebooks", Shortcut: "ctrl+b", Category: "Data", Action: CmdShowNotebooks},
		{Name: "New notebook", Category: "Data", Action: CmdNewNotebook},
		{Name: "Theme", Category: "System", Action: CmdShowTheme},
		{Name: "Export", Category: "System", Action: CmdShowExport},
		{Name: "Stash", Category: "System", Action: CmdShowStash},
		{Name: "Stash current", Shortcut: "ctrl+s", Category: "System", Action: CmdStashCurrent},
		{Name: "Agent", Category: "System", Action: CmdShowAgent},
		{Name: "Model", Category: "System", Action: CmdShowModel},
		{Name: "Help", Shortcut: "ctrl+?", Category: "System", Action: CmdShowHelp},
	}
}

// FilterCommands keeps the items whose name or category contains search,
// ignoring case. An empty search keeps everything.
func FilterCommands(items []CommandItem, search string) []CommandItem {
	if search == "" {
		return items
	}
	q := strings.ToLower(search)
	var out []CommandItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Category), q) {
			out = append(out, it)
		}
	}
	return out
}

// FilteredCommands returns the palette rows visible for the current search.
func (s AppState) FilteredCommands() []CommandItem {
	return FilterCommands(s.CommandItems, s.CommandPaletteSearch())
}

func executeCommand(s AppState, cmd string) AppState {
	switch cmd {
	case CmdNewConversation:
		return newConversation(s)
	case CmdShowConversations:
		return openDialog(s, DialogConversations)
	case CmdShowDatasources:
		return openDialog(s, DialogDatasources)
	case CmdShowAddDatasource:
		return openDialog(s, DialogAddDatasource)
	case CmdShowNotebooks:
		s.NotebookCreateError = ""
		return openDialog(s, DialogNotebooks)
	case CmdNewNotebook:
		return openDialog(s, DialogNewNotebookName)
	case CmdNewNotebookCell:
		s.ActiveDialog = nil
		if s.CurrentScreen == ScreenNotebook {
			return addNotebookCell(s)
		}
		return s
	case CmdShowTheme:
		return openDialog(s, DialogTheme)
	case CmdShowExport:
		return openDialog(s, DialogExport)
	case CmdShowStash:
		return openDialog(s, DialogStash)
	case CmdShowAgent:
		return openDialog(s, DialogAgent)
	case CmdShowModel:
		return openDialog(s, DialogModel)
	case CmdShowHelp:
		return openDialog(s, DialogHelp)
	case CmdStashCurrent:
		s.ActiveDialog = nil
		if input := strings.TrimSpace(s.ActiveInput()); input != "" {
			return stashPush(s, input)
		}
		return s
	}
	s.ActiveDialog = nil
	return s
}

func openDialog(s AppState, kind DialogKind) AppState {
	s.ActiveDialog = newDialog(kind, s)
	return s
}
