// Package state holds the TUI application state and the pure reducer that is
// the single authority for every transition. Nothing in this package performs
// I/O; the surrounding shell observes state changes and feeds results back as
// actions.
package state

import (
	"time"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/id"
)

// Screen is the top-level view.
type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenChat     Screen = "chat"
	ScreenNotebook Screen = "notebook"
)

// Caps on persisted lists.
const (
	MaxPromptHistory = 50
	MaxStashEntries  = 50
)

// LoaderPhases is the number of frames in the busy animation.
const LoaderPhases = 6

// Selectable ids for the theme, agent and model dialogs.
var (
	ThemeIDs = []string{"default", "midnight", "forest", "sunset", "mono"}
	AgentIDs = []string{"query", "ask"}
	ModelIDs = []string{"qwery-engine", "mock"}
)

// Defaults for a fresh session.
const (
	DefaultThemeID        = "default"
	DefaultAgentID        = "query"
	DefaultModelID        = "qwery-engine"
	DefaultExportFilename = "conversation.md"
	UntitledNotebook      = "Untitled notebook"
)

// Sentinel values for optional indices.
const (
	NoFocus = -1
	NoCell  = -1
)

// clock and newID are swapped in tests.
var (
	clock = time.Now
	newID = id.Generate
)

// StashEntry is a manually saved draft prompt.
type StashEntry struct {
	Input     string    `yaml:"input"`
	Timestamp time.Time `yaml:"timestamp"`
}

// AddDatasourceRequest is a datasource creation waiting for the shell.
type AddDatasourceRequest struct {
	TypeID     string
	Name       string
	Connection string
}

// AppState is the immutable snapshot of everything the UI renders. Reduce
// returns a new value for every transition; slices and maps reachable from a
// state are never modified in place.
type AppState struct {
	Width  int
	Height int

	CurrentScreen Screen
	// ActiveDialog is nil when no dialog is open. While non-nil it
	// captures all key input.
	ActiveDialog Dialog

	ThemeID     string
	Input       string
	MenuItems   []string
	SelectedIdx int

	CommandItems []CommandItem

	Workspace          *chat.Workspace
	ProjectDatasources []chat.ProjectDatasource

	Conversations         []chat.Conversation
	CurrentConversationID string
	ChatInput             string

	// AgentBusy is true exactly while PendingUserMessage is non-empty.
	AgentBusy          bool
	LoaderPhase        int
	PendingUserMessage string
	// PendingConversationID is the conversation the in-flight prompt was
	// sent from; the reply is appended there.
	PendingConversationID string
	StreamingContent      string
	StreamingToolCalls    []chat.StreamingToolCall

	// ExpandedTools is keyed "<message index>_<tool index>".
	ExpandedTools map[string]bool
	FocusedTool   int

	MeshStatus *chat.MeshStatus

	PromptHistory      []string
	PromptHistoryIndex int
	StashEntries       []StashEntry

	SelectedAgentID string
	SelectedModelID string

	ExportFilename    string
	ExportThinking    bool
	ExportToolDetails bool

	PendingDatasourceSync  string
	PendingAddDatasource   *AddDatasourceRequest
	RequestNewConversation bool

	Notebooks               []chat.Notebook
	CurrentNotebook         *chat.Notebook
	CellResults             map[int]chat.CellResult
	CellErrors              map[int]string
	CellLoading             int
	FocusedCell             int
	CellInput               string
	PickerOpen              bool
	PickerSelected          int
	NotebookPendingSave     bool
	PendingNewNotebookTitle string
	RequestNewNotebook      bool
	EditingCellTitle        int
	CellTitleInput          string
	NotebookCreateError     string

	// Notice is a transient status line set by the shell.
	Notice string
}

// Initial returns the state of a fresh session.
func Initial() AppState {
	return AppState{
		Width:              80,
		Height:             24,
		CurrentScreen:      ScreenHome,
		ThemeID:            DefaultThemeID,
		MenuItems:          []string{"Query", "Ask"},
		CommandItems:       DefaultCommands(),
		ExpandedTools:      map[string]bool{},
		FocusedTool:        NoFocus,
		PromptHistoryIndex: -1,
		SelectedAgentID:    DefaultAgentID,
		SelectedModelID:    DefaultModelID,
		ExportFilename:     DefaultExportFilename,
		ExportThinking:     true,
		ExportToolDetails:  true,
		CellResults:        map[int]chat.CellResult{},
		CellErrors:         map[int]string{},
		CellLoading:        NoCell,
		EditingCellTitle:   NoCell,
	}
}

// DialogKind returns the kind of the active dialog, DialogNone if closed.
func (s AppState) DialogKind() DialogKind {
	if s.ActiveDialog == nil {
		return DialogNone
	}
	return s.ActiveDialog.Kind()
}

// CommandPaletteSearch returns the palette filter text, empty unless the
// command palette is open.
func (s AppState) CommandPaletteSearch() string {
	if d, ok := s.ActiveDialog.(CommandDialog); ok {
		return d.Search
	}
	return ""
}

// CurrentConversation returns the selected conversation.
func (s AppState) CurrentConversation() (chat.Conversation, bool) {
	if s.CurrentConversationID == "" {
		return chat.Conversation{}, false
	}
	for _, c := range s.Conversations {
		if c.ID == s.CurrentConversationID {
			return c, true
		}
	}
	return chat.Conversation{}, false
}

// ActiveInput returns the prompt buffer for the current screen.
func (s AppState) ActiveInput() string {
	if s.CurrentScreen == ScreenChat {
		return s.ChatInput
	}
	return s.Input
}

// withActiveInput writes text into the prompt buffer for the current screen.
func (s AppState) withActiveInput(text string) AppState {
	if s.CurrentScreen == ScreenChat {
		s.ChatInput = text
	} else {
		s.Input = text
	}
	return s
}

// ToolKeys lists the expansion keys of every tool call in the current
// conversation, in display order.
func (s AppState) ToolKeys() []string {
	conv, ok := s.CurrentConversation()
	if !ok {
		return nil
	}
	var keys []string
	for mi, msg := range conv.Messages {
		if msg.Role != chat.RoleAssistant {
			continue
		}
		for ti := range msg.ToolCalls {
			keys = append(keys, ToolKey(mi, ti))
		}
	}
	return keys
}

// FocusedCellData returns the notebook cell that has focus.
func (s AppState) FocusedCellData() (chat.NotebookCell, bool) {
	if s.CurrentNotebook == nil {
		return chat.NotebookCell{}, false
	}
	cells := s.CurrentNotebook.Cells
	if s.FocusedCell < 0 || s.FocusedCell >= len(cells) {
		return chat.NotebookCell{}, false
	}
	return cells[s.FocusedCell], true
}
