package state

import "github.com/Guepard-Corp/qwery-core-sub001/internal/chat"

// Action is an input to Reduce. Every concrete action embeds action.
type Action interface {
	isAction()
}

type action struct{}

func (action) isAction() {}

// Input and lifecycle.
type (
	// Key is a canonical key string as produced by keys.KeyString.
	Key struct {
		action
		Key string
	}
	// InsertText inserts pasted text into whichever field has focus.
	InsertText struct {
		action
		Text string
	}
	LoaderTick struct{ action }
	Resize     struct {
		action
		Width, Height int
	}
	SetNotice struct {
		action
		Text string
	}
)

// Agent turn.
type (
	AgentStreamChunk struct {
		action
		Content   string
		ToolCalls []chat.StreamingToolCall
	}
	// AgentResponseReady completes the turn started by Prompt.
	AgentResponseReady struct {
		action
		Prompt   string
		Response chat.ChatMessage
	}
)

// Dialogs and commands.
type (
	OpenDialog struct {
		action
		Dialog DialogKind
	}
	CloseDialog    struct{ action }
	ExecuteCommand struct {
		action
		Command string
	}
	SetTheme struct {
		action
		ThemeID string
	}
	SetAgent struct {
		action
		AgentID string
	}
	SetModel struct {
		action
		ModelID string
	}
	ExportConfirm struct {
		action
		Filename    string
		Thinking    bool
		ToolDetails bool
	}
)

// Prompt history and stash.
type (
	HistoryBack    struct{ action }
	HistoryForward struct{ action }
	StashPush      struct {
		action
		Input string
	}
	StashRestore struct {
		action
		Index int
	}
	// SetStashEntries replaces the stash with entries loaded from disk.
	SetStashEntries struct {
		action
		Entries []StashEntry
	}
	// SetPromptHistory replaces the history with entries loaded from disk.
	SetPromptHistory struct {
		action
		History []string
	}
)

// Conversations.
type (
	NewConversation    struct{ action }
	SwitchConversation struct {
		action
		ConversationID string
	}
	SetConversations struct {
		action
		Conversations []chat.Conversation
	}
	SetConversationSlug struct {
		action
		ConversationID string
		Slug           string
	}
	// SetConversationServer replaces a local conversation id with the one
	// the server assigned. Datasources is left alone when nil.
	SetConversationServer struct {
		action
		ConversationID string
		ServerID       string
		Slug           string
		Datasources    []string
	}
	SetConversationMessages struct {
		action
		ConversationID string
		Messages       []chat.ChatMessage
	}
	AddConversationAndSwitch struct {
		action
		Conversation chat.Conversation
	}
	RequestNewConversation      struct{ action }
	ClearRequestNewConversation struct{ action }
)

// Workspace and datasources.
type (
	SetWorkspace struct {
		action
		Workspace chat.Workspace
	}
	SetProjectDatasources struct {
		action
		Datasources []chat.ProjectDatasource
	}
	AttachDatasource struct {
		action
		ConversationID string
		DatasourceID   string
	}
	DetachDatasource struct {
		action
		ConversationID string
		DatasourceID   string
	}
	SetPendingDatasourceSync struct {
		action
		ConversationID string
	}
	ClearPendingDatasourceSync struct{ action }
	MeshStatusUpdate           struct {
		action
		Status chat.MeshStatus
	}
)

// Add-datasource wizard.
type (
	SetAddDatasourceTypes struct {
		action
		IDs   []string
		Names []string
	}
	SubmitAddDatasource struct {
		action
		TypeID     string
		Name       string
		Connection string
	}
	AddDatasourceCreated struct {
		action
		Datasources []chat.ProjectDatasource
	}
	AddDatasourceFailed struct {
		action
		Error string
	}
	SetAddDatasourceValidationError struct {
		action
		Error string
	}
	// SetAddDatasourceTestRequest acknowledges or raises the connection
	// test flag on the open add-datasource dialog.
	SetAddDatasourceTestRequest struct {
		action
		Requested bool
	}
	SetAddDatasourceTestResult struct {
		action
		Status  TestStatus
		Message string
	}
)

// Notebooks.
type (
	SetNotebooks struct {
		action
		Notebooks []chat.Notebook
	}
	OpenNotebook struct {
		action
		Notebook chat.Notebook
	}
	CloseNotebook struct{ action }
	// SetCurrentNotebook replaces the open notebook, e.g. after a save
	// bumped its version.
	SetCurrentNotebook struct {
		action
		Notebook chat.Notebook
	}
	RunNotebookCell struct {
		action
		CellID int
	}
	NotebookCellResult struct {
		action
		CellID int
		Result chat.CellResult
	}
	NotebookCellError struct {
		action
		CellID int
		Error  string
	}
	NotebookFocusCell struct {
		action
		Index int
	}
	UpdateNotebookCellQuery struct {
		action
		CellID int
		Query  string
	}
	AddNotebookCell           struct{ action }
	SetNotebookCellDatasource struct {
		action
		CellID      int
		Datasources []string
	}
	ClearNotebookPendingSave   struct{ action }
	OpenNewNotebookNameDialog  struct{ action }
	SubmitNewNotebookName      struct {
		action
		Title string
	}
	ClearRequestNewNotebook struct{ action }
	StartEditingCellTitle   struct {
		action
		CellID int
	}
	UpdateNotebookCellTitle struct {
		action
		CellID int
		Title  string
	}
	StopEditingCellTitle   struct{ action }
	SetNotebookCreateError struct {
		action
		Error string
	}
)
