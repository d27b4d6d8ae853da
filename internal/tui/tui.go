// Package tui provides the Bubbletea-based terminal user interface for qwery.
//
// The Model is the imperative shell around the pure state reducer: it turns
// terminal input into actions, watches each new state for pending work
// (prompts, datasource edits, notebook runs) and feeds the results of that
// work back into the reducer as further actions.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/config"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/history"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

// Backend is the remote server surface used by the TUI. *client.Client
// implements it.
type Backend interface {
	Health(ctx context.Context) error
	Init(ctx context.Context) (chat.Workspace, error)

	ListConversations(ctx context.Context, projectID string) ([]chat.Conversation, error)
	CreateConversation(ctx context.Context, title, seedMessage string, opts client.CreateConversationOptions) (client.ServerConversation, error)
	UpdateConversationDatasources(ctx context.Context, id string, datasources []string) error
	GetMessages(ctx context.Context, conversationSlug string) ([]chat.ChatMessage, error)
	StreamChat(ctx context.Context, slug string, messages []chat.ChatMessage, opts client.ChatOptions, onUpdate stream.UpdateFunc) (chat.ChatMessage, error)

	ListDatasources(ctx context.Context, projectID string) ([]chat.ProjectDatasource, error)
	CreateDatasource(ctx context.Context, in client.CreateDatasourceInput) (chat.ProjectDatasource, error)
	TestConnection(ctx context.Context, provider, driverID string, cfg map[string]any) (client.TestResult, error)

	ListNotebooks(ctx context.Context, projectID string) ([]chat.Notebook, error)
	CreateNotebook(ctx context.Context, projectID, title, createdBy string) (chat.Notebook, error)
	UpdateNotebook(ctx context.Context, nb chat.Notebook) (chat.Notebook, error)
	RunQuery(ctx context.Context, conversationID, query, datasourceID string) (chat.CellResult, error)
}

var _ Backend = (*client.Client)(nil)

// Options configures the TUI.
type Options struct {
	Backend Backend
	// Config may be nil; defaults apply.
	Config *config.Config
	// HistoryPath is where prompt history and stash entries persist.
	// Empty disables persistence.
	HistoryPath string
	// WorkDir receives exported transcripts.
	WorkDir string
}

// Model is the main Bubbletea model for the qwery TUI.
type Model struct {
	st      state.AppState
	backend Backend
	cfg     *config.Config
	keys    KeyBindings
	styles  Styles

	header   Header
	helpBar  HelpBar
	chatView ChatView

	historyPath string
	workDir     string

	// inFlight is the prompt currently being sent, compared against
	// PendingUserMessage so a prompt is sent once.
	inFlight string
	turn     int
	cancel   context.CancelFunc

	ticking   bool
	running   map[effect]bool
	runCellID int
	fetched   map[string]bool
	noticeSeq int
}

// New creates a TUI model with persisted history restored and configured
// preferences applied.
func New(opts Options) Model {
	m := Model{
		st:          state.Initial(),
		backend:     opts.Backend,
		cfg:         opts.Config,
		keys:        DefaultKeyBindings(),
		header:      NewHeader(),
		helpBar:     NewHelpBar(),
		chatView:    NewChatView(),
		historyPath: opts.HistoryPath,
		workDir:     opts.WorkDir,
		running:     map[effect]bool{},
		runCellID:   state.NoCell,
		fetched:     map[string]bool{},
	}

	m.st = state.Reduce(m.st, state.SetTheme{ThemeID: m.cfg.GetTheme()})
	m.st = state.Reduce(m.st, state.SetAgent{AgentID: m.cfg.GetAgent()})
	m.st = state.Reduce(m.st, state.SetModel{ModelID: m.cfg.GetModel()})
	m.st.ExportFilename = m.cfg.GetExportFilename()
	m.st.ExportThinking = m.cfg.ExportThinking()
	m.st.ExportToolDetails = m.cfg.ExportToolDetails()

	if m.persistHistory() {
		f, err := history.Load(m.historyPath)
		if err != nil {
			slog.Warn("tui.New: failed to load history", "path", m.historyPath, "error", err)
		}
		for _, a := range f.Actions() {
			m.st = state.Reduce(m.st, a)
		}
	}

	m.applyTheme()
	return m
}

// State returns the current application state.
func (m Model) State() state.AppState {
	return m.st
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("qwery"),
		loadWorkspaceCmd(m.backend),
	)
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	slog.Debug("tui.Run: starting", "history", opts.HistoryPath)
	p := tea.NewProgram(
		New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.shutdown()
	}
	slog.Debug("tui.Run: program exited", "error", err)
	return err
}

func (m *Model) persistHistory() bool {
	return m.historyPath != "" && m.cfg.HistoryPersist()
}

func (m *Model) applyTheme() {
	m.styles = NewStyles(ThemeByID(m.st.ThemeID))
	m.chatView.SetStyles(m.styles)
}

// shutdown cancels an in-flight turn and flushes history.
func (m *Model) shutdown() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if !m.persistHistory() {
		return
	}
	if err := history.Save(m.historyPath, history.FromState(m.st)); err != nil {
		slog.Error("tui.shutdown: failed to save history", "error", err)
	}
}

// resize updates component dimensions for the current terminal size.
func (m *Model) resize() {
	m.header.SetWidth(m.st.Width)
	m.helpBar.SetWidth(m.st.Width)

	const headerHeight, inputHeight, helpHeight = 1, 3, 1
	m.chatView.SetSize(m.st.Width, max(1, m.st.Height-headerHeight-inputHeight-helpHeight))
}
