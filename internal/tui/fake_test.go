package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	mu sync.Mutex

	healthErr     error
	workspace     chat.Workspace
	conversations []chat.Conversation
	datasources   []chat.ProjectDatasource
	notebooks     []chat.Notebook
	messages      []chat.ChatMessage

	created   client.ServerConversation
	createErr error

	partials []stream.Partial
	reply    chat.ChatMessage
	chatErr  error
	// block makes StreamChat wait for its context.
	block bool

	testResult client.TestResult
	queryRes   chat.CellResult

	calls          []string
	chatMessages   []chat.ChatMessage
	chatOpts       client.ChatOptions
	syncedID       string
	syncedDS       []string
	createdDS      client.CreateDatasourceInput
	testedProvider string
	queried        string
	savedNotebook  chat.Notebook
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) Health(ctx context.Context) error {
	f.record("Health")
	return f.healthErr
}

func (f *fakeBackend) Init(ctx context.Context) (chat.Workspace, error) {
	f.record("Init")
	return f.workspace, nil
}

func (f *fakeBackend) ListConversations(ctx context.Context, projectID string) ([]chat.Conversation, error) {
	f.record("ListConversations")
	return f.conversations, nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, title, seedMessage string, opts client.CreateConversationOptions) (client.ServerConversation, error) {
	f.record("CreateConversation")
	return f.created, f.createErr
}

func (f *fakeBackend) UpdateConversationDatasources(ctx context.Context, id string, datasources []string) error {
	f.record("UpdateConversationDatasources")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncedID, f.syncedDS = id, datasources
	return nil
}

func (f *fakeBackend) GetMessages(ctx context.Context, conversationSlug string) ([]chat.ChatMessage, error) {
	f.record("GetMessages")
	return f.messages, nil
}

func (f *fakeBackend) StreamChat(ctx context.Context, slug string, messages []chat.ChatMessage, opts client.ChatOptions, onUpdate stream.UpdateFunc) (chat.ChatMessage, error) {
	f.record("StreamChat")
	f.mu.Lock()
	f.chatMessages, f.chatOpts = messages, opts
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return chat.ChatMessage{}, ctx.Err()
	}
	for _, p := range f.partials {
		onUpdate(p)
	}
	return f.reply, f.chatErr
}

func (f *fakeBackend) ListDatasources(ctx context.Context, projectID string) ([]chat.ProjectDatasource, error) {
	f.record("ListDatasources")
	return f.datasources, nil
}

func (f *fakeBackend) CreateDatasource(ctx context.Context, in client.CreateDatasourceInput) (chat.ProjectDatasource, error) {
	f.record("CreateDatasource")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdDS = in
	return chat.ProjectDatasource{ID: "ds-new", Name: in.Name}, nil
}

func (f *fakeBackend) TestConnection(ctx context.Context, provider, driverID string, cfg map[string]any) (client.TestResult, error) {
	f.record("TestConnection")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.testedProvider = provider
	return f.testResult, nil
}

func (f *fakeBackend) ListNotebooks(ctx context.Context, projectID string) ([]chat.Notebook, error) {
	f.record("ListNotebooks")
	return f.notebooks, nil
}

func (f *fakeBackend) CreateNotebook(ctx context.Context, projectID, title, createdBy string) (chat.Notebook, error) {
	f.record("CreateNotebook")
	return chat.Notebook{ID: "nb-1", ProjectID: projectID, Title: title, Cells: []chat.NotebookCell{{CellID: 1, CellType: chat.CellTypeQuery}}}, nil
}

func (f *fakeBackend) UpdateNotebook(ctx context.Context, nb chat.Notebook) (chat.Notebook, error) {
	f.record("UpdateNotebook")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedNotebook = nb
	return nb, nil
}

func (f *fakeBackend) RunQuery(ctx context.Context, conversationID, query, datasourceID string) (chat.CellResult, error) {
	f.record("RunQuery")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = datasourceID + ":" + query
	return f.queryRes, nil
}

// fastTimers shortens the loader and notice timers for the test.
func fastTimers(t *testing.T) {
	t.Helper()
	loader, notice := loaderInterval, noticeTimeout
	loaderInterval, noticeTimeout = time.Millisecond, time.Millisecond
	t.Cleanup(func() {
		loaderInterval, noticeTimeout = loader, notice
	})
}

// drain runs cmd and every command that follows from it, feeding results
// back through Update. Loader ticks and notice timers are not fed back so
// the loop ends once the effects settle.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("drain: effects did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case nil, tickMsg, clearNoticeMsg, tea.QuitMsg:
		default:
			next, cmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

// send delivers msg through Update and drains the resulting effects.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "escape":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Paste: true})
}
