package tui

import (
	"context"
	"log/slog"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/history"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/keys"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.st.CurrentScreen == state.ScreenChat && m.st.ActiveDialog == nil {
			m.chatView.HandleMouse(msg)
		}
		return m, nil

	case tea.WindowSizeMsg:
		cmd := m.dispatch(state.Resize{Width: msg.Width, Height: msg.Height})
		return m, cmd

	case tickMsg:
		m.ticking = false
		return m, m.dispatch(state.LoaderTick{})

	case actionsMsg:
		if msg.Done == effectRunCell {
			m.runCellID = state.NoCell
		}
		if msg.Done != effectNone {
			delete(m.running, msg.Done)
		}
		return m, m.dispatch(msg.Actions...)

	case streamMsg:
		return m, m.handleStream(msg)

	case clearNoticeMsg:
		if msg.Seq != m.noticeSeq || m.st.Notice == "" {
			return m, nil
		}
		return m, m.dispatch(state.SetNotice{})
	}
	return m, nil
}

// handleStream applies one delivery from a prompt turn and re-arms the wait.
// Deliveries from a superseded turn keep their bookkeeping actions but drop
// chunks and the final reply.
func (m *Model) handleStream(msg streamMsg) tea.Cmd {
	if msg.Closed {
		return nil
	}
	as := msg.Actions
	if msg.Turn != m.turn {
		as = slices.DeleteFunc(slices.Clone(as), func(a state.Action) bool {
			switch a.(type) {
			case state.AgentStreamChunk, state.AgentResponseReady:
				return true
			}
			return false
		})
	}
	return tea.Batch(m.dispatch(as...), waitForStream(msg.ch, msg.Turn))
}

// handleKey intercepts the keys that need the shell (quit, clipboard,
// export, scrolling) and hands everything else to the reducer.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.st
	noDialog := st.ActiveDialog == nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		slog.Debug("tui.handleKey: quit")
		return m, tea.Quit
	case msg.String() == "q" && noDialog && st.CurrentScreen == state.ScreenHome && st.Input == "":
		return m, tea.Quit
	case msg.String() == "enter" && st.DialogKind() == state.DialogExport:
		conv, ok := st.CurrentConversation()
		return m, exportCmd(m.workDir, conv, ok, st, m.cfg.ExportHTML())
	case key.Matches(msg, m.keys.Paste):
		return m, pasteCmd()
	case key.Matches(msg, m.keys.Copy) && noDialog && st.CurrentScreen == state.ScreenChat:
		if reply, ok := lastReply(st); ok {
			return m, copyCmd(reply)
		}
		return m, nil
	case key.Matches(msg, m.keys.PageUp) && noDialog && st.CurrentScreen == state.ScreenChat:
		m.chatView.PageUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown) && noDialog && st.CurrentScreen == state.ScreenChat:
		m.chatView.PageDown()
		return m, nil
	}

	in := keys.FromTea(msg)
	if in.Text != "" {
		return m, m.dispatch(state.InsertText{Text: in.Text})
	}
	return m, m.dispatch(state.Key{Key: in.Key})
}

// lastReply returns the newest assistant message of the current conversation.
func lastReply(st state.AppState) (string, bool) {
	conv, ok := st.CurrentConversation()
	if !ok {
		return "", false
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == chat.RoleAssistant {
			return conv.Messages[i].Content, true
		}
	}
	return "", false
}

// dispatch reduces each action in order, then starts whatever work the new
// state asks for.
func (m *Model) dispatch(as ...state.Action) tea.Cmd {
	if len(as) == 0 {
		return nil
	}
	prev := m.st
	for _, a := range as {
		m.st = state.Reduce(m.st, a)
	}
	return m.effects(prev)
}

// effects compares the state before and after a dispatch and returns the
// commands for every transition that needs I/O. Flags the reducer exposes
// as one-shot requests are cleared here before their command starts.
func (m *Model) effects(prev state.AppState) tea.Cmd {
	var cmds []tea.Cmd
	st := m.st

	if st.Width != prev.Width || st.Height != prev.Height {
		m.resize()
	}
	if st.ThemeID != prev.ThemeID {
		m.applyTheme()
	}

	// Prompt turn.
	if st.PendingUserMessage != "" && st.PendingUserMessage != m.inFlight {
		cmds = append(cmds, m.startTurn())
	}
	if !st.AgentBusy && prev.AgentBusy {
		m.endTurn()
	}
	if st.AgentBusy && !m.ticking {
		m.ticking = true
		cmds = append(cmds, tickCmd())
	}

	// Conversations.
	if st.RequestNewConversation {
		m.st = state.Reduce(m.st, state.ClearRequestNewConversation{})
		cmds = append(cmds, createConversationCmd(m.backend, projectID(st)))
	}
	if id := st.PendingDatasourceSync; id != "" {
		m.st = state.Reduce(m.st, state.ClearPendingDatasourceSync{})
		// Conversations not yet on the server send their datasources when
		// they are created.
		if conv, ok := findConversation(st, id); ok && conv.Slug != "" {
			cmds = append(cmds, syncDatasourcesCmd(m.backend, conv))
		}
	}
	if st.CurrentScreen == state.ScreenChat && !st.AgentBusy {
		if conv, ok := st.CurrentConversation(); ok && conv.Slug != "" && len(conv.Messages) == 0 && !m.fetched[conv.Slug] {
			m.fetched[conv.Slug] = true
			cmds = append(cmds, fetchMessagesCmd(m.backend, conv))
		}
	}

	// Add-datasource wizard.
	if d, ok := st.ActiveDialog.(state.AddDatasourceDialog); ok {
		if len(d.TypeIDs) == 0 {
			m.st = state.Reduce(m.st, datasourceTypes())
		}
		if d.TestRequested {
			m.st = state.Reduce(m.st, state.SetAddDatasourceTestRequest{Requested: false})
			cmds = append(cmds, testConnectionCmd(m.backend, d.TypeID, d.Connection))
		}
	}
	if req := st.PendingAddDatasource; req != nil && !m.running[effectAddDatasource] && st.Workspace != nil {
		m.running[effectAddDatasource] = true
		cmds = append(cmds, addDatasourceCmd(m.backend, *st.Workspace, *req))
	}

	// Notebooks.
	if st.RequestNewNotebook {
		title := st.PendingNewNotebookTitle
		m.st = state.Reduce(m.st, state.ClearRequestNewNotebook{})
		cmds = append(cmds, createNotebookCmd(m.backend, st.Workspace, title))
	}
	if st.CellLoading != state.NoCell && st.CellLoading != m.runCellID && st.CurrentNotebook != nil {
		if cell, ok := findCell(*st.CurrentNotebook, st.CellLoading); ok {
			m.runCellID = cell.CellID
			cmds = append(cmds, runCellCmd(m.backend, st.CurrentNotebook.Clone(), cell))
		}
	}
	if st.NotebookPendingSave && st.CurrentNotebook != nil {
		m.st = state.Reduce(m.st, state.ClearNotebookPendingSave{})
		cmds = append(cmds, saveNotebookCmd(m.backend, st.CurrentNotebook.Clone()))
	}

	// Persistence and status line.
	if m.persistHistory() && (!slices.Equal(st.PromptHistory, prev.PromptHistory) || !slices.Equal(st.StashEntries, prev.StashEntries)) {
		cmds = append(cmds, saveHistoryCmd(m.historyPath, history.FromState(st)))
	}
	if st.Notice != prev.Notice && st.Notice != "" {
		m.noticeSeq++
		cmds = append(cmds, clearNoticeCmd(m.noticeSeq))
	}

	m.chatView.Sync(m.st)
	return tea.Batch(cmds...)
}

// startTurn marks the pending prompt in flight and sends it.
func (m *Model) startTurn() tea.Cmd {
	st := m.st
	m.inFlight = st.PendingUserMessage
	m.turn++
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	conv, _ := st.CurrentConversation()
	if m.backend == nil {
		return nil
	}
	slog.Info("tui.startTurn: sending prompt", "turn", m.turn, "conversation_id", conv.ID, "messages", len(conv.Messages))
	return sendPromptCmd(ctx, m.backend, m.turn, promptRequest{
		conv:      conv,
		prompt:    st.PendingUserMessage,
		projectID: projectID(st),
		model:     m.cfg.GetChatModel(),
	})
}

// endTurn aborts the request of a finished or cancelled turn.
func (m *Model) endTurn() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.inFlight = ""
}

func datasourceTypes() state.Action {
	types := client.DatasourceTypes()
	a := state.SetAddDatasourceTypes{
		IDs:   make([]string, len(types)),
		Names: make([]string, len(types)),
	}
	for i, t := range types {
		a.IDs[i], a.Names[i] = t.ID, t.Name
	}
	return a
}

func projectID(st state.AppState) string {
	if st.Workspace == nil {
		return ""
	}
	return st.Workspace.ProjectID
}

func findConversation(st state.AppState, id string) (chat.Conversation, bool) {
	for _, c := range st.Conversations {
		if c.ID == id {
			return c, true
		}
	}
	return chat.Conversation{}, false
}

func findCell(nb chat.Notebook, id int) (chat.NotebookCell, bool) {
	for _, c := range nb.Cells {
		if c.CellID == id {
			return c, true
		}
	}
	return chat.NotebookCell{}, false
}
