package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/clip"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/export"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/history"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/logging"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

const (
	healthTimeout = 500 * time.Millisecond
	effectTimeout = 30 * time.Second
)

// Timer intervals; tests shorten them.
var (
	loaderInterval = 80 * time.Millisecond
	noticeTimeout  = 5 * time.Second
)

// noProject is shown when an operation needs the workspace project.
const noProject = "No project. Restart to initialize workspace."

// tickCmd returns a command that advances the loader after a delay.
func tickCmd() tea.Cmd {
	return tea.Tick(loaderInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// clearNoticeCmd returns a command that clears notice seq after a delay.
func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{Seq: seq}
	})
}

func notice(format string, args ...any) state.Action {
	return state.SetNotice{Text: fmt.Sprintf(format, args...)}
}

func actions(done effect, as ...state.Action) tea.Msg {
	return actionsMsg{Actions: as, Done: done}
}

// loadWorkspaceCmd checks the server, registers the workspace and loads the
// project's datasources, conversations and notebooks concurrently.
func loadWorkspaceCmd(b Backend) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		defer logging.LogPanic("tui.loadWorkspace", nil)

		hctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		if err := b.Health(hctx); err != nil {
			slog.Warn("tui.loadWorkspace: health check failed", "error", err)
			return actions(effectNone, notice("Server unavailable: %v", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		ws, err := b.Init(ctx)
		if err != nil {
			slog.Error("tui.loadWorkspace: init failed", "error", err)
			return actions(effectNone, notice("%v", err))
		}

		var (
			datasources   []chat.ProjectDatasource
			conversations []chat.Conversation
			notebooks     []chat.Notebook
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			datasources, err = b.ListDatasources(gctx, ws.ProjectID)
			return err
		})
		g.Go(func() (err error) {
			conversations, err = b.ListConversations(gctx, ws.ProjectID)
			return err
		})
		g.Go(func() (err error) {
			notebooks, err = b.ListNotebooks(gctx, ws.ProjectID)
			return err
		})

		out := []state.Action{state.SetWorkspace{Workspace: ws}}
		if err := g.Wait(); err != nil {
			slog.Error("tui.loadWorkspace: load failed", "project_id", ws.ProjectID, "error", err)
			return actions(effectNone, append(out, notice("%v", err))...)
		}
		slog.Info("tui.loadWorkspace: loaded",
			"project_id", ws.ProjectID,
			"datasources", len(datasources),
			"conversations", len(conversations),
			"notebooks", len(notebooks),
		)
		return actions(effectNone, append(out,
			state.SetProjectDatasources{Datasources: datasources},
			state.SetConversations{Conversations: conversations},
			state.SetNotebooks{Notebooks: notebooks},
		)...)
	}
}

// promptRequest is everything a turn needs, captured when it starts.
type promptRequest struct {
	conv      chat.Conversation
	prompt    string
	projectID string
	model     string
}

// sendPromptCmd starts a turn in its own goroutine. Every action the turn
// produces is delivered in order on a channel drained by waitForStream.
func sendPromptCmd(ctx context.Context, b Backend, turn int, req promptRequest) tea.Cmd {
	ch := make(chan []state.Action, 16)
	go func() {
		defer close(ch)
		defer logging.LogPanic("tui.sendPrompt", func(r any) {
			ch <- []state.Action{state.AgentResponseReady{
				Prompt:   req.prompt,
				Response: stream.ErrorReply(fmt.Errorf("panic: %v", r), 0, time.Now()),
			}}
		})
		runPrompt(ctx, b, req, ch)
	}()
	return waitForStream(ch, turn)
}

func runPrompt(ctx context.Context, b Backend, req promptRequest, ch chan<- []state.Action) {
	start := time.Now()
	fail := func(err error) {
		slog.Error("tui.sendPrompt: turn failed", "conversation_id", req.conv.ID, "error", err)
		ch <- []state.Action{state.AgentResponseReady{
			Prompt:   req.prompt,
			Response: stream.ErrorReply(err, time.Since(start), time.Now()),
		}}
	}

	slug := req.conv.Slug
	if slug == "" {
		sc, err := b.CreateConversation(ctx, req.conv.Title, req.prompt, client.CreateConversationOptions{
			ProjectID:   req.projectID,
			Datasources: req.conv.Datasources,
		})
		if err != nil {
			fail(err)
			return
		}
		slog.Debug("tui.sendPrompt: conversation created", "local_id", req.conv.ID, "id", sc.ID, "slug", sc.Slug)
		ch <- []state.Action{state.SetConversationServer{
			ConversationID: req.conv.ID,
			ServerID:       sc.ID,
			Slug:           sc.Slug,
			Datasources:    sc.Datasources,
		}}
		slug = sc.Slug
	}

	reply, err := b.StreamChat(ctx, slug, req.conv.Messages, client.ChatOptions{
		Model:       req.model,
		Datasources: req.conv.Datasources,
	}, func(p stream.Partial) {
		ch <- []state.Action{state.AgentStreamChunk{Content: p.Content, ToolCalls: p.ToolCalls}}
	})
	if err != nil {
		fail(err)
		return
	}
	ch <- []state.Action{state.AgentResponseReady{Prompt: req.prompt, Response: reply}}
}

// waitForStream returns a command that waits for the next delivery of a turn.
func waitForStream(ch <-chan []state.Action, turn int) tea.Cmd {
	return func() tea.Msg {
		as, ok := <-ch
		return streamMsg{Turn: turn, Actions: as, Closed: !ok, ch: ch}
	}
}

// fetchMessagesCmd loads the history of a server-backed conversation.
func fetchMessagesCmd(b Backend, conv chat.Conversation) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.fetchMessages", nil)
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		msgs, err := b.GetMessages(ctx, conv.Slug)
		if err != nil {
			slog.Error("tui.fetchMessages: failed", "slug", conv.Slug, "error", err)
			return actions(effectNone, notice("Failed to load messages: %v", err))
		}
		return actions(effectNone, state.SetConversationMessages{ConversationID: conv.ID, Messages: msgs})
	}
}

// createConversationCmd creates an empty server conversation and switches to it.
func createConversationCmd(b Backend, projectID string) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.createConversation", nil)
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		sc, err := b.CreateConversation(ctx, "New conversation", "", client.CreateConversationOptions{ProjectID: projectID})
		if err != nil {
			slog.Error("tui.createConversation: failed", "error", err)
			return actions(effectNone, notice("%v", err))
		}
		return actions(effectNone, state.AddConversationAndSwitch{Conversation: sc.Conversation()})
	}
}

// syncDatasourcesCmd pushes a conversation's attached datasources.
func syncDatasourcesCmd(b Backend, conv chat.Conversation) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.syncDatasources", nil)
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if err := b.UpdateConversationDatasources(ctx, conv.ID, conv.Datasources); err != nil {
			slog.Error("tui.syncDatasources: failed", "conversation_id", conv.ID, "error", err)
			return actions(effectNone, notice("Failed to update datasources: %v", err))
		}
		return nil
	}
}

// addDatasourceCmd validates and creates a datasource, then reloads the
// project's datasource list.
func addDatasourceCmd(b Backend, ws chat.Workspace, req state.AddDatasourceRequest) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.addDatasource", nil)
		in, msg := client.NewDatasourceInput(ws.ProjectID, ws.Username, req.TypeID, req.Name, req.Connection)
		if msg != "" {
			return actions(effectAddDatasource, state.AddDatasourceFailed{Error: msg})
		}

		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if _, err := b.CreateDatasource(ctx, in); err != nil {
			slog.Error("tui.addDatasource: create failed", "provider", in.Provider, "error", err)
			return actions(effectAddDatasource, state.AddDatasourceFailed{Error: err.Error()})
		}
		list, err := b.ListDatasources(ctx, ws.ProjectID)
		if err != nil {
			return actions(effectAddDatasource, state.AddDatasourceFailed{Error: err.Error()})
		}
		return actions(effectAddDatasource,
			state.AddDatasourceCreated{Datasources: list},
			notice("Datasource %q added", in.Name),
		)
	}
}

// testConnectionCmd runs a connection test for the add-datasource form.
func testConnectionCmd(b Backend, typeID, connection string) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.testConnection", nil)
		t, ok := client.LookupDatasourceType(typeID)
		if !ok {
			t = client.DatasourceType{ID: typeID}
		}
		raw := client.ConnectionToRawConfig(connection)
		if msg := client.ValidateProviderConfig(t.ID, raw); msg != "" {
			return actions(effectNone, state.SetAddDatasourceTestResult{Status: state.TestError, Message: msg})
		}
		res, err := b.TestConnection(context.Background(), t.ID, t.Driver, client.NormalizeProviderConfig(t.ID, raw))
		switch {
		case err != nil:
			return actions(effectNone, state.SetAddDatasourceTestResult{Status: state.TestError, Message: err.Error()})
		case !res.Success:
			return actions(effectNone, state.SetAddDatasourceTestResult{Status: state.TestError, Message: res.Message})
		}
		return actions(effectNone, state.SetAddDatasourceTestResult{Status: state.TestOK, Message: res.Message})
	}
}

// createNotebookCmd creates a notebook, reloads the list and opens it.
func createNotebookCmd(b Backend, ws *chat.Workspace, title string) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.createNotebook", nil)
		done := state.ClearRequestNewNotebook{}
		if ws == nil || ws.ProjectID == "" {
			return actions(effectNone, done, state.SetNotebookCreateError{Error: noProject})
		}
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		nb, err := b.CreateNotebook(ctx, ws.ProjectID, title, ws.Username)
		if err != nil {
			slog.Error("tui.createNotebook: failed", "title", title, "error", err)
			return actions(effectNone, done, state.SetNotebookCreateError{Error: err.Error()})
		}
		list, err := b.ListNotebooks(ctx, ws.ProjectID)
		if err != nil {
			list = []chat.Notebook{nb}
		}
		return actions(effectNone, done, state.SetNotebooks{Notebooks: list}, state.OpenNotebook{Notebook: nb})
	}
}

// runCellCmd executes a notebook cell against its datasource, falling back
// to the notebook's first datasource.
func runCellCmd(b Backend, nb chat.Notebook, cell chat.NotebookCell) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.runCell", nil)
		var dsID string
		switch {
		case len(cell.Datasources) > 0:
			dsID = cell.Datasources[0]
		case len(nb.Datasources) > 0:
			dsID = nb.Datasources[0]
		default:
			return actions(effectRunCell, state.NotebookCellError{
				CellID: cell.CellID,
				Error:  "No datasource selected. Press ctrl+d to choose one.",
			})
		}
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		res, err := b.RunQuery(ctx, nb.ID, cell.Query, dsID)
		if err != nil {
			slog.Error("tui.runCell: query failed", "notebook_id", nb.ID, "cell_id", cell.CellID, "error", err)
			return actions(effectRunCell, state.NotebookCellError{CellID: cell.CellID, Error: err.Error()})
		}
		return actions(effectRunCell, state.NotebookCellResult{CellID: cell.CellID, Result: res})
	}
}

// saveNotebookCmd stores the open notebook.
func saveNotebookCmd(b Backend, nb chat.Notebook) tea.Cmd {
	return func() tea.Msg {
		defer logging.LogPanic("tui.saveNotebook", nil)
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if _, err := b.UpdateNotebook(ctx, nb); err != nil {
			slog.Error("tui.saveNotebook: failed", "notebook_id", nb.ID, "error", err)
			return actions(effectNone, notice("Failed to save notebook: %v", err))
		}
		return nil
	}
}

// saveHistoryCmd persists prompt history and stash entries.
func saveHistoryCmd(path string, f history.File) tea.Cmd {
	return func() tea.Msg {
		if err := history.Save(path, f); err != nil {
			slog.Error("tui.saveHistory: failed", "path", path, "error", err)
		}
		return nil
	}
}

// exportCmd writes the conversation transcript, then confirms the dialog.
func exportCmd(dir string, conv chat.Conversation, ok bool, st state.AppState, html bool) tea.Cmd {
	return func() tea.Msg {
		if !ok {
			return actions(effectNone, notice("%v", export.ErrNoConversation))
		}
		path, err := export.Write(dir, st.ExportFilename, conv, export.Options{
			Thinking:    st.ExportThinking,
			ToolDetails: st.ExportToolDetails,
			HTML:        html,
		})
		if err != nil {
			slog.Error("tui.export: failed", "filename", st.ExportFilename, "error", err)
			return actions(effectNone, notice("Export failed: %v", err))
		}
		return actions(effectNone,
			state.ExportConfirm{Filename: st.ExportFilename, Thinking: st.ExportThinking, ToolDetails: st.ExportToolDetails},
			notice("Exported to %s", path),
		)
	}
}

// pasteCmd inserts the clipboard contents into the focused field.
func pasteCmd() tea.Cmd {
	return func() tea.Msg {
		text, err := clip.Paste()
		if err != nil {
			if !errors.Is(err, clip.ErrEmpty) {
				slog.Debug("tui.paste: clipboard unavailable", "error", err)
			}
			return nil
		}
		return actions(effectNone, state.InsertText{Text: text})
	}
}

// copyCmd copies text to the clipboard and reports where it went.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := clip.Copy(text)
		if err != nil {
			return actions(effectNone, notice("Copy failed: %v", err))
		}
		return actions(effectNone, notice("%s", res.Describe()))
	}
}
