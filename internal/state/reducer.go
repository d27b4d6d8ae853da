package state

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

// Reduce returns the state that follows s after a. It never performs I/O and
// never modifies s; preconditions that fail leave the state unchanged.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case Key:
		return reduceKey(s, a.Key)
	case InsertText:
		return insertText(s, a.Text)
	case Resize:
		s.Width, s.Height = a.Width, a.Height
		return s
	case LoaderTick:
		if !s.AgentBusy {
			return s
		}
		s.LoaderPhase++
		return s
	case SetNotice:
		s.Notice = a.Text
		return s

	case AgentStreamChunk:
		if !s.AgentBusy {
			return s
		}
		s.StreamingContent = a.Content
		s.StreamingToolCalls = a.ToolCalls
		return s
	case AgentResponseReady:
		return responseReady(s, a)

	case OpenDialog:
		return openDialog(s, a.Dialog)
	case CloseDialog:
		s.ActiveDialog = nil
		return s
	case ExecuteCommand:
		return executeCommand(s, a.Command)
	case SetTheme:
		s.ThemeID = a.ThemeID
		return s
	case SetAgent:
		s.SelectedAgentID = a.AgentID
		s.ActiveDialog = nil
		return s
	case SetModel:
		s.SelectedModelID = a.ModelID
		s.ActiveDialog = nil
		return s
	case ExportConfirm:
		s.ExportFilename = a.Filename
		s.ExportThinking = a.Thinking
		s.ExportToolDetails = a.ToolDetails
		s.ActiveDialog = nil
		return s

	case HistoryBack:
		return historyBack(s)
	case HistoryForward:
		return historyForward(s)
	case StashPush:
		return stashPush(s, a.Input)
	case StashRestore:
		if a.Index < 0 || a.Index >= len(s.StashEntries) {
			return s
		}
		s.ActiveDialog = nil
		return s.withActiveInput(s.StashEntries[a.Index].Input)
	case SetStashEntries:
		s.StashEntries = lastN(a.Entries, MaxStashEntries)
		return s
	case SetPromptHistory:
		s.PromptHistory = firstN(a.History, MaxPromptHistory)
		s.PromptHistoryIndex = -1
		return s

	case NewConversation:
		return newConversation(s)
	case SwitchConversation:
		return switchConversation(s, a.ConversationID)
	case SetConversations:
		s.Conversations = a.Conversations
		return s
	case SetConversationSlug:
		s.Conversations = mapConversation(s.Conversations, a.ConversationID, func(c chat.Conversation) chat.Conversation {
			c.Slug = a.Slug
			return c
		})
		return s
	case SetConversationServer:
		if s.CurrentConversationID == a.ConversationID {
			s.CurrentConversationID = a.ServerID
		}
		if s.PendingConversationID == a.ConversationID {
			s.PendingConversationID = a.ServerID
		}
		s.Conversations = mapConversation(s.Conversations, a.ConversationID, func(c chat.Conversation) chat.Conversation {
			c.ID = a.ServerID
			c.Slug = a.Slug
			if a.Datasources != nil {
				c.Datasources = a.Datasources
			}
			return c
		})
		return s
	case SetConversationMessages:
		s.Conversations = mapConversation(s.Conversations, a.ConversationID, func(c chat.Conversation) chat.Conversation {
			c.Messages = a.Messages
			c.UpdatedAt = clock()
			return c
		})
		return s
	case AddConversationAndSwitch:
		s.Conversations = slices.Insert(slices.Clone(s.Conversations), 0, a.Conversation)
		s.CurrentConversationID = a.Conversation.ID
		s.CurrentScreen = ScreenChat
		s.ChatInput, s.Input = "", ""
		s.ActiveDialog = nil
		s.FocusedTool = NoFocus
		return s
	case RequestNewConversation:
		s.RequestNewConversation = true
		s.ActiveDialog = nil
		return s
	case ClearRequestNewConversation:
		s.RequestNewConversation = false
		return s

	case SetWorkspace:
		ws := a.Workspace
		s.Workspace = &ws
		return s
	case SetProjectDatasources:
		s.ProjectDatasources = a.Datasources
		return s
	case AttachDatasource:
		s.Conversations = mapConversation(s.Conversations, a.ConversationID, func(c chat.Conversation) chat.Conversation {
			if !c.HasDatasource(a.DatasourceID) {
				c.Datasources = append(slices.Clip(c.Datasources), a.DatasourceID)
			}
			return c
		})
		return s
	case DetachDatasource:
		s.Conversations = mapConversation(s.Conversations, a.ConversationID, func(c chat.Conversation) chat.Conversation {
			c.Datasources = slices.DeleteFunc(slices.Clone(c.Datasources), func(id string) bool {
				return id == a.DatasourceID
			})
			return c
		})
		return s
	case SetPendingDatasourceSync:
		s.PendingDatasourceSync = a.ConversationID
		return s
	case ClearPendingDatasourceSync:
		s.PendingDatasourceSync = ""
		return s
	case MeshStatusUpdate:
		st := a.Status
		s.MeshStatus = &st
		return s

	case SetAddDatasourceTypes:
		return withAddDatasource(s, func(d AddDatasourceDialog) AddDatasourceDialog {
			d.TypeIDs, d.TypeNames = a.IDs, a.Names
			return d
		})
	case SubmitAddDatasource:
		s.PendingAddDatasource = &AddDatasourceRequest{TypeID: a.TypeID, Name: a.Name, Connection: a.Connection}
		return s
	case AddDatasourceCreated:
		s.PendingAddDatasource = nil
		s.ProjectDatasources = a.Datasources
		if s.DialogKind() == DialogAddDatasource {
			s.ActiveDialog = nil
		}
		return s
	case AddDatasourceFailed:
		s.PendingAddDatasource = nil
		return withAddDatasource(s, func(d AddDatasourceDialog) AddDatasourceDialog {
			d.ValidationError = a.Error
			return d
		})
	case SetAddDatasourceValidationError:
		return withAddDatasource(s, func(d AddDatasourceDialog) AddDatasourceDialog {
			d.ValidationError = a.Error
			return d
		})
	case SetAddDatasourceTestRequest:
		return withAddDatasource(s, func(d AddDatasourceDialog) AddDatasourceDialog {
			d.TestRequested = a.Requested
			if a.Requested {
				d.TestStatus, d.TestMessage = TestPending, ""
			}
			return d
		})
	case SetAddDatasourceTestResult:
		return withAddDatasource(s, func(d AddDatasourceDialog) AddDatasourceDialog {
			d.TestStatus, d.TestMessage = a.Status, a.Message
			d.TestRequested = false
			return d
		})
	}
	return reduceNotebook(s, a)
}

func reduceKey(s AppState, key string) AppState {
	if s.ActiveDialog != nil {
		return dialogKey(s, key)
	}
	switch s.CurrentScreen {
	case ScreenChat:
		return chatKey(s, key)
	case ScreenNotebook:
		return notebookKey(s, key)
	}
	return homeKey(s, key)
}

func responseReady(s AppState, a AgentResponseReady) AppState {
	if !s.AgentBusy || s.PendingUserMessage == "" || a.Prompt != s.PendingUserMessage {
		return s
	}
	s.Conversations = mapConversation(s.Conversations, s.PendingConversationID, func(c chat.Conversation) chat.Conversation {
		c.Messages = append(slices.Clip(c.Messages), a.Response)
		c.UpdatedAt = clock()
		return c
	})
	return clearTurn(s)
}

// clearTurn ends the in-flight turn, keeping AgentBusy and
// PendingUserMessage paired.
func clearTurn(s AppState) AppState {
	s.AgentBusy = false
	s.PendingUserMessage = ""
	s.PendingConversationID = ""
	s.StreamingContent = ""
	s.StreamingToolCalls = nil
	return s
}

func newConversation(s AppState) AppState {
	s.CurrentScreen = ScreenHome
	s.CurrentConversationID = ""
	s.ChatInput, s.Input = "", ""
	s.ActiveDialog = nil
	s.FocusedTool = NoFocus
	return s
}

func switchConversation(s AppState, id string) AppState {
	if !slices.ContainsFunc(s.Conversations, func(c chat.Conversation) bool { return c.ID == id }) {
		return s
	}
	s.CurrentScreen = ScreenChat
	s.CurrentConversationID = id
	s.ActiveDialog = nil
	s.FocusedTool = NoFocus
	return s
}

func historyBack(s AppState) AppState {
	maxIdx := len(s.PromptHistory) - 1
	if maxIdx < 0 {
		return s
	}
	next := 0
	if s.PromptHistoryIndex >= 0 {
		next = min(maxIdx, s.PromptHistoryIndex+1)
	}
	s.PromptHistoryIndex = next
	return s.withActiveInput(s.PromptHistory[next])
}

func historyForward(s AppState) AppState {
	if len(s.PromptHistory) == 0 {
		return s
	}
	if s.PromptHistoryIndex <= 0 {
		s.PromptHistoryIndex = -1
		return s.withActiveInput("")
	}
	s.PromptHistoryIndex--
	return s.withActiveInput(s.PromptHistory[s.PromptHistoryIndex])
}

// stashPush appends input to the stash, evicting the oldest entries beyond
// MaxStashEntries.
func stashPush(s AppState, input string) AppState {
	entries := append(slices.Clip(s.StashEntries), StashEntry{Input: input, Timestamp: clock()})
	s.StashEntries = lastN(entries, MaxStashEntries)
	return s
}

// submit sends the active prompt buffer as a new user turn. It creates the
// conversation when none is selected and moves to the chat screen.
func submit(s AppState) AppState {
	prompt := strings.TrimSpace(s.ActiveInput())
	if prompt == "" || s.AgentBusy {
		return s
	}
	now := clock()
	msg := chat.NewUserMessage(prompt, now)

	if _, ok := s.CurrentConversation(); ok {
		s.Conversations = mapConversation(s.Conversations, s.CurrentConversationID, func(c chat.Conversation) chat.Conversation {
			c.Messages = append(slices.Clip(c.Messages), msg)
			c.UpdatedAt = now
			return c
		})
	} else {
		conv := chat.Conversation{
			ID:        newID(),
			Title:     chat.TitleFromPrompt(prompt),
			Messages:  []chat.ChatMessage{msg},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.Conversations = slices.Insert(slices.Clone(s.Conversations), 0, conv)
		s.CurrentConversationID = conv.ID
	}

	s.PromptHistory = firstN(slices.Insert(slices.Clone(s.PromptHistory), 0, prompt), MaxPromptHistory)
	s.PromptHistoryIndex = 0
	s.Input, s.ChatInput = "", ""
	s.CurrentScreen = ScreenChat
	s.AgentBusy = true
	s.LoaderPhase = 0
	s.PendingUserMessage = prompt
	s.PendingConversationID = s.CurrentConversationID
	s.StreamingContent = ""
	s.StreamingToolCalls = nil
	return s
}

func insertText(s AppState, text string) AppState {
	if text == "" {
		return s
	}
	switch d := s.ActiveDialog.(type) {
	case nil:
	case AddDatasourceDialog:
		if d.Step != StepForm || d.FormSelected > FormRowConnection {
			return s
		}
		if d.FormSelected == FormRowName {
			d.Name += text
		} else {
			d.Connection += text
		}
		s.ActiveDialog = d
		return s
	case CommandDialog:
		d.Search += text
		d.Selected = 0
		s.ActiveDialog = d
		return s
	case NewNotebookNameDialog:
		d.Input += text
		s.ActiveDialog = d
		return s
	default:
		return s
	}

	switch s.CurrentScreen {
	case ScreenChat:
		s.ChatInput += text
	case ScreenNotebook:
		if s.EditingCellTitle != NoCell {
			s.CellTitleInput += text
		} else {
			s.CellInput += text
		}
	default:
		s.Input += text
	}
	return s
}

func withAddDatasource(s AppState, fn func(AddDatasourceDialog) AddDatasourceDialog) AppState {
	d, ok := s.ActiveDialog.(AddDatasourceDialog)
	if !ok {
		return s
	}
	s.ActiveDialog = fn(d)
	return s
}

// mapConversation returns a copy of convs with fn applied to the entry whose
// ID is id.
func mapConversation(convs []chat.Conversation, id string, fn func(chat.Conversation) chat.Conversation) []chat.Conversation {
	if id == "" {
		return convs
	}
	out := make([]chat.Conversation, len(convs))
	for i, c := range convs {
		if c.ID == id {
			c = fn(c)
		}
		out[i] = c
	}
	return out
}

// ToolKey names a tool call for expansion tracking.
func ToolKey(msgIdx, toolIdx int) string {
	return strconv.Itoa(msgIdx) + "_" + strconv.Itoa(toolIdx)
}

func toggled(m map[string]bool, key string) map[string]bool {
	out := maps.Clone(m)
	if out == nil {
		out = map[string]bool{}
	}
	out[key] = !out[key]
	return out
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func lastN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

// trimLast drops the final rune of s.
func trimLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(hi, v))
}

func trimmedNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
