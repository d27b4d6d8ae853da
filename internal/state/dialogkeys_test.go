package state

import (
	"testing"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

func TestDialogEscapeAlwaysCloses(t *testing.T) {
	kinds := []DialogKind{
		DialogCommand, DialogHelp, DialogConversations, DialogTheme, DialogExport,
		DialogStash, DialogAgent, DialogModel, DialogDatasources, DialogAddDatasource,
		DialogNotebooks, DialogNewNotebookName,
	}
	for _, kind := range kinds {
		for _, key := range []string{"escape", "ctrl+c"} {
			t.Run(string(kind)+"/"+key, func(t *testing.T) {
				s := Reduce(Initial(), OpenDialog{Dialog: kind})
				if s.DialogKind() != kind {
					t.Fatalf("DialogKind = %q, want %q", s.DialogKind(), kind)
				}
				s = pressKeys(s, key)
				if s.ActiveDialog != nil || s.CommandPaletteSearch() != "" {
					t.Errorf("dialog still open: %v", s.ActiveDialog)
				}
			})
		}
	}
}

func TestDialogCapturesKeys(t *testing.T) {
	s := Reduce(chatState(), OpenDialog{Dialog: DialogHelp})
	s = pressKeys(s, "a", "enter")
	if s.ChatInput != "" || s.AgentBusy {
		t.Errorf("screen handled a key while a dialog was open")
	}
}

func TestCommandPalette(t *testing.T) {
	t.Run("filter matches name or category", func(t *testing.T) {
		tests := []struct {
			search string
			want   int
		}{
			{"", len(DefaultCommands())},
			{"THEME", 1},
			{"conversation", 2},
			{"data", 4},
			{"zzz", 0},
		}
		for _, tt := range tests {
			if got := len(FilterCommands(DefaultCommands(), tt.search)); got != tt.want {
				t.Errorf("FilterCommands(%q) = %d items, want %d", tt.search, got, tt.want)
			}
		}
	})

	t.Run("typing resets selection", func(t *testing.T) {
		s := pressKeys(Initial(), "ctrl+p", "down", "down")
		if got := s.ActiveDialog.(CommandDialog).Selected; got != 2 {
			t.Fatalf("Selected = %d, want 2", got)
		}
		s = pressKeys(s, "m")
		if got := s.ActiveDialog.(CommandDialog).Selected; got != 0 {
			t.Errorf("Selected = %d after typing, want 0", got)
		}
		s = pressKeys(s, "backspace")
		if s.CommandPaletteSearch() != "" {
			t.Errorf("search = %q", s.CommandPaletteSearch())
		}
	})

	t.Run("selection clamps to filtered list", func(t *testing.T) {
		s := pressKeys(Initial(), "ctrl+p")
		s = typeText(s, "theme")
		s = pressKeys(s, "down", "down", "up", "up")
		if got := s.ActiveDialog.(CommandDialog).Selected; got != 0 {
			t.Errorf("Selected = %d, want 0", got)
		}
	})

	t.Run("enter executes the selected command", func(t *testing.T) {
		s := pressKeys(Initial(), "ctrl+p")
		s = typeText(s, "theme")
		s = pressKeys(s, "enter")
		if s.DialogKind() != DialogTheme {
			t.Errorf("DialogKind = %q, want theme", s.DialogKind())
		}
	})

	t.Run("enter on empty filter closes", func(t *testing.T) {
		s := pressKeys(Initial(), "ctrl+p")
		s = typeText(s, "zzz")
		s = pressKeys(s, "enter")
		if s.ActiveDialog != nil {
			t.Errorf("dialog still open")
		}
	})

	t.Run("new conversation returns home", func(t *testing.T) {
		s := Reduce(chatState(), OpenDialog{Dialog: DialogCommand})
		s = pressKeys(s, "enter")
		if s.CurrentScreen != ScreenHome || s.CurrentConversationID != "" {
			t.Errorf("screen=%q id=%q", s.CurrentScreen, s.CurrentConversationID)
		}
	})
}

func TestExecuteCommand(t *testing.T) {
	tests := []struct {
		cmd  string
		want DialogKind
	}{
		{CmdShowConversations, DialogConversations},
		{CmdShowDatasources, DialogDatasources},
		{CmdShowAddDatasource, DialogAddDatasource},
		{CmdShowNotebooks, DialogNotebooks},
		{CmdNewNotebook, DialogNewNotebookName},
		{CmdShowTheme, DialogTheme},
		{CmdShowExport, DialogExport},
		{CmdShowStash, DialogStash},
		{CmdShowAgent, DialogAgent},
		{CmdShowModel, DialogModel},
		{CmdShowHelp, DialogHelp},
		{"no_such_command", DialogNone},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			s := Initial()
			s.ActiveDialog = HelpDialog{}
			if got := Reduce(s, ExecuteCommand{Command: tt.cmd}).DialogKind(); got != tt.want {
				t.Errorf("DialogKind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectionResetsOnReopen(t *testing.T) {
	s := Initial()
	s.Conversations = []chat.Conversation{{ID: "a"}, {ID: "b"}}
	s = pressKeys(s, "ctrl+l", "down", "down")
	if got := s.ActiveDialog.(ConversationsDialog).Selected; got != 2 {
		t.Fatalf("Selected = %d, want 2", got)
	}
	s = pressKeys(s, "down")
	if got := s.ActiveDialog.(ConversationsDialog).Selected; got != 2 {
		t.Errorf("Selected = %d past the end, want 2", got)
	}
	s = pressKeys(s, "escape", "ctrl+l")
	if got := s.ActiveDialog.(ConversationsDialog).Selected; got != 0 {
		t.Errorf("Selected = %d after reopen, want 0", got)
	}
}

func TestConversationsDialog(t *testing.T) {
	s := Initial()
	s.Conversations = []chat.Conversation{{ID: "a"}, {ID: "b"}}

	first := pressKeys(s, "ctrl+l", "enter")
	if !first.RequestNewConversation || first.ActiveDialog != nil {
		t.Errorf("row 0 did not request a new conversation")
	}

	picked := pressKeys(s, "ctrl+l", "down", "down", "enter")
	if picked.CurrentConversationID != "b" || picked.CurrentScreen != ScreenChat {
		t.Errorf("id=%q screen=%q", picked.CurrentConversationID, picked.CurrentScreen)
	}
}

func TestThemeDialog(t *testing.T) {
	s := Initial()
	s.ThemeID = ThemeIDs[2]
	s = Reduce(s, ExecuteCommand{Command: CmdShowTheme})
	if got := s.ActiveDialog.(ThemeDialog).Selected; got != 2 {
		t.Fatalf("Selected = %d, want current theme index 2", got)
	}
	s = pressKeys(s, "down", "enter")
	if s.ThemeID != ThemeIDs[3] || s.ActiveDialog != nil {
		t.Errorf("ThemeID=%q dialog=%v", s.ThemeID, s.ActiveDialog)
	}
}

func TestAgentAndModelDialogs(t *testing.T) {
	s := Reduce(Initial(), OpenDialog{Dialog: DialogAgent})
	s = pressKeys(s, "down", "down", "enter")
	if s.SelectedAgentID != "ask" || s.ActiveDialog != nil {
		t.Errorf("SelectedAgentID=%q", s.SelectedAgentID)
	}

	s = Reduce(s, OpenDialog{Dialog: DialogModel})
	s = pressKeys(s, "down", "enter")
	if s.SelectedModelID != "mock" {
		t.Errorf("SelectedModelID=%q", s.SelectedModelID)
	}
}

func TestStashDialog(t *testing.T) {
	fixClock(t)

	empty := Reduce(Initial(), OpenDialog{Dialog: DialogStash})
	empty = pressKeys(empty, "down", "enter")
	if got := empty.ActiveDialog.(StashDialog).Selected; got != 0 {
		t.Errorf("Selected = %d on empty stash", got)
	}

	s := Reduce(Initial(), StashPush{Input: "one"})
	s = Reduce(s, StashPush{Input: "two"})
	s = Reduce(s, OpenDialog{Dialog: DialogStash})
	s = pressKeys(s, "down", "enter")
	if s.Input != "two" || s.ActiveDialog != nil {
		t.Errorf("Input=%q dialog=%v", s.Input, s.ActiveDialog)
	}
}

func TestDatasourcesDialog(t *testing.T) {
	s := chatState()
	s.ProjectDatasources = []chat.ProjectDatasource{{ID: "pg", Name: "Postgres"}, {ID: "csv", Name: "Orders CSV"}}

	s = pressKeys(s, "ctrl+d", "down", "down", "enter")
	conv, _ := s.CurrentConversation()
	if !conv.HasDatasource("csv") {
		t.Fatalf("csv not attached: %v", conv.Datasources)
	}
	if s.PendingDatasourceSync != "c1" {
		t.Errorf("PendingDatasourceSync = %q", s.PendingDatasourceSync)
	}

	items := s.DatasourceItems()
	if len(items) != 2 || !items[0].Attached || items[0].Name != "Orders CSV" {
		t.Fatalf("items = %+v", items)
	}

	s = pressKeys(s, "up", "enter")
	conv, _ = s.CurrentConversation()
	if conv.HasDatasource("csv") {
		t.Errorf("csv still attached")
	}

	s = pressKeys(s, "up", "enter")
	if s.DialogKind() != DialogAddDatasource {
		t.Errorf("row 0 opened %q", s.DialogKind())
	}
}

func TestAddDatasourceWizard(t *testing.T) {
	s := chatState()
	s.Workspace = &chat.Workspace{ProjectID: "p1"}
	s = pressKeys(s, "ctrl+shift+a")
	s = Reduce(s, SetAddDatasourceTypes{IDs: []string{"postgresql", "duckdb"}, Names: []string{"PostgreSQL", "DuckDB"}})

	s = pressKeys(s, "down", "down", "enter")
	d := s.ActiveDialog.(AddDatasourceDialog)
	if d.Step != StepForm || d.TypeID != "duckdb" || d.Name != "DuckDB" {
		t.Fatalf("dialog = %+v", d)
	}

	s = pressKeys(s, "backspace", "backspace", "down")
	s = Reduce(s, InsertText{Text: "/tmp/data.db"})
	d = s.ActiveDialog.(AddDatasourceDialog)
	if d.Name != "Duck" || d.Connection != "/tmp/data.db" {
		t.Fatalf("Name=%q Connection=%q", d.Name, d.Connection)
	}

	t.Run("rows wrap", func(t *testing.T) {
		w := pressKeys(s, "up", "up")
		if got := w.ActiveDialog.(AddDatasourceDialog).FormSelected; got != FormRowCancel {
			t.Errorf("FormSelected = %d, want %d", got, FormRowCancel)
		}
		w = pressKeys(w, "right")
		if got := w.ActiveDialog.(AddDatasourceDialog).FormSelected; got != FormRowTest {
			t.Errorf("right from cancel = %d, want %d", got, FormRowTest)
		}
		w = pressKeys(w, "left")
		if got := w.ActiveDialog.(AddDatasourceDialog).FormSelected; got != FormRowCancel {
			t.Errorf("left from test = %d, want %d", got, FormRowCancel)
		}
	})

	t.Run("test connection", func(t *testing.T) {
		w := pressKeys(s, "down", "enter")
		d := w.ActiveDialog.(AddDatasourceDialog)
		if !d.TestRequested || d.TestStatus != TestPending {
			t.Fatalf("dialog = %+v", d)
		}
		w = Reduce(w, SetAddDatasourceTestResult{Status: TestOK, Message: "Connection successful"})
		d = w.ActiveDialog.(AddDatasourceDialog)
		if d.TestRequested || d.TestStatus != TestOK {
			t.Errorf("dialog = %+v", d)
		}
	})

	t.Run("create", func(t *testing.T) {
		w := pressKeys(s, "down", "down", "enter")
		if w.PendingAddDatasource == nil || *w.PendingAddDatasource != (AddDatasourceRequest{TypeID: "duckdb", Name: "Duck", Connection: "/tmp/data.db"}) {
			t.Fatalf("PendingAddDatasource = %+v", w.PendingAddDatasource)
		}
		failed := Reduce(w, AddDatasourceFailed{Error: "boom"})
		if failed.PendingAddDatasource != nil || failed.ActiveDialog.(AddDatasourceDialog).ValidationError != "boom" {
			t.Errorf("failure not recorded")
		}
		done := Reduce(w, AddDatasourceCreated{Datasources: []chat.ProjectDatasource{{ID: "new"}}})
		if done.ActiveDialog != nil || done.PendingAddDatasource != nil || len(done.ProjectDatasources) != 1 {
			t.Errorf("created state = %+v", done)
		}
	})

	t.Run("create without workspace", func(t *testing.T) {
		w := s
		w.Workspace = nil
		w = pressKeys(w, "down", "down", "enter")
		if w.PendingAddDatasource != nil || w.ActiveDialog.(AddDatasourceDialog).ValidationError == "" {
			t.Errorf("expected a validation error")
		}
	})

	t.Run("cancel", func(t *testing.T) {
		w := pressKeys(s, "down", "down", "down", "enter")
		if w.ActiveDialog != nil {
			t.Errorf("cancel did not close")
		}
	})
}

func TestNotebooksDialog(t *testing.T) {
	s := Initial()
	s.Notebooks = []chat.Notebook{{ID: "nb1", Title: "Revenue", Cells: []chat.NotebookCell{{CellID: 1, CellType: chat.CellTypeQuery, Query: "select 1"}}}}
	s.NotebookCreateError = "old"

	s = pressKeys(s, "ctrl+b")
	if s.NotebookCreateError != "" {
		t.Errorf("create error not cleared")
	}

	named := pressKeys(s, "n")
	if named.DialogKind() != DialogNewNotebookName {
		t.Fatalf("n opened %q", named.DialogKind())
	}
	named = pressKeys(named, "backspace", "enter")
	if !named.RequestNewNotebook || named.PendingNewNotebookTitle != "Untitled noteboo" {
		t.Errorf("request=%v title=%q", named.RequestNewNotebook, named.PendingNewNotebookTitle)
	}

	opened := pressKeys(s, "down", "enter")
	if opened.CurrentScreen != ScreenNotebook || opened.CellInput != "select 1" {
		t.Errorf("screen=%q CellInput=%q", opened.CurrentScreen, opened.CellInput)
	}
}

func TestSubmitNewNotebookNameFallback(t *testing.T) {
	s := Reduce(Initial(), SubmitNewNotebookName{Title: "   "})
	if s.PendingNewNotebookTitle != UntitledNotebook {
		t.Errorf("title = %q", s.PendingNewNotebookTitle)
	}
	s = Reduce(s, ClearRequestNewNotebook{})
	if s.RequestNewNotebook || s.PendingNewNotebookTitle != "" {
		t.Errorf("request not cleared")
	}
}
