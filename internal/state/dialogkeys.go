package state

import (
	"strings"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/keys"
)

// DatasourceItem is one row of the datasources dialog after the leading
// "add datasource" row.
type DatasourceItem struct {
	ID       string
	Name     string
	Attached bool
}

// DatasourceItems lists the datasources attached to the current conversation
// followed by the remaining project datasources.
func (s AppState) DatasourceItems() []DatasourceItem {
	conv, _ := s.CurrentConversation()
	var items []DatasourceItem
	for _, id := range conv.Datasources {
		name := id
		for _, d := range s.ProjectDatasources {
			if d.ID == id {
				name = d.Name
				break
			}
		}
		items = append(items, DatasourceItem{ID: id, Name: name, Attached: true})
	}
	for _, d := range s.ProjectDatasources {
		if !conv.HasDatasource(d.ID) {
			items = append(items, DatasourceItem{ID: d.ID, Name: d.Name})
		}
	}
	return items
}

func dialogKey(s AppState, key string) AppState {
	if key == "escape" || key == "ctrl+c" {
		s.ActiveDialog = nil
		return s
	}

	switch d := s.ActiveDialog.(type) {
	case CommandDialog:
		return commandKey(s, d, key)
	case NewNotebookNameDialog:
		switch {
		case key == "backspace":
			d.Input = trimLast(d.Input)
		case key == "enter":
			return submitNewNotebookName(s, d.Input)
		case keys.IsPrintable(key):
			d.Input += key
		default:
			return s
		}
		s.ActiveDialog = d
		return s
	case ConversationsDialog:
		switch key {
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(s.Conversations))
			s.ActiveDialog = d
		case "enter":
			if d.Selected == 0 {
				return Reduce(s, RequestNewConversation{})
			}
			if i := d.Selected - 1; i < len(s.Conversations) {
				return switchConversation(s, s.Conversations[i].ID)
			}
		}
		return s
	case NotebooksDialog:
		switch key {
		case "n":
			return openDialog(s, DialogNewNotebookName)
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(s.Notebooks))
			s.ActiveDialog = d
		case "enter":
			if d.Selected == 0 {
				return openDialog(s, DialogNewNotebookName)
			}
			if i := d.Selected - 1; i < len(s.Notebooks) {
				return openNotebook(s, s.Notebooks[i])
			}
		}
		return s
	case ThemeDialog:
		switch key {
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(ThemeIDs)-1)
			s.ActiveDialog = d
		case "enter":
			s.ThemeID = ThemeIDs[d.Selected]
			s.ActiveDialog = nil
		}
		return s
	case StashDialog:
		switch key {
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(s.StashEntries)-1)
			s.ActiveDialog = d
		case "enter":
			return Reduce(s, StashRestore{Index: d.Selected})
		}
		return s
	case AgentDialog:
		switch key {
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(AgentIDs)-1)
			s.ActiveDialog = d
		case "enter":
			return Reduce(s, SetAgent{AgentID: AgentIDs[d.Selected]})
		}
		return s
	case ModelDialog:
		switch key {
		case "up", "down":
			d.Selected = moveCursor(d.Selected, key, len(ModelIDs)-1)
			s.ActiveDialog = d
		case "enter":
			return Reduce(s, SetModel{ModelID: ModelIDs[d.Selected]})
		}
		return s
	case DatasourcesDialog:
		return datasourcesKey(s, d, key)
	case AddDatasourceDialog:
		if d.Step == StepType {
			return addDatasourceTypeKey(s, d, key)
		}
		return addDatasourceFormKey(s, d, key)
	case HelpDialog, ExportDialog:
		return s
	}
	return s
}

// moveCursor moves a list selection up or down, clamped to [0, maxIdx].
func moveCursor(sel int, key string, maxIdx int) int {
	if key == "up" {
		return clamp(sel-1, 0, maxIdx)
	}
	return clamp(sel+1, 0, maxIdx)
}

func commandKey(s AppState, d CommandDialog, key string) AppState {
	filtered := FilterCommands(s.CommandItems, d.Search)
	switch {
	case key == "up", key == "down":
		d.Selected = moveCursor(d.Selected, key, len(filtered)-1)
	case key == "enter":
		s.ActiveDialog = nil
		if d.Selected < len(filtered) {
			return executeCommand(s, filtered[d.Selected].Action)
		}
		return s
	case key == "backspace":
		d.Search = trimLast(d.Search)
		d.Selected = 0
	case keys.IsPrintable(key):
		d.Search += key
		d.Selected = 0
	default:
		return s
	}
	s.ActiveDialog = d
	return s
}

func datasourcesKey(s AppState, d DatasourcesDialog, key string) AppState {
	items := s.DatasourceItems()
	switch key {
	case "up", "down":
		d.Selected = moveCursor(d.Selected, key, len(items))
		s.ActiveDialog = d
		return s
	case "enter":
	default:
		return s
	}

	if d.Selected == 0 {
		return openDialog(s, DialogAddDatasource)
	}
	conv, ok := s.CurrentConversation()
	if !ok || d.Selected-1 >= len(items) {
		return s
	}
	item := items[d.Selected-1]
	if item.Attached {
		s = Reduce(s, DetachDatasource{ConversationID: conv.ID, DatasourceID: item.ID})
	} else {
		s = Reduce(s, AttachDatasource{ConversationID: conv.ID, DatasourceID: item.ID})
	}
	s.PendingDatasourceSync = conv.ID
	return s
}

func addDatasourceTypeKey(s AppState, d AddDatasourceDialog, key string) AppState {
	switch key {
	case "up", "down":
		d.TypeSelected = moveCursor(d.TypeSelected, key, len(d.TypeIDs)-1)
	case "enter":
		if d.TypeSelected >= len(d.TypeIDs) {
			return s
		}
		d.TypeID = d.TypeIDs[d.TypeSelected]
		d.Step = StepForm
		d.Name = d.TypeName()
		d.FormSelected = FormRowName
		d.ValidationError = ""
		d.TestStatus, d.TestMessage = TestIdle, ""
	default:
		return s
	}
	s.ActiveDialog = d
	return s
}

func addDatasourceFormKey(s AppState, d AddDatasourceDialog, key string) AppState {
	sel := d.FormSelected
	last := formRows - 1
	switch {
	case key == "up":
		d.FormSelected = sel - 1
		if sel <= 0 {
			d.FormSelected = last
		}
	case key == "down":
		d.FormSelected = sel + 1
		if sel >= last {
			d.FormSelected = 0
		}
	case key == "left" && sel >= FormRowTest:
		d.FormSelected = sel - 1
		if sel <= FormRowTest {
			d.FormSelected = last
		}
	case key == "right" && sel >= FormRowTest:
		d.FormSelected = sel + 1
		if sel >= last {
			d.FormSelected = FormRowTest
		}
	case key == "enter":
		switch sel {
		case FormRowTest:
			d.TestRequested = true
			d.TestStatus, d.TestMessage = TestPending, ""
		case FormRowCreate:
			switch {
			case d.TypeID == "":
				d.ValidationError = "No datasource type selected."
			case s.Workspace == nil || s.Workspace.ProjectID == "":
				d.ValidationError = "No project. Restart to initialize workspace."
			default:
				name := strings.TrimSpace(d.Name)
				if name == "" {
					name = d.TypeID
				}
				d.ValidationError = ""
				s.ActiveDialog = d
				return Reduce(s, SubmitAddDatasource{TypeID: d.TypeID, Name: name, Connection: d.Connection})
			}
		case FormRowCancel:
			s.ActiveDialog = nil
			return s
		default:
			return s
		}
	case sel > FormRowConnection:
		return s
	case key == "backspace":
		if sel == FormRowName {
			d.Name = trimLast(d.Name)
		} else {
			d.Connection = trimLast(d.Connection)
		}
	case keys.IsPrintable(key):
		if sel == FormRowName {
			d.Name += key
		} else {
			d.Connection += key
		}
	default:
		return s
	}
	s.ActiveDialog = d
	return s
}

func submitNewNotebookName(s AppState, title string) AppState {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledNotebook
	}
	s.ActiveDialog = nil
	s.RequestNewNotebook = true
	s.PendingNewNotebookTitle = title
	return s
}

func openNotebook(s AppState, nb chat.Notebook) AppState {
	nb = nb.Clone()
	s.CurrentNotebook = &nb
	s.CurrentScreen = ScreenNotebook
	s.ActiveDialog = nil
	s.FocusedCell = 0
	s.CellInput = ""
	if len(nb.Cells) > 0 {
		s.CellInput = nb.Cells[0].Query
	}
	s.EditingCellTitle = NoCell
	s.PickerOpen = false
	return s
}
