package state

import (
	"maps"
	"slices"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/keys"
)

func reduceNotebook(s AppState, a Action) AppState {
	switch a := a.(type) {
	case SetNotebooks:
		s.Notebooks = a.Notebooks
	case OpenNotebook:
		return openNotebook(s, a.Notebook)
	case SetCurrentNotebook:
		nb := a.Notebook.Clone()
		s.CurrentNotebook = &nb
	case CloseNotebook:
		s.CurrentNotebook = nil
		if s.CurrentScreen == ScreenNotebook {
			s.CurrentScreen = ScreenHome
		}
		s.CellResults = map[int]chat.CellResult{}
		s.CellErrors = map[int]string{}
		s.CellLoading = NoCell
		s.CellInput = ""
		s.PickerOpen = false
		s.PickerSelected = 0
		s.EditingCellTitle = NoCell
	case RunNotebookCell:
		s.CellLoading = a.CellID
	case NotebookCellResult:
		s.CellResults = withKey(s.CellResults, a.CellID, a.Result)
		s.CellErrors = withoutKey(s.CellErrors, a.CellID)
		s.CellLoading = NoCell
	case NotebookCellError:
		s.CellErrors = withKey(s.CellErrors, a.CellID, a.Error)
		s.CellResults = withoutKey(s.CellResults, a.CellID)
		s.CellLoading = NoCell
	case NotebookFocusCell:
		return focusCell(s, a.Index)
	case UpdateNotebookCellQuery:
		return mapCell(s, a.CellID, func(c chat.NotebookCell) chat.NotebookCell {
			c.Query = a.Query
			return c
		})
	case AddNotebookCell:
		return addNotebookCell(s)
	case SetNotebookCellDatasource:
		s = mapCell(s, a.CellID, func(c chat.NotebookCell) chat.NotebookCell {
			c.Datasources = slices.Clone(a.Datasources)
			return c
		})
		s.NotebookPendingSave = s.CurrentNotebook != nil
	case ClearNotebookPendingSave:
		s.NotebookPendingSave = false
	case OpenNewNotebookNameDialog:
		return openDialog(s, DialogNewNotebookName)
	case SubmitNewNotebookName:
		return submitNewNotebookName(s, a.Title)
	case ClearRequestNewNotebook:
		s.RequestNewNotebook = false
		s.PendingNewNotebookTitle = ""
	case StartEditingCellTitle:
		s.EditingCellTitle = a.CellID
		s.CellTitleInput = ""
		if s.CurrentNotebook != nil {
			for _, c := range s.CurrentNotebook.Cells {
				if c.CellID == a.CellID {
					s.CellTitleInput = c.Title
				}
			}
		}
	case UpdateNotebookCellTitle:
		if s.CurrentNotebook == nil {
			return s
		}
		s = mapCell(s, a.CellID, func(c chat.NotebookCell) chat.NotebookCell {
			c.Title = a.Title
			return c
		})
		s.EditingCellTitle = NoCell
		s.NotebookPendingSave = true
	case StopEditingCellTitle:
		s.EditingCellTitle = NoCell
	case SetNotebookCreateError:
		s.NotebookCreateError = a.Error
	}
	return s
}

// mapCell returns s with fn applied to the cell of the open notebook whose id
// is cellID. The notebook is copied, never edited in place.
func mapCell(s AppState, cellID int, fn func(chat.NotebookCell) chat.NotebookCell) AppState {
	if s.CurrentNotebook == nil {
		return s
	}
	nb := s.CurrentNotebook.Clone()
	for i, c := range nb.Cells {
		if c.CellID == cellID {
			nb.Cells[i] = fn(c)
		}
	}
	s.CurrentNotebook = &nb
	return s
}

func focusCell(s AppState, idx int) AppState {
	s.FocusedCell = idx
	s.CellInput = ""
	if s.CurrentNotebook != nil && idx >= 0 && idx < len(s.CurrentNotebook.Cells) {
		s.CellInput = s.CurrentNotebook.Cells[idx].Query
	}
	return s
}

func addNotebookCell(s AppState) AppState {
	if s.CurrentNotebook == nil {
		return s
	}
	nb := s.CurrentNotebook.Clone()
	nb.Cells = append(nb.Cells, chat.NotebookCell{
		CellID:      nb.MaxCellID() + 1,
		CellType:    chat.CellTypeQuery,
		Datasources: []string{},
		IsActive:    true,
		RunMode:     chat.RunModeDefault,
	})
	s.CurrentNotebook = &nb
	s.FocusedCell = len(nb.Cells) - 1
	s.CellInput = ""
	s.NotebookPendingSave = true
	return s
}

func withKey[V any](m map[int]V, k int, v V) map[int]V {
	out := make(map[int]V, len(m)+1)
	maps.Copy(out, m)
	out[k] = v
	return out
}

func withoutKey[V any](m map[int]V, k int) map[int]V {
	if _, ok := m[k]; !ok {
		return m
	}
	out := maps.Clone(m)
	delete(out, k)
	return out
}

func notebookKey(s AppState, key string) AppState {
	if s.CurrentNotebook == nil {
		return s
	}
	cell, hasCell := s.FocusedCellData()

	if s.EditingCellTitle != NoCell {
		switch {
		case key == "escape":
			s.EditingCellTitle = NoCell
		case key == "backspace":
			s.CellTitleInput = trimLast(s.CellTitleInput)
		case key == "enter":
			return Reduce(s, UpdateNotebookCellTitle{CellID: s.EditingCellTitle, Title: s.CellTitleInput})
		case keys.IsPrintable(key):
			s.CellTitleInput += key
		}
		return s
	}

	if s.PickerOpen {
		switch key {
		case "escape":
			s.PickerOpen = false
		case "up", "down":
			s.PickerSelected = moveCursor(s.PickerSelected, key, len(s.ProjectDatasources)-1)
		case "enter":
			if hasCell && s.PickerSelected < len(s.ProjectDatasources) {
				ds := s.ProjectDatasources[s.PickerSelected]
				s = Reduce(s, SetNotebookCellDatasource{CellID: cell.CellID, Datasources: []string{ds.ID}})
				s.PickerOpen = false
			}
		}
		return s
	}

	last := len(s.CurrentNotebook.Cells) - 1
	switch {
	case key == "escape":
		return Reduce(s, CloseNotebook{})
	case key == "backspace":
		s.CellInput = trimLast(s.CellInput)
	case keys.IsPrintable(key):
		s.CellInput += key
	case key == "up", key == "down":
		if hasCell {
			s = Reduce(s, UpdateNotebookCellQuery{CellID: cell.CellID, Query: s.CellInput})
		}
		return focusCell(s, moveCursor(s.FocusedCell, key, last))
	case key == "ctrl+enter", key == "ctrl+j":
		if hasCell && cell.CellType == chat.CellTypeQuery && trimmedNonEmpty(s.CellInput) {
			s = Reduce(s, UpdateNotebookCellQuery{CellID: cell.CellID, Query: s.CellInput})
			return Reduce(s, RunNotebookCell{CellID: cell.CellID})
		}
	case key == "ctrl+o", key == "ctrl+shift+n":
		return addNotebookCell(s)
	case key == "ctrl+d":
		s.PickerOpen = true
		s.PickerSelected = 0
	case key == "f2", key == "ctrl+t":
		if hasCell {
			return Reduce(s, StartEditingCellTitle{CellID: cell.CellID})
		}
	}
	return s
}
