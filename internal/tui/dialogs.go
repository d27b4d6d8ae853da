package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

const (
	dialogWidth = 56
	// maxDialogRows bounds list dialogs; the window scrolls with the selection.
	maxDialogRows = 12
)

func (m Model) dialogView() string {
	st, s := m.st, m.styles
	var title string
	var body []string

	switch d := st.ActiveDialog.(type) {
	case state.CommandDialog:
		title = "Commands"
		body = append(body, "> "+d.Search+cursor, "")
		items := st.FilteredCommands()
		if len(items) == 0 {
			body = append(body, s.Hint.Render("No matching commands"))
		}
		lo, hi := window(d.Selected, len(items))
		for i := lo; i < hi; i++ {
			it := items[i]
			desc := it.Category
			if it.Shortcut != "" {
				desc += "  " + it.Shortcut
			}
			body = append(body, row(s, i == d.Selected, it.Name, desc))
		}

	case state.HelpDialog:
		title = "Keyboard shortcuts"
		for _, sec := range m.keys.HelpSections() {
			body = append(body, s.CellTitle.Render(sec.Title))
			for _, b := range sec.Bindings {
				h := b.Help()
				body = append(body, "  "+runewidth.FillRight(h.Key, 16)+s.RowDescription.Render(h.Desc))
			}
			body = append(body, "")
		}

	case state.ConversationsDialog:
		title = "Conversations"
		labels := []string{"+ New conversation"}
		for _, c := range st.Conversations {
			label := c.Title
			if c.ID == st.CurrentConversationID {
				label = "• " + label
			}
			labels = append(labels, label)
		}
		body = append(body, listRows(s, labels, d.Selected)...)

	case state.ThemeDialog:
		title = "Theme"
		for i, id := range state.ThemeIDs {
			t := ThemeByID(id)
			swatch := lipgloss.NewStyle().Foreground(t.Primary).Render("■") +
				lipgloss.NewStyle().Foreground(t.Accent).Render("■")
			body = append(body, row(s, i == d.Selected, id, swatch+current(id == st.ThemeID)))
		}

	case state.ExportDialog:
		title = "Export conversation"
		body = append(body,
			"File:          "+st.ExportFilename,
			"Thinking:      "+onOff(st.ExportThinking),
			"Tool details:  "+onOff(st.ExportToolDetails),
			"",
			s.Hint.Render("enter to export to the current directory, esc to cancel"),
		)

	case state.StashDialog:
		title = "Stash"
		if len(st.StashEntries) == 0 {
			body = append(body, s.Hint.Render("Nothing stashed. Press ctrl+s to stash the prompt."))
		}
		lo, hi := window(d.Selected, len(st.StashEntries))
		for i := lo; i < hi; i++ {
			e := st.StashEntries[i]
			body = append(body, row(s, i == d.Selected, oneLine(e.Input), e.Timestamp.Format("Jan 2 15:04")))
		}

	case state.AgentDialog:
		title = "Agent"
		for i, id := range state.AgentIDs {
			body = append(body, row(s, i == d.Selected, id, current(id == st.SelectedAgentID)))
		}

	case state.ModelDialog:
		title = "Model"
		for i, id := range state.ModelIDs {
			body = append(body, row(s, i == d.Selected, id, current(id == st.SelectedModelID)))
		}

	case state.DatasourcesDialog:
		title = "Datasources"
		labels := []string{"+ Add datasource"}
		for _, it := range st.DatasourceItems() {
			mark := "[ ] "
			if it.Attached {
				mark = "[x] "
			}
			labels = append(labels, mark+it.Name)
		}
		body = append(body, listRows(s, labels, d.Selected)...)
		if _, ok := st.CurrentConversation(); !ok {
			body = append(body, "", s.Hint.Render("Start a conversation to attach datasources."))
		}

	case state.AddDatasourceDialog:
		title, body = m.addDatasourceView(d)

	case state.NotebooksDialog:
		title = "Notebooks"
		labels := []string{"+ New notebook"}
		for _, nb := range st.Notebooks {
			labels = append(labels, nb.Title)
		}
		body = append(body, listRows(s, labels, d.Selected)...)
		if st.NotebookCreateError != "" {
			body = append(body, "", s.Error.Render(st.NotebookCreateError))
		}

	case state.NewNotebookNameDialog:
		title = "New notebook"
		body = append(body, "Name: "+d.Input+cursor, "", s.Hint.Render("enter to create, esc to cancel"))
	}

	content := s.DialogTitle.Render(title) + "\n" + strings.Join(body, "\n")
	return s.Dialog.Width(min(dialogWidth, max(20, st.Width-4))).Render(content)
}

func (m Model) addDatasourceView(d state.AddDatasourceDialog) (string, []string) {
	s := m.styles
	if d.Step == state.StepType {
		body := listRows(s, d.TypeNames, d.TypeSelected)
		if len(d.TypeNames) == 0 {
			body = []string{s.Hint.Render("Loading datasource types…")}
		}
		return "Add datasource", body
	}

	field := func(idx int, label, value string) string {
		if d.FormSelected == idx {
			return s.RowSelected.Render(label + value + cursor)
		}
		return s.Row.Render(label + value)
	}
	button := func(idx int, label string) string {
		if d.FormSelected == idx {
			return s.TabSelected.Render(label)
		}
		return s.Tab.Render(label)
	}

	body := []string{
		field(state.FormRowName, "Name:        ", d.Name),
		field(state.FormRowConnection, "Connection:  ", d.Connection),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			button(state.FormRowTest, "Test"),
			button(state.FormRowCreate, "Create"),
			button(state.FormRowCancel, "Cancel"),
		),
	}
	switch d.TestStatus {
	case state.TestPending:
		body = append(body, "", s.Loader.Render("Testing connection…"))
	case state.TestOK:
		body = append(body, "", s.Ok.Render("✓ "+d.TestMessage))
	case state.TestError:
		body = append(body, "", s.Error.Render("✗ "+d.TestMessage))
	}
	if m.st.PendingAddDatasource != nil {
		body = append(body, "", s.Loader.Render("Creating datasource…"))
	}
	if d.ValidationError != "" {
		body = append(body, "", s.Error.Render(d.ValidationError))
	}
	return "Add " + d.TypeName(), body
}

// row renders one selectable line with an optional right-aligned description.
func row(s Styles, selected bool, label, desc string) string {
	inner := dialogWidth - 10
	label = runewidth.Truncate(label, inner-lipgloss.Width(desc)-1, "…")
	gap := max(1, inner-runewidth.StringWidth(label)-lipgloss.Width(desc))
	text := label + strings.Repeat(" ", gap) + s.RowDescription.Render(desc)
	if selected {
		return s.RowSelected.Render(text)
	}
	return s.Row.Render(text)
}

func listRows(s Styles, labels []string, selected int) []string {
	lo, hi := window(selected, len(labels))
	out := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, row(s, i == selected, labels[i], ""))
	}
	return out
}

// window returns the visible range of a list of n rows that keeps sel in view.
func window(sel, n int) (lo, hi int) {
	if n <= maxDialogRows {
		return 0, n
	}
	lo = min(max(0, sel-maxDialogRows/2), n-maxDialogRows)
	return lo, lo + maxDialogRows
}

func current(ok bool) string {
	if ok {
		return " (current)"
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
