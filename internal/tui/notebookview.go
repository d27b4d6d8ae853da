package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// Result table limits.
const (
	maxResultRows  = 20
	maxColumnWidth = 24
)

func (m Model) notebookScreen() string {
	st, s := m.st, m.styles
	nb := st.CurrentNotebook
	if nb == nil {
		return m.homeScreen()
	}

	width := max(20, st.Width-2)
	var cells []string
	for i, c := range nb.Cells {
		cells = append(cells, m.cellView(c, i == st.FocusedCell, width))
	}
	if len(cells) == 0 {
		cells = append(cells, s.Hint.Render("Empty notebook. Press ctrl+o to add a cell."))
	}
	body := strings.Join(cells, "\n")

	if st.PickerOpen {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.pickerView())
	}

	// Keep the focused cell on screen by dropping lines from the top.
	avail := max(1, st.Height-2)
	lines := strings.Split(body, "\n")
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(st, s),
		lipgloss.NewStyle().Height(avail).Render(strings.Join(lines, "\n")),
		m.helpBar.View(st, s),
	)
}

func (m Model) cellView(c chat.NotebookCell, focused bool, width int) string {
	st, s := m.st, m.styles
	box := s.Cell
	if focused {
		box = s.CellFocused
	}

	title := c.Title
	if title == "" {
		title = fmt.Sprintf("Cell %d", c.CellID)
	}
	if focused && st.EditingCellTitle == c.CellID {
		title = st.CellTitleInput + cursor
	}
	head := s.CellTitle.Render(title) + " " + s.Meta.Render(m.datasourceLabel(c))
	if st.CellLoading == c.CellID {
		head += " " + s.Loader.Render("running…")
	}

	query := c.Query
	if focused && st.EditingCellTitle == state.NoCell {
		query = st.CellInput + cursor
	}
	if query == "" {
		query = s.Placeholder.Render("select 1")
	}

	parts := []string{head, query}
	if msg, ok := st.CellErrors[c.CellID]; ok {
		parts = append(parts, s.Error.Render(msg))
	} else if res, ok := st.CellResults[c.CellID]; ok {
		parts = append(parts, resultTable(res, s, width-4))
	}
	return box.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func (m Model) datasourceLabel(c chat.NotebookCell) string {
	ids := c.Datasources
	if len(ids) == 0 && m.st.CurrentNotebook != nil {
		ids = m.st.CurrentNotebook.Datasources
	}
	if len(ids) == 0 {
		return "(no datasource)"
	}
	for _, d := range m.st.ProjectDatasources {
		if d.ID == ids[0] {
			return "@" + d.Name
		}
	}
	return "@" + ids[0]
}

func (m Model) pickerView() string {
	st, s := m.st, m.styles
	var rows []string
	rows = append(rows, s.DialogTitle.Render("Choose a datasource"))
	if len(st.ProjectDatasources) == 0 {
		rows = append(rows, s.Hint.Render("No datasources. Add one with ctrl+shift+a."))
	}
	for i, d := range st.ProjectDatasources {
		rows = append(rows, row(s, i == st.PickerSelected, d.Name, ""))
	}
	return s.Dialog.Render(strings.Join(rows, "\n"))
}

// resultTable renders query rows as an aligned text table.
func resultTable(res chat.CellResult, s Styles, width int) string {
	headers := res.HeaderNames()
	if len(headers) == 0 {
		return s.Meta.Render(fmt.Sprintf("%d row(s)", len(res.Rows)))
	}

	n := min(len(res.Rows), maxResultRows)
	cells := make([][]string, n)
	widths := make([]int, len(headers))
	for j, h := range headers {
		widths[j] = min(maxColumnWidth, runewidth.StringWidth(h))
	}
	for i := range n {
		cells[i] = make([]string, len(headers))
		for j := range headers {
			v := formatValue(res.Cell(i, j))
			cells[i][j] = v
			widths[j] = min(maxColumnWidth, max(widths[j], runewidth.StringWidth(v)))
		}
	}

	line := func(vals []string) string {
		var b strings.Builder
		for j, v := range vals {
			if j > 0 {
				b.WriteString(" │ ")
			}
			b.WriteString(runewidth.FillRight(runewidth.Truncate(v, widths[j], "…"), widths[j]))
		}
		return runewidth.Truncate(b.String(), max(1, width), "…")
	}

	out := []string{s.TableHeader.Render(line(headers))}
	for _, r := range cells {
		out = append(out, line(r))
	}
	footer := fmt.Sprintf("%d row(s)", len(res.Rows))
	if len(res.Rows) > n {
		footer += fmt.Sprintf(", showing %d", n)
	}
	out = append(out, s.Meta.Render(footer))
	return strings.Join(out, "\n")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strings.ReplaceAll(v, "\n", " ")
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprint(v)
}
