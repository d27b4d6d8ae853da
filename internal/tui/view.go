package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

var logo = strings.Join([]string{
	" ██████  ██     ██ ███████ ██████  ██    ██",
	"██    ██ ██     ██ ██      ██   ██  ██  ██ ",
	"██    ██ ██  █  ██ █████   ██████    ████  ",
	"██ ▄▄ ██ ██ ███ ██ ██      ██   ██    ██   ",
	" ██████   ███ ███  ███████ ██   ██    ██   ",
	"    ▀▀                                     ",
}, "\n")

// View implements tea.Model.
func (m Model) View() string {
	st := m.st
	if st.ActiveDialog != nil {
		return lipgloss.Place(st.Width, st.Height, lipgloss.Center, lipgloss.Center,
			m.dialogView(), lipgloss.WithWhitespaceChars(" "))
	}
	switch st.CurrentScreen {
	case state.ScreenChat:
		return m.chatScreen()
	case state.ScreenNotebook:
		return m.notebookScreen()
	}
	return m.homeScreen()
}

func (m Model) homeScreen() string {
	st, s := m.st, m.styles

	var tabs []string
	for i, item := range st.MenuItems {
		if i == st.SelectedIdx {
			tabs = append(tabs, s.TabSelected.Render(item))
		} else {
			tabs = append(tabs, s.Tab.Render(item))
		}
	}

	width := min(st.Width-4, 80)
	input := InputLine{
		Value:       st.Input,
		Placeholder: placeholder(st),
		Width:       width,
	}.View(s)

	hints := s.Hint.Render("ctrl+p commands  ·  ctrl+l conversations  ·  ctrl+d datasources  ·  ctrl+b notebooks")
	parts := []string{
		s.Logo.Render(logo),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		input,
		hints,
	}
	if ms := st.MeshStatus; ms != nil {
		parts = append(parts, s.Meta.Render(fmt.Sprintf("mesh: %d servers · %d workers · %d jobs", ms.Servers, ms.Workers, ms.Jobs)))
	}

	body := lipgloss.Place(st.Width, max(1, st.Height-1), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.helpBar.View(st, s))
}

func (m Model) chatScreen() string {
	st, s := m.st, m.styles
	input := InputLine{
		Value:       st.ChatInput,
		Placeholder: "Ask a follow-up…",
		Width:       st.Width,
		Busy:        st.AgentBusy,
	}.View(s)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(st, s),
		m.chatView.View(),
		input,
		m.helpBar.View(st, s),
	)
}

func placeholder(st state.AppState) string {
	if st.SelectedIdx >= 0 && st.SelectedIdx < len(st.MenuItems) && st.MenuItems[st.SelectedIdx] == "Ask" {
		return "Ask anything about your data…"
	}
	return "Describe the query you want to run…"
}
