package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// HelpBar displays context-sensitive keyboard shortcuts at the bottom of the
// screen, or the current notice when one is set.
type HelpBar struct {
	width int
	keys  KeyBindings
}

// NewHelpBar creates a new help bar component.
func NewHelpBar() HelpBar {
	return HelpBar{
		keys: DefaultKeyBindings(),
	}
}

// SetWidth updates the help bar width.
func (h *HelpBar) SetWidth(width int) {
	h.width = width
}

// View renders the help bar for st.
func (h HelpBar) View(st state.AppState, s Styles) string {
	// Notices take priority
	if st.Notice != "" {
		return s.Notice.Width(h.width).Render(st.Notice)
	}

	var bindings []key.Binding
	switch st.CurrentScreen {
	case state.ScreenChat:
		switch {
		case st.AgentBusy:
			bindings = []key.Binding{h.keys.Cancel, h.keys.PageUp, h.keys.PageDown, h.keys.Quit}
		case st.FocusedTool != state.NoFocus:
			bindings = []key.Binding{
				key.NewBinding(key.WithHelp("↑/↓", "select tool")),
				key.NewBinding(key.WithHelp("enter", "expand")),
				key.NewBinding(key.WithHelp("esc", "done")),
			}
		default:
			bindings = []key.Binding{h.keys.Submit, h.keys.Tools, h.keys.Copy, h.keys.Datasources, h.keys.Palette, h.keys.Quit}
		}
	case state.ScreenNotebook:
		bindings = []key.Binding{h.keys.RunCell, h.keys.AddCell, h.keys.Picker, h.keys.CellTitle, h.keys.Cancel}
	default:
		bindings = []key.Binding{h.keys.Submit, h.keys.Tabs, h.keys.History, h.keys.Palette,
			key.NewBinding(key.WithHelp("q", "quit"))}
	}

	return s.Status.Width(h.width).Render(formatHelp(bindings))
}

// formatHelp formats a list of key bindings as help text.
func formatHelp(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
