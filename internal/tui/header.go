package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// Header displays the qwery brand, the conversation title and session info.
type Header struct {
	width int
}

// NewHeader creates a new header component.
func NewHeader() Header {
	return Header{}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header for st.
func (h Header) View(st state.AppState, s Styles) string {
	brand := s.HeaderBrand.Render("qwery")

	title := "New conversation"
	attached := 0
	if conv, ok := st.CurrentConversation(); ok {
		title = conv.Title
		attached = len(conv.Datasources)
	}
	if st.CurrentScreen == state.ScreenNotebook && st.CurrentNotebook != nil {
		title = st.CurrentNotebook.Title
		attached = len(st.CurrentNotebook.Datasources)
	}

	meta := fmt.Sprintf("%s · %s · %d datasource(s)", st.SelectedAgentID, st.SelectedModelID, attached)
	if st.Workspace != nil && st.Workspace.Username != "" {
		meta = st.Workspace.Username + " · " + meta
	}
	right := s.HeaderMeta.Render(meta)

	avail := h.width - lipgloss.Width(brand) - lipgloss.Width(right) - 2
	if avail < 1 {
		return s.Header.Width(h.width).Render(brand)
	}
	mid := s.HeaderMeta.Render(runewidth.Truncate(title, avail, "…"))
	gap := max(0, h.width-lipgloss.Width(brand)-lipgloss.Width(mid)-lipgloss.Width(right))

	return s.Header.Width(h.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, brand, mid, s.Header.Render(strings.Repeat(" ", gap)), right),
	)
}
