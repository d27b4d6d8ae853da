package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// loaderFrames has one frame per loader phase.
var loaderFrames = [state.LoaderPhases]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴"}

// Limits for expanded tool calls.
const (
	maxToolLines = 12
	maxArgsLen   = 80
)

// ChatView displays the current conversation in a scrollable viewport.
// Assistant replies are rendered as markdown.
type ChatView struct {
	width    int
	height   int
	viewport viewport.Model
	ready    bool

	styles   Styles
	renderer *glamour.TermRenderer
	// rendered caches markdown output by source text for the current
	// renderer.
	rendered map[string]string
	content  string
}

// NewChatView creates a new chat view component.
func NewChatView() ChatView {
	return ChatView{rendered: map[string]string{}}
}

// SetSize updates the component dimensions.
func (v *ChatView) SetSize(width, height int) {
	width, height = max(1, width), max(1, height)
	if !v.ready {
		v.viewport = viewport.New(width, height)
		v.ready = true
	} else {
		v.viewport.Width = width
		v.viewport.Height = height
	}
	if width != v.width {
		v.width = width
		v.newRenderer()
	}
	v.height = height
}

// SetStyles switches the palette and the markdown style that goes with it.
func (v *ChatView) SetStyles(s Styles) {
	v.styles = s
	v.newRenderer()
}

func (v *ChatView) newRenderer() {
	v.rendered = map[string]string{}
	v.renderer = nil
	if v.width <= 0 {
		return
	}
	style := v.styles.Theme.Markdown
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(20, v.width-4)),
	)
	if err != nil {
		slog.Warn("tui.ChatView: markdown renderer unavailable", "style", style, "error", err)
		return
	}
	v.renderer = r
}

// Sync rebuilds the transcript from st, following the bottom when the view
// was already scrolled to it.
func (v *ChatView) Sync(st state.AppState) {
	if !v.ready {
		return
	}
	content := v.transcript(st)
	if content == v.content {
		return
	}
	follow := v.content == "" || v.viewport.AtBottom()
	v.content = content
	v.viewport.SetContent(content)
	if follow {
		v.viewport.GotoBottom()
	}
}

// HandleMouse scrolls with the mouse wheel.
func (v *ChatView) HandleMouse(msg tea.MouseMsg) {
	if !v.ready {
		return
	}
	v.viewport, _ = v.viewport.Update(msg)
}

// PageUp scrolls up by one page.
func (v *ChatView) PageUp() {
	v.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (v *ChatView) PageDown() {
	v.viewport.ViewDown()
}

// View renders the chat view.
func (v ChatView) View() string {
	if !v.ready {
		return ""
	}
	return v.viewport.View()
}

func (v *ChatView) transcript(st state.AppState) string {
	conv, ok := st.CurrentConversation()
	if !ok {
		return v.styles.Hint.Render("Start typing to ask a question.")
	}

	toolKeys := st.ToolKeys()
	focusedKey := ""
	if st.FocusedTool >= 0 && st.FocusedTool < len(toolKeys) {
		focusedKey = toolKeys[st.FocusedTool]
	}

	var blocks []string
	for mi, msg := range conv.Messages {
		if msg.Role == chat.RoleUser {
			blocks = append(blocks, v.styles.UserLabel.Render("You")+"\n"+v.wrap(msg.Content))
			continue
		}
		var b strings.Builder
		b.WriteString(v.styles.AssistantLabel.Render("Qwery"))
		if meta := messageMeta(msg); meta != "" {
			b.WriteString(" " + v.styles.Meta.Render(meta))
		}
		if msg.Content != "" {
			b.WriteString("\n" + v.markdown(msg.Content))
		}
		for ti, tc := range msg.ToolCalls {
			k := state.ToolKey(mi, ti)
			b.WriteString("\n" + v.toolCall(tc, k == focusedKey, st.ExpandedTools[k]))
		}
		blocks = append(blocks, b.String())
	}

	if st.AgentBusy && st.PendingConversationID == st.CurrentConversationID {
		blocks = append(blocks, v.streaming(st))
	}
	return strings.Join(blocks, "\n\n")
}

// streaming renders the in-progress reply with the loader.
func (v *ChatView) streaming(st state.AppState) string {
	var b strings.Builder
	frame := loaderFrames[st.LoaderPhase%state.LoaderPhases]
	b.WriteString(v.styles.AssistantLabel.Render("Qwery") + " " + v.styles.Loader.Render(frame+" thinking"))
	if st.StreamingContent != "" {
		b.WriteString("\n" + v.wrap(st.StreamingContent))
	}
	for _, tc := range st.StreamingToolCalls {
		b.WriteString("\n  " + v.styles.Tool.Render("["+tc.Name+"]") + " " + statusLabel(tc.Status, v.styles))
	}
	return b.String()
}

func (v *ChatView) toolCall(tc chat.ToolCall, focused, expanded bool) string {
	marker := "▸"
	if expanded {
		marker = "▾"
	}
	name := marker + " [" + tc.Name + "]"
	if focused {
		name = v.styles.ToolFocused.Render(name)
	} else {
		name = v.styles.Tool.Render(name)
	}
	line := "  " + name + " " + statusLabel(tc.Status, v.styles)
	if !expanded {
		return line + " " + v.styles.ToolResult.Render(truncate.StringWithTail(oneLine(tc.Args), maxArgsLen, "…"))
	}

	width := uint(max(10, v.width-6))
	var parts []string
	parts = append(parts, line)
	parts = append(parts, "    "+v.styles.Meta.Render("input"))
	for _, l := range clipLines(tc.Args, maxToolLines) {
		parts = append(parts, "    "+truncate.StringWithTail(l, width, "…"))
	}
	if tc.Output != "" {
		parts = append(parts, "    "+v.styles.Meta.Render("output"))
		for _, l := range clipLines(tc.Output, maxToolLines) {
			parts = append(parts, "    "+v.styles.ToolResult.Render(truncate.StringWithTail(l, width, "…")))
		}
	}
	return strings.Join(parts, "\n")
}

func (v *ChatView) markdown(src string) string {
	if v.renderer == nil {
		return v.wrap(src)
	}
	if out, ok := v.rendered[src]; ok {
		return out
	}
	out, err := v.renderer.Render(src)
	if err != nil {
		return v.wrap(src)
	}
	out = strings.TrimRight(out, "\n")
	v.rendered[src] = out
	return out
}

func (v *ChatView) wrap(s string) string {
	if v.width <= 4 {
		return s
	}
	return wordwrap.String(s, v.width-2)
}

func messageMeta(m chat.ChatMessage) string {
	var parts []string
	if m.Model != "" {
		parts = append(parts, m.Model)
	}
	if m.Duration != "" {
		parts = append(parts, m.Duration)
	}
	return strings.Join(parts, " · ")
}

func statusLabel(s chat.ToolCallStatus, st Styles) string {
	switch s {
	case chat.ToolSuccess:
		return st.Ok.Render("✓")
	case chat.ToolError:
		return st.Error.Render("✗")
	case chat.ToolRunning:
		return st.Loader.Render("…")
	}
	return st.Meta.Render("·")
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// clipLines splits s into at most n lines, marking any cut with an ellipsis.
func clipLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = append(lines[:n], "…")
	}
	return lines
}
