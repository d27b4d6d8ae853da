package state

import "github.com/Guepard-Corp/qwery-core-sub001/internal/keys"

// globalKey handles the dialog shortcuts shared by the home and chat screens.
func globalKey(s AppState, key string) (AppState, bool) {
	switch key {
	case "ctrl+p":
		return openDialog(s, DialogCommand), true
	case "ctrl+l":
		return openDialog(s, DialogConversations), true
	case "ctrl+b":
		return executeCommand(s, CmdShowNotebooks), true
	case "ctrl+d":
		return executeCommand(s, CmdShowDatasources), true
	case "ctrl+shift+a":
		return executeCommand(s, CmdShowAddDatasource), true
	case "ctrl+?":
		return openDialog(s, DialogHelp), true
	case "ctrl+s":
		return executeCommand(s, CmdStashCurrent), true
	}
	return s, false
}

// editKey applies history browsing and text editing to the active buffer.
func editKey(s AppState, key string) AppState {
	buf := s.ActiveInput()
	switch {
	case key == "backspace":
		return s.withActiveInput(trimLast(buf))
	case key == "enter":
		return submit(s)
	case key == "up" && buf == "" && len(s.PromptHistory) > 0:
		return historyBack(s)
	case key == "down" && buf == "" && len(s.PromptHistory) > 0:
		return historyForward(s)
	case keys.IsPrintable(key):
		s.PromptHistoryIndex = -1
		return s.withActiveInput(buf + key)
	}
	return s
}

func homeKey(s AppState, key string) AppState {
	if key == "ctrl+c" {
		return s
	}
	// On an empty prompt q quits, which the shell handles.
	if key == "q" && s.Input == "" {
		return s
	}
	if next, ok := globalKey(s, key); ok {
		return next
	}

	n := len(s.MenuItems)
	switch key {
	case "tab":
		if n > 0 {
			s.SelectedIdx = (s.SelectedIdx + 1) % n
		}
		return s
	case "shift+tab":
		if n > 0 {
			s.SelectedIdx = (s.SelectedIdx - 1 + n) % n
		}
		return s
	case "left":
		s.SelectedIdx = clamp(s.SelectedIdx-1, 0, n-1)
		return s
	case "right":
		s.SelectedIdx = clamp(s.SelectedIdx+1, 0, n-1)
		return s
	}
	return editKey(s, key)
}

func chatKey(s AppState, key string) AppState {
	if key == "ctrl+c" {
		return s
	}

	toolKeys := s.ToolKeys()
	if s.FocusedTool != NoFocus {
		switch key {
		case "escape":
			s.FocusedTool = NoFocus
		case "up", "down":
			s.FocusedTool = moveCursor(s.FocusedTool, key, len(toolKeys)-1)
		case "enter":
			if s.FocusedTool < len(toolKeys) {
				s.ExpandedTools = toggled(s.ExpandedTools, toolKeys[s.FocusedTool])
			}
		}
		return s
	}

	switch {
	case key == "escape":
		if s.AgentBusy {
			return clearTurn(s)
		}
		s.CurrentScreen = ScreenHome
		return s
	case key == "tab" && s.ChatInput == "" && len(toolKeys) > 0,
		key == "ctrl+up" && len(toolKeys) > 0:
		s.FocusedTool = 0
		return s
	case key == "ctrl+down":
		s.FocusedTool = NoFocus
		return s
	case key == "ctrl+n":
		return Reduce(s, RequestNewConversation{})
	}
	if next, ok := globalKey(s, key); ok {
		return next
	}
	return editKey(s, key)
}
