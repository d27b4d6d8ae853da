package keys

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Input is a translated terminal input. Exactly one of Key or Text is set:
// Key for single keystrokes, Text for pasted or multi-rune input that should
// be inserted verbatim into the focused buffer.
type Input struct {
	Key  string
	Text string
}

// FromTea translates a bubbletea key message. Printable runes pass through
// literally so that case is preserved.
func FromTea(msg tea.KeyMsg) Input {
	switch {
	case msg.Paste:
		return Input{Text: string(msg.Runes)}
	case msg.Type == tea.KeyRunes && !msg.Alt:
		if len(msg.Runes) == 1 {
			return Input{Key: string(msg.Runes)}
		}
		return Input{Text: string(msg.Runes)}
	case msg.Type == tea.KeySpace:
		return Input{Key: KeyString(Event{Name: "space"})}
	}
	return Input{Key: KeyString(parseTeaKey(msg.String()))}
}

// parseTeaKey splits bubbletea's "ctrl+shift+up" style names into an Event.
func parseTeaKey(s string) Event {
	var e Event
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+") && len(s) > len("ctrl+"):
			e.Ctrl = true
			s = s[len("ctrl+"):]
		case strings.HasPrefix(s, "shift+") && len(s) > len("shift+"):
			e.Shift = true
			s = s[len("shift+"):]
		case strings.HasPrefix(s, "alt+") && len(s) > len("alt+"):
			e.Meta = true
			s = s[len("alt+"):]
		default:
			e.Name = s
			return e
		}
	}
}
