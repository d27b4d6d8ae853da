// Package keys normalizes terminal key events into the canonical key-strings
// consumed by the state machine ("ctrl+enter", "escape", " ", "shift+tab").
package keys

import "strings"

// Event is a raw key event: a key name plus modifier flags.
type Event struct {
	Name  string
	Ctrl  bool
	Shift bool
	Meta  bool
}

var arrowAliases = map[string]string{
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// KeyString returns the canonical key-string for e. Modifiers are emitted in
// the fixed order ctrl, shift, meta. Escape ignores modifiers and space is
// always the literal " ".
func KeyString(e Event) string {
	name := strings.ToLower(e.Name)
	if mapped, ok := arrowAliases[name]; ok {
		name = mapped
	}

	switch name {
	case "escape", "esc":
		return "escape"
	case "space":
		return " "
	case "return", "enter":
		name = "enter"
	}

	var b strings.Builder
	if e.Ctrl {
		b.WriteString("ctrl+")
	}
	if e.Shift {
		b.WriteString("shift+")
	}
	if e.Meta {
		b.WriteString("meta+")
	}
	b.WriteString(name)
	return b.String()
}

// IsPrintable reports whether key is a single character that editing
// handlers append to a buffer.
func IsPrintable(key string) bool {
	n := 0
	for range key {
		n++
		if n > 1 {
			return false
		}
	}
	return n == 1
}
