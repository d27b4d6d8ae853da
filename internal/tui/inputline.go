package tui

import (
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const cursor = "█"

// InputLine renders a single-line prompt box. The buffer itself lives in the
// application state; the input line only draws it.
type InputLine struct {
	Value       string
	Placeholder string
	Width       int
	Busy        bool
}

// View renders the input box, keeping the tail of long input visible.
func (i InputLine) View(s Styles) string {
	box := s.Input
	if i.Busy {
		box = s.InputBusy
	}
	// Border and padding take four columns.
	inner := max(1, i.Width-4)

	var text string
	switch {
	case i.Busy && i.Value == "":
		text = s.Placeholder.Render(truncate.StringWithTail("Waiting for the agent… (esc to cancel)", uint(inner), "…"))
	case i.Value == "":
		text = cursor + s.Placeholder.Render(truncate.String(i.Placeholder, uint(max(0, inner-1))))
	default:
		text = tail(i.Value, inner-1) + cursor
	}
	return box.Width(inner + 2).Render(text)
}

// tail returns the widest suffix of s that fits in width columns.
func tail(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	w := 0
	i := len(r)
	for i > 0 {
		rw := runewidth.RuneWidth(r[i-1])
		if w+rw > width-1 {
			break
		}
		w += rw
		i--
	}
	return "…" + string(r[i:])
}
