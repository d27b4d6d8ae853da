package tui

import (
	"time"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// tickMsg advances the busy loader.
type tickMsg time.Time

// actionsMsg carries the outcome of a background effect back to the reducer.
type actionsMsg struct {
	Actions []state.Action
	// Done releases the guard held by the effect that produced the message.
	Done effect
}

// streamMsg is one delivery from a prompt turn's channel. Closed is set once
// the turn's goroutine has finished.
type streamMsg struct {
	Turn    int
	Actions []state.Action
	Closed  bool
	ch      <-chan []state.Action
}

// clearNoticeMsg clears the notice it was scheduled for, unless a newer
// notice replaced it.
type clearNoticeMsg struct {
	Seq int
}

// effect names a background operation that must not run twice at once.
type effect int

const (
	effectNone effect = iota
	effectAddDatasource
	effectRunCell
)
