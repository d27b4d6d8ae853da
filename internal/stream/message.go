// Package stream assembles assistant replies from the server's UI-message
// event stream. The server emits typed chunks; a Builder folds them into
// full message snapshots and an Assembler keeps the latest snapshot,
// projecting it into live partials and a final chat.ChatMessage.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Part types.
const (
	PartText        = "text"
	PartReasoning   = "reasoning"
	PartStepStart   = "step-start"
	PartDynamicTool = "dynamic-tool"

	toolPrefix = "tool-"
	dataPrefix = "data-"
)

// Tool part states.
const (
	StateInputStreaming  = "input-streaming"
	StateInputAvailable  = "input-available"
	StateOutputAvailable = "output-available"
	StateOutputError     = "output-error"
)

// Text and reasoning part states.
const (
	StateStreaming = "streaming"
	StateDone      = "done"
)

// Part is one ordered element of a message: a text run, a reasoning run or a
// tool invocation.
type Part struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text,omitempty"`
	State string `json:"state,omitempty"`

	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`

	Data json.RawMessage `json:"data,omitempty"`
}

// IsText reports whether p is a text part.
func (p Part) IsText() bool { return p.Type == PartText }

// IsTool reports whether p is a static or dynamic tool invocation.
func (p Part) IsTool() bool {
	return p.Type == PartDynamicTool || strings.HasPrefix(p.Type, toolPrefix)
}

// Name returns the tool name: the explicit name for dynamic tools, otherwise
// the part type without its "tool-" prefix.
func (p Part) Name() string {
	if p.Type == PartDynamicTool {
		return p.ToolName
	}
	return strings.TrimPrefix(p.Type, toolPrefix)
}

// Message is a full snapshot of the assistant message built so far.
type Message struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Clone returns a copy that shares no part slice with m.
func (m Message) Clone() Message {
	out := m
	out.Parts = append([]Part(nil), m.Parts...)
	return out
}

// Text concatenates every text part in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.IsText() {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Reasoning concatenates every reasoning part in order.
func (m Message) Reasoning() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartReasoning {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Stringify renders a JSON value the way it is shown to users: strings are
// unquoted, structured values are compacted JSON, and a missing or null value
// is the empty JSON string.
func Stringify(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return `""`
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
