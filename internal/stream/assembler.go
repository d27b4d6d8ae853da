package stream

import (
	"fmt"
	"time"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

// Model is the model label attached to assembled replies.
const Model = "Qwery"

// NoResponse is the content used when a reply has no text and no completed
// tool calls.
const NoResponse = "No response."

// Partial is the live view of an in-progress reply.
type Partial struct {
	Content   string
	ToolCalls []chat.StreamingToolCall
}

// Assembler keeps the latest snapshot of an in-progress reply. Each observed
// snapshot replaces the previous one; nothing is merged.
type Assembler struct {
	latest Message
}

// NewAssembler returns an Assembler holding an empty assistant message.
func NewAssembler() *Assembler {
	return &Assembler{latest: Message{Role: "assistant"}}
}

// Observe records snapshot as the current state of the reply and returns
// its projection.
func (a *Assembler) Observe(snapshot Message) Partial {
	a.latest = snapshot
	return Project(snapshot)
}

// Latest returns the most recently observed snapshot.
func (a *Assembler) Latest() Message {
	return a.latest
}

// Project maps a snapshot to its live view: concatenated text plus every
// tool call with a coarse status.
func Project(m Message) Partial {
	p := Partial{Content: m.Text(), ToolCalls: []chat.StreamingToolCall{}}
	for _, part := range m.Parts {
		if !part.IsTool() {
			continue
		}
		p.ToolCalls = append(p.ToolCalls, chat.StreamingToolCall{
			Name:   part.Name(),
			Status: toolStatus(part.State),
		})
	}
	return p
}

func toolStatus(state string) chat.ToolCallStatus {
	switch state {
	case StateOutputAvailable:
		return chat.ToolSuccess
	case StateOutputError:
		return chat.ToolError
	default:
		return chat.ToolRunning
	}
}

// Finalize builds the assistant message for m. Only tool calls that
// completed with output are kept; their input and output are stringified.
func Finalize(m Message, elapsed time.Duration, now time.Time) chat.ChatMessage {
	calls := []chat.ToolCall{}
	for _, part := range m.Parts {
		if !part.IsTool() || part.State != StateOutputAvailable || len(part.Output) == 0 {
			continue
		}
		calls = append(calls, chat.ToolCall{
			Name:   part.Name(),
			Args:   Stringify(part.Input),
			Output: Stringify(part.Output),
			Status: chat.ToolSuccess,
		})
	}

	content := m.Text()
	if content == "" && len(calls) == 0 {
		content = NoResponse
	}

	return chat.ChatMessage{
		Role:      chat.RoleAssistant,
		Content:   content,
		ToolCalls: calls,
		Model:     Model,
		Duration:  FormatDuration(elapsed),
		Timestamp: now,
		Reasoning: m.Reasoning(),
	}
}

// ErrorReply is the assistant message recorded when a turn fails.
func ErrorReply(err error, elapsed time.Duration, now time.Time) chat.ChatMessage {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return chat.ChatMessage{
		Role:      chat.RoleAssistant,
		Content:   chat.ErrorContent(msg),
		ToolCalls: []chat.ToolCall{},
		Duration:  FormatDuration(elapsed),
		Timestamp: now,
	}
}

// FormatDuration renders elapsed seconds with one decimal and an "s" suffix.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
