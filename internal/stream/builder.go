package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrStreamAborted is returned when the server aborts the reply.
var ErrStreamAborted = errors.New("stream aborted")

// StreamError carries an error chunk reported by the server mid-stream.
type StreamError struct {
	Text string
}

func (e *StreamError) Error() string {
	return e.Text
}

// Builder folds chunks into a message. It is not safe for concurrent use.
type Builder struct {
	msg Message

	// indexes into msg.Parts
	texts      map[string]int
	reasonings map[string]int
	tools      map[string]int

	// raw tool input text accumulated from deltas, keyed by tool call id
	inputText map[string]*strings.Builder
}

// NewBuilder returns a Builder for an empty assistant message.
func NewBuilder() *Builder {
	return &Builder{
		msg:        Message{Role: "assistant", Parts: []Part{}},
		texts:      make(map[string]int),
		reasonings: make(map[string]int),
		tools:      make(map[string]int),
		inputText:  make(map[string]*strings.Builder),
	}
}

// Snapshot returns a copy of the message built so far.
func (b *Builder) Snapshot() Message {
	return b.msg.Clone()
}

// Apply folds c into the message. It reports whether the message changed and
// therefore whether a new snapshot should be published. Error and abort
// chunks are returned as errors.
func (b *Builder) Apply(c Chunk) (bool, error) {
	switch c.Type {
	case ChunkStart:
		if c.MessageID == "" {
			return false, nil
		}
		b.msg.ID = c.MessageID
		return true, nil

	case ChunkStartStep:
		b.msg.Parts = append(b.msg.Parts, Part{Type: PartStepStart})
		return true, nil

	case ChunkFinishStep:
		// text and reasoning ids may be reused by the next step
		clear(b.texts)
		clear(b.reasonings)
		return false, nil

	case ChunkTextStart:
		b.texts[c.ID] = b.appendPart(Part{Type: PartText, ID: c.ID, State: StateStreaming})
		return true, nil

	case ChunkTextDelta:
		i := b.partFor(b.texts, c.ID, PartText)
		b.msg.Parts[i].Text += c.Delta
		return true, nil

	case ChunkTextEnd:
		i := b.partFor(b.texts, c.ID, PartText)
		b.msg.Parts[i].State = StateDone
		delete(b.texts, c.ID)
		return true, nil

	case ChunkReasoningStart:
		b.reasonings[c.ID] = b.appendPart(Part{Type: PartReasoning, ID: c.ID, State: StateStreaming})
		return true, nil

	case ChunkReasoningDelta:
		i := b.partFor(b.reasonings, c.ID, PartReasoning)
		b.msg.Parts[i].Text += c.Delta
		return true, nil

	case ChunkReasoningEnd:
		i := b.partFor(b.reasonings, c.ID, PartReasoning)
		b.msg.Parts[i].State = StateDone
		delete(b.reasonings, c.ID)
		return true, nil

	case ChunkToolInputStart:
		b.tools[c.ToolCallID] = b.appendPart(Part{
			Type:       toolPartType(c),
			ToolCallID: c.ToolCallID,
			ToolName:   c.ToolName,
			State:      StateInputStreaming,
		})
		b.inputText[c.ToolCallID] = &strings.Builder{}
		return true, nil

	case ChunkToolInputDelta:
		i, ok := b.tools[c.ToolCallID]
		if !ok {
			return false, nil
		}
		sb := b.inputText[c.ToolCallID]
		if sb == nil {
			sb = &strings.Builder{}
			b.inputText[c.ToolCallID] = sb
		}
		sb.WriteString(c.InputTextDelta)
		if raw := []byte(sb.String()); json.Valid(raw) {
			b.msg.Parts[i].Input = json.RawMessage(raw)
		}
		return true, nil

	case ChunkToolInputAvailable:
		i := b.toolPart(c)
		b.msg.Parts[i].State = StateInputAvailable
		b.msg.Parts[i].Input = c.Input
		delete(b.inputText, c.ToolCallID)
		return true, nil

	case ChunkToolInputError:
		i := b.toolPart(c)
		b.msg.Parts[i].State = StateOutputError
		b.msg.Parts[i].Input = c.Input
		b.msg.Parts[i].ErrorText = c.ErrorText
		delete(b.inputText, c.ToolCallID)
		return true, nil

	case ChunkToolOutputAvail:
		i, ok := b.tools[c.ToolCallID]
		if !ok {
			return false, nil
		}
		b.msg.Parts[i].State = StateOutputAvailable
		b.msg.Parts[i].Output = c.Output
		return true, nil

	case ChunkToolOutputError:
		i, ok := b.tools[c.ToolCallID]
		if !ok {
			return false, nil
		}
		b.msg.Parts[i].State = StateOutputError
		b.msg.Parts[i].ErrorText = c.ErrorText
		return true, nil

	case ChunkError:
		return false, &StreamError{Text: c.ErrorText}

	case ChunkAbort:
		return false, ErrStreamAborted
	}

	if strings.HasPrefix(c.Type, dataPrefix) {
		b.appendPart(Part{Type: c.Type, ID: c.ID, Data: c.Data})
		return true, nil
	}
	// finish, message-metadata and unknown chunk types carry nothing we render
	return false, nil
}

func (b *Builder) appendPart(p Part) int {
	b.msg.Parts = append(b.msg.Parts, p)
	return len(b.msg.Parts) - 1
}

// partFor returns the index of the open part with id, opening one if the
// server skipped the start chunk.
func (b *Builder) partFor(open map[string]int, id, partType string) int {
	if i, ok := open[id]; ok {
		return i
	}
	i := b.appendPart(Part{Type: partType, ID: id, State: StateStreaming})
	open[id] = i
	return i
}

// toolPart returns the index of the tool part for c, creating it when the
// input arrives without a preceding tool-input-start.
func (b *Builder) toolPart(c Chunk) int {
	if i, ok := b.tools[c.ToolCallID]; ok {
		return i
	}
	i := b.appendPart(Part{
		Type:       toolPartType(c),
		ToolCallID: c.ToolCallID,
		ToolName:   c.ToolName,
	})
	b.tools[c.ToolCallID] = i
	return i
}

func toolPartType(c Chunk) string {
	if c.Dynamic {
		return PartDynamicTool
	}
	return toolPrefix + c.ToolName
}
