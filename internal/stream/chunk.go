package stream

import "encoding/json"

// Chunk types emitted by the server.
const (
	ChunkStart              = "start"
	ChunkFinish             = "finish"
	ChunkAbort              = "abort"
	ChunkError              = "error"
	ChunkStartStep          = "start-step"
	ChunkFinishStep         = "finish-step"
	ChunkTextStart          = "text-start"
	ChunkTextDelta          = "text-delta"
	ChunkTextEnd            = "text-end"
	ChunkReasoningStart     = "reasoning-start"
	ChunkReasoningDelta     = "reasoning-delta"
	ChunkReasoningEnd       = "reasoning-end"
	ChunkToolInputStart     = "tool-input-start"
	ChunkToolInputDelta     = "tool-input-delta"
	ChunkToolInputAvailable = "tool-input-available"
	ChunkToolInputError     = "tool-input-error"
	ChunkToolOutputAvail    = "tool-output-available"
	ChunkToolOutputError    = "tool-output-error"
	ChunkMessageMetadata    = "message-metadata"
)

// Chunk is one event of the UI-message stream. Only the fields relevant to
// Type are populated.
type Chunk struct {
	Type string `json:"type"`

	MessageID string `json:"messageId,omitempty"`
	ID        string `json:"id,omitempty"`
	Delta     string `json:"delta,omitempty"`

	ToolCallID     string          `json:"toolCallId,omitempty"`
	ToolName       string          `json:"toolName,omitempty"`
	Dynamic        bool            `json:"dynamic,omitempty"`
	InputTextDelta string          `json:"inputTextDelta,omitempty"`
	Input          json.RawMessage `json:"input,omitempty"`
	Output         json.RawMessage `json:"output,omitempty"`
	ErrorText      string          `json:"errorText,omitempty"`

	Data   json.RawMessage `json:"data,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// ParseChunk decodes a single JSON chunk payload.
func ParseChunk(data []byte) (Chunk, error) {
	var c Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		return Chunk{}, err
	}
	return c, nil
}
