package stream

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

func sse(events ...string) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString("data: ")
		b.WriteString(ev)
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestRead_FullReply(t *testing.T) {
	body := sse(
		`{"type":"start","messageId":"m1"}`,
		`{"type":"start-step"}`,
		`{"type":"text-start","id":"0"}`,
		`{"type":"text-delta","id":"0","delta":"Counting "}`,
		`not json at all`,
		`{"type":"tool-input-start","toolCallId":"c1","toolName":"runQuery"}`,
		`{"type":"tool-input-available","toolCallId":"c1","toolName":"runQuery","input":{"sql":"select count(*) from t"}}`,
		`{"type":"tool-output-available","toolCallId":"c1","output":{"count":3}}`,
		`{"type":"text-delta","id":"0","delta":"done: 3"}`,
		`{"type":"text-end","id":"0"}`,
		`{"type":"finish-step"}`,
		`{"type":"finish"}`,
		`[DONE]`,
	)

	var updates []Partial
	start := time.Now().Add(-2 * time.Second)
	msg, err := Read(context.Background(), strings.NewReader(body), start, func(p Partial) {
		updates = append(updates, p)
	})
	require.NoError(t, err)

	// start, start-step, text-start, delta, tool start, tool input, tool output, delta, text-end
	assert.Len(t, updates, 9)
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, len(updates[i].Content), len(updates[i-1].Content))
	}
	last := updates[len(updates)-1]
	assert.Equal(t, "Counting done: 3", last.Content)
	assert.Equal(t, []chat.StreamingToolCall{{Name: "runQuery", Status: chat.ToolSuccess}}, last.ToolCalls)

	assert.Equal(t, "Counting done: 3", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, `{"sql":"select count(*) from t"}`, msg.ToolCalls[0].Args)
	assert.Equal(t, `{"count":3}`, msg.ToolCalls[0].Output)
	assert.True(t, strings.HasSuffix(msg.Duration, "s"))
	assert.NotEqual(t, "0.0s", msg.Duration)
}

func TestRead_EmptyStream(t *testing.T) {
	msg, err := Read(context.Background(), strings.NewReader(""), time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, NoResponse, msg.Content)
	assert.Equal(t, Model, msg.Model)
}

func TestRead_ErrorChunk(t *testing.T) {
	body := sse(
		`{"type":"text-delta","id":"0","delta":"hi"}`,
		`{"type":"error","errorText":"model overloaded"}`,
	)
	_, err := Read(context.Background(), strings.NewReader(body), time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, "model overloaded", err.Error())
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, strings.NewReader(sse(`{"type":"text-delta","id":"0","delta":"x"}`)), time.Now(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_LargeToolOutput(t *testing.T) {
	rows := strings.Repeat("x", 1100*1024)
	body := sse(
		`{"type":"tool-input-available","toolCallId":"c1","toolName":"runQuery","input":{"sql":"select * from events"}}`,
		`{"type":"tool-output-available","toolCallId":"c1","output":"`+rows+`"}`,
		`[DONE]`,
	)

	msg, err := Read(context.Background(), strings.NewReader(body), time.Now(), nil)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, chat.ToolSuccess, msg.ToolCalls[0].Status)
	assert.Len(t, msg.ToolCalls[0].Output, len(rows))
}
