package stream

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, b *Builder, chunks ...Chunk) {
	t.Helper()
	for _, c := range chunks {
		_, err := b.Apply(c)
		require.NoError(t, err)
	}
}

func TestBuilder_TextDeltas(t *testing.T) {
	b := NewBuilder()
	apply(t, b,
		Chunk{Type: ChunkStart, MessageID: "m1"},
		Chunk{Type: ChunkTextStart, ID: "t1"},
		Chunk{Type: ChunkTextDelta, ID: "t1", Delta: "Hel"},
		Chunk{Type: ChunkTextDelta, ID: "t1", Delta: "lo"},
		Chunk{Type: ChunkTextEnd, ID: "t1"},
	)

	snap := b.Snapshot()
	assert.Equal(t, "m1", snap.ID)
	assert.Equal(t, "Hello", snap.Text())
	require.Len(t, snap.Parts, 1)
	assert.Equal(t, StateDone, snap.Parts[0].State)
}

func TestBuilder_ToolLifecycle(t *testing.T) {
	b := NewBuilder()
	apply(t, b,
		Chunk{Type: ChunkToolInputStart, ToolCallID: "c1", ToolName: "runQuery"},
		Chunk{Type: ChunkToolInputDelta, ToolCallID: "c1", InputTextDelta: `{"sql":`},
	)
	snap := b.Snapshot()
	require.Len(t, snap.Parts, 1)
	assert.Equal(t, "tool-runQuery", snap.Parts[0].Type)
	assert.Equal(t, StateInputStreaming, snap.Parts[0].State)
	assert.Nil(t, snap.Parts[0].Input, "partial JSON must not be exposed")

	apply(t, b,
		Chunk{Type: ChunkToolInputDelta, ToolCallID: "c1", InputTextDelta: `"select 1"}`},
	)
	assert.JSONEq(t, `{"sql":"select 1"}`, string(b.Snapshot().Parts[0].Input))

	apply(t, b,
		Chunk{Type: ChunkToolInputAvailable, ToolCallID: "c1", ToolName: "runQuery", Input: json.RawMessage(`{"sql":"select 1"}`)},
		Chunk{Type: ChunkToolOutputAvail, ToolCallID: "c1", Output: json.RawMessage(`[{"n":1}]`)},
	)
	part := b.Snapshot().Parts[0]
	assert.Equal(t, StateOutputAvailable, part.State)
	assert.Equal(t, "runQuery", part.Name())
	assert.JSONEq(t, `[{"n":1}]`, string(part.Output))
}

func TestBuilder_DynamicTool(t *testing.T) {
	b := NewBuilder()
	apply(t, b,
		Chunk{Type: ChunkToolInputAvailable, ToolCallID: "c9", ToolName: "mcp_fetch", Dynamic: true, Input: json.RawMessage(`{}`)},
		Chunk{Type: ChunkToolOutputError, ToolCallID: "c9", ErrorText: "denied"},
	)
	part := b.Snapshot().Parts[0]
	assert.Equal(t, PartDynamicTool, part.Type)
	assert.Equal(t, "mcp_fetch", part.Name())
	assert.Equal(t, StateOutputError, part.State)
	assert.Equal(t, "denied", part.ErrorText)
}

func TestBuilder_OutputForUnknownCallIsIgnored(t *testing.T) {
	b := NewBuilder()
	changed, err := b.Apply(Chunk{Type: ChunkToolOutputAvail, ToolCallID: "nope", Output: json.RawMessage(`1`)})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, b.Snapshot().Parts)
}

func TestBuilder_ErrorAndAbort(t *testing.T) {
	b := NewBuilder()

	_, err := b.Apply(Chunk{Type: ChunkError, ErrorText: "rate limited"})
	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, "rate limited", streamErr.Error())

	_, err = b.Apply(Chunk{Type: ChunkAbort})
	assert.ErrorIs(t, err, ErrStreamAborted)
}

func TestBuilder_SnapshotIsIndependent(t *testing.T) {
	b := NewBuilder()
	apply(t, b, Chunk{Type: ChunkTextDelta, ID: "t", Delta: "a"})
	first := b.Snapshot()
	apply(t, b, Chunk{Type: ChunkTextDelta, ID: "t", Delta: "b"})

	assert.Equal(t, "a", first.Text())
	assert.Equal(t, "ab", b.Snapshot().Text())
}

func TestBuilder_FinishStepReleasesTextIDs(t *testing.T) {
	b := NewBuilder()
	apply(t, b,
		Chunk{Type: ChunkStartStep},
		Chunk{Type: ChunkTextDelta, ID: "0", Delta: "first "},
		Chunk{Type: ChunkFinishStep},
		Chunk{Type: ChunkStartStep},
		Chunk{Type: ChunkTextDelta, ID: "0", Delta: "second"},
	)

	snap := b.Snapshot()
	assert.Equal(t, "first second", snap.Text())
	assert.Len(t, snap.Parts, 4)
}

func TestBuilder_NonMutatingChunks(t *testing.T) {
	for _, typ := range []string{ChunkFinish, ChunkMessageMetadata, ChunkFinishStep, "something-new"} {
		t.Run(typ, func(t *testing.T) {
			changed, err := NewBuilder().Apply(Chunk{Type: typ})
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}
