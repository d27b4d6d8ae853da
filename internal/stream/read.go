package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

// UpdateFunc receives the live view after every snapshot, in stream order.
type UpdateFunc func(Partial)

// Read consumes a UI-message event stream from r, calling onUpdate after each
// snapshot, and returns the final assistant message once the stream ends.
// Chunks that fail to decode are skipped. An error chunk, an abort, a read
// failure or ctx cancellation ends the read with an error.
func Read(ctx context.Context, r io.Reader, start time.Time, onUpdate UpdateFunc) (chat.ChatMessage, error) {
	dec := NewDecoder(r)
	builder := NewBuilder()
	asm := NewAssembler()

	for {
		if err := ctx.Err(); err != nil {
			return chat.ChatMessage{}, err
		}

		data, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return chat.ChatMessage{}, ctxErr
			}
			return chat.ChatMessage{}, err
		}

		c, err := ParseChunk(data)
		if err != nil {
			slog.Debug("stream.Read: dropping undecodable chunk", "error", err, "bytes", len(data))
			continue
		}

		changed, err := builder.Apply(c)
		if err != nil {
			return chat.ChatMessage{}, err
		}
		if !changed {
			continue
		}

		partial := asm.Observe(builder.Snapshot())
		if onUpdate != nil {
			onUpdate(partial)
		}
	}

	now := time.Now()
	return Finalize(asm.Latest(), now.Sub(start), now), nil
}
