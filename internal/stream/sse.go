package stream

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// doneSentinel terminates a UI-message stream.
const doneSentinel = "[DONE]"

// Decoder reads server-sent events and yields their data payloads. Lines
// have no length limit.
type Decoder struct {
	r    *bufio.Reader
	data bytes.Buffer
	done bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the data of the next event. Multi-line data fields are joined
// with newlines. It returns io.EOF at end of input or after the [DONE]
// sentinel.
func (d *Decoder) Next() ([]byte, error) {
	if d.done {
		return nil, io.EOF
	}
	for {
		raw, err := d.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if raw == "" && err == io.EOF {
			break
		}
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")

		switch {
		case line == "":
			if d.data.Len() == 0 {
				continue
			}
			if ev, ok := d.flush(); ok {
				return ev, nil
			}
			return nil, io.EOF

		case strings.HasPrefix(line, ":"):
			// comment / keepalive

		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			value = strings.TrimPrefix(value, " ")
			if d.data.Len() > 0 {
				d.data.WriteByte('\n')
			}
			d.data.WriteString(value)

		default:
			// event:, id:, retry: carry nothing for this protocol
		}
		if err == io.EOF {
			break
		}
	}
	if d.data.Len() > 0 {
		if ev, ok := d.flush(); ok {
			return ev, nil
		}
	}
	d.done = true
	return nil, io.EOF
}

// flush returns the buffered event. ok is false for the [DONE] sentinel.
func (d *Decoder) flush() ([]byte, bool) {
	ev := bytes.Clone(d.data.Bytes())
	d.data.Reset()
	if string(bytes.TrimSpace(ev)) == doneSentinel {
		d.done = true
		return nil, false
	}
	return ev, true
}
