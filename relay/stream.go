package relay

import (
	"bufio"
	"io"
	"strings"
)

const (
	// dataPrefix frames one SSE event payload per line.
	dataPrefix = "data: "
	// doneSentinel is a keepalive marker, not a stream terminator. Stream end
	// is signaled by connection close.
	doneSentinel = "[DONE]"
)

// EventReader consumes a line-oriented SSE stream and yields raw event
// payloads. Lines without the "data: " prefix are ignored, and "[DONE]" or
// empty payloads are skipped. The sequence is lazy, finite, and
// non-restartable; each logical event is a single line in this protocol.
type EventReader struct {
	r       *bufio.Reader
	pending error
}

// NewEventReader wraps a byte stream, typically a streaming response body.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{r: bufio.NewReader(r)}
}

// Next returns the next raw payload. It returns io.EOF when the stream ends
// cleanly, or the underlying read error when the connection breaks. Once an
// error is returned the reader is exhausted.
func (er *EventReader) Next() (string, error) {
	if er.pending != nil {
		err := er.pending
		er.pending = nil
		return "", err
	}

	for {
		line, err := er.r.ReadString('\n')
		payload, ok := decodeLine(line)
		if err != nil {
			if ok {
				// A payload arrived on the final, unterminated line. Deliver
				// it now and surface the error on the next call.
				er.pending = err
				return payload, nil
			}
			return "", err
		}
		if ok {
			return payload, nil
		}
	}
}

// decodeLine strips SSE framing from one line. The second return is false for
// lines that carry no event: missing prefix, keepalives, and blank payloads.
func decodeLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	payload := line[len(dataPrefix):]
	if trimmed := strings.TrimSpace(payload); trimmed == "" || trimmed == doneSentinel {
		return "", false
	}
	return payload, true
}
