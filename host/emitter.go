package host

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// statusEnvelope is the wire shape each emitted chunk is wrapped in:
// statusUpdate.status.message.content[].text.
type statusEnvelope struct {
	StatusUpdate struct {
		Status struct {
			Message struct {
				Content []chunkPart `json:"content"`
			} `json:"message"`
		} `json:"status"`
	} `json:"statusUpdate"`
}

type chunkPart struct {
	Text string `json:"text"`
}

// sseEmitter writes Server-Sent Events framed as "data: <payload>" lines.
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	chunks  int
}

// newSSEEmitter prepares w for event streaming. Returns nil if w does not
// support flushing.
func newSSEEmitter(w http.ResponseWriter) *sseEmitter {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &sseEmitter{w: w, flusher: flusher}
}

// EmitText sends one chunk of agent output wrapped in a status envelope.
func (e *sseEmitter) EmitText(chunk string) error {
	var env statusEnvelope
	env.StatusUpdate.Status.Message.Content = []chunkPart{{Text: chunk}}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("host: failed to marshal envelope: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	e.flusher.Flush()
	e.chunks++
	return nil
}

// Done signals end of useful events. The stream itself ends when the
// connection closes; [DONE] is a keepalive-style marker consumers skip.
func (e *sseEmitter) Done() {
	fmt.Fprint(e.w, "data: [DONE]\n\n")
	e.flusher.Flush()
}

// Chunks reports how many chunks were emitted.
func (e *sseEmitter) Chunks() int { return e.chunks }
