package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusUpdateMarker is the top-level key of a full status envelope. Its
// presence in a text blob is the cheap signal that raw envelopes were relayed
// instead of extracted text.
const StatusUpdateMarker = "statusUpdate"

// Extract pulls plain text out of one raw event payload.
//
// Envelope shapes are matched in priority order: status envelope
// (statusUpdate.status.message.content), then direct envelope (top-level
// content), then plain text. A payload that fails JSON parsing is returned
// verbatim when it does not look like JSON (no leading '{'); when it does
// look like JSON it is discarded (matched == false), so malformed protocol
// noise never pollutes extracted prose. Valid JSON matching neither shape
// matches with empty text: it contributed nothing, but it is not an error.
//
// Missing intermediate keys are tolerated at every level; different envelope
// producers omit different optional fields.
func Extract(payload string) (text string, matched bool) {
	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		if strings.HasPrefix(strings.TrimSpace(payload), "{") {
			return "", false
		}
		return payload, true
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return "", true
	}

	var parts []any
	if su, found := obj[StatusUpdateMarker]; found {
		parts, _ = dig(su, "status", "message", "content").([]any)
	} else if c, found := obj["content"]; found {
		parts, _ = c.([]any)
	} else {
		return "", true
	}

	var buf strings.Builder
	for _, part := range parts {
		chunk, ok := partText(part)
		if ok && strings.TrimSpace(chunk) != "" {
			buf.WriteString(chunk)
		}
	}
	return buf.String(), true
}

// dig descends nested JSON objects, yielding nil when any level is absent or
// not an object.
func dig(v any, keys ...string) any {
	for _, key := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

// partText renders one content part's text value. Parts that are not objects,
// carry no text key, or carry a null value contribute nothing. Producers are
// expected to send strings; anything else non-null is stringified rather than
// rejected.
func partText(part any) (string, bool) {
	obj, ok := part.(map[string]any)
	if !ok {
		return "", false
	}
	v, found := obj["text"]
	if !found || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
