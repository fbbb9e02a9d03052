package host

import (
	"encoding/json"
	"strings"
)

// PartKind discriminates the known inbound message part shapes. The shape is
// resolved once at decode time instead of being probed repeatedly by
// optional-field checks downstream.
type PartKind int

const (
	// PartUnknown is a part matching no known shape; it carries no text.
	PartUnknown PartKind = iota
	// PartText carries text, either as a direct "text" field or nested under
	// a "root" object with kind "text".
	PartText
	// PartContent carries text in a direct "content" field.
	PartContent
)

// Part is one inbound message part, resolved to a tagged value.
type Part struct {
	Kind PartKind
	Text string
}

// UnmarshalJSON resolves the part's shape. Priority follows the producers
// observed on the wire: a nested root object of kind "text", then a direct
// content field, then a bare text field (the client's own outbound format).
func (p *Part) UnmarshalJSON(data []byte) error {
	var aux struct {
		Root *struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"root"`
		Content json.RawMessage `json:"content"`
		Text    *string         `json:"text"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.Root != nil && aux.Root.Kind == "text":
		p.Kind = PartText
		p.Text = aux.Root.Text
	case len(aux.Content) > 0:
		p.Kind = PartContent
		// Content is usually a plain string; anything else is carried as its
		// raw JSON text.
		var s string
		if err := json.Unmarshal(aux.Content, &s); err == nil {
			p.Text = s
		} else {
			p.Text = string(aux.Content)
		}
	case aux.Text != nil:
		p.Kind = PartText
		p.Text = *aux.Text
	default:
		p.Kind = PartUnknown
	}
	return nil
}

// InboundMessage is the structured message received by the streaming
// endpoint. Clients send a content list; platform relays send a parts list.
type InboundMessage struct {
	Content []Part `json:"content"`
	Parts   []Part `json:"parts"`
}

// Text returns the message's effective input text: the concatenation of all
// text-bearing parts in order, trimmed. Concatenation, rather than
// first-match, keeps the inbound policy consistent with stream extraction.
func (m *InboundMessage) Text() string {
	var buf strings.Builder
	for _, p := range m.Content {
		if p.Kind != PartUnknown {
			buf.WriteString(p.Text)
		}
	}
	for _, p := range m.Parts {
		if p.Kind != PartUnknown {
			buf.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(buf.String())
}

// inboundRequest is the body of a streaming invocation request.
type inboundRequest struct {
	Message InboundMessage `json:"message"`
}
