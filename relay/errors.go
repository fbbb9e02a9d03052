package relay

import (
	"errors"
	"fmt"
)

// Agent card validation errors.
var (
	// ErrMissingName indicates the agent card is missing a name.
	ErrMissingName = errors.New("agent card: missing name")
	// ErrMissingDescription indicates the agent card is missing a description.
	ErrMissingDescription = errors.New("agent card: missing description")
)

// Stream result errors.
var (
	// ErrEmptyResult indicates a stream completed without yielding any
	// extractable text. An apparently successful stream with no content is a
	// pipeline error: forwarding an empty string downstream would silently
	// produce meaningless output.
	ErrEmptyResult = errors.New("relay: stream produced no extractable text")
)

// TransportError is a connection-level failure with zero usable partial
// content. A read error after at least one fragment was accumulated is not a
// TransportError; the client finalizes with what it has.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("relay: transport failure for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a non-2xx HTTP response from an agent endpoint. Body holds
// at most the first 500 characters of the response body for diagnostics.
type ProtocolError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("relay: agent error from %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}
