// Package host serves a single agent over the streaming message protocol.
// It exposes the capability card at /.well-known/agent.json and the
// streaming invocation endpoint at /v1/message:stream, framing each chunk the
// registered agent produces as a Server-Sent Event carrying a status
// envelope.
package host
