// Package relay implements the streaming client side of the agent pipeline:
// it consumes Server-Sent Event streams from agent endpoints, extracts plain
// text from the envelope shapes agents emit, and accumulates the fragments
// into one result per invocation.
//
// The wire protocol is intentionally permissive. Agents may emit full status
// envelopes, simplified direct envelopes, or bare text lines, and a relaying
// agent may forward raw envelopes concatenated without separators. The
// extraction and recovery logic in this package handles all of those without
// letting protocol JSON leak into extracted prose.
package relay
