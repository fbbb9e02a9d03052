package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_StatusEnvelope(t *testing.T) {
	payload := `{"statusUpdate":{"status":{"message":{"content":[{"text":"a"},{"text":"b"}]}}}}`

	text, matched := Extract(payload)

	assert.True(t, matched)
	assert.Equal(t, "ab", text)
}

func TestExtract_DirectEnvelope(t *testing.T) {
	text, matched := Extract(`{"content":[{"text":"hi"}]}`)

	assert.True(t, matched)
	assert.Equal(t, "hi", text)
}

func TestExtract_StatusEnvelopeWins(t *testing.T) {
	payload := `{"statusUpdate":{"status":{"message":{"content":[{"text":"a"}]}}},"content":[{"text":"b"}]}`

	text, matched := Extract(payload)

	assert.True(t, matched)
	assert.Equal(t, "a", text)
}

func TestExtract_PlainText(t *testing.T) {
	text, matched := Extract("just some text")

	assert.True(t, matched)
	assert.Equal(t, "just some text", text)
}

func TestExtract_MalformedJSONDiscarded(t *testing.T) {
	text, matched := Extract(`{"statusUpdate": {"status": truncated`)

	assert.False(t, matched)
	assert.Empty(t, text)
}

func TestExtract_MalformedWithLeadingSpace(t *testing.T) {
	// Still looks like JSON after trimming, so it is discarded.
	_, matched := Extract(`   {"broken": `)

	assert.False(t, matched)
}

func TestExtract_ValidJSONNonObject(t *testing.T) {
	// Valid JSON that is not an object matches as a structured payload that
	// contributed no text; it is not treated as prose.
	for _, payload := range []string{`"hello"`, `[1,2,3]`, `42`, `true`, `null`} {
		text, matched := Extract(payload)
		assert.True(t, matched, "payload %q", payload)
		assert.Empty(t, text, "payload %q", payload)
	}
}

func TestExtract_UnknownObjectShape(t *testing.T) {
	text, matched := Extract(`{"foo": 1, "bar": "baz"}`)

	assert.True(t, matched)
	assert.Empty(t, text)
}

func TestExtract_MissingNestedKeysTolerated(t *testing.T) {
	for _, payload := range []string{
		`{"statusUpdate":{}}`,
		`{"statusUpdate":{"status":{}}}`,
		`{"statusUpdate":{"status":{"message":{}}}}`,
		`{"statusUpdate":{"status":{"message":{"content":[]}}}}`,
		`{"statusUpdate":"not an object"}`,
	} {
		text, matched := Extract(payload)
		assert.True(t, matched, "payload %q", payload)
		assert.Empty(t, text, "payload %q", payload)
	}
}

func TestExtract_WhitespaceOnlyFragmentsDropped(t *testing.T) {
	text, matched := Extract(`{"content":[{"text":"   "},{"text":"x"},{"text":"\n"}]}`)

	assert.True(t, matched)
	assert.Equal(t, "x", text)
}

func TestExtract_PartsWithoutTextSkipped(t *testing.T) {
	text, matched := Extract(`{"content":[{"kind":"file"},"bare string",{"text":"ok"},{"text":null}]}`)

	assert.True(t, matched)
	assert.Equal(t, "ok", text)
}

func TestExtract_NonStringTextStringified(t *testing.T) {
	text, matched := Extract(`{"content":[{"text":42}]}`)

	assert.True(t, matched)
	assert.Equal(t, "42", text)
}
