package host

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPart_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind PartKind
		wantText string
	}{
		{
			name:     "bare text field",
			raw:      `{"text":"hello"}`,
			wantKind: PartText,
			wantText: "hello",
		},
		{
			name:     "root object of kind text",
			raw:      `{"root":{"kind":"text","text":"nested"}}`,
			wantKind: PartText,
			wantText: "nested",
		},
		{
			name:     "root wins over sibling text",
			raw:      `{"root":{"kind":"text","text":"nested"},"text":"sibling"}`,
			wantKind: PartText,
			wantText: "nested",
		},
		{
			name:     "root of other kind falls through to text",
			raw:      `{"root":{"kind":"file","text":"ignored"},"text":"fallback"}`,
			wantKind: PartText,
			wantText: "fallback",
		},
		{
			name:     "content string",
			raw:      `{"content":"inline"}`,
			wantKind: PartContent,
			wantText: "inline",
		},
		{
			name:     "content non-string carried raw",
			raw:      `{"content":{"k":1}}`,
			wantKind: PartContent,
			wantText: `{"k":1}`,
		},
		{
			name:     "no recognized field",
			raw:      `{"kind":"file","uri":"file:///x"}`,
			wantKind: PartUnknown,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Part
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.wantText, p.Text)
		})
	}
}

func TestInboundMessage_Text(t *testing.T) {
	var req inboundRequest
	raw := `{"message":{"content":[{"text":"Research topic: "},{"text":"solar grids"}]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "Research topic: solar grids", req.Message.Text())
}

func TestInboundMessage_Text_PartsList(t *testing.T) {
	var req inboundRequest
	raw := `{"message":{"parts":[{"root":{"kind":"text","text":"from parts"}}]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "from parts", req.Message.Text())
}

func TestInboundMessage_Text_SkipsUnknownParts(t *testing.T) {
	var msg InboundMessage
	raw := `{"content":[{"kind":"file"},{"text":"useful"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, "useful", msg.Text())
}

func TestInboundMessage_Text_Empty(t *testing.T) {
	var msg InboundMessage
	require.NoError(t, json.Unmarshal([]byte(`{"content":[]}`), &msg))

	assert.Equal(t, "", msg.Text())
}
