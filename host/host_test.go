package host

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"a2apipe/relay"
)

// echoAgent streams its input back in fixed-size chunks.
type echoAgent struct {
	chunkSize int
	failWith  error
}

func (a *echoAgent) Name() string        { return "Echo Agent" }
func (a *echoAgent) Description() string { return "Streams its input back" }
func (a *echoAgent) Version() string     { return "1.0.0" }

func (a *echoAgent) Run(ctx context.Context, input string, emit EmitFunc) error {
	if a.failWith != nil {
		return a.failWith
	}
	size := a.chunkSize
	if size <= 0 {
		size = len(input)
	}
	for start := 0; start < len(input); start += size {
		end := start + size
		if end > len(input) {
			end = len(input)
		}
		if err := emit(input[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func newTestHost(t *testing.T, agent Agent) (*Server, *httptest.Server) {
	t.Helper()
	cfg := DefaultServerConfig(":0")
	srv := NewServer(cfg, agent)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	cfg.BaseURL = ts.URL
	return srv, ts
}

func TestHost_RoundTripWithRelayClient(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{chunkSize: 4})

	clientCfg := relay.DefaultClientConfig(ts.URL)
	clientCfg.Name = "echo"
	client := relay.NewClient(clientCfg)

	result, err := client.Invoke(context.Background(), "hello streaming world")

	require.NoError(t, err)
	assert.Equal(t, "hello streaming world", result)
}

func TestHost_CardEndpoint(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	resp, err := http.Get(ts.URL + "/.well-known/agent.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var card relay.AgentCard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, "Echo Agent", card.Name)
	assert.Equal(t, "Streams its input back", card.Description)
	assert.Equal(t, "1.0.0", card.Version)
	assert.Equal(t, ts.URL, card.URL)
}

func TestHost_DiscoverWithRelayClient(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	client := relay.NewClient(relay.DefaultClientConfig(ts.URL))
	card, err := client.Discover(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Echo Agent", card.Name)
}

func TestHost_EmptyMessageRejected(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	resp, err := http.Post(ts.URL+"/v1/message:stream", "application/json",
		strings.NewReader(`{"message":{"content":[]}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHost_InvalidBodyRejected(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	resp, err := http.Post(ts.URL+"/v1/message:stream", "application/json",
		strings.NewReader(`not json`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHost_MethodNotAllowed(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	resp, err := http.Get(ts.URL + "/v1/message:stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp2, err := http.Post(ts.URL+"/.well-known/agent.json", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestHost_AgentFailureAfterHeaders(t *testing.T) {
	boom := errors.New("model backend down")
	_, ts := newTestHost(t, &echoAgent{failWith: boom})

	client := relay.NewClient(relay.DefaultClientConfig(ts.URL))
	_, err := client.Invoke(context.Background(), "anything")

	// The failure happens after the 200 and the stream carried no content,
	// so the client reports an empty result rather than a transport error.
	assert.ErrorIs(t, err, relay.ErrEmptyResult)
}

func TestHost_StreamFraming(t *testing.T) {
	_, ts := newTestHost(t, &echoAgent{})

	resp, err := http.Post(ts.URL+"/v1/message:stream", "application/json",
		strings.NewReader(`{"message":{"content":[{"text":"ping"}]}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := relay.NewEventReader(resp.Body)
	payload, err := reader.Next()
	require.NoError(t, err)

	text, matched := relay.Extract(payload)
	assert.True(t, matched)
	assert.Equal(t, "ping", text)
}
