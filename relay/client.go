package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"a2apipe/internal/metrics"
)

const (
	// streamPath is the streaming message endpoint every agent exposes.
	streamPath = "/v1/message:stream"
	// cardPath is the discovery endpoint for agent capability documents.
	cardPath = "/.well-known/agent.json"

	// maxErrorBody bounds the response body excerpt carried by ProtocolError.
	maxErrorBody = 500
)

// ClientConfig holds configuration for a relay client.
type ClientConfig struct {
	// BaseURL is the base URL of the agent endpoint, without trailing slash.
	BaseURL string
	// Name identifies the agent in logs and metrics. Defaults to BaseURL.
	Name string
	// Timeout bounds one whole Invoke call, including the streamed read.
	// Underlying text generation is slow and bursty, so the default is
	// generous: 5 minutes.
	Timeout time.Duration
	// DiscoverRetries is the number of retries for card discovery requests.
	DiscoverRetries int
	// DiscoverRetryDelay is the delay between discovery retries.
	DiscoverRetryDelay time.Duration
	// Headers are additional headers to include in requests.
	Headers map[string]string
	// Logger is the logger instance. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector
}

// DefaultClientConfig returns a ClientConfig with sensible defaults for the
// given agent base URL.
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:            strings.TrimRight(baseURL, "/"),
		Timeout:            5 * time.Minute,
		DiscoverRetries:    2,
		DiscoverRetryDelay: time.Second,
		Headers:            make(map[string]string),
	}
}

// Client drives streamed invocations against one agent endpoint. One Invoke
// call owns its accumulator and its network connection exclusively, so
// independent invocations may run concurrently on the same Client.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Collector
	name       string
}

// NewClient creates a Client from cfg. A nil cfg is rejected at the first
// call site by the zero BaseURL, not here; pass DefaultClientConfig output.
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultClientConfig("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = cfg.BaseURL
	}
	return &Client{
		config: cfg,
		// No http.Client.Timeout here: it would also bound the streamed body
		// read. The per-invoke context deadline covers the whole call.
		httpClient: &http.Client{},
		logger:     logger.With(zap.String("agent", name)),
		metrics:    cfg.Metrics,
		name:       name,
	}
}

// Name returns the client's agent name for logs and stage reporting.
func (c *Client) Name() string { return c.name }

// invokeRequest is the outbound message body for the streaming endpoint.
type invokeRequest struct {
	Message outboundMessage `json:"message"`
}

type outboundMessage struct {
	Content []outboundPart `json:"content"`
}

type outboundPart struct {
	Text string `json:"text"`
}

// Discover retrieves the agent's capability card. Callers treat a discovery
// failure as non-fatal; the streaming endpoint does not depend on it.
func (c *Client) Discover(ctx context.Context) (*AgentCard, error) {
	if c.config.BaseURL == "" {
		return nil, &TransportError{URL: c.config.BaseURL, Err: errors.New("empty base url")}
	}
	discoveryURL := c.config.BaseURL + cardPath

	var lastErr error
	for attempt := 0; attempt <= c.config.DiscoverRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.DiscoverRetryDelay):
			}
		}

		card, err := c.fetchCard(ctx, discoveryURL)
		if err == nil {
			return card, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchCard(ctx context.Context, url string) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProtocolError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return &card, nil
}

// Invoke sends text to the agent's streaming endpoint and returns the
// accumulated extracted text. One attempt per call, no retries.
//
// Partial-stream recovery: a read error after at least one fragment was
// accumulated is treated as a soft completion, returning what arrived rather
// than discarding a long stream over a trailing disconnect. A read error with
// zero fragments is a TransportError. Explicit cancellation is different:
// the context error is returned and any accumulated fragments are discarded.
func (c *Client) Invoke(ctx context.Context, text string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := c.invoke(ctx, text)
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordInvoke(c.name, status, time.Since(started))
	return result, err
}

func (c *Client) invoke(ctx context.Context, text string) (string, error) {
	endpoint := c.config.BaseURL + streamPath

	payload, err := json.Marshal(invokeRequest{
		Message: outboundMessage{Content: []outboundPart{{Text: text}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("streaming request", zap.String("endpoint", endpoint), zap.Int("input_chars", len(text)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ProtocolError{URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	reader := NewEventReader(resp.Body)
	var acc Accumulator
	events := 0

	for {
		payload, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			// Cancellation discards partials; a mid-stream disconnect after
			// useful content does not.
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if acc.Len() > 0 {
				c.logger.Warn("stream closed early, finalizing partial result",
					zap.Int("fragments", acc.Len()),
					zap.Error(err),
				)
				break
			}
			return "", &TransportError{URL: endpoint, Err: err}
		}

		events++
		c.metrics.RecordStreamEvent(c.name)

		fragment, matched := Extract(payload)
		if !matched {
			c.logger.Debug("discarded malformed envelope payload", zap.Int("event", events))
			continue
		}
		if fragment != "" {
			acc.Add(fragment)
			c.metrics.RecordFragment(c.name)
		}
	}

	result, err := acc.Finalize()
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", c.name, err)
	}

	c.logger.Debug("stream complete",
		zap.Int("events", events),
		zap.Int("fragments", acc.Len()),
		zap.Int("chars", len(result)),
	)
	return result, nil
}
