package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"a2apipe/internal/metrics"
	"a2apipe/relay"
)

// EmitFunc delivers one chunk of agent output to the requesting client.
type EmitFunc func(chunk string) error

// Agent is an opaque text producer hosted by a Server. Run receives the
// extracted input text and emits output chunks as they become available;
// returning an error aborts the stream after whatever was already emitted.
type Agent interface {
	Name() string
	Description() string
	Version() string
	Run(ctx context.Context, input string, emit EmitFunc) error
}

// ServerConfig holds configuration for an agent host.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8003".
	Addr string
	// BaseURL is the externally reachable base URL advertised on the card.
	BaseURL string
	// RequestTimeout bounds one streaming invocation. Zero means no bound
	// beyond the client's own deadline.
	RequestTimeout time.Duration
	// Logger is the logger instance. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig(addr string) *ServerConfig {
	return &ServerConfig{
		Addr:    addr,
		BaseURL: "http://localhost" + addr,
	}
}

// Server hosts exactly one agent. The streaming endpoint carries no agent
// selector, so one listener serves one agent; run several Servers for
// several agents.
type Server struct {
	config     *ServerConfig
	agent      Agent
	logger     *zap.Logger
	metrics    *metrics.Collector
	httpServer *http.Server
}

// NewServer creates a Server hosting the given agent.
func NewServer(cfg *ServerConfig, agent Agent) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig(":8080")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		agent:   agent,
		logger:  logger.With(zap.String("host_agent", agent.Name())),
		metrics: cfg.Metrics,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the host's HTTP handler, also usable under httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/agent.json", s.handleCard)
	mux.HandleFunc("/v1/message:stream", s.handleStream)
	return mux
}

// ListenAndServe serves until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("agent host listening",
		zap.String("addr", s.config.Addr),
		zap.String("base_url", s.config.BaseURL),
	)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the host.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Card returns the capability card this host advertises.
func (s *Server) Card() *relay.AgentCard {
	return relay.NewAgentCard(s.agent.Name(), s.agent.Description(), s.config.BaseURL, s.agent.Version())
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Card()); err != nil {
		s.logger.Error("failed to write agent card", zap.Error(err))
	}
	s.metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(http.StatusOK))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req inboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid message body: %v", err))
		return
	}
	input := req.Message.Text()
	if input == "" {
		s.writeError(w, r, http.StatusBadRequest, "message carries no text")
		return
	}

	emitter := newSSEEmitter(w)
	if emitter == nil {
		s.writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	runID := uuid.New().String()
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("invocation started", zap.Int("input_chars", len(input)))

	started := time.Now()
	err := s.agent.Run(ctx, input, emitter.EmitText)
	if err != nil {
		// Headers are long gone; all that is left is to log and close the
		// stream. A client that received nothing reports an empty result.
		logger.Error("agent run failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
	} else {
		logger.Info("invocation complete",
			zap.Duration("elapsed", time.Since(started)),
			zap.Int("chunks", emitter.Chunks()),
		)
	}
	emitter.Done()
	s.metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(http.StatusOK))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	s.metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(status))
}
