package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the pipeline's observability counters. All record
// methods are safe to call on a nil receiver, so components can treat metrics
// as optional without guarding every call site.
type Collector struct {
	// Stream consumption
	streamEventsTotal *prometheus.CounterVec
	fragmentsTotal    *prometheus.CounterVec

	// Envelope recovery
	candidatesTotal *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec

	// Invocations
	invokeDuration *prometheus.HistogramVec
	invokesTotal   *prometheus.CounterVec

	// Pipeline
	stageFailuresTotal *prometheus.CounterVec

	// Host HTTP surface
	httpRequestsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered against reg. A nil reg
// uses the default prometheus registerer; tests pass their own registry to
// avoid duplicate registration.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.streamEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Total number of SSE payloads observed",
		},
		[]string{"agent"},
	)

	c.fragmentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_extracted_total",
			Help:      "Total number of non-empty text fragments extracted",
		},
		[]string{"agent"},
	)

	c.candidatesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_candidates_total",
			Help:      "Envelope candidates processed during relayed-blob recovery",
		},
		[]string{"outcome"},
	)

	c.fallbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_fallbacks_total",
			Help:      "Recovery fallback activations by kind",
		},
		[]string{"kind"},
	)

	c.invokeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoke_duration_seconds",
			Help:      "Duration of agent invocations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"agent"},
	)

	c.invokesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invokes_total",
			Help:      "Total number of agent invocations",
		},
		[]string{"agent", "status"},
	)

	c.stageFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_failures_total",
			Help:      "Pipeline stage failures by stage name",
		},
		[]string{"stage"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served by agent hosts",
		},
		[]string{"path", "status"},
	)

	return c
}

// RecordStreamEvent counts one observed SSE payload.
func (c *Collector) RecordStreamEvent(agent string) {
	if c == nil {
		return
	}
	c.streamEventsTotal.WithLabelValues(agent).Inc()
}

// RecordFragment counts one extracted text fragment.
func (c *Collector) RecordFragment(agent string) {
	if c == nil {
		return
	}
	c.fragmentsTotal.WithLabelValues(agent).Inc()
}

// RecordCandidate counts one recovery candidate. Outcome is "parsed" or
// "failed".
func (c *Collector) RecordCandidate(outcome string) {
	if c == nil {
		return
	}
	c.candidatesTotal.WithLabelValues(outcome).Inc()
}

// RecordFallback counts one recovery fallback activation. Kind is "split",
// "regex", or "sentinel".
func (c *Collector) RecordFallback(kind string) {
	if c == nil {
		return
	}
	c.fallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordInvoke records one completed invocation with its outcome and
// duration. Status is "ok" or "error".
func (c *Collector) RecordInvoke(agent, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.invokesTotal.WithLabelValues(agent, status).Inc()
	c.invokeDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// RecordStageFailure counts one failed pipeline stage.
func (c *Collector) RecordStageFailure(stage string) {
	if c == nil {
		return
	}
	c.stageFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest counts one served HTTP request.
func (c *Collector) RecordHTTPRequest(path, status string) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(path, status).Inc()
}
