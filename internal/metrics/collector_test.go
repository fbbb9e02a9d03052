package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordStreamEvent("a")
		c.RecordFragment("a")
		c.RecordCandidate("parsed")
		c.RecordFallback("regex")
		c.RecordInvoke("a", "ok", time.Second)
		c.RecordStageFailure("research")
		c.RecordHTTPRequest("/v1/message:stream", "200")
	})
}

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg, nil)

	c.RecordStreamEvent("research")
	c.RecordStreamEvent("research")
	c.RecordFragment("research")
	c.RecordCandidate("parsed")
	c.RecordCandidate("failed")
	c.RecordFallback("sentinel")
	c.RecordInvoke("research", "ok", 250*time.Millisecond)
	c.RecordStageFailure("blogpost")
	c.RecordHTTPRequest("/v1/message:stream", "200")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(c.streamEventsTotal.WithLabelValues("research")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.fragmentsTotal.WithLabelValues("research")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.candidatesTotal.WithLabelValues("parsed")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.candidatesTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.fallbacksTotal.WithLabelValues("sentinel")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.invokesTotal.WithLabelValues("research", "ok")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.stageFailuresTotal.WithLabelValues("blogpost")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("/v1/message:stream", "200")))
}

func TestCollectorNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("a2apipe", reg, nil)
	c.RecordStreamEvent("x")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "a2apipe_stream_events_total")
}
