package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/bookmarks", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/bookmarks", 200, 10*time.Millisecond)
	c.RecordRequest("DELETE", "/bookmarks/{id}", 500, time.Millisecond)
	c.RecordRollback("remove")
	c.RecordEndpointFallback("/article/recommend")
	c.RecordSummaryMiss()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/bookmarks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("DELETE", "/bookmarks/{id}", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rollbacks.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacks.WithLabelValues("/article/recommend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.summaryMiss))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRollback("add")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `veritas_bookmark_rollbacks_total{op="add"} 1`)
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordRequest("GET", "/", 0, 0)
	r.RecordSummaryMiss()
}
