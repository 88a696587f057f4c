package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLookup(OutcomeOK, 300*time.Millisecond)
	m.ObserveLookup(OutcomeOK, time.Second)
	m.ObserveLookup(OutcomeCaseMismatch, time.Millisecond)
	m.ObserveReadme(ReadmeOK)
	m.ObserveReadme(ReadmeMissing)
	m.ObserveReadme(ReadmeMissing)
	m.ObserveCache(true)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues(OutcomeCaseMismatch)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.readmes.WithLabelValues(ReadmeMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLookup(OutcomeOK, time.Second)
		m.ObserveReadme(ReadmeFailed)
		m.ObserveCache(true)
		m.ObserveHTTP("/healthz", http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("/profile/{username}", http.MethodGet, http.StatusNotFound, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `devprofile_http_requests_total{method="GET",route="/profile/{username}",status="404"} 1`)
	assert.Contains(t, body, "devprofile_http_request_duration_seconds_bucket")
}
