package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordPrediction(false)
	m.RecordPrediction(true)
	m.IncrementCacheHit()
	m.IncrementExternalCall("collector", true)
	m.RecordRequest(http.MethodPost, "/api/v1/predict", http.StatusOK, 12*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "obscura_predictions_total 2")
	assert.Contains(t, body, "obscura_prediction_failures_total 1")
	assert.Contains(t, body, "obscura_cache_hits_total 1")
	assert.Contains(t, body, `obscura_external_call_errors_total{service="collector"} 1`)
	assert.Contains(t, body, `obscura_http_requests_total{method="POST",path="/api/v1/predict",status="2xx"} 1`)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(http.StatusOK))
	assert.Equal(t, "3xx", statusLabel(http.StatusFound))
	assert.Equal(t, "4xx", statusLabel(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusLabel(http.StatusBadGateway))
}
