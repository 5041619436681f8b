package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkHealth(t *testing.T, h *HealthChecker) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return rec.Code, status
}

func TestHealthChecker_Healthy(t *testing.T) {
	h := NewHealthChecker()
	h.SetConnected(true)
	h.RecordCycle(50000)

	code, status := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 50000.0, status.LastPrice)
}

func TestHealthChecker_DegradedWhenDisconnected(t *testing.T) {
	h := NewHealthChecker()
	h.RecordCycle(50000)

	code, status := checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", status.Status)
}

func TestHealthChecker_UnhealthyOnErrors(t *testing.T) {
	h := NewHealthChecker()
	h.SetConnected(true)
	h.RecordCycle(50000)
	h.RecordError("ticker fetch failed")

	code, status := checkHealth(t, h)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Errors, "ticker fetch failed")
}

// Pending errors outrank a stale or disconnected feed: the handler
// reports the unhealthy code and nothing else.
func TestHealthChecker_DisconnectedWithErrorsReportsUnhealthy(t *testing.T) {
	h := NewHealthChecker()
	h.RecordError("order rejected")

	code, status := checkHealth(t, h)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.False(t, status.IsConnected)
}

func TestHealthChecker_ErrorsClearedByNextCycle(t *testing.T) {
	h := NewHealthChecker()
	h.SetConnected(true)
	h.RecordError("transient")
	h.RecordCycle(51000)

	code, status := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Errors)
}
