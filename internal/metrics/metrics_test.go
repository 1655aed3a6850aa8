package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncReminder("sent")
		IncResponse("confirm")
		IncJob("reminder_send", "ok")
	})
}

func TestMetricsExposedOverHTTP(t *testing.T) {
	Register()
	IncReminder("sent")
	IncResponse("confirm")
	IncJob("reminder_send", "ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "salonflow_reminders_total")
	assert.Contains(t, body, "salonflow_reminder_responses_total")
	assert.Contains(t, body, "salonflow_queue_jobs_total")
}
