package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfeed/internal/domain"
)

func TestHandlerExposesCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.Candidates.Add(3)
	m.Notifications.WithLabelValues("telegram", OutcomeSent).Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Candidates))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "quizfeed_candidates_total 3")
	assert.Contains(t, string(body), `quizfeed_notifications_total{hook="telegram",outcome="sent"} 1`)
}

func TestObserveReportOverwritesLastRun(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveReport(domain.RunReport{Pending: 4, Persisted: 2, Aborted: 1, MarkFailed: 1})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastRun.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastRun.WithLabelValues("persisted")))

	m.ObserveReport(domain.RunReport{})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRun.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRun.WithLabelValues("pending")))
}
