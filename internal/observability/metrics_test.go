package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("runhub_test")

	m.MessageSent("direct")
	m.MessageSent("blast")
	m.MessageSent("blast")
	m.BlastFollower("failed")
	m.EventPublished("conversationUpdate", "local")
	m.ObserveHTTP(http.MethodPost, "/message/sendMessage", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("direct")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("blast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlastFollowers.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/message/sendMessage", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MessageSent("direct")
		m.ConversationCreated()
		m.NotificationCreated()
		m.BlastFollower("succeeded")
		m.EventPublished("notificationsUpdate", "redis")
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		m.ClientConnected()
		m.ClientDisconnected()
	})
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("runhub_test")
	m.ConversationCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "runhub_test_conversations_created_total 1")
}
