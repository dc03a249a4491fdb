// Package observability holds the Prometheus collectors of the service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	MessagesSent         *prometheus.CounterVec
	ConversationsCreated prometheus.Counter
	NotificationsCreated prometheus.Counter
	BlastFollowers       *prometheus.CounterVec
	EventsPublished      *prometheus.CounterVec
	ConnectedClients     prometheus.Gauge
}

// NewMetrics creates and registers the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		MessagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Messages persisted and appended to a conversation",
			},
			[]string{"kind"},
		),
		ConversationsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversations_created_total",
				Help:      "Conversations created",
			},
		),
		NotificationsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_created_total",
				Help:      "Notifications created by blast messages",
			},
		),
		BlastFollowers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blast_followers_total",
				Help:      "Followers processed by blast messages, by outcome",
			},
			[]string{"outcome"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Real-time events published, by event and transport",
			},
			[]string{"event", "transport"},
		),
		ConnectedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connected_clients",
				Help:      "WebSocket clients currently connected to this instance",
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.MessagesSent,
		m.ConversationsCreated,
		m.NotificationsCreated,
		m.BlastFollowers,
		m.EventsPublished,
		m.ConnectedClients,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) MessageSent(kind string) {
	if m == nil {
		return
	}
	m.MessagesSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) ConversationCreated() {
	if m == nil {
		return
	}
	m.ConversationsCreated.Inc()
}

func (m *Metrics) NotificationCreated() {
	if m == nil {
		return
	}
	m.NotificationsCreated.Inc()
}

func (m *Metrics) BlastFollower(outcome string) {
	if m == nil {
		return
	}
	m.BlastFollowers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EventPublished(event, transport string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(event, transport).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.ConnectedClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.ConnectedClients.Dec()
}
