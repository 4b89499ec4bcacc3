// Package observability collects Prometheus metrics for the notification
// gateway. Metrics are exposed at /metrics by the HTTP server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for gateway instrumentation.
// A nil *Metrics is valid and records nothing, which keeps instrumentation
// optional in tests.
type Metrics struct {
	// ActiveConnections tracks currently open WebSocket connections.
	ActiveConnections prometheus.Gauge

	// RegisteredUsers tracks distinct users with at least one registered
	// connection.
	RegisteredUsers prometheus.Gauge

	// FramesReceived counts inbound frames by type. Labels: type
	// (register|ping|get_unread_count|malformed|unknown)
	FramesReceived *prometheus.CounterVec

	// Deliveries counts per-connection notification writes.
	// Labels: result (delivered|dropped|skipped)
	Deliveries *prometheus.CounterVec

	// ReapedConnections counts connections closed by the liveness monitor.
	ReapedConnections prometheus.Counter

	// BroadcastRequests counts calls to the broadcast API.
	// Labels: status (ok|bad_request)
	BroadcastRequests *prometheus.CounterVec

	// BroadcastDuration measures broadcast handling latency in seconds.
	BroadcastDuration prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics with the default
// registry. Call once at application startup.
func NewMetrics() *Metrics {
	return &Metrics{
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "notifyd_active_connections",
			Help: "Current number of open WebSocket connections",
		}),

		RegisteredUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "notifyd_registered_users",
			Help: "Current number of distinct users with registered connections",
		}),

		FramesReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifyd_frames_received_total",
				Help: "Total inbound WebSocket frames by type",
			},
			[]string{"type"},
		),

		Deliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifyd_deliveries_total",
				Help: "Total per-connection notification delivery attempts by result",
			},
			[]string{"result"},
		),

		ReapedConnections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifyd_reaped_connections_total",
			Help: "Total connections closed by the liveness monitor",
		}),

		BroadcastRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifyd_broadcast_requests_total",
				Help: "Total broadcast API requests by status",
			},
			[]string{"status"},
		),

		BroadcastDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifyd_broadcast_duration_seconds",
			Help:    "Duration of broadcast request handling in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// ConnectionOpened increments the active connection gauge.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ActiveConnections.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ActiveConnections.Dec()
}

// SetRegisteredUsers records the current distinct-user count.
func (m *Metrics) SetRegisteredUsers(n int) {
	if m == nil {
		return
	}
	m.RegisteredUsers.Set(float64(n))
}

// FrameReceived counts one inbound frame of the given type.
func (m *Metrics) FrameReceived(frameType string) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(frameType).Inc()
}

// DeliveryAttempted counts one per-connection delivery attempt.
func (m *Metrics) DeliveryAttempted(result string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(result).Inc()
}

// ConnectionReaped counts one liveness reap.
func (m *Metrics) ConnectionReaped() {
	if m == nil {
		return
	}
	m.ReapedConnections.Inc()
}

// RecordBroadcast records one broadcast API request.
func (m *Metrics) RecordBroadcast(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.BroadcastRequests.WithLabelValues(status).Inc()
	m.BroadcastDuration.Observe(durationSeconds)
}
