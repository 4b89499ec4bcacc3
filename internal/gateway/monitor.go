package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsefeed/notifyd/internal/observability"
)

// Monitor detects and reaps half-open connections. Each sweep clears every
// connection's alive flag and sends a transport ping; the pong handler sets
// the flag again. A connection still unflagged at the next sweep failed to
// answer for one full interval and is closed.
//
// This transport-level heartbeat is independent of the payload-level
// "ping" frame clients may send.
type Monitor struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewMonitor builds a liveness monitor over the given registry.
func NewMonitor(registry *Registry, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		registry: registry,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep reaps dead connections and probes the rest. Reaping always removes
// the registry entry, even when the underlying close errors, so stale
// bookkeeping cannot accumulate.
func (m *Monitor) sweep() {
	for _, c := range m.registry.Connections() {
		if !c.Alive() {
			if m.logger != nil {
				m.logger.Info("reaping unresponsive connection", "conn", c.ID(), "user", c.UserID())
			}
			c.Close()
			m.registry.Remove(c)
			m.metrics.ConnectionReaped()
			m.metrics.SetRegisteredUsers(m.registry.Users())
			continue
		}
		c.setAlive(false)
		if err := c.probe(); err != nil {
			if m.logger != nil {
				m.logger.Debug("liveness probe failed", "conn", c.ID(), "error", err)
			}
		}
	}
}
