package gateway

import (
	"errors"
	"log/slog"

	"github.com/pulsefeed/notifyd/internal/observability"
	"github.com/pulsefeed/notifyd/pkg/models"
)

// Broadcaster fans one notification out to all live connections of a user.
// Delivery is fire-and-forget: the durable record already exists upstream,
// so a miss here degrades to the client's pull-based refresh.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewBroadcaster builds a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, metrics *observability.Metrics, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger, metrics: metrics}
}

// Broadcast writes a notification frame to every open connection of the
// user and returns how many accepted it. Zero live connections is not an
// error. A connection found closed at write time is skipped; a full send
// buffer drops the frame for that connection only. No retries.
func (b *Broadcaster) Broadcast(userID string, notification models.Notification) int {
	targets := b.registry.Get(userID)
	if len(targets) == 0 {
		return 0
	}

	// Encode once so every connection receives identical frame bytes.
	frame, err := encodeFrame(serverFrame{Type: frameNotification, Data: notification})
	if err != nil {
		if b.logger != nil {
			b.logger.Error("failed to encode notification frame", "user", userID, "error", err)
		}
		return 0
	}

	delivered := 0
	for _, c := range targets {
		switch err := c.enqueue(frame); {
		case err == nil:
			delivered++
			b.metrics.DeliveryAttempted("delivered")
		case errors.Is(err, errConnectionClosed):
			b.metrics.DeliveryAttempted("skipped")
		default:
			if b.logger != nil {
				b.logger.Warn("dropping notification for slow connection", "conn", c.ID(), "user", userID)
			}
			b.metrics.DeliveryAttempted("dropped")
		}
	}
	return delivered
}
