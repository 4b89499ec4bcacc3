// Package store provides the unread-count source consulted by the gateway
// on behalf of connected clients. The notification records themselves are
// owned by the application database; this package only counts them.
package store

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the underlying source could not be reached.
var ErrUnavailable = errors.New("unread store unavailable")

// UnreadCounter reports the number of unread notifications for a user.
// Counts are fetched on demand and never cached across requests.
type UnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}
