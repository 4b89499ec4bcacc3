// Package models defines the shared types exchanged between the gateway,
// the auth service, and API clients.
package models

import "encoding/json"

// User represents an authenticated identity attached to a connection or an
// API request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Notification is the payload pushed to a user's live connections. The
// gateway never validates or persists it; the durable record was written
// upstream before the payload reaches us, so it is carried verbatim.
type Notification = json.RawMessage

// BroadcastRequest is the body accepted by POST /broadcast.
type BroadcastRequest struct {
	UserID       string       `json:"userId"`
	Notification Notification `json:"notification"`
}

// BroadcastResponse reports whether a real-time delivery was attempted and
// how many connections received the frame. Success is about the request
// being well-formed, not about any connection being live.
type BroadcastResponse struct {
	Success   bool   `json:"success"`
	Delivered int    `json:"delivered"`
	RequestID string `json:"requestId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	ConnectedUsers int    `json:"connectedUsers"`
	Timestamp      string `json:"timestamp"`
}
