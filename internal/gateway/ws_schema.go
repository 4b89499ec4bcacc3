package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/pulsefeed/notifyd/pkg/models"
)

// Client-to-server frame types.
const (
	frameRegister       = "register"
	framePing           = "ping"
	frameGetUnreadCount = "get_unread_count"
)

// Server-to-client frame types.
const (
	frameConnected    = "connected"
	frameRegistered   = "registered"
	frameNotification = "notification"
	frameUnreadCount  = "unread_count"
	framePong         = "pong"
	frameError        = "error"
)

// clientFrame is one inbound JSON message. The payload-level ping here is
// independent of the transport-level ping the liveness monitor sends.
type clientFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}

// serverFrame is one outbound JSON message.
type serverFrame struct {
	Type    string              `json:"type"`
	UserID  string              `json:"userId,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Data    models.Notification `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}

// parseClientFrame decodes an inbound frame and rejects frames without a
// type. Unknown types are the caller's concern; dropping them keeps a
// single bad frame from killing the connection.
func parseClientFrame(raw []byte) (*clientFrame, error) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	if frame.Type == "" {
		return nil, fmt.Errorf("frame missing type")
	}
	return &frame, nil
}

func encodeFrame(frame serverFrame) ([]byte, error) {
	return json.Marshal(frame)
}

func errorFrame(message string) serverFrame {
	return serverFrame{Type: frameError, Message: message}
}
