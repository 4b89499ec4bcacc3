package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefeed/notifyd/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

// handleBroadcast is the internal entry point by which the rest of the
// system delivers a notification to a user's live sessions. It reports
// real-time delivery only; the notification was persisted upstream before
// this call was made.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := s.logger
	if logger != nil {
		logger = logger.With(slog.String("request", requestID))
	}

	var req models.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordBroadcast("bad_request", time.Since(start).Seconds())
		writeJSON(w, http.StatusBadRequest, models.BroadcastResponse{
			Success:   false,
			RequestID: requestID,
			Message:   "invalid JSON body",
		})
		return
	}
	if req.UserID == "" || len(req.Notification) == 0 {
		s.metrics.RecordBroadcast("bad_request", time.Since(start).Seconds())
		writeJSON(w, http.StatusBadRequest, models.BroadcastResponse{
			Success:   false,
			RequestID: requestID,
			Message:   "userId and notification are required",
		})
		return
	}

	delivered := s.broadcaster.Broadcast(req.UserID, req.Notification)
	if logger != nil {
		logger.Info("broadcast handled", "user", req.UserID, "delivered", delivered)
	}
	s.metrics.RecordBroadcast("ok", time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, models.BroadcastResponse{
		Success:   true,
		Delivered: delivered,
		RequestID: requestID,
	})
}

// handleHealth reports process status and the distinct registered user
// count. This checks the service itself, not individual connections; the
// liveness monitor covers those.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:         "ok",
		ConnectedUsers: s.registry.Users(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}
