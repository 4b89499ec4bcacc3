package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pulsefeed/notifyd/internal/auth"
	"github.com/pulsefeed/notifyd/pkg/models"
)

// handleWS authenticates the handshake, upgrades the transport, and runs
// the per-connection read loop. Verification failures refuse the upgrade
// before any application frame is exchanged.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticateUpgrade(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	c := newConnection(ws, s.config.Gateway.SendBuffer, s.config.Gateway.WriteTimeout, s.logger)
	ws.SetReadLimit(s.config.Gateway.MaxPayloadBytes)
	ws.SetPongHandler(func(string) error {
		c.setAlive(true)
		return nil
	})

	s.registry.Track(c)
	s.metrics.ConnectionOpened()
	go c.writeLoop()

	logger := s.logger
	if logger != nil {
		logger = logger.With(slog.String("conn", c.ID()))
		logger.Info("client connected", "remote", r.RemoteAddr)
	}

	connected := serverFrame{Type: frameConnected}
	if user != nil {
		connected.UserID = user.ID
	}
	if err := c.sendFrame(connected); err != nil && logger != nil {
		logger.Warn("failed to send connected frame", "error", err)
	}

	defer func() {
		s.registry.Remove(c)
		c.Close()
		s.metrics.ConnectionClosed()
		s.metrics.SetRegisteredUsers(s.registry.Users())
		if logger != nil {
			logger.Info("client disconnected", "user", c.UserID())
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		s.dispatchFrame(c, user, data, logger)
	}
}

// authenticateUpgrade verifies the credential presented with the upgrade
// request. Anonymous connections pass only when explicitly allowed, which
// the config loader already refuses in production.
func (s *Server) authenticateUpgrade(r *http.Request) (*models.User, bool) {
	if !s.authService.Enabled() {
		if s.config.Production() {
			return nil, false
		}
		return nil, true
	}

	token := auth.TokenFromRequest(r)
	if token == "" {
		if s.config.Auth.AllowAnonymous && !s.config.Production() {
			return nil, true
		}
		return nil, false
	}

	user, err := s.authService.VerifyToken(token)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("handshake rejected", "error", err, "remote", r.RemoteAddr)
		}
		return nil, false
	}
	return user, true
}

// dispatchFrame runs one step of the per-connection state machine. A bad
// frame is logged and dropped; the connection stays open.
func (s *Server) dispatchFrame(c *Connection, user *models.User, data []byte, logger *slog.Logger) {
	frame, err := parseClientFrame(data)
	if err != nil {
		s.metrics.FrameReceived("malformed")
		if logger != nil {
			logger.Warn("dropping malformed frame", "error", err)
		}
		return
	}

	switch frame.Type {
	case frameRegister:
		s.metrics.FrameReceived(frameRegister)
		s.handleRegister(c, user, frame, logger)
	case framePing:
		// Payload-level ping, distinct from the monitor's transport probe.
		s.metrics.FrameReceived(framePing)
		if err := c.sendFrame(serverFrame{Type: framePong}); err != nil && logger != nil {
			logger.Debug("failed to send pong", "error", err)
		}
	case frameGetUnreadCount:
		s.metrics.FrameReceived(frameGetUnreadCount)
		s.handleUnreadCount(c, logger)
	default:
		s.metrics.FrameReceived("unknown")
		if logger != nil {
			logger.Warn("ignoring unknown frame type", "type", frame.Type)
		}
	}
}

// handleRegister binds the connection to a user and files it in the
// registry. An authenticated connection may only register as itself.
func (s *Server) handleRegister(c *Connection, user *models.User, frame *clientFrame, logger *slog.Logger) {
	if frame.UserID == "" {
		_ = c.sendFrame(errorFrame("register requires userId")) //nolint:errcheck
		return
	}
	if user != nil && user.ID != frame.UserID {
		if logger != nil {
			logger.Warn("register refused for mismatched user", "authed", user.ID, "requested", frame.UserID)
		}
		_ = c.sendFrame(errorFrame("cannot register as another user")) //nolint:errcheck
		return
	}
	if !c.bindUser(frame.UserID) {
		_ = c.sendFrame(errorFrame("connection already registered")) //nolint:errcheck
		return
	}

	s.registry.Add(frame.UserID, c)
	s.metrics.SetRegisteredUsers(s.registry.Users())
	if logger != nil {
		logger.Info("connection registered", "user", frame.UserID)
	}
	if err := c.sendFrame(serverFrame{Type: frameRegistered, UserID: frame.UserID}); err != nil && logger != nil {
		logger.Debug("failed to send registration confirmation", "error", err)
	}
}

// handleUnreadCount relays the current unread count for the bound user.
// Unregistered connections have no user to query against, so the frame is
// dropped. The store call runs under the configured timeout so a hung
// source stalls only this one reply.
func (s *Server) handleUnreadCount(c *Connection, logger *slog.Logger) {
	userID := c.UserID()
	if userID == "" {
		if logger != nil {
			logger.Debug("unread count requested before registration")
		}
		return
	}
	if s.unread == nil {
		_ = c.sendFrame(errorFrame("unread counts unavailable")) //nolint:errcheck
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Store.QueryTimeout)
	defer cancel()

	count, err := s.unread.CountUnread(ctx, userID)
	if err != nil {
		if logger != nil {
			logger.Error("unread count lookup failed", "user", userID, "error", err)
		}
		_ = c.sendFrame(errorFrame("failed to fetch unread count")) //nolint:errcheck
		return
	}
	if err := c.sendFrame(serverFrame{Type: frameUnreadCount, Count: &count}); err != nil && logger != nil {
		logger.Debug("failed to send unread count", "error", err)
	}
}
