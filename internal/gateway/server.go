// Package gateway implements the real-time notification delivery service:
// it authenticates WebSocket connections, tracks which connections belong
// to which user, fans notifications out to the right live sessions, and
// reaps dead connections.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulsefeed/notifyd/internal/auth"
	"github.com/pulsefeed/notifyd/internal/config"
	"github.com/pulsefeed/notifyd/internal/observability"
	"github.com/pulsefeed/notifyd/internal/store"
)

// Server owns the single listener that serves the broadcast/health HTTP
// endpoints and upgrades /ws requests to the realtime protocol.
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	metrics     *observability.Metrics
	authService *auth.Service
	unread      store.UnreadCounter

	registry    *Registry
	monitor     *Monitor
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader

	httpServer    *http.Server
	cancelMonitor context.CancelFunc
}

// New wires up a gateway server from its collaborators. The unread counter
// and metrics may be nil; the relevant features degrade gracefully.
func New(cfg *config.Config, authService *auth.Service, unread store.UnreadCounter, metrics *observability.Metrics, logger *slog.Logger) *Server {
	registry := NewRegistry()
	return &Server{
		config:      cfg,
		logger:      logger,
		metrics:     metrics,
		authService: authService,
		unread:      unread,
		registry:    registry,
		monitor:     NewMonitor(registry, cfg.Gateway.HeartbeatInterval, metrics, logger),
		broadcaster: NewBroadcaster(registry, metrics, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// Registry exposes the connection registry for the broadcast and health
// handlers and for tests.
func (s *Server) Registry() *Registry { return s.registry }

// Handler builds the HTTP mux serving both the plain endpoints and the
// WebSocket upgrade on the same port.
func (s *Server) Handler() http.Handler {
	return s.buildMux()
}

// Start binds the listener and serves until Shutdown. A bind failure is
// fatal and returned before anything else runs.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.buildMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	s.cancelMonitor = cancel
	go s.monitor.Run(monitorCtx)

	if s.logger != nil {
		s.logger.Info("notification gateway listening", "addr", addr, "env", s.config.Environment)
	}

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the liveness monitor, closes every live connection with a
// close frame, and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelMonitor != nil {
		s.cancelMonitor()
	}
	s.registry.CloseAll()
	s.metrics.SetRegisteredUsers(0)

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("notification gateway stopped")
	}
	return nil
}
