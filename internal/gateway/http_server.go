package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsefeed/notifyd/internal/auth"
)

// buildMux mounts every endpoint on one mux so the realtime upgrade and
// the plain HTTP surface share a single bound port.
func (s *Server) buildMux() *http.ServeMux {
	mux := http.NewServeMux()

	broadcastHandler := http.Handler(http.HandlerFunc(s.handleBroadcast))
	if s.config.Auth.ProtectBroadcast {
		broadcastHandler = auth.Middleware(s.authService, s.logger)(broadcastHandler)
	}

	mux.Handle("POST /broadcast", broadcastHandler)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	return mux
}
