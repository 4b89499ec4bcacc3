package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// TokenFromRequest extracts a bearer credential from an HTTP request.
// Checked in order: Authorization header, X-API-Key header, "token" query
// parameter, auth cookie. WebSocket clients typically use the query
// parameter or cookie since browsers cannot set headers on upgrades.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("bearer "):]); token != "" {
			return token
		}
	}
	if apiKey := strings.TrimSpace(r.Header.Get("X-API-Key")); apiKey != "" {
		return apiKey
	}
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// Middleware enforces credential checks on plain HTTP handlers. When the
// service is disabled the handler runs unauthenticated.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !service.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}
			user, err := service.VerifyToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("credential validation failed", "error", err)
				}
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
