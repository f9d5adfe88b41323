// Package api implements the engine's HTTP command surface: the terrain
// commands (lower, raise, trench, collect, pour, build, harvest), the
// read-only grid summary and message endpoints, and the auth middleware
// that gates the command routes; the read-only routes are served without
// it.
//
// Grounded on the sibling tw-backend game-server's api package -
// specifically its middleware.go's cookie-then-header-then-query token
// lookup - adapted from authenticating a player's character session to
// authenticating a session issued a terrain-command budget.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"terraform-engine/internal/auth"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// AuthMiddleware validates the bearer token carried by a command request,
// trying an HttpOnly cookie, an Authorization header, then a query
// parameter (the last so a WebSocket upgrade, which cannot set headers
// from a browser EventSource, can still authenticate).
func AuthMiddleware(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Logger()

			var token string
			if cookie, err := r.Cookie("auth_token"); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					logger.Warn().Msg("invalid authorization header format")
					respondError(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
				token = parts[1]
			} else {
				token = r.URL.Query().Get("token")
			}

			if token == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionIDFromContext retrieves the authenticated session ID set by
// AuthMiddleware, empty if the request never passed through it (tests,
// or routes deliberately left unauthenticated).
func sessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
