// Package middleware provides HTTP middleware for the notekeeper API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artpar/notekeeper/internal/core/auth"
)

// =============================================================================
// Auth Configuration
// =============================================================================

// Auth modes.
const (
	// ModeHeader trusts identity headers injected by an upstream gateway.
	ModeHeader = "header"

	// ModeDev acts as DevUserID for every request. Local development only.
	ModeDev = "dev"

	// ModeNone leaves every request unauthenticated.
	ModeNone = "none"
)

// DefaultDevUserID is the identity used in dev mode when none is configured.
const DefaultDevUserID = "dev-user"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Mode selects how identities are resolved. Empty means ModeHeader.
	Mode string

	// SharedSecret is an optional secret to validate the X-Gateway-Secret header.
	// If empty, secret validation is skipped.
	SharedSecret string

	// DevUserID is the acting identity in dev mode.
	DevUserID string

	// Logger for auth middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware resolves the acting identity and stores it in the request context.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates a new auth middleware with the given config.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeHeader
	}
	if cfg.DevUserID == "" {
		cfg.DevUserID = DefaultDevUserID
	}
	return &AuthMiddleware{config: cfg}
}

// Handler returns the middleware handler function.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ctx auth.Context

		switch m.config.Mode {
		case ModeNone:
			ctx = auth.Anonymous()
		case ModeDev:
			ctx = auth.Actor(m.config.DevUserID)
		default:
			if m.config.SharedSecret != "" && r.Header.Get(auth.HeaderSharedSecret) != m.config.SharedSecret {
				m.config.Logger.Warn("invalid gateway secret",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusForbidden, "invalid gateway secret", "forbidden")
				return
			}
			ctx = auth.ExtractFromRequest(r)
		}

		r = r.WithContext(auth.WithContext(r.Context(), ctx))
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth is a middleware that rejects requests without an acting identity.
// Must be used AFTER AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())

			if !ctx.IsPresent() {
				logger.Warn("unauthenticated request to protected endpoint",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeJSONError(w, http.StatusUnauthorized, "authentication required", "unauthenticated")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSONError writes an error in the API's error format.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
