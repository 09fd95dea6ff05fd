// Package auth provides authentication context and authorization functions.
// The acting identity is always passed explicitly; request context is only a
// carrier between the HTTP middleware and the handler.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context represents the acting identity of a request.
type Context struct {
	// UserID is the identity string (from X-User-ID header or the JWT sub claim).
	UserID string

	// KeyID is the API key ID if API key authentication was used (from X-Key-ID header)
	KeyID string

	// Authenticated indicates whether the request is authenticated
	Authenticated bool
}

// Actor returns an authenticated context for the given identity.
// An empty id yields an unauthenticated context.
func Actor(id string) Context {
	if id == "" {
		return Anonymous()
	}
	return Context{UserID: id, Authenticated: true}
}

// Anonymous returns an unauthenticated context.
func Anonymous() Context {
	return Context{Authenticated: false}
}

// IsPresent reports whether an acting identity is present.
func (c Context) IsPresent() bool {
	return c.Authenticated && c.UserID != ""
}

// =============================================================================
// Header Constants
// =============================================================================

const (
	// HeaderUserID is the header containing the authenticated user's ID
	HeaderUserID = "X-User-ID"

	// HeaderKeyID is the header containing the API key ID
	HeaderKeyID = "X-Key-ID"

	// HeaderSharedSecret is the header containing the gateway shared secret
	HeaderSharedSecret = "X-Gateway-Secret"
)

// =============================================================================
// Context Extraction
// =============================================================================

// ExtractFromRequest extracts auth context from HTTP request headers.
// If no identity is present, returns an unauthenticated context.
func ExtractFromRequest(r *http.Request) Context {
	return ExtractFromHeaders(r.Header)
}

// HeaderGetter is an interface for getting header values.
// This allows testing without requiring an http.Request.
type HeaderGetter interface {
	Get(key string) string
}

// ExtractFromHeaders extracts auth context from headers.
//
// Auth sources (checked in order):
//  1. X-User-ID header (injected by the gateway)
//  2. Authorization: Bearer {jwt} - decode payload, extract sub claim
//
// No signature verification - the gateway has already validated the token.
func ExtractFromHeaders(headers HeaderGetter) Context {
	userID := strings.TrimSpace(headers.Get(HeaderUserID))
	if userID != "" {
		return Context{
			UserID:        userID,
			KeyID:         headers.Get(HeaderKeyID),
			Authenticated: true,
		}
	}

	claims := parseBearer(headers.Get("Authorization"))
	if claims == nil || claims.Sub == "" {
		return Anonymous()
	}
	return Actor(claims.Sub)
}

// jwtClaims holds the fields extracted from a JWT payload.
type jwtClaims struct {
	Sub string `json:"sub"`
}

// parseBearer extracts claims from a Bearer token by base64-decoding the payload.
func parseBearer(authHeader string) *jwtClaims {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil
	}
	parts := strings.Split(authHeader[7:], ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return &claims
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Context{Authenticated: false}
}

// =============================================================================
// Helper Types for Testing
// =============================================================================

// MapHeaderGetter wraps a map to implement HeaderGetter interface.
// This is useful for testing without creating http.Request objects.
type MapHeaderGetter map[string]string

func (m MapHeaderGetter) Get(key string) string {
	return m[key]
}
