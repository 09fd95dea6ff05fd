package api

import (
	"log/slog"
	"net/http"

	"github.com/artpar/notekeeper/internal/shell/api/middleware"
	"github.com/artpar/notekeeper/internal/shell/api/openapi"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// =============================================================================
// API Setup
// =============================================================================

// APIConfig holds configuration for the API setup.
type APIConfig struct {
	Store  store.Store
	Logger *slog.Logger

	// Auth configures how the acting identity is resolved.
	Auth middleware.AuthConfig

	// RequireAuth rejects unauthenticated /api requests before they reach a handler.
	// When false, the save and delete hooks still reject them.
	RequireAuth bool

	// CORSOrigins lists the allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string

	// Version is reported in the OpenAPI document.
	Version string
}

// SetupAPI creates the complete API router.
// Returns an http.Handler that can be used as the server's main handler.
func SetupAPI(cfg APIConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = cfg.Logger
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	h := NewHandler(cfg.Store, cfg.Logger)

	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-Key-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.With(h.jsonContentType).Get("/health", h.handleHealth)
	r.With(h.jsonContentType).Get("/ready", h.handleReady)

	// OpenAPI document
	r.Get("/openapi.json", newSpecGenerator(cfg.Version).Handler())

	authMW := middleware.NewAuthMiddleware(cfg.Auth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.jsonContentType)
		r.Use(authMW.Handler)
		if cfg.RequireAuth {
			r.Use(middleware.RequireAuth(cfg.Logger))
		}
		h.mountRecords(r)
	})

	return r
}

// newSpecGenerator registers the record resources with an OpenAPI generator.
func newSpecGenerator(version string) *openapi.Generator {
	g := openapi.NewGenerator(openapi.WithVersion(version))
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "clients",
		Model:          ClientResponse{},
		CreateModel:    CreateClientRequest{},
		UpdateModel:    UpdateClientRequest{},
		SupportsFind:   true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "notes",
		Model:          NoteResponse{},
		CreateModel:    CreateNoteRequest{},
		UpdateModel:    UpdateNoteRequest{},
		ListedUnder:    "clients",
		SupportsFind:   true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
	})
	return g
}
