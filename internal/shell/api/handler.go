// Package api provides HTTP handlers for the notekeeper API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/hooks"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API. Every mutation runs the save or
// delete hooks before it reaches the store.
type Handler struct {
	store  store.Store
	hooks  *hooks.Hooks
	logger *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:  s,
		hooks:  hooks.New(s, l),
		logger: l,
	}
}

// mountRecords registers the client and note routes on r.
func (h *Handler) mountRecords(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.handleCreateClient)
		r.Get("/", h.handleListClients)
		r.Get("/{id}", h.handleGetClient)
		r.Patch("/{id}", h.handleUpdateClient)
		r.Delete("/{id}", h.handleDeleteClient)
		r.Get("/{id}/notes", h.handleListClientNotes)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", h.handleCreateNote)
		r.Get("/", h.handleListNotes)
		r.Get("/{id}", h.handleGetNote)
		r.Patch("/{id}", h.handleUpdateNote)
		r.Delete("/{id}", h.handleDeleteNote)
	})
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.store.Ping(r.Context()); err != nil {
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// actor returns the acting identity, writing a 401 when none is present.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (auth.Context, bool) {
	actor := auth.FromContext(r.Context())
	if !actor.IsPresent() {
		h.writeError(w, http.StatusUnauthorized, "authentication required", string(domain.KindUnauthenticated))
		return auth.Context{}, false
	}
	return actor, true
}

func (h *Handler) listOptions(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			opts.Offset = o
		}
	}

	return opts.Normalize()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeHookError maps a rejected mutation or a store failure to a response.
func (h *Handler) writeHookError(w http.ResponseWriter, err error, notFoundMessage, failMessage string) {
	var field string
	var he *domain.HookError
	if errors.As(err, &he) {
		field = he.Field
	}

	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindUnauthenticated:
		status = http.StatusUnauthorized
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindDuplicateValue:
		status = http.StatusConflict
	case domain.KindReferenceNotFound:
		status = http.StatusUnprocessableEntity
	case domain.KindForbidden:
		status = http.StatusForbidden
	default:
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, notFoundMessage, "not_found")
			return
		}
		h.logger.Error(failMessage, "error", err)
		h.writeError(w, http.StatusInternalServerError, failMessage, "internal_error")
		return
	}

	h.writeJSON(w, status, ErrorResponse{
		Error: domain.PublicMessage(err),
		Code:  string(kind),
		Field: field,
	})
}

func clientToResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		OwnerID:   c.OwnerID,
		ACL:       c.ACL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func noteToResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		ClientID:  n.ClientID,
		OwnerID:   n.OwnerID,
		ACL:       n.ACL,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return false
}
