package api

import (
	"time"

	"github.com/artpar/notekeeper/internal/core/domain"
)

// =============================================================================
// Request Types
// =============================================================================

// CreateClientRequest is the request body for creating a client.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateClientRequest is the request body for updating a client.
// Omitted fields keep their stored value.
type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ClientID string `json:"client_id"`
}

// UpdateNoteRequest is the request body for updating a note.
// Omitted fields keep their stored value.
type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ClientID *string `json:"client_id,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// ClientResponse is the response for client operations.
type ClientResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	OwnerID   string     `json:"owner_id"`
	ACL       domain.ACL `json:"acl"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NoteResponse is the response for note operations.
type NoteResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ClientID  string     `json:"client_id"`
	OwnerID   string     `json:"owner_id"`
	ACL       domain.ACL `json:"acl"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ListClientsResponse is the response for listing clients.
type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ListNotesResponse is the response for listing notes.
type ListNotesResponse struct {
	Notes  []NoteResponse `json:"notes"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
