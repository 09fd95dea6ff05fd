package store

import (
	"context"

	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/guard"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for clients and notes.
//
// It does not run the save or delete hooks; callers run them before each
// mutation. It also serves the generic lookups the guard needs.
type Store interface {
	guard.Store

	// Client operations
	CreateClient(ctx context.Context, client *domain.Client) error
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, id string) error
	ListClientsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Client, error)
	CountClientsByOwner(ctx context.Context, ownerID string) (int, error)

	// Note operations
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id string) error
	ListNotesByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Note, error)
	ListNotesByClient(ctx context.Context, ownerID, clientID string, opts ListOptions) ([]domain.Note, error)
	CountNotesByOwner(ctx context.Context, ownerID string) (int, error)
	CountNotesByClient(ctx context.Context, ownerID, clientID string) (int, error)

	// ListOrphanNotes returns notes whose client no longer exists, oldest first.
	ListOrphanNotes(ctx context.Context, limit int) ([]domain.Note, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
