// Package guard enforces identity, ownership and cascade-delete rules around
// client and note mutations.
package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
)

// Grant is the ownership the caller must stamp on a record before persisting it.
type Grant struct {
	OwnerID string
	ACL     domain.ACL
}

// Apply stamps the grant onto the record.
func (g Grant) Apply(rec domain.Record) {
	rec.SetOwnership(g.OwnerID, g.ACL)
}

// Guard checks mutations against the store. It holds no per-request state.
type Guard struct {
	store  Store
	logger *slog.Logger
}

// New creates a Guard backed by the given store.
func New(store Store, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		store:  store,
		logger: logger.With("component", "guard"),
	}
}

// =============================================================================
// Create / Update
// =============================================================================

// AuthorizeCreateOrUpdate checks that actor may persist rec and returns the
// ownership to apply. rec must already carry normalized fields. For updates
// rec carries the previously persisted owner.
//
// The owner in the returned Grant is always the actor; caller-supplied owner
// data is never trusted.
func (g *Guard) AuthorizeCreateOrUpdate(ctx context.Context, actor auth.Context, rec domain.Record, isNew bool) (Grant, error) {
	const op = "authorize_save"

	if !actor.IsPresent() {
		return Grant{}, domain.NewHookError(op, rec.Entity(), "", "authentication required", domain.ErrUnauthenticated)
	}
	if !isNew && rec.Owner() != "" && !auth.CanModifyRecord(actor, rec) {
		return Grant{}, domain.NewHookError(op, rec.Entity(), "", "only the owner can modify this "+rec.Entity().Singular(), domain.ErrForbidden)
	}

	switch r := rec.(type) {
	case *domain.Client:
		if isNew {
			if err := g.checkEmailUnique(ctx, actor, r); err != nil {
				return Grant{}, err
			}
		}
	case *domain.Note:
		client, err := g.fetchClient(ctx, r.ClientID)
		if err != nil {
			return Grant{}, err
		}
		if !auth.CanReferenceClient(actor, client) {
			return Grant{}, domain.NewHookError(op, domain.EntityNote, "", "you do not have permission to add notes to this client", domain.ErrForbidden)
		}
	}

	return Grant{OwnerID: actor.UserID, ACL: domain.OwnerACL(actor.UserID)}, nil
}

// checkEmailUnique rejects a client whose email is already used by another of
// the actor's clients. The lookup is advisory: two concurrent creates can both
// pass it.
func (g *Guard) checkEmailUnique(ctx context.Context, actor auth.Context, c *domain.Client) error {
	existing, err := g.store.First(ctx, domain.EntityClient,
		domain.Eq(domain.FieldEmail, c.Email),
		domain.Eq(domain.FieldOwnerID, actor.UserID),
	)
	if err != nil {
		return fmt.Errorf("check email uniqueness: %w", err)
	}
	if existing != nil {
		return domain.NewHookError("authorize_save", domain.EntityClient, "email", "a client with this email already exists", domain.ErrDuplicateValue)
	}
	return nil
}

// fetchClient resolves a client reference to a typed record.
func (g *Guard) fetchClient(ctx context.Context, id string) (*domain.Client, error) {
	rec, err := g.store.Fetch(ctx, domain.Ref{Entity: domain.EntityClient, ID: id})
	if err != nil {
		g.logger.Debug("client reference fetch failed", "client_id", id, "error", err)
		return nil, domain.NewHookError("authorize_save", domain.EntityNote, "client_id", "referenced client not found", domain.ErrReferenceNotFound)
	}
	client, ok := rec.(*domain.Client)
	if !ok || client == nil {
		return nil, domain.NewHookError("authorize_save", domain.EntityNote, "client_id", "referenced client not found", domain.ErrReferenceNotFound)
	}
	return client, nil
}

// =============================================================================
// Delete
// =============================================================================

// AuthorizeDelete checks that actor may delete the persisted record rec. For a
// client it then removes the actor's notes attached to it. Cascade failures
// are logged and never change the outcome.
func (g *Guard) AuthorizeDelete(ctx context.Context, actor auth.Context, rec domain.Record) error {
	const op = "authorize_delete"

	if !actor.IsPresent() {
		return domain.NewHookError(op, rec.Entity(), "", "authentication required", domain.ErrUnauthenticated)
	}
	if !auth.CanDeleteRecord(actor, rec) {
		return domain.NewHookError(op, rec.Entity(), "", "only the owner can delete this "+rec.Entity().Singular(), domain.ErrForbidden)
	}

	if client, ok := rec.(*domain.Client); ok {
		g.cascadeNotes(ctx, actor, client)
		g.logger.Info("client deleted", "client_id", client.ID, "actor", actor.UserID)
	}
	return nil
}

func (g *Guard) cascadeNotes(ctx context.Context, actor auth.Context, client *domain.Client) {
	notes, err := g.store.Find(ctx, domain.EntityNote,
		domain.Eq(domain.FieldClientID, client.ID),
		domain.Eq(domain.FieldOwnerID, actor.UserID),
	)
	if err != nil {
		g.logger.Error("cascade delete: find notes failed",
			"client_id", client.ID, "actor", actor.UserID, "error", err)
		return
	}
	if len(notes) == 0 {
		return
	}

	g.logger.Info("cascade deleting notes", "client_id", client.ID, "count", len(notes))
	if err := g.store.DestroyAll(ctx, domain.RefsOf(notes)); err != nil {
		g.logger.Error("cascade delete: destroy notes failed",
			"client_id", client.ID, "actor", actor.UserID, "count", len(notes), "error", err)
	}
}
