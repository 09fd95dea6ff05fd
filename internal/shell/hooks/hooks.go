// Package hooks is the invocation point for the before-save and before-delete
// triggers on clients and notes.
//
// Save flow: authentication check, field validation, ownership check, then the
// normalized fields and granted ownership are written back onto the record.
// Delete flow: authentication and ownership check, then the note cascade.
//
// A nil error means the caller may commit the mutation.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/core/validation"
	"github.com/artpar/notekeeper/internal/shell/guard"
)

// Hooks runs the triggers for every record type.
type Hooks struct {
	guard  *guard.Guard
	logger *slog.Logger
}

// New creates the hooks backed by the given store.
func New(store guard.Store, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{
		guard:  guard.New(store, logger),
		logger: logger.With("component", "hooks"),
	}
}

// BeforeSave validates and authorizes rec, then rewrites it in place with its
// normalized fields and the actor's ownership.
func (h *Hooks) BeforeSave(ctx context.Context, actor auth.Context, rec domain.Record, isNew bool) error {
	if isNilRecord(rec) {
		return errors.New("before_save: record is nil")
	}
	if !actor.IsPresent() {
		return domain.NewHookError("before_save", rec.Entity(), "", "authentication required", domain.ErrUnauthenticated)
	}

	switch r := rec.(type) {
	case *domain.Client:
		return h.beforeSaveClient(ctx, actor, r, isNew)
	case *domain.Note:
		return h.beforeSaveNote(ctx, actor, r, isNew)
	default:
		return fmt.Errorf("before_save: unsupported record type %T", rec)
	}
}

func (h *Hooks) beforeSaveClient(ctx context.Context, actor auth.Context, c *domain.Client, isNew bool) error {
	fields, err := validation.ValidateClient(c.Fields())
	if err != nil {
		return err
	}

	// Uniqueness is checked against the normalized email.
	candidate := *c
	candidate.SetFields(fields)

	grant, err := h.guard.AuthorizeCreateOrUpdate(ctx, actor, &candidate, isNew)
	if err != nil {
		return err
	}

	c.SetFields(fields)
	grant.Apply(c)
	return nil
}

func (h *Hooks) beforeSaveNote(ctx context.Context, actor auth.Context, n *domain.Note, isNew bool) error {
	fields, err := validation.ValidateNote(n.Fields())
	if err != nil {
		return err
	}

	candidate := *n
	candidate.SetFields(fields)

	grant, err := h.guard.AuthorizeCreateOrUpdate(ctx, actor, &candidate, isNew)
	if err != nil {
		return err
	}

	n.SetFields(fields)
	grant.Apply(n)
	return nil
}

// BeforeDelete authorizes deletion of the persisted record rec and runs the
// best-effort note cascade for clients.
func (h *Hooks) BeforeDelete(ctx context.Context, actor auth.Context, rec domain.Record) error {
	if isNilRecord(rec) {
		return errors.New("before_delete: record is nil")
	}
	switch rec.(type) {
	case *domain.Client, *domain.Note:
		return h.guard.AuthorizeDelete(ctx, actor, rec)
	default:
		return fmt.Errorf("before_delete: unsupported record type %T", rec)
	}
}

// isNilRecord reports a nil interface or a typed nil pointer.
func isNilRecord(rec domain.Record) bool {
	switch r := rec.(type) {
	case nil:
		return true
	case *domain.Client:
		return r == nil
	case *domain.Note:
		return r == nil
	}
	return false
}
