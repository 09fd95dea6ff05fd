package guard

import (
	"context"

	"github.com/artpar/notekeeper/internal/core/domain"
)

// Store is the generic object store the guard reads related records from.
// The SQL store in internal/shell/store implements it.
type Store interface {
	// First returns the first record of the entity matching every predicate,
	// or (nil, nil) when nothing matches.
	First(ctx context.Context, entity domain.Entity, preds ...domain.Predicate) (domain.Record, error)

	// Fetch returns the referenced record or an error if it cannot be resolved.
	Fetch(ctx context.Context, ref domain.Ref) (domain.Record, error)

	// Find returns every record of the entity matching every predicate.
	Find(ctx context.Context, entity domain.Entity, preds ...domain.Predicate) ([]domain.Record, error)

	// DestroyAll deletes the referenced records as one batch.
	DestroyAll(ctx context.Context, refs []domain.Ref) error
}
