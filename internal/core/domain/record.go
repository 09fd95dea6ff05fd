// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import "fmt"

// =============================================================================
// Entity
// =============================================================================

// Entity identifies one of the closed set of record types the hooks guard.
type Entity string

const (
	EntityClient Entity = "clients"
	EntityNote   Entity = "notes"
)

// IsValid checks if the entity is one of the known record types.
func (e Entity) IsValid() bool {
	switch e {
	case EntityClient, EntityNote:
		return true
	default:
		return false
	}
}

// Singular returns the human-readable singular name used in messages.
func (e Entity) Singular() string {
	switch e {
	case EntityClient:
		return "client"
	case EntityNote:
		return "note"
	default:
		return string(e)
	}
}

// =============================================================================
// Record
// =============================================================================

// Record is implemented by *Client and *Note only.
type Record interface {
	Entity() Entity
	RecordID() string
	Owner() string
	Ref() Ref

	// SetOwnership stamps owner and ACL onto the record before persistence.
	SetOwnership(ownerID string, acl ACL)

	sealed()
}

// Ref is a typed pointer to a stored record.
type Ref struct {
	Entity Entity `json:"entity"`
	ID     string `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Entity, r.ID)
}

// RefsOf collects the references of the given records.
func RefsOf[T Record](records []T) []Ref {
	refs := make([]Ref, 0, len(records))
	for _, r := range records {
		refs = append(refs, r.Ref())
	}
	return refs
}

// =============================================================================
// Predicate
// =============================================================================

// Predicate is an equality condition on a stored field.
type Predicate struct {
	Field string
	Value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// Field names shared by both record types.
const (
	FieldID       = "id"
	FieldOwnerID  = "owner_id"
	FieldEmail    = "email"
	FieldClientID = "client_id"
)
