package auth

import "github.com/artpar/notekeeper/internal/core/domain"

// =============================================================================
// Record Authorization
// =============================================================================

// IsOwner checks if the actor is the recorded owner of a record.
// A record with no owner is owned by nobody.
func IsOwner(ctx Context, rec domain.Record) bool {
	return ctx.IsPresent() && rec.Owner() != "" && ctx.UserID == rec.Owner()
}

// CanViewRecord checks if the user can view a record.
// Only identities granted read in the record's ACL can view it; records
// without an ACL fall back to the owner.
func CanViewRecord(ctx Context, rec domain.Record) bool {
	if !ctx.IsPresent() {
		return false
	}
	if acl := aclOf(rec); len(acl) > 0 {
		return acl.CanRead(ctx.UserID)
	}
	return IsOwner(ctx, rec)
}

// CanModifyRecord checks if the user can update a persisted record.
// Only the owner can modify it.
func CanModifyRecord(ctx Context, rec domain.Record) bool {
	return IsOwner(ctx, rec)
}

// CanDeleteRecord checks if the user can delete a record.
// Only the owner can delete it.
func CanDeleteRecord(ctx Context, rec domain.Record) bool {
	return IsOwner(ctx, rec)
}

// CanReferenceClient checks if the user can attach a note to a client.
// Only the client's owner can reference it.
func CanReferenceClient(ctx Context, client *domain.Client) bool {
	return client != nil && IsOwner(ctx, client)
}

func aclOf(rec domain.Record) domain.ACL {
	switch r := rec.(type) {
	case *domain.Client:
		return r.ACL
	case *domain.Note:
		return r.ACL
	default:
		return nil
	}
}
