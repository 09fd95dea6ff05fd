package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Access Control
// =============================================================================

// Permission is the read/write grant for one identity.
type Permission struct {
	Read  bool `json:"read,omitempty"`
	Write bool `json:"write,omitempty"`
}

// ACL maps identities to their permissions on a single record.
type ACL map[string]Permission

// OwnerACL returns an ACL granting read and write exclusively to ownerID.
func OwnerACL(ownerID string) ACL {
	return ACL{ownerID: {Read: true, Write: true}}
}

// CanRead reports whether id has read access.
func (a ACL) CanRead(id string) bool {
	return id != "" && a[id].Read
}

// CanWrite reports whether id has write access.
func (a ACL) CanWrite(id string) bool {
	return id != "" && a[id].Write
}

// ExclusiveTo reports whether id is the only identity with any access.
func (a ACL) ExclusiveTo(id string) bool {
	if len(a) != 1 {
		return false
	}
	p, ok := a[id]
	return ok && p.Read && p.Write
}

// Value implements driver.Valuer so the ACL is stored as a JSON text column.
func (a ACL) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]Permission(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON text columns.
func (a *ACL) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = ACL{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("acl: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*a = ACL{}
		return nil
	}
	m := map[string]Permission{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("acl: %w", err)
	}
	*a = m
	return nil
}
