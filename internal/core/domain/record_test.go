package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Entity Tests
// =============================================================================

func TestEntity_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   bool
	}{
		{"clients is valid", EntityClient, true},
		{"notes is valid", EntityNote, true},
		{"empty is invalid", Entity(""), false},
		{"Cliente is invalid", Entity("Cliente"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.IsValid())
		})
	}
}

// =============================================================================
// Record Tests
// =============================================================================

func TestNewClient(t *testing.T) {
	c := NewClient(ClientFields{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"})

	assert.True(t, strings.HasPrefix(c.ID, "cli_"))
	assert.Len(t, c.ID, len("cli_")+8)
	assert.Equal(t, "Ada", c.Name)
	assert.Empty(t, c.OwnerID)
	assert.Nil(t, c.ACL)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, Ref{Entity: EntityClient, ID: c.ID}, c.Ref())
}

func TestNewNote(t *testing.T) {
	n := NewNote(NoteFields{Title: "Call", Content: "Call back", ClientID: "cli_12345678"})

	assert.True(t, strings.HasPrefix(n.ID, "note_"))
	assert.Equal(t, Ref{Entity: EntityClient, ID: "cli_12345678"}, n.ClientRef())
	assert.Equal(t, EntityNote, n.Entity())
}

func TestRecord_SetOwnership(t *testing.T) {
	var rec Record = NewClient(ClientFields{})
	rec.SetOwnership("user_a", OwnerACL("user_a"))

	c := rec.(*Client)
	assert.Equal(t, "user_a", c.Owner())
	assert.True(t, c.ACL.ExclusiveTo("user_a"))
}

func TestRefsOf(t *testing.T) {
	notes := []*Note{{ID: "note_1"}, {ID: "note_2"}}

	refs := RefsOf(notes)

	assert.Equal(t, []Ref{
		{Entity: EntityNote, ID: "note_1"},
		{Entity: EntityNote, ID: "note_2"},
	}, refs)
	assert.Equal(t, "notes/note_1", refs[0].String())
}

// =============================================================================
// ACL Tests
// =============================================================================

func TestOwnerACL(t *testing.T) {
	acl := OwnerACL("user_a")

	assert.True(t, acl.CanRead("user_a"))
	assert.True(t, acl.CanWrite("user_a"))
	assert.False(t, acl.CanRead("user_b"))
	assert.False(t, acl.CanWrite(""))
	assert.True(t, acl.ExclusiveTo("user_a"))
	assert.False(t, acl.ExclusiveTo("user_b"))
}

func TestACL_JSON(t *testing.T) {
	b, err := json.Marshal(OwnerACL("user_a"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_a":{"read":true,"write":true}}`, string(b))
}

func TestACL_ValueScan(t *testing.T) {
	v, err := OwnerACL("user_a").Value()
	require.NoError(t, err)

	var acl ACL
	require.NoError(t, acl.Scan(v))
	assert.True(t, acl.ExclusiveTo("user_a"))

	require.NoError(t, acl.Scan([]byte(`{"x":{"read":true}}`)))
	assert.True(t, acl.CanRead("x"))
	assert.False(t, acl.CanWrite("x"))

	require.NoError(t, acl.Scan(nil))
	assert.Empty(t, acl)

	assert.Error(t, acl.Scan(42))
	assert.Error(t, acl.Scan("not json"))
}

func TestACL_ValueNil(t *testing.T) {
	var acl ACL
	v, err := acl.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"unauthenticated", NewHookError("authorize", EntityClient, "", "login", ErrUnauthenticated), KindUnauthenticated},
		{"validation", NewValidationError(EntityClient, "name", "too short"), KindValidation},
		{"duplicate", NewHookError("authorize", EntityClient, "", "dup", ErrDuplicateValue), KindDuplicateValue},
		{"reference", NewHookError("authorize", EntityNote, "", "gone", ErrReferenceNotFound), KindReferenceNotFound},
		{"forbidden wrapped", fmt.Errorf("outer: %w", NewHookError("authorize", EntityNote, "", "no", ErrForbidden)), KindForbidden},
		{"other", errors.New("boom"), KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHookError_Error(t *testing.T) {
	err := NewValidationError(EntityClient, "email", "invalid format")
	assert.Equal(t, "validate client: email: invalid format", err.Error())
	assert.Equal(t, "email: invalid format", PublicMessage(err))
	assert.ErrorIs(t, err, ErrValidation)

	err = NewHookError("authorize_delete", EntityClient, "", "not the owner", ErrForbidden)
	assert.Equal(t, "authorize_delete client: not the owner", err.Error())
	assert.Equal(t, "not the owner", PublicMessage(err))

	err = NewHookError("authorize", "", "", "login required", ErrUnauthenticated)
	assert.Equal(t, "authorize: login required", err.Error())
}
