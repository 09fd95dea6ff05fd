package auth

import (
	"testing"

	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func ownedClient(owner string) *domain.Client {
	c := domain.NewClient(domain.ClientFields{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"})
	c.SetOwnership(owner, domain.OwnerACL(owner))
	return c
}

// =============================================================================
// Record Authorization Tests
// =============================================================================

func TestIsOwner(t *testing.T) {
	client := ownedClient("user_a")

	tests := []struct {
		name string
		ctx  Context
		rec  domain.Record
		want bool
	}{
		{"owner", Actor("user_a"), client, true},
		{"other user", Actor("user_b"), client, false},
		{"unauthenticated", Anonymous(), client, false},
		{"identity without auth flag", Context{UserID: "user_a"}, client, false},
		{"unowned record", Actor("user_a"), domain.NewClient(domain.ClientFields{}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOwner(tt.ctx, tt.rec))
			assert.Equal(t, tt.want, CanModifyRecord(tt.ctx, tt.rec))
			assert.Equal(t, tt.want, CanDeleteRecord(tt.ctx, tt.rec))
		})
	}
}

func TestCanViewRecord_UsesACL(t *testing.T) {
	note := &domain.Note{ID: "note_1", OwnerID: "user_a", ACL: domain.ACL{
		"user_a": {Read: true, Write: true},
		"user_r": {Read: true},
	}}

	assert.True(t, CanViewRecord(Actor("user_a"), note))
	assert.True(t, CanViewRecord(Actor("user_r"), note))
	assert.False(t, CanViewRecord(Actor("user_b"), note))
	assert.False(t, CanViewRecord(Anonymous(), note))
}

func TestCanViewRecord_FallsBackToOwner(t *testing.T) {
	note := &domain.Note{ID: "note_1", OwnerID: "user_a"}

	assert.True(t, CanViewRecord(Actor("user_a"), note))
	assert.False(t, CanViewRecord(Actor("user_b"), note))
}

func TestCanReferenceClient(t *testing.T) {
	assert.True(t, CanReferenceClient(Actor("user_a"), ownedClient("user_a")))
	assert.False(t, CanReferenceClient(Actor("user_b"), ownedClient("user_a")))
	assert.False(t, CanReferenceClient(Actor("user_a"), nil))
}
