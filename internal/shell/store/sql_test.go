package store

import (
	"context"
	"testing"

	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createTestClient(t *testing.T, store Store, owner, email string) *domain.Client {
	t.Helper()
	client := domain.NewClient(domain.ClientFields{Name: "Ada Lovelace", Email: email, Phone: "5551234567"})
	client.SetOwnership(owner, domain.OwnerACL(owner))
	require.NoError(t, store.CreateClient(context.Background(), client))
	return client
}

func createTestNote(t *testing.T, store Store, owner, clientID string) *domain.Note {
	t.Helper()
	note := domain.NewNote(domain.NoteFields{Title: "Call", Content: "Call back on Monday", ClientID: clientID})
	note.SetOwnership(owner, domain.OwnerACL(owner))
	require.NoError(t, store.CreateNote(context.Background(), note))
	return note
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "root@/db")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	assert.Equal(t, DriverSQLite, store.Driver())

	// Running the migrations again on the same connection is a no-op.
	require.NoError(t, runMigrations(store.db.DB, DriverSQLite))
	require.NoError(t, store.Ping(context.Background()))
}

// =============================================================================
// Client CRUD Tests
// =============================================================================

func TestCreateClient_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "user_a", "ada@example.com")

	got, err := store.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "5551234567", got.Phone)
	assert.Equal(t, "user_a", got.OwnerID)
	assert.True(t, got.ACL.ExclusiveTo("user_a"))
	assert.Equal(t, client.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestCreateClient_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	client := createTestClient(t, store, "user_a", "ada@example.com")

	err := store.CreateClient(context.Background(), client)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCreateClient_RequiresOwner(t *testing.T) {
	store := setupTestStore(t)
	client := domain.NewClient(domain.ClientFields{Name: "Ada", Email: "a@b.com", Phone: "5551234567"})

	err := store.CreateClient(context.Background(), client)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestCreateClient_SameEmailAllowedByStorage(t *testing.T) {
	// Per-owner email uniqueness is enforced by the save hook only.
	store := setupTestStore(t)
	createTestClient(t, store, "user_a", "a@b.com")
	createTestClient(t, store, "user_a", "a@b.com")

	clients, err := store.ListClientsByOwner(context.Background(), "user_a", DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestGetClient_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetClient(context.Background(), "cli_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateClient_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "ada@example.com")

	client.Name = "Ada King"
	client.Phone = "5559876543"
	require.NoError(t, store.UpdateClient(ctx, client))

	got, err := store.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", got.Name)
	assert.Equal(t, "5559876543", got.Phone)
}

func TestUpdateClient_NotFound(t *testing.T) {
	store := setupTestStore(t)
	client := domain.NewClient(domain.ClientFields{Name: "Ada"})

	err := store.UpdateClient(context.Background(), client)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClient(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "ada@example.com")

	require.NoError(t, store.DeleteClient(ctx, client.ID))

	_, err := store.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClientsByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestClient(t, store, "user_a", "a1@b.com")
	createTestClient(t, store, "user_a", "a2@b.com")
	createTestClient(t, store, "user_b", "b1@b.com")

	clients, err := store.ListClientsByOwner(ctx, "user_a", DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	for _, c := range clients {
		assert.Equal(t, "user_a", c.OwnerID)
	}

	page, err := store.ListClientsByOwner(ctx, "user_a", ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	none, err := store.ListClientsByOwner(ctx, "user_c", DefaultListOptions())
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// Note CRUD Tests
// =============================================================================

func TestNoteCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "ada@example.com")
	note := createTestNote(t, store, "user_a", client.ID)

	got, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Call", got.Title)
	assert.Equal(t, client.ID, got.ClientID)
	assert.True(t, got.ACL.ExclusiveTo("user_a"))

	got.Content = "Call back on Tuesday"
	require.NoError(t, store.UpdateNote(ctx, got))

	got, err = store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Call back on Tuesday", got.Content)

	require.NoError(t, store.DeleteNote(ctx, note.ID))
	_, err = store.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNotes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	c1 := createTestClient(t, store, "user_a", "a1@b.com")
	c2 := createTestClient(t, store, "user_a", "a2@b.com")
	createTestNote(t, store, "user_a", c1.ID)
	createTestNote(t, store, "user_a", c1.ID)
	createTestNote(t, store, "user_a", c2.ID)
	createTestNote(t, store, "user_b", c1.ID)

	byOwner, err := store.ListNotesByOwner(ctx, "user_a", DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, byOwner, 3)

	byClient, err := store.ListNotesByClient(ctx, "user_a", c1.ID, DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, byClient, 2)
}

func TestCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	c1 := createTestClient(t, store, "user_a", "a1@b.com")
	c2 := createTestClient(t, store, "user_a", "a2@b.com")
	createTestClient(t, store, "user_b", "b1@b.com")
	createTestNote(t, store, "user_a", c1.ID)
	createTestNote(t, store, "user_a", c1.ID)
	createTestNote(t, store, "user_a", c2.ID)
	createTestNote(t, store, "user_b", c1.ID)

	page, err := store.ListNotesByOwner(ctx, "user_a", ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	clients, err := store.CountClientsByOwner(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 2, clients)

	byOwner, err := store.CountNotesByOwner(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 3, byOwner)

	byClient, err := store.CountNotesByClient(ctx, "user_a", c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, byClient)

	none, err := store.CountNotesByOwner(ctx, "user_c")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestListOrphanNotes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	kept := createTestClient(t, store, "user_a", "a1@b.com")
	gone := createTestClient(t, store, "user_a", "a2@b.com")
	createTestNote(t, store, "user_a", kept.ID)
	orphan := createTestNote(t, store, "user_a", gone.ID)
	require.NoError(t, store.DeleteClient(ctx, gone.ID))

	notes, err := store.ListOrphanNotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, orphan.ID, notes[0].ID)
}

// =============================================================================
// Generic Lookup Tests
// =============================================================================

func TestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "a@b.com")

	rec, err := store.First(ctx, domain.EntityClient,
		domain.Eq(domain.FieldEmail, "a@b.com"),
		domain.Eq(domain.FieldOwnerID, "user_a"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, client.ID, rec.RecordID())

	rec, err = store.First(ctx, domain.EntityClient,
		domain.Eq(domain.FieldEmail, "a@b.com"),
		domain.Eq(domain.FieldOwnerID, "user_b"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFirst_UnknownField(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.First(context.Background(), domain.EntityClient, domain.Eq("acl; DROP TABLE clients", "x"))
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = store.Find(context.Background(), domain.EntityNote, domain.Eq(domain.FieldEmail, "x"))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFetch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "a@b.com")
	note := createTestNote(t, store, "user_a", client.ID)

	rec, err := store.Fetch(ctx, client.Ref())
	require.NoError(t, err)
	assert.IsType(t, &domain.Client{}, rec)

	rec, err = store.Fetch(ctx, note.Ref())
	require.NoError(t, err)
	assert.IsType(t, &domain.Note{}, rec)

	rec, err = store.Fetch(ctx, domain.Ref{Entity: domain.EntityClient, ID: "cli_missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, rec)
}

func TestFindAndDestroyAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "a@b.com")
	n1 := createTestNote(t, store, "user_a", client.ID)
	n2 := createTestNote(t, store, "user_a", client.ID)
	foreign := createTestNote(t, store, "user_b", client.ID)

	recs, err := store.Find(ctx, domain.EntityNote,
		domain.Eq(domain.FieldClientID, client.ID),
		domain.Eq(domain.FieldOwnerID, "user_a"))
	require.NoError(t, err)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.RecordID())
	}
	assert.ElementsMatch(t, []string{n1.ID, n2.ID}, ids)

	require.NoError(t, store.DestroyAll(ctx, domain.RefsOf(recs)))

	_, err = store.GetNote(ctx, n1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetNote(ctx, foreign.ID)
	assert.NoError(t, err)
}

func TestDestroyAll_EmptyAndUnknown(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.DestroyAll(ctx, nil))

	err := store.DestroyAll(ctx, []domain.Ref{{Entity: "users", ID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_CommitSuccess(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := domain.NewClient(domain.ClientFields{Name: "Tx", Email: "tx@b.com", Phone: "5551234567"})
	client.SetOwnership("user_a", domain.OwnerACL("user_a"))

	err := store.WithTx(ctx, func(tx Store) error {
		return tx.CreateClient(ctx, client)
	})
	require.NoError(t, err)

	_, err = store.GetClient(ctx, client.ID)
	assert.NoError(t, err)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := domain.NewClient(domain.ClientFields{Name: "Tx", Email: "tx@b.com", Phone: "5551234567"})
	client.SetOwnership("user_a", domain.OwnerACL("user_a"))

	err := store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}
		// Return error to trigger rollback
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTx_Nested(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createTestClient(t, store, "user_a", "a@b.com")
	note := createTestNote(t, store, "user_a", client.ID)

	err := store.WithTx(ctx, func(tx Store) error {
		return tx.WithTx(ctx, func(inner Store) error {
			return inner.DestroyAll(ctx, []domain.Ref{note.Ref()})
		})
	})
	require.NoError(t, err)

	_, err = store.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// ListOptions Tests
// =============================================================================

func TestListOptions_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{"defaults zero limit", ListOptions{}, ListOptions{Limit: 100}},
		{"caps limit", ListOptions{Limit: 5000}, ListOptions{Limit: 1000}},
		{"clamps offset", ListOptions{Limit: 10, Offset: -5}, ListOptions{Limit: 10}},
		{"keeps valid", ListOptions{Limit: 10, Offset: 20}, ListOptions{Limit: 10, Offset: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}
