package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

type mockStore struct {
	mu         sync.Mutex
	orphans    []domain.Note
	listErr    error
	destroyErr error
	destroyed  []domain.Ref
	lists      int
}

func (m *mockStore) ListOrphanNotes(_ context.Context, limit int) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.orphans) > limit {
		return m.orphans[:limit], nil
	}
	return m.orphans, nil
}

func (m *mockStore) DestroyAll(_ context.Context, refs []domain.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyErr != nil {
		return m.destroyErr
	}
	m.destroyed = append(m.destroyed, refs...)
	m.orphans = m.orphans[len(refs):]
	return nil
}

func (m *mockStore) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

func orphanNotes(ids ...string) []domain.Note {
	notes := make([]domain.Note, len(ids))
	for i, id := range ids {
		notes[i] = domain.Note{ID: id, ClientID: "cli_gone", OwnerID: "user_a"}
	}
	return notes
}

// =============================================================================
// Test Configuration
// =============================================================================

func TestNewOrphanSweeper_DefaultConfig(t *testing.T) {
	w := NewOrphanSweeper(&mockStore{}, OrphanSweeperConfig{}, nil)

	assert.Equal(t, 10*time.Minute, w.config.Interval)
	assert.Equal(t, 500, w.config.BatchSize)
}

// =============================================================================
// Test SweepOnce
// =============================================================================

func TestSweepOnce_RemovesBatch(t *testing.T) {
	s := &mockStore{orphans: orphanNotes("note_1", "note_2", "note_3")}
	w := NewOrphanSweeper(s, OrphanSweeperConfig{BatchSize: 2}, nil)

	n, err := w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []domain.Ref{
		{Entity: domain.EntityNote, ID: "note_1"},
		{Entity: domain.EntityNote, ID: "note_2"},
	}, s.destroyed)

	n, err = w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepOnce_Errors(t *testing.T) {
	listFail := &mockStore{listErr: errors.New("db down")}
	_, err := NewOrphanSweeper(listFail, OrphanSweeperConfig{}, nil).SweepOnce(context.Background())
	assert.Error(t, err)

	destroyFail := &mockStore{orphans: orphanNotes("note_1"), destroyErr: errors.New("locked")}
	n, err := NewOrphanSweeper(destroyFail, OrphanSweeperConfig{}, nil).SweepOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestSweepOnce_SQLiteStore(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	ctx := context.Background()

	client := domain.NewClient(domain.ClientFields{Name: "Ada", Email: "a@b.com", Phone: "5551234567"})
	client.SetOwnership("user_a", domain.OwnerACL("user_a"))
	require.NoError(t, s.CreateClient(ctx, client))
	note := domain.NewNote(domain.NoteFields{Title: "t", Content: "c", ClientID: client.ID})
	note.SetOwnership("user_a", domain.OwnerACL("user_a"))
	require.NoError(t, s.CreateNote(ctx, note))

	// Client removed without the cascade.
	require.NoError(t, s.DeleteClient(ctx, client.ID))

	n, err := NewOrphanSweeper(s, OrphanSweeperConfig{}, nil).SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// =============================================================================
// Test Lifecycle
// =============================================================================

func TestOrphanSweeper_StartStop(t *testing.T) {
	s := &mockStore{}
	w := NewOrphanSweeper(s, OrphanSweeperConfig{
		Interval:     20 * time.Millisecond,
		InitialDelay: time.Millisecond,
	}, nil)

	w.Start()
	assert.Eventually(t, func() bool { return s.listCalls() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	// Should be able to start again
	w.Start()
	w.Stop()
}

func TestOrphanSweeper_StopWithoutStart(t *testing.T) {
	w := NewOrphanSweeper(&mockStore{}, OrphanSweeperConfig{}, nil)
	w.Stop()
}
