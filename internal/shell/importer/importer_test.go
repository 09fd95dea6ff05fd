package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
clients:
  - name: Ada Lovelace
    email: ADA@example.com
    phone: "+1 (555) 123-4567"
    notes:
      - title: Kickoff
        content: Agenda
      - title: ""
        content: Missing title
  - name: A
    email: short@example.com
    phone: "5551234567"
    notes:
      - title: Never saved
        content: Parent rejected
  - name: Ada Again
    email: ada@example.com
    phone: "5551234567"
`

func setupStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Clients, 3)
	assert.Equal(t, "Ada Lovelace", doc.Clients[0].Name)
	assert.Len(t, doc.Clients[0].Notes, 2)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("clients:\n  - name: Ada\n    fax: \"123\"\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Clients)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Clients, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	report, err := New(s, nil).Import(ctx, auth.Actor("user_a"), doc)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, 1, report.Skipped)

	byPath := make(map[string]Result)
	for _, r := range report.Results {
		byPath[r.Path] = r
	}
	assert.Equal(t, OutcomeCreated, byPath["clients[0]"].Outcome)
	assert.Equal(t, OutcomeCreated, byPath["clients[0].notes[0]"].Outcome)
	assert.Equal(t, domain.KindValidation, byPath["clients[0].notes[1]"].Kind)
	assert.Equal(t, domain.KindValidation, byPath["clients[1]"].Kind)
	assert.Equal(t, OutcomeSkipped, byPath["clients[1].notes[0]"].Outcome)
	assert.Equal(t, domain.KindDuplicateValue, byPath["clients[2]"].Kind)

	clients, err := s.ListClientsByOwner(ctx, "user_a", store.DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "ada@example.com", clients[0].Email)

	notes, err := s.ListNotesByClient(ctx, "user_a", clients[0].ID, store.DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "user_a", notes[0].OwnerID)
}

func TestImport_Anonymous(t *testing.T) {
	s := setupStore(t)
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	report, err := New(s, nil).Import(context.Background(), auth.Anonymous(), doc)
	require.NoError(t, err)

	assert.Zero(t, report.Created)
	for _, r := range report.Results {
		if r.Outcome == OutcomeFailed {
			assert.Equal(t, domain.KindUnauthenticated, r.Kind)
		}
	}
}

func TestImport_CanceledContext(t *testing.T) {
	s := setupStore(t)
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = New(s, nil).Import(ctx, auth.Actor("user_a"), doc)
	assert.ErrorIs(t, err, context.Canceled)
}
