package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// ops holds the query implementations shared by SQLStore and txStore.
type ops struct {
	exec executor
}

// =============================================================================
// Row Types
// =============================================================================

// clientRow represents a client row in the database.
type clientRow struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Phone     string     `db:"phone"`
	OwnerID   string     `db:"owner_id"`
	ACL       domain.ACL `db:"acl"`
	CreatedAt string     `db:"created_at"`
	UpdatedAt string     `db:"updated_at"`
}

// noteRow represents a note row in the database.
type noteRow struct {
	ID        string     `db:"id"`
	Title     string     `db:"title"`
	Content   string     `db:"content"`
	ClientID  string     `db:"client_id"`
	OwnerID   string     `db:"owner_id"`
	ACL       domain.ACL `db:"acl"`
	CreatedAt string     `db:"created_at"`
	UpdatedAt string     `db:"updated_at"`
}

// queryable lists the columns a predicate may filter on, per table.
var queryable = map[domain.Entity]map[string]bool{
	domain.EntityClient: {
		domain.FieldID:      true,
		domain.FieldOwnerID: true,
		domain.FieldEmail:   true,
		"name":              true,
		"phone":             true,
	},
	domain.EntityNote: {
		domain.FieldID:       true,
		domain.FieldOwnerID:  true,
		domain.FieldClientID: true,
		"title":              true,
	},
}

// =============================================================================
// Client Operations
// =============================================================================

func (o ops) CreateClient(ctx context.Context, client *domain.Client) error {
	if client.OwnerID == "" {
		return NewStoreError("CreateClient", "client", client.ID, "owner is required", ErrInvalidData)
	}

	query := `
		INSERT INTO clients (id, name, email, phone, owner_id, acl, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :owner_id, :acl, :created_at, :updated_at)`

	_, err := o.exec.NamedExecContext(ctx, query, clientToRow(client))
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateClient", "client", client.ID, "client with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateClient", "client", client.ID, err.Error(), err)
	}

	return nil
}

func (o ops) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	query := o.exec.Rebind(`SELECT * FROM clients WHERE id = ?`)

	var row clientRow
	err := o.exec.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetClient", "client", id, "client not found", ErrNotFound)
		}
		return nil, NewStoreError("GetClient", "client", id, err.Error(), err)
	}

	return rowToClient(&row), nil
}

func (o ops) UpdateClient(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE clients SET
			name = :name,
			email = :email,
			phone = :phone,
			owner_id = :owner_id,
			acl = :acl,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := o.exec.NamedExecContext(ctx, query, clientToRow(client))
	if err != nil {
		return NewStoreError("UpdateClient", "client", client.ID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateClient", "client", client.ID, "client not found", ErrNotFound)
	}

	return nil
}

func (o ops) DeleteClient(ctx context.Context, id string) error {
	return o.deleteByID(ctx, "DeleteClient", domain.EntityClient, id)
}

func (o ops) ListClientsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Client, error) {
	opts = opts.Normalize()
	query := o.exec.Rebind(`SELECT * FROM clients WHERE owner_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)

	var rows []clientRow
	if err := o.exec.SelectContext(ctx, &rows, query, ownerID, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListClientsByOwner", "client", "", err.Error(), err)
	}

	clients := make([]domain.Client, 0, len(rows))
	for i := range rows {
		clients = append(clients, *rowToClient(&rows[i]))
	}
	return clients, nil
}

func (o ops) CountClientsByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	query := o.exec.Rebind(`SELECT COUNT(*) FROM clients WHERE owner_id = ?`)
	if err := o.exec.GetContext(ctx, &n, query, ownerID); err != nil {
		return 0, NewStoreError("CountClientsByOwner", "client", "", err.Error(), err)
	}
	return n, nil
}

// =============================================================================
// Note Operations
// =============================================================================

func (o ops) CreateNote(ctx context.Context, note *domain.Note) error {
	if note.OwnerID == "" {
		return NewStoreError("CreateNote", "note", note.ID, "owner is required", ErrInvalidData)
	}

	query := `
		INSERT INTO notes (id, title, content, client_id, owner_id, acl, created_at, updated_at)
		VALUES (:id, :title, :content, :client_id, :owner_id, :acl, :created_at, :updated_at)`

	_, err := o.exec.NamedExecContext(ctx, query, noteToRow(note))
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateNote", "note", note.ID, "note with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateNote", "note", note.ID, err.Error(), err)
	}

	return nil
}

func (o ops) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	query := o.exec.Rebind(`SELECT * FROM notes WHERE id = ?`)

	var row noteRow
	err := o.exec.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetNote", "note", id, "note not found", ErrNotFound)
		}
		return nil, NewStoreError("GetNote", "note", id, err.Error(), err)
	}

	return rowToNote(&row), nil
}

func (o ops) UpdateNote(ctx context.Context, note *domain.Note) error {
	note.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE notes SET
			title = :title,
			content = :content,
			client_id = :client_id,
			owner_id = :owner_id,
			acl = :acl,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := o.exec.NamedExecContext(ctx, query, noteToRow(note))
	if err != nil {
		return NewStoreError("UpdateNote", "note", note.ID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateNote", "note", note.ID, "note not found", ErrNotFound)
	}

	return nil
}

func (o ops) DeleteNote(ctx context.Context, id string) error {
	return o.deleteByID(ctx, "DeleteNote", domain.EntityNote, id)
}

func (o ops) ListNotesByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Note, error) {
	opts = opts.Normalize()
	query := o.exec.Rebind(`SELECT * FROM notes WHERE owner_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)

	var rows []noteRow
	if err := o.exec.SelectContext(ctx, &rows, query, ownerID, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListNotesByOwner", "note", "", err.Error(), err)
	}
	return rowsToNotes(rows), nil
}

func (o ops) ListNotesByClient(ctx context.Context, ownerID, clientID string, opts ListOptions) ([]domain.Note, error) {
	opts = opts.Normalize()
	query := o.exec.Rebind(`SELECT * FROM notes WHERE owner_id = ? AND client_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)

	var rows []noteRow
	if err := o.exec.SelectContext(ctx, &rows, query, ownerID, clientID, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListNotesByClient", "note", "", err.Error(), err)
	}
	return rowsToNotes(rows), nil
}

func (o ops) CountNotesByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	query := o.exec.Rebind(`SELECT COUNT(*) FROM notes WHERE owner_id = ?`)
	if err := o.exec.GetContext(ctx, &n, query, ownerID); err != nil {
		return 0, NewStoreError("CountNotesByOwner", "note", "", err.Error(), err)
	}
	return n, nil
}

func (o ops) CountNotesByClient(ctx context.Context, ownerID, clientID string) (int, error) {
	var n int
	query := o.exec.Rebind(`SELECT COUNT(*) FROM notes WHERE owner_id = ? AND client_id = ?`)
	if err := o.exec.GetContext(ctx, &n, query, ownerID, clientID); err != nil {
		return 0, NewStoreError("CountNotesByClient", "note", "", err.Error(), err)
	}
	return n, nil
}

func (o ops) ListOrphanNotes(ctx context.Context, limit int) ([]domain.Note, error) {
	if limit <= 0 {
		limit = DefaultListOptions().Limit
	}
	query := o.exec.Rebind(`SELECT n.* FROM notes n LEFT JOIN clients c ON c.id = n.client_id
		WHERE c.id IS NULL ORDER BY n.created_at, n.id LIMIT ?`)

	var rows []noteRow
	if err := o.exec.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, NewStoreError("ListOrphanNotes", "note", "", err.Error(), err)
	}
	return rowsToNotes(rows), nil
}

// =============================================================================
// Generic Lookups (guard.Store)
// =============================================================================

// First returns the oldest record matching every predicate, or (nil, nil).
func (o ops) First(ctx context.Context, entity domain.Entity, preds ...domain.Predicate) (domain.Record, error) {
	where, args, err := buildWhere(entity, preds)
	if err != nil {
		return nil, NewStoreError("First", entity.Singular(), "", err.Error(), ErrInvalidQuery)
	}
	query := o.exec.Rebind(fmt.Sprintf(`SELECT * FROM %s%s ORDER BY created_at, id LIMIT 1`, entity, where))

	var rec domain.Record
	switch entity {
	case domain.EntityClient:
		var row clientRow
		err = o.exec.GetContext(ctx, &row, query, args...)
		if err == nil {
			rec = rowToClient(&row)
		}
	case domain.EntityNote:
		var row noteRow
		err = o.exec.GetContext(ctx, &row, query, args...)
		if err == nil {
			rec = rowToNote(&row)
		}
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewStoreError("First", entity.Singular(), "", err.Error(), err)
	}
	return rec, nil
}

// Fetch resolves a reference or fails with ErrNotFound.
func (o ops) Fetch(ctx context.Context, ref domain.Ref) (domain.Record, error) {
	switch ref.Entity {
	case domain.EntityClient:
		c, err := o.GetClient(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return c, nil
	case domain.EntityNote:
		n, err := o.GetNote(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, NewStoreError("Fetch", string(ref.Entity), ref.ID, "unknown entity", ErrInvalidQuery)
	}
}

// Find returns every record matching every predicate, oldest first.
func (o ops) Find(ctx context.Context, entity domain.Entity, preds ...domain.Predicate) ([]domain.Record, error) {
	where, args, err := buildWhere(entity, preds)
	if err != nil {
		return nil, NewStoreError("Find", entity.Singular(), "", err.Error(), ErrInvalidQuery)
	}
	query := o.exec.Rebind(fmt.Sprintf(`SELECT * FROM %s%s ORDER BY created_at, id`, entity, where))

	var records []domain.Record
	switch entity {
	case domain.EntityClient:
		var rows []clientRow
		if err := o.exec.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, NewStoreError("Find", "client", "", err.Error(), err)
		}
		for i := range rows {
			records = append(records, rowToClient(&rows[i]))
		}
	case domain.EntityNote:
		var rows []noteRow
		if err := o.exec.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, NewStoreError("Find", "note", "", err.Error(), err)
		}
		for i := range rows {
			records = append(records, rowToNote(&rows[i]))
		}
	}
	return records, nil
}

// DestroyAll deletes the referenced records. Missing records are ignored.
func (o ops) DestroyAll(ctx context.Context, refs []domain.Ref) error {
	byEntity := map[domain.Entity][]string{}
	for _, ref := range refs {
		if !ref.Entity.IsValid() {
			return NewStoreError("DestroyAll", string(ref.Entity), ref.ID, "unknown entity", ErrInvalidQuery)
		}
		byEntity[ref.Entity] = append(byEntity[ref.Entity], ref.ID)
	}

	for _, entity := range []domain.Entity{domain.EntityNote, domain.EntityClient} {
		ids := byEntity[entity]
		if len(ids) == 0 {
			continue
		}
		query, args, err := sqlx.In(fmt.Sprintf(`DELETE FROM %s WHERE id IN (?)`, entity), ids)
		if err != nil {
			return NewStoreError("DestroyAll", entity.Singular(), "", err.Error(), err)
		}
		if _, err := o.exec.ExecContext(ctx, o.exec.Rebind(query), args...); err != nil {
			return NewStoreError("DestroyAll", entity.Singular(), "", err.Error(), err)
		}
	}
	return nil
}

// DestroyAll deletes the referenced records in a single transaction.
func (s *SQLStore) DestroyAll(ctx context.Context, refs []domain.Ref) error {
	if len(refs) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx Store) error {
		return tx.DestroyAll(ctx, refs)
	})
}

// =============================================================================
// Helper Functions
// =============================================================================

func (o ops) deleteByID(ctx context.Context, op string, entity domain.Entity, id string) error {
	query := o.exec.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, entity))

	result, err := o.exec.ExecContext(ctx, query, id)
	if err != nil {
		return NewStoreError(op, entity.Singular(), id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError(op, entity.Singular(), id, entity.Singular()+" not found", ErrNotFound)
	}

	return nil
}

// buildWhere turns equality predicates into a WHERE clause with ? bindvars.
func buildWhere(entity domain.Entity, preds []domain.Predicate) (string, []any, error) {
	columns, ok := queryable[entity]
	if !ok {
		return "", nil, fmt.Errorf("unknown entity %q", entity)
	}
	if len(preds) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		if !columns[p.Field] {
			return "", nil, fmt.Errorf("field %q is not queryable on %s", p.Field, entity)
		}
		conds = append(conds, p.Field+" = ?")
		args = append(args, p.Value)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func clientToRow(c *domain.Client) map[string]any {
	acl := c.ACL
	if acl == nil {
		acl = domain.ACL{}
	}
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"owner_id":   c.OwnerID,
		"acl":        acl,
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func noteToRow(n *domain.Note) map[string]any {
	acl := n.ACL
	if acl == nil {
		acl = domain.ACL{}
	}
	return map[string]any{
		"id":         n.ID,
		"title":      n.Title,
		"content":    n.Content,
		"client_id":  n.ClientID,
		"owner_id":   n.OwnerID,
		"acl":        acl,
		"created_at": n.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// rowToClient converts a database row to a domain.Client.
func rowToClient(row *clientRow) *domain.Client {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return &domain.Client{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		OwnerID:   row.OwnerID,
		ACL:       row.ACL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// rowToNote converts a database row to a domain.Note.
func rowToNote(row *noteRow) *domain.Note {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return &domain.Note{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		ClientID:  row.ClientID,
		OwnerID:   row.OwnerID,
		ACL:       row.ACL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func rowsToNotes(rows []noteRow) []domain.Note {
	notes := make([]domain.Note, 0, len(rows))
	for i := range rows {
		notes = append(notes, *rowToNote(&rows[i]))
	}
	return notes
}
