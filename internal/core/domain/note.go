package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Note
// =============================================================================

// NoteFields are the caller-editable attributes of a Note.
type NoteFields struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	ClientID string `json:"client_id" yaml:"client_id"`
}

// Note is a user-owned annotation attached to exactly one Client.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ClientID  string    `json:"client_id"`
	OwnerID   string    `json:"owner_id"`
	ACL       ACL       `json:"acl"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateNoteID generates a new note ID with "note_" prefix.
func GenerateNoteID() string {
	return "note_" + uuid.New().String()[:8]
}

// NewNote creates an unsaved note carrying the given fields.
func NewNote(fields NoteFields) *Note {
	now := time.Now().UTC()
	n := &Note{
		ID:        GenerateNoteID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	n.SetFields(fields)
	return n
}

// Fields returns the caller-editable attributes.
func (n *Note) Fields() NoteFields {
	return NoteFields{Title: n.Title, Content: n.Content, ClientID: n.ClientID}
}

// SetFields overwrites the caller-editable attributes.
func (n *Note) SetFields(f NoteFields) {
	n.Title = f.Title
	n.Content = f.Content
	n.ClientID = f.ClientID
}

// ClientRef returns the typed reference to the parent client.
func (n *Note) ClientRef() Ref {
	return Ref{Entity: EntityClient, ID: n.ClientID}
}

func (n *Note) Entity() Entity   { return EntityNote }
func (n *Note) RecordID() string { return n.ID }
func (n *Note) Owner() string    { return n.OwnerID }
func (n *Note) Ref() Ref         { return Ref{Entity: EntityNote, ID: n.ID} }

func (n *Note) SetOwnership(ownerID string, acl ACL) {
	n.OwnerID = ownerID
	n.ACL = acl
}

func (*Note) sealed() {}
