package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Client
// =============================================================================

// ClientFields are the caller-editable attributes of a Client.
type ClientFields struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone" yaml:"phone"`
}

// Client is a user-owned contact record.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	OwnerID   string    `json:"owner_id"`
	ACL       ACL       `json:"acl"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateClientID generates a new client ID with "cli_" prefix.
func GenerateClientID() string {
	return "cli_" + uuid.New().String()[:8]
}

// NewClient creates an unsaved client carrying the given fields.
// Owner and ACL are left empty; the save hook assigns them.
func NewClient(fields ClientFields) *Client {
	now := time.Now().UTC()
	c := &Client{
		ID:        GenerateClientID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.SetFields(fields)
	return c
}

// Fields returns the caller-editable attributes.
func (c *Client) Fields() ClientFields {
	return ClientFields{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// SetFields overwrites the caller-editable attributes.
func (c *Client) SetFields(f ClientFields) {
	c.Name = f.Name
	c.Email = f.Email
	c.Phone = f.Phone
}

func (c *Client) Entity() Entity   { return EntityClient }
func (c *Client) RecordID() string { return c.ID }
func (c *Client) Owner() string    { return c.OwnerID }
func (c *Client) Ref() Ref         { return Ref{Entity: EntityClient, ID: c.ID} }

func (c *Client) SetOwnership(ownerID string, acl ACL) {
	c.OwnerID = ownerID
	c.ACL = acl
}

func (*Client) sealed() {}
