package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

var rutPattern = regexp.MustCompile(`^[0-9]{7,8}-[0-9kK]$`)

// Contact is one entry of a client's serialized contact list.
type Contact struct {
	Nombre   string `json:"nombre"`
	Cargo    string `json:"cargo,omitempty"`
	Correo   string `json:"correo,omitempty"`
	Telefono string `json:"telefono,omitempty"`
}

type Client struct {
	ID       int64
	RUT      string
	Name     string
	Alias    *string
	Email    *string
	Phone    *string
	Contacts *string // JSON-encoded []Contact
	Notes    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRUT checks the syntactic format of the client's tax id:
// 7-8 digits, a dash, and a verifier digit or k/K. No check-digit math.
func (c *Client) ValidateRUT() error {
	if c.RUT == "" {
		return fmt.Errorf("rut is required")
	}
	if !rutPattern.MatchString(c.RUT) {
		return fmt.Errorf("rut %q must match NNNNNNN-D (e.g. 12345678-9)", c.RUT)
	}
	return nil
}

// ContactList decodes the serialized contacts field. A nil or empty field
// yields an empty list; malformed JSON is an error.
func (c *Client) ContactList() ([]Contact, error) {
	if c.Contacts == nil || *c.Contacts == "" {
		return nil, nil
	}
	var list []Contact
	if err := json.Unmarshal([]byte(*c.Contacts), &list); err != nil {
		return nil, fmt.Errorf("decoding contacts: %w", err)
	}
	return list, nil
}

// SetContactList serializes the given contacts into the Contacts field.
// An empty list clears the field.
func (c *Client) SetContactList(list []Contact) error {
	if len(list) == 0 {
		c.Contacts = nil
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding contacts: %w", err)
	}
	s := string(raw)
	c.Contacts = &s
	return nil
}
