package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRUT(t *testing.T) {
	tests := []struct {
		rut   string
		valid bool
	}{
		{"12345678-9", true},
		{"1234567-0", true},
		{"12345678-k", true},
		{"12345678-K", true},
		{"123456-9", false},    // too few digits
		{"123456789-1", false}, // too many digits
		{"12345678", false},    // missing verifier
		{"12.345.678-9", false},
		{"12345678-x", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.rut, func(t *testing.T) {
			c := &Client{RUT: tt.rut, Name: "Test"}
			err := c.ValidateRUT()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestContactList_RoundTrip(t *testing.T) {
	c := &Client{RUT: "12345678-9", Name: "Agrícola El Sauce"}
	in := []Contact{
		{Nombre: "María Pérez", Cargo: "Administradora", Correo: "maria@elsauce.cl"},
		{Nombre: "Juan Soto", Telefono: "+56 9 1234 5678"},
	}
	require.NoError(t, c.SetContactList(in))
	require.NotNil(t, c.Contacts)

	out, err := c.ContactList()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestContactList_Empty(t *testing.T) {
	c := &Client{}
	out, err := c.ContactList()
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, c.SetContactList(nil))
	assert.Nil(t, c.Contacts)
}

func TestContactList_Malformed(t *testing.T) {
	raw := "{not json"
	c := &Client{Contacts: &raw}
	_, err := c.ContactList()
	assert.Error(t, err)
}
