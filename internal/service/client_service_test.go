package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/domain"
)

func TestClientService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.clients.Create(ctx, CreateClientInput{
		RUT:  "12345678-5",
		Name: "  Agrícola Santa Marta  ",
		Contacts: []domain.Contact{
			{Nombre: "María Pérez", Cargo: "Administradora", Correo: "maria@santamarta.cl"},
		},
	})
	require.NoError(t, err)
	assert.Greater(t, c.ID, int64(0))
	assert.Equal(t, "Agrícola Santa Marta", c.Name, "name should be trimmed")

	list, err := c.ContactList()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "María Pérez", list[0].Nombre)
}

func TestClientService_Create_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clients.Create(ctx, CreateClientInput{RUT: "", Name: "Sin RUT"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "   "})
	assert.ErrorIs(t, err, ErrMissingFields)

	assert.Equal(t, 0, countRows(t, env.db, "clients"))
}

func TestClientService_Create_InvalidRUT(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, rut := range []string{"123-4", "12.345.678-5", "12345678-X", "123456789-1"} {
		_, err := env.clients.Create(ctx, CreateClientInput{RUT: rut, Name: "Cliente"})
		assert.ErrorIs(t, err, ErrInvalidRUT, "rut %q should be rejected", rut)
	}
	assert.Equal(t, 0, countRows(t, env.db, "clients"))
}

func TestClientService_Create_DuplicateRUT(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "Original"})
	require.NoError(t, err)

	_, err = env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "Duplicada"})
	assert.ErrorIs(t, err, ErrRUTExists)
	assert.Equal(t, 1, countRows(t, env.db, "clients"), "duplicate must not add a row")
}

func TestClientService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "Antes"})
	require.NoError(t, err)

	alias := "A&S"
	updated, err := env.clients.Update(ctx, UpdateClientInput{ID: c.ID, Name: "Después", Alias: &alias})
	require.NoError(t, err)
	assert.Equal(t, "Después", updated.Name)
	require.NotNil(t, updated.Alias)
	assert.Equal(t, "A&S", *updated.Alias)
	assert.Equal(t, c.RUT, updated.RUT, "empty rut input keeps the current one")
}

func TestClientService_Update_RUTCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clients.Create(ctx, CreateClientInput{RUT: "11111111-1", Name: "Primera"})
	require.NoError(t, err)
	c2, err := env.clients.Create(ctx, CreateClientInput{RUT: "22222222-2", Name: "Segunda"})
	require.NoError(t, err)

	_, err = env.clients.Update(ctx, UpdateClientInput{ID: c2.ID, RUT: "11111111-1"})
	assert.ErrorIs(t, err, ErrRUTExists)
}

func TestOutcome_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.Outcome
	}{
		{"success", nil, domain.OK(domain.EventClientCreated)},
		{"rut exists", ErrRUTExists, domain.Failed(domain.ErrRutExists)},
		{"invalid rut", ErrInvalidRUT, domain.Failed(domain.ErrRutInvalid)},
		{"missing fields", ErrMissingFields, domain.Failed(domain.ErrMissingFields)},
		{"anything else", assert.AnError, domain.Failed(domain.ErrUnknown)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(domain.EventClientCreated, tt.err))
		})
	}
}

func TestClientService_GetDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "Con Gestiones"})
	require.NoError(t, err)

	_, err = env.procedures.Create(ctx, CreateProcedureInput{ClientID: c.ID, TypeKey: "ADM_CPA"})
	require.NoError(t, err)
	_, err = env.proposals.Create(ctx, CreateProposalInput{ClientID: c.ID, Title: "Propuesta 2025"})
	require.NoError(t, err)

	detail, err := env.clients.GetDetail(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Procedures, 1)
	assert.Len(t, detail.Proposals, 1)
}
