package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/testutil"
)

func TestClientRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	c := testutil.NewTestClient("Agrícola Los Nogales",
		testutil.WithAlias("Nogales"),
		testutil.WithEmail("contacto@nogales.cl"))
	require.NoError(t, repo.Create(ctx, c))
	assert.Greater(t, c.ID, int64(0), "create should assign a row id")

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.RUT, got.RUT)
	assert.Equal(t, "Agrícola Los Nogales", got.Name)
	require.NotNil(t, got.Alias)
	assert.Equal(t, "Nogales", *got.Alias)
	require.NotNil(t, got.Email)
	assert.Equal(t, "contacto@nogales.cl", *got.Email)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.Notes)
}

func TestClientRepo_GetByRUT(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	c := testutil.NewTestClient("Comunidad de Aguas Canal Sur")
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByRUT(ctx, c.RUT)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = repo.GetByRUT(ctx, "99999999-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientRepo_DuplicateRUTRejected(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	c1 := testutil.NewTestClient("Primera", testutil.WithRUT("12345678-5"))
	require.NoError(t, repo.Create(ctx, c1))

	c2 := testutil.NewTestClient("Segunda", testutil.WithRUT("12345678-5"))
	assert.Error(t, repo.Create(ctx, c2))
}

func TestClientRepo_ListOrderedByName(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	for _, name := range []string{"Zúñiga y Cía", "agrícola del valle", "Minera Andes"} {
		require.NoError(t, repo.Create(ctx, testutil.NewTestClient(name)))
	}

	clients, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "agrícola del valle", clients[0].Name)
	assert.Equal(t, "Minera Andes", clients[1].Name)
}

func TestClientRepo_Update(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	c := testutil.NewTestClient("Original")
	require.NoError(t, repo.Create(ctx, c))

	c.Name = "Renombrada"
	notes := "cliente histórico"
	c.Notes = &notes
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renombrada", got.Name)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "cliente histórico", *got.Notes)
}

func TestClientRepo_Delete(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(database)
	ctx := context.Background()

	c := testutil.NewTestClient("Efímera")
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Delete(ctx, c.ID))

	_, err := repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
