package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/domain"
	"caudal/internal/testutil"
)

func seedProcedure(t *testing.T, clients *SQLiteClientRepo, procedures *SQLiteProcedureRepo) *domain.Procedure {
	t.Helper()
	c := seedClient(t, clients, "Cliente Etapas")
	p := testutil.NewTestProcedure(c.ID)
	require.NoError(t, procedures.Create(context.Background(), p))
	return p
}

func TestStepRepo_CreateAndListOrdered(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	procedures := NewSQLiteProcedureRepo(database)
	repo := NewSQLiteStepRepo(database)
	ctx := context.Background()

	p := seedProcedure(t, clients, procedures)

	// Insert out of order; listing must follow step_order.
	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 3, "Ingreso DGA")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 1, "Recopilación de antecedentes")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 2, "Redacción de solicitud")))

	steps, err := repo.ListByProcedure(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "Recopilación de antecedentes", steps[0].Title)
	assert.Equal(t, "Redacción de solicitud", steps[1].Title)
	assert.Equal(t, "Ingreso DGA", steps[2].Title)
}

func TestStepRepo_MaxOrder(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	procedures := NewSQLiteProcedureRepo(database)
	repo := NewSQLiteStepRepo(database)
	ctx := context.Background()

	p := seedProcedure(t, clients, procedures)

	max, err := repo.MaxOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max, "empty procedure has max order 0")

	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 7, "Paso suelto")))
	max, err = repo.MaxOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, max)
}

func TestStepRepo_UpdateDone(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	procedures := NewSQLiteProcedureRepo(database)
	repo := NewSQLiteStepRepo(database)
	ctx := context.Background()

	p := seedProcedure(t, clients, procedures)
	s := testutil.NewTestStep(p.ID, 1, "Publicación Diario Oficial")
	require.NoError(t, repo.Create(ctx, s))

	doneAt := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	s.Done = true
	s.DoneAt = &doneAt
	comment := "publicado edición del 1 de julio"
	s.Comment = &comment
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
	require.NotNil(t, got.DoneAt)
	assert.True(t, got.DoneAt.Equal(doneAt))
	require.NotNil(t, got.Comment)
	assert.Equal(t, "publicado edición del 1 de julio", *got.Comment)
}

func TestStepRepo_UnlinkMilestone(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	procedures := NewSQLiteProcedureRepo(database)
	proposals := NewSQLiteProposalRepo(database)
	milestones := NewSQLiteMilestoneRepo(database)
	repo := NewSQLiteStepRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Hitos")
	prop := testutil.NewTestProposal(c.ID, "Propuesta hitos")
	require.NoError(t, proposals.Create(ctx, prop))
	m := testutil.NewTestMilestone(prop.ID, "Resolución DGA")
	require.NoError(t, milestones.Create(ctx, m))

	p := testutil.NewTestProcedure(c.ID)
	require.NoError(t, procedures.Create(ctx, p))
	s := testutil.NewTestStep(p.ID, 1, "Resolución", testutil.WithMilestoneID(m.ID))
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, repo.UnlinkMilestone(ctx, m.ID))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MilestoneID)
}

func TestStepRepo_DeleteByProcedure(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	procedures := NewSQLiteProcedureRepo(database)
	repo := NewSQLiteStepRepo(database)
	ctx := context.Background()

	p := seedProcedure(t, clients, procedures)
	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 1, "Uno")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestStep(p.ID, 2, "Dos")))

	require.NoError(t, repo.DeleteByProcedure(ctx, p.ID))

	steps, err := repo.ListByProcedure(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
}
