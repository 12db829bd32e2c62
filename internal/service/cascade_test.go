package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/domain"
	"caudal/internal/repository"
	"caudal/internal/testutil"
)

// seedFullClient builds a client with a proposal, milestones, a procedure
// and every kind of child row.
func seedFullClient(t *testing.T, env *testEnv) (clientID, procedureID, proposalID int64) {
	t.Helper()
	ctx := context.Background()

	c, err := env.clients.Create(ctx, CreateClientInput{RUT: "12345678-5", Name: "Cliente Completo"})
	require.NoError(t, err)
	prop, err := env.proposals.Create(ctx, CreateProposalInput{ClientID: c.ID, Title: "Propuesta integral"})
	require.NoError(t, err)
	m, err := env.proposals.AddMilestone(ctx, CreateMilestoneInput{ProposalID: prop.ID, Title: "Ingreso"})
	require.NoError(t, err)

	p, err := env.procedures.Create(ctx, CreateProcedureInput{
		ClientID: c.ID, TypeKey: "ADM_CPA", ProposalID: &prop.ID,
	})
	require.NoError(t, err)

	steps, err := env.stepRepo.ListByProcedure(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, env.procedures.LinkStepMilestone(ctx, steps[0].ID, &m.ID))

	_, err = env.procedures.AddExpense(ctx, CreateExpenseInput{
		ProcedureID: p.ID, Reason: "Publicación", AmountUF: decimalFromString(t, "1.5"),
	})
	require.NoError(t, err)
	_, err = env.procedures.AddTodo(ctx, p.ID, "Llamar cliente", nil)
	require.NoError(t, err)
	_, err = env.procedures.AddWaterRight(ctx, CreateWaterRightInput{
		ProcedureID: p.ID, Foja: "10", Numero: "20", Anio: 2021, CBR: "CBR Rancagua",
	})
	require.NoError(t, err)

	return c.ID, p.ID, prop.ID
}

func TestClientDelete_CascadesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	clientID, _, _ := seedFullClient(t, env)
	require.NoError(t, env.clients.Delete(ctx, clientID))

	for _, table := range []string{"clients", "procedures", "steps", "proposals", "milestones", "expenses", "todos", "water_rights"} {
		assert.Equal(t, 0, countRows(t, env.db, table), "table %s should be empty", table)
	}
}

func TestProcedureDelete_LeavesClientAndProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, procedureID, _ := seedFullClient(t, env)
	require.NoError(t, env.procedures.Delete(ctx, procedureID))

	assert.Equal(t, 0, countRows(t, env.db, "procedures"))
	assert.Equal(t, 0, countRows(t, env.db, "steps"))
	assert.Equal(t, 0, countRows(t, env.db, "expenses"))
	assert.Equal(t, 0, countRows(t, env.db, "todos"))
	assert.Equal(t, 0, countRows(t, env.db, "water_rights"))
	assert.Equal(t, 1, countRows(t, env.db, "clients"))
	assert.Equal(t, 1, countRows(t, env.db, "proposals"))
	assert.Equal(t, 1, countRows(t, env.db, "milestones"))
}

func TestProposalDelete_UnlinksDoesNotDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, procedureID, proposalID := seedFullClient(t, env)
	require.NoError(t, env.proposals.Delete(ctx, proposalID))

	assert.Equal(t, 0, countRows(t, env.db, "proposals"))
	assert.Equal(t, 0, countRows(t, env.db, "milestones"))

	// The procedure and its steps survive, with links cleared.
	p, err := env.procedureRepo.GetByID(ctx, procedureID)
	require.NoError(t, err)
	assert.Nil(t, p.ProposalID)

	steps, err := env.stepRepo.ListByProcedure(ctx, procedureID)
	require.NoError(t, err)
	for _, s := range steps {
		assert.Nil(t, s.MilestoneID)
	}
}

func TestClientDelete_RollsBackMidway(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	clientID, _, _ := seedFullClient(t, env)

	// Fail on the second delete inside the transaction; nothing may be lost.
	boom := errors.New("disk full")
	failing := &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 2, Err: boom}
	svc := NewClientService(env.clientRepo, env.procedureRepo, env.proposalRepo, failing)

	err := svc.Delete(ctx, clientID)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1, countRows(t, env.db, "clients"))
	assert.Equal(t, 1, countRows(t, env.db, "procedures"))
	assert.Equal(t, 4, countRows(t, env.db, "steps"))
	assert.Equal(t, 1, countRows(t, env.db, "expenses"))
}

func TestDeletedProcedure_NotFoundAfterwards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, procedureID, _ := seedFullClient(t, env)
	require.NoError(t, env.procedures.Delete(ctx, procedureID))

	_, err := env.procedures.GetByID(ctx, procedureID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, domain.Failed(domain.ErrUnknown), Outcome(domain.EventProcedureDeleted, err))
}
