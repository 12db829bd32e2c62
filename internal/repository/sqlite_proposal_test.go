package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/domain"
	"caudal/internal/testutil"
)

func TestProposalRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProposalRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Agrícola El Sauce")
	p := testutil.NewTestProposal(c.ID, "Regularización y perfeccionamiento",
		testutil.WithBillingMode(domain.BillingMixto),
		testutil.WithTotalFeeUF("120.50"))
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ClientID)
	assert.Equal(t, domain.BillingMixto, got.BillingMode)
	require.NotNil(t, got.TotalFeeUF)
	assert.True(t, got.TotalFeeUF.Equal(decimal.RequireFromString("120.50")))
	assert.Nil(t, got.Notes)
}

func TestProposalRepo_ListByClient(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProposalRepo(database)
	ctx := context.Background()

	c1 := seedClient(t, clients, "Cliente A")
	c2 := seedClient(t, clients, "Cliente B")
	require.NoError(t, repo.Create(ctx, testutil.NewTestProposal(c1.ID, "Propuesta 1")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProposal(c1.ID, "Propuesta 2")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProposal(c2.ID, "Propuesta 3")))

	forC1, err := repo.ListByClient(ctx, c1.ID)
	require.NoError(t, err)
	assert.Len(t, forC1, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMilestoneRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	proposals := NewSQLiteProposalRepo(database)
	repo := NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Hito")
	prop := testutil.NewTestProposal(c.ID, "Propuesta con hitos")
	require.NoError(t, proposals.Create(ctx, prop))

	due := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	m := testutil.NewTestMilestone(prop.ID, "Ingreso solicitud",
		testutil.WithFeeUF("40"),
		testutil.WithDueDate(due))
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ingreso solicitud", got.Title)
	require.NotNil(t, got.FeeUF)
	assert.True(t, got.FeeUF.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.False(t, got.IsTriggered)
	assert.Nil(t, got.TriggeredAt)
}

func TestMilestoneRepo_TriggerRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	proposals := NewSQLiteProposalRepo(database)
	repo := NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Trigger")
	prop := testutil.NewTestProposal(c.ID, "Propuesta")
	require.NoError(t, proposals.Create(ctx, prop))
	m := testutil.NewTestMilestone(prop.ID, "Resolución")
	require.NoError(t, repo.Create(ctx, m))

	at := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	m.Trigger(at)
	m.UpdatedAt = at
	require.NoError(t, repo.Update(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTriggered)
	require.NotNil(t, got.TriggeredAt)
	assert.True(t, got.TriggeredAt.Equal(at))
}

func TestMilestoneRepo_DeleteByProposal(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	proposals := NewSQLiteProposalRepo(database)
	repo := NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Borrado")
	prop := testutil.NewTestProposal(c.ID, "Propuesta")
	require.NoError(t, proposals.Create(ctx, prop))
	require.NoError(t, repo.Create(ctx, testutil.NewTestMilestone(prop.ID, "Hito 1")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestMilestone(prop.ID, "Hito 2")))

	require.NoError(t, repo.DeleteByProposal(ctx, prop.ID))

	ms, err := repo.ListByProposal(ctx, prop.ID)
	require.NoError(t, err)
	assert.Empty(t, ms)
}
