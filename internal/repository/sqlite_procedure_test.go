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

func seedClient(t *testing.T, repo *SQLiteClientRepo, name string) *domain.Client {
	t.Helper()
	c := testutil.NewTestClient(name)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestProcedureRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Agrícola Santa Rosa")
	p := testutil.NewTestProcedure(c.ID,
		testutil.WithProcedureTitle("Regularización pozo fundo norte"),
		testutil.WithGeneralInfo("Pozo profundo sector La Compañía\n\nTags: #delegable"))
	require.NoError(t, repo.Create(ctx, p))
	assert.Greater(t, p.ID, int64(0))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ClientID)
	assert.Equal(t, "ADM_STANDARD", got.Type)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Regularización pozo fundo norte", *got.Title)
	assert.Equal(t, []string{"#delegable"}, got.Tags())
	assert.Nil(t, got.DoneAt)
	assert.Nil(t, got.ProposalID)
}

func TestProcedureRepo_ListFilters(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c1 := seedClient(t, clients, "Cliente Uno")
	c2 := seedClient(t, clients, "Cliente Dos")

	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c1.ID)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c1.ID,
		testutil.WithProcedureType("JUD_PERFECCIONAMIENTO"),
		testutil.WithProcedureStatus(domain.StatusInProgress),
		testutil.WithGeneralInfo("Juicio DGA\n\nTags: #prioridad"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c2.ID)))

	byClient, err := repo.List(ctx, ProcedureFilter{ClientID: &c1.ID})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	typ := "JUD_PERFECCIONAMIENTO"
	byType, err := repo.List(ctx, ProcedureFilter{Type: &typ})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, domain.StatusInProgress, byType[0].Status)

	status := domain.StatusPending
	byStatus, err := repo.List(ctx, ProcedureFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byTag, err := repo.List(ctx, ProcedureFilter{Tags: []string{"#prioridad"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, typ, byTag[0].Type)

	// Several tags narrow jointly: no row carries both.
	byBothTags, err := repo.List(ctx, ProcedureFilter{Tags: []string{"#prioridad", "#delegable"}})
	require.NoError(t, err)
	assert.Empty(t, byBothTags)

	judPrefix := "JUD_"
	byPrefix, err := repo.List(ctx, ProcedureFilter{TypePrefix: &judPrefix})
	require.NoError(t, err)
	require.Len(t, byPrefix, 1)
	assert.Equal(t, typ, byPrefix[0].Type)

	// An explicit type beats the prefix.
	adm := "ADM_STANDARD"
	byTypeAndPrefix, err := repo.List(ctx, ProcedureFilter{Type: &adm, TypePrefix: &judPrefix})
	require.NoError(t, err)
	require.Len(t, byTypeAndPrefix, 2)
	for _, p := range byTypeAndPrefix {
		assert.Equal(t, adm, p.Type)
	}

	maule := testutil.NewTestProcedure(c2.ID)
	region, province := "Maule", "Talca"
	maule.Region, maule.Province = &region, &province
	require.NoError(t, repo.Create(ctx, maule))

	byRegion, err := repo.List(ctx, ProcedureFilter{Region: &region})
	require.NoError(t, err)
	require.Len(t, byRegion, 1)
	assert.Equal(t, maule.ID, byRegion[0].ID)

	otherProvince := "Linares"
	byProvince, err := repo.List(ctx, ProcedureFilter{Region: &region, Province: &otherProvince})
	require.NoError(t, err)
	assert.Empty(t, byProvince)
}

func TestProcedureRepo_ListOrderAndPaging(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Paginado")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 5; i++ {
		p := testutil.NewTestProcedure(c.ID)
		p.LastAction = base.Add(time.Duration(i) * time.Hour)
		// Creation order runs opposite to activity order.
		p.CreatedAt = base.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	// Most recent activity first.
	page1, err := repo.List(ctx, ProcedureFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID)
	assert.Equal(t, ids[3], page1[1].ID)

	page2, err := repo.List(ctx, ProcedureFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[2], page2[0].ID)

	oldestAction, err := repo.List(ctx, ProcedureFilter{Order: OrderLastActionAsc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, oldestAction, 1)
	assert.Equal(t, ids[0], oldestAction[0].ID)

	newestCreated, err := repo.List(ctx, ProcedureFilter{Order: OrderCreatedDesc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, newestCreated, 1)
	assert.Equal(t, ids[0], newestCreated[0].ID)

	oldestCreated, err := repo.List(ctx, ProcedureFilter{Order: OrderCreatedAsc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, oldestCreated, 1)
	assert.Equal(t, ids[4], oldestCreated[0].ID)

	// Unrecognized orders keep the default sort.
	fallback, err := repo.List(ctx, ProcedureFilter{Order: "name_asc", Limit: 1})
	require.NoError(t, err)
	require.Len(t, fallback, 1)
	assert.Equal(t, ids[4], fallback[0].ID)
}

func TestProcedureRepo_ListCards(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	steps := NewSQLiteStepRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Inmobiliaria Cachapoal")
	p := testutil.NewTestProcedure(c.ID)
	require.NoError(t, repo.Create(ctx, p))

	now := time.Now().UTC()
	require.NoError(t, steps.Create(ctx, testutil.NewTestStep(p.ID, 1, "Recopilación de antecedentes", testutil.WithStepDone(now))))
	require.NoError(t, steps.Create(ctx, testutil.NewTestStep(p.ID, 2, "Redacción de solicitud")))
	require.NoError(t, steps.Create(ctx, testutil.NewTestStep(p.ID, 3, "Ingreso DGA")))

	cards, err := repo.ListCards(ctx, ProcedureFilter{})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Inmobiliaria Cachapoal", cards[0].ClientName)
	assert.Equal(t, c.RUT, cards[0].ClientRUT)
	assert.Equal(t, 1, cards[0].DoneSteps)
	assert.Equal(t, 3, cards[0].TotalSteps)
}

func TestProcedureRepo_TouchLastAction(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Activo")
	p := testutil.NewTestProcedure(c.ID)
	p.LastAction = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, p))

	touch := time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastAction(ctx, p.ID, touch))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.LastAction.Equal(touch))
}

func TestProcedureRepo_UnlinkProposal(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	proposals := NewSQLiteProposalRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Propuesta")
	prop := testutil.NewTestProposal(c.ID, "Regularización integral")
	require.NoError(t, proposals.Create(ctx, prop))

	p := testutil.NewTestProcedure(c.ID, testutil.WithProposalID(prop.ID))
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.UnlinkProposal(ctx, prop.ID))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProposalID)
}

func TestProcedureRepo_ListTypes(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := NewSQLiteClientRepo(database)
	repo := NewSQLiteProcedureRepo(database)
	ctx := context.Background()

	c := seedClient(t, clients, "Cliente Tipos")
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c.ID)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c.ID)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(c.ID, testutil.WithProcedureType("OTR_TRANSFERENCIA"))))

	types, err := repo.ListTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADM_STANDARD", "OTR_TRANSFERENCIA"}, types)
}
