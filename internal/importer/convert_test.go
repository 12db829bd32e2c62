package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/domain"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestConvert_FullSnapshot(t *testing.T) {
	snap, err := Convert(validSnapshot())
	require.NoError(t, err)
	require.Len(t, snap.Clients, 1)

	c := snap.Clients[0]
	assert.Equal(t, "12345678-5", c.Client.RUT)
	assert.Equal(t, "Agrícola Los Sauces", c.Client.Name)

	contacts, err := c.Client.ContactList()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "María Pérez", contacts[0].Nombre)

	require.Len(t, c.Proposals, 1)
	p := c.Proposals[0]
	assert.Equal(t, "prop-1", p.Ref)
	assert.Equal(t, domain.BillingHitos, p.Proposal.BillingMode)
	require.NotNil(t, p.Proposal.TotalFeeUF)
	assert.True(t, p.Proposal.TotalFeeUF.Equal(decimalFromString(t, "120")))

	require.Len(t, p.Milestones, 2)
	first := p.Milestones[0]
	assert.Equal(t, "hito-1", first.Ref)
	assert.True(t, first.Milestone.IsTriggered)
	require.NotNil(t, first.Milestone.TriggeredAt)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *first.Milestone.TriggeredAt)
	second := p.Milestones[1]
	assert.Empty(t, second.Ref)
	assert.False(t, second.Milestone.IsTriggered)
	require.NotNil(t, second.Milestone.DueDate)

	require.Len(t, c.Procedures, 1)
	g := c.Procedures[0]
	require.NotNil(t, g.ProposalRef)
	assert.Equal(t, "prop-1", *g.ProposalRef)
	assert.Equal(t, domain.Status("IN_PROGRESS"), g.Procedure.Status)

	require.Len(t, g.Steps, 2)
	assert.Equal(t, 1, g.Steps[0].Step.Order)
	assert.Equal(t, 2, g.Steps[1].Step.Order)
	assert.True(t, g.Steps[0].Step.Done)
	require.NotNil(t, g.Steps[0].MilestoneRef)
	assert.Equal(t, "hito-1", *g.Steps[0].MilestoneRef)
	assert.Nil(t, g.Steps[1].MilestoneRef)

	require.Len(t, g.Expenses, 1)
	assert.Equal(t, domain.DocBoleta, g.Expenses[0].DocumentType)
	assert.True(t, g.Expenses[0].AmountUF.Equal(decimalFromString(t, "1.5")))

	require.Len(t, g.Todos, 1)
	require.NotNil(t, g.Todos[0].DueDate)

	require.Len(t, g.WaterRights, 1)
	assert.Equal(t, domain.NaturalezaSubterraneo, g.WaterRights[0].Naturaleza)
	assert.True(t, g.WaterRights[0].Complete())

	require.Len(t, snap.Rates, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), snap.Rates[0].Date)
	assert.True(t, snap.Rates[0].Value.Equal(decimalFromString(t, "38000.50")))
}

func TestConvert_TagsMergeIntoGeneralInfo(t *testing.T) {
	s := validSnapshot()
	s.Clients[0].Procedures[0].GeneralInfo = strPtr("Pozo a 80m de profundidad.")
	s.Clients[0].Procedures[0].Tags = []string{"#Prioridad", "#Delegable"}

	snap, err := Convert(s)
	require.NoError(t, err)

	g := snap.Clients[0].Procedures[0].Procedure
	assert.Equal(t, []string{"#Prioridad", "#Delegable"}, g.Tags())
	assert.Contains(t, *g.GeneralInfo, "Pozo a 80m de profundidad.")
}

func TestConvert_Defaults(t *testing.T) {
	s := &SnapshotSchema{Clients: []ClientImport{{
		RUT:  "87654321-0",
		Name: "Mínimo",
		Proposals: []ProposalImport{
			{Ref: "p", Title: "Propuesta"},
		},
		Procedures: []ProcedureImport{
			{Type: "CUSTOM", Steps: []StepImport{{Title: "Único paso"}}},
		},
	}}}

	snap, err := Convert(s)
	require.NoError(t, err)

	c := snap.Clients[0]
	assert.Nil(t, c.Client.Contacts)
	assert.Equal(t, domain.BillingHitos, c.Proposals[0].Proposal.BillingMode)
	assert.Equal(t, domain.StatusPending, c.Procedures[0].Procedure.Status)
	assert.Nil(t, c.Procedures[0].ProposalRef)
}
