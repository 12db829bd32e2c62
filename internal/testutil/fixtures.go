package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"caudal/internal/domain"
)

var testRUTCounter atomic.Int64

// NextRUT returns a syntactically valid RUT unique within the test run.
func NextRUT() string {
	n := testRUTCounter.Add(1)
	return fmt.Sprintf("%08d-%d", 10000000+n, n%10)
}

// Client options
type ClientOption func(*domain.Client)

func WithRUT(rut string) ClientOption {
	return func(c *domain.Client) {
		c.RUT = rut
	}
}

func WithAlias(alias string) ClientOption {
	return func(c *domain.Client) {
		c.Alias = &alias
	}
}

func WithEmail(email string) ClientOption {
	return func(c *domain.Client) {
		c.Email = &email
	}
}

func WithNotes(notes string) ClientOption {
	return func(c *domain.Client) {
		c.Notes = &notes
	}
}

func NewTestClient(name string, opts ...ClientOption) *domain.Client {
	now := time.Now().UTC()
	c := &domain.Client{
		RUT:       NextRUT(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Procedure options
type ProcedureOption func(*domain.Procedure)

func WithProcedureType(key string) ProcedureOption {
	return func(p *domain.Procedure) {
		p.Type = key
	}
}

func WithProcedureTitle(title string) ProcedureOption {
	return func(p *domain.Procedure) {
		p.Title = &title
	}
}

func WithProcedureStatus(s domain.Status) ProcedureOption {
	return func(p *domain.Procedure) {
		p.Status = s
	}
}

func WithGeneralInfo(info string) ProcedureOption {
	return func(p *domain.Procedure) {
		p.GeneralInfo = &info
	}
}

func WithProposalID(id int64) ProcedureOption {
	return func(p *domain.Procedure) {
		p.ProposalID = &id
	}
}

func NewTestProcedure(clientID int64, opts ...ProcedureOption) *domain.Procedure {
	now := time.Now().UTC()
	p := &domain.Procedure{
		ClientID:   clientID,
		Type:       "ADM_STANDARD",
		Status:     domain.StatusPending,
		LastAction: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step options
type StepOption func(*domain.Step)

func WithStepDone(at time.Time) StepOption {
	return func(s *domain.Step) {
		s.Done = true
		s.DoneAt = &at
	}
}

func WithMilestoneID(id int64) StepOption {
	return func(s *domain.Step) {
		s.MilestoneID = &id
	}
}

func NewTestStep(procedureID int64, order int, title string, opts ...StepOption) *domain.Step {
	now := time.Now().UTC()
	s := &domain.Step{
		ProcedureID: procedureID,
		Order:       order,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Proposal options
type ProposalOption func(*domain.Proposal)

func WithBillingMode(m domain.BillingMode) ProposalOption {
	return func(p *domain.Proposal) {
		p.BillingMode = m
	}
}

func WithTotalFeeUF(v string) ProposalOption {
	return func(p *domain.Proposal) {
		d := decimal.RequireFromString(v)
		p.TotalFeeUF = &d
	}
}

func NewTestProposal(clientID int64, title string, opts ...ProposalOption) *domain.Proposal {
	now := time.Now().UTC()
	p := &domain.Proposal{
		ClientID:    clientID,
		Title:       title,
		BillingMode: domain.BillingHitos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Milestone options
type MilestoneOption func(*domain.Milestone)

func WithFeeUF(v string) MilestoneOption {
	return func(m *domain.Milestone) {
		d := decimal.RequireFromString(v)
		m.FeeUF = &d
	}
}

func WithDueDate(d time.Time) MilestoneOption {
	return func(m *domain.Milestone) {
		m.DueDate = &d
	}
}

func NewTestMilestone(proposalID int64, title string, opts ...MilestoneOption) *domain.Milestone {
	now := time.Now().UTC()
	m := &domain.Milestone{
		ProposalID: proposalID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewTestExpense(procedureID int64, reason, amountUF string) *domain.Expense {
	return &domain.Expense{
		ProcedureID:  procedureID,
		Reason:       reason,
		DocumentType: domain.DocOtro,
		AmountUF:     decimal.RequireFromString(amountUF),
		CreatedAt:    time.Now().UTC(),
	}
}

func NewTestTodo(procedureID int64, text string) *domain.Todo {
	now := time.Now().UTC()
	return &domain.Todo{
		ProcedureID: procedureID,
		Text:        text,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func NewTestWaterRight(procedureID int64) *domain.WaterRight {
	return &domain.WaterRight{
		ProcedureID: procedureID,
		Naturaleza:  domain.NaturalezaSubterraneo,
		Foja:        "1234",
		Numero:      "567",
		Anio:        2020,
		CBR:         "CBR Rancagua",
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestUFRate(date string, value string) *domain.UFRate {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &domain.UFRate{
		Date:  d,
		Value: decimal.RequireFromString(value),
	}
}
