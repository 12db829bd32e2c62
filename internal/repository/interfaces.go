package repository

import (
	"context"
	"errors"
	"time"

	"caudal/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Sort orders accepted by List and ListCards. The default is last action,
// newest first.
const (
	OrderLastActionDesc = "last_action_desc"
	OrderLastActionAsc  = "last_action_asc"
	OrderCreatedDesc    = "created_desc"
	OrderCreatedAsc     = "created_asc"
)

// ProcedureFilter narrows procedure listings. Nil fields are ignored.
// Each tag matches a substring of the general info, which is where tags
// live, so "#Delegable" finds tagged procedures; several tags are ANDed.
// TypePrefix matches a template-category prefix such as "ADM_" and applies
// only when Type is unset, since an explicit type is already narrower.
type ProcedureFilter struct {
	ClientID   *int64
	Type       *string
	TypePrefix *string
	Status     *domain.Status
	Region     *string
	Province   *string
	Tags       []string
	Order      string
	Limit      int
	Offset     int
}

// ProcedureCard is a joined view of a procedure with its client and step
// progress, used by the board for rendering columns.
type ProcedureCard struct {
	Procedure  domain.Procedure
	ClientName string
	ClientRUT  string
	DoneSteps  int
	TotalSteps int
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByRUT(ctx context.Context, rut string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id int64) error
}

type ProcedureRepo interface {
	Create(ctx context.Context, p *domain.Procedure) error
	GetByID(ctx context.Context, id int64) (*domain.Procedure, error)
	List(ctx context.Context, f ProcedureFilter) ([]*domain.Procedure, error)
	ListCards(ctx context.Context, f ProcedureFilter) ([]ProcedureCard, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Procedure, error)
	ListTypes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, p *domain.Procedure) error
	TouchLastAction(ctx context.Context, id int64, at time.Time) error
	UnlinkProposal(ctx context.Context, proposalID int64) error
	Delete(ctx context.Context, id int64) error
}

type StepRepo interface {
	Create(ctx context.Context, s *domain.Step) error
	GetByID(ctx context.Context, id int64) (*domain.Step, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Step, error)
	MaxOrder(ctx context.Context, procedureID int64) (int, error)
	Update(ctx context.Context, s *domain.Step) error
	UnlinkMilestone(ctx context.Context, milestoneID int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByProcedure(ctx context.Context, procedureID int64) error
}

type ProposalRepo interface {
	Create(ctx context.Context, p *domain.Proposal) error
	GetByID(ctx context.Context, id int64) (*domain.Proposal, error)
	List(ctx context.Context) ([]*domain.Proposal, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Proposal, error)
	Update(ctx context.Context, p *domain.Proposal) error
	Delete(ctx context.Context, id int64) error
}

// MilestoneOverview is a milestone with the proposal and client context the
// consolidated listing shows.
type MilestoneOverview struct {
	Milestone     domain.Milestone
	ProposalTitle string
	ClientID      int64
	ClientName    string
}

type MilestoneRepo interface {
	Create(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id int64) (*domain.Milestone, error)
	ListByProposal(ctx context.Context, proposalID int64) ([]*domain.Milestone, error)
	ListOverview(ctx context.Context, clientID *int64) ([]MilestoneOverview, error)
	Update(ctx context.Context, m *domain.Milestone) error
	Delete(ctx context.Context, id int64) error
	DeleteByProposal(ctx context.Context, proposalID int64) error
}

type ExpenseRepo interface {
	Create(ctx context.Context, e *domain.Expense) error
	GetByID(ctx context.Context, id int64) (*domain.Expense, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) error
	Delete(ctx context.Context, id int64) error
	DeleteByProcedure(ctx context.Context, procedureID int64) error
}

type TodoRepo interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Todo, error)
	Update(ctx context.Context, t *domain.Todo) error
	Delete(ctx context.Context, id int64) error
	DeleteByProcedure(ctx context.Context, procedureID int64) error
}

type WaterRightRepo interface {
	Create(ctx context.Context, w *domain.WaterRight) error
	GetByID(ctx context.Context, id int64) (*domain.WaterRight, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.WaterRight, error)
	Delete(ctx context.Context, id int64) error
	DeleteByProcedure(ctx context.Context, procedureID int64) error
}

type UFRateRepo interface {
	Upsert(ctx context.Context, r *domain.UFRate) error
	GetAtOrBefore(ctx context.Context, date time.Time) (*domain.UFRate, error)
	Latest(ctx context.Context) (*domain.UFRate, error)
	List(ctx context.Context, limit int) ([]*domain.UFRate, error)
}
