package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"caudal/internal/catalog"
	"caudal/internal/domain"
	"caudal/internal/importer"
	"caudal/internal/repository"
)

// CreateClientInput carries the fields of a client intake.
type CreateClientInput struct {
	RUT      string
	Name     string
	Alias    *string
	Email    *string
	Phone    *string
	Notes    *string
	Contacts []domain.Contact
}

// UpdateClientInput mutates an existing client. Nil fields are left as-is;
// RUT and Name replace only when non-empty.
type UpdateClientInput struct {
	ID       int64
	RUT      string
	Name     string
	Alias    *string
	Email    *string
	Phone    *string
	Notes    *string
	Contacts []domain.Contact
}

// ClientDetail is a client together with its procedures and proposals.
type ClientDetail struct {
	Client     *domain.Client
	Procedures []*domain.Procedure
	Proposals  []*domain.Proposal
}

type ClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetDetail(ctx context.Context, id int64) (*ClientDetail, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
}

// CreateProcedureInput carries the fields of a new procedure. TypeKey is a
// catalog template key or domain.TypeCustom; IncludeGroups selects optional
// template groups; CustomSteps is used only in custom mode.
type CreateProcedureInput struct {
	ClientID      int64
	TypeKey       string
	IncludeGroups []string
	CustomSteps   []string
	Title         *string
	Region        *string
	Province      *string
	GeneralInfo   *string
	Tags          []string
	ProposalID    *int64
}

// UpdateProcedureInput mutates procedure metadata. Nil fields are left as-is.
type UpdateProcedureInput struct {
	ID          int64
	Title       *string
	Region      *string
	Province    *string
	GeneralInfo *string
	ProposalID  *int64
}

// ProcedureDetail aggregates everything the detail view renders.
type ProcedureDetail struct {
	Procedure    *domain.Procedure
	Client       *domain.Client
	Steps        []*domain.Step
	Expenses     []*domain.Expense
	Todos        []*domain.Todo
	WaterRights  []*domain.WaterRight
	Stages       []catalog.Stage
	CurrentStage string
}

// CreateExpenseInput carries the fields of a new expense entry.
type CreateExpenseInput struct {
	ProcedureID    int64
	Reason         string
	DocumentType   domain.DocumentType
	DocumentNumber *string
	AmountUF       decimal.Decimal
	Organism       *string
	PaidAt         *time.Time
	BilledAt       *time.Time
}

// CreateWaterRightInput carries the CBR inscription of a new water right.
type CreateWaterRightInput struct {
	ProcedureID int64
	Naturaleza  domain.Naturaleza
	Foja        string
	Numero      string
	Anio        int
	CBR         string
}

type ProcedureService interface {
	Create(ctx context.Context, in CreateProcedureInput) (*domain.Procedure, error)
	CreateWithClient(ctx context.Context, client CreateClientInput, in CreateProcedureInput) (*domain.Client, *domain.Procedure, error)
	GetByID(ctx context.Context, id int64) (*domain.Procedure, error)
	GetDetail(ctx context.Context, id int64) (*ProcedureDetail, error)
	List(ctx context.Context, f repository.ProcedureFilter) ([]*domain.Procedure, error)
	Update(ctx context.Context, in UpdateProcedureInput) error
	SetTags(ctx context.Context, id int64, tags []string) error
	ToggleTag(ctx context.Context, id int64, tag string) error
	SetStatus(ctx context.Context, id int64, status domain.Status) error
	MoveToStage(ctx context.Context, id int64, stageKey string, strict bool) error
	Delete(ctx context.Context, id int64) error

	AddStep(ctx context.Context, procedureID int64, title string) (*domain.Step, error)
	SetStepDone(ctx context.Context, stepID int64, done bool) (*domain.Milestone, error)
	CommentStep(ctx context.Context, stepID int64, comment string) error
	LinkStepMilestone(ctx context.Context, stepID int64, milestoneID *int64) error

	AddExpense(ctx context.Context, in CreateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID int64) error
	AddTodo(ctx context.Context, procedureID int64, text string, dueDate *time.Time) (*domain.Todo, error)
	ToggleTodo(ctx context.Context, todoID int64) error
	DeleteTodo(ctx context.Context, todoID int64) error
	AddWaterRight(ctx context.Context, in CreateWaterRightInput) (*domain.WaterRight, error)
	DeleteWaterRight(ctx context.Context, waterRightID int64) error
}

// CreateProposalInput carries the fields of a new proposal.
type CreateProposalInput struct {
	ClientID    int64
	Title       string
	Description *string
	BillingMode domain.BillingMode
	TotalFeeUF  *decimal.Decimal
	Notes       *string
}

// CreateMilestoneInput carries the fields of a new milestone.
type CreateMilestoneInput struct {
	ProposalID int64
	Title      string
	FeeUF      *decimal.Decimal
	DueDate    *time.Time
	Note       *string
}

// ProposalDetail aggregates a proposal with its client, milestones and
// linked procedures.
type ProposalDetail struct {
	Proposal   *domain.Proposal
	Client     *domain.Client
	Milestones []*domain.Milestone
	Procedures []*domain.Procedure
}

// MilestoneFilter narrows the consolidated milestone listing. Month and Year
// apply together; the reference date is the trigger date for triggered
// milestones, otherwise the due date.
type MilestoneFilter struct {
	ClientID  *int64
	Triggered *bool
	Month     int
	Year      int
}

// MilestoneRow is one line of the consolidated milestone listing. AmountCLP
// and Rate are nil when the milestone has no fee, no reference date, or no
// rate is loaded for it.
type MilestoneRow struct {
	repository.MilestoneOverview
	ReferenceDate *time.Time
	AmountCLP     *decimal.Decimal
	Rate          *domain.UFRate
}

type ProposalService interface {
	Create(ctx context.Context, in CreateProposalInput) (*domain.Proposal, error)
	GetByID(ctx context.Context, id int64) (*domain.Proposal, error)
	GetDetail(ctx context.Context, id int64) (*ProposalDetail, error)
	List(ctx context.Context) ([]*domain.Proposal, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Proposal, error)
	Update(ctx context.Context, p *domain.Proposal) error
	Delete(ctx context.Context, id int64) error

	AddMilestone(ctx context.Context, in CreateMilestoneInput) (*domain.Milestone, error)
	ListMilestones(ctx context.Context, f MilestoneFilter) ([]MilestoneRow, error)
	UpdateMilestone(ctx context.Context, m *domain.Milestone) error
	DeleteMilestone(ctx context.Context, id int64) error
	LinkToProcedure(ctx context.Context, proposalID, procedureID int64) error
}

// BoardModeEstado groups procedures by status; BoardModeEtapas groups the
// procedures of one type by their inferred stage.
const (
	BoardModeEstado = "estado"
	BoardModeEtapas = "etapas"
)

// BoardPageSize is the per-column page size of the kanban board.
const BoardPageSize = 25

// BoardFilter narrows the board. Category selects every type sharing a
// template-category prefix and yields to an explicit Type. Tags are ANDed.
// Order takes the repository sort constants; empty means last action first.
// Skip carries a per-column offset keyed by column key.
type BoardFilter struct {
	ClientID *int64
	Type     *string
	Category *string
	Region   *string
	Province *string
	Tags     []string
	Order    string
	Skip     map[string]int
}

// BoardColumn is one rendered kanban column.
type BoardColumn struct {
	Key     string
	Label   string
	Cards   []repository.ProcedureCard
	HasMore bool
}

// BoardView is the assembled kanban board.
type BoardView struct {
	Mode     string
	Columns  []BoardColumn
	TypeTabs []string
}

type BoardService interface {
	Board(ctx context.Context, mode string, f BoardFilter) (*BoardView, error)
}

// RateConversion is a UF amount converted to pesos with the rate used.
type RateConversion struct {
	AmountUF  decimal.Decimal
	AmountCLP decimal.Decimal
	Rate      *domain.UFRate
}

type UFService interface {
	SetRate(ctx context.Context, date time.Time, value decimal.Decimal) (*domain.UFRate, error)
	RateFor(ctx context.Context, date time.Time) (*domain.UFRate, error)
	Latest(ctx context.Context) (*domain.UFRate, error)
	ListRates(ctx context.Context, limit int) ([]*domain.UFRate, error)
	ToCLP(ctx context.Context, amountUF decimal.Decimal, date time.Time) (*RateConversion, error)
}

// ImportStats counts the records persisted by a snapshot import.
type ImportStats struct {
	Clients     int
	Proposals   int
	Milestones  int
	Procedures  int
	Steps       int
	Expenses    int
	Todos       int
	WaterRights int
	Rates       int
}

// ImportService persists a migration snapshot atomically: either every
// record in the file lands or none do.
type ImportService interface {
	ImportSnapshot(ctx context.Context, snap *importer.Snapshot) (*ImportStats, error)
}
