package service

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"caudal/internal/repository"
	"caudal/internal/testutil"
)

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db         *sql.DB
	clients    ClientService
	procedures ProcedureService
	proposals  ProposalService
	board      BoardService
	uf         UFService
	imports    ImportService

	clientRepo     repository.ClientRepo
	procedureRepo  repository.ProcedureRepo
	stepRepo       repository.StepRepo
	proposalRepo   repository.ProposalRepo
	milestoneRepo  repository.MilestoneRepo
	expenseRepo    repository.ExpenseRepo
	todoRepo       repository.TodoRepo
	waterRightRepo repository.WaterRightRepo
	ufRateRepo     repository.UFRateRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	env := &testEnv{
		db:             database,
		clientRepo:     repository.NewSQLiteClientRepo(database),
		procedureRepo:  repository.NewSQLiteProcedureRepo(database),
		stepRepo:       repository.NewSQLiteStepRepo(database),
		proposalRepo:   repository.NewSQLiteProposalRepo(database),
		milestoneRepo:  repository.NewSQLiteMilestoneRepo(database),
		expenseRepo:    repository.NewSQLiteExpenseRepo(database),
		todoRepo:       repository.NewSQLiteTodoRepo(database),
		waterRightRepo: repository.NewSQLiteWaterRightRepo(database),
		ufRateRepo:     repository.NewSQLiteUFRateRepo(database),
	}
	env.clients = NewClientService(env.clientRepo, env.procedureRepo, env.proposalRepo, uow)
	env.procedures = NewProcedureService(env.clientRepo, env.procedureRepo, env.stepRepo,
		env.milestoneRepo, env.expenseRepo, env.todoRepo, env.waterRightRepo, uow)
	env.proposals = NewProposalService(env.clientRepo, env.procedureRepo, env.proposalRepo, env.milestoneRepo, env.ufRateRepo, uow)
	env.board = NewBoardService(env.procedureRepo, env.stepRepo)
	env.uf = NewUFService(env.ufRateRepo)
	env.imports = NewImportService(uow)
	return env
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parsing decimal %q: %v", s, err)
	}
	return d
}

// countRows returns the row count of a table.
func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
