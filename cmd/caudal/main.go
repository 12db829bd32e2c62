package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"caudal/internal/cli"
	"caudal/internal/db"
	"caudal/internal/repository"
	"caudal/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.caudal/caudal.db
	dbPath := os.Getenv("CAUDAL_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".caudal", "caudal.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Structured logging goes to a file next to the DB; stdout stays clean
	// for command output. CAUDAL_DEBUG=1 switches to stderr at debug level.
	logger, err := newLogger(dbPath)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	// Wire repositories
	clientRepo := repository.NewSQLiteClientRepo(database)
	procedureRepo := repository.NewSQLiteProcedureRepo(database)
	stepRepo := repository.NewSQLiteStepRepo(database)
	proposalRepo := repository.NewSQLiteProposalRepo(database)
	milestoneRepo := repository.NewSQLiteMilestoneRepo(database)
	expenseRepo := repository.NewSQLiteExpenseRepo(database)
	todoRepo := repository.NewSQLiteTodoRepo(database)
	waterRightRepo := repository.NewSQLiteWaterRightRepo(database)
	ufRateRepo := repository.NewSQLiteUFRateRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	observer := service.NewZapUseCaseObserver(logger)

	app := &cli.App{
		Clients: service.NewClientService(clientRepo, procedureRepo, proposalRepo, uow, observer),
		Procedures: service.NewProcedureService(clientRepo, procedureRepo, stepRepo,
			milestoneRepo, expenseRepo, todoRepo, waterRightRepo, uow, observer),
		Proposals: service.NewProposalService(clientRepo, procedureRepo, proposalRepo,
			milestoneRepo, ufRateRepo, uow, observer),
		Board:  service.NewBoardService(procedureRepo, stepRepo),
		UF:     service.NewUFService(ufRateRepo),
		Import: service.NewImportService(uow, observer),
	}

	// Detect interactive terminal for the intake wizard.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

func newLogger(dbPath string) (*zap.Logger, error) {
	if os.Getenv("CAUDAL_DEBUG") != "" {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	if dbPath != ":memory:" {
		cfg.OutputPaths = []string{filepath.Join(filepath.Dir(dbPath), "caudal.log")}
		cfg.ErrorOutputPaths = cfg.OutputPaths
	}
	return cfg.Build()
}
