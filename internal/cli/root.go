package cli

import (
	"github.com/spf13/cobra"

	"caudal/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Clients    service.ClientService
	Procedures service.ProcedureService
	Proposals  service.ProposalService
	Board      service.BoardService
	UF         service.UFService
	Import     service.ImportService

	// IsInteractive reports whether stdin is a terminal; the intake wizard
	// refuses to run without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "caudal" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "caudal",
		Short: "Registro de clientes, gestiones y propuestas de derechos de aguas",
	}

	root.AddCommand(
		newClienteCmd(app),
		newGestionCmd(app),
		newPropuestaCmd(app),
		newTableroCmd(app),
		newUFCmd(app),
		newImportarCmd(app),
	)

	return root
}
