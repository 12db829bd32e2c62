package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"caudal/internal/cli/formatter"
	"caudal/internal/importer"
)

func newImportarCmd(app *App) *cobra.Command {
	var soloValidar bool

	cmd := &cobra.Command{
		Use:   "importar <archivo.json>",
		Short: "Importar un respaldo JSON de la herramienta anterior",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidateSnapshot(schema); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
				}
				return fmt.Errorf("el archivo tiene %d problema(s)", len(errs))
			}
			if soloValidar {
				fmt.Fprintln(cmd.OutOrStdout(), "Archivo válido.")
				return nil
			}

			snap, err := importer.Convert(schema)
			if err != nil {
				return err
			}
			stats, err := app.Import.ImportSnapshot(context.Background(), snap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Bold("Importación completada."))
			fmt.Fprintf(out, "  Clientes: %d  Propuestas: %d  Hitos: %d\n",
				stats.Clients, stats.Proposals, stats.Milestones)
			fmt.Fprintf(out, "  Gestiones: %d  Pasos: %d  Gastos: %d  Pendientes: %d  Derechos: %d\n",
				stats.Procedures, stats.Steps, stats.Expenses, stats.Todos, stats.WaterRights)
			if stats.Rates > 0 {
				fmt.Fprintf(out, "  Valores UF: %d\n", stats.Rates)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&soloValidar, "solo-validar", false, "Validar el archivo sin importar")
	return cmd
}
