package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"caudal/internal/cli/formatter"
	"caudal/internal/service"
)

func newTableroCmd(app *App) *cobra.Command {
	var modo, tipo, categoria, orden, region, provincia string
	var tags []string
	var clientID int64
	var skips []string

	cmd := &cobra.Command{
		Use:   "tablero",
		Short: "Tablero kanban de gestiones",
		Long: "En modo estado las columnas son Pendiente / En curso / Terminada; en\n" +
			"modo etapas son las etapas inferidas de la plantilla de un tipo.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := service.BoardFilter{}
			if clientID > 0 {
				f.ClientID = &clientID
			}
			if tipo != "" {
				f.Type = &tipo
			}
			if categoria != "" {
				if _, err := categoryPrefix(categoria); err != nil {
					return err
				}
				cat := strings.ToUpper(categoria)
				f.Category = &cat
			}
			order, err := parseOrden(orden)
			if err != nil {
				return err
			}
			f.Order = order
			f.Tags = tags
			if region != "" || provincia != "" {
				if err := validateUbicacion(region, provincia); err != nil {
					return err
				}
				if region != "" {
					f.Region = &region
				}
				if provincia != "" {
					f.Province = &provincia
				}
			}
			skip, err := parseSkips(skips)
			if err != nil {
				return err
			}
			f.Skip = skip

			view, err := app.Board.Board(context.Background(), modo, f)
			if err != nil {
				return err
			}
			printBoard(cmd, view)
			return nil
		},
	}

	cmd.Flags().StringVar(&modo, "modo", service.BoardModeEstado, "estado o etapas")
	cmd.Flags().StringVar(&tipo, "tipo", "", "Tipo de gestión (pestaña en modo etapas)")
	cmd.Flags().StringVar(&categoria, "categoria", "", "Filtrar por categoría (ADMIN, JUDICIAL, OTROS, CORRETAJE)")
	cmd.Flags().StringVar(&orden, "orden", "accion_desc", "Orden de las tarjetas: accion_desc, accion_asc, creacion_desc o creacion_asc")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Filtrar por tag (repetible, se combinan)")
	cmd.Flags().StringVar(&region, "region", "", "Filtrar por región")
	cmd.Flags().StringVar(&provincia, "provincia", "", "Filtrar por provincia")
	cmd.Flags().Int64Var(&clientID, "cliente", 0, "Filtrar por cliente")
	cmd.Flags().StringArrayVar(&skips, "saltar", nil, "Desplazamiento por columna, \"columna=N\" (repetible)")

	return cmd
}

// parseSkips parses repeated "column=N" values into the per-column offset map.
func parseSkips(values []string) (map[string]int, error) {
	if len(values) == 0 {
		return nil, nil
	}
	skip := make(map[string]int, len(values))
	for _, v := range values {
		col, numStr, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("desplazamiento inválido %q (use columna=N)", v)
		}
		var n int
		if _, err := fmt.Sscanf(numStr, "%d", &n); err != nil || n < 0 {
			return nil, fmt.Errorf("desplazamiento inválido %q (use columna=N)", v)
		}
		skip[col] = n
	}
	return skip, nil
}

func printBoard(cmd *cobra.Command, view *service.BoardView) {
	out := cmd.OutOrStdout()

	if len(view.TypeTabs) > 0 {
		fmt.Fprintf(out, "Tipos: %s\n\n", formatter.Dim(strings.Join(view.TypeTabs, "  ")))
	}

	for _, col := range view.Columns {
		header := fmt.Sprintf("%s (%d)", col.Label, len(col.Cards))
		fmt.Fprintln(out, formatter.Header(header))
		if len(col.Cards) == 0 {
			fmt.Fprintln(out, formatter.Dim("  —"))
		}
		for _, card := range col.Cards {
			p := card.Procedure
			fmt.Fprintf(out, "  %d. %s %s\n", p.ID, p.DisplayTitle(),
				formatter.Dim(fmt.Sprintf("[%s, %d/%d]", card.ClientName, card.DoneSteps, card.TotalSteps)))
		}
		if col.HasMore {
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("  … más (use --saltar %s=N)", col.Key)))
		}
		fmt.Fprintln(out)
	}
}
