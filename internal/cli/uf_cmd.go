package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"caudal/internal/cli/formatter"
	"caudal/internal/domain"
)

func newUFCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uf",
		Short: "Valores UF y conversión a pesos",
	}

	cmd.AddCommand(
		newUFValorCmd(app),
		newUFListaCmd(app),
		newUFConvertirCmd(app),
	)

	return cmd
}

func newUFValorCmd(app *App) *cobra.Command {
	var fecha string

	cmd := &cobra.Command{
		Use:   "valor <valor>",
		Short: "Registrar el valor UF de una fecha (hoy por defecto)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseUF(args[0])
			if err != nil {
				return err
			}
			date := time.Now().UTC().Truncate(24 * time.Hour)
			if fecha != "" {
				if date, err = parseDate(fecha); err != nil {
					return err
				}
			}

			rate, err := app.UF.SetRate(context.Background(), date, value)
			if err != nil {
				return err
			}
			v := rate.Value
			fmt.Fprintf(cmd.OutOrStdout(), "UF %s = %s\n", rate.Date.Format("02-01-2006"), domain.FormatCLP(&v))
			return nil
		},
	}

	cmd.Flags().StringVar(&fecha, "fecha", "", "Fecha del valor (YYYY-MM-DD)")
	return cmd
}

func newUFListaCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "lista",
		Short: "Listar los últimos valores UF registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := app.UF.ListRates(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(rates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin valores UF registrados.")
				return nil
			}
			rows := make([][]string, 0, len(rates))
			for _, r := range rates {
				v := r.Value
				rows = append(rows, []string{r.Date.Format("02-01-2006"), domain.FormatCLP(&v)})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"FECHA", "VALOR"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limite", 30, "Máximo de filas")
	return cmd
}

func newUFConvertirCmd(app *App) *cobra.Command {
	var fecha string

	cmd := &cobra.Command{
		Use:   "convertir <uf>",
		Short: "Convertir un monto UF a pesos con el valor vigente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUF(args[0])
			if err != nil {
				return err
			}
			date := time.Now().UTC()
			if fecha != "" {
				if date, err = parseDate(fecha); err != nil {
					return err
				}
			}

			conv, err := app.UF.ToCLP(context.Background(), amount, date)
			if err != nil {
				return err
			}
			rv := conv.Rate.Value
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s %s\n",
				domain.FormatUF(&conv.AmountUF),
				domain.FormatCLP(&conv.AmountCLP),
				formatter.Dim(fmt.Sprintf("(UF del %s: %s)", conv.Rate.Date.Format("02-01-2006"), domain.FormatCLP(&rv))))
			return nil
		},
	}

	cmd.Flags().StringVar(&fecha, "fecha", "", "Fecha de referencia (YYYY-MM-DD)")
	return cmd
}
