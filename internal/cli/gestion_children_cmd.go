package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"caudal/internal/cli/formatter"
	"caudal/internal/domain"
	"caudal/internal/service"
)

func newPasoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paso",
		Short: "Administrar los pasos del checklist",
	}

	agregar := &cobra.Command{
		Use:   "agregar <gestión> <título>",
		Short: "Agregar un paso al final del checklist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			s, err := app.Procedures.AddStep(context.Background(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paso %d (orden %d): %s\n", s.ID, s.Order, s.Title)
			return nil
		},
	}

	var pendiente bool
	listo := &cobra.Command{
		Use:   "listo <paso>",
		Short: "Marcar un paso como hecho (o pendiente con --pendiente)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("paso", args[0])
			if err != nil {
				return err
			}
			m, err := app.Procedures.SetStepDone(context.Background(), id, !pendiente)
			if err != nil {
				return err
			}
			if m != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Hito gatillado: %s (%s)\n",
					formatter.StyleGreen.Render("✓"), m.Title, domain.FormatUF(m.FeeUF))
			}
			return nil
		},
	}
	listo.Flags().BoolVar(&pendiente, "pendiente", false, "Volver a dejar el paso pendiente")

	comentar := &cobra.Command{
		Use:   "comentar <paso> [texto]",
		Short: "Comentar un paso (sin texto borra el comentario)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("paso", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.CommentStep(context.Background(), id, strings.Join(args[1:], " "))
		},
	}

	var hitoID int64
	hito := &cobra.Command{
		Use:   "hito <paso>",
		Short: "Vincular un paso a un hito de propuesta (--hito 0 desvincula)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("paso", args[0])
			if err != nil {
				return err
			}
			var link *int64
			if hitoID > 0 {
				link = &hitoID
			}
			return app.Procedures.LinkStepMilestone(context.Background(), id, link)
		},
	}
	hito.Flags().Int64Var(&hitoID, "hito", 0, "ID del hito (0 para desvincular)")

	cmd.AddCommand(agregar, listo, comentar, hito)
	return cmd
}

func newGastoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gasto",
		Short: "Administrar gastos de una gestión",
	}

	var (
		motivo, documento, numero, organismo string
		monto, pagado, facturado             string
	)
	agregar := &cobra.Command{
		Use:   "agregar <gestión>",
		Short: "Registrar un gasto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			amount, err := parseUF(monto)
			if err != nil {
				return err
			}
			paidAt, err := parseOptionalDate(pagado)
			if err != nil {
				return err
			}
			billedAt, err := parseOptionalDate(facturado)
			if err != nil {
				return err
			}

			e, err := app.Procedures.AddExpense(context.Background(), service.CreateExpenseInput{
				ProcedureID:    id,
				Reason:         motivo,
				DocumentType:   domain.DocumentType(strings.ToUpper(documento)),
				DocumentNumber: optStr(numero),
				AmountUF:       amount,
				Organism:       optStr(organismo),
				PaidAt:         paidAt,
				BilledAt:       billedAt,
			})
			if err != nil {
				return err
			}
			uf := e.AmountUF
			fmt.Fprintf(cmd.OutOrStdout(), "Gasto %d: %s %s\n", e.ID, e.Reason, domain.FormatUF(&uf))
			return nil
		},
	}
	agregar.Flags().StringVar(&motivo, "motivo", "", "Motivo del gasto")
	agregar.Flags().StringVar(&monto, "uf", "", "Monto en UF")
	agregar.Flags().StringVar(&documento, "documento", "", "Tipo de documento (BOLETA, FACTURA, OTRO)")
	agregar.Flags().StringVar(&numero, "numero", "", "Número de documento")
	agregar.Flags().StringVar(&organismo, "organismo", "", "Organismo receptor")
	agregar.Flags().StringVar(&pagado, "pagado", "", "Fecha de pago (YYYY-MM-DD)")
	agregar.Flags().StringVar(&facturado, "facturado", "", "Fecha de facturación (YYYY-MM-DD)")
	_ = agregar.MarkFlagRequired("motivo")
	_ = agregar.MarkFlagRequired("uf")

	eliminar := &cobra.Command{
		Use:   "eliminar <gasto>",
		Short: "Eliminar un gasto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gasto", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.DeleteExpense(context.Background(), id)
		},
	}

	cmd.AddCommand(agregar, eliminar)
	return cmd
}

func newPendienteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pendiente",
		Short: "Administrar la lista de pendientes de una gestión",
	}

	var plazo string
	agregar := &cobra.Command{
		Use:   "agregar <gestión> <texto>",
		Short: "Agregar un pendiente",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			due, err := parseOptionalDate(plazo)
			if err != nil {
				return err
			}
			td, err := app.Procedures.AddTodo(context.Background(), id, strings.Join(args[1:], " "), due)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pendiente %d: %s\n", td.ID, td.Text)
			return nil
		},
	}
	agregar.Flags().StringVar(&plazo, "plazo", "", "Fecha límite (YYYY-MM-DD)")

	listo := &cobra.Command{
		Use:   "listo <pendiente>",
		Short: "Alternar un pendiente entre hecho y no hecho",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("pendiente", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.ToggleTodo(context.Background(), id)
		},
	}

	eliminar := &cobra.Command{
		Use:   "eliminar <pendiente>",
		Short: "Eliminar un pendiente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("pendiente", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.DeleteTodo(context.Background(), id)
		},
	}

	cmd.AddCommand(agregar, listo, eliminar)
	return cmd
}

func newDerechoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derecho",
		Short: "Administrar derechos de agua de una gestión",
	}

	var naturaleza, foja, numero, cbr string
	var anio int
	agregar := &cobra.Command{
		Use:   "agregar <gestión>",
		Short: "Registrar la inscripción CBR de un derecho",
		Long: "Registra un derecho identificado por su inscripción (foja, número, año,\n" +
			"conservador). Las inscripciones incompletas se descartan en silencio.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			w, err := app.Procedures.AddWaterRight(context.Background(), service.CreateWaterRightInput{
				ProcedureID: id,
				Naturaleza:  domain.Naturaleza(strings.ToUpper(naturaleza)),
				Foja:        foja,
				Numero:      numero,
				Anio:        anio,
				CBR:         cbr,
			})
			if err != nil {
				return err
			}
			if w == nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Inscripción incompleta: no se registró."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Derecho %d: fs. %s N°%s/%d %s\n", w.ID, w.Foja, w.Numero, w.Anio, w.CBR)
			return nil
		},
	}
	agregar.Flags().StringVar(&naturaleza, "naturaleza", "SUBTERRANEO", "SUBTERRANEO o SUPERFICIAL")
	agregar.Flags().StringVar(&foja, "foja", "", "Foja de la inscripción")
	agregar.Flags().StringVar(&numero, "numero", "", "Número de la inscripción")
	agregar.Flags().IntVar(&anio, "anio", 0, "Año de la inscripción")
	agregar.Flags().StringVar(&cbr, "cbr", "", "Conservador de Bienes Raíces")

	eliminar := &cobra.Command{
		Use:   "eliminar <derecho>",
		Short: "Eliminar un derecho de agua",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("derecho", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.DeleteWaterRight(context.Background(), id)
		},
	}

	cmd.AddCommand(agregar, eliminar)
	return cmd
}
