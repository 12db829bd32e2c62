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

func newPropuestaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propuesta",
		Short: "Administrar propuestas de honorarios y sus hitos",
	}

	cmd.AddCommand(
		newPropuestaNuevaCmd(app),
		newPropuestaListaCmd(app),
		newPropuestaVerCmd(app),
		newPropuestaVincularCmd(app),
		newPropuestaEliminarCmd(app),
		newHitoCmd(app),
		newHitosCmd(app),
	)

	return cmd
}

func newPropuestaNuevaCmd(app *App) *cobra.Command {
	var clientID int64
	var titulo, descripcion, modalidad, honorarios, notas string

	cmd := &cobra.Command{
		Use:   "nueva",
		Short: "Crear una propuesta para un cliente",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.CreateProposalInput{
				ClientID:    clientID,
				Title:       titulo,
				Description: optStr(descripcion),
				BillingMode: domain.BillingMode(strings.ToUpper(modalidad)),
				Notes:       optStr(notas),
			}
			if honorarios != "" {
				fee, err := parseUF(honorarios)
				if err != nil {
					return err
				}
				in.TotalFeeUF = &fee
			}

			p, err := app.Proposals.Create(context.Background(), in)
			if err := notifyOutcome(cmd.OutOrStdout(), domain.EventProposalCreated, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Propuesta %d: %s (%s)\n", p.ID, p.Title, p.BillingMode)
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "cliente", 0, "ID del cliente")
	cmd.Flags().StringVar(&titulo, "titulo", "", "Título de la propuesta")
	cmd.Flags().StringVar(&descripcion, "descripcion", "", "Descripción")
	cmd.Flags().StringVar(&modalidad, "modalidad", "HITOS", "Modalidad de cobro (HITOS, HORA, MIXTO)")
	cmd.Flags().StringVar(&honorarios, "uf", "", "Honorarios totales en UF")
	cmd.Flags().StringVar(&notas, "notas", "", "Notas")
	_ = cmd.MarkFlagRequired("cliente")
	_ = cmd.MarkFlagRequired("titulo")

	return cmd
}

func newPropuestaListaCmd(app *App) *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "lista",
		Short: "Listar propuestas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var (
				proposals []*domain.Proposal
				err       error
			)
			if clientID > 0 {
				proposals, err = app.Proposals.ListByClient(ctx, clientID)
			} else {
				proposals, err = app.Proposals.List(ctx)
			}
			if err != nil {
				return err
			}
			if len(proposals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin propuestas.")
				return nil
			}

			rows := make([][]string, 0, len(proposals))
			for _, p := range proposals {
				rows = append(rows, []string{
					fmt.Sprintf("%d", p.ID), p.Title, string(p.BillingMode), domain.FormatUF(p.TotalFeeUF),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "PROPUESTA", "MODALIDAD", "HONORARIOS"}, rows))
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "cliente", 0, "Filtrar por cliente")
	return cmd
}

func newPropuestaVerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Ver una propuesta con sus hitos y gestiones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("propuesta", args[0])
			if err != nil {
				return err
			}
			detail, err := app.Proposals.GetDetail(context.Background(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := detail.Proposal

			fmt.Fprintln(out, formatter.Header(p.Title))
			fmt.Fprintf(out, "Cliente: %s [%s]\n", detail.Client.Name, detail.Client.RUT)
			fmt.Fprintf(out, "Modalidad: %s  Honorarios: %s\n", p.BillingMode, domain.FormatUF(p.TotalFeeUF))
			if p.Description != nil && *p.Description != "" {
				fmt.Fprintln(out, *p.Description)
			}

			if len(detail.Milestones) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Hitos"))
				rows := make([][]string, 0, len(detail.Milestones))
				for _, m := range detail.Milestones {
					estado := formatter.Dim("pendiente")
					fecha := domain.FormatDate(m.DueDate)
					if m.IsTriggered {
						estado = formatter.StyleGreen.Render("cumplido")
						fecha = domain.FormatDate(m.TriggeredAt)
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", m.ID), m.Title, domain.FormatUF(m.FeeUF), estado, fecha,
					})
				}
				fmt.Fprint(out, formatter.RenderTable([]string{"ID", "HITO", "UF", "ESTADO", "FECHA"}, rows))
			}

			if len(detail.Procedures) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Gestiones facturadas"))
				for _, proc := range detail.Procedures {
					fmt.Fprintf(out, "  %d. %s %s\n", proc.ID, proc.DisplayTitle(), formatter.StatusIndicator(proc.Status))
				}
			}
			return nil
		},
	}
}

func newPropuestaVincularCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vincular <propuesta> <gestión>",
		Short: "Facturar una gestión bajo una propuesta",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseID("propuesta", args[0])
			if err != nil {
				return err
			}
			procedureID, err := parseID("gestión", args[1])
			if err != nil {
				return err
			}
			err = app.Proposals.LinkToProcedure(context.Background(), proposalID, procedureID)
			return notifyOutcome(cmd.OutOrStdout(), domain.EventProposalLinked, err)
		},
	}
}

func newPropuestaEliminarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "eliminar <id>",
		Short: "Eliminar una propuesta (las gestiones quedan sin propuesta)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("propuesta", args[0])
			if err != nil {
				return err
			}
			return app.Proposals.Delete(context.Background(), id)
		},
	}
}

func newHitoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hito",
		Short: "Administrar hitos de una propuesta",
	}

	var titulo, uf, plazo, nota string
	agregar := &cobra.Command{
		Use:   "agregar <propuesta>",
		Short: "Agregar un hito de cobro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseID("propuesta", args[0])
			if err != nil {
				return err
			}
			in := service.CreateMilestoneInput{
				ProposalID: proposalID,
				Title:      titulo,
				Note:       optStr(nota),
			}
			if uf != "" {
				fee, err := parseUF(uf)
				if err != nil {
					return err
				}
				in.FeeUF = &fee
			}
			if in.DueDate, err = parseOptionalDate(plazo); err != nil {
				return err
			}

			m, err := app.Proposals.AddMilestone(context.Background(), in)
			if err := notifyOutcome(cmd.OutOrStdout(), domain.EventMilestoneCreated, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hito %d: %s %s\n", m.ID, m.Title, domain.FormatUF(m.FeeUF))
			return nil
		},
	}
	agregar.Flags().StringVar(&titulo, "titulo", "", "Título del hito")
	agregar.Flags().StringVar(&uf, "uf", "", "Monto del hito en UF")
	agregar.Flags().StringVar(&plazo, "plazo", "", "Fecha comprometida (YYYY-MM-DD)")
	agregar.Flags().StringVar(&nota, "nota", "", "Nota")
	_ = agregar.MarkFlagRequired("titulo")

	eliminar := &cobra.Command{
		Use:   "eliminar <hito>",
		Short: "Eliminar un hito (los pasos vinculados quedan sueltos)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("hito", args[0])
			if err != nil {
				return err
			}
			return app.Proposals.DeleteMilestone(context.Background(), id)
		},
	}

	cmd.AddCommand(agregar, eliminar)
	return cmd
}

func newHitosCmd(app *App) *cobra.Command {
	var clientID int64
	var estado string
	var mes, anio int

	cmd := &cobra.Command{
		Use:   "hitos",
		Short: "Consolidado de hitos de todas las propuestas",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := service.MilestoneFilter{Month: mes, Year: anio}
			if clientID > 0 {
				f.ClientID = &clientID
			}
			switch estado {
			case "":
			case "pendiente":
				v := false
				f.Triggered = &v
			case "cumplido":
				v := true
				f.Triggered = &v
			default:
				return fmt.Errorf("estado desconocido %q (pendiente o cumplido)", estado)
			}

			rows, err := app.Proposals.ListMilestones(context.Background(), f)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin hitos.")
				return nil
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				estado := formatter.Dim("pendiente")
				if r.Milestone.IsTriggered {
					estado = formatter.StyleGreen.Render("cumplido")
				}
				table = append(table, []string{
					r.ClientName,
					r.ProposalTitle,
					r.Milestone.Title,
					domain.FormatUF(r.Milestone.FeeUF),
					domain.FormatCLP(r.AmountCLP),
					domain.FormatDate(r.ReferenceDate),
					estado,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"CLIENTE", "PROPUESTA", "HITO", "UF", "CLP", "FECHA", "ESTADO"}, table))
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "cliente", 0, "Filtrar por cliente")
	cmd.Flags().StringVar(&estado, "estado", "", "pendiente o cumplido")
	cmd.Flags().IntVar(&mes, "mes", 0, "Mes de referencia (1-12, requiere --anio)")
	cmd.Flags().IntVar(&anio, "anio", 0, "Año de referencia")

	return cmd
}
