package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"caudal/internal/catalog"
	"caudal/internal/cli/formatter"
	"caudal/internal/domain"
	"caudal/internal/repository"
	"caudal/internal/service"
)

// repositoryFilter assembles the shared procedure filter from flag values.
func repositoryFilter(clientID int64, tipo, estado string, tags []string) repository.ProcedureFilter {
	var f repository.ProcedureFilter
	if clientID > 0 {
		f.ClientID = &clientID
	}
	if tipo != "" {
		f.Type = &tipo
	}
	if estado != "" {
		s := domain.Status(strings.ToUpper(estado))
		f.Status = &s
	}
	f.Tags = tags
	return f
}

// categoryPrefix resolves a category flag to its template-key prefix.
func categoryPrefix(categoria string) (string, error) {
	prefix, ok := catalog.CategoryPrefix[catalog.Category(strings.ToUpper(categoria))]
	if !ok {
		return "", fmt.Errorf("categoría desconocida %q (use ADMIN, JUDICIAL, OTROS o CORRETAJE)", categoria)
	}
	return prefix, nil
}

// parseOrden maps the --orden flag to a repository sort order.
func parseOrden(orden string) (string, error) {
	switch orden {
	case "", "accion_desc":
		return repository.OrderLastActionDesc, nil
	case "accion_asc":
		return repository.OrderLastActionAsc, nil
	case "creacion_desc":
		return repository.OrderCreatedDesc, nil
	case "creacion_asc":
		return repository.OrderCreatedAsc, nil
	default:
		return "", fmt.Errorf("orden desconocido %q (use accion_desc, accion_asc, creacion_desc o creacion_asc)", orden)
	}
}

func newGestionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gestion",
		Short: "Administrar gestiones y sus etapas",
	}

	cmd.AddCommand(
		newGestionNuevaCmd(app),
		newGestionListaCmd(app),
		newGestionVerCmd(app),
		newGestionEditarCmd(app),
		newGestionEstadoCmd(app),
		newGestionEtapaCmd(app),
		newGestionTagCmd(app),
		newGestionTagsCmd(app),
		newGestionEliminarCmd(app),
		newPasoCmd(app),
		newGastoCmd(app),
		newPendienteCmd(app),
		newDerechoCmd(app),
		newTiposCmd(),
	)

	return cmd
}

func validateUbicacion(region, province string) error {
	if region == "" {
		if province != "" {
			return fmt.Errorf("provincia %q requiere una región", province)
		}
		return nil
	}
	if _, ok := catalog.FindRegion(region); !ok {
		return fmt.Errorf("región desconocida %q", region)
	}
	if province != "" && !catalog.ValidProvince(region, province) {
		return fmt.Errorf("provincia %q no pertenece a la región %q", province, region)
	}
	return nil
}

func newGestionNuevaCmd(app *App) *cobra.Command {
	var (
		clientID            int64
		tipo, titulo        string
		region, provincia   string
		info                string
		grupos, pasos, tags []string
		proposalID          int64
		rut, nombre         string
		interactive         bool
	)

	cmd := &cobra.Command{
		Use:   "nueva",
		Short: "Crear una gestión desde plantilla o con pasos propios",
		Long: "Crea una gestión para un cliente existente (--cliente) o junto a un\n" +
			"cliente nuevo (--rut y --nombre). Con -i se abre el asistente interactivo.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runIntakeWizard(app, cmd.OutOrStdout())
			}
			if err := validateUbicacion(region, provincia); err != nil {
				return err
			}

			in := service.CreateProcedureInput{
				ClientID:      clientID,
				TypeKey:       tipo,
				IncludeGroups: grupos,
				CustomSteps:   pasos,
				Title:         optStr(titulo),
				Region:        optStr(region),
				Province:      optStr(provincia),
				GeneralInfo:   optStr(info),
				Tags:          tags,
			}
			if proposalID > 0 {
				in.ProposalID = &proposalID
			}

			ctx := context.Background()
			if clientID == 0 {
				client := service.CreateClientInput{RUT: rut, Name: nombre}
				c, p, err := app.Procedures.CreateWithClient(ctx, client, in)
				if err := notifyOutcome(cmd.OutOrStdout(), domain.EventClientAndProcedureCreated, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cliente %d, gestión %d: %s\n", c.ID, p.ID, p.DisplayTitle())
				return nil
			}

			p, err := app.Procedures.Create(ctx, in)
			if err := notifyOutcome(cmd.OutOrStdout(), domain.EventProcedureCreated, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gestión %d: %s\n", p.ID, p.DisplayTitle())
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "cliente", 0, "ID del cliente existente")
	cmd.Flags().StringVar(&tipo, "tipo", "", "Clave de plantilla (ver \"gestion tipos\") o CUSTOM")
	cmd.Flags().StringArrayVar(&grupos, "grupo", nil, "Grupo opcional de la plantilla a incluir (repetible)")
	cmd.Flags().StringArrayVar(&pasos, "paso", nil, "Paso propio en modo CUSTOM (repetible)")
	cmd.Flags().StringVar(&titulo, "titulo", "", "Título de la gestión")
	cmd.Flags().StringVar(&region, "region", "", "Región")
	cmd.Flags().StringVar(&provincia, "provincia", "", "Provincia")
	cmd.Flags().StringVar(&info, "info", "", "Información general")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag inicial, p. ej. #Prioridad (repetible)")
	cmd.Flags().Int64Var(&proposalID, "propuesta", 0, "ID de propuesta a la que se factura")
	cmd.Flags().StringVar(&rut, "rut", "", "RUT del cliente nuevo (con --nombre, sin --cliente)")
	cmd.Flags().StringVar(&nombre, "nombre", "", "Nombre del cliente nuevo")
	cmd.Flags().BoolVarP(&interactive, "interactivo", "i", false, "Asistente interactivo")

	return cmd
}

func newGestionListaCmd(app *App) *cobra.Command {
	var clientID int64
	var tipo, estado, categoria, orden, region, provincia string
	var tags []string
	var limit, page int

	cmd := &cobra.Command{
		Use:   "lista",
		Short: "Listar gestiones por última acción",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateUbicacion(region, provincia); err != nil {
				return err
			}
			f := repositoryFilter(clientID, tipo, estado, tags)
			if categoria != "" {
				prefix, err := categoryPrefix(categoria)
				if err != nil {
					return err
				}
				f.TypePrefix = &prefix
			}
			order, err := parseOrden(orden)
			if err != nil {
				return err
			}
			f.Order = order
			if region != "" {
				f.Region = &region
			}
			if provincia != "" {
				f.Province = &provincia
			}
			f.Limit = limit
			if page > 1 {
				f.Offset = (page - 1) * limit
			}
			procedures, err := app.Procedures.List(context.Background(), f)
			if err != nil {
				return err
			}
			if len(procedures) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin gestiones.")
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(procedures))
			for _, p := range procedures {
				rows = append(rows, []string{
					fmt.Sprintf("%d", p.ID),
					p.DisplayTitle(),
					catalog.Label(p.Type),
					formatter.StatusIndicator(p.Status),
					formatter.Dim(formatter.RelativeDate(p.LastAction, now)),
					strings.Join(p.Tags(), " "),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "GESTIÓN", "TIPO", "ESTADO", "ÚLT. ACCIÓN", "TAGS"}, rows))
			return nil
		},
	}

	cmd.Flags().Int64Var(&clientID, "cliente", 0, "Filtrar por cliente")
	cmd.Flags().StringVar(&tipo, "tipo", "", "Filtrar por tipo")
	cmd.Flags().StringVar(&estado, "estado", "", "Filtrar por estado (PENDING, IN_PROGRESS, DONE)")
	cmd.Flags().StringVar(&categoria, "categoria", "", "Filtrar por categoría (ADMIN, JUDICIAL, OTROS, CORRETAJE)")
	cmd.Flags().StringVar(&orden, "orden", "accion_desc", "Orden: accion_desc, accion_asc, creacion_desc o creacion_asc")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Filtrar por tag, p. ej. #Delegable (repetible, se combinan)")
	cmd.Flags().StringVar(&region, "region", "", "Filtrar por región")
	cmd.Flags().StringVar(&provincia, "provincia", "", "Filtrar por provincia")
	cmd.Flags().IntVar(&limit, "limite", 50, "Máximo de filas")
	cmd.Flags().IntVar(&page, "pagina", 1, "Página")

	return cmd
}

func newGestionVerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Ver una gestión con su checklist completo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			detail, err := app.Procedures.GetDetail(context.Background(), id)
			if err != nil {
				return err
			}
			printProcedureDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func printProcedureDetail(out io.Writer, d *service.ProcedureDetail) {
	p := d.Procedure
	fmt.Fprintln(out, formatter.Header(p.DisplayTitle()))
	fmt.Fprintf(out, "Cliente: %s [%s]\n", d.Client.Name, d.Client.RUT)
	fmt.Fprintf(out, "Tipo: %s  Estado: %s\n", catalog.Label(p.Type), formatter.StatusIndicator(p.Status))
	if p.Region != nil {
		loc := *p.Region
		if p.Province != nil {
			loc += " / " + *p.Province
		}
		fmt.Fprintf(out, "Ubicación: %s\n", loc)
	}
	if tags := p.Tags(); len(tags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", formatter.StylePurple.Render(strings.Join(tags, " ")))
	}
	fmt.Fprintf(out, "Última acción: %s", formatter.RelativeDate(p.LastAction, time.Now()))
	if p.DoneAt != nil {
		fmt.Fprintf(out, "  Terminada: %s", p.DoneAt.Format("02-01-2006"))
	}
	fmt.Fprintln(out)

	if len(d.Stages) > 0 {
		parts := make([]string, 0, len(d.Stages))
		for _, s := range d.Stages {
			if s.Key == d.CurrentStage {
				parts = append(parts, formatter.StyleHeader.Render(s.Label))
			} else {
				parts = append(parts, formatter.Dim(s.Label))
			}
		}
		fmt.Fprintf(out, "Etapas: %s\n", strings.Join(parts, " → "))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.Header("Pasos"))
	for _, s := range d.Steps {
		line := fmt.Sprintf("%s %2d. %s", formatter.Checkbox(s.Done), s.Order, s.Title)
		if s.MilestoneID != nil {
			line += " " + formatter.StylePurple.Render(fmt.Sprintf("(hito %d)", *s.MilestoneID))
		}
		fmt.Fprintln(out, line)
		if s.Comment != nil && *s.Comment != "" {
			fmt.Fprintf(out, "      %s\n", formatter.Dim(*s.Comment))
		}
	}

	if len(d.Expenses) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, formatter.Header("Gastos"))
		rows := make([][]string, 0, len(d.Expenses))
		for _, e := range d.Expenses {
			uf := e.AmountUF
			rows = append(rows, []string{
				fmt.Sprintf("%d", e.ID), e.Reason, string(e.DocumentType), domain.FormatUF(&uf),
			})
		}
		fmt.Fprint(out, formatter.RenderTable([]string{"ID", "MOTIVO", "DOCUMENTO", "MONTO"}, rows))
	}

	if len(d.Todos) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, formatter.Header("Pendientes"))
		for _, td := range d.Todos {
			line := fmt.Sprintf("%s %d. %s", formatter.Checkbox(td.Done), td.ID, td.Text)
			if td.DueDate != nil {
				line += " " + formatter.Dim(domain.FormatDate(td.DueDate))
			}
			fmt.Fprintln(out, line)
		}
	}

	if len(d.WaterRights) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, formatter.Header("Derechos de agua"))
		rows := make([][]string, 0, len(d.WaterRights))
		for _, w := range d.WaterRights {
			rows = append(rows, []string{
				fmt.Sprintf("%d", w.ID), string(w.Naturaleza),
				fmt.Sprintf("fs. %s N°%s/%d", w.Foja, w.Numero, w.Anio), w.CBR,
			})
		}
		fmt.Fprint(out, formatter.RenderTable([]string{"ID", "NATURALEZA", "INSCRIPCIÓN", "CBR"}, rows))
	}
}

func newGestionEditarCmd(app *App) *cobra.Command {
	var titulo, region, provincia, info string
	var proposalID int64

	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Actualizar los datos de una gestión",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			if err := validateUbicacion(region, provincia); err != nil {
				return err
			}
			in := service.UpdateProcedureInput{
				ID:          id,
				Title:       optStr(titulo),
				Region:      optStr(region),
				Province:    optStr(provincia),
				GeneralInfo: optStr(info),
			}
			if proposalID > 0 {
				in.ProposalID = &proposalID
			}
			if err := app.Procedures.Update(context.Background(), in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Gestión actualizada.")
			return nil
		},
	}

	cmd.Flags().StringVar(&titulo, "titulo", "", "Nuevo título")
	cmd.Flags().StringVar(&region, "region", "", "Nueva región")
	cmd.Flags().StringVar(&provincia, "provincia", "", "Nueva provincia")
	cmd.Flags().StringVar(&info, "info", "", "Nueva información general (conserva los tags)")
	cmd.Flags().Int64Var(&proposalID, "propuesta", 0, "Propuesta a la que se factura")

	return cmd
}

func newGestionEstadoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "estado <id> <PENDING|IN_PROGRESS|DONE>",
		Short: "Cambiar el estado de una gestión",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			status := domain.Status(strings.ToUpper(args[1]))
			if err := app.Procedures.SetStatus(context.Background(), id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gestión %d ahora %s\n", id, formatter.StatusIndicator(status))
			return nil
		},
	}
}

func newGestionEtapaCmd(app *App) *cobra.Command {
	var estricto bool

	cmd := &cobra.Command{
		Use:   "etapa <id> <etapa>",
		Short: "Mover una gestión a una etapa del tablero",
		Long: "Marca como hechos los pasos hasta la etapa indicada. Con --estricto\n" +
			"además desmarca los pasos posteriores.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			if err := app.Procedures.MoveToStage(context.Background(), id, args[1], estricto); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gestión %d movida a %s\n", id, args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&estricto, "estricto", false, "Desmarcar pasos posteriores a la etapa")
	return cmd
}

func newGestionTagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <#tag>",
		Short: "Alternar un tag de la gestión",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.ToggleTag(context.Background(), id, args[1])
		},
	}
}

func newGestionTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <id> [#tag...]",
		Short: "Reemplazar el conjunto de tags de la gestión",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			return app.Procedures.SetTags(context.Background(), id, args[1:])
		},
	}
}

func newGestionEliminarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "eliminar <id>",
		Short: "Eliminar una gestión con todos sus registros",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gestión", args[0])
			if err != nil {
				return err
			}
			err = app.Procedures.Delete(context.Background(), id)
			return notifyOutcome(cmd.OutOrStdout(), domain.EventProcedureDeleted, err)
		},
	}
}

func newTiposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tipos",
		Short: "Listar las plantillas disponibles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, cat := range []catalog.Category{
				catalog.CategoryAdmin, catalog.CategoryJudicial, catalog.CategoryOtros, catalog.CategoryCorretaje,
			} {
				specs := catalog.ListByCategory(cat)
				if len(specs) == 0 {
					continue
				}
				fmt.Fprintln(out, formatter.Header(catalog.CategoryLabels[cat]))
				for _, spec := range specs {
					line := fmt.Sprintf("%-24s %s", spec.Key, spec.Label)
					if groups := spec.GroupTitles(); len(groups) > 0 {
						line += " " + formatter.Dim("(grupos: "+strings.Join(groups, ", ")+")")
					}
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
