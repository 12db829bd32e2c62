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

func newClienteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cliente",
		Short: "Administrar clientes",
	}

	cmd.AddCommand(
		newClienteNuevoCmd(app),
		newClienteListaCmd(app),
		newClienteVerCmd(app),
		newClienteEditarCmd(app),
		newClienteEliminarCmd(app),
	)

	return cmd
}

// parseContactos parses repeated --contacto flags of the form
// "Nombre;correo;teléfono" (correo and teléfono optional).
func parseContactos(values []string) ([]domain.Contact, error) {
	var contacts []domain.Contact
	for _, v := range values {
		parts := strings.SplitN(v, ";", 3)
		c := domain.Contact{Nombre: strings.TrimSpace(parts[0])}
		if c.Nombre == "" {
			return nil, fmt.Errorf("contacto sin nombre: %q", v)
		}
		if len(parts) > 1 {
			c.Correo = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			c.Telefono = strings.TrimSpace(parts[2])
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func newClienteNuevoCmd(app *App) *cobra.Command {
	var rut, name, alias, email, phone, notes string
	var contactos []string

	cmd := &cobra.Command{
		Use:   "nuevo",
		Short: "Crear un cliente",
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := parseContactos(contactos)
			if err != nil {
				return err
			}

			c, err := app.Clients.Create(context.Background(), service.CreateClientInput{
				RUT:      rut,
				Name:     name,
				Alias:    optStr(alias),
				Email:    optStr(email),
				Phone:    optStr(phone),
				Notes:    optStr(notes),
				Contacts: contacts,
			})
			if err := notifyOutcome(cmd.OutOrStdout(), domain.EventClientCreated, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cliente %d: %s [%s]\n", c.ID, c.Name, c.RUT)
			return nil
		},
	}

	cmd.Flags().StringVar(&rut, "rut", "", "RUT (formato 12345678-5)")
	cmd.Flags().StringVar(&name, "nombre", "", "Nombre o razón social")
	cmd.Flags().StringVar(&alias, "alias", "", "Alias corto")
	cmd.Flags().StringVar(&email, "correo", "", "Correo de contacto")
	cmd.Flags().StringVar(&phone, "telefono", "", "Teléfono de contacto")
	cmd.Flags().StringVar(&notes, "notas", "", "Notas libres")
	cmd.Flags().StringArrayVar(&contactos, "contacto", nil, "Contacto adicional \"Nombre;correo;teléfono\" (repetible)")
	_ = cmd.MarkFlagRequired("rut")
	_ = cmd.MarkFlagRequired("nombre")

	return cmd
}

func newClienteListaCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lista",
		Short: "Listar clientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Clients.List(context.Background())
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin clientes registrados.")
				return nil
			}

			rows := make([][]string, 0, len(clients))
			for _, c := range clients {
				alias := ""
				if c.Alias != nil {
					alias = *c.Alias
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", c.ID), c.RUT, c.Name, alias,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "RUT", "NOMBRE", "ALIAS"}, rows))
			return nil
		},
	}
}

func newClienteVerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Ver un cliente con sus gestiones y propuestas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cliente", args[0])
			if err != nil {
				return err
			}
			detail, err := app.Clients.GetDetail(context.Background(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c := detail.Client

			fmt.Fprintln(out, formatter.Header(c.Name))
			fmt.Fprintf(out, "RUT: %s\n", c.RUT)
			if c.Alias != nil {
				fmt.Fprintf(out, "Alias: %s\n", *c.Alias)
			}
			if c.Email != nil {
				fmt.Fprintf(out, "Correo: %s\n", *c.Email)
			}
			if c.Phone != nil {
				fmt.Fprintf(out, "Teléfono: %s\n", *c.Phone)
			}
			if contacts, err := c.ContactList(); err == nil && len(contacts) > 0 {
				fmt.Fprintln(out, formatter.Bold("Contactos:"))
				for _, ct := range contacts {
					fmt.Fprintf(out, "  - %s %s\n", ct.Nombre, formatter.Dim(strings.TrimSpace(ct.Correo+" "+ct.Telefono)))
				}
			}
			if c.Notes != nil && *c.Notes != "" {
				fmt.Fprintf(out, "Notas: %s\n", *c.Notes)
			}

			if len(detail.Procedures) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Gestiones"))
				rows := make([][]string, 0, len(detail.Procedures))
				for _, p := range detail.Procedures {
					rows = append(rows, []string{
						fmt.Sprintf("%d", p.ID),
						p.DisplayTitle(),
						formatter.StatusIndicator(p.Status),
						formatter.Dim(p.LastAction.Format("02-01-2006")),
					})
				}
				fmt.Fprint(out, formatter.RenderTable([]string{"ID", "GESTIÓN", "ESTADO", "ÚLT. ACCIÓN"}, rows))
			}

			if len(detail.Proposals) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Propuestas"))
				rows := make([][]string, 0, len(detail.Proposals))
				for _, p := range detail.Proposals {
					rows = append(rows, []string{
						fmt.Sprintf("%d", p.ID),
						p.Title,
						string(p.BillingMode),
						domain.FormatUF(p.TotalFeeUF),
					})
				}
				fmt.Fprint(out, formatter.RenderTable([]string{"ID", "PROPUESTA", "MODALIDAD", "HONORARIOS"}, rows))
			}
			return nil
		},
	}
}

func newClienteEditarCmd(app *App) *cobra.Command {
	var rut, name, alias, email, phone, notes string

	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Actualizar los datos de un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cliente", args[0])
			if err != nil {
				return err
			}
			_, err = app.Clients.Update(context.Background(), service.UpdateClientInput{
				ID:    id,
				RUT:   rut,
				Name:  name,
				Alias: optStr(alias),
				Email: optStr(email),
				Phone: optStr(phone),
				Notes: optStr(notes),
			})
			return notifyOutcome(cmd.OutOrStdout(), domain.EventClientUpdated, err)
		},
	}

	cmd.Flags().StringVar(&rut, "rut", "", "Nuevo RUT")
	cmd.Flags().StringVar(&name, "nombre", "", "Nuevo nombre")
	cmd.Flags().StringVar(&alias, "alias", "", "Nuevo alias")
	cmd.Flags().StringVar(&email, "correo", "", "Nuevo correo")
	cmd.Flags().StringVar(&phone, "telefono", "", "Nuevo teléfono")
	cmd.Flags().StringVar(&notes, "notas", "", "Nuevas notas")

	return cmd
}

func newClienteEliminarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "eliminar <id>",
		Short: "Eliminar un cliente con todas sus gestiones y propuestas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cliente", args[0])
			if err != nil {
				return err
			}
			err = app.Clients.Delete(context.Background(), id)
			return notifyOutcome(cmd.OutOrStdout(), domain.EventClientDeleted, err)
		},
	}
}
