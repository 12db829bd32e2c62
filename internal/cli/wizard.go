package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"caudal/internal/catalog"
	"caudal/internal/cli/formatter"
	"caudal/internal/domain"
	"caudal/internal/service"
)

// caudalHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func caudalHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func runForm(groups ...*huh.Group) error {
	return huh.NewForm(groups...).WithTheme(caudalHuhTheme()).WithShowHelp(false).Run()
}

// runIntakeWizard walks through creating a gestión, optionally together with
// a new client, mirroring the "gestion nueva" flags interactively.
func runIntakeWizard(app *App, out io.Writer) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return fmt.Errorf("el asistente requiere una terminal interactiva")
	}
	ctx := context.Background()

	// Client: existing or new.
	clients, err := app.Clients.List(ctx)
	if err != nil {
		return err
	}
	var clientID int64
	var rut, nombre string
	clientOptions := []huh.Option[int64]{huh.NewOption("+ Cliente nuevo", int64(0))}
	for _, c := range clients {
		clientOptions = append(clientOptions, huh.NewOption(fmt.Sprintf("%s [%s]", c.Name, c.RUT), c.ID))
	}
	if err := runForm(huh.NewGroup(
		huh.NewSelect[int64]().Title("¿Para qué cliente?").Options(clientOptions...).Value(&clientID),
	)); err != nil {
		return err
	}
	if clientID == 0 {
		if err := runForm(huh.NewGroup(
			huh.NewInput().Title("RUT").Placeholder("12345678-5").Value(&rut),
			huh.NewInput().Title("Nombre o razón social").Value(&nombre),
		)); err != nil {
			return err
		}
	}

	// Template type.
	typeOptions := []huh.Option[string]{}
	for _, spec := range catalog.Templates {
		label := fmt.Sprintf("%s — %s", catalog.CategoryLabels[spec.Category], spec.Label)
		typeOptions = append(typeOptions, huh.NewOption(label, spec.Key))
	}
	typeOptions = append(typeOptions, huh.NewOption("Personalizada (pasos propios)", domain.TypeCustom))

	var typeKey string
	if err := runForm(huh.NewGroup(
		huh.NewSelect[string]().Title("¿Qué tipo de gestión?").Options(typeOptions...).Value(&typeKey),
	)); err != nil {
		return err
	}

	var includeGroups []string
	var customSteps []string
	if typeKey == domain.TypeCustom {
		var stepsText string
		if err := runForm(huh.NewGroup(
			huh.NewText().Title("Pasos (uno por línea)").Value(&stepsText),
		)); err != nil {
			return err
		}
		for _, line := range strings.Split(stepsText, "\n") {
			if strings.TrimSpace(line) != "" {
				customSteps = append(customSteps, strings.TrimSpace(line))
			}
		}
	} else if spec, err := catalog.ByKey(typeKey); err == nil {
		if groups := spec.GroupTitles(); len(groups) > 0 {
			options := make([]huh.Option[string], 0, len(groups))
			for _, g := range groups {
				options = append(options, huh.NewOption(g, g))
			}
			if err := runForm(huh.NewGroup(
				huh.NewMultiSelect[string]().Title("Grupos opcionales a incluir").Options(options...).Value(&includeGroups),
			)); err != nil {
				return err
			}
		}
	}

	// Metadata.
	var titulo, region, provincia, info string
	var tags []string
	regionOptions := []huh.Option[string]{huh.NewOption("(sin región)", "")}
	for _, r := range catalog.Regions {
		regionOptions = append(regionOptions, huh.NewOption(r.Name, r.Name))
	}
	tagOptions := make([]huh.Option[string], 0, len(domain.KnownTags))
	for _, tag := range domain.KnownTags {
		tagOptions = append(tagOptions, huh.NewOption(tag, tag))
	}
	if err := runForm(huh.NewGroup(
		huh.NewInput().Title("Título").Placeholder("Gestión s/n").Value(&titulo),
		huh.NewSelect[string]().Title("Región").Options(regionOptions...).Value(&region),
		huh.NewText().Title("Información general").Value(&info),
		huh.NewMultiSelect[string]().Title("Tags").Options(tagOptions...).Value(&tags),
	)); err != nil {
		return err
	}
	if region != "" {
		if r, ok := catalog.FindRegion(region); ok && len(r.Provinces) > 0 {
			provinceOptions := []huh.Option[string]{huh.NewOption("(sin provincia)", "")}
			for _, p := range r.Provinces {
				provinceOptions = append(provinceOptions, huh.NewOption(p, p))
			}
			if err := runForm(huh.NewGroup(
				huh.NewSelect[string]().Title("Provincia").Options(provinceOptions...).Value(&provincia),
			)); err != nil {
				return err
			}
		}
	}

	in := service.CreateProcedureInput{
		ClientID:      clientID,
		TypeKey:       typeKey,
		IncludeGroups: includeGroups,
		CustomSteps:   customSteps,
		Title:         optStr(titulo),
		Region:        optStr(region),
		Province:      optStr(provincia),
		GeneralInfo:   optStr(info),
		Tags:          tags,
	}

	if clientID == 0 {
		client := service.CreateClientInput{RUT: rut, Name: nombre}
		c, p, err := app.Procedures.CreateWithClient(ctx, client, in)
		if err := notifyOutcome(out, domain.EventClientAndProcedureCreated, err); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cliente %d, gestión %d: %s\n", c.ID, p.ID, p.DisplayTitle())
		return nil
	}

	p, err := app.Procedures.Create(ctx, in)
	if err := notifyOutcome(out, domain.EventProcedureCreated, err); err != nil {
		return err
	}
	fmt.Fprintf(out, "Gestión %d: %s\n", p.ID, p.DisplayTitle())
	return nil
}
