package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"caudal/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusLabel returns the Spanish column label of a procedure status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return "Pendiente"
	case domain.StatusInProgress:
		return "En curso"
	case domain.StatusDone:
		return "Terminada"
	default:
		return string(s)
	}
}

// StatusIndicator returns a colored status marker such as "● En curso".
func StatusIndicator(s domain.Status) string {
	label := "● " + StatusLabel(s)
	switch s {
	case domain.StatusDone:
		return StyleGreen.Render(label)
	case domain.StatusInProgress:
		return StyleYellow.Render(label)
	case domain.StatusPending:
		return StyleBlue.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// Checkbox renders a checklist marker for a step or todo.
func Checkbox(done bool) string {
	if done {
		return StyleGreen.Render("[x]")
	}
	return StyleDim.Render("[ ]")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
